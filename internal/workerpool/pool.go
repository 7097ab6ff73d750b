// Package workerpool provides a bounded pool for the independent tasks of a
// single ingestion: the text path plus one task per PDF page.
package workerpool

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/logger"
)

// Task is a unit of work run on the pool.
type Task func(ctx context.Context) error

// Pool runs tasks with at most Size running at once.
// Submit blocks while the pool is saturated.
type Pool struct {
	size int64
	sem  *semaphore.Weighted

	mu     sync.RWMutex
	closed bool
}

// New creates a pool with the given number of workers (minimum 1).
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		size: int64(size),
		sem:  semaphore.NewWeighted(int64(size)),
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return int(p.size)
}

// Handle tracks the outcome of a submitted task.
type Handle struct {
	done chan struct{}
	err  error
}

// Done is closed when the task finishes.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err returns the task's error. Only valid after Done is closed.
func (h *Handle) Err() error {
	return h.err
}

// Wait blocks until the task finishes or ctx is done.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit schedules fn on the pool. It blocks until a worker is free or ctx
// is done. Panics inside fn are recovered and reported as the task error.
func (p *Pool) Submit(ctx context.Context, fn Task) (*Handle, error) {
	if p.isClosed() {
		return nil, domain.ErrPoolClosed
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire worker: %w", err)
	}
	// Shutdown may have drained the pool while we waited for the slot.
	if p.isClosed() {
		p.sem.Release(1)
		return nil, domain.ErrPoolClosed
	}

	h := &Handle{done: make(chan struct{})}
	go func() {
		defer p.sem.Release(1)
		defer close(h.done)
		defer func() {
			if r := recover(); r != nil {
				logger.Warn("worker task panicked: %v", r)
				h.err = fmt.Errorf("task panicked: %v", r)
			}
		}()
		h.err = fn(ctx)
	}()

	return h, nil
}

func (p *Pool) isClosed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

// Shutdown stops accepting work and waits for running tasks to finish
// or ctx to be done.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	if err := p.sem.Acquire(ctx, p.size); err != nil {
		return fmt.Errorf("drain workers: %w", err)
	}
	p.sem.Release(p.size)
	return nil
}

// WaitAll waits for every handle, returning the first error encountered.
// A done ctx stops the wait and returns ctx.Err().
func WaitAll(ctx context.Context, handles ...*Handle) error {
	var first error
	for _, h := range handles {
		if h == nil {
			continue
		}
		if err := h.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if first == nil {
				first = err
			}
		}
	}
	return first
}
