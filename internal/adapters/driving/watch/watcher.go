// Package watch ingests documents dropped into a folder.
// Bursts of filesystem events for one file collapse into a single ingestion;
// fingerprinting in the ingestion service makes repeated events no-ops.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driving"
	"github.com/custodia-labs/athena/internal/logger"
)

// DefaultDebounce is the quiet period after the last event for a file
// before it is ingested.
const DefaultDebounce = 500 * time.Millisecond

// ResultFunc receives the outcome of every ingestion the watcher starts.
type ResultFunc func(path string, report *domain.IngestReport, err error)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Non-positive values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithResultFunc registers a callback for ingestion outcomes.
func WithResultFunc(fn ResultFunc) Option {
	return func(w *Watcher) {
		w.onResult = fn
	}
}

// Watcher feeds files from a directory into an IngestionService.
type Watcher struct {
	ingestion driving.IngestionService
	debounce  time.Duration
	onResult  ResultFunc
	exts      map[string]struct{}

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

// New creates a watcher that ingests the extensions the service supports.
func New(ingestion driving.IngestionService, opts ...Option) *Watcher {
	w := &Watcher{
		ingestion: ingestion,
		debounce:  DefaultDebounce,
		exts:      make(map[string]struct{}),
		timers:    make(map[string]*time.Timer),
	}
	for _, ext := range ingestion.SupportedExtensions() {
		w.exts[strings.ToLower(ext)] = struct{}{}
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Supported reports whether path has an ingestible extension.
// Hidden and editor temporary files are ignored.
func (w *Watcher) Supported(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~") || strings.HasSuffix(base, "~") {
		return false
	}
	_, ok := w.exts[strings.ToLower(filepath.Ext(base))]
	return ok
}

// IngestExisting ingests every supported file directly inside dir.
// Per-file failures are joined into the returned error.
func (w *Watcher) IngestExisting(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read watch directory: %w", err)
	}

	var errs []error
	for _, entry := range entries {
		if entry.IsDir() || !w.Supported(entry.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.ingest(ctx, filepath.Join(dir, entry.Name())); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run watches dir until ctx is cancelled, then waits for in-flight ingestions.
func (w *Watcher) Run(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Info("Watching %s", dir)

	defer w.wg.Wait()
	defer w.stopTimers()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !w.Supported(event.Name) {
				continue
			}
			logger.Debug("Watch event %s", event)
			w.schedule(ctx, event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-ctx.Done():
			return nil
		}
	}
}

// schedule (re)starts the debounce timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Reset(w.debounce)
		return
	}

	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		if w.stopped {
			w.mu.Unlock()
			return
		}
		w.wg.Add(1)
		w.mu.Unlock()
		defer w.wg.Done()

		if ctx.Err() != nil {
			return
		}
		_ = w.ingest(ctx, path)
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

func (w *Watcher) ingest(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		// Removed or replaced before the timer fired.
		return nil
	}

	report, err := w.ingestion.IngestFile(ctx, path)
	if err != nil {
		logger.Warn("Watch ingest %s: %v", path, err)
	} else if !report.Skipped {
		logger.Info("Indexed %s (%d chunks, %d images)", report.SourceID, report.ChunksAdded, report.ImagesFound)
	}
	if w.onResult != nil {
		w.onResult(path, report, err)
	}
	return err
}
