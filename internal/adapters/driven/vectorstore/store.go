// Package vectorstore provides the append-only exact nearest-neighbour index
// over chunk embeddings.
//
// Writers are serialised by a mutex and build a new immutable snapshot for
// every Add. The snapshot is persisted before it is published through an
// atomic pointer, so readers never block and never see a state that was not
// durably written.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
	"github.com/custodia-labs/athena/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is an in-memory exact vector index with pluggable persistence.
type Store struct {
	mu        sync.Mutex
	snap      atomic.Pointer[domain.VectorSnapshot]
	persister driven.SnapshotStore
}

// New creates an empty store. A nil persister keeps the index in memory only.
func New(persister driven.SnapshotStore) *Store {
	s := &Store{persister: persister}
	s.snap.Store(&domain.VectorSnapshot{})
	return s
}

// Add appends chunks for sourceID and returns their ids.
// The first non-empty Add fixes the store's dimension.
func (s *Store) Add(ctx context.Context, chunks []domain.ChunkInput, sourceID string) ([]int, error) {
	if len(chunks) == 0 {
		return []int{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	dims := cur.Dimensions
	if cur.Len() == 0 {
		dims = len(chunks[0].Embedding)
	}
	if dims == 0 {
		return nil, fmt.Errorf("add chunks: %w: empty embedding", domain.ErrInvalidInput)
	}
	for i, c := range chunks {
		if len(c.Embedding) != dims {
			return nil, fmt.Errorf("add chunks: %w: chunk %d has %d dimensions, store has %d",
				domain.ErrDimensionMismatch, i, len(c.Embedding), dims)
		}
	}

	// Clip so appends never write into arrays shared with the published snapshot.
	next := &domain.VectorSnapshot{
		Dimensions: dims,
		Embeddings: slices.Clip(cur.Embeddings),
		Texts:      slices.Clip(cur.Texts),
		Sources:    slices.Clip(cur.Sources),
	}

	start := cur.Len()
	ids := make([]int, len(chunks))
	for i, c := range chunks {
		next.Embeddings = append(next.Embeddings, slices.Clone(c.Embedding))
		next.Texts = append(next.Texts, c.Text)
		next.Sources = append(next.Sources, sourceID)
		ids[i] = start + i
	}

	if s.persister != nil {
		if err := s.persister.Save(ctx, next); err != nil {
			return nil, fmt.Errorf("persist snapshot: %w", err)
		}
	}

	s.snap.Store(next)
	logger.Debug("vectorstore: added %d chunks for %s (total %d)", len(chunks), sourceID, next.Len())

	return ids, nil
}

// Search returns up to opts.K ids nearest to query.
// It panics if query does not match the store's dimension.
func (s *Store) Search(query []float32, opts domain.SearchOptions) []domain.SearchHit {
	snap := s.snap.Load()
	if snap.Len() == 0 || opts.K <= 0 {
		return nil
	}
	if len(query) != snap.Dimensions {
		panic(fmt.Sprintf("vectorstore: %v: query has %d dimensions, store has %d",
			domain.ErrDimensionMismatch, len(query), snap.Dimensions))
	}
	return search(snap, query, opts)
}

// Query is Search plus id resolution, both against the same snapshot, so a
// concurrent Clear cannot slip between the dimension check and the scan.
// A dimension mismatch is returned as domain.ErrDimensionMismatch.
func (s *Store) Query(query []float32, opts domain.SearchOptions) ([]domain.ContextHit, error) {
	snap := s.snap.Load()
	if snap.Len() == 0 || opts.K <= 0 {
		return nil, nil
	}
	if len(query) != snap.Dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, store has %d",
			domain.ErrDimensionMismatch, len(query), snap.Dimensions)
	}

	found := search(snap, query, opts)
	hits := make([]domain.ContextHit, len(found))
	for i, h := range found {
		hits[i] = domain.ContextHit{Chunk: chunkAt(snap, h.ID), Distance: h.Distance}
	}
	return hits, nil
}

func search(snap *domain.VectorSnapshot, query []float32, opts domain.SearchOptions) []domain.SearchHit {
	oversample := max(opts.Oversample, 1)
	candidates := nearest(snap.Embeddings, query, opts.K*oversample)

	var allowed map[string]struct{}
	if len(opts.AllowedSources) > 0 {
		allowed = make(map[string]struct{}, len(opts.AllowedSources))
		for _, src := range opts.AllowedSources {
			allowed[src] = struct{}{}
		}
	}

	hits := make([]domain.SearchHit, 0, opts.K)
	for _, c := range candidates {
		if allowed != nil {
			if _, ok := allowed[snap.Sources[c.ID]]; !ok {
				continue
			}
		}
		if opts.Exclude != nil && opts.Exclude(c.ID) {
			continue
		}
		hits = append(hits, c)
		if len(hits) == opts.K {
			break
		}
	}

	return hits
}

func chunkAt(snap *domain.VectorSnapshot, id int) domain.Chunk {
	return domain.Chunk{
		ID:        id,
		SourceID:  snap.Sources[id],
		Text:      snap.Texts[id],
		Embedding: snap.Embeddings[id],
	}
}

// Chunk resolves an id to its stored payload.
func (s *Store) Chunk(id int) (domain.Chunk, bool) {
	snap := s.snap.Load()
	if id < 0 || id >= snap.Len() {
		return domain.Chunk{}, false
	}
	return chunkAt(snap, id), true
}

// Source returns the source id recorded for a chunk.
func (s *Store) Source(id int) (string, bool) {
	snap := s.snap.Load()
	if id < 0 || id >= snap.Len() {
		return "", false
	}
	return snap.Sources[id], true
}

// Len returns the number of stored chunks.
func (s *Store) Len() int {
	return s.snap.Load().Len()
}

// Dimensions returns the embedding length, 0 when empty.
func (s *Store) Dimensions() int {
	snap := s.snap.Load()
	if snap.Len() == 0 {
		return 0
	}
	return snap.Dimensions
}

// Load restores the last persisted snapshot.
// A missing or partial store leaves the index empty.
func (s *Store) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.persister.Load(ctx)
	if errors.Is(err, domain.ErrStoreNotFound) {
		logger.Debug("vectorstore: no persisted snapshot, starting empty")
		s.snap.Store(&domain.VectorSnapshot{})
		return nil
	}
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if !snap.Consistent() {
		logger.Warn("vectorstore: persisted snapshot is inconsistent, starting empty")
		s.snap.Store(&domain.VectorSnapshot{})
		return nil
	}

	s.snap.Store(snap)
	logger.Debug("vectorstore: loaded %d chunks (%d dimensions)", snap.Len(), snap.Dimensions)
	return nil
}

// Persist writes the current snapshot.
func (s *Store) Persist(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persister.Save(ctx, s.snap.Load()); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}

// Clear empties the index and removes persisted artifacts.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.persister != nil {
		if err := s.persister.Clear(ctx); err != nil {
			return fmt.Errorf("clear snapshot: %w", err)
		}
	}
	s.snap.Store(&domain.VectorSnapshot{})
	return nil
}
