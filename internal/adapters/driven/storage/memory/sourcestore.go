// Package memory provides in-memory implementations of the persistence ports
// for tests and ephemeral sessions.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
)

// Ensure SourceStore implements the interface.
var _ driven.SourceStore = (*SourceStore)(nil)

// SourceStore is an in-memory implementation of driven.SourceStore.
type SourceStore struct {
	mu      sync.RWMutex
	sources map[string]domain.SourceDocument
}

// NewSourceStore creates a new in-memory source store.
func NewSourceStore() *SourceStore {
	return &SourceStore{
		sources: make(map[string]domain.SourceDocument),
	}
}

// Save stores or replaces a source record. CreatedAt of an existing
// record is kept.
func (s *SourceStore) Save(_ context.Context, doc domain.SourceDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if prev, ok := s.sources[doc.ID]; ok {
		doc.CreatedAt = prev.CreatedAt
	} else if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = now
	}

	s.sources[doc.ID] = cloneSource(doc)
	return nil
}

// Get retrieves a record by filename.
func (s *SourceStore) Get(_ context.Context, id string) (*domain.SourceDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.sources[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc = cloneSource(doc)
	return &doc, nil
}

// AppendImages adds images to an existing record.
func (s *SourceStore) AppendImages(_ context.Context, id string, images []domain.ImageRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.sources[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Images = append(slices.Clip(doc.Images), images...)
	doc.UpdatedAt = time.Now().UTC()
	s.sources[id] = doc
	return nil
}

// List returns all records ordered by id.
func (s *SourceStore) List(_ context.Context) ([]domain.SourceDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.SourceDocument, 0, len(s.sources))
	for _, doc := range s.sources {
		result = append(result, cloneSource(doc))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// RetiredChunkIDs returns every chunk id superseded by a re-ingest.
func (s *SourceStore) RetiredChunkIDs(_ context.Context) (map[int]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	retired := make(map[int]struct{})
	for _, doc := range s.sources {
		for _, id := range doc.RetiredChunkIDs {
			retired[id] = struct{}{}
		}
	}
	return retired, nil
}

// Clear removes every record.
func (s *SourceStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources = make(map[string]domain.SourceDocument)
	return nil
}

func cloneSource(doc domain.SourceDocument) domain.SourceDocument {
	doc.ChunkIDs = slices.Clone(doc.ChunkIDs)
	doc.RetiredChunkIDs = slices.Clone(doc.RetiredChunkIDs)
	doc.Images = slices.Clone(doc.Images)
	return doc
}
