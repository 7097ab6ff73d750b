package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
	"github.com/custodia-labs/athena/internal/core/ports/driving"
	"github.com/custodia-labs/athena/internal/logger"
)

// Ensure StoreService implements the interface.
var _ driving.StoreService = (*StoreService)(nil)

// StoreService reports on and resets the local store.
type StoreService struct {
	vectors driven.VectorStore
	sources driven.SourceStore
	blobs   driven.BlobStore
	history driven.ChatHistoryStore
}

// NewStoreService creates a new store service.
// The history store is optional; when set, Reset clears it too.
func NewStoreService(
	vectors driven.VectorStore,
	sources driven.SourceStore,
	blobs driven.BlobStore,
	history driven.ChatHistoryStore,
) *StoreService {
	return &StoreService{
		vectors: vectors,
		sources: sources,
		blobs:   blobs,
		history: history,
	}
}

// Status returns corpus counters.
func (s *StoreService) Status(ctx context.Context) (*driving.StoreStatus, error) {
	docs, err := s.sources.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	retired, err := s.sources.RetiredChunkIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list retired chunks: %w", err)
	}

	status := &driving.StoreStatus{
		Chunks:        s.vectors.Len(),
		RetiredChunks: len(retired),
		Sources:       len(docs),
		Dimensions:    s.vectors.Dimensions(),
	}
	for _, d := range docs {
		status.Images += len(d.Images)
	}
	return status, nil
}

// Sources returns the ingested documents ordered by name.
func (s *StoreService) Sources(ctx context.Context) ([]domain.SourceDocument, error) {
	return s.sources.List(ctx)
}

// Reset removes every chunk, source record and blob.
// The index goes first so a failure never leaves live chunks without a registry.
func (s *StoreService) Reset(ctx context.Context) error {
	logger.Section("Reset")

	if err := s.vectors.Clear(ctx); err != nil {
		return fmt.Errorf("clear vector store: %w", err)
	}
	if err := s.sources.Clear(ctx); err != nil {
		return fmt.Errorf("clear sources: %w", err)
	}
	if err := s.blobs.Clear(ctx); err != nil {
		return fmt.Errorf("clear blobs: %w", err)
	}
	if s.history != nil {
		if err := s.history.Clear(ctx); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
	}

	logger.Info("Store reset")
	return nil
}
