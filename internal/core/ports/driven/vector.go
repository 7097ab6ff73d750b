package driven

import (
	"context"

	"github.com/custodia-labs/athena/internal/core/domain"
)

// VectorStore is the append-only chunk index.
// Add is the only mutator and is serialised; Search may run concurrently
// and always observes a complete snapshot.
type VectorStore interface {
	// Add appends chunks for one source, assigning ids Len(), Len()+1, ...
	// The new state is persisted before Add returns; on failure nothing changes.
	Add(ctx context.Context, chunks []domain.ChunkInput, sourceID string) ([]int, error)

	// Search returns up to opts.K hits by ascending squared L2 distance.
	// It panics when len(query) differs from Dimensions().
	Search(query []float32, opts domain.SearchOptions) []domain.SearchHit

	// Query searches and resolves the hits from one snapshot, returning
	// domain.ErrDimensionMismatch instead of panicking.
	Query(query []float32, opts domain.SearchOptions) ([]domain.ContextHit, error)

	// Chunk resolves an id to its payload.
	Chunk(id int) (domain.Chunk, bool)

	// Source returns the source id of a chunk.
	Source(id int) (string, bool)

	// Len returns the number of stored chunks.
	Len() int

	// Dimensions returns the embedding length, or 0 when the store is empty.
	Dimensions() int

	// Load restores persisted state. A missing or partial store yields an empty store.
	Load(ctx context.Context) error

	// Persist snapshots the current state.
	Persist(ctx context.Context) error

	// Clear empties the store and removes persisted artifacts.
	Clear(ctx context.Context) error
}

// SnapshotStore persists the vector store triple atomically.
type SnapshotStore interface {
	// Load returns the last complete snapshot.
	// Returns domain.ErrStoreNotFound if none exists or the set is partial.
	Load(ctx context.Context) (*domain.VectorSnapshot, error)

	// Save durably writes snap; either all of it becomes visible or none.
	Save(ctx context.Context, snap *domain.VectorSnapshot) error

	// Clear removes all persisted artifacts.
	Clear(ctx context.Context) error
}
