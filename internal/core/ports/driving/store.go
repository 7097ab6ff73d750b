package driving

import (
	"context"

	"github.com/custodia-labs/athena/internal/core/domain"
)

// StoreStatus describes the indexed corpus.
type StoreStatus struct {
	// Chunks is the number of stored chunks, retired ones included.
	Chunks int

	// RetiredChunks is the number of chunks superseded by re-ingests.
	RetiredChunks int

	// Sources is the number of ingested documents.
	Sources int

	// Images is the number of extracted images across all documents.
	Images int

	// Dimensions is the embedding length, or 0 when the store is empty.
	Dimensions int
}

// StoreService inspects and resets the local store.
type StoreService interface {
	// Status returns corpus counters.
	Status(ctx context.Context) (*StoreStatus, error)

	// Sources returns the ingested documents ordered by name.
	Sources(ctx context.Context) ([]domain.SourceDocument, error)

	// Reset removes every chunk, source record and blob.
	Reset(ctx context.Context) error
}
