package driven

import (
	"context"

	"github.com/custodia-labs/athena/internal/core/domain"
)

// SourceStore persists the registry of ingested documents.
type SourceStore interface {
	// Save stores or replaces a source document record.
	Save(ctx context.Context, doc domain.SourceDocument) error

	// Get retrieves a record by filename.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.SourceDocument, error)

	// AppendImages adds images to an existing record.
	AppendImages(ctx context.Context, id string, images []domain.ImageRef) error

	// List returns all records ordered by id.
	List(ctx context.Context) ([]domain.SourceDocument, error)

	// RetiredChunkIDs returns every chunk id superseded by a re-ingest.
	RetiredChunkIDs(ctx context.Context) (map[int]struct{}, error)

	// Clear removes every record.
	Clear(ctx context.Context) error
}

// BlobStore keeps raw document and image bytes on durable storage.
type BlobStore interface {
	// SaveDocument writes the raw upload and returns its path.
	SaveDocument(ctx context.Context, filename string, data []byte) (string, error)

	// SaveImage writes one extracted image and returns its opaque handle.
	SaveImage(ctx context.Context, sourceID string, img domain.ExtractedImage) (string, error)

	// Clear removes all stored blobs.
	Clear(ctx context.Context) error
}

// ChatHistoryStore persists the session's chat turns.
type ChatHistoryStore interface {
	// Append records a new turn at the end of the history.
	Append(ctx context.Context, turn domain.ChatTurn) error

	// Get retrieves a turn by id.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.ChatTurn, error)

	// UpdateTranslation sets or clears the cached translation of a turn.
	UpdateTranslation(ctx context.Context, id string, translation *string, lang domain.LanguageTag) error

	// List returns the history in the order turns were appended.
	List(ctx context.Context) ([]domain.ChatTurn, error)

	// Clear removes every turn.
	Clear(ctx context.Context) error
}
