package driving

import (
	"context"

	"github.com/custodia-labs/athena/internal/core/domain"
)

// IngestionService turns uploaded documents into indexed chunks.
type IngestionService interface {
	// Ingest stores data under filename, indexes its text and extracts its images.
	// Unchanged content is skipped. A text-path failure returns *domain.IngestError.
	Ingest(ctx context.Context, data []byte, filename string) (*domain.IngestReport, error)

	// IngestFile reads a file from disk and ingests it under its base name.
	IngestFile(ctx context.Context, path string) (*domain.IngestReport, error)

	// SupportedExtensions returns the file extensions that can be ingested.
	SupportedExtensions() []string

	// Shutdown waits for in-flight work and stops accepting new documents.
	Shutdown(ctx context.Context) error
}
