package driven

import (
	"context"

	"github.com/custodia-labs/athena/internal/core/domain"
)

// PostProcessor is one stage of the text pipeline between extraction and
// embedding. Stages are chained (e.g. display-script normalisation, chunking).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and the chunks produced so far.
	// A stage that rewrites document text receives nil chunks and returns nil.
	// A stage that creates chunks (the chunker) returns new chunks.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order.
	// Returns the final chunks after all processing.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
