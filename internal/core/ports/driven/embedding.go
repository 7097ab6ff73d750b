package driven

import "context"

// EmbeddingService maps text to vectors for the vector store.
// Every vector it returns has Dimensions() components; a store built with
// one model must be reset before another model with a different size is used.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	Dimensions() int
	ModelName() string

	// Ping issues a minimal request to confirm the provider answers.
	Ping(ctx context.Context) error

	Close() error
}
