package driven

import (
	"context"

	"github.com/custodia-labs/athena/internal/core/domain"
)

// LLMService calls a generative model.
// Results are returned as a domain.Generation; callers join them with
// domain.Join before the text leaves the core.
//
// Implementations:
//   - OpenAI (chat completions, optionally streamed)
//   - Anthropic (messages API)
//   - Ollama (local models, optionally streamed)
type LLMService interface {
	// Generate produces a completion for a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (domain.Generation, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string

	// Stream asks for a StreamGeneration where the provider supports it.
	Stream bool
}
