package driven

import "github.com/custodia-labs/athena/internal/core/domain"

// AIConfigValidator checks provider settings before they are trusted.
// A section with no provider selected is valid.
type AIConfigValidator interface {
	ValidateEmbedding(config *domain.EmbeddingSettings) error
	ValidateLLM(config *domain.LLMSettings) error
}
