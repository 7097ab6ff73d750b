package ai

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/athena/internal/core/domain"
)

func TestNewConfigValidator_DefaultTimeout(t *testing.T) {
	assert.Equal(t, pingTimeout, NewConfigValidator(0).timeout)
	assert.Equal(t, time.Second, NewConfigValidator(time.Second).timeout)
}

func TestConfigValidator_ValidateEmbedding(t *testing.T) {
	validator := NewConfigValidator(time.Second)

	assert.NoError(t, validator.ValidateEmbedding(nil))
	assert.NoError(t, validator.ValidateEmbedding(&domain.EmbeddingSettings{}))

	ok := &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: newOllamaServer(t, http.StatusOK)}
	assert.NoError(t, validator.ValidateEmbedding(ok))

	down := &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: newOllamaServer(t, http.StatusInternalServerError)}
	require.Error(t, validator.ValidateEmbedding(down))

	anthropic := &domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"}
	assert.Error(t, validator.ValidateEmbedding(anthropic))
}

func TestConfigValidator_ValidateLLM(t *testing.T) {
	validator := NewConfigValidator(time.Second)

	assert.NoError(t, validator.ValidateLLM(nil))

	ok := &domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: newOllamaServer(t, http.StatusOK)}
	assert.NoError(t, validator.ValidateLLM(ok))

	down := &domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: newOllamaServer(t, http.StatusNotFound)}
	assert.Error(t, validator.ValidateLLM(down))
}
