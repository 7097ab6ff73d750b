package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/athena/internal/adapters/driven/translation/script"
	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
)

type stubLLM struct{}

func (stubLLM) Generate(context.Context, string, driven.GenerateOptions) (domain.Generation, error) {
	return domain.TextGeneration{Text: "ok"}, nil
}
func (stubLLM) ModelName() string          { return "stub" }
func (stubLLM) Ping(context.Context) error { return nil }
func (stubLLM) Close() error               { return nil }

// newOllamaServer answers the tags endpoint used by Ping.
func newOllamaServer(t *testing.T, status int) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	t.Cleanup(server.Close)
	return server.URL
}

func TestInitResult_Close(t *testing.T) {
	result := &InitResult{}
	assert.NotPanics(t, result.Close)
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.EmbeddingSettings
		wantNil     bool
		errContains string
	}{
		{name: "nil settings", settings: nil, wantNil: true},
		{name: "unconfigured", settings: &domain.EmbeddingSettings{}, wantNil: true},
		{name: "unknown provider", settings: &domain.EmbeddingSettings{Provider: "unknown"}, wantNil: true},
		{name: "openai without key", settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI}, wantNil: true},
		{
			name:     "ollama",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "nomic-embed-text"},
		},
		{
			name: "openai",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
		},
		{
			name:        "openai unknown model",
			settings:    &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, APIKey: "k", Model: "mystery"},
			wantNil:     true,
			errContains: "unknown dimensions",
		},
		{
			name:        "anthropic",
			settings:    &domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"},
			wantNil:     true,
			errContains: "anthropic does not support embeddings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)

			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				require.NoError(t, err)
			}
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			assert.Equal(t, tt.settings.Model, svc.ModelName())
			assert.Positive(t, svc.Dimensions())
		})
	}
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantNil  bool
	}{
		{name: "nil settings", settings: nil, wantNil: true},
		{name: "unconfigured", settings: &domain.LLMSettings{}, wantNil: true},
		{name: "anthropic without key", settings: &domain.LLMSettings{Provider: domain.AIProviderAnthropic}, wantNil: true},
		{name: "ollama", settings: &domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.2"}},
		{name: "openai", settings: &domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "k", Model: "gpt-4o-mini"}},
		{name: "anthropic", settings: &domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "k", Model: "claude"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)

			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			assert.Equal(t, tt.settings.Model, svc.ModelName())
		})
	}
}

func TestCreateAndValidateEmbeddingService(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		settings := &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: newOllamaServer(t, http.StatusOK)}

		svc, err := CreateAndValidateEmbeddingService(settings)

		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("unreachable", func(t *testing.T) {
		settings := &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: newOllamaServer(t, http.StatusInternalServerError)}

		svc, err := CreateAndValidateEmbeddingService(settings)

		assert.Nil(t, svc)
		require.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		assert.Contains(t, err.Error(), "athena settings")
	})
}

func TestCreateAndValidateLLMService(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		settings := &domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: newOllamaServer(t, http.StatusOK)}

		svc, err := CreateAndValidateLLMService(settings)

		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("unreachable", func(t *testing.T) {
		settings := &domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: newOllamaServer(t, http.StatusBadGateway)}

		svc, err := CreateAndValidateLLMService(settings)

		assert.Nil(t, svc)
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})
}

func TestCreateTranslation(t *testing.T) {
	tests := []struct {
		name           string
		settings       *domain.TranslationSettings
		llm            driven.LLMService
		wantDetector   string
		wantTranslator string
		wantErr        error
	}{
		{name: "nil settings"},
		{
			name:     "none",
			settings: &domain.TranslationSettings{Detector: domain.TranslationProviderNone, Provider: domain.TranslationProviderNone},
		},
		{
			name:         "script detector only",
			settings:     &domain.TranslationSettings{Detector: domain.TranslationProviderScript, Provider: domain.TranslationProviderNone},
			wantDetector: "script",
		},
		{
			name:           "google for both",
			settings:       &domain.TranslationSettings{Detector: domain.TranslationProviderGoogle, Provider: domain.TranslationProviderGoogle, APIKey: "k"},
			wantDetector:   "google",
			wantTranslator: "google",
		},
		{
			name:         "google without key falls back to script detection",
			settings:     &domain.TranslationSettings{Detector: domain.TranslationProviderGoogle, Provider: domain.TranslationProviderGoogle},
			wantDetector: "script",
			wantErr:      domain.ErrTranslatorUnavailable,
		},
		{
			name:           "llm translator",
			settings:       &domain.TranslationSettings{Detector: domain.TranslationProviderScript, Provider: domain.TranslationProviderLLM},
			llm:            stubLLM{},
			wantDetector:   "script",
			wantTranslator: "llm:stub",
		},
		{
			name:         "llm translator without llm",
			settings:     &domain.TranslationSettings{Detector: domain.TranslationProviderScript, Provider: domain.TranslationProviderLLM},
			wantDetector: "script",
			wantErr:      domain.ErrTranslatorUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detector, translator, err := CreateTranslation(context.Background(), tt.settings, tt.llm, nil)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			switch tt.wantDetector {
			case "":
				assert.Nil(t, detector)
			case "script":
				assert.IsType(t, &script.Detector{}, detector)
			default:
				require.NotNil(t, detector)
				assert.Equal(t, tt.wantDetector, detector.(driven.Translator).Name())
			}

			if tt.wantTranslator == "" {
				assert.Nil(t, translator)
			} else {
				require.NotNil(t, translator)
				assert.Equal(t, tt.wantTranslator, translator.Name())
			}
		})
	}
}

func TestInit_DegradesWithWarnings(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Embedding.BaseURL = newOllamaServer(t, http.StatusOK)
	settings.LLM.BaseURL = newOllamaServer(t, http.StatusServiceUnavailable)
	settings.Translation.Provider = domain.TranslationProviderLLM

	result := Init(context.Background(), &settings, nil)
	defer result.Close()

	assert.NotNil(t, result.EmbeddingService)
	assert.Nil(t, result.LLMService)
	assert.NotNil(t, result.Detector)
	assert.Nil(t, result.Translator)
	assert.Len(t, result.Warnings, 2)
}
