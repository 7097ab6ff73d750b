package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/athena/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/athena/internal/core/domain"
)

// mockAIValidator records the configurations it was asked to validate.
type mockAIValidator struct {
	embeddingErr error
	llmErr       error
	embedding    *domain.EmbeddingSettings
	llm          *domain.LLMSettings
}

func (m *mockAIValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	m.embedding = config
	return m.embeddingErr
}

func (m *mockAIValidator) ValidateLLM(config *domain.LLMSettings) error {
	m.llm = config
	return m.llmErr
}

func TestNewSettingsService(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "openai")
	_ = store.Set("embedding.model", "text-embedding-3-large")
	_ = store.Set("llm.stream", true)
	_ = store.Set("translation.provider", "google")
	_ = store.Set("translation.requests_per_second", 2.5)
	_ = store.Set("store.backend", "sqlite")
	_ = store.Set("ingestion.timeout", "30s")
	_ = store.Set("ingestion.overlap", 0)
	_ = store.Set("context.top_k", 7)

	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.True(t, settings.LLM.Stream)
	assert.Equal(t, domain.TranslationProviderGoogle, settings.Translation.Provider)
	assert.InDelta(t, 2.5, settings.Translation.RequestsPerSecond, 1e-9)
	assert.Equal(t, domain.StoreBackendSQLite, settings.Store.Backend)
	assert.Equal(t, 30*time.Second, settings.Ingestion.Timeout)
	assert.Zero(t, settings.Ingestion.Overlap)
	assert.Equal(t, 7, settings.Context.TopK)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "invalid_provider")
	_ = store.Set("translation.detector", "telepathy")
	_ = store.Set("store.backend", "floppy")
	_ = store.Set("ingestion.timeout", "soon")

	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Translation.Detector, settings.Translation.Detector)
	assert.Equal(t, defaults.Store.Backend, settings.Store.Backend)
	assert.Equal(t, defaults.Ingestion.Timeout, settings.Ingestion.Timeout)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	want := domain.DefaultAppSettings()
	want.Embedding.Provider = domain.AIProviderOpenAI
	want.Embedding.Model = "text-embedding-3-small"
	want.Embedding.APIKey = "sk-test"
	want.LLM.Stream = true
	want.Translation.Provider = domain.TranslationProviderLLM
	want.Translation.CacheSize = 100
	want.Store.Backend = domain.StoreBackendSQLite
	want.Store.DataDir = "/tmp/athena"
	want.Ingestion.Timeout = time.Minute
	want.Ingestion.ChunkSize = 800
	want.Context.MaxChars = 5000

	require.NoError(t, service.Save(&want))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestSettingsService_Save_SkipsEmptySecrets(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	settings := domain.DefaultAppSettings()
	require.NoError(t, service.Save(&settings))

	for _, key := range []string{"embedding.api_key", "llm.api_key", "translation.api_key", "store.data_dir"} {
		_, exists := store.Get(key)
		assert.False(t, exists, key)
	}
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  any
	}{
		{name: "string", key: "llm.model", value: "mistral", want: "mistral"},
		{name: "int", key: "context.top_k", value: " 4 ", want: 4},
		{name: "zero int", key: "ingestion.overlap", value: "0", want: 0},
		{name: "float", key: "translation.requests_per_second", value: "0.5", want: 0.5},
		{name: "bool", key: "llm.stream", value: "true", want: true},
		{name: "duration", key: "ingestion.timeout", value: "90s", want: "90s"},
		{name: "list", key: "pipeline.processors", value: "rtl, chunker,", want: []string{"rtl", "chunker"}},
		{name: "provider", key: "embedding.provider", value: "openai", want: "openai"},
		{name: "translation provider", key: "translation.provider", value: "google", want: "google"},
		{name: "backend", key: "store.backend", value: "sqlite", want: "sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			service := NewSettingsService(store, nil)

			require.NoError(t, service.Set(tt.key, tt.value))

			got, ok := store.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettingsService_Set_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown key", key: "search.mode", value: "hybrid"},
		{name: "not an int", key: "context.top_k", value: "three"},
		{name: "negative int", key: "ingestion.workers", value: "-1"},
		{name: "not a float", key: "translation.requests_per_second", value: "fast"},
		{name: "not a bool", key: "llm.stream", value: "maybe"},
		{name: "not a duration", key: "ingestion.timeout", value: "5 minutes"},
		{name: "unknown provider", key: "llm.provider", value: "gemini"},
		{name: "unknown translation provider", key: "translation.detector", value: "deepl"},
		{name: "unknown backend", key: "store.backend", value: "postgres"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			service := NewSettingsService(store, nil)

			err := service.Set(tt.key, tt.value)

			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, store.Keys())
		})
	}
}

func TestSettingsService_Keys(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.Set("llm.model", "mistral"))
	require.NoError(t, service.Set("context.top_k", "4"))

	assert.Equal(t, []string{"context.top_k", "llm.model"}, service.Keys())
}

func TestSettableKeys_Sorted(t *testing.T) {
	keys := SettableKeys()

	assert.IsIncreasing(t, keys)
	assert.Contains(t, keys, "translation.cache_size")
	assert.Contains(t, keys, "pipeline.processors")
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	tests := []struct {
		name      string
		provider  domain.AIProvider
		model     string
		apiKey    string
		wantModel string
		wantURL   string
	}{
		{
			name:      "ollama default model",
			provider:  domain.AIProviderOllama,
			wantModel: "nomic-embed-text",
			wantURL:   "http://localhost:11434",
		},
		{
			name:      "openai explicit model",
			provider:  domain.AIProviderOpenAI,
			model:     "text-embedding-3-large",
			apiKey:    "sk-test",
			wantModel: "text-embedding-3-large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(), nil)

			require.NoError(t, service.SetEmbeddingProvider(tt.provider, tt.model, tt.apiKey))

			settings, err := service.Get()
			require.NoError(t, err)
			assert.Equal(t, tt.provider, settings.Embedding.Provider)
			assert.Equal(t, tt.wantModel, settings.Embedding.Model)
			assert.Equal(t, tt.wantURL, settings.Embedding.BaseURL)
			assert.Equal(t, tt.apiKey, settings.Embedding.APIKey)
		})
	}
}

func TestSettingsService_SetEmbeddingProvider_Errors(t *testing.T) {
	tests := []struct {
		name     string
		provider domain.AIProvider
		apiKey   string
		wantErr  string
	}{
		{name: "invalid", provider: "nope", wantErr: "invalid embedding provider"},
		{name: "anthropic", provider: domain.AIProviderAnthropic, apiKey: "key", wantErr: "does not support embeddings"},
		{name: "missing key", provider: domain.AIProviderOpenAI, wantErr: "API key required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(), nil)

			err := service.SetEmbeddingProvider(tt.provider, "", tt.apiKey)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	tests := []struct {
		name      string
		provider  domain.AIProvider
		apiKey    string
		wantModel string
		wantURL   string
	}{
		{name: "ollama", provider: domain.AIProviderOllama, wantModel: "llama3.2", wantURL: "http://localhost:11434"},
		{name: "openai", provider: domain.AIProviderOpenAI, apiKey: "sk-test", wantModel: "gpt-4o-mini"},
		{name: "anthropic", provider: domain.AIProviderAnthropic, apiKey: "sk-ant", wantModel: "claude-3-5-sonnet-latest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(), nil)

			require.NoError(t, service.SetLLMProvider(tt.provider, "", tt.apiKey))

			settings, err := service.Get()
			require.NoError(t, err)
			assert.Equal(t, tt.provider, settings.LLM.Provider)
			assert.Equal(t, tt.wantModel, settings.LLM.Model)
			assert.Equal(t, tt.wantURL, settings.LLM.BaseURL)
		})
	}
}

func TestSettingsService_SetLLMProvider_Errors(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	err := service.SetLLMProvider("nope", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid LLM provider")

	err = service.SetLLMProvider(domain.AIProviderAnthropic, "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key required")
}

func TestSettingsService_SetTranslationProvider(t *testing.T) {
	t.Run("google detects too", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), nil)

		require.NoError(t, service.SetTranslationProvider(domain.TranslationProviderGoogle, "g-key"))

		settings, err := service.Get()
		require.NoError(t, err)
		assert.Equal(t, domain.TranslationProviderGoogle, settings.Translation.Provider)
		assert.Equal(t, domain.TranslationProviderGoogle, settings.Translation.Detector)
		assert.Equal(t, "g-key", settings.Translation.APIKey)
	})

	t.Run("llm keeps detector", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), nil)

		require.NoError(t, service.SetTranslationProvider(domain.TranslationProviderLLM, ""))

		settings, err := service.Get()
		require.NoError(t, err)
		assert.Equal(t, domain.TranslationProviderLLM, settings.Translation.Provider)
		assert.Equal(t, domain.TranslationProviderScript, settings.Translation.Detector)
	})

	t.Run("errors", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), nil)

		assert.Error(t, service.SetTranslationProvider("deepl", "key"))
		assert.Error(t, service.SetTranslationProvider(domain.TranslationProviderScript, ""))
		assert.Error(t, service.SetTranslationProvider(domain.TranslationProviderGoogle, ""))
	})
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		setup   map[string]any
		wantErr string
	}{
		{name: "defaults", setup: nil},
		{name: "embedding without key", setup: map[string]any{"embedding.provider": "openai"}, wantErr: "embedding provider"},
		{name: "llm without key", setup: map[string]any{"llm.provider": "anthropic"}, wantErr: "LLM provider"},
		{name: "google without key", setup: map[string]any{"translation.provider": "google"}, wantErr: "requires an API key"},
		{name: "overlap too large", setup: map[string]any{"ingestion.chunk_size": 100, "ingestion.overlap": 100}, wantErr: "ingestion chunking"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			for k, v := range tt.setup {
				_ = store.Set(k, v)
			}
			service := NewSettingsService(store, nil)

			err := service.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}

func TestSettingsService_ValidateAIConfig(t *testing.T) {
	t.Run("no validator", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), nil)

		assert.NoError(t, service.ValidateEmbeddingConfig())
		assert.NoError(t, service.ValidateLLMConfig())
	})

	t.Run("delegates current settings", func(t *testing.T) {
		validator := &mockAIValidator{llmErr: errors.New("connection refused")}
		service := NewSettingsService(memory.NewConfigStore(), validator)

		require.NoError(t, service.ValidateEmbeddingConfig())
		require.NotNil(t, validator.embedding)
		assert.Equal(t, domain.AIProviderOllama, validator.embedding.Provider)

		err := service.ValidateLLMConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
		require.NotNil(t, validator.llm)
		assert.Equal(t, domain.DefaultLLMModel, validator.llm.Model)
	})
}

func TestSettingsService_GetPipelineConfig(t *testing.T) {
	t.Run("defaults follow ingestion settings", func(t *testing.T) {
		store := memory.NewConfigStore()
		_ = store.Set("ingestion.chunk_size", 300)
		_ = store.Set("ingestion.overlap", 30)
		service := NewSettingsService(store, nil)

		cfg := service.GetPipelineConfig()

		assert.Equal(t, []string{"rtl", "chunker"}, cfg.Processors)
		assert.Equal(t, 300, cfg.GetProcessorConfig("chunker")["chunk_size"])
		assert.Equal(t, 30, cfg.GetProcessorConfig("chunker")["overlap"])
	})

	t.Run("processor list and overrides", func(t *testing.T) {
		store := memory.NewConfigStore()
		_ = store.Set("pipeline.processors", []string{"chunker"})
		_ = store.Set("pipeline.chunker.chunk_size", 1000)
		service := NewSettingsService(store, nil)

		cfg := service.GetPipelineConfig()

		assert.Equal(t, []string{"chunker"}, cfg.Processors)
		assert.Equal(t, 1000, cfg.GetProcessorConfig("chunker")["chunk_size"])
		assert.Equal(t, domain.DefaultChunkOverlap, cfg.GetProcessorConfig("chunker")["overlap"])
	})
}
