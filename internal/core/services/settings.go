package services

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
	"github.com/custodia-labs/athena/internal/core/ports/driving"
	"github.com/custodia-labs/athena/internal/postprocessors/chunker"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"

	keyLLMProvider = "llm.provider"
	keyLLMModel    = "llm.model"
	keyLLMBaseURL  = "llm.base_url"
	keyLLMAPIKey   = "llm.api_key"
	keyLLMStream   = "llm.stream"

	keyTranslateDetector  = "translation.detector"
	keyTranslateProvider  = "translation.provider"
	keyTranslateAPIKey    = "translation.api_key"
	keyTranslateRPS       = "translation.requests_per_second"
	keyTranslateBurst     = "translation.burst"
	keyTranslateCacheSize = "translation.cache_size"
	keyTranslateMinLength = "translation.min_length"

	keyStoreBackend = "store.backend"
	keyStoreDataDir = "store.data_dir"

	keyIngestWorkers   = "ingestion.workers"
	keyIngestTimeout   = "ingestion.timeout"
	keyIngestChunkSize = "ingestion.chunk_size"
	keyIngestOverlap   = "ingestion.overlap"

	keyContextTopK       = "context.top_k"
	keyContextOversample = "context.oversample"
	keyContextMaxChars   = "context.max_chars"

	keyPipelineProcessors = "pipeline.processors"
)

// valueKind is the type a settable key is parsed into.
type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
	kindList
	kindAIProvider
	kindTranslationProvider
	kindStoreBackend
)

// settableKeys lists the keys accepted by Set and how their values parse.
var settableKeys = map[string]valueKind{
	keyEmbedProvider:      kindAIProvider,
	keyEmbedModel:         kindString,
	keyEmbedBaseURL:       kindString,
	keyEmbedAPIKey:        kindString,
	keyLLMProvider:        kindAIProvider,
	keyLLMModel:           kindString,
	keyLLMBaseURL:         kindString,
	keyLLMAPIKey:          kindString,
	keyLLMStream:          kindBool,
	keyTranslateDetector:  kindTranslationProvider,
	keyTranslateProvider:  kindTranslationProvider,
	keyTranslateAPIKey:    kindString,
	keyTranslateRPS:       kindFloat,
	keyTranslateBurst:     kindInt,
	keyTranslateCacheSize: kindInt,
	keyTranslateMinLength: kindInt,
	keyStoreBackend:       kindStoreBackend,
	keyStoreDataDir:       kindString,
	keyIngestWorkers:      kindInt,
	keyIngestTimeout:      kindDuration,
	keyIngestChunkSize:    kindInt,
	keyIngestOverlap:      kindInt,
	keyContextTopK:        kindInt,
	keyContextOversample:  kindInt,
	keyContextMaxChars:    kindInt,
	keyPipelineProcessors: kindList,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
			Stream:   s.getBool(keyLLMStream, defaults.LLM.Stream),
		},
		Translation: domain.TranslationSettings{
			Detector:          s.getTranslationProvider(keyTranslateDetector, defaults.Translation.Detector),
			Provider:          s.getTranslationProvider(keyTranslateProvider, defaults.Translation.Provider),
			APIKey:            s.configStore.GetString(keyTranslateAPIKey),
			RequestsPerSecond: s.getFloat(keyTranslateRPS, defaults.Translation.RequestsPerSecond),
			Burst:             s.getInt(keyTranslateBurst, defaults.Translation.Burst),
			CacheSize:         s.getInt(keyTranslateCacheSize, defaults.Translation.CacheSize),
			MinLength:         s.getInt(keyTranslateMinLength, defaults.Translation.MinLength),
		},
		Store: domain.StoreSettings{
			Backend: s.getStoreBackend(defaults.Store.Backend),
			DataDir: s.configStore.GetString(keyStoreDataDir),
		},
		Ingestion: domain.IngestionSettings{
			Workers:   s.getInt(keyIngestWorkers, defaults.Ingestion.Workers),
			Timeout:   s.getDuration(keyIngestTimeout, defaults.Ingestion.Timeout),
			ChunkSize: s.getInt(keyIngestChunkSize, defaults.Ingestion.ChunkSize),
			Overlap:   s.getIntAllowZero(keyIngestOverlap, defaults.Ingestion.Overlap),
		},
		Context: domain.ContextSettings{
			TopK:       s.getInt(keyContextTopK, defaults.Context.TopK),
			Oversample: s.getInt(keyContextOversample, defaults.Context.Oversample),
			MaxChars:   s.getInt(keyContextMaxChars, defaults.Context.MaxChars),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
		skip  bool
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String(), false},
		{keyEmbedModel, settings.Embedding.Model, false},
		{keyEmbedBaseURL, settings.Embedding.BaseURL, false},
		{keyEmbedAPIKey, settings.Embedding.APIKey, settings.Embedding.APIKey == ""},
		{keyLLMProvider, settings.LLM.Provider.String(), false},
		{keyLLMModel, settings.LLM.Model, false},
		{keyLLMBaseURL, settings.LLM.BaseURL, false},
		{keyLLMAPIKey, settings.LLM.APIKey, settings.LLM.APIKey == ""},
		{keyLLMStream, settings.LLM.Stream, false},
		{keyTranslateDetector, settings.Translation.Detector.String(), false},
		{keyTranslateProvider, settings.Translation.Provider.String(), false},
		{keyTranslateAPIKey, settings.Translation.APIKey, settings.Translation.APIKey == ""},
		{keyTranslateRPS, settings.Translation.RequestsPerSecond, false},
		{keyTranslateBurst, settings.Translation.Burst, false},
		{keyTranslateCacheSize, settings.Translation.CacheSize, false},
		{keyTranslateMinLength, settings.Translation.MinLength, false},
		{keyStoreBackend, settings.Store.Backend.String(), false},
		{keyStoreDataDir, settings.Store.DataDir, settings.Store.DataDir == ""},
		{keyIngestWorkers, settings.Ingestion.Workers, false},
		{keyIngestTimeout, settings.Ingestion.Timeout.String(), false},
		{keyIngestChunkSize, settings.Ingestion.ChunkSize, false},
		{keyIngestOverlap, settings.Ingestion.Overlap, false},
		{keyContextTopK, settings.Context.TopK, false},
		{keyContextOversample, settings.Context.Oversample, false},
		{keyContextMaxChars, settings.Context.MaxChars, false},
	}

	for _, v := range values {
		if v.skip {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set parses value according to key and stores it.
func (s *SettingsService) Set(key, value string) error {
	key = strings.TrimSpace(key)
	kind, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseValue(kind, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns every configured key.
func (s *SettingsService) Keys() []string {
	return s.configStore.Keys()
}

// SettableKeys returns the keys accepted by Set, sorted.
func SettableKeys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	if model != "" {
		settings.Embedding.Model = model
	} else if defaultModel, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		settings.Embedding.Model = defaultModel
	}

	if provider.IsLocal() {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.Embedding.BaseURL = ""
	}
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.LLM.BaseURL = ""
	}
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetTranslationProvider configures the translation backend.
// Google also becomes the detector since it offers both.
func (s *SettingsService) SetTranslationProvider(provider domain.TranslationProvider, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid translation provider: %s", provider)
	}
	if provider == domain.TranslationProviderScript {
		return fmt.Errorf("provider %s supports detection only", provider)
	}
	if provider == domain.TranslationProviderGoogle && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Translation.Provider = provider
	settings.Translation.APIKey = apiKey
	if provider == domain.TranslationProviderGoogle {
		settings.Translation.Detector = domain.TranslationProviderGoogle
	}

	return s.Save(settings)
}

// Validate checks if current settings are complete.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider %q is not configured", settings.Embedding.Provider)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("LLM provider %q is not configured", settings.LLM.Provider)
	}
	if settings.Translation.Provider == domain.TranslationProviderGoogle && settings.Translation.APIKey == "" {
		return fmt.Errorf("translation provider %q requires an API key", settings.Translation.Provider)
	}
	if !settings.Store.Backend.IsValid() {
		return fmt.Errorf("invalid store backend: %s", settings.Store.Backend)
	}
	if err := chunker.Validate(settings.Ingestion.ChunkSize, settings.Ingestion.Overlap); err != nil {
		return fmt.Errorf("ingestion chunking: %w", err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// GetPipelineConfig returns the post-processor pipeline configuration.
// Chunk size and overlap follow the ingestion settings unless a
// pipeline.chunker.* key overrides them.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	cfg := domain.DefaultPipelineConfig()

	if processors := s.configStore.GetStringSlice(keyPipelineProcessors); len(processors) > 0 {
		cfg.Processors = processors
	}

	settings, _ := s.Get()
	if settings != nil {
		cfg.ProcessorConfigs["chunker"] = map[string]any{
			"chunk_size": settings.Ingestion.ChunkSize,
			"overlap":    settings.Ingestion.Overlap,
		}
	}

	for _, name := range cfg.Processors {
		overrides := s.loadProcessorConfig("pipeline." + name + ".")
		if len(overrides) == 0 {
			continue
		}
		existing := cfg.ProcessorConfigs[name]
		if existing == nil {
			existing = make(map[string]any)
		}
		for k, v := range overrides {
			existing[k] = v
		}
		cfg.ProcessorConfigs[name] = existing
	}

	return cfg
}

// loadProcessorConfig loads config keys with a given prefix into a map.
func (s *SettingsService) loadProcessorConfig(prefix string) map[string]any {
	cfg := make(map[string]any)
	for _, key := range []string{"chunk_size", "overlap"} {
		if val, exists := s.configStore.Get(prefix + key); exists {
			cfg[key] = val
		}
	}
	return cfg
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getIntAllowZero treats an explicit 0 as a value rather than "unset".
func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getTranslationProvider(
	key string, defaultVal domain.TranslationProvider,
) domain.TranslationProvider {
	provider := domain.TranslationProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getStoreBackend(defaultVal domain.StoreBackend) domain.StoreBackend {
	backend := domain.StoreBackend(s.configStore.GetString(keyStoreBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func parseValue(kind valueKind, value string) (any, error) {
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("not an integer: %q", value)
		}
		if n < 0 {
			return nil, fmt.Errorf("must not be negative: %d", n)
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", value)
		}
		return f, nil
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("not a boolean: %q", value)
		}
		return b, nil
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return nil, fmt.Errorf("not a duration: %q", value)
		}
		return value, nil
	case kindList:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items, nil
	case kindAIProvider:
		if !domain.AIProvider(value).IsValid() {
			return nil, fmt.Errorf("unknown provider %q", value)
		}
		return value, nil
	case kindTranslationProvider:
		if !domain.TranslationProvider(value).IsValid() {
			return nil, fmt.Errorf("unknown translation provider %q", value)
		}
		return value, nil
	case kindStoreBackend:
		if !domain.StoreBackend(value).IsValid() {
			return nil, fmt.Errorf("unknown store backend %q", value)
		}
		return value, nil
	default:
		return value, nil
	}
}
