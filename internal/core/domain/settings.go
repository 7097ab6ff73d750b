package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// TranslationProvider identifies a language detection or translation backend.
type TranslationProvider string

// Available translation providers.
const (
	// TranslationProviderNone disables translation; texts pass through unchanged.
	TranslationProviderNone TranslationProvider = "none"

	// TranslationProviderScript detects language from the dominant Unicode script.
	// It supports detection only.
	TranslationProviderScript TranslationProvider = "script"

	// TranslationProviderGoogle uses the Google Cloud Translation API.
	TranslationProviderGoogle TranslationProvider = "google"

	// TranslationProviderLLM asks the configured LLM to translate.
	TranslationProviderLLM TranslationProvider = "llm"
)

// IsValid returns true if the provider is recognised.
func (p TranslationProvider) IsValid() bool {
	switch p {
	case TranslationProviderNone, TranslationProviderScript, TranslationProviderGoogle, TranslationProviderLLM:
		return true
	default:
		return false
	}
}

// CanDetect reports whether the provider offers language detection.
func (p TranslationProvider) CanDetect() bool {
	return p == TranslationProviderScript || p == TranslationProviderGoogle
}

// CanTranslate reports whether the provider offers translation.
func (p TranslationProvider) CanTranslate() bool {
	return p == TranslationProviderGoogle || p == TranslationProviderLLM
}

// String returns the string representation.
func (p TranslationProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p TranslationProvider) Description() string {
	switch p {
	case TranslationProviderNone:
		return "None (pass-through)"
	case TranslationProviderScript:
		return "Unicode script heuristics (local, detection only)"
	case TranslationProviderGoogle:
		return "Google Cloud Translation (cloud)"
	case TranslationProviderLLM:
		return "Configured LLM"
	default:
		return unknownDescription
	}
}

// StoreBackend selects how the vector store snapshot is persisted.
type StoreBackend string

// Available store backends.
const (
	// StoreBackendFile writes index, chunk and metadata artifacts plus a manifest.
	StoreBackendFile StoreBackend = "file"

	// StoreBackendSQLite writes the triple into the sqlite database in one transaction.
	StoreBackendSQLite StoreBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	return b == StoreBackendFile || b == StoreBackendSQLite
}

// String returns the string representation.
func (b StoreBackend) String() string {
	return string(b)
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// Stream requests incremental generation where the provider supports it.
	Stream bool
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// TranslationSettings holds language detection and translation configuration.
type TranslationSettings struct {
	// Detector is the language detection backend.
	Detector TranslationProvider

	// Provider is the translation backend.
	Provider TranslationProvider

	// APIKey is the Google Cloud API key.
	APIKey string

	// RequestsPerSecond caps calls to a remote backend.
	RequestsPerSecond float64

	// Burst is the token bucket size for RequestsPerSecond.
	Burst int

	// CacheSize bounds the translation cache (0 = unbounded).
	CacheSize int

	// MinLength is the shortest text, in characters, that is detected or translated.
	MinLength int
}

// StoreSettings holds local persistence configuration.
type StoreSettings struct {
	// Backend selects the vector snapshot persistence format.
	Backend StoreBackend

	// DataDir is the root directory for all persisted state.
	// Empty means ~/.athena/data.
	DataDir string
}

// IngestionSettings holds ingestion pipeline configuration.
type IngestionSettings struct {
	// Workers is the size of the process-wide worker pool.
	Workers int

	// Timeout bounds a single ingestion (0 = no deadline).
	Timeout time.Duration

	// ChunkSize is the chunk window size in characters.
	ChunkSize int

	// Overlap is the number of characters shared by consecutive chunks.
	Overlap int
}

// ContextSettings holds context composition configuration.
type ContextSettings struct {
	// TopK is the number of chunks retrieved per question.
	TopK int

	// Oversample multiplies TopK to absorb source-filter rejections.
	Oversample int

	// MaxChars bounds the composed context in characters.
	MaxChars int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Translation holds detection and translation settings.
	Translation TranslationSettings

	// Store holds persistence settings.
	Store StoreSettings

	// Ingestion holds ingestion pipeline settings.
	Ingestion IngestionSettings

	// Context holds context composition settings.
	Context ContextSettings
}

// Defaults for ingestion and retrieval.
const (
	DefaultChunkSize        = 500
	DefaultChunkOverlap     = 50
	DefaultWorkers          = 4
	DefaultIngestTimeout    = 5 * time.Minute
	DefaultTopK             = 3
	DefaultOversample       = 5
	DefaultMaxContextChars  = 3500
	DefaultMinTranslateLen  = 2
	DefaultTranslateRPS     = 5.0
	DefaultTranslateBurst   = 10
	DefaultEmbeddingModel   = "nomic-embed-text"
	DefaultLLMModel         = "llama3.2"
	DefaultEmbedDimensions  = 768
	defaultTranslateBackend = TranslationProviderNone
)

// DefaultAppSettings returns settings with sensible defaults.
// Embeddings and generation default to a local Ollama instance.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModel,
		},
		LLM: LLMSettings{
			Provider: AIProviderOllama,
			Model:    DefaultLLMModel,
		},
		Translation: TranslationSettings{
			Detector:          TranslationProviderScript,
			Provider:          defaultTranslateBackend,
			RequestsPerSecond: DefaultTranslateRPS,
			Burst:             DefaultTranslateBurst,
			MinLength:         DefaultMinTranslateLen,
		},
		Store: StoreSettings{
			Backend: StoreBackendFile,
		},
		Ingestion: IngestionSettings{
			Workers:   DefaultWorkers,
			Timeout:   DefaultIngestTimeout,
			ChunkSize: DefaultChunkSize,
			Overlap:   DefaultChunkOverlap,
		},
		Context: ContextSettings{
			TopK:       DefaultTopK,
			Oversample: DefaultOversample,
			MaxChars:   DefaultMaxContextChars,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config so processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default pipeline configuration:
// display-script normalisation followed by chunking.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"rtl", "chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": DefaultChunkSize,
				"overlap":    DefaultChunkOverlap,
			},
		},
	}
}
