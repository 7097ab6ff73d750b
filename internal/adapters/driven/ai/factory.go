// Package ai provides factory functions for creating AI service adapters:
// embeddings, generation, language detection and translation.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/athena/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/athena/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/athena/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/athena/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/athena/internal/adapters/driven/llm/openai"
	googletranslate "github.com/custodia-labs/athena/internal/adapters/driven/translation/google"
	llmtranslate "github.com/custodia-labs/athena/internal/adapters/driven/translation/llm"
	"github.com/custodia-labs/athena/internal/adapters/driven/translation/script"
	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// fixHint is appended to configuration errors.
const fixHint = "Run 'athena settings show' and 'athena settings set' to fix"

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Detector         driven.LanguageDetector
	Translator       driven.Translator
	Warnings         []string // Non-fatal issues that disabled a service.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init creates every AI service from settings. Unreachable or misconfigured
// services are left nil and reported in Warnings so the caller can degrade.
func Init(ctx context.Context, settings *domain.AppSettings, prompts driven.PromptStore) *InitResult {
	result := &InitResult{}

	embedder, err := CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	}
	result.EmbeddingService = embedder

	llm, err := CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	}
	result.LLMService = llm

	detector, translator, err := CreateTranslation(ctx, &settings.Translation, llm, prompts)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	}
	result.Detector = detector
	result.Translator = translator

	return result
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	return svc, nil
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		// Native dimensions come from the model table; passing them would
		// make the API truncate, which older models reject.
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	case domain.AIProviderAnthropic:
		return nil, errors.New("anthropic does not support embeddings, use ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		svc, err := openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	case domain.AIProviderAnthropic:
		svc, err := anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// CreateTranslation builds the language detector and translator. Either may
// be nil: a nil detector makes every text the pivot language, a nil
// translator passes texts through. The Google client serves both roles when
// selected for both.
func CreateTranslation(
	ctx context.Context,
	settings *domain.TranslationSettings,
	llm driven.LLMService,
	prompts driven.PromptStore,
) (driven.LanguageDetector, driven.Translator, error) {
	if settings == nil {
		return nil, nil, nil
	}

	var google *googletranslate.Translator
	needGoogle := settings.Detector == domain.TranslationProviderGoogle ||
		settings.Provider == domain.TranslationProviderGoogle
	if needGoogle {
		g, err := googletranslate.New(ctx, googletranslate.Config{
			APIKey:            settings.APIKey,
			RequestsPerSecond: settings.RequestsPerSecond,
			Burst:             settings.Burst,
		})
		if err != nil {
			// Detection still works offline.
			return script.New(), nil, fmt.Errorf("%w: %w. %s", domain.ErrTranslatorUnavailable, err, fixHint)
		}
		google = g
	}

	var detector driven.LanguageDetector
	switch settings.Detector {
	case domain.TranslationProviderGoogle:
		detector = google
	case domain.TranslationProviderScript:
		detector = script.New()
	}

	var translator driven.Translator
	switch settings.Provider {
	case domain.TranslationProviderGoogle:
		translator = google
	case domain.TranslationProviderLLM:
		if llm == nil {
			return detector, nil, fmt.Errorf("%w: translation provider llm needs a configured LLM",
				domain.ErrTranslatorUnavailable)
		}
		translator = llmtranslate.New(llm, prompts)
	}

	return detector, translator, nil
}
