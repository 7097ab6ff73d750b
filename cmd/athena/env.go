package main

import (
	"os"

	"github.com/custodia-labs/athena/internal/core/domain"
)

// Environment variables consulted for API keys missing from the config file.
const (
	envOpenAIKey    = "OPENAI_API_KEY"
	envAnthropicKey = "ANTHROPIC_API_KEY"
	envGoogleKey    = "GOOGLE_API_KEY"
)

// applyEnvKeys fills empty API keys from the environment (or a .env file).
// Configured keys always win. The settings are not saved.
func applyEnvKeys(settings *domain.AppSettings) {
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = providerKey(settings.Embedding.Provider)
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = providerKey(settings.LLM.Provider)
	}
	if settings.Translation.APIKey == "" &&
		(settings.Translation.Provider == domain.TranslationProviderGoogle ||
			settings.Translation.Detector == domain.TranslationProviderGoogle) {
		settings.Translation.APIKey = os.Getenv(envGoogleKey)
	}
}

func providerKey(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return os.Getenv(envOpenAIKey)
	case domain.AIProviderAnthropic:
		return os.Getenv(envAnthropicKey)
	default:
		return ""
	}
}
