// Package llm translates text by prompting the configured generative model.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
)

// Ensure Translator implements the interface.
var _ driven.Translator = (*Translator)(nil)

// Reply budget: one token per input byte, clamped.
const (
	minMaxTokens = 64
	maxMaxTokens = 2048
)

// Translator asks an LLM to translate using the "translate" prompt.
type Translator struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// New creates an LLM-backed translator.
func New(llm driven.LLMService, prompts driven.PromptStore) *Translator {
	return &Translator{llm: llm, prompts: prompts}
}

// Name identifies the backend in logs.
func (t *Translator) Name() string {
	if t.llm == nil {
		return "llm"
	}
	return "llm:" + t.llm.ModelName()
}

// Translate renders text in target. The source language is left for the
// model to infer.
func (t *Translator) Translate(ctx context.Context, text string, _, target domain.LanguageTag) (string, error) {
	if t.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	tmpl, err := t.prompts.Load(driven.PromptTranslate)
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", driven.PromptTranslate, err)
	}
	prompt := fmt.Sprintf(tmpl, target.DisplayName(), text)

	gen, err := t.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens: min(max(len(text), minMaxTokens), maxMaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("generate translation: %w", err)
	}
	out, err := domain.Join(gen)
	if err != nil {
		return "", fmt.Errorf("generate translation: %w", err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", errors.New("llm returned an empty translation")
	}
	return out, nil
}
