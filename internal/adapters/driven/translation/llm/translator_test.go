package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
)

type mockLLM struct {
	reply  string
	err    error
	prompt string
	opts   driven.GenerateOptions
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (domain.Generation, error) {
	m.prompt = prompt
	m.opts = opts
	if m.err != nil {
		return nil, m.err
	}
	return domain.TextGeneration{Text: m.reply}, nil
}

func (m *mockLLM) ModelName() string            { return "mock" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

type mockPrompts struct {
	err error
}

func (m *mockPrompts) Load(string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "Translate to %s: %s", nil
}

func (m *mockPrompts) Reload() {}

func TestTranslator_Translate(t *testing.T) {
	llm := &mockLLM{reply: "  مرحبا  \n"}
	tr := New(llm, &mockPrompts{})

	got, err := tr.Translate(context.Background(), "Hello", domain.LanguageEnglish, domain.LanguageArabic)

	require.NoError(t, err)
	assert.Equal(t, "مرحبا", got)
	assert.Equal(t, "Translate to Arabic: Hello", llm.prompt)
	assert.Equal(t, minMaxTokens, llm.opts.MaxTokens)
	assert.Equal(t, "llm:mock", tr.Name())
}

func TestTranslator_Translate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		llm     driven.LLMService
		prompts *mockPrompts
		want    error
	}{
		{name: "no llm", llm: nil, prompts: &mockPrompts{}, want: domain.ErrLLMUnavailable},
		{name: "prompt missing", llm: &mockLLM{reply: "x"}, prompts: &mockPrompts{err: domain.ErrNotFound}, want: domain.ErrNotFound},
		{name: "generation fails", llm: &mockLLM{err: errors.New("boom")}, prompts: &mockPrompts{}},
		{name: "empty reply", llm: &mockLLM{reply: "  "}, prompts: &mockPrompts{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.llm, tt.prompts).Translate(context.Background(), "Hello", "", domain.LanguageArabic)

			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}
