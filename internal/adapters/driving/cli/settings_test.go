package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/athena/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSettingsShowCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.settings.LLM.Provider = domain.AIProviderOpenAI
	ts.settings.settings.LLM.APIKey = "sk-1234567890abcdef"
	ts.settings.settings.Translation.Provider = domain.TranslationProviderGoogle
	ts.settings.settings.Translation.CacheSize = 100

	out, err := execute(t, "", "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "Provider: Ollama (local)")
	assert.Contains(t, out, "API Key: sk-1...cdef")
	assert.Contains(t, out, "Provider: Google Cloud Translation (cloud)")
	assert.Contains(t, out, "API Key: (not set)")
	assert.Contains(t, out, "Cache: 100 entries")
	assert.Contains(t, out, "Top k: 3 (oversample x5)")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShowCmd_ValidationWarning(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	settingsService = &failingValidate{mockSettingsService: ts.settings}

	out, err := execute(t, "", "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning: embedding not configured")
}

type failingValidate struct {
	*mockSettingsService
}

func (f *failingValidate) Validate() error {
	return errors.New("embedding not configured")
}

func TestSettingsSetCmd(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		want    string
		wantErr bool
	}{
		{name: "plain value", key: "context.top_k", value: "5", want: "context.top_k = 5"},
		{name: "api key is masked", key: "llm.api_key", value: "sk-1234567890abcdef", want: "llm.api_key = sk-1...cdef"},
		{name: "invalid key", key: "nodots", value: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, cleanup := setupTestServices()
			defer cleanup()

			out, err := execute(t, "", "settings", "set", tt.key, tt.value)

			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
			assert.Equal(t, tt.value, ts.settings.set[tt.key])
		})
	}
}

func TestSettingsSetCmd_HelpListsKeys(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "", "settings", "set", "--help")

	require.NoError(t, err)
	assert.Contains(t, out, "Keys:")
	assert.Contains(t, out, "context.top_k")
	assert.Contains(t, out, "llm.model")
}

func TestSettingsSetKeyCmd_RejectsUnknownTarget(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "", "settings", "set-key", "github")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown key target")
}
