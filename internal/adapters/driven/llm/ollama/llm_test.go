package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
)

func TestLLMService_Generate(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"response":"Physics is the study of matter.","done":true}`))
	}))
	defer server.Close()

	service := NewLLMService(LLMConfig{BaseURL: server.URL})
	gen, err := service.Generate(context.Background(), "What is physics?", driven.GenerateOptions{
		MaxTokens: 512,
		StopWords: []string{"Question:"},
	})

	require.NoError(t, err)
	text, err := domain.Join(gen)
	require.NoError(t, err)
	assert.Equal(t, "Physics is the study of matter.", text)

	assert.Equal(t, DefaultLLMModel, got.Model)
	assert.False(t, got.Stream)
	require.NotNil(t, got.Options)
	assert.Equal(t, 512, got.Options.NumPredict)
	assert.Equal(t, []string{"Question:"}, got.Options.Stop)
}

func TestLLMService_Generate_NoOptions(t *testing.T) {
	var raw map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"response":"ok","done":true}`))
	}))
	defer server.Close()

	_, err := NewLLMService(LLMConfig{BaseURL: server.URL}).Generate(context.Background(), "hi", driven.GenerateOptions{})

	require.NoError(t, err)
	assert.NotContains(t, raw, "options")
}

func TestLLMService_Generate_Stream(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr string
	}{
		{
			name: "complete",
			body: "{\"response\":\"Phys\",\"done\":false}\n\n{\"response\":\"ics\",\"done\":false}\n{\"response\":\"\",\"done\":true}\n",
			want: "Physics",
		},
		{
			name:    "error mid stream",
			body:    "{\"response\":\"Phys\",\"done\":false}\n{\"error\":\"model crashed\"}\n",
			want:    "Phys",
			wantErr: "model crashed",
		},
		{
			name:    "truncated",
			body:    "{\"response\":\"Phys\",\"done\":false}\n",
			want:    "Phys",
			wantErr: "ended before done",
		},
		{
			name:    "garbage",
			body:    "not json\n",
			wantErr: "decode stream",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var req generateRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.True(t, req.Stream)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			service := NewLLMService(LLMConfig{BaseURL: server.URL})
			gen, err := service.Generate(context.Background(), "q", driven.GenerateOptions{Stream: true})
			require.NoError(t, err)
			require.IsType(t, domain.StreamGeneration{}, gen)

			text, err := domain.Join(gen)

			assert.Equal(t, tt.want, text)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLLMService_Generate_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'x' not found"}`))
	}))
	defer server.Close()

	_, err := NewLLMService(LLMConfig{BaseURL: server.URL, Model: "x"}).
		Generate(context.Background(), "q", driven.GenerateOptions{Stream: true})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestLLMService_PingAndModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	service := NewLLMService(LLMConfig{BaseURL: server.URL, Model: "mistral"})

	assert.NoError(t, service.Ping(context.Background()))
	assert.Equal(t, "mistral", service.ModelName())
	assert.NoError(t, service.Close())
}
