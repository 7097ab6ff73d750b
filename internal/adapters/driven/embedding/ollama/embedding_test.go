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
)

func TestNewEmbeddingService_Defaults(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantDims int
	}{
		{name: "default model", cfg: Config{}, wantDims: 768},
		{name: "known model", cfg: Config{Model: "all-minilm"}, wantDims: 384},
		{name: "unknown model", cfg: Config{Model: "custom"}, wantDims: DefaultDimensions},
		{name: "explicit", cfg: Config{Model: "custom", Dimensions: 3}, wantDims: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewEmbeddingService(tt.cfg)
			assert.Equal(t, tt.wantDims, service.Dimensions())
		})
	}
}

func TestEmbeddingService_EmbedBatch(t *testing.T) {
	var got embedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"embeddings":[[1,0],[0,1]]}`))
	}))
	defer server.Close()

	service := NewEmbeddingService(Config{BaseURL: server.URL, Dimensions: 2})

	vectors, err := service.EmbedBatch(context.Background(), []string{"a", "b"})

	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vectors)
	assert.Equal(t, DefaultModel, got.Model)
	assert.Equal(t, []string{"a", "b"}, got.Input)
}

func TestEmbeddingService_Embed_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "model not loaded", wantMsg: "model not loaded"},
		{name: "wrong dimensions", status: http.StatusOK, body: `{"embeddings":[[1,2,3]]}`, wantErr: domain.ErrDimensionMismatch},
		{name: "count mismatch", status: http.StatusOK, body: `{"embeddings":[]}`, wantMsg: "0 embeddings for 1 inputs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			service := NewEmbeddingService(Config{BaseURL: server.URL, Dimensions: 2})
			_, err := service.Embed(context.Background(), "a")

			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestEmbeddingService_EmbedBatch_Empty(t *testing.T) {
	service := NewEmbeddingService(Config{BaseURL: "http://127.0.0.1:1"})

	vectors, err := service.EmbedBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestEmbeddingService_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	assert.NoError(t, NewEmbeddingService(Config{BaseURL: server.URL}).Ping(context.Background()))

	server.Close()
	assert.Error(t, NewEmbeddingService(Config{BaseURL: server.URL}).Ping(context.Background()))
}
