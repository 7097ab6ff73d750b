package mcp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil context service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingContextService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Context: &mockContextService{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})

	t.Run("context defaults option", func(t *testing.T) {
		server, err := NewServer(&Ports{Context: &mockContextService{}}, WithContextDefaults(7, 0))
		require.NoError(t, err)
		assert.Equal(t, 7, server.topK)
		assert.Equal(t, 3500, server.maxChars)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil context service returns error", func(t *testing.T) {
		assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingContextService)
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Context:   &mockContextService{},
			Ingestion: &mockIngestionService{},
			Chat:      &mockChatService{},
			Store:     &mockStoreService{},
		}
		assert.NoError(t, ports.Validate())
	})
}

func TestServer_Handler_ServesMetrics(t *testing.T) {
	server, err := NewServer(&Ports{Context: &mockContextService{}})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "athena_")
}
