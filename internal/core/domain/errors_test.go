package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrNoText", ErrNoText},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
		{"ErrIngestTimeout", ErrIngestTimeout},
		{"ErrStoreNotFound", ErrStoreNotFound},
		{"ErrPoolClosed", ErrPoolClosed},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrTranslatorUnavailable", ErrTranslatorUnavailable},
		{"ErrUnauthorized", ErrUnauthorized},
		{"ErrRateLimited", ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrNotFound(t *testing.T) {
	assert.Equal(t, "not found", ErrNotFound.Error())
	assert.True(t, errors.Is(ErrNotFound, ErrNotFound))
	assert.False(t, errors.Is(ErrNotFound, ErrInvalidInput))
}

func TestIngestError(t *testing.T) {
	cause := fmt.Errorf("embed chunks: %w", ErrEmbeddingUnavailable)
	err := error(&IngestError{SourceID: "notes.pdf", Err: cause})

	assert.Equal(t, "ingest notes.pdf: embed chunks: embedding service unavailable", err.Error())
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)

	var ingestErr *IngestError
	assert.True(t, errors.As(err, &ingestErr))
	assert.Equal(t, "notes.pdf", ingestErr.SourceID)
}

func TestIngestError_WrapsTimeout(t *testing.T) {
	err := error(&IngestError{
		SourceID: "slow.pdf",
		Err:      fmt.Errorf("%w: %w", ErrIngestTimeout, context.DeadlineExceeded),
	})

	assert.ErrorIs(t, err, ErrIngestTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
