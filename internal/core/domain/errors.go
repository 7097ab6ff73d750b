package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no extractor handles the document type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNoText indicates a document produced no extractable text.
	// The document would contribute nothing searchable.
	ErrNoText = errors.New("no extractable text")

	// ErrDimensionMismatch indicates an embedding whose length differs from the
	// dimension fixed for the store. Mixing dimensions is a configuration error.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrIngestTimeout indicates the caller's deadline expired before ingestion joined.
	// Chunks already added remain valid and queryable.
	ErrIngestTimeout = errors.New("ingestion timed out")

	// ErrStoreNotFound indicates no complete persisted vector store exists.
	// Loaders treat it as an empty store.
	ErrStoreNotFound = errors.New("vector store not found")

	// ErrPoolClosed indicates work was submitted after the worker pool shut down.
	ErrPoolClosed = errors.New("worker pool closed")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Chat, summaries and quizzes are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Ingestion and retrieval are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrTranslatorUnavailable indicates no translation backend is configured.
	ErrTranslatorUnavailable = errors.New("translation backend unavailable")

	// ErrUnauthorized indicates a backend rejected the configured credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates a backend rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// IngestError reports a failed ingestion for a single document.
type IngestError struct {
	// SourceID is the document name the failure belongs to.
	SourceID string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *IngestError) Error() string {
	return fmt.Sprintf("ingest %s: %v", e.SourceID, e.Err)
}

// Unwrap returns the underlying cause.
func (e *IngestError) Unwrap() error {
	return e.Err
}
