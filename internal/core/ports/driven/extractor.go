package driven

import (
	"context"

	"github.com/custodia-labs/athena/internal/core/domain"
)

// Extractor pulls text and images out of a stored document.
// Both halves fail open from the caller's point of view: the ingestion
// pipeline logs extractor errors and decides how far they propagate.
type Extractor interface {
	// Name identifies the extractor in logs.
	Name() string

	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// SupportedExtensions returns lower-case file extensions (".pdf").
	SupportedExtensions() []string

	// ExtractText returns the full text of the document at path.
	ExtractText(ctx context.Context, path string) (string, error)

	// PageCount returns the number of pages that may carry images.
	// Extractors for formats without images return 0.
	PageCount(ctx context.Context, path string) (int, error)

	// ExtractPageImages returns the images on one zero-based page.
	ExtractPageImages(ctx context.Context, path string, page int) ([]domain.ExtractedImage, error)
}

// ExtractorRegistry selects the extractor for a document.
type ExtractorRegistry interface {
	// Resolve returns the extractor for the MIME type, falling back to the
	// filename extension. Returns domain.ErrUnsupportedType if none match.
	Resolve(mimeType, filename string) (Extractor, error)

	// Register adds an extractor to the registry.
	Register(extractor Extractor)

	// SupportedExtensions returns every extension that can be ingested.
	SupportedExtensions() []string
}
