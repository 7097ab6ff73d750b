package driven

import (
	"context"

	"github.com/custodia-labs/athena/internal/core/domain"
)

// LanguageDetector identifies the language of a text.
type LanguageDetector interface {
	// Detect returns the best guess for the language of text.
	Detect(ctx context.Context, text string) (domain.LanguageTag, error)
}

// Translator converts text between languages.
type Translator interface {
	// Translate renders text in target. An empty source means auto-detect.
	Translate(ctx context.Context, text string, source, target domain.LanguageTag) (string, error)

	// Name identifies the backend in logs.
	Name() string
}
