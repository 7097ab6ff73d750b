package driving

import (
	"context"

	"github.com/custodia-labs/athena/internal/core/domain"
)

// TranslationService detects languages and translates through a cache.
// None of its methods fail: backend errors fall back to the input text.
type TranslationService interface {
	// DetectLanguage returns the language of text, or the fallback tag.
	DetectLanguage(ctx context.Context, text string) domain.LanguageTag

	// Translate renders text in target, consulting the cache first.
	Translate(ctx context.Context, text string, target domain.LanguageTag) string

	// ToPivot detects the language of text and translates it to the pivot language.
	ToPivot(ctx context.Context, text string) (string, domain.LanguageTag)

	// ToUser translates a pivot-language text back into lang.
	ToUser(ctx context.Context, text string, lang domain.LanguageTag) string
}
