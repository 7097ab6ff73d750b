package domain

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// LanguageTag is a base language code such as "en" or "ar".
type LanguageTag string

// Well-known language tags.
const (
	LanguageEnglish LanguageTag = "en"
	LanguageArabic  LanguageTag = "ar"

	// PivotLanguage is the language queries are normalised to before
	// retrieval and generation.
	PivotLanguage = LanguageEnglish

	// FallbackLanguage is returned when detection fails.
	FallbackLanguage = LanguageEnglish
)

// ParseLanguageTag canonicalises s to its base language ("en-US" -> "en").
// Unparseable input returns FallbackLanguage and false.
func ParseLanguageTag(s string) (LanguageTag, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FallbackLanguage, false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return FallbackLanguage, false
	}
	base, conf := tag.Base()
	if conf == language.No {
		return FallbackLanguage, false
	}
	return LanguageTag(base.String()), true
}

// String returns the tag as a string.
func (l LanguageTag) String() string {
	return string(l)
}

// IsPivot reports whether l is the pivot language.
func (l LanguageTag) IsPivot() bool {
	return l == PivotLanguage
}

// DisplayName returns the English name of the language, or the code itself.
func (l LanguageTag) DisplayName() string {
	tag, err := language.Parse(string(l))
	if err != nil {
		return string(l)
	}
	base, _ := tag.Base()
	if name := display.English.Languages().Name(base); name != "" {
		return name
	}
	return string(l)
}
