package domain

import "time"

// ChatTurn is one question and answer in the session history.
// Turns are only ever appended; the toggle action is the single
// in-place mutation, setting or clearing CachedTranslation.
type ChatTurn struct {
	// ID uniquely identifies the turn.
	ID string

	// Query is the user's question as typed.
	Query string

	// QueryLang is the detected language of Query.
	QueryLang LanguageTag

	// Response is the answer shown to the user.
	Response string

	// ResponseLang is the language of Response.
	ResponseLang LanguageTag

	// CachedTranslation is Response rendered in TranslationLang, once toggled on.
	CachedTranslation *string

	// TranslationLang is the language of CachedTranslation.
	TranslationLang LanguageTag

	// CreatedAt is when the turn was recorded.
	CreatedAt time.Time
}

// TranslationTarget returns the language the toggle translates Response into:
// the pivot language for a non-pivot response, otherwise the user's language,
// and Arabic when both sides are already the pivot.
func (t *ChatTurn) TranslationTarget() LanguageTag {
	if t.ResponseLang != PivotLanguage {
		return PivotLanguage
	}
	if t.QueryLang != "" && t.QueryLang != PivotLanguage {
		return t.QueryLang
	}
	return LanguageArabic
}

// HasTranslation reports whether a translation is currently shown.
func (t *ChatTurn) HasTranslation() bool {
	return t.CachedTranslation != nil
}
