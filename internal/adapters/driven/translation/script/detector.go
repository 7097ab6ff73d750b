// Package script detects the language of a text from its dominant Unicode
// script. It needs no network access and is the default detector.
package script

import (
	"context"
	"errors"
	"unicode"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
)

// Ensure Detector implements the interface.
var _ driven.LanguageDetector = (*Detector)(nil)

// ErrNoLetters is returned for texts without any letter.
var ErrNoLetters = errors.New("script: no letters to detect")

// scripts maps each recognised script to the language it most likely
// carries. Latin is assumed to be English.
var scripts = []struct {
	table *unicode.RangeTable
	lang  domain.LanguageTag
}{
	{unicode.Arabic, domain.LanguageArabic},
	{unicode.Latin, domain.LanguageEnglish},
	{unicode.Hebrew, "he"},
	{unicode.Cyrillic, "ru"},
	{unicode.Greek, "el"},
	{unicode.Devanagari, "hi"},
	{unicode.Hangul, "ko"},
	{unicode.Hiragana, "ja"},
	{unicode.Katakana, "ja"},
	{unicode.Han, "zh"},
	{unicode.Thai, "th"},
}

// Detector picks the language of the script with the most letters.
type Detector struct{}

// New creates a script detector.
func New() *Detector {
	return &Detector{}
}

// Detect returns the language of the dominant script in text.
// Ties go to the script listed first.
func (d *Detector) Detect(_ context.Context, text string) (domain.LanguageTag, error) {
	counts := make(map[domain.LanguageTag]int)
	letters := 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		for _, s := range scripts {
			if unicode.Is(s.table, r) {
				counts[s.lang]++
				break
			}
		}
	}
	if letters == 0 {
		return "", ErrNoLetters
	}

	best, bestCount := domain.FallbackLanguage, 0
	for _, s := range scripts {
		if n := counts[s.lang]; n > bestCount {
			best, bestCount = s.lang, n
		}
	}
	return best, nil
}
