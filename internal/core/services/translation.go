package services

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
	"github.com/custodia-labs/athena/internal/core/ports/driving"
	"github.com/custodia-labs/athena/internal/logger"
	"github.com/custodia-labs/athena/internal/metrics"
)

// Ensure TranslationService implements the interface.
var _ driving.TranslationService = (*TranslationService)(nil)

// cacheKey identifies a translation: the same text may be cached once per target.
type cacheKey struct {
	text   string
	target domain.LanguageTag
}

type cacheEntry struct {
	key   cacheKey
	value string
}

// TranslationService wraps a detector and a translator with a memoising
// cache. Backend failures are never surfaced: the input text is returned.
type TranslationService struct {
	detector   driven.LanguageDetector
	translator driven.Translator
	minLength  int
	capacity   int

	mu      sync.Mutex
	entries map[cacheKey]*list.Element
	recency *list.List // front is most recently used

	group singleflight.Group
}

// TranslationOption configures the translation service.
type TranslationOption func(*TranslationService)

// WithCacheSize bounds the cache to n entries, evicting the least recently
// used. Zero or less keeps the cache unbounded.
func WithCacheSize(n int) TranslationOption {
	return func(s *TranslationService) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithMinLength sets the shortest text, in characters, worth detecting or translating.
func WithMinLength(n int) TranslationOption {
	return func(s *TranslationService) {
		if n > 0 {
			s.minLength = n
		}
	}
}

// NewTranslationService creates a translation service.
// Either backend may be nil: detection then falls back to the pivot tag and
// translation passes text through.
func NewTranslationService(
	detector driven.LanguageDetector,
	translator driven.Translator,
	opts ...TranslationOption,
) *TranslationService {
	s := &TranslationService{
		detector:   detector,
		translator: translator,
		minLength:  domain.DefaultMinTranslateLen,
		entries:    make(map[cacheKey]*list.Element),
		recency:    list.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DetectLanguage returns the language of text, or domain.FallbackLanguage
// when the text is too short or detection fails.
func (s *TranslationService) DetectLanguage(ctx context.Context, text string) domain.LanguageTag {
	if s.detector == nil || s.tooShort(text) {
		return domain.FallbackLanguage
	}

	tag, err := s.detector.Detect(ctx, text)
	if err != nil {
		logger.Debug("Language detection failed, assuming %s: %v", domain.FallbackLanguage, err)
		return domain.FallbackLanguage
	}
	canonical, _ := domain.ParseLanguageTag(string(tag))
	return canonical
}

// Translate renders text in target. Short texts and backend failures
// return text unchanged; failures are not cached.
func (s *TranslationService) Translate(ctx context.Context, text string, target domain.LanguageTag) string {
	return s.translate(ctx, text, "", target)
}

// ToPivot detects the language of text and translates it to the pivot language.
func (s *TranslationService) ToPivot(ctx context.Context, text string) (string, domain.LanguageTag) {
	lang := s.DetectLanguage(ctx, text)
	if lang.IsPivot() {
		return text, lang
	}
	return s.translate(ctx, text, lang, domain.PivotLanguage), lang
}

// ToUser translates a pivot-language text into lang.
func (s *TranslationService) ToUser(ctx context.Context, text string, lang domain.LanguageTag) string {
	if lang == "" || lang.IsPivot() {
		return text
	}
	return s.translate(ctx, text, domain.PivotLanguage, lang)
}

// Len returns the number of cached translations.
func (s *TranslationService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *TranslationService) translate(ctx context.Context, text string, source, target domain.LanguageTag) string {
	if s.tooShort(text) || s.translator == nil {
		return text
	}

	key := cacheKey{text: text, target: target}
	if v, ok := s.lookup(key); ok {
		metrics.TranslationCacheHits.Inc()
		return v
	}
	metrics.TranslationCacheMisses.Inc()

	// Concurrent misses for one key share a single backend call.
	v, err, _ := s.group.Do(string(target)+"\x00"+text, func() (any, error) {
		if v, ok := s.lookup(key); ok {
			return v, nil
		}
		out, err := s.translator.Translate(ctx, text, source, target)
		if err != nil {
			return nil, err
		}
		s.store(key, out)
		return out, nil
	})
	if err != nil {
		metrics.TranslationFailures.Inc()
		logger.Debug("Translation via %s to %s failed, keeping original: %v", s.translator.Name(), target, err)
		return text
	}
	return v.(string)
}

func (s *TranslationService) lookup(key cacheKey) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.entries[key]
	if !ok {
		return "", false
	}
	s.recency.MoveToFront(el)
	return el.Value.(*cacheEntry).value, true
}

// store records a translation; the latest write for a key wins.
func (s *TranslationService) store(key cacheKey, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[key]; ok {
		el.Value.(*cacheEntry).value = value
		s.recency.MoveToFront(el)
		return
	}
	s.entries[key] = s.recency.PushFront(&cacheEntry{key: key, value: value})

	if s.capacity > 0 && s.recency.Len() > s.capacity {
		oldest := s.recency.Back()
		s.recency.Remove(oldest)
		delete(s.entries, oldest.Value.(*cacheEntry).key)
	}
}

func (s *TranslationService) tooShort(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) < s.minLength
}
