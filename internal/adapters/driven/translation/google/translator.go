// Package google translates and detects languages with the Google Cloud
// Translation API (v2, API key authentication).
package google

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	translate "google.golang.org/api/translate/v2"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
)

// Ensure Translator implements both ports.
var (
	_ driven.Translator       = (*Translator)(nil)
	_ driven.LanguageDetector = (*Translator)(nil)
)

// Config holds configuration for the Google translator.
type Config struct {
	// APIKey is the Google Cloud API key (required).
	APIKey string

	// RequestsPerSecond caps calls to the API.
	RequestsPerSecond float64

	// Burst is the token bucket size.
	Burst int

	// Options are appended to the client options, e.g. an endpoint override.
	Options []option.ClientOption
}

// Translator calls the Cloud Translation API.
type Translator struct {
	service *translate.Service
	limiter *RateLimiter
}

// New creates a Google translator.
func New(ctx context.Context, cfg Config) (*Translator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("google translate: API key is required")
	}

	opts := append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, cfg.Options...)
	service, err := translate.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create translate service: %w", err)
	}

	return &Translator{
		service: service,
		limiter: NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
	}, nil
}

// Name identifies the backend in logs.
func (t *Translator) Name() string {
	return "google"
}

// Translate renders text in target. An empty source lets the API detect it.
func (t *Translator) Translate(ctx context.Context, text string, source, target domain.LanguageTag) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}

	call := t.service.Translations.List([]string{text}, string(target)).Format("text").Context(ctx)
	if source != "" {
		call = call.Source(string(source))
	}

	resp, err := call.Do()
	if err != nil {
		return "", t.wrapError("translate", err)
	}
	if len(resp.Translations) == 0 || resp.Translations[0] == nil {
		return "", errors.New("google translate: empty response")
	}
	// The API escapes entities even in text format.
	return html.UnescapeString(resp.Translations[0].TranslatedText), nil
}

// Detect returns the most confident language for text.
func (t *Translator) Detect(ctx context.Context, text string) (domain.LanguageTag, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}

	resp, err := t.service.Detections.List([]string{text}).Context(ctx).Do()
	if err != nil {
		return "", t.wrapError("detect", err)
	}
	if len(resp.Detections) == 0 {
		return "", errors.New("google translate: empty detection")
	}

	var best *translate.DetectionsResourceItem
	for _, item := range resp.Detections[0] {
		if item != nil && (best == nil || item.Confidence > best.Confidence) {
			best = item
		}
	}
	if best == nil {
		return "", errors.New("google translate: empty detection")
	}

	tag, ok := domain.ParseLanguageTag(best.Language)
	if !ok {
		return "", fmt.Errorf("google translate: unrecognised language %q", best.Language)
	}
	return tag, nil
}

// wrapError maps API status codes onto domain errors and starts a backoff
// window on 429.
func (t *Translator) wrapError(op string, err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("google %s: %w", op, err)
	}

	switch gerr.Code {
	case http.StatusTooManyRequests:
		t.limiter.RecordRateLimitError(retryAfter(gerr.Header))
		return fmt.Errorf("google %s: %w: %s", op, domain.ErrRateLimited, gerr.Message)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("google %s: %w: %s", op, domain.ErrUnauthorized, gerr.Message)
	default:
		return fmt.Errorf("google %s: %w", op, err)
	}
}

func retryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil {
		return 0
	}
	return time.Duration(secs) * time.Second
}
