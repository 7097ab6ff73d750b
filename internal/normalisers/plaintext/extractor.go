// Package plaintext extracts text from plain text uploads.
package plaintext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// ErrUnsupportedEncoding is returned for content that is not UTF-8 or
// BOM-marked UTF-16.
var ErrUnsupportedEncoding = errors.New("unsupported text encoding")

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return "plaintext"
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/plain", "text/csv"}
}

// SupportedExtensions returns the file extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".txt", ".text", ".csv", ".log"}
}

// ExtractText reads the file and decodes it to UTF-8.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(data)
}

// PageCount returns 0; plain text has no pages.
func (e *Extractor) PageCount(_ context.Context, _ string) (int, error) {
	return 0, nil
}

// ExtractPageImages returns nothing; plain text has no images.
func (e *Extractor) ExtractPageImages(_ context.Context, _ string, _ int) ([]domain.ExtractedImage, error) {
	return nil, nil
}

// Decode converts raw bytes to a string. A UTF-8 or UTF-16 byte order
// mark selects the encoding; unmarked input must be valid UTF-8.
// Line endings are normalised to "\n".
func Decode(data []byte) (string, error) {
	if hasUTF16BOM(data) {
		decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnsupportedEncoding, err)
		}
		data = decoded
	} else {
		data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	}

	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: content is not valid UTF-8", ErrUnsupportedEncoding)
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n"), nil
}

func hasUTF16BOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xFE, 0xFF}) || bytes.HasPrefix(data, []byte{0xFF, 0xFE})
}
