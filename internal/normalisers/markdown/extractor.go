// Package markdown extracts text from Markdown uploads with markup removed.
package markdown

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
	"github.com/custodia-labs/athena/internal/normalisers/plaintext"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

var (
	fencePattern      = regexp.MustCompile("(?m)^\\s*(```|~~~).*$")
	inlineCodePattern = regexp.MustCompile("`([^`]+)`")
	imagePattern      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	linkPattern       = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headingPattern    = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	emphasisPattern   = regexp.MustCompile(`(\*\*|__|\*|_)([^*_\n]+)(\*\*|__|\*|_)`)
	blockquotePattern = regexp.MustCompile(`(?m)^>\s?`)
	rulePattern       = regexp.MustCompile(`(?m)^\s*([-*_]\s*){3,}$`)
	bulletPattern     = regexp.MustCompile(`(?m)^(\s*)[-*+]\s+`)
	numberedPattern   = regexp.MustCompile(`(?m)^(\s*)\d+[.)]\s+`)
	blankRunPattern   = regexp.MustCompile(`\n{3,}`)
)

// Extractor handles Markdown documents.
type Extractor struct{}

// New creates a new Markdown extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return "markdown"
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// SupportedExtensions returns the file extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

// ExtractText reads the file and strips Markdown formatting.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	text, err := plaintext.Decode(data)
	if err != nil {
		return "", err
	}
	return Strip(text), nil
}

// PageCount returns 0; Markdown has no pages.
func (e *Extractor) PageCount(_ context.Context, _ string) (int, error) {
	return 0, nil
}

// ExtractPageImages returns nothing; referenced images are not fetched.
func (e *Extractor) ExtractPageImages(_ context.Context, _ string, _ int) ([]domain.ExtractedImage, error) {
	return nil, nil
}

// Strip removes common Markdown formatting, keeping the readable text.
// Code block contents are kept; only the fences are dropped.
func Strip(content string) string {
	content = fencePattern.ReplaceAllString(content, "")
	content = inlineCodePattern.ReplaceAllString(content, "$1")
	content = imagePattern.ReplaceAllString(content, "$1")
	content = linkPattern.ReplaceAllString(content, "$1")
	content = headingPattern.ReplaceAllString(content, "")
	content = rulePattern.ReplaceAllString(content, "")
	content = emphasisPattern.ReplaceAllString(content, "$2")
	content = blockquotePattern.ReplaceAllString(content, "")
	content = bulletPattern.ReplaceAllString(content, "$1")
	content = numberedPattern.ReplaceAllString(content, "$1")
	content = blankRunPattern.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
