// Package pdf extracts per-page text and images from PDF uploads.
//
// Text comes from github.com/dslipak/pdf. Images are pulled one page at a
// time with poppler's pdfimages tool so pages can be processed concurrently.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/dslipak/pdf"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
	"github.com/custodia-labs/athena/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// ImageTool is the poppler binary used for image extraction.
const ImageTool = "pdfimages"

// ErrPDFToolNotFound is returned when pdfimages is not installed.
var ErrPDFToolNotFound = errors.New("pdfimages not found: install poppler to extract PDF images")

// CommandRunner executes external commands.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return out, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// Extractor handles PDF documents.
type Extractor struct {
	runner    CommandRunner
	available func() error

	warnOnce sync.Once
}

// New creates a PDF extractor that shells out to pdfimages for images.
func New() *Extractor {
	return &Extractor{runner: execRunner{}, available: CheckAvailable}
}

// NewWithRunner creates a PDF extractor with a custom command runner.
// The runner is assumed to be available.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner, available: func() error { return nil }}
}

// CheckAvailable reports whether pdfimages is on PATH.
func CheckAvailable() error {
	if _, err := exec.LookPath(ImageTool); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns how to install the image tool.
func InstallInstructions() string {
	return `PDF image extraction requires pdfimages (part of poppler).

Install with:
  macOS:         brew install poppler
  Ubuntu/Debian: apt install poppler-utils
  Fedora:        dnf install poppler-utils
  Arch:          pacman -S poppler

Text extraction works without it.`
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return "pdf"
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// SupportedExtensions returns the file extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".pdf"}
}

// ExtractText returns the text of every readable page, one page per
// paragraph. Unreadable pages are skipped; a document with no readable
// page yields an empty string.
func (e *Extractor) ExtractText(ctx context.Context, path string) (text string, err error) {
	reader, err := open(path)
	if err != nil {
		return "", err
	}

	// The parser panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf %s: %v", filepath.Base(path), r)
		}
	}()

	var buf strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("pdf: page %d of %s: %v", i, filepath.Base(path), err)
			continue
		}
		buf.WriteString(pageText)
		buf.WriteString("\n\n")
	}

	return strings.TrimSpace(buf.String()), nil
}

// PageCount returns the number of pages, or 0 when pdfimages is
// unavailable and no page could yield images.
func (e *Extractor) PageCount(_ context.Context, path string) (n int, err error) {
	if err := e.available(); err != nil {
		e.warnOnce.Do(func() {
			logger.Warn("pdf: %v; skipping image extraction", err)
		})
		return 0, nil
	}

	reader, err := open(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("count pages of %s: %v", filepath.Base(path), r)
		}
	}()
	return reader.NumPage(), nil
}

// ExtractPageImages writes the images of one zero-based page to a temp
// directory with pdfimages and returns them in extraction order.
func (e *Extractor) ExtractPageImages(ctx context.Context, path string, page int) ([]domain.ExtractedImage, error) {
	if page < 0 {
		return nil, fmt.Errorf("%w: page %d", domain.ErrInvalidInput, page)
	}

	dir, err := os.MkdirTemp("", "athena-pdfimages-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	n := strconv.Itoa(page + 1)
	prefix := filepath.Join(dir, "img")
	if _, err := e.runner.Run(ctx, ImageTool, "-f", n, "-l", n, "-all", path, prefix); err != nil {
		return nil, fmt.Errorf("pdfimages failed on page %d: %w", page, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read image dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	images := make([]domain.ExtractedImage, 0, len(names))
	for i, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read image %s: %w", name, err)
		}
		images = append(images, domain.ExtractedImage{
			PageIndex: page,
			Ordinal:   i,
			Data:      data,
			Ext:       strings.TrimPrefix(filepath.Ext(name), "."),
		})
	}
	return images, nil
}

func open(path string) (*pdf.Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", filepath.Base(path), err)
	}
	return reader, nil
}
