// Package blob stores raw uploads and extracted images on local disk.
package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.BlobStore = (*Store)(nil)

const (
	documentsDir = "documents"
	imagesDir    = "images"
)

// Store writes blobs below a root directory:
//
//	<root>/documents/<filename>
//	<root>/images/<filename>/p<page>-<ordinal>.<ext>
type Store struct {
	root string
}

// New creates a blob store rooted at dir.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("blob: directory cannot be empty")
	}
	for _, sub := range []string{documentsDir, imagesDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0700); err != nil {
			return nil, fmt.Errorf("create blob directory: %w", err)
		}
	}
	return &Store{root: dir}, nil
}

// Root returns the root directory.
func (s *Store) Root() string {
	return s.root
}

// SaveDocument writes the raw upload and returns its path.
func (s *Store) SaveDocument(ctx context.Context, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name, err := safeName(filename)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.root, documentsDir, name)
	if err := writeFile(path, data); err != nil {
		return "", fmt.Errorf("save document %s: %w", name, err)
	}
	return path, nil
}

// SaveImage writes one extracted image and returns its path.
func (s *Store) SaveImage(ctx context.Context, sourceID string, img domain.ExtractedImage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name, err := safeName(sourceID)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, imagesDir, name)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("create image directory: %w", err)
	}

	ext := strings.TrimPrefix(img.Ext, ".")
	if ext == "" {
		ext = "bin"
	}
	path := filepath.Join(dir, fmt.Sprintf("p%d-%d.%s", img.PageIndex, img.Ordinal, ext))
	if err := writeFile(path, img.Data); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return path, nil
}

// Clear removes every stored blob.
func (s *Store) Clear(_ context.Context) error {
	for _, sub := range []string{documentsDir, imagesDir} {
		dir := filepath.Join(s.root, sub)
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("clear %s: %w", sub, err)
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("recreate %s: %w", sub, err)
		}
	}
	return nil
}

// safeName reduces a client-supplied name to a single path element.
func safeName(name string) (string, error) {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." || base == ".." || base == "" {
		return "", fmt.Errorf("%w: invalid file name %q", domain.ErrInvalidInput, name)
	}
	return base, nil
}

// writeFile writes through a uniquely named temp file so a reader never
// sees a partial blob.
func writeFile(path string, data []byte) error {
	tmp := path + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
