package normalisers

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry resolves extractors by MIME type or file extension.
// Later registrations win for overlapping keys.
type Registry struct {
	mu     sync.RWMutex
	byMIME map[string]driven.Extractor
	byExt  map[string]driven.Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	r := &Registry{
		byMIME: make(map[string]driven.Extractor),
		byExt:  make(map[string]driven.Extractor),
	}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds an extractor for all its MIME types and extensions.
func (r *Registry) Register(extractor driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range extractor.SupportedMIMETypes() {
		r.byMIME[strings.ToLower(m)] = extractor
	}
	for _, ext := range extractor.SupportedExtensions() {
		r.byExt[strings.ToLower(ext)] = extractor
	}
}

// Resolve returns the extractor for mimeType, falling back to the
// extension of filename. MIME parameters (";charset=...") are ignored.
func (r *Registry) Resolve(mimeType, filename string) (driven.Extractor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if base, _, _ := strings.Cut(mimeType, ";"); base != "" {
		if e, ok := r.byMIME[strings.ToLower(strings.TrimSpace(base))]; ok {
			return e, nil
		}
	}
	if e, ok := r.byExt[strings.ToLower(filepath.Ext(filename))]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, filename)
}

// SupportedExtensions returns every registered extension, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
