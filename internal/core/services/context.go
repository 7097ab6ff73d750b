package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
	"github.com/custodia-labs/athena/internal/core/ports/driving"
	"github.com/custodia-labs/athena/internal/logger"
	"github.com/custodia-labs/athena/internal/metrics"
	"github.com/custodia-labs/athena/internal/rtl"
)

// Ensure ContextService implements the interface.
var _ driving.ContextService = (*ContextService)(nil)

// ContextService turns a query into a bounded, provenance-tagged context.
type ContextService struct {
	embedder   driven.EmbeddingService
	vectors    driven.VectorStore
	sources    driven.SourceStore
	oversample int
}

// NewContextService creates a new context service.
// The sources store is optional; without it retired chunks are not filtered.
func NewContextService(
	embedder driven.EmbeddingService,
	vectors driven.VectorStore,
	sources driven.SourceStore,
) *ContextService {
	return &ContextService{
		embedder:   embedder,
		vectors:    vectors,
		sources:    sources,
		oversample: domain.DefaultOversample,
	}
}

// SetOversample sets the candidate multiplier used to absorb filter rejections.
func (s *ContextService) SetOversample(n int) {
	if n >= 1 {
		s.oversample = n
	}
}

// Compose returns the nearest chunks as "[From <source>]\n<text>\n\n" blocks,
// appended in distance order while the total stays within maxChars characters.
func (s *ContextService) Compose(
	ctx context.Context, query string, k int, allowedSources []string, maxChars int,
) (string, error) {
	if maxChars <= 0 {
		return "", nil
	}

	hits, err := s.Retrieve(ctx, query, k, allowedSources)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	used := 0
	for _, hit := range hits {
		block := formatBlock(hit.Chunk)
		n := utf8.RuneCountInString(block)
		if used+n > maxChars {
			break
		}
		sb.WriteString(block)
		used += n
	}

	out := strings.TrimRight(sb.String(), "\n")
	metrics.ContextChars.Observe(float64(utf8.RuneCountInString(out)))
	logger.Debug("Composed %d chars of context from %d hits", utf8.RuneCountInString(out), len(hits))
	return out, nil
}

// Retrieve returns the nearest live chunks for query in ascending distance.
func (s *ContextService) Retrieve(
	ctx context.Context, query string, k int, allowedSources []string,
) ([]domain.ContextHit, error) {
	if s.vectors.Len() == 0 || k <= 0 {
		return nil, nil
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	opts := domain.SearchOptions{
		K:              k,
		Oversample:     s.oversample,
		AllowedSources: allowedSources,
	}
	if s.sources != nil {
		retired, err := s.sources.RetiredChunkIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("load retired chunks: %w", err)
		}
		if len(retired) > 0 {
			opts.Exclude = func(id int) bool {
				_, ok := retired[id]
				return ok
			}
		}
	}

	start := time.Now()
	hits, err := s.vectors.Query(embedding, opts)
	metrics.ObserveSince(metrics.SearchDuration, start)
	if err != nil {
		return nil, err
	}
	return hits, nil
}

func formatBlock(c domain.Chunk) string {
	return "[From " + c.SourceID + "]\n" + rtl.Normalize(c.Text) + "\n\n"
}
