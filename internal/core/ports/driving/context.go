package driving

import (
	"context"

	"github.com/custodia-labs/athena/internal/core/domain"
)

// ContextService composes retrieval context for a query.
type ContextService interface {
	// Compose returns provenance-tagged chunks for query, never longer than
	// maxChars characters. An empty store yields "".
	Compose(ctx context.Context, query string, k int, allowedSources []string, maxChars int) (string, error)

	// Retrieve returns the nearest live chunks for query.
	Retrieve(ctx context.Context, query string, k int, allowedSources []string) ([]domain.ContextHit, error)
}
