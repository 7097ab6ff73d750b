package vectorstore

import (
	"cmp"
	"slices"

	"github.com/custodia-labs/athena/internal/core/domain"
)

// squaredL2 returns the squared Euclidean distance between a and b.
// Both must have the same length.
func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// nearest scores every embedding against query and returns the n closest,
// ordered by ascending distance with ties broken by ascending id.
func nearest(embeddings [][]float32, query []float32, n int) []domain.SearchHit {
	hits := make([]domain.SearchHit, len(embeddings))
	for id, e := range embeddings {
		hits[id] = domain.SearchHit{ID: id, Distance: squaredL2(e, query)}
	}

	slices.SortFunc(hits, func(a, b domain.SearchHit) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if n < len(hits) {
		hits = hits[:n]
	}
	return hits
}
