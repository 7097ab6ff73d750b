package domain

// VectorSnapshot is the full persisted state of a vector store:
// embeddings, chunk texts and per-chunk source ids as parallel arrays.
// Index i of each slice describes the chunk with id i.
type VectorSnapshot struct {
	// Dimensions is the embedding length fixed for the store (0 when empty).
	Dimensions int

	// Embeddings holds one vector per chunk, in id order.
	Embeddings [][]float32

	// Texts holds the chunk texts, in id order.
	Texts []string

	// Sources holds the source id of each chunk, in id order.
	Sources []string
}

// Len returns the number of chunks in the snapshot.
func (s *VectorSnapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Embeddings)
}

// Consistent reports whether the three parallel arrays agree in length
// and every embedding has the declared dimension.
func (s *VectorSnapshot) Consistent() bool {
	if s == nil {
		return true
	}
	n := len(s.Embeddings)
	if len(s.Texts) != n || len(s.Sources) != n {
		return false
	}
	for _, e := range s.Embeddings {
		if len(e) != s.Dimensions {
			return false
		}
	}
	return true
}

// SearchOptions configures a nearest-neighbour search.
type SearchOptions struct {
	// K is the number of hits wanted.
	K int

	// Oversample multiplies K to size the candidate window scanned by filters.
	// Values below 1 are treated as 1.
	Oversample int

	// AllowedSources restricts hits to these source ids. Empty means all.
	AllowedSources []string

	// Exclude drops individual ids (e.g. retired chunks). Optional.
	Exclude func(id int) bool
}

// SearchHit is a search result: a chunk id and its squared L2 distance.
type SearchHit struct {
	ID       int
	Distance float32
}

// ContextHit is a resolved search hit carrying its chunk payload.
type ContextHit struct {
	Chunk    Chunk
	Distance float32
}
