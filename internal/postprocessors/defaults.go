package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/athena/internal/core/ports/driven"
	"github.com/custodia-labs/athena/internal/postprocessors/chunker"
	"github.com/custodia-labs/athena/internal/postprocessors/shaper"
)

// ChunkerName is the pipeline name of the chunking stage.
const ChunkerName = "chunker"

// RegisterDefaults registers the rtl and chunker stages.
func RegisterDefaults(r *Registry) {
	r.Register(shaper.Name, func(Params) (driven.PostProcessor, error) {
		return shaper.New(), nil
	})
	r.Register(ChunkerName, buildChunker)
}

// buildChunker reads chunk_size and overlap, in characters.
// Absent keys keep the chunker defaults; overlap may be set to 0 explicitly.
func buildChunker(params Params) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if params.Has("chunk_size") {
		size := params.Int("chunk_size", 0)
		if size <= 0 {
			return nil, fmt.Errorf("chunk_size must be positive, got %v", params["chunk_size"])
		}
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if params.Has("overlap") {
		opts = append(opts, chunker.WithOverlap(params.Int("overlap", 0)))
	}

	return chunker.New(opts...), nil
}
