// Package shaper provides the pipeline stage that normalises right-to-left
// document text for display before chunking.
package shaper

import (
	"context"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/rtl"
)

// Name is the processor name used in pipeline configuration.
const Name = "rtl"

// Processor runs rtl.Normalize over the document content.
// Placed after the chunker, it normalises the chunk texts instead.
type Processor struct{}

// New creates a new display-script normalisation processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// Process normalises doc.Content in place and any chunks already produced.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc.Content = rtl.Normalize(doc.Content)
	for i := range chunks {
		chunks[i].Text = rtl.Normalize(chunks[i].Text)
	}

	return chunks, nil
}
