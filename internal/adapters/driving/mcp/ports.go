package mcp

import (
	"github.com/custodia-labs/athena/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Context retrieves and composes indexed chunks. Required.
	Context driving.ContextService

	// Ingestion indexes files. Optional; ingest_file is omitted without it.
	Ingestion driving.IngestionService

	// Chat answers, summarises and writes quizzes. Optional.
	Chat driving.ChatService

	// Store lists ingested documents for the sources resource. Optional.
	Store driving.StoreService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Context == nil {
		return ErrMissingContextService
	}
	return nil
}
