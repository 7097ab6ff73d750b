package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/athena/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for athena resources.
	uriScheme = "athena://"
)

// sourceInfo is the JSON shape of one ingested document.
type sourceInfo struct {
	ID          string    `json:"id"`
	Fingerprint string    `json:"fingerprint"`
	Chunks      int       `json:"chunks"`
	Images      int       `json:"images"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sources",
		Name:        "sources",
		Description: "Documents ingested into the local index",
		MIMEType:    "application/json",
	}, s.handleSourcesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sources/{sourceId}",
		Name:        "source",
		Description: "Registry record of one ingested document",
		MIMEType:    "application/json",
	}, s.handleSourceResource)
}

// handleSourcesResource returns every ingested document.
func (s *Server) handleSourcesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Store == nil {
		return jsonResult(req.Params.URI, "[]"), nil
	}

	sources, err := s.ports.Store.Sources(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}

	infos := make([]sourceInfo, len(sources))
	for i := range sources {
		infos[i] = toSourceInfo(&sources[i])
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling sources: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

// handleSourceResource returns the record of one document.
func (s *Server) handleSourceResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	sourceID := extractSourceID(req.Params.URI)
	if s.ports.Store == nil || sourceID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	sources, err := s.ports.Store.Sources(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}

	for i := range sources {
		if sources[i].ID != sourceID {
			continue
		}
		data, err := json.MarshalIndent(toSourceInfo(&sources[i]), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshalling source: %w", err)
		}
		return jsonResult(req.Params.URI, string(data)), nil
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

func toSourceInfo(doc *domain.SourceDocument) sourceInfo {
	return sourceInfo{
		ID:          doc.ID,
		Fingerprint: doc.Fingerprint,
		Chunks:      len(doc.ChunkIDs),
		Images:      len(doc.Images),
		UpdatedAt:   doc.UpdatedAt,
	}
}

func jsonResult(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// extractSourceID extracts the source ID from a URI like athena://sources/{sourceId}.
func extractSourceID(uri string) string {
	const prefix = uriScheme + "sources/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
