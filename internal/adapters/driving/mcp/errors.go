// Package mcp provides an MCP (Model Context Protocol) server adapter for athena.
// It lets AI assistants ingest documents, retrieve context and ask questions
// over the local index.
package mcp

import "errors"

// ErrMissingContextService is returned when the context service is not provided.
var ErrMissingContextService = errors.New("mcp: context service is required")

// errChatUnavailable is returned by chat tools when no chat service is wired.
var errChatUnavailable = errors.New("mcp: chat service is not configured")
