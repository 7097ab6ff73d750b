package mcp

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/athena/internal/core/domain"
)

// IngestFileInput is the input schema for the ingest_file tool.
type IngestFileInput struct {
	Path string `json:"path" jsonschema:"absolute path of a PDF, text or Markdown file to index"`
}

// IngestFileOutput is the output schema for the ingest_file tool.
type IngestFileOutput struct {
	SourceID    string `json:"source_id"`
	ChunksAdded int    `json:"chunks_added"`
	ImagesFound int    `json:"images_found"`
	Skipped     bool   `json:"skipped"`
	Replaced    bool   `json:"replaced"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string   `json:"question" jsonschema:"the question, in any language"`
	Sources  []string `json:"sources,omitempty" jsonschema:"restrict retrieval to these document names"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	TurnID   string `json:"turn_id"`
	Answer   string `json:"answer"`
	Language string `json:"language"`
}

// ComposeContextInput is the input schema for the compose_context tool.
type ComposeContextInput struct {
	Query    string   `json:"query" jsonschema:"text to retrieve context for"`
	K        int      `json:"k,omitempty" jsonschema:"number of chunks to retrieve"`
	MaxChars int      `json:"max_chars,omitempty" jsonschema:"maximum context length in characters"`
	Sources  []string `json:"sources,omitempty" jsonschema:"restrict retrieval to these document names"`
}

// ComposeContextOutput is the output schema for the compose_context tool.
type ComposeContextOutput struct {
	Context string `json:"context"`
	Chars   int    `json:"chars"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query   string   `json:"query" jsonschema:"text to find similar chunks for"`
	K       int      `json:"k,omitempty" jsonschema:"maximum number of results to return"`
	Sources []string `json:"sources,omitempty" jsonschema:"restrict results to these document names"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	ChunkID  int     `json:"chunk_id"`
	Source   string  `json:"source"`
	Distance float32 `json:"distance"`
	Text     string  `json:"text"`
}

// SummarizeInput is the input schema for the summarize tool.
type SummarizeInput struct {
	Sources []string `json:"sources,omitempty" jsonschema:"document names to summarise (all when empty)"`
}

// QuizInput is the input schema for the quiz tool.
type QuizInput struct {
	NumQuestions int      `json:"num_questions,omitempty" jsonschema:"number of questions (default 5)"`
	Sources      []string `json:"sources,omitempty" jsonschema:"document names to draw questions from"`
}

// TextOutput is the output schema for tools that return generated text.
type TextOutput struct {
	Text string `json:"text"`
}

// registerTools registers all tool handlers with the MCP server.
// Tools whose port is missing are not advertised.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "compose_context",
		Description: "Compose a bounded, source-tagged context from the indexed documents",
	}, s.handleComposeContext)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find the indexed chunks nearest to a query",
	}, s.handleSearch)

	if s.ports.Ingestion != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest_file",
			Description: "Index a local PDF, text or Markdown file",
		}, s.handleIngestFile)
	}

	if s.ports.Chat != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question from the indexed documents, in the question's language",
		}, s.handleAsk)

		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "summarize",
			Description: "Summarise the indexed documents",
		}, s.handleSummarize)

		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "quiz",
			Description: "Write multiple-choice questions from the indexed documents",
		}, s.handleQuiz)
	}
}

func (s *Server) handleIngestFile(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestFileInput,
) (*mcp.CallToolResult, IngestFileOutput, error) {
	if input.Path == "" {
		return nil, IngestFileOutput{}, errors.New("path is required")
	}

	report, err := s.ports.Ingestion.IngestFile(ctx, input.Path)
	if err != nil {
		return nil, IngestFileOutput{}, err
	}

	return nil, IngestFileOutput{
		SourceID:    report.SourceID,
		ChunksAdded: report.ChunksAdded,
		ImagesFound: report.ImagesFound,
		Skipped:     report.Skipped,
		Replaced:    report.Replaced,
	}, nil
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Chat == nil {
		return nil, AskOutput{}, errChatUnavailable
	}

	turn, err := s.ports.Chat.Ask(ctx, input.Question, input.Sources)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		TurnID:   turn.ID,
		Answer:   turn.Response,
		Language: turn.ResponseLang.String(),
	}, nil
}

func (s *Server) handleComposeContext(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ComposeContextInput,
) (*mcp.CallToolResult, ComposeContextOutput, error) {
	k := input.K
	if k <= 0 {
		k = s.topK
	}
	maxChars := input.MaxChars
	if maxChars <= 0 {
		maxChars = s.maxChars
	}

	text, err := s.ports.Context.Compose(ctx, input.Query, k, input.Sources, maxChars)
	if err != nil {
		return nil, ComposeContextOutput{}, err
	}

	return nil, ComposeContextOutput{
		Context: text,
		Chars:   utf8.RuneCountInString(text),
	}, nil
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	k := input.K
	if k <= 0 {
		k = s.topK
	}

	hits, err := s.ports.Context.Retrieve(ctx, input.Query, k, input.Sources)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(hits)),
		Count:   len(hits),
	}
	for i, hit := range hits {
		output.Results[i] = toSearchResult(hit)
	}

	return nil, output, nil
}

func (s *Server) handleSummarize(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SummarizeInput,
) (*mcp.CallToolResult, TextOutput, error) {
	if s.ports.Chat == nil {
		return nil, TextOutput{}, errChatUnavailable
	}

	text, err := s.ports.Chat.Summarize(ctx, input.Sources)
	if err != nil {
		return nil, TextOutput{}, err
	}
	return nil, TextOutput{Text: text}, nil
}

func (s *Server) handleQuiz(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QuizInput,
) (*mcp.CallToolResult, TextOutput, error) {
	if s.ports.Chat == nil {
		return nil, TextOutput{}, errChatUnavailable
	}

	text, err := s.ports.Chat.Quiz(ctx, input.NumQuestions, input.Sources)
	if err != nil {
		return nil, TextOutput{}, err
	}
	return nil, TextOutput{Text: text}, nil
}

func toSearchResult(hit domain.ContextHit) SearchResultOutput {
	return SearchResultOutput{
		ChunkID:  hit.Chunk.ID,
		Source:   hit.Chunk.SourceID,
		Distance: hit.Distance,
		Text:     hit.Chunk.Text,
	}
}
