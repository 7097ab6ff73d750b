package mcp

import (
	"context"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driving"
)

// mockContextService is a mock implementation of driving.ContextService.
type mockContextService struct {
	text string
	hits []domain.ContextHit
	err  error

	gotK        int
	gotMaxChars int
	gotSources  []string
}

func (m *mockContextService) Compose(
	_ context.Context, _ string, k int, sources []string, maxChars int,
) (string, error) {
	m.gotK, m.gotMaxChars, m.gotSources = k, maxChars, sources
	return m.text, m.err
}

func (m *mockContextService) Retrieve(
	_ context.Context, _ string, k int, sources []string,
) ([]domain.ContextHit, error) {
	m.gotK, m.gotSources = k, sources
	return m.hits, m.err
}

// mockIngestionService is a mock implementation of driving.IngestionService.
type mockIngestionService struct {
	report  *domain.IngestReport
	err     error
	gotPath string
}

func (m *mockIngestionService) Ingest(_ context.Context, _ []byte, _ string) (*domain.IngestReport, error) {
	return m.report, m.err
}

func (m *mockIngestionService) IngestFile(_ context.Context, path string) (*domain.IngestReport, error) {
	m.gotPath = path
	return m.report, m.err
}

func (m *mockIngestionService) SupportedExtensions() []string {
	return []string{".md", ".pdf", ".txt"}
}

func (m *mockIngestionService) Shutdown(_ context.Context) error {
	return nil
}

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	turn    *domain.ChatTurn
	text    string
	err     error
	gotNum  int
	history []domain.ChatTurn
}

func (m *mockChatService) Ask(_ context.Context, _ string, _ []string) (*domain.ChatTurn, error) {
	return m.turn, m.err
}

func (m *mockChatService) History(_ context.Context) ([]domain.ChatTurn, error) {
	return m.history, m.err
}

func (m *mockChatService) ToggleTranslation(_ context.Context, _ string) (*domain.ChatTurn, error) {
	return m.turn, m.err
}

func (m *mockChatService) Summarize(_ context.Context, _ []string) (string, error) {
	return m.text, m.err
}

func (m *mockChatService) Quiz(_ context.Context, n int, _ []string) (string, error) {
	m.gotNum = n
	return m.text, m.err
}

// mockStoreService is a mock implementation of driving.StoreService.
type mockStoreService struct {
	sources []domain.SourceDocument
	err     error
}

func (m *mockStoreService) Status(_ context.Context) (*driving.StoreStatus, error) {
	return &driving.StoreStatus{Sources: len(m.sources)}, m.err
}

func (m *mockStoreService) Sources(_ context.Context) ([]domain.SourceDocument, error) {
	return m.sources, m.err
}

func (m *mockStoreService) Reset(_ context.Context) error {
	return m.err
}
