package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driving"
)

type mockIngestionService struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (m *mockIngestionService) Ingest(_ context.Context, _ []byte, filename string) (*domain.IngestReport, error) {
	return m.report(filename)
}

func (m *mockIngestionService) IngestFile(_ context.Context, path string) (*domain.IngestReport, error) {
	return m.report(path)
}

func (m *mockIngestionService) report(path string) (*domain.IngestReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = append(m.paths, path)
	if m.err != nil {
		return nil, m.err
	}
	if strings.Contains(path, "broken") {
		return nil, domain.ErrNoText
	}
	name := filepath.Base(path)
	return &domain.IngestReport{
		SourceID:    name,
		ChunksAdded: 2,
		ImagesFound: 1,
		Skipped:     strings.HasPrefix(name, "same"),
	}, nil
}

func (m *mockIngestionService) ingested() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.paths...)
}

func (m *mockIngestionService) SupportedExtensions() []string {
	return []string{".pdf", ".txt", ".md"}
}

func (m *mockIngestionService) Shutdown(context.Context) error { return nil }

type mockContextService struct {
	k        int
	maxChars int
	sources  []string
	hits     []domain.ContextHit
	text     string
	err      error
}

func (m *mockContextService) Compose(_ context.Context, _ string, k int, sources []string, maxChars int) (string, error) {
	m.k, m.maxChars, m.sources = k, maxChars, sources
	return m.text, m.err
}

func (m *mockContextService) Retrieve(_ context.Context, _ string, k int, sources []string) ([]domain.ContextHit, error) {
	m.k, m.sources = k, sources
	if m.err != nil {
		return nil, m.err
	}
	if k < len(m.hits) {
		return m.hits[:k], nil
	}
	return m.hits, nil
}

type mockChatService struct {
	question  string
	sources   []string
	questions int
	turns     []domain.ChatTurn
	err       error
}

func (m *mockChatService) Ask(_ context.Context, query string, sources []string) (*domain.ChatTurn, error) {
	m.question, m.sources = query, sources
	if m.err != nil {
		return nil, m.err
	}
	turn := domain.ChatTurn{
		ID:           "turn-1",
		Query:        query,
		QueryLang:    domain.LanguageEnglish,
		Response:     "Force equals mass times acceleration.",
		ResponseLang: domain.LanguageEnglish,
		CreatedAt:    time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
	}
	m.turns = append(m.turns, turn)
	return &turn, nil
}

func (m *mockChatService) History(context.Context) ([]domain.ChatTurn, error) {
	return m.turns, m.err
}

func (m *mockChatService) ToggleTranslation(_ context.Context, turnID string) (*domain.ChatTurn, error) {
	for i := range m.turns {
		if m.turns[i].ID != turnID {
			continue
		}
		if m.turns[i].HasTranslation() {
			m.turns[i].CachedTranslation = nil
		} else {
			tr := "القوة تساوي الكتلة في التسارع."
			m.turns[i].CachedTranslation = &tr
			m.turns[i].TranslationLang = domain.LanguageArabic
		}
		return &m.turns[i], nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockChatService) Summarize(_ context.Context, sources []string) (string, error) {
	m.sources = sources
	return "A short summary.", m.err
}

func (m *mockChatService) Quiz(_ context.Context, n int, sources []string) (string, error) {
	m.questions, m.sources = n, sources
	return "Q1. What is force?", m.err
}

type mockStoreService struct {
	sources []domain.SourceDocument
	reset   bool
	err     error
}

func (m *mockStoreService) Status(context.Context) (*driving.StoreStatus, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &driving.StoreStatus{Chunks: 12, RetiredChunks: 2, Sources: len(m.sources), Images: 3, Dimensions: 768}, nil
}

func (m *mockStoreService) Sources(context.Context) ([]domain.SourceDocument, error) {
	return m.sources, m.err
}

func (m *mockStoreService) Reset(context.Context) error {
	m.reset = true
	return m.err
}

type mockSettingsService struct {
	settings domain.AppSettings
	set      map[string]string
	err      error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings(), set: make(map[string]string)}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, m.err
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return m.err
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.err != nil {
		return m.err
	}
	if !strings.Contains(key, ".") {
		return domain.ErrInvalidInput
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	keys := make([]string, 0, len(m.set))
	for k := range m.set {
		keys = append(keys, k)
	}
	return keys
}

func (m *mockSettingsService) SetEmbeddingProvider(domain.AIProvider, string, string) error {
	return m.err
}
func (m *mockSettingsService) SetLLMProvider(domain.AIProvider, string, string) error { return m.err }
func (m *mockSettingsService) SetTranslationProvider(domain.TranslationProvider, string) error {
	return m.err
}
func (m *mockSettingsService) Validate() error { return m.err }
func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}
func (m *mockSettingsService) GetPipelineConfig() domain.PipelineConfig {
	return domain.DefaultPipelineConfig()
}
func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.err }
func (m *mockSettingsService) ValidateLLMConfig() error       { return m.err }

// testServices exposes the mocks installed by setupTestServices.
type testServices struct {
	ingestion *mockIngestionService
	context   *mockContextService
	chat      *mockChatService
	store     *mockStoreService
	settings  *mockSettingsService
}

// setupTestServices installs mock services and returns a cleanup function
// that clears them and resets every flag to its default.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		ingestion: &mockIngestionService{},
		context: &mockContextService{
			text: "[From notes.pdf]\nNewton's second law",
			hits: []domain.ContextHit{
				{Chunk: domain.Chunk{ID: 0, SourceID: "notes.pdf", Text: "Newton's second law\nF = ma"}, Distance: 0.12},
				{Chunk: domain.Chunk{ID: 4, SourceID: "lab.md", Text: "Measure the acceleration"}, Distance: 0.5},
			},
		},
		chat: &mockChatService{},
		store: &mockStoreService{sources: []domain.SourceDocument{
			{ID: "notes.pdf", ChunkIDs: []int{0, 1, 2}, Images: make([]domain.ImageRef, 2)},
		}},
		settings: newMockSettingsService(),
	}

	SetServices(&Services{
		Ingestion:       ts.ingestion,
		Context:         ts.context,
		Chat:            ts.chat,
		Store:           ts.store,
		Settings:        ts.settings,
		ContextDefaults: domain.ContextSettings{TopK: 3, MaxChars: 3500},
		SettableKeys:    []string{"context.top_k", "llm.model"},
	})

	return ts, func() {
		ingestionService = nil
		contextService = nil
		chatService = nil
		storeService = nil
		settingsService = nil
		settableKeys = nil
		resetFlags(rootCmd)
	}
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := executeContext(context.Background())
	return buf.String(), err
}

// executeContext runs the root command under ctx. Cobra keeps the context a
// subcommand received on its first run, so every command is given ctx first.
func executeContext(ctx context.Context) error {
	setContext(rootCmd, ctx)
	return rootCmd.ExecuteContext(ctx)
}

func setContext(cmd *cobra.Command, ctx context.Context) {
	cmd.SetContext(ctx)
	for _, child := range cmd.Commands() {
		setContext(child, ctx)
	}
}

var errBoom = errors.New("boom")
