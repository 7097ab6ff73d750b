package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/athena/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
)

// ==================== Embedding ====================

// mockEmbedder embeds text as a bag of vocabulary words: dimension i is 1
// when the text contains vocab[i].
type mockEmbedder struct {
	mu    sync.Mutex
	vocab []string
	err   error
	calls int
}

func newMockEmbedder(vocab ...string) *mockEmbedder {
	return &mockEmbedder{vocab: vocab}
}

func (m *mockEmbedder) vector(text string) []float32 {
	v := make([]float32, len(m.vocab))
	lower := strings.ToLower(text)
	for i, w := range m.vocab {
		if strings.Contains(lower, w) {
			v[i] = 1
		}
	}
	return v
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return len(m.vocab) }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// ==================== Extraction ====================

type mockExtractor struct {
	text      string
	textErr   error
	blockText bool

	pages      int
	blockPages bool
	pageErr    map[int]error
	pagePanic  map[int]bool
	images     map[int][]domain.ExtractedImage
}

func (m *mockExtractor) Name() string                  { return "mock" }
func (m *mockExtractor) SupportedMIMETypes() []string  { return nil }
func (m *mockExtractor) SupportedExtensions() []string { return []string{".txt", ".pdf"} }

func (m *mockExtractor) ExtractText(ctx context.Context, _ string) (string, error) {
	if m.blockText {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return m.text, m.textErr
}

func (m *mockExtractor) PageCount(_ context.Context, _ string) (int, error) {
	return m.pages, nil
}

func (m *mockExtractor) ExtractPageImages(ctx context.Context, _ string, page int) ([]domain.ExtractedImage, error) {
	if m.blockPages {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.pagePanic[page] {
		panic(fmt.Sprintf("corrupt page %d", page))
	}
	if err := m.pageErr[page]; err != nil {
		return nil, err
	}
	return m.images[page], nil
}

// ==================== Sources ====================

// flakySourceStore fails the first failSaves calls to Save.
type flakySourceStore struct {
	*memory.SourceStore

	mu        sync.Mutex
	failSaves int
}

func (m *flakySourceStore) Save(ctx context.Context, doc domain.SourceDocument) error {
	m.mu.Lock()
	if m.failSaves > 0 {
		m.failSaves--
		m.mu.Unlock()
		return errors.New("database is locked")
	}
	m.mu.Unlock()
	return m.SourceStore.Save(ctx, doc)
}

// ==================== Blobs ====================

type mockBlobStore struct {
	mu        sync.Mutex
	documents map[string][]byte
	images    []string
	cleared   bool
	saveErr   error
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{documents: make(map[string][]byte)}
}

func (m *mockBlobStore) SaveDocument(_ context.Context, filename string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.documents[filename] = data
	return "/blobs/documents/" + filename, nil
}

func (m *mockBlobStore) SaveImage(_ context.Context, sourceID string, img domain.ExtractedImage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := fmt.Sprintf("/blobs/images/%s/p%d-%d.%s", sourceID, img.PageIndex, img.Ordinal, img.Ext)
	m.images = append(m.images, path)
	return path, nil
}

func (m *mockBlobStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents = make(map[string][]byte)
	m.images = nil
	m.cleared = true
	return nil
}

// ==================== Generation ====================

type mockLLM struct {
	mu      sync.Mutex
	prompts []string
	opts    []driven.GenerateOptions
	reply   func(prompt string) string
	stream  bool
	err     error
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (domain.Generation, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	text := "answer"
	if m.reply != nil {
		text = m.reply(prompt)
	}
	if !m.stream {
		return domain.TextGeneration{Text: text}, nil
	}
	return domain.StreamGeneration{Chunks: func(yield func(string, error) bool) {
		for _, word := range strings.SplitAfter(text, " ") {
			if !yield(word, nil) {
				return
			}
		}
	}}, nil
}

func (m *mockLLM) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// ==================== Translation ====================

// mockTranslator prefixes the target tag: Translate("Hello", "ar") = "[ar] Hello".
type mockTranslator struct {
	mu    sync.Mutex
	calls int
	err   error
	gate  chan struct{}
}

func (m *mockTranslator) Translate(_ context.Context, text string, _, target domain.LanguageTag) (string, error) {
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return "[" + string(target) + "] " + text, nil
}

func (m *mockTranslator) Name() string { return "mock" }

func (m *mockTranslator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockDetector reports Arabic for any text containing an Arabic letter.
type mockDetector struct {
	err error
}

func (m *mockDetector) Detect(_ context.Context, text string) (domain.LanguageTag, error) {
	if m.err != nil {
		return "", m.err
	}
	for _, r := range text {
		if r >= 0x0600 && r <= 0x06FF {
			return domain.LanguageArabic, nil
		}
	}
	return domain.LanguageEnglish, nil
}

// ==================== Prompts ====================

type mockPromptStore struct {
	prompts map[string]string
}

func newMockPromptStore() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		driven.PromptChat:             "Context: %s\nQuestion: %s\nAnswer:",
		driven.PromptSummarisePart:    "Summarize: %s",
		driven.PromptSummariseCombine: "Combine: %s",
		driven.PromptQuiz:             "Quiz %d: %s",
		driven.PromptTranslate:        "Translate to %s: %s",
	}}
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", errors.New("prompt not found: " + name)
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}
