package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
	"github.com/custodia-labs/athena/internal/core/ports/driving"
	"github.com/custodia-labs/athena/internal/logger"
	"github.com/custodia-labs/athena/internal/postprocessors/chunker"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// NoContext replaces the retrieved context when none could be composed.
const NoContext = "no relevant context found"

// Retrieval and generation budgets for each chat operation.
const (
	askMaxTokens = 512

	materialTopK     = 5
	materialMaxChars = 20000
	pieceSize        = 1500

	summaryMaxTokens = 300
	quizMaxTokens    = 500

	// DefaultQuizQuestions is the number of questions written when none is given.
	DefaultQuizQuestions = 5

	// pieceWorkers bounds concurrent generation calls for one summary or quiz.
	pieceWorkers = 3
)

var askStopWords = []string{"Question:"}

// ChatService answers questions, summarises and writes quizzes from the
// indexed documents, translating through the pivot language.
type ChatService struct {
	llm        driven.LLMService
	composer   driving.ContextService
	translator driving.TranslationService
	prompts    driven.PromptStore
	history    driven.ChatHistoryStore
	stream     bool
	topK       int
	maxChars   int
}

// NewChatService creates a new chat service.
// The llm may be nil, in which case every generating operation returns
// domain.ErrLLMUnavailable.
func NewChatService(
	llm driven.LLMService,
	composer driving.ContextService,
	translator driving.TranslationService,
	prompts driven.PromptStore,
	history driven.ChatHistoryStore,
) *ChatService {
	return &ChatService{
		llm:        llm,
		composer:   composer,
		translator: translator,
		prompts:    prompts,
		history:    history,
		topK:       domain.DefaultTopK,
		maxChars:   domain.DefaultMaxContextChars,
	}
}

// SetContextLimits sets the retrieval budget for Ask. Non-positive values
// keep the current setting.
func (s *ChatService) SetContextLimits(topK, maxChars int) {
	if topK > 0 {
		s.topK = topK
	}
	if maxChars > 0 {
		s.maxChars = maxChars
	}
}

// SetStream asks the LLM for incremental generation.
func (s *ChatService) SetStream(stream bool) {
	s.stream = stream
}

// Ask answers query from the documents in sources and records the turn.
func (s *ChatService) Ask(ctx context.Context, query string, sources []string) (*domain.ChatTurn, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	logger.Section("Ask")
	pivotQuery, lang := s.translator.ToPivot(ctx, query)
	logger.Debug("Query language %s, pivot query %q", lang, pivotQuery)

	material, err := s.composer.Compose(ctx, pivotQuery, s.topK, sources, s.maxChars)
	if err != nil {
		logger.Warn("Composing context failed: %v", err)
		material = ""
	}
	if material == "" {
		material = NoContext
	}

	prompt, err := s.render(driven.PromptChat, material, pivotQuery)
	if err != nil {
		return nil, err
	}

	answer, err := s.generate(ctx, prompt, askMaxTokens, askStopWords)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	turn := domain.ChatTurn{
		ID:           uuid.NewString(),
		Query:        query,
		QueryLang:    lang,
		Response:     answer,
		ResponseLang: domain.PivotLanguage,
		CreatedAt:    time.Now().UTC(),
	}
	if !lang.IsPivot() {
		if translated := s.translator.ToUser(ctx, answer, lang); translated != answer {
			turn.Response = translated
			turn.ResponseLang = lang
		}
	}

	if err := s.history.Append(ctx, turn); err != nil {
		return nil, fmt.Errorf("record turn: %w", err)
	}
	return &turn, nil
}

// History returns the session's turns in order.
func (s *ChatService) History(ctx context.Context) ([]domain.ChatTurn, error) {
	return s.history.List(ctx)
}

// ToggleTranslation translates a turn's response into the other language of
// the pair on first use, and clears the translation on the next.
func (s *ChatService) ToggleTranslation(ctx context.Context, turnID string) (*domain.ChatTurn, error) {
	turn, err := s.history.Get(ctx, turnID)
	if err != nil {
		return nil, fmt.Errorf("get turn: %w", err)
	}

	if turn.HasTranslation() {
		if err := s.history.UpdateTranslation(ctx, turnID, nil, ""); err != nil {
			return nil, fmt.Errorf("clear translation: %w", err)
		}
		turn.CachedTranslation = nil
		turn.TranslationLang = ""
		return turn, nil
	}

	target := turn.TranslationTarget()
	translated := s.translator.Translate(ctx, turn.Response, target)
	if err := s.history.UpdateTranslation(ctx, turnID, &translated, target); err != nil {
		return nil, fmt.Errorf("save translation: %w", err)
	}
	turn.CachedTranslation = &translated
	turn.TranslationLang = target
	return turn, nil
}

// Summarize condenses the indexed content of sources: each piece is
// summarised, then the partial summaries are combined.
func (s *ChatService) Summarize(ctx context.Context, sources []string) (string, error) {
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}
	logger.Section("Summarize")

	pieces, err := s.material(ctx, "summary", sources)
	if err != nil {
		return "", err
	}

	parts, err := s.mapPieces(ctx, pieces, summaryMaxTokens, func(piece string) (string, error) {
		return s.render(driven.PromptSummarisePart, piece)
	})
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}

	prompt, err := s.render(driven.PromptSummariseCombine, strings.Join(parts, "\n"))
	if err != nil {
		return "", err
	}
	summary, err := s.generate(ctx, prompt, summaryMaxTokens, nil)
	if err != nil {
		return "", fmt.Errorf("combine summaries: %w", err)
	}
	return summary, nil
}

// Quiz writes numQuestions multiple-choice questions per piece of the
// indexed content of sources.
func (s *ChatService) Quiz(ctx context.Context, numQuestions int, sources []string) (string, error) {
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}
	if numQuestions <= 0 {
		numQuestions = DefaultQuizQuestions
	}
	logger.Section("Quiz")

	pieces, err := s.material(ctx, "quiz", sources)
	if err != nil {
		return "", err
	}

	parts, err := s.mapPieces(ctx, pieces, quizMaxTokens, func(piece string) (string, error) {
		return s.render(driven.PromptQuiz, numQuestions, piece)
	})
	if err != nil {
		return "", fmt.Errorf("quiz: %w", err)
	}
	return strings.Join(parts, "\n"), nil
}

// material composes the context for a summary or quiz and splits it into
// generator-sized pieces.
func (s *ChatService) material(ctx context.Context, query string, sources []string) ([]string, error) {
	content, err := s.composer.Compose(ctx, query, materialTopK, sources, materialMaxChars)
	if err != nil {
		return nil, fmt.Errorf("compose context: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: no indexed content", domain.ErrNotFound)
	}
	return chunker.Chunk(content, pieceSize, 0), nil
}

// mapPieces generates one output per piece, in piece order.
func (s *ChatService) mapPieces(
	ctx context.Context, pieces []string, maxTokens int, prompt func(piece string) (string, error),
) ([]string, error) {
	out := make([]string, len(pieces))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pieceWorkers)

	for i, piece := range pieces {
		g.Go(func() error {
			p, err := prompt(piece)
			if err != nil {
				return err
			}
			text, err := s.generate(gctx, p, maxTokens, nil)
			if err != nil {
				return fmt.Errorf("piece %d: %w", i+1, err)
			}
			out[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ChatService) generate(ctx context.Context, prompt string, maxTokens int, stop []string) (string, error) {
	gen, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens: maxTokens,
		StopWords: stop,
		Stream:    s.stream,
	})
	if err != nil {
		return "", err
	}
	text, err := domain.Join(gen)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (s *ChatService) render(name string, args ...any) (string, error) {
	tmpl, err := s.prompts.Load(name)
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", name, err)
	}
	return fmt.Sprintf(tmpl, args...), nil
}
