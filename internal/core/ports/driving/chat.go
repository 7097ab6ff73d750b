package driving

import (
	"context"

	"github.com/custodia-labs/athena/internal/core/domain"
)

// ChatService answers questions from indexed documents.
type ChatService interface {
	// Ask answers query from the documents in sources (all when empty)
	// and appends the turn to the history.
	Ask(ctx context.Context, query string, sources []string) (*domain.ChatTurn, error)

	// History returns the session's turns in order.
	History(ctx context.Context) ([]domain.ChatTurn, error)

	// ToggleTranslation shows or hides the translation of a turn's response.
	ToggleTranslation(ctx context.Context, turnID string) (*domain.ChatTurn, error)

	// Summarize condenses the indexed content of sources.
	Summarize(ctx context.Context, sources []string) (string, error)

	// Quiz writes multiple-choice questions from the indexed content of sources.
	Quiz(ctx context.Context, numQuestions int, sources []string) (string, error)
}
