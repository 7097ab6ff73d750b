package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
)

// Ensure ChatHistoryStore implements the interface.
var _ driven.ChatHistoryStore = (*ChatHistoryStore)(nil)

// ChatHistoryStore keeps the session history in append order.
type ChatHistoryStore struct {
	mu    sync.RWMutex
	turns []domain.ChatTurn
	index map[string]int
}

// NewChatHistoryStore creates an empty history.
func NewChatHistoryStore() *ChatHistoryStore {
	return &ChatHistoryStore{index: make(map[string]int)}
}

// Append records a turn.
func (s *ChatHistoryStore) Append(_ context.Context, turn domain.ChatTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	turn.CachedTranslation = cloneString(turn.CachedTranslation)
	s.index[turn.ID] = len(s.turns)
	s.turns = append(s.turns, turn)
	return nil
}

// Get retrieves a turn by id.
func (s *ChatHistoryStore) Get(_ context.Context, id string) (*domain.ChatTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	turn := s.turns[i]
	turn.CachedTranslation = cloneString(turn.CachedTranslation)
	return &turn, nil
}

// UpdateTranslation sets or clears the cached translation of a turn.
func (s *ChatHistoryStore) UpdateTranslation(_ context.Context, id string, translation *string, lang domain.LanguageTag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.turns[i].CachedTranslation = cloneString(translation)
	s.turns[i].TranslationLang = lang
	return nil
}

// List returns the turns in append order.
func (s *ChatHistoryStore) List(_ context.Context) ([]domain.ChatTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ChatTurn, len(s.turns))
	for i, turn := range s.turns {
		turn.CachedTranslation = cloneString(turn.CachedTranslation)
		out[i] = turn
	}
	return out, nil
}

// Clear removes every turn.
func (s *ChatHistoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
	s.index = make(map[string]int)
	return nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
