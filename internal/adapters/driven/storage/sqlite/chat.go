package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
)

// ==================== Chat History Store ====================

// chatHistoryStore implements driven.ChatHistoryStore.
type chatHistoryStore struct {
	store *Store
}

var _ driven.ChatHistoryStore = (*chatHistoryStore)(nil)

// Append records a turn at the end of the history.
func (s *chatHistoryStore) Append(ctx context.Context, turn domain.ChatTurn) error {
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO chat_turns (id, query, query_lang, response, response_lang,
			cached_translation, translation_lang, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, turn.ID, turn.Query, string(turn.QueryLang), turn.Response, string(turn.ResponseLang),
		translationValue(turn.CachedTranslation), string(turn.TranslationLang), turn.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving chat turn: %w", err)
	}
	return nil
}

// Get retrieves a turn by id.
func (s *chatHistoryStore) Get(ctx context.Context, id string) (*domain.ChatTurn, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, query, query_lang, response, response_lang,
			cached_translation, translation_lang, created_at
		FROM chat_turns WHERE id = ?
	`, id)

	turn, err := scanTurn(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return turn, err
}

// UpdateTranslation sets or clears the cached translation of a turn.
func (s *chatHistoryStore) UpdateTranslation(ctx context.Context, id string, translation *string, lang domain.LanguageTag) error {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE chat_turns SET cached_translation = ?, translation_lang = ? WHERE id = ?",
		translationValue(translation), string(lang), id)
	if err != nil {
		return fmt.Errorf("updating translation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns the history in append order.
func (s *chatHistoryStore) List(ctx context.Context) ([]domain.ChatTurn, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, query, query_lang, response, response_lang,
			cached_translation, translation_lang, created_at
		FROM chat_turns ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chat turns: %w", err)
	}
	defer rows.Close()

	var turns []domain.ChatTurn //nolint:prealloc // size unknown from query
	for rows.Next() {
		turn, err := scanTurn(rows)
		if err != nil {
			return nil, err
		}
		turns = append(turns, *turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chat turns: %w", err)
	}
	return turns, nil
}

// Clear removes every turn.
func (s *chatHistoryStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM chat_turns"); err != nil {
		return fmt.Errorf("clearing chat turns: %w", err)
	}
	return nil
}

func scanTurn(row rowScanner) (*domain.ChatTurn, error) {
	var turn domain.ChatTurn
	var queryLang, responseLang, translationLang string
	var translation sql.NullString
	var createdAt sql.NullTime
	if err := row.Scan(&turn.ID, &turn.Query, &queryLang, &turn.Response, &responseLang,
		&translation, &translationLang, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning chat turn: %w", err)
	}

	turn.QueryLang = domain.LanguageTag(queryLang)
	turn.ResponseLang = domain.LanguageTag(responseLang)
	turn.TranslationLang = domain.LanguageTag(translationLang)
	if translation.Valid {
		text := translation.String
		turn.CachedTranslation = &text
	}
	if createdAt.Valid {
		turn.CreatedAt = createdAt.Time
	}
	return &turn, nil
}

func translationValue(translation *string) sql.NullString {
	if translation == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *translation, Valid: true}
}
