package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/athena/internal/core/domain"
)

func TestChatHistoryStore_AppendAndList(t *testing.T) {
	store := NewChatHistoryStore()
	ctx := context.Background()

	for _, id := range []string{"t2", "t1"} {
		require.NoError(t, store.Append(ctx, domain.ChatTurn{ID: id, Query: "q"}))
	}

	turns, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "t2", turns[0].ID)
	assert.False(t, turns[0].CreatedAt.IsZero())
}

func TestChatHistoryStore_UpdateTranslation(t *testing.T) {
	store := NewChatHistoryStore()
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, domain.ChatTurn{ID: "t1", Response: "hello"}))

	text := "مرحبا"
	require.NoError(t, store.UpdateTranslation(ctx, "t1", &text, domain.LanguageArabic))
	text = "mutated"

	turn, err := store.Get(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, turn.CachedTranslation)
	assert.Equal(t, "مرحبا", *turn.CachedTranslation)
	assert.Equal(t, domain.LanguageArabic, turn.TranslationLang)

	require.NoError(t, store.UpdateTranslation(ctx, "t1", nil, ""))
	turn, err = store.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, turn.CachedTranslation)

	assert.ErrorIs(t, store.UpdateTranslation(ctx, "nope", nil, ""), domain.ErrNotFound)
}

func TestChatHistoryStore_GetAndClear(t *testing.T) {
	store := NewChatHistoryStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Append(ctx, domain.ChatTurn{ID: "t1"}))
	require.NoError(t, store.Clear(ctx))

	turns, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, turns)
	_, err = store.Get(ctx, "t1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
