package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/athena/internal/core/domain"
)

func TestSourceStore_SaveAndGet(t *testing.T) {
	store := NewSourceStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.SourceDocument{
		ID: "notes.pdf", Fingerprint: "abc", ChunkIDs: []int{0, 1},
	}))

	got, err := store.Get(ctx, "notes.pdf")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Fingerprint)
	assert.Equal(t, []int{0, 1}, got.ChunkIDs)
	assert.False(t, got.CreatedAt.IsZero())

	// Returned records are copies.
	got.ChunkIDs[0] = 99
	again, _ := store.Get(ctx, "notes.pdf")
	assert.Equal(t, 0, again.ChunkIDs[0])
}

func TestSourceStore_GetNotFound(t *testing.T) {
	_, err := NewSourceStore().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSourceStore_ReplaceKeepsCreatedAt(t *testing.T) {
	store := NewSourceStore()
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, domain.SourceDocument{ID: "a", Fingerprint: "v1", CreatedAt: created}))
	require.NoError(t, store.Save(ctx, domain.SourceDocument{
		ID: "a", Fingerprint: "v2", ChunkIDs: []int{5}, RetiredChunkIDs: []int{0, 1},
	}))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, "v2", got.Fingerprint)

	retired, err := store.RetiredChunkIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int]struct{}{0: {}, 1: {}}, retired)
}

func TestSourceStore_AppendImages(t *testing.T) {
	store := NewSourceStore()
	ctx := context.Background()

	err := store.AppendImages(ctx, "missing", []domain.ImageRef{{Path: "x"}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Save(ctx, domain.SourceDocument{ID: "a.pdf"}))
	require.NoError(t, store.AppendImages(ctx, "a.pdf", []domain.ImageRef{{Path: "p0", PageIndex: 0}}))
	require.NoError(t, store.AppendImages(ctx, "a.pdf", []domain.ImageRef{{Path: "p1", PageIndex: 1}}))

	got, err := store.Get(ctx, "a.pdf")
	require.NoError(t, err)
	require.Len(t, got.Images, 2)
	assert.Equal(t, "p1", got.Images[1].Path)
}

func TestSourceStore_ListSortedAndClear(t *testing.T) {
	store := NewSourceStore()
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, store.Save(ctx, domain.SourceDocument{ID: id}))
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{list[0].ID, list[1].ID, list[2].ID})

	require.NoError(t, store.Clear(ctx))
	list, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSourceStore_Concurrency(t *testing.T) {
	store := NewSourceStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, domain.SourceDocument{ID: "a.pdf"}))

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.AppendImages(ctx, "a.pdf", []domain.ImageRef{{PageIndex: i}})
		}()
		go func() {
			defer wg.Done()
			_, _ = store.List(ctx)
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Len(t, got.Images, 10)
}
