package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mangashelf/internal/manga"
	"mangashelf/pkg/models"
)

// flakyStore rejects one title and delegates the rest.
type flakyStore struct {
	*manga.MemoryStore
	reject string
}

func (s flakyStore) Create(ctx context.Context, in models.MangaInput) (*models.Manga, error) {
	if in.Title == s.reject {
		return nil, errors.New("disk full")
	}
	return s.MemoryStore.Create(ctx, in)
}

func TestImporter_Import(t *testing.T) {
	t.Parallel()

	store := flakyStore{MemoryStore: manga.NewMemoryStore(), reject: "Bleach"}
	out := New(store, zap.NewNop()).Import(context.Background(), []Row{
		{"title": "One Piece", "read": "TRUE"},
		{"band": "2"},
		{"title": "Bleach"},
		{"Titel": "Naruto"},
	})

	assert.Equal(t, 2, out.Imported)
	assert.Len(t, out.IDs, 2)
	assert.Equal(t, []string{"Row 4: Title is required", "Row 5: disk full"}, out.Errors)

	all, err := store.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "One Piece", all[0].Title)
	assert.True(t, all[0].IsRead)
	assert.Equal(t, "Naruto", all[1].Title)
}

func TestCollect_PagesThroughEverything(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := manga.NewMemoryStore()
	for i := 0; i < manga.MaxPageSize+5; i++ {
		_, err := store.Create(ctx, models.MangaInput{Title: "Vol", WantToBuy: i%2 == 0})
		require.NoError(t, err)
	}

	all, err := Collect(ctx, store, manga.Query{})
	require.NoError(t, err)
	assert.Len(t, all, manga.MaxPageSize+5)

	wish, err := Collect(ctx, store, manga.Query{Status: manga.StatusNewBuy})
	require.NoError(t, err)
	assert.Len(t, wish, (manga.MaxPageSize+5+1)/2)

	none, err := Collect(ctx, manga.NewMemoryStore(), manga.Query{})
	require.NoError(t, err)
	assert.Empty(t, none)
}
