package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicepad/internal/models"
	"voicepad/internal/store"
)

func TestWithinTx_RollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	cat, err := s.Categories.Create(ctx, &models.Category{Name: "Ambient", Slug: "ambient"})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.WithinTx(ctx, func(ctx context.Context) error {
		_, err := s.Sounds.Create(ctx, &models.Sound{Name: "a", Slug: "a", CategoryID: cat.ID})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.SoundCount())

	// IDs handed out inside the rolled-back tx are reused.
	snd, err := s.Sounds.Create(ctx, &models.Sound{Name: "b", Slug: "b", CategoryID: cat.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), snd.ID)
}

func TestUniqueSlugs(t *testing.T) {
	s := New()
	ctx := context.Background()
	cat, _ := s.Categories.Create(ctx, &models.Category{Name: "A", Slug: "a"})

	_, err := s.Categories.Create(ctx, &models.Category{Name: "A2", Slug: "a"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	_, err = s.Sounds.Create(ctx, &models.Sound{Slug: "x", CategoryID: cat.ID})
	require.NoError(t, err)
	_, err = s.Sounds.Create(ctx, &models.Sound{Slug: "x", CategoryID: cat.ID})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestSortOrderAndCascade(t *testing.T) {
	s := New()
	ctx := context.Background()
	cat, _ := s.Categories.Create(ctx, &models.Category{Name: "A", Slug: "a"})

	next, _ := s.Sounds.NextSortOrder(ctx, cat.ID)
	assert.Equal(t, 1, next)

	s.Sounds.Create(ctx, &models.Sound{Slug: "x", CategoryID: cat.ID, SortOrder: 4})
	next, _ = s.Sounds.NextSortOrder(ctx, cat.ID)
	assert.Equal(t, 5, next)

	require.NoError(t, s.Categories.Delete(ctx, cat.ID))
	assert.Equal(t, 0, s.SoundCount())
}

func TestLockSortScopeRequiresTx(t *testing.T) {
	s := New()
	assert.ErrorIs(t, s.Categories.LockSortScope(context.Background(), 1), store.ErrNoTx)
	assert.NoError(t, s.WithinTx(context.Background(), func(ctx context.Context) error {
		return s.Categories.LockSortScope(ctx, 1)
	}))
}
