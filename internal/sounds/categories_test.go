package sounds

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cat, err := f.cats.Create(ctx, CategoryInput{Name: "  Ambient Noise "})
	require.NoError(t, err)
	assert.Equal(t, "Ambient Noise", cat.Name)
	assert.Equal(t, "ambient-noise", cat.Slug)

	dup, err := f.cats.Create(ctx, CategoryInput{Name: "Ambient Noise"})
	require.NoError(t, err)
	assert.Equal(t, "ambient-noise-2", dup.Slug)

	forced, err := f.cats.Create(ctx, CategoryInput{Name: "Whatever", Slug: "Custom One"})
	require.NoError(t, err)
	assert.Equal(t, "custom-one", forced.Slug)

	_, err = f.cats.Create(ctx, CategoryInput{Name: "Again", Slug: "custom-one"})
	assert.True(t, IsValidation(err))

	_, err = f.cats.Create(ctx, CategoryInput{Name: ""})
	assert.True(t, IsValidation(err))
	assert.Equal(t, int32(3), f.cache.n.Load())
}

func TestCategoryUpdateSlugRule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	name := "Wild Animals"
	cat, err := f.cats.Update(ctx, f.catID, CategoryChanges{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "wild-animals", cat.Slug)

	name, sl := "Farm Animals", "barnyard"
	cat, err = f.cats.Update(ctx, f.catID, CategoryChanges{Name: &name, Slug: &sl})
	require.NoError(t, err)
	assert.Equal(t, "Farm Animals", cat.Name)
	assert.Equal(t, "barnyard", cat.Slug)

	name, sl = "Pets", cat.Slug
	cat, err = f.cats.Update(ctx, f.catID, CategoryChanges{Name: &name, Slug: &sl})
	require.NoError(t, err)
	assert.Equal(t, "pets", cat.Slug, "re-sent slug does not block regeneration")

	desc := "moo"
	cat, err = f.cats.Update(ctx, f.catID, CategoryChanges{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "pets", cat.Slug)
	require.NotNil(t, cat.Description)
	assert.Equal(t, "moo", *cat.Description)

	taken := "vehicles"
	_, err = f.cats.Update(ctx, f.catID, CategoryChanges{Slug: &taken})
	assert.True(t, IsValidation(err))

	_, err = f.cats.Update(ctx, 999, CategoryChanges{Name: &name})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoryDeleteRemovesFiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t, "A")
	b := f.create(t, "B")
	other, err := f.mgr.Create(ctx, upload("x.mp3", []byte("x")), CreateInput{Name: "X", CategoryID: f.otherID})
	require.NoError(t, err)

	ok, err := f.cats.Delete(ctx, f.catID)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.False(t, f.files.Has(a.FilePath))
	assert.False(t, f.files.Has(b.FilePath))
	assert.True(t, f.files.Has(other.FilePath))
	assert.Equal(t, 1, f.db.SoundCount())

	_, err = f.cats.Get(ctx, f.catID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	ok, err = f.cats.Delete(ctx, f.catID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCategoryDeleteStorageFailureProceeds(t *testing.T) {
	f := newFixture(t)
	f.create(t, "A")
	f.files.DeleteErr = func(string) error { return errors.New("offline") }

	ok, err := f.cats.Delete(context.Background(), f.catID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, f.db.SoundCount())
}

func TestCategoryListCounts(t *testing.T) {
	f := newFixture(t)
	f.create(t, "A")
	f.create(t, "B")

	list, err := f.cats.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Animals", list[0].Name)
	assert.Equal(t, 2, list[0].SoundCount)
	assert.Equal(t, 0, list[1].SoundCount)

	cat, err := f.cats.GetBySlug(context.Background(), "vehicles")
	require.NoError(t, err)
	assert.Equal(t, f.otherID, cat.ID)
}
