package sounds

import (
	"context"
	"io"

	"voicepad/internal/models"
)

// CategoryRepo is the category persistence the services need.
// *store.CategoryStore and *memstore.Categories implement it.
type CategoryRepo interface {
	ListWithCounts(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id int64) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	SlugExists(ctx context.Context, slug string, exceptID int64) (bool, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id int64) error
	LockSortScope(ctx context.Context, categoryID int64) error
}

// SoundRepo is the sound persistence the services need.
type SoundRepo interface {
	Create(ctx context.Context, s *models.Sound) (*models.Sound, error)
	Update(ctx context.Context, s *models.Sound) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*models.Sound, error)
	FindBySlug(ctx context.Context, slug string) (*models.Sound, error)
	FindByIDs(ctx context.Context, ids []int64) ([]models.Sound, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]models.Sound, error)
	NextSortOrder(ctx context.Context, categoryID int64) (int, error)
	SlugExists(ctx context.Context, slug string, exceptID int64) (bool, error)
	SetSortOrder(ctx context.Context, id int64, order int) error
	FilePaths(ctx context.Context, categoryID int64) ([]string, error)
	Stats(ctx context.Context) (models.SoundStats, error)
}

// TxRunner runs fn in a transaction carried by ctx.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Invalidator drops cached public listings after a write.
type Invalidator interface {
	InvalidateAll(ctx context.Context)
}

// DurationFunc measures an audio stream, returning nil when it can't.
type DurationFunc func(r io.ReadSeeker, filename, mimeType string) *float64
