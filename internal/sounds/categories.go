package sounds

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"voicepad/internal/logger"
	"voicepad/internal/models"
	"voicepad/internal/slug"
)

// CategoryInput describes a new category.
type CategoryInput struct {
	Name        string
	Description *string
	Slug        string
}

// CategoryChanges lists the fields to change; nil leaves a field as it is.
type CategoryChanges struct {
	Name        *string
	Description *string
	Slug        *string
}

// CategoryService manages categories. Deleting a category also removes the
// files of every sound in it.
type CategoryService struct {
	tx         TxRunner
	categories CategoryRepo
	sounds     SoundRepo
	files      fileDeleter
	cache      Invalidator
}

type fileDeleter interface {
	Delete(ctx context.Context, key string) error
}

// NewCategoryService returns a CategoryService using deps.
func NewCategoryService(deps Deps) *CategoryService {
	return &CategoryService{
		tx:         deps.Tx,
		categories: deps.Categories,
		sounds:     deps.Sounds,
		files:      deps.Files,
		cache:      deps.Cache,
	}
}

// List returns all categories with their sound counts.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.categories.ListWithCounts(ctx)
}

// Get returns a category by ID.
func (s *CategoryService) Get(ctx context.Context, id int64) (*models.Category, error) {
	cat, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, ErrCategoryNotFound
	}
	return cat, nil
}

// GetBySlug returns a category by slug.
func (s *CategoryService) GetBySlug(ctx context.Context, sl string) (*models.Category, error) {
	cat, err := s.categories.FindBySlug(ctx, sl)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, ErrCategoryNotFound
	}
	return cat, nil
}

// Create adds a category. Its slug comes from in.Slug when set, otherwise
// from the name, suffixed until unique.
func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}

	var created *models.Category
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		sl, err := s.slugFor(ctx, in.Name, in.Slug, 0)
		if err != nil {
			return err
		}
		created, err = s.categories.Create(ctx, &models.Category{
			Name:        in.Name,
			Slug:        sl,
			Description: normalizeDescription(in.Description),
		})
		return err
	})
	if err != nil {
		if IsValidation(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	logger.Info("category created", zap.Int64("id", created.ID), zap.String("slug", created.Slug))
	s.invalidate(ctx)
	return created, nil
}

// Update changes a category. A new name regenerates the slug unless a slug
// is given in the same update.
func (s *CategoryService) Update(ctx context.Context, id int64, ch CategoryChanges) (*models.Category, error) {
	cat, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ch.Name != nil {
		name := strings.TrimSpace(*ch.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		ch.Name = &name
	}
	if err := validateDescription(ch.Description); err != nil {
		return nil, err
	}

	// Re-sending the current slug alongside a new name is not an override.
	var forced string
	if ch.Slug != nil && *ch.Slug != "" && slug.Generate(*ch.Slug) != cat.Slug {
		forced = *ch.Slug
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		switch {
		case forced != "":
			sl, err := s.slugFor(ctx, "", forced, id)
			if err != nil {
				return err
			}
			cat.Slug = sl
		case ch.Name != nil && *ch.Name != cat.Name:
			sl, err := s.slugFor(ctx, *ch.Name, "", id)
			if err != nil {
				return err
			}
			cat.Slug = sl
		}
		if ch.Name != nil {
			cat.Name = *ch.Name
		}
		if ch.Description != nil {
			cat.Description = normalizeDescription(ch.Description)
		}
		return s.categories.Update(ctx, cat)
	})
	if err != nil {
		if IsValidation(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.invalidate(ctx)
	return s.Get(ctx, id)
}

// Delete removes the files of every sound in the category, then the
// category; its rows go with it. A failed file delete is logged only.
// It reports false when the category does not exist.
func (s *CategoryService) Delete(ctx context.Context, id int64) (bool, error) {
	cat, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	if cat == nil {
		return false, nil
	}

	keys, err := s.sounds.FilePaths(ctx, id)
	if err != nil {
		return false, err
	}
	for _, key := range keys {
		if err := s.files.Delete(ctx, key); err != nil {
			logger.Warn("failed to delete sound file",
				zap.Int64("category_id", id), zap.String("key", key), zap.Error(err))
		}
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return false, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	logger.Info("category deleted",
		zap.Int64("id", id), zap.String("slug", cat.Slug), zap.Int("sounds", len(keys)))
	s.invalidate(ctx)
	return true, nil
}

// slugFor returns the forced slug when given (rejecting one in use), or a
// unique slug derived from name.
func (s *CategoryService) slugFor(ctx context.Context, name, forced string, exceptID int64) (string, error) {
	exists := func(ctx context.Context, sl string) (bool, error) {
		return s.categories.SlugExists(ctx, sl, exceptID)
	}
	if forced == "" {
		return slug.Unique(ctx, slug.Generate(name), exists)
	}
	sl := slug.Generate(forced)
	if sl == "" {
		return "", invalid("slug", "must contain letters or digits")
	}
	taken, err := exists(ctx, sl)
	if err != nil {
		return "", err
	}
	if taken {
		return "", invalid("slug", "has already been taken")
	}
	return sl, nil
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateAll(ctx)
	}
}
