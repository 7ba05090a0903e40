// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package sounds owns the lifecycle of sound files: storing an upload under
// a generated key, measuring it, recording it with the next sort position in
// its category, and replacing or deleting the file together with its row.
package sounds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"voicepad/internal/audio"
	"voicepad/internal/logger"
	"voicepad/internal/models"
	"voicepad/internal/slug"
	"voicepad/internal/storage"
	"voicepad/internal/store"
)

// Deps wires a Manager or CategoryService to its collaborators. Cache,
// Duration and Now are optional.
type Deps struct {
	Tx         TxRunner
	Categories CategoryRepo
	Sounds     SoundRepo
	Files      storage.Store
	Cache      Invalidator
	Duration   DurationFunc
	Limits     Limits
	Now        func() time.Time
}

// Manager implements the sound lifecycle.
type Manager struct {
	tx         TxRunner
	categories CategoryRepo
	sounds     SoundRepo
	files      storage.Store
	cache      Invalidator
	duration   DurationFunc
	limits     Limits
	now        func() time.Time
}

// NewManager returns a Manager using deps.
func NewManager(deps Deps) *Manager {
	m := &Manager{
		tx:         deps.Tx,
		categories: deps.Categories,
		sounds:     deps.Sounds,
		files:      deps.Files,
		cache:      deps.Cache,
		duration:   deps.Duration,
		limits:     deps.Limits,
		now:        deps.Now,
	}
	if m.duration == nil {
		m.duration = audio.Duration
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// CreateInput describes a new sound. Slug, when non-empty, overrides the
// slug derived from Name.
type CreateInput struct {
	Name        string
	CategoryID  int64
	Description *string
	Slug        string
}

// SoundChanges lists the descriptive fields to change; nil leaves a field
// as it is. An empty Description clears it.
type SoundChanges struct {
	Name        *string
	Description *string
	CategoryID  *int64
	Slug        *string
}

// BulkResult is the outcome of BulkCreate.
type BulkResult struct {
	Sounds          []*models.Sound
	Count           int
	NothingToUpload bool
}

// storedFile is what putFile wrote.
type storedFile struct {
	key      string
	mimeType string
	size     int64
	duration *float64
}

// Create stores the upload and records a new sound at the end of its
// category.
func (m *Manager) Create(ctx context.Context, up Upload, in CreateInput) (*models.Sound, error) {
	if err := m.limits.validateUpload(up); err != nil {
		return nil, err
	}
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}
	if _, err := m.requireCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	forced, err := m.forcedSlug(ctx, in.Slug, 0)
	if err != nil {
		return nil, err
	}

	file, err := m.putFile(ctx, up)
	if err != nil {
		return nil, err
	}

	var created *models.Sound
	err = m.tx.WithinTx(ctx, func(ctx context.Context) error {
		created, err = m.insert(ctx, in.CategoryID, in.Name, normalizeDescription(in.Description), forced, up.Filename, file)
		return err
	})
	if err != nil {
		logger.Error("orphaned asset: sound row not written",
			zap.String("key", file.key), zap.Error(err))
		if forced != "" && isDuplicate(err) {
			return nil, invalid("slug", "has already been taken")
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	logger.Info("sound created",
		zap.Int64("id", created.ID), zap.String("key", created.FilePath),
		zap.Int64("category_id", created.CategoryID), zap.Int("sort_order", created.SortOrder))
	m.invalidate(ctx)
	return created, nil
}

// BulkCreate stores every upload into one category inside a single
// transaction. Names come from the file names. Any failure rolls back all
// rows and returns a *BulkError; files already written stay in storage and
// are logged as orphans.
func (m *Manager) BulkCreate(ctx context.Context, uploads []Upload, categoryID int64) (BulkResult, error) {
	if len(uploads) == 0 {
		return BulkResult{NothingToUpload: true}, nil
	}

	names := make([]string, len(uploads))
	for i, up := range uploads {
		if err := m.limits.validateUpload(up); err != nil {
			return BulkResult{}, &BulkError{Index: i, Filename: up.Filename, Err: err}
		}
		names[i] = NameFromFilename(up.Filename)
		if err := validateName(names[i]); err != nil {
			return BulkResult{}, &BulkError{Index: i, Filename: up.Filename, Err: err}
		}
	}
	if _, err := m.requireCategory(ctx, categoryID); err != nil {
		return BulkResult{}, err
	}

	var (
		written []string
		created []*models.Sound
	)
	err := m.tx.WithinTx(ctx, func(ctx context.Context) error {
		created = created[:0]
		for i, up := range uploads {
			file, err := m.putFile(ctx, up)
			if err != nil {
				return &BulkError{Index: i, Filename: up.Filename, Err: err}
			}
			written = append(written, file.key)

			snd, err := m.insert(ctx, categoryID, names[i], nil, "", up.Filename, file)
			if err != nil {
				return &BulkError{Index: i, Filename: up.Filename, Err: fmt.Errorf("%w: %w", ErrPersistence, err)}
			}
			created = append(created, snd)
		}
		return nil
	})
	if err != nil {
		if len(written) > 0 {
			logger.Error("orphaned assets: bulk upload rolled back",
				zap.Strings("keys", written), zap.Error(err))
		}
		return BulkResult{}, err
	}

	logger.Info("bulk upload completed",
		zap.Int64("category_id", categoryID), zap.Int("count", len(created)))
	m.invalidate(ctx)
	return BulkResult{Sounds: created, Count: len(created)}, nil
}

// insert assigns the next sort order and a slug and writes the row. It must
// run inside a transaction.
func (m *Manager) insert(ctx context.Context, categoryID int64, name string, desc *string, forcedSlug, originalName string, file storedFile) (*models.Sound, error) {
	if err := m.categories.LockSortScope(ctx, categoryID); err != nil {
		return nil, err
	}
	order, err := m.sounds.NextSortOrder(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	s := forcedSlug
	if s == "" {
		if s, err = m.uniqueSlug(ctx, name, 0); err != nil {
			return nil, err
		}
	}
	return m.sounds.Create(ctx, &models.Sound{
		Name:        name,
		Slug:        s,
		Description: desc,
		FilePath:    file.key,
		FileName:    originalName,
		MimeType:    file.mimeType,
		FileSize:    file.size,
		Duration:    file.duration,
		CategoryID:  categoryID,
		SortOrder:   order,
	})
}

// Replace updates a sound's descriptive fields and, when up is non-nil,
// swaps its file. The old file is deleted before the new one is written.
func (m *Manager) Replace(ctx context.Context, id int64, up *Upload, ch SoundChanges) (*models.Sound, error) {
	snd, err := m.sounds.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if snd == nil {
		return nil, ErrNotFound
	}

	if up != nil {
		if err := m.limits.validateUpload(*up); err != nil {
			return nil, err
		}
	}
	if ch.Name != nil {
		if err := validateName(*ch.Name); err != nil {
			return nil, err
		}
	}
	if err := validateDescription(ch.Description); err != nil {
		return nil, err
	}
	moving := ch.CategoryID != nil && *ch.CategoryID != snd.CategoryID
	if moving {
		if _, err := m.requireCategory(ctx, *ch.CategoryID); err != nil {
			return nil, err
		}
	}
	// A slug equal to the current one is not an override, so a full-form
	// edit that renames the sound still regenerates it.
	var forced string
	if ch.Slug != nil {
		if forced, err = m.forcedSlug(ctx, *ch.Slug, id); err != nil {
			return nil, err
		}
		if forced == snd.Slug {
			forced = ""
		}
	}

	var newKey string
	if up != nil {
		oldKey := snd.FilePath
		if err := m.files.Delete(ctx, oldKey); err != nil {
			logger.Warn("failed to delete replaced sound file",
				zap.Int64("id", id), zap.String("key", oldKey), zap.Error(err))
		}
		file, err := m.putFile(ctx, *up)
		if err != nil {
			logger.Error("sound has no backing file",
				zap.Int64("id", id), zap.String("key", oldKey), zap.Error(err))
			return nil, err
		}
		newKey = file.key
		snd.FilePath = file.key
		snd.FileName = up.Filename
		snd.MimeType = file.mimeType
		snd.FileSize = file.size
		snd.Duration = file.duration
	}

	renamed := ch.Name != nil && *ch.Name != snd.Name
	if ch.Name != nil {
		snd.Name = *ch.Name
	}
	if ch.Description != nil {
		snd.Description = normalizeDescription(ch.Description)
	}

	err = m.tx.WithinTx(ctx, func(ctx context.Context) error {
		switch {
		case forced != "":
			snd.Slug = forced
		case renamed:
			s, err := m.uniqueSlug(ctx, snd.Name, id)
			if err != nil {
				return err
			}
			snd.Slug = s
		}
		if moving {
			if err := m.categories.LockSortScope(ctx, *ch.CategoryID); err != nil {
				return err
			}
			order, err := m.sounds.NextSortOrder(ctx, *ch.CategoryID)
			if err != nil {
				return err
			}
			snd.CategoryID = *ch.CategoryID
			snd.SortOrder = order
		}
		return m.sounds.Update(ctx, snd)
	})
	if err != nil {
		if newKey != "" {
			logger.Error("orphaned asset: sound row not updated",
				zap.Int64("id", id), zap.String("key", newKey), zap.Error(err))
		}
		if forced != "" && isDuplicate(err) {
			return nil, invalid("slug", "has already been taken")
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	m.invalidate(ctx)
	updated, err := m.sounds.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	return updated, nil
}

// Delete removes the sound's file and row. It reports false when the sound
// does not exist. A failed file delete is logged and does not block.
func (m *Manager) Delete(ctx context.Context, id int64) (bool, error) {
	snd, err := m.sounds.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	if snd == nil {
		return false, nil
	}

	if err := m.files.Delete(ctx, snd.FilePath); err != nil {
		logger.Warn("failed to delete sound file",
			zap.Int64("id", id), zap.String("key", snd.FilePath), zap.Error(err))
	}
	if err := m.sounds.Delete(ctx, id); err != nil {
		return false, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	logger.Info("sound deleted", zap.Int64("id", id), zap.String("key", snd.FilePath))
	m.invalidate(ctx)
	return true, nil
}

// Reorder assigns sort_order 1..n to orderedIDs within the category in one
// transaction. Every ID must belong to the category and appear once.
// Sounds left out keep their current sort_order.
func (m *Manager) Reorder(ctx context.Context, categoryID int64, orderedIDs []int64) error {
	if _, err := m.requireCategory(ctx, categoryID); err != nil {
		return err
	}
	seen := make(map[int64]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if seen[id] {
			return invalid("ids", "sound %d is listed more than once", id)
		}
		seen[id] = true
	}

	err := m.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := m.categories.LockSortScope(ctx, categoryID); err != nil {
			return err
		}
		current, err := m.sounds.ListByCategory(ctx, categoryID)
		if err != nil {
			return err
		}
		members := make(map[int64]bool, len(current))
		for _, s := range current {
			members[s.ID] = true
		}
		for i, id := range orderedIDs {
			if !members[id] {
				return invalid("ids", "sound %d does not belong to category %d", id, categoryID)
			}
			if err := m.sounds.SetSortOrder(ctx, id, i+1); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if IsValidation(err) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	m.invalidate(ctx)
	return nil
}

// Get returns a sound by ID.
func (m *Manager) Get(ctx context.Context, id int64) (*models.Sound, error) {
	snd, err := m.sounds.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if snd == nil {
		return nil, ErrNotFound
	}
	return snd, nil
}

// GetBySlug returns a sound by slug.
func (m *Manager) GetBySlug(ctx context.Context, s string) (*models.Sound, error) {
	snd, err := m.sounds.FindBySlug(ctx, s)
	if err != nil {
		return nil, err
	}
	if snd == nil {
		return nil, ErrNotFound
	}
	return snd, nil
}

// ListByCategory returns a category's sounds in display order.
func (m *Manager) ListByCategory(ctx context.Context, categoryID int64) ([]models.Sound, error) {
	if _, err := m.requireCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	return m.sounds.ListByCategory(ctx, categoryID)
}

// ListByIDs returns the sounds with the given IDs; unknown IDs are skipped.
func (m *Manager) ListByIDs(ctx context.Context, ids []int64) ([]models.Sound, error) {
	return m.sounds.FindByIDs(ctx, ids)
}

// Stats returns library-wide totals.
func (m *Manager) Stats(ctx context.Context) (models.SoundStats, error) {
	return m.sounds.Stats(ctx)
}

// URL returns the public URL of a sound's file.
func (m *Manager) URL(snd *models.Sound) string {
	return m.files.URL(snd.FilePath)
}

// putFile writes the upload under a fresh key and measures it.
func (m *Manager) putFile(ctx context.Context, up Upload) (storedFile, error) {
	key := StorageKey(GenerateFilename(up.Filename, m.now()))
	mimeType := up.mimeType()

	if _, err := up.Body.Seek(0, io.SeekStart); err != nil {
		return storedFile{}, fmt.Errorf("%w: rewind upload: %w", ErrStorageWrite, err)
	}
	if err := m.files.Put(ctx, key, up.Body, up.Size, mimeType); err != nil {
		logger.Error("failed to store sound file", zap.String("key", key), zap.Error(err))
		return storedFile{}, fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	var duration *float64
	if _, err := up.Body.Seek(0, io.SeekStart); err == nil {
		duration = m.duration(up.Body, up.Filename, mimeType)
	}
	if duration == nil {
		logger.Warn("sound duration unavailable", zap.String("key", key))
	}
	return storedFile{key: key, mimeType: mimeType, size: up.Size, duration: duration}, nil
}

func (m *Manager) requireCategory(ctx context.Context, id int64) (*models.Category, error) {
	cat, err := m.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, ErrCategoryNotFound
	}
	return cat, nil
}

// forcedSlug normalises an explicit slug and rejects it when another sound
// (not exceptID) already uses it. An empty override returns "".
func (m *Manager) forcedSlug(ctx context.Context, raw string, exceptID int64) (string, error) {
	if raw == "" {
		return "", nil
	}
	s := slug.Generate(raw)
	if s == "" {
		return "", invalid("slug", "must contain letters or digits")
	}
	taken, err := m.sounds.SlugExists(ctx, s, exceptID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", invalid("slug", "has already been taken")
	}
	return s, nil
}

func (m *Manager) uniqueSlug(ctx context.Context, name string, exceptID int64) (string, error) {
	return slug.Unique(ctx, slug.Generate(name), func(ctx context.Context, s string) (bool, error) {
		return m.sounds.SlugExists(ctx, s, exceptID)
	})
}

func (m *Manager) invalidate(ctx context.Context) {
	if m.cache != nil {
		m.cache.InvalidateAll(ctx)
	}
}

// isDuplicate reports whether err came from a unique constraint.
func isDuplicate(err error) bool {
	return errors.Is(err, store.ErrDuplicate)
}
