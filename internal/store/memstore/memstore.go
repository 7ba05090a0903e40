// Package memstore is an in-memory implementation of the category and sound
// repositories. It mirrors the PostgreSQL store closely enough for service
// and handler tests: unique slugs, cascade delete, and transactions that
// roll back on error. Transactions are serialised by a single lock.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"voicepad/internal/models"
	"voicepad/internal/store"
)

type txKey struct{}

// Store holds categories and sounds in maps.
type Store struct {
	txMu sync.Mutex

	mu         sync.Mutex
	categories map[int64]models.Category
	sounds     map[int64]models.Sound
	nextCatID  int64
	nextSndID  int64

	// FailSoundCreate, when set, is consulted before every sound insert and
	// its error is returned instead of inserting.
	FailSoundCreate func(s *models.Sound) error

	Categories *Categories
	Sounds     *Sounds
}

// New returns an empty store.
func New() *Store {
	s := &Store{
		categories: make(map[int64]models.Category),
		sounds:     make(map[int64]models.Sound),
	}
	s.Categories = &Categories{s: s}
	s.Sounds = &Sounds{s: s}
	return s
}

// WithinTx runs fn with a snapshot taken first; an error restores it.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	cats := cloneMap(s.categories)
	snds := cloneMap(s.sounds)
	nextCat, nextSnd := s.nextCatID, s.nextSndID
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.categories, s.sounds = cats, snds
		s.nextCatID, s.nextSndID = nextCat, nextSnd
		s.mu.Unlock()
		return err
	}
	return nil
}

func cloneMap[V any](m map[int64]V) map[int64]V {
	out := make(map[int64]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// SoundCount returns the number of stored sounds.
func (s *Store) SoundCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sounds)
}

// Categories implements the category repository.
type Categories struct{ s *Store }

// ListWithCounts returns all categories ordered by name, with sound counts.
func (c *Categories) ListWithCounts(_ context.Context) ([]models.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	counts := make(map[int64]int)
	for _, snd := range c.s.sounds {
		counts[snd.CategoryID]++
	}
	var out []models.Category
	for _, cat := range c.s.categories {
		cat.SoundCount = counts[cat.ID]
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// FindByID returns the category or nil.
func (c *Categories) FindByID(_ context.Context, id int64) (*models.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	cat, ok := c.s.categories[id]
	if !ok {
		return nil, nil
	}
	return &cat, nil
}

// FindBySlug returns the category or nil.
func (c *Categories) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	for _, cat := range c.s.categories {
		if cat.Slug == slug {
			return &cat, nil
		}
	}
	return nil, nil
}

// SlugExists reports whether another category uses slug.
func (c *Categories) SlugExists(_ context.Context, slug string, exceptID int64) (bool, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.slugTaken(slug, exceptID), nil
}

func (c *Categories) slugTaken(slug string, exceptID int64) bool {
	for _, cat := range c.s.categories {
		if cat.Slug == slug && cat.ID != exceptID {
			return true
		}
	}
	return false
}

// Create inserts a category.
func (c *Categories) Create(_ context.Context, cat *models.Category) (*models.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.slugTaken(cat.Slug, 0) {
		return nil, fmt.Errorf("create category: %w: categories_slug_key", store.ErrDuplicate)
	}
	c.s.nextCatID++
	now := time.Now()
	created := *cat
	created.ID = c.s.nextCatID
	created.CreatedAt, created.UpdatedAt = now, now
	created.SoundCount = 0
	c.s.categories[created.ID] = created
	return &created, nil
}

// Update overwrites a category.
func (c *Categories) Update(_ context.Context, cat *models.Category) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	existing, ok := c.s.categories[cat.ID]
	if !ok {
		return nil
	}
	if c.slugTaken(cat.Slug, cat.ID) {
		return fmt.Errorf("update category: %w: categories_slug_key", store.ErrDuplicate)
	}
	existing.Name, existing.Slug, existing.Description = cat.Name, cat.Slug, cat.Description
	existing.UpdatedAt = time.Now()
	c.s.categories[cat.ID] = existing
	return nil
}

// Delete removes a category and cascades to its sounds.
func (c *Categories) Delete(_ context.Context, id int64) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	delete(c.s.categories, id)
	for sid, snd := range c.s.sounds {
		if snd.CategoryID == id {
			delete(c.s.sounds, sid)
		}
	}
	return nil
}

// LockSortScope requires a transaction; WithinTx already serialises writers.
func (c *Categories) LockSortScope(ctx context.Context, _ int64) error {
	if ctx.Value(txKey{}) == nil {
		return store.ErrNoTx
	}
	return nil
}

// Sounds implements the sound repository.
type Sounds struct{ s *Store }

func (r *Sounds) slugTaken(slug string, exceptID int64) bool {
	for _, snd := range r.s.sounds {
		if snd.Slug == slug && snd.ID != exceptID {
			return true
		}
	}
	return false
}

// Create inserts a sound.
func (r *Sounds) Create(_ context.Context, snd *models.Sound) (*models.Sound, error) {
	if r.s.FailSoundCreate != nil {
		if err := r.s.FailSoundCreate(snd); err != nil {
			return nil, fmt.Errorf("create sound: %w", err)
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[snd.CategoryID]; !ok {
		return nil, fmt.Errorf("create sound: category %d violates foreign key", snd.CategoryID)
	}
	if r.slugTaken(snd.Slug, 0) {
		return nil, fmt.Errorf("create sound: %w: sounds_slug_key", store.ErrDuplicate)
	}
	r.s.nextSndID++
	now := time.Now()
	created := *snd
	created.ID = r.s.nextSndID
	created.CreatedAt, created.UpdatedAt = now, now
	r.s.sounds[created.ID] = created
	return &created, nil
}

// Update overwrites a sound's mutable columns.
func (r *Sounds) Update(_ context.Context, snd *models.Sound) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.sounds[snd.ID]
	if !ok {
		return nil
	}
	if r.slugTaken(snd.Slug, snd.ID) {
		return fmt.Errorf("update sound: %w: sounds_slug_key", store.ErrDuplicate)
	}
	updated := *snd
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	r.s.sounds[snd.ID] = updated
	return nil
}

// Delete removes a sound.
func (r *Sounds) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sounds, id)
	return nil
}

// FindByID returns the sound or nil.
func (r *Sounds) FindByID(_ context.Context, id int64) (*models.Sound, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	snd, ok := r.s.sounds[id]
	if !ok {
		return nil, nil
	}
	return &snd, nil
}

// FindBySlug returns the sound or nil.
func (r *Sounds) FindBySlug(_ context.Context, slug string) (*models.Sound, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, snd := range r.s.sounds {
		if snd.Slug == slug {
			return &snd, nil
		}
	}
	return nil, nil
}

// FindByIDs returns the matching sounds in display order.
func (r *Sounds) FindByIDs(_ context.Context, ids []int64) ([]models.Sound, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Sound
	seen := make(map[int64]bool)
	for _, id := range ids {
		if snd, ok := r.s.sounds[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, snd)
		}
	}
	sortSounds(out)
	return out, nil
}

// ListByCategory returns a category's sounds ordered by (sort_order, id).
func (r *Sounds) ListByCategory(_ context.Context, categoryID int64) ([]models.Sound, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Sound
	for _, snd := range r.s.sounds {
		if snd.CategoryID == categoryID {
			out = append(out, snd)
		}
	}
	sortSounds(out)
	return out, nil
}

func sortSounds(items []models.Sound) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.CategoryID != b.CategoryID {
			return a.CategoryID < b.CategoryID
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.ID < b.ID
	})
}

// NextSortOrder returns max+1 within the category, or 1 when empty.
func (r *Sounds) NextSortOrder(_ context.Context, categoryID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	found := false
	maxOrder := 0
	for _, snd := range r.s.sounds {
		if snd.CategoryID != categoryID {
			continue
		}
		if !found || snd.SortOrder > maxOrder {
			maxOrder = snd.SortOrder
		}
		found = true
	}
	if !found {
		return 1, nil
	}
	return maxOrder + 1, nil
}

// SlugExists reports whether another sound uses slug.
func (r *Sounds) SlugExists(_ context.Context, slug string, exceptID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.slugTaken(slug, exceptID), nil
}

// SetSortOrder updates one sound's sort_order.
func (r *Sounds) SetSortOrder(_ context.Context, id int64, order int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	snd, ok := r.s.sounds[id]
	if !ok {
		return nil
	}
	snd.SortOrder = order
	snd.UpdatedAt = time.Now()
	r.s.sounds[id] = snd
	return nil
}

// FilePaths returns stored file paths, optionally for one category.
func (r *Sounds) FilePaths(_ context.Context, categoryID int64) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []string
	for _, snd := range r.s.sounds {
		if categoryID > 0 && snd.CategoryID != categoryID {
			continue
		}
		out = append(out, snd.FilePath)
	}
	sort.Strings(out)
	return out, nil
}

// Stats returns library-wide totals.
func (r *Sounds) Stats(_ context.Context) (models.SoundStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st := models.SoundStats{
		TotalSounds:     int64(len(r.s.sounds)),
		TotalCategories: int64(len(r.s.categories)),
	}
	for _, snd := range r.s.sounds {
		if snd.Duration != nil {
			st.TotalDuration += *snd.Duration
		}
		st.TotalBytes += snd.FileSize
	}
	return st, nil
}
