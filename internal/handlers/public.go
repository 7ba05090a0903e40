// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"voicepad/internal/cache"
	"voicepad/internal/logger"
	"voicepad/internal/models"
	"voicepad/internal/sounds"
)

// maxIDsPerLookup bounds GET /api/sounds?ids=.
const maxIDsPerLookup = 100

// Public serves the read-only JSON API. It checks the Valkey catalog cache
// before touching the database and stores encoded responses on miss.
type Public struct {
	sounds     *sounds.Manager
	categories *sounds.CategoryService
	catalog    *cache.Catalog
}

// NewPublic creates the public handler group. catalog may be nil.
func NewPublic(mgr *sounds.Manager, cats *sounds.CategoryService, catalog *cache.Catalog) *Public {
	return &Public{sounds: mgr, categories: cats, catalog: catalog}
}

// Categories lists all categories with their sound counts.
func (p *Public) Categories(w http.ResponseWriter, r *http.Request) {
	p.cached(w, r, cache.CategoriesKey(), func() (any, error) {
		cats, err := p.categories.List(r.Context())
		if err != nil {
			return nil, err
		}
		out := make([]categoryResource, 0, len(cats))
		for i := range cats {
			out = append(out, newCategoryResource(&cats[i]))
		}
		return map[string]any{"data": out}, nil
	})
}

// CategorySounds lists one category's sounds in display order.
func (p *Public) CategorySounds(w http.ResponseWriter, r *http.Request) {
	sl := chi.URLParam(r, "slug")
	p.cached(w, r, cache.CategorySoundsKey(sl), func() (any, error) {
		cat, err := p.categories.GetBySlug(r.Context(), sl)
		if err != nil {
			return nil, err
		}
		list, err := p.sounds.ListByCategory(r.Context(), cat.ID)
		if err != nil {
			return nil, err
		}
		out := make([]soundResource, 0, len(list))
		for i := range list {
			out = append(out, newSoundResource(&list[i], p.sounds.URL, cat))
		}
		return map[string]any{"category": newCategoryResource(cat), "data": out}, nil
	})
}

// Sound returns one sound by slug.
func (p *Public) Sound(w http.ResponseWriter, r *http.Request) {
	sl := chi.URLParam(r, "slug")
	p.cached(w, r, cache.SoundKey(sl), func() (any, error) {
		snd, err := p.sounds.GetBySlug(r.Context(), sl)
		if err != nil {
			return nil, err
		}
		cat, err := p.categories.Get(r.Context(), snd.CategoryID)
		if err != nil && !errors.Is(err, sounds.ErrCategoryNotFound) {
			return nil, err
		}
		return map[string]any{"data": newSoundResource(snd, p.sounds.URL, cat)}, nil
	})
}

// SoundsByIDs returns the sounds named in ?ids=1,2,3. Unknown IDs are
// skipped.
func (p *Public) SoundsByIDs(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDs(r.URL.Query().Get("ids"))
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	p.cached(w, r, cache.SoundsByIDsKey(ids), func() (any, error) {
		list, err := p.sounds.ListByIDs(r.Context(), ids)
		if err != nil {
			return nil, err
		}
		cats, err := p.categories.List(r.Context())
		if err != nil {
			return nil, err
		}
		byID := make(map[int64]*models.Category, len(cats))
		for i := range cats {
			byID[cats[i].ID] = &cats[i]
		}
		out := make([]soundResource, 0, len(list))
		for i := range list {
			out = append(out, newSoundResource(&list[i], p.sounds.URL, byID[list[i].CategoryID]))
		}
		return map[string]any{"data": out}, nil
	})
}

// cached serves key from the catalog, or builds, caches and serves it.
// Lookups that miss map to 404 and are not cached.
func (p *Public) cached(w http.ResponseWriter, r *http.Request, key string, build func() (any, error)) {
	if body, ok := p.catalog.Get(r.Context(), key); ok {
		writeRaw(w, body)
		return
	}

	v, err := build()
	if err != nil {
		if errors.Is(err, sounds.ErrNotFound) || errors.Is(err, sounds.ErrCategoryNotFound) {
			writeError(w, "not found", http.StatusNotFound)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	body, err := json.Marshal(v)
	if err != nil {
		logger.Error("encode response", zap.String("key", key), zap.Error(err))
		writeError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	body = append(body, '\n')
	p.catalog.Set(r.Context(), key, body)
	writeRaw(w, body)
}

// parseIDs parses a comma-separated list of positive integers.
func parseIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("ids is required")
	}
	parts := strings.Split(raw, ",")
	if len(parts) > maxIDsPerLookup {
		return nil, errors.New("too many ids (max " + strconv.Itoa(maxIDsPerLookup) + ")")
	}
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, errors.New("invalid id " + strconv.Quote(part))
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, errors.New("ids is required")
	}
	return ids, nil
}
