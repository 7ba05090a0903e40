// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the voicepad API.
// Handlers are grouped by concern (admin, public, assets) and receive
// their dependencies through the handler struct.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"voicepad/internal/sounds"
)

// Admin groups the authenticated JSON endpoints that manage sounds and
// categories.
type Admin struct {
	sounds     *sounds.Manager
	categories *sounds.CategoryService
	maxUpload  int64
}

// NewAdmin creates the admin handler group. maxUpload is the per-file
// limit in bytes; zero uses the default.
func NewAdmin(mgr *sounds.Manager, cats *sounds.CategoryService, maxUpload int64) *Admin {
	if maxUpload <= 0 {
		maxUpload = sounds.DefaultMaxUploadSize
	}
	return &Admin{sounds: mgr, categories: cats, maxUpload: maxUpload}
}

// Stats returns library totals with display strings.
func (a *Admin) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := a.sounds.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_sounds":     st.TotalSounds,
		"total_categories": st.TotalCategories,
		"total_duration":   st.FormattedTotalDuration(),
		"total_size":       st.FormattedTotalSize(),
		"total_bytes":      st.TotalBytes,
	})
}

// categoryRequest is the JSON body for category create and update.
type categoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Slug        *string `json:"slug"`
}

// ListCategories lists every category with its sound count.
func (a *Admin) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := a.categories.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]categoryResource, 0, len(cats))
	for i := range cats {
		out = append(out, newCategoryResource(&cats[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

// CreateCategory handles POST /admin/categories.
func (a *Admin) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in := sounds.CategoryInput{Description: req.Description}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Slug != nil {
		in.Slug = *req.Slug
	}
	cat, err := a.categories.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"data": newCategoryResource(cat)})
}

// UpdateCategory handles PUT /admin/categories/{id}.
func (a *Admin) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cat, err := a.categories.Update(r.Context(), id, sounds.CategoryChanges{
		Name:        req.Name,
		Description: req.Description,
		Slug:        req.Slug,
	})
	if errors.Is(err, sounds.ErrCategoryNotFound) {
		writeError(w, "category not found", http.StatusNotFound)
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": newCategoryResource(cat)})
}

// DeleteCategory handles DELETE /admin/categories/{id}. Every sound in
// the category is deleted with it.
func (a *Admin) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	deleted, err := a.categories.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !deleted {
		writeError(w, "category not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reorderRequest is the body of PUT /admin/categories/{id}/order.
type reorderRequest struct {
	IDs []int64 `json:"ids"`
}

// ReorderCategory sets the display order of a category's sounds.
func (a *Admin) ReorderCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req reorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	err := a.sounds.Reorder(r.Context(), id, req.IDs)
	if errors.Is(err, sounds.ErrCategoryNotFound) {
		writeError(w, "category not found", http.StatusNotFound)
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// maxJSONBody bounds admin JSON request bodies.
const maxJSONBody = 1 << 20

// decodeJSON decodes the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// idParam parses the {id} URL parameter, writing a 404 when it is not a
// positive integer.
func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, "not found", http.StatusNotFound)
		return 0, false
	}
	return id, true
}
