// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Handlers run against the in-memory store and storage backends.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"voicepad/internal/models"
	"voicepad/internal/sounds"
	"voicepad/internal/storage"
	"voicepad/internal/store/memstore"
)

type testEnv struct {
	db      *memstore.Store
	files   *storage.Memory
	mgr     *sounds.Manager
	cats    *sounds.CategoryService
	mux     http.Handler
	catID   int64
	otherID int64
}

func newTestEnv(t *testing.T, maxUpload int64) *testEnv {
	t.Helper()
	db := memstore.New()
	files := storage.NewMemory("http://localhost:8080/storage")
	deps := sounds.Deps{
		Tx:         db,
		Categories: db.Categories,
		Sounds:     db.Sounds,
		Files:      files,
		Limits:     sounds.Limits{MaxSize: maxUpload},
	}
	mgr := sounds.NewManager(deps)
	cats := sounds.NewCategoryService(deps)

	ctx := context.Background()
	a, err := db.Categories.Create(ctx, &models.Category{Name: "Animals", Slug: "animals"})
	require.NoError(t, err)
	b, err := db.Categories.Create(ctx, &models.Category{Name: "Vehicles", Slug: "vehicles"})
	require.NoError(t, err)

	public := NewPublic(mgr, cats, nil)
	admin := NewAdmin(mgr, cats, maxUpload)
	assets := NewAssets(files)

	r := chi.NewRouter()
	r.Get("/api/categories", public.Categories)
	r.Get("/api/categories/{slug}/sounds", public.CategorySounds)
	r.Get("/api/sounds", public.SoundsByIDs)
	r.Get("/api/sounds/{slug}", public.Sound)
	r.Get("/storage/*", assets.Serve)
	r.Get("/admin/stats", admin.Stats)
	r.Post("/admin/sounds", admin.CreateSound)
	r.Post("/admin/sounds/bulk", admin.BulkCreateSounds)
	r.Get("/admin/sounds/{id}", admin.GetSound)
	r.Put("/admin/sounds/{id}", admin.UpdateSound)
	r.Delete("/admin/sounds/{id}", admin.DeleteSound)
	r.Get("/admin/categories", admin.ListCategories)
	r.Post("/admin/categories", admin.CreateCategory)
	r.Put("/admin/categories/{id}", admin.UpdateCategory)
	r.Delete("/admin/categories/{id}", admin.DeleteCategory)
	r.Put("/admin/categories/{id}/order", admin.ReorderCategory)

	return &testEnv{db: db, files: files, mgr: mgr, cats: cats, mux: r, catID: a.ID, otherID: b.ID}
}

// formFile is one file part of a multipart request.
type formFile struct {
	field, name, contentType string
	data                     []byte
}

// multipartBody encodes fields and files as multipart/form-data.
func multipartBody(t *testing.T, fields map[string]string, files ...formFile) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.name+`"`)
		if f.contentType != "" {
			h.Set("Content-Type", f.contentType)
		}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (e *testEnv) do(t *testing.T, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	e.mux.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) doJSON(t *testing.T, method, target string, v any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return e.do(t, method, target, bytes.NewReader(data), "application/json")
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func (e *testEnv) seedSound(t *testing.T, name string, categoryID int64) *models.Sound {
	t.Helper()
	data := []byte("sound:" + name)
	snd, err := e.mgr.Create(context.Background(), sounds.Upload{
		Filename: name + ".mp3",
		Size:     int64(len(data)),
		Body:     bytes.NewReader(data),
	}, sounds.CreateInput{Name: name, CategoryID: categoryID})
	require.NoError(t, err)
	return snd
}
