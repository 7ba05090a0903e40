package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"voicepad/internal/logger"
	"voicepad/internal/storage"
)

// Assets serves stored sound files for the drivers that have no public
// endpoint of their own (local and memory).
type Assets struct {
	files storage.Store
}

// NewAssets creates the asset handler.
func NewAssets(files storage.Store) *Assets {
	return &Assets{files: files}
}

// Serve handles GET /storage/*. Seekable backends get Range support.
func (a *Assets) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if err := storage.ValidateKey(key); err != nil {
		writeError(w, "not found", http.StatusNotFound)
		return
	}

	rc, err := a.files.Open(r.Context(), key)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error("open stored file", zap.String("key", key), zap.Error(err))
		writeError(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}
	defer rc.Close()

	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")

	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, path.Base(key), time.Time{}, rs)
		return
	}
	if _, err := io.Copy(w, rc); err != nil {
		logger.Debug("copy stored file", zap.String("key", key), zap.Error(err))
	}
}
