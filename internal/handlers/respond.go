package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"voicepad/internal/logger"
	"voicepad/internal/middleware"
	"voicepad/internal/sounds"
)

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encode response", zap.Error(err))
	}
}

// writeRaw writes an already encoded JSON body, e.g. from the cache.
func writeRaw(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(body)
}

// writeError writes a {"error": msg} JSON body.
func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps errors from the sounds package to HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	body := map[string]any{"error": err.Error()}
	var (
		ve *sounds.ValidationError
		be *sounds.BulkError
	)
	if errors.As(err, &be) {
		body["file"] = be.Filename
		body["index"] = be.Index
	}

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &ve):
		status = http.StatusBadRequest
		if ve.TooLarge {
			status = http.StatusRequestEntityTooLarge
		}
		body["field"] = ve.Field
	case errors.Is(err, sounds.ErrCategoryNotFound):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, sounds.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, sounds.ErrStorageWrite):
		status = http.StatusServiceUnavailable
		body["error"] = "storage unavailable"
	default:
		body["error"] = "internal server error"
	}

	if status >= 500 {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.RequestIDFromCtx(r.Context())),
			zap.Error(err))
	}
	writeJSON(w, status, body)
}
