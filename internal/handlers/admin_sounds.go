package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"voicepad/internal/logger"
	"voicepad/internal/sounds"
)

const (
	// multipartMemory is how much of a multipart body is kept in memory;
	// the rest spills to temporary files.
	multipartMemory = 32 << 20

	// formOverhead is allowed on top of the file bytes for headers and
	// text fields.
	formOverhead = 1 << 20

	// maxBulkFiles caps the number of files in one bulk upload.
	maxBulkFiles = 50
)

// GetSound returns one sound with its stored metadata.
func (a *Admin) GetSound(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	snd, err := a.sounds.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": newAdminSound(snd, a.sounds.URL)})
}

// CreateSound handles POST /admin/sounds with multipart fields file, name,
// category_id and the optional description and slug.
func (a *Admin) CreateSound(w http.ResponseWriter, r *http.Request) {
	if !a.parseMultipart(w, r, 1) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	categoryID, ok := formID(w, r, "category_id")
	if !ok {
		return
	}
	up, closeFile, ok := formUpload(w, r, "file")
	if !ok {
		return
	}
	defer closeFile()

	in := sounds.CreateInput{
		Name:        r.FormValue("name"),
		CategoryID:  categoryID,
		Description: formPtr(r, "description"),
		Slug:        strings.TrimSpace(r.FormValue("slug")),
	}
	snd, err := a.sounds.Create(r.Context(), up, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"data": newAdminSound(snd, a.sounds.URL)})
}

// BulkCreateSounds handles POST /admin/sounds/bulk with files[] and
// category_id. Names come from the file names. The batch is all or
// nothing.
func (a *Admin) BulkCreateSounds(w http.ResponseWriter, r *http.Request) {
	if !a.parseMultipart(w, r, maxBulkFiles) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	categoryID, ok := formID(w, r, "category_id")
	if !ok {
		return
	}
	headers := r.MultipartForm.File["files[]"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["files"]
	}
	if len(headers) > maxBulkFiles {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "too many files (max " + strconv.Itoa(maxBulkFiles) + ")",
			"field": "files",
		})
		return
	}

	uploads := make([]sounds.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeError(w, "failed to read "+fh.Filename, http.StatusBadRequest)
			return
		}
		defer f.Close()
		uploads = append(uploads, uploadFrom(fh, f))
	}

	res, err := a.sounds.BulkCreate(r.Context(), uploads, categoryID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if res.NothingToUpload {
		writeJSON(w, http.StatusOK, map[string]any{"count": 0, "message": "nothing to upload", "data": []adminSound{}})
		return
	}
	out := make([]adminSound, 0, len(res.Sounds))
	for _, snd := range res.Sounds {
		out = append(out, newAdminSound(snd, a.sounds.URL))
	}
	writeJSON(w, http.StatusCreated, map[string]any{"count": res.Count, "data": out})
}

// UpdateSound handles PUT /admin/sounds/{id}. Every field is optional;
// a file replaces the stored one.
func (a *Admin) UpdateSound(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if isMultipart(r) {
		if !a.parseMultipart(w, r, 1) {
			return
		}
		defer r.MultipartForm.RemoveAll()
	} else if err := r.ParseForm(); err != nil {
		writeError(w, "invalid form body", http.StatusBadRequest)
		return
	}

	ch := sounds.SoundChanges{
		Name:        formPtr(r, "name"),
		Description: formPtr(r, "description"),
		Slug:        formPtr(r, "slug"),
	}
	if _, present := r.Form["category_id"]; present {
		cid, ok := formID(w, r, "category_id")
		if !ok {
			return
		}
		ch.CategoryID = &cid
	}

	var up *sounds.Upload
	if r.MultipartForm != nil && len(r.MultipartForm.File["file"]) > 0 {
		u, closeFile, ok := formUpload(w, r, "file")
		if !ok {
			return
		}
		defer closeFile()
		up = &u
	}

	snd, err := a.sounds.Replace(r.Context(), id, up, ch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": newAdminSound(snd, a.sounds.URL)})
}

// DeleteSound handles DELETE /admin/sounds/{id}.
func (a *Admin) DeleteSound(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	deleted, err := a.sounds.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !deleted {
		writeError(w, "sound not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseMultipart limits the body to files uploads plus overhead and parses
// it, writing 413 or 400 on failure.
func (a *Admin) parseMultipart(w http.ResponseWriter, r *http.Request, files int64) bool {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUpload*files+formOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{
				"error": "file: may not be greater than " + strconv.FormatInt(a.maxUpload>>20, 10) + " MB",
				"field": "file",
			})
			return false
		}
		logger.Debug("invalid multipart form", zap.Error(err))
		writeError(w, "invalid multipart form", http.StatusBadRequest)
		return false
	}
	return true
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/")
}

// formUpload opens the named file field. A missing file is a 400.
func formUpload(w http.ResponseWriter, r *http.Request, field string) (sounds.Upload, func(), bool) {
	f, fh, err := r.FormFile(field)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": field + ": a sound file is required",
			"field": field,
		})
		return sounds.Upload{}, nil, false
	}
	return uploadFrom(fh, f), func() { f.Close() }, true
}

func uploadFrom(fh *multipart.FileHeader, f multipart.File) sounds.Upload {
	return sounds.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}
}

// formID parses a positive integer form field, writing a 400 otherwise.
func formID(w http.ResponseWriter, r *http.Request, field string) (int64, bool) {
	raw := strings.TrimSpace(r.FormValue(field))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		msg := field + ": must be a valid id"
		if raw == "" {
			msg = field + ": is required"
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": msg, "field": field})
		return 0, false
	}
	return id, true
}

// formPtr returns the field value when the field was sent at all.
func formPtr(r *http.Request, field string) *string {
	if _, ok := r.Form[field]; !ok {
		return nil
	}
	v := r.Form.Get(field)
	return &v
}
