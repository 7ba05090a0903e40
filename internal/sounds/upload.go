package sounds

import (
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultMaxUploadSize is the per-file limit when Limits.MaxSize is zero.
const DefaultMaxUploadSize int64 = 10 << 20

const (
	maxNameLen        = 255
	maxDescriptionLen = 1000
	defaultMimeType   = "audio/mpeg"
)

// allowedExtensions are the accepted file extensions (lower case, no dot).
var allowedExtensions = map[string]bool{
	"mp3": true,
	"mp4": true,
	"wav": true,
}

// allowedMimeTypes are accepted when the file name has no extension.
var allowedMimeTypes = map[string]bool{
	"audio/mpeg":  true,
	"audio/mp3":   true,
	"audio/mp4":   true,
	"video/mp4":   true,
	"audio/wav":   true,
	"audio/x-wav": true,
	"audio/wave":  true,
}

// Upload is one received file. Body must be rewindable: it is read once to
// store the file and again to measure its duration.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

// mimeType returns the declared MIME type without parameters when it is an
// audio type (or video/mp4), otherwise the default.
func (u Upload) mimeType() string {
	mt := baseMime(u.ContentType)
	if strings.HasPrefix(mt, "audio/") || mt == "video/mp4" {
		return mt
	}
	return defaultMimeType
}

// baseMime strips parameters and lower-cases a Content-Type value.
func baseMime(contentType string) string {
	return strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
}

// Limits bounds accepted uploads.
type Limits struct {
	MaxSize int64
}

func (l Limits) maxSize() int64 {
	if l.MaxSize <= 0 {
		return DefaultMaxUploadSize
	}
	return l.MaxSize
}

// validateUpload checks an upload before anything is written.
func (l Limits) validateUpload(u Upload) error {
	if u.Body == nil || strings.TrimSpace(u.Filename) == "" {
		return invalid("file", "a sound file is required")
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(u.Filename), "."))
	switch {
	case ext != "" && !allowedExtensions[ext]:
		return invalid("file", "must be a file of type: mp3, mp4, wav")
	case ext == "" && !allowedMimeTypes[baseMime(u.ContentType)]:
		return invalid("file", "must be a file of type: mp3, mp4, wav")
	}
	if u.Size <= 0 {
		return invalid("file", "the file is empty")
	}
	if limit := l.maxSize(); u.Size > limit {
		return &ValidationError{
			Field:    "file",
			Message:  "may not be greater than " + humanLimit(limit),
			TooLarge: true,
		}
	}
	return nil
}

func humanLimit(n int64) string {
	if n%(1<<20) == 0 {
		return strconv.FormatInt(n>>20, 10) + " MB"
	}
	return strconv.FormatInt(n>>10, 10) + " KB"
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("name", "the name field is required")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return invalid("name", "may not be greater than %d characters", maxNameLen)
	}
	return nil
}

func validateDescription(desc *string) error {
	if desc != nil && utf8.RuneCountInString(*desc) > maxDescriptionLen {
		return invalid("description", "may not be greater than %d characters", maxDescriptionLen)
	}
	return nil
}

// normalizeDescription maps blank descriptions to NULL.
func normalizeDescription(desc *string) *string {
	if desc == nil || strings.TrimSpace(*desc) == "" {
		return nil
	}
	d := strings.TrimSpace(*desc)
	return &d
}
