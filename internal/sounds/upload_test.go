package sounds

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUploadMimeType(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"", "audio/mpeg"},
		{"application/octet-stream", "audio/mpeg"},
		{"audio/wav", "audio/wav"},
		{"Audio/MP4; codecs=mp4a", "audio/mp4"},
		{"video/mp4", "video/mp4"},
		{"text/plain", "audio/mpeg"},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, Upload{ContentType: tt.contentType}.mimeType())
		})
	}
}

func TestValidateUpload(t *testing.T) {
	body := bytes.NewReader([]byte("x"))
	tests := []struct {
		name    string
		limits  Limits
		up      Upload
		wantErr bool
	}{
		{name: "mp3", up: Upload{Filename: "a.mp3", Size: 1, Body: body}},
		{name: "upper-case extension", up: Upload{Filename: "a.WAV", Size: 1, Body: body}},
		{name: "mp4", up: Upload{Filename: "a.mp4", Size: 1, Body: body}},
		{name: "no extension, audio mime", up: Upload{Filename: "blob", ContentType: "audio/mpeg", Size: 1, Body: body}},
		{name: "no extension, other mime", up: Upload{Filename: "blob", ContentType: "text/plain", Size: 1, Body: body}, wantErr: true},
		{name: "flac", up: Upload{Filename: "a.flac", Size: 1, Body: body}, wantErr: true},
		{name: "exactly at limit", up: Upload{Filename: "a.mp3", Size: DefaultMaxUploadSize, Body: body}},
		{name: "custom limit", limits: Limits{MaxSize: 1024}, up: Upload{Filename: "a.mp3", Size: 1025, Body: body}, wantErr: true},
		{name: "blank filename", up: Upload{Filename: " ", Size: 1, Body: body}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.limits.validateUpload(tt.up)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestHumanLimit(t *testing.T) {
	assert.Equal(t, "10 MB", humanLimit(10<<20))
	assert.Equal(t, "1 KB", humanLimit(1024))
}

func TestValidationErrorMessage(t *testing.T) {
	err := Limits{MaxSize: 2 << 20}.validateUpload(Upload{Filename: "a.mp3", Size: 3 << 20, Body: bytes.NewReader(nil)})
	assert.EqualError(t, err, "file: may not be greater than 2 MB")
}
