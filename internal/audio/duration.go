// Package audio reads playback duration from uploaded sound files.
// Extraction never fails: anything unreadable yields a nil duration.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/tcolgate/mp3"
	"go.uber.org/zap"

	"voicepad/internal/logger"
)

// Format is a container format the extractor can recognise.
type Format int

const (
	Unknown Format = iota
	MP3
	WAV
	MP4
)

func (f Format) String() string {
	switch f {
	case MP3:
		return "mp3"
	case WAV:
		return "wav"
	case MP4:
		return "mp4"
	}
	return "unknown"
}

// Detect sniffs the first bytes of r, then falls back to the extension and
// declared MIME type. r is rewound before returning.
func Detect(r io.ReadSeeker, filename, mimeType string) Format {
	head := make([]byte, 12)
	n, _ := io.ReadFull(r, head)
	r.Seek(0, io.SeekStart)
	head = head[:n]

	switch {
	case len(head) >= 12 && bytes.Equal(head[0:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WAVE")):
		return WAV
	case len(head) >= 3 && bytes.Equal(head[0:3], []byte("ID3")):
		return MP3
	case len(head) >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		return MP3
	case len(head) >= 8 && bytes.Equal(head[4:8], []byte("ftyp")):
		return MP4
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp3":
		return MP3
	case ".wav":
		return WAV
	case ".mp4", ".m4a":
		return MP4
	}
	switch strings.ToLower(mimeType) {
	case "audio/mpeg", "audio/mp3":
		return MP3
	case "audio/wav", "audio/x-wav", "audio/wave":
		return WAV
	case "audio/mp4", "video/mp4":
		return MP4
	}
	return Unknown
}

// Duration returns the length of the audio in seconds, or nil when the
// format is unsupported or the file cannot be parsed. Decoder panics are
// recovered. r is left at an unspecified offset.
func Duration(r io.ReadSeeker, filename, mimeType string) (seconds *float64) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Debug("duration extraction panicked",
				zap.String("file", filename), zap.Any("panic", rec))
			seconds = nil
		}
	}()

	format := Detect(r, filename, mimeType)
	var (
		d   float64
		err error
	)
	switch format {
	case MP3:
		d, err = mp3Duration(r)
	case WAV:
		d, err = wavDuration(r)
	default:
		err = fmt.Errorf("no decoder for %s", format)
	}
	if err == nil && d <= 0 {
		err = errors.New("zero duration")
	}
	if err != nil {
		logger.Debug("duration unavailable",
			zap.String("file", filename), zap.Stringer("format", format), zap.Error(err))
		return nil
	}
	return &d
}

// mp3Duration walks every frame and sums their durations.
func mp3Duration(r io.Reader) (float64, error) {
	dec := mp3.NewDecoder(r)
	var (
		frame   mp3.Frame
		skipped int
		total   float64
		frames  int
	)
	for {
		if err := dec.Decode(&frame, &skipped); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			if frames > 0 {
				// Trailing garbage after valid frames: keep what was read.
				break
			}
			return 0, fmt.Errorf("decode mp3 frame: %w", err)
		}
		total += frame.Duration().Seconds()
		frames++
	}
	if frames == 0 {
		return 0, errors.New("no mp3 frames")
	}
	return total, nil
}

// wavDuration divides the PCM chunk size by the byte rate.
func wavDuration(r io.ReadSeeker) (float64, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return 0, errors.New("invalid wav header")
	}
	if err := dec.FwdToPCM(); err != nil {
		return 0, fmt.Errorf("find wav data: %w", err)
	}
	if dec.PCMSize > 0 && dec.AvgBytesPerSec > 0 {
		return float64(dec.PCMSize) / float64(dec.AvgBytesPerSec), nil
	}
	d, err := dec.Duration()
	if err != nil {
		return 0, fmt.Errorf("wav duration: %w", err)
	}
	return d.Seconds(), nil
}
