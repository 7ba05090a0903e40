package sounds

import (
	"crypto/rand"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"voicepad/internal/slug"
)

// KeyPrefix is the storage directory every sound file is written under.
const KeyPrefix = "sounds/"

const (
	randomLen      = 6
	randomAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	fallbackBase   = "sound"
)

// GenerateFilename returns "{slug}_{unix}_{random6}.{ext}" for an uploaded
// file name uploaded at now. The extension keeps its case; a name without
// one gets no dot.
func GenerateFilename(original string, now time.Time) string {
	return buildFilename(original, now, randomString(randomLen))
}

func buildFilename(original string, now time.Time, random string) string {
	ext := filepath.Ext(original)
	base := slug.Generate(strings.TrimSuffix(original, ext))
	if base == "" {
		base = fallbackBase
	}
	name := fmt.Sprintf("%s_%d_%s", base, now.Unix(), random)
	if ext = strings.TrimPrefix(ext, "."); ext != "" {
		name += "." + ext
	}
	return name
}

// StorageKey returns the full key for a generated file name.
func StorageKey(filename string) string {
	return KeyPrefix + filename
}

// keyTime extracts the unix timestamp embedded by GenerateFilename.
func keyTime(key string) (time.Time, bool) {
	name := strings.TrimPrefix(key, KeyPrefix)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.Split(name, "_")
	if len(parts) < 3 {
		return time.Time{}, false
	}
	secs, err := strconv.ParseInt(parts[len(parts)-2], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(secs, 0), true
}

// randomString draws n characters from [A-Za-z0-9] using crypto/rand with
// rejection sampling, so every character is equally likely.
func randomString(n int) string {
	const limit = 256 - 256%len(randomAlphabet)
	out := make([]byte, 0, n)
	buf := make([]byte, n*2)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			panic(fmt.Sprintf("crypto/rand: %v", err))
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, randomAlphabet[int(b)%len(randomAlphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out)
}

// NameFromFilename derives a display name from an uploaded file name: the
// extension is dropped, the first letter upper-cased, and the rest split
// before every upper-case letter ("dogBark.mp3" → "Dog Bark").
func NameFromFilename(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	runes := []rune(base)
	if len(runes) == 0 {
		return ""
	}
	runes[0] = unicode.ToUpper(runes[0])

	var words []string
	start := 0
	for i := 1; i < len(runes); i++ {
		if unicode.IsUpper(runes[i]) {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	words = append(words, string(runes[start:]))
	return strings.Join(words, " ")
}
