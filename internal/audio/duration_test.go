package audio

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pcmWAV builds a canonical 44-byte-header PCM WAV file.
func pcmWAV(sampleRate, channels, bitDepth, dataBytes int) []byte {
	var b bytes.Buffer
	byteRate := sampleRate * channels * bitDepth / 8
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(36+dataBytes))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	binary.Write(&b, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&b, binary.LittleEndian, uint16(channels))
	binary.Write(&b, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&b, binary.LittleEndian, uint32(byteRate))
	binary.Write(&b, binary.LittleEndian, uint16(channels*bitDepth/8))
	binary.Write(&b, binary.LittleEndian, uint16(bitDepth))
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(dataBytes))
	b.Write(make([]byte, dataBytes))
	return b.Bytes()
}

// mp3Frames builds n MPEG-1 Layer III frames at 128 kbps / 44.1 kHz with
// no CRC and no padding. Each frame is 417 bytes and 1152 samples long.
func mp3Frames(n int) []byte {
	const frameLen = 417
	frame := make([]byte, frameLen)
	frame[0], frame[1], frame[2], frame[3] = 0xFF, 0xFB, 0x90, 0x00
	return bytes.Repeat(frame, n)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		filename string
		mime     string
		want     Format
	}{
		{name: "wav magic", data: pcmWAV(8000, 1, 8, 10), filename: "x.bin", want: WAV},
		{name: "id3 magic", data: []byte("ID3\x04\x00\x00\x00\x00\x00\x00\x00\x00"), filename: "x", want: MP3},
		{name: "frame sync", data: mp3Frames(1), filename: "x", want: MP3},
		{name: "mp4 ftyp", data: []byte("\x00\x00\x00\x18ftypmp42"), filename: "x", want: MP4},
		{name: "extension fallback", data: []byte("garbage"), filename: "a.WAV", want: WAV},
		{name: "mime fallback", data: []byte("garbage"), filename: "a", mime: "audio/mpeg", want: MP3},
		{name: "unknown", data: []byte("garbage"), filename: "a.txt", mime: "text/plain", want: Unknown},
		{name: "empty", data: nil, filename: "", want: Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bytes.NewReader(tt.data)
			assert.Equal(t, tt.want, Detect(r, tt.filename, tt.mime))
			pos, _ := r.Seek(0, 1)
			assert.Zero(t, pos, "reader must be rewound")
		})
	}
}

func TestDuration_WAV(t *testing.T) {
	// 16 kHz mono 16-bit: 32000 bytes per second; 2.5 seconds of silence.
	data := pcmWAV(16000, 1, 16, 80000)
	d := Duration(bytes.NewReader(data), "tone.wav", "audio/wav")
	require.NotNil(t, d)
	assert.InDelta(t, 2.5, *d, 0.01)
}

func TestDuration_MP3(t *testing.T) {
	data := mp3Frames(100)
	d := Duration(bytes.NewReader(data), "beep.mp3", "audio/mpeg")
	require.NotNil(t, d)
	assert.InDelta(t, 100*1152.0/44100.0, *d, 0.05)
}

func TestDuration_UnreadableIsNil(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		filename string
	}{
		{name: "text with mp3 extension", data: []byte("definitely not audio"), filename: "fake.mp3"},
		{name: "truncated wav header", data: []byte("RIFF\x00\x00\x00\x00WAVEfmt "), filename: "bad.wav"},
		{name: "mp4 unsupported", data: []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00"), filename: "clip.mp4"},
		{name: "empty file", data: nil, filename: "empty.mp3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Nil(t, Duration(bytes.NewReader(tt.data), tt.filename, ""))
			})
		})
	}
}
