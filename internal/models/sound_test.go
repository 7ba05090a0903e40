package models

import "testing"

func floatPtr(f float64) *float64 { return &f }

// TestSoundFormattedDuration verifies MM:SS rendering, including the
// "00:00" placeholder for sounds whose duration could not be read.
func TestSoundFormattedDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration *float64
		want     string
	}{
		{name: "unknown", duration: nil, want: "00:00"},
		{name: "zero", duration: floatPtr(0), want: "00:00"},
		{name: "sub-second", duration: floatPtr(0.4), want: "00:00"},
		{name: "seconds only", duration: floatPtr(7.9), want: "00:07"},
		{name: "exact minute", duration: floatPtr(60), want: "01:00"},
		{name: "minutes and seconds", duration: floatPtr(125.2), want: "02:05"},
		{name: "over an hour", duration: floatPtr(3725), want: "62:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Sound{Duration: tt.duration}
			if got := s.FormattedDuration(); got != tt.want {
				t.Errorf("FormattedDuration() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestHumanBytes verifies the B/KB/MB/GB formatting used by the public API.
func TestHumanBytes(t *testing.T) {
	tests := []struct {
		name string
		n    int64
		want string
	}{
		{name: "zero", n: 0, want: "0 B"},
		{name: "bytes", n: 512, want: "512 B"},
		{name: "just below KB", n: 1023, want: "1023 B"},
		{name: "one KB", n: 1024, want: "1 KB"},
		{name: "fractional KB", n: 1536, want: "1.5 KB"},
		{name: "rounded to two decimals", n: 1000000, want: "976.56 KB"},
		{name: "megabytes", n: 5 * 1024 * 1024, want: "5 MB"},
		{name: "gigabytes", n: 3 * 1024 * 1024 * 1024, want: "3 GB"},
		{name: "stays in GB", n: 2048 * 1024 * 1024 * 1024, want: "2048 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HumanBytes(tt.n); got != tt.want {
				t.Errorf("HumanBytes(%d) = %q, want %q", tt.n, got, tt.want)
			}
			s := &Sound{FileSize: tt.n}
			if got := s.HumanSize(); got != tt.want {
				t.Errorf("HumanSize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSoundStatsFormatting(t *testing.T) {
	s := SoundStats{TotalDuration: 3725.9, TotalBytes: 1536}
	if got := s.FormattedTotalDuration(); got != "01:02:05" {
		t.Errorf("FormattedTotalDuration() = %q, want 01:02:05", got)
	}
	if got := s.FormattedTotalSize(); got != "1.5 KB" {
		t.Errorf("FormattedTotalSize() = %q, want 1.5 KB", got)
	}

	var empty SoundStats
	if got := empty.FormattedTotalDuration(); got != "00:00:00" {
		t.Errorf("empty FormattedTotalDuration() = %q, want 00:00:00", got)
	}
}
