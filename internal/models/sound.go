// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Sound is an audio clip belonging to exactly one category. The file itself
// lives in the asset store under FilePath; this row holds its metadata.
type Sound struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	FilePath    string    `json:"file_path"`
	FileName    string    `json:"file_name"`
	MimeType    string    `json:"mime_type"`
	FileSize    int64     `json:"file_size"`
	Duration    *float64  `json:"duration"`
	CategoryID  int64     `json:"category_id"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FormattedDuration renders the duration as MM:SS. Minutes are not wrapped
// at the hour. Unknown or zero durations render as "00:00".
func (s *Sound) FormattedDuration() string {
	if s.Duration == nil || *s.Duration <= 0 {
		return "00:00"
	}
	total := int64(*s.Duration)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// HumanSize returns a human-readable file size string.
func (s *Sound) HumanSize() string {
	return HumanBytes(s.FileSize)
}

// HumanBytes formats a byte count using B, KB, MB or GB, rounded to two
// decimals with trailing zeros dropped ("1.5 KB", "3 MB").
func HumanBytes(n int64) string {
	units := []string{"B", "KB", "MB", "GB"}
	size := float64(n)
	unit := 0
	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}
	rounded := math.Round(size*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + units[unit]
}

// SoundStats are library-wide totals shown on the admin dashboard.
type SoundStats struct {
	TotalSounds     int64   `json:"total_sounds"`
	TotalCategories int64   `json:"total_categories"`
	TotalDuration   float64 `json:"total_duration"`
	TotalBytes      int64   `json:"total_bytes"`
}

// FormattedTotalDuration renders the summed duration as HH:MM:SS.
func (s SoundStats) FormattedTotalDuration() string {
	total := int64(s.TotalDuration)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// FormattedTotalSize returns the summed file size in human-readable form.
func (s SoundStats) FormattedTotalSize() string {
	return HumanBytes(s.TotalBytes)
}
