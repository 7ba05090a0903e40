package handlers

import (
	"voicepad/internal/models"
)

// categoryRef is the category summary embedded in a sound resource.
type categoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// soundResource is the public JSON shape of a sound. Size and length are
// display strings.
type soundResource struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Description *string      `json:"description"`
	URL         string       `json:"url"`
	Size        string       `json:"size"`
	Length      string       `json:"length"`
	Category    *categoryRef `json:"category,omitempty"`
}

// adminSound adds the stored metadata admins need.
type adminSound struct {
	soundResource
	FilePath   string   `json:"file_path"`
	FileName   string   `json:"file_name"`
	MimeType   string   `json:"mime_type"`
	FileSize   int64    `json:"file_size"`
	Duration   *float64 `json:"duration"`
	CategoryID int64    `json:"category_id"`
	SortOrder  int      `json:"sort_order"`
}

// categoryResource is the public JSON shape of a category.
type categoryResource struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	SoundsCount int     `json:"sounds_count"`
}

type urlFunc func(*models.Sound) string

func newSoundResource(s *models.Sound, url urlFunc, cat *models.Category) soundResource {
	res := soundResource{
		ID:          s.ID,
		Name:        s.Name,
		Slug:        s.Slug,
		Description: s.Description,
		URL:         url(s),
		Size:        s.HumanSize(),
		Length:      s.FormattedDuration(),
	}
	if cat != nil {
		res.Category = &categoryRef{ID: cat.ID, Name: cat.Name, Slug: cat.Slug}
	}
	return res
}

func newAdminSound(s *models.Sound, url urlFunc) adminSound {
	return adminSound{
		soundResource: newSoundResource(s, url, nil),
		FilePath:      s.FilePath,
		FileName:      s.FileName,
		MimeType:      s.MimeType,
		FileSize:      s.FileSize,
		Duration:      s.Duration,
		CategoryID:    s.CategoryID,
		SortOrder:     s.SortOrder,
	}
}

func newCategoryResource(c *models.Category) categoryResource {
	return categoryResource{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		SoundsCount: c.SoundCount,
	}
}
