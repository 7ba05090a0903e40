package database

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"voicepad/internal/logger"
	"voicepad/internal/slug"
)

// SeedCategory is one default category created by Seed.
type SeedCategory struct {
	Name        string
	Description string
}

// DefaultCategories is the starter catalog for a fresh install.
var DefaultCategories = []SeedCategory{
	{Name: "Nature Sounds", Description: "Sounds from nature including birds, water, wind, and forest ambience."},
	{Name: "Musical Instruments", Description: "Various musical instrument samples and loops."},
	{Name: "Voice Effects", Description: "Voice samples, speech effects, and vocal sounds."},
	{Name: "Electronic", Description: "Electronic music samples, synthesized sounds, and digital effects."},
	{Name: "Percussion", Description: "Drum samples, percussion instruments, and rhythm loops."},
	{Name: "Ambient", Description: "Atmospheric sounds, drones, and ambient textures."},
	{Name: "Sound Effects", Description: "General sound effects for multimedia production."},
}

// Seed inserts the default categories. Categories are matched by name, so
// running it again, or after an admin renamed a slug, inserts nothing new.
func Seed(ctx context.Context, db *sql.DB) error {
	var inserted int
	for _, c := range DefaultCategories {
		var exists bool
		if err := db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM categories WHERE name = $1)`, c.Name,
		).Scan(&exists); err != nil {
			return fmt.Errorf("seed check category %q: %w", c.Name, err)
		}
		if exists {
			continue
		}

		_, err := db.ExecContext(ctx, `
			INSERT INTO categories (name, slug, description)
			VALUES ($1, $2, $3)
			ON CONFLICT (slug) DO NOTHING
		`, c.Name, slug.Generate(c.Name), c.Description)
		if err != nil {
			return fmt.Errorf("seed insert category %q: %w", c.Name, err)
		}
		inserted++
	}

	if inserted == 0 {
		logger.Info("database already seeded, skipping")
		return nil
	}
	logger.Info("database seeded with default categories", zap.Int("inserted", inserted))
	return nil
}
