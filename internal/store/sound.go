// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"voicepad/internal/models"
)

// SoundStore handles all sound-related database operations.
type SoundStore struct {
	db *sql.DB
}

// NewSoundStore creates a new SoundStore with the given database connection.
func NewSoundStore(db *sql.DB) *SoundStore {
	return &SoundStore{db: db}
}

// soundColumns lists the columns selected in sound queries.
const soundColumns = `id, name, slug, description, file_path, file_name, mime_type,
	file_size, duration, category_id, sort_order, created_at, updated_at`

// scanSound scans a sound row from the result set.
func scanSound(scanner interface{ Scan(...any) error }) (*models.Sound, error) {
	var s models.Sound
	err := scanner.Scan(
		&s.ID, &s.Name, &s.Slug, &s.Description, &s.FilePath, &s.FileName, &s.MimeType,
		&s.FileSize, &s.Duration, &s.CategoryID, &s.SortOrder, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// scanSounds drains rows into a slice.
func scanSounds(rows *sql.Rows) ([]models.Sound, error) {
	defer rows.Close()
	var items []models.Sound
	for rows.Next() {
		s, err := scanSound(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sound: %w", err)
		}
		items = append(items, *s)
	}
	return items, rows.Err()
}

// Create inserts a new sound and returns it with the generated ID.
func (s *SoundStore) Create(ctx context.Context, snd *models.Sound) (*models.Sound, error) {
	row := conn(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO sounds (name, slug, description, file_path, file_name, mime_type,
			file_size, duration, category_id, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+soundColumns,
		snd.Name, snd.Slug, snd.Description, snd.FilePath, snd.FileName, snd.MimeType,
		snd.FileSize, snd.Duration, snd.CategoryID, snd.SortOrder,
	)
	created, err := scanSound(row)
	if err != nil {
		return nil, fmt.Errorf("create sound: %w", mapErr(err))
	}
	return created, nil
}

// Update writes every mutable column of snd.
func (s *SoundStore) Update(ctx context.Context, snd *models.Sound) error {
	_, err := conn(ctx, s.db).ExecContext(ctx, `
		UPDATE sounds SET
			name = $1, slug = $2, description = $3, file_path = $4, file_name = $5,
			mime_type = $6, file_size = $7, duration = $8, category_id = $9,
			sort_order = $10, updated_at = NOW()
		WHERE id = $11
	`, snd.Name, snd.Slug, snd.Description, snd.FilePath, snd.FileName,
		snd.MimeType, snd.FileSize, snd.Duration, snd.CategoryID,
		snd.SortOrder, snd.ID)
	if err != nil {
		return fmt.Errorf("update sound: %w", mapErr(err))
	}
	return nil
}

// Delete removes a sound record by ID.
func (s *SoundStore) Delete(ctx context.Context, id int64) error {
	_, err := conn(ctx, s.db).ExecContext(ctx, `DELETE FROM sounds WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sound: %w", err)
	}
	return nil
}

// FindByID retrieves a single sound by ID. Returns nil if not found.
func (s *SoundStore) FindByID(ctx context.Context, id int64) (*models.Sound, error) {
	row := conn(ctx, s.db).QueryRowContext(ctx, `SELECT `+soundColumns+` FROM sounds WHERE id = $1`, id)
	snd, err := scanSound(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find sound by id: %w", err)
	}
	return snd, nil
}

// FindBySlug retrieves a single sound by slug. Returns nil if not found.
func (s *SoundStore) FindBySlug(ctx context.Context, slug string) (*models.Sound, error) {
	row := conn(ctx, s.db).QueryRowContext(ctx, `SELECT `+soundColumns+` FROM sounds WHERE slug = $1`, slug)
	snd, err := scanSound(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find sound by slug: %w", err)
	}
	return snd, nil
}

// FindByIDs returns the sounds whose IDs are in ids, in display order.
// Unknown IDs are skipped.
func (s *SoundStore) FindByIDs(ctx context.Context, ids []int64) ([]models.Sound, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := conn(ctx, s.db).QueryContext(ctx, `
		SELECT `+soundColumns+`
		FROM sounds
		WHERE id = ANY($1)
		ORDER BY category_id, sort_order, id
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("find sounds by ids: %w", err)
	}
	return scanSounds(rows)
}

// ListByCategory returns a category's sounds in display order.
func (s *SoundStore) ListByCategory(ctx context.Context, categoryID int64) ([]models.Sound, error) {
	rows, err := conn(ctx, s.db).QueryContext(ctx, `
		SELECT `+soundColumns+`
		FROM sounds
		WHERE category_id = $1
		ORDER BY sort_order, id
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list sounds by category: %w", err)
	}
	return scanSounds(rows)
}

// NextSortOrder returns max(sort_order)+1 within the category, or 1 when
// the category has no sounds.
func (s *SoundStore) NextSortOrder(ctx context.Context, categoryID int64) (int, error) {
	var maxOrder sql.NullInt64
	err := conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT MAX(sort_order) FROM sounds WHERE category_id = $1`, categoryID,
	).Scan(&maxOrder)
	if err != nil {
		return 0, fmt.Errorf("next sort order: %w", err)
	}
	if maxOrder.Valid {
		return int(maxOrder.Int64) + 1, nil
	}
	return 1, nil
}

// SlugExists reports whether another sound (not exceptID) uses slug.
func (s *SoundStore) SlugExists(ctx context.Context, slug string, exceptID int64) (bool, error) {
	var exists bool
	err := conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM sounds WHERE slug = $1 AND id <> $2)`, slug, exceptID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check sound slug: %w", err)
	}
	return exists, nil
}

// SetSortOrder updates one sound's sort_order.
func (s *SoundStore) SetSortOrder(ctx context.Context, id int64, order int) error {
	_, err := conn(ctx, s.db).ExecContext(ctx,
		`UPDATE sounds SET sort_order = $1, updated_at = NOW() WHERE id = $2`, order, id)
	if err != nil {
		return fmt.Errorf("set sort order %d: %w", id, err)
	}
	return nil
}

// FilePaths returns every stored file_path, optionally limited to one
// category (categoryID > 0).
func (s *SoundStore) FilePaths(ctx context.Context, categoryID int64) ([]string, error) {
	query := `SELECT file_path FROM sounds`
	var args []any
	if categoryID > 0 {
		query += ` WHERE category_id = $1`
		args = append(args, categoryID)
	}
	rows, err := conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list file paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan file path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Stats returns library-wide totals.
func (s *SoundStore) Stats(ctx context.Context) (models.SoundStats, error) {
	var st models.SoundStats
	err := conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM sounds),
			(SELECT COUNT(*) FROM categories),
			(SELECT COALESCE(SUM(duration), 0) FROM sounds),
			(SELECT COALESCE(SUM(file_size), 0)::BIGINT FROM sounds)
	`).Scan(&st.TotalSounds, &st.TotalCategories, &st.TotalDuration, &st.TotalBytes)
	if err != nil {
		return st, fmt.Errorf("sound stats: %w", err)
	}
	return st, nil
}
