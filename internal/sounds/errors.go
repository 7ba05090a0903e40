// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package sounds

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the sound does not exist.
	ErrNotFound = errors.New("sound not found")
	// ErrCategoryNotFound means the referenced category does not exist.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrStorageWrite means the asset store rejected a file; no row was written.
	ErrStorageWrite = errors.New("storage write failed")
	// ErrPersistence means the database write failed after the file was stored.
	ErrPersistence = errors.New("persistence failed")
)

// ValidationError describes a rejected input field. Nothing has been
// written when one is returned.
type ValidationError struct {
	Field   string
	Message string
	// TooLarge marks upload size violations so HTTP can answer 413.
	TooLarge bool
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// BulkError reports which file of a batch failed. The batch was rolled back.
type BulkError struct {
	Index    int
	Filename string
	Err      error
}

func (e *BulkError) Error() string {
	return fmt.Sprintf("file %d (%s): %v", e.Index+1, e.Filename, e.Err)
}

func (e *BulkError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
