// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage persists sound files under opaque keys and turns keys into
// public URLs. Backends: local filesystem, S3-compatible (AWS SDK), MinIO,
// and an in-memory store for tests.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotFound is returned by Open when the key does not exist.
var ErrNotFound = errors.New("storage: object not found")

// Store is a key/value blob store with public URLs.
type Store interface {
	// Put writes body under key, replacing any existing object.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	// Delete removes key. Deleting a missing key succeeds.
	Delete(ctx context.Context, key string) error
	// URL returns the public URL for key. It performs no I/O.
	URL(key string) string
	// Open returns a reader for key, or ErrNotFound.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// List returns every key with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// ValidateKey rejects keys that could escape the storage root or that no
// backend accepts.
func ValidateKey(key string) error {
	switch {
	case key == "":
		return fmt.Errorf("storage: empty key")
	case strings.HasPrefix(key, "/"):
		return fmt.Errorf("storage: absolute key %q", key)
	case strings.Contains(key, "\\"):
		return fmt.Errorf("storage: backslash in key %q", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("storage: invalid key %q", key)
		}
	}
	return nil
}

// joinURL appends key to base with exactly one slash between them.
func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
