// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// catalog.go caches rendered public API responses in Valkey. Every write to
// sounds or categories clears the whole catalog, since a single upload can
// change category counts, listings and lookups at once.

package cache

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"voicepad/internal/logger"
)

const (
	// catalogKeyPrefix is the Valkey key prefix for cached responses.
	catalogKeyPrefix = "catalog:"

	// DefaultCatalogTTL is how long a cached response stays valid.
	DefaultCatalogTTL = 5 * time.Minute
)

// Catalog caches public JSON responses. A nil *Catalog is a valid cache
// that never hits, so the API runs without Valkey.
type Catalog struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalog creates a catalog cache backed by the given Valkey client.
func NewCatalog(client *redis.Client, ttl time.Duration) *Catalog {
	if ttl == 0 {
		ttl = DefaultCatalogTTL
	}
	return &Catalog{client: client, ttl: ttl}
}

// Get returns the cached body for key.
func (c *Catalog) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	val, err := c.client.Get(ctx, catalogKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logger.Warn("catalog cache get error", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	logger.Debug("catalog cache hit", zap.String("key", key))
	return val, true
}

// Set stores body under key with the configured TTL.
func (c *Catalog) Set(ctx context.Context, key string, body []byte) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, catalogKeyPrefix+key, body, c.ttl).Err(); err != nil {
		logger.Warn("catalog cache set error", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateAll removes every cached response by scanning for the prefix.
func (c *Catalog) InvalidateAll(ctx context.Context) {
	if c == nil {
		return
	}
	var cursor uint64
	var deleted int
	for {
		keys, next, err := c.client.Scan(ctx, cursor, catalogKeyPrefix+"*", 100).Result()
		if err != nil {
			logger.Warn("catalog cache scan error", zap.Error(err))
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				logger.Warn("catalog cache bulk delete error", zap.Error(err))
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		logger.Info("catalog cache cleared", zap.Int("deleted", deleted))
	}
}

// CategoriesKey is the key for the category listing.
func CategoriesKey() string {
	return "categories"
}

// CategorySoundsKey is the key for one category's sound listing.
func CategorySoundsKey(slug string) string {
	return "categories:" + slug + ":sounds"
}

// SoundKey is the key for a single sound looked up by slug.
func SoundKey(slug string) string {
	return "sounds:" + slug
}

// SoundsByIDsKey is the key for a lookup by IDs. Order and duplicates do
// not matter.
func SoundsByIDsKey(ids []int64) string {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	parts := make([]string, 0, len(sorted))
	for i, id := range sorted {
		if i > 0 && id == sorted[i-1] {
			continue
		}
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return "sounds:ids:" + strings.Join(parts, ",")
}
