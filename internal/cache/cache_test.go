// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, catalogKeyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client, err := ConnectValkey(context.Background(), host, port, os.Getenv("VALKEY_PASSWORD"))
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	pong, err := client.Ping(context.Background()).Result()
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if pong != "PONG" {
		t.Errorf("expected PONG, got %q", pong)
	}
}

func TestCatalogSetAndGet(t *testing.T) {
	c := NewCatalog(testValkeyClient(t), time.Minute)
	ctx := context.Background()

	// Miss.
	data, ok := c.Get(ctx, CategoriesKey())
	if ok || data != nil {
		t.Fatal("expected cache miss")
	}

	body := []byte(`{"data":[]}`)
	c.Set(ctx, CategoriesKey(), body)

	data, ok = c.Get(ctx, CategoriesKey())
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(data) != string(body) {
		t.Errorf("data mismatch: got %q, want %q", data, body)
	}
}

func TestCatalogInvalidateAll(t *testing.T) {
	c := NewCatalog(testValkeyClient(t), time.Minute)
	ctx := context.Background()

	keys := []string{CategoriesKey(), CategorySoundsKey("animals"), SoundKey("bark")}
	for _, k := range keys {
		c.Set(ctx, k, []byte("x"))
	}

	c.InvalidateAll(ctx)

	for _, k := range keys {
		if _, ok := c.Get(ctx, k); ok {
			t.Errorf("expected miss for %q after InvalidateAll", k)
		}
	}
}

func TestNilCatalogIsNoop(t *testing.T) {
	var c *Catalog
	ctx := context.Background()
	c.Set(ctx, "k", []byte("v"))
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("nil catalog must never hit")
	}
	c.InvalidateAll(ctx)
}

func TestKeys(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{CategoriesKey(), "categories"},
		{CategorySoundsKey("animals"), "categories:animals:sounds"},
		{SoundKey("dog-bark"), "sounds:dog-bark"},
		{SoundsByIDsKey([]int64{3, 1, 2, 3}), "sounds:ids:1,2,3"},
		{SoundsByIDsKey(nil), "sounds:ids:"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestNewCatalogDefaultTTL(t *testing.T) {
	c := NewCatalog(nil, 0)
	if c.ttl != DefaultCatalogTTL {
		t.Errorf("expected DefaultCatalogTTL (%v), got %v", DefaultCatalogTTL, c.ttl)
	}
}
