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

// testValkeyClient returns a client on DB 15. Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, responseKeyPrefix+"*").Result()
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
	addr := envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379")
	client, err := ConnectValkey(addr, os.Getenv("VALKEY_PASSWORD"))
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	if pong, err := client.Ping(context.Background()).Result(); err != nil || pong != "PONG" {
		t.Errorf("Ping = %q, %v", pong, err)
	}
}

func TestResponseCacheSetGet(t *testing.T) {
	rc := NewResponseCache(testValkeyClient(t), time.Minute)
	ctx := context.Background()

	if data, ok := rc.Get(ctx, CategoryListKey()); ok || data != nil {
		t.Error("expected cache miss")
	}

	body := []byte(`{"categories":[]}`)
	rc.Set(ctx, CategoryListKey(), body)

	data, ok := rc.Get(ctx, CategoryListKey())
	if !ok || string(data) != string(body) {
		t.Errorf("Get = %q, %v", data, ok)
	}
}

func TestResponseCacheInvalidateCategories(t *testing.T) {
	rc := NewResponseCache(testValkeyClient(t), time.Minute)
	ctx := context.Background()

	rc.Set(ctx, CategoryListKey(), []byte("list"))
	rc.Set(ctx, CategorySlugKey("go"), []byte("go"))
	rc.Set(ctx, CategorySlugKey("rust"), []byte("rust"))

	rc.InvalidateCategories(ctx)

	for _, key := range []string{CategoryListKey(), CategorySlugKey("go"), CategorySlugKey("rust")} {
		if _, ok := rc.Get(ctx, key); ok {
			t.Errorf("expected miss for %q after invalidation", key)
		}
	}
}

func TestNilResponseCache(t *testing.T) {
	var rc *ResponseCache
	ctx := context.Background()

	rc.Set(ctx, CategoryListKey(), []byte("x"))
	if _, ok := rc.Get(ctx, CategoryListKey()); ok {
		t.Error("nil cache should always miss")
	}
	rc.InvalidateCategories(ctx)
}

func TestKeys(t *testing.T) {
	if CategorySlugKey("go") == CategoryListKey() {
		t.Error("slug and list keys must differ")
	}
	if got := CategorySlugKey("go"); got != "slug:go" {
		t.Errorf("CategorySlugKey = %q", got)
	}
}

func TestNewResponseCacheDefaultTTL(t *testing.T) {
	if rc := NewResponseCache(nil, 0); rc.ttl != DefaultResponseTTL {
		t.Errorf("ttl = %v, want %v", rc.ttl, DefaultResponseTTL)
	}
}
