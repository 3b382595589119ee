// Package cache stores finished reviews in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tilsley/assay/apps/server/internal/review"
	"github.com/tilsley/assay/pkg/api"
)

const (
	keyPrefix = "review:"

	// DefaultTTL is how long a review stays cached.
	DefaultTTL = 300 * time.Second
)

// Compile-time checks: both caches implement review.ResultCache.
var (
	_ review.ResultCache = (*RedisCache)(nil)
	_ review.ResultCache = Nop{}
)

// RedisCache implements review.ResultCache using go-redis directly.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache creates a RedisCache. A ttl of 0 uses DefaultTTL.
func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached review for key.
func (c *RedisCache) Get(ctx context.Context, key string) (*api.ReviewResult, bool, error) {
	val, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get review %q: %w", key, err)
	}
	var r api.ReviewResult
	if err := json.Unmarshal(val, &r); err != nil {
		return nil, false, fmt.Errorf("unmarshal review %q: %w", key, err)
	}
	return &r, true, nil
}

// Set stores result under key with the cache TTL.
func (c *RedisCache) Set(ctx context.Context, key string, result api.ReviewResult) error {
	result.Cached = false
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal review: %w", err)
	}
	if err := c.rdb.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("save review %q: %w", key, err)
	}
	return nil
}

// Nop is a cache that never hits. It is used when no Redis address is configured.
type Nop struct{}

// Get always misses.
func (Nop) Get(context.Context, string) (*api.ReviewResult, bool, error) { return nil, false, nil }

// Set discards the result.
func (Nop) Set(context.Context, string, api.ReviewResult) error { return nil }
