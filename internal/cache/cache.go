package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

const (
	CategoriesKey = "categories:all"
	CategoriesTTL = time.Hour
)

// Store is the key/value surface the services depend on.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// GetJSON decodes a cached value into dst and reports a hit.
// Cache failures are logged and reported as misses.
func GetJSON(ctx context.Context, s Store, key string, dst any) bool {
	if s == nil {
		return false
	}
	data, err := s.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		return false
	}
	if data == "" {
		return false
	}
	if err := json.Unmarshal([]byte(data), dst); err != nil {
		slog.WarnContext(ctx, "cache entry undecodable", "key", key, "error", err)
		return false
	}
	return true
}

// SetJSON stores value as JSON, logging failures.
func SetJSON(ctx context.Context, s Store, key string, value any, ttl time.Duration) {
	if s == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		slog.WarnContext(ctx, "cache encode failed", "key", key, "error", err)
		return
	}
	if err := s.Set(ctx, key, data, ttl); err != nil {
		slog.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
}

// Invalidate deletes keys, logging failures.
func Invalidate(ctx context.Context, s Store, keys ...string) {
	if s == nil {
		return
	}
	if err := s.Delete(ctx, keys...); err != nil {
		slog.WarnContext(ctx, "cache invalidation failed", "keys", keys, "error", err)
	}
}
