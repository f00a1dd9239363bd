package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"melodia/internal/middleware"
	"melodia/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Store wraps an optional Redis client. A Store without a client reports
// every lookup as a miss and every write as a no-op.
type Store struct {
	rdb *redis.Client
}

// NewStore returns a Store backed by rdb, which may be nil.
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Client exposes the underlying Redis client (nil when disabled).
func (s *Store) Client() *redis.Client {
	if s == nil {
		return nil
	}
	return s.rdb
}

// Enabled reports whether a Redis client is configured.
func (s *Store) Enabled() bool {
	return s != nil && s.rdb != nil
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func (s *Store) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func (s *Store) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first; on a miss it calls fetch and stores the result
// with ttl. Redis failures degrade to calling fetch directly.
func Aside[T any](ctx context.Context, s *Store, resource, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var cached T
	found, err := s.GetJSON(ctx, key, &cached)
	switch {
	case err != nil:
		observability.CacheResults.WithLabelValues(resource, "error").Inc()
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	case found:
		observability.CacheResults.WithLabelValues(resource, "hit").Inc()
		return cached, nil
	default:
		observability.CacheResults.WithLabelValues(resource, "miss").Inc()
	}

	value, err := fetch(ctx)
	if err != nil {
		return value, err
	}

	if err := s.SetJSON(ctx, key, value, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return value, nil
}

// Invalidate deletes keys, best-effort.
func (s *Store) Invalidate(ctx context.Context, keys ...string) {
	if !s.Enabled() || len(keys) == 0 {
		return
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed", slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}
