package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"pictive/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is not present in the cache.
var ErrCacheMiss = errors.New("cache miss")

// GetJSON fetches a key and unmarshals the stored value into dest.
func GetJSON(ctx context.Context, key string, dest interface{}) error {
	if client == nil {
		return ErrCacheMiss
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

// SetJSON marshals the value and stores it under key with a TTL.
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, data, ttl).Err()
}

// Delete removes keys from the cache. Missing keys are not an error.
func Delete(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		middleware.Logger.Warn("cache delete failed",
			slog.String("error", err.Error()))
	}
}

// CacheAside returns the cached value for key, or loads it with fetch,
// stores the result, and returns it. Cache failures fall through to fetch.
func CacheAside[T any](ctx context.Context, key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	var cached T
	if err := GetJSON(ctx, key, &cached); err == nil {
		return cached, nil
	}

	fresh, err := fetch()
	if err != nil {
		return fresh, err
	}

	if err := SetJSON(ctx, key, fresh, ttl); err != nil {
		middleware.Logger.Warn("cache set failed",
			slog.String("key", key), slog.String("error", err.Error()))
	}
	return fresh, nil
}
