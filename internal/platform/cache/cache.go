// Package cache is the read-through cache used for small, rarely changing
// lookup tables (embodiments, teleop modes).
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrMiss reports a key that is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store keeps JSON-encoded values under string keys.
type Store interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	SetBytes(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Get decodes the value stored under key into dest.
func Get(ctx context.Context, s Store, key string, dest any) error {
	raw, err := s.GetBytes(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Set JSON-encodes val under key.
func Set(ctx context.Context, s Store, key string, val any, ttl time.Duration) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return s.SetBytes(ctx, key, raw, ttl)
}

// Fetch returns the cached value for key, or calls load and caches its result.
// Cache failures never fail the call; load failures are returned as-is and not cached.
func Fetch[T any](ctx context.Context, s Store, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var out T
	if s != nil {
		if err := Get(ctx, s, key, &out); err == nil {
			return out, nil
		}
	}
	out, err := load(ctx)
	if err != nil {
		return out, err
	}
	if s != nil {
		_ = Set(ctx, s, key, out, ttl)
	}
	return out, nil
}
