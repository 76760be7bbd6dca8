package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type memoryStore struct {
	c *gocache.Cache
}

// NewMemory returns an in-process store. cleanupInterval 0 disables the
// janitor goroutine; expired entries are then dropped lazily on read.
func NewMemory(defaultTTL, cleanupInterval time.Duration) Store {
	return &memoryStore{c: gocache.New(defaultTTL, cleanupInterval)}
}

func (m *memoryStore) GetBytes(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	raw, ok := v.([]byte)
	if !ok {
		return nil, ErrMiss
	}
	return raw, nil
}

func (m *memoryStore) SetBytes(_ context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.c.Set(key, val, ttl)
	return nil
}

func (m *memoryStore) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.c.Delete(k)
	}
	return nil
}

func (m *memoryStore) Close() error {
	m.c.Flush()
	return nil
}
