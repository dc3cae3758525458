package kv

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps values in process memory. State is lost on restart.
type MemoryStore struct {
	c *cache.Cache
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{c: cache.New(cache.NoExpiration, 0)}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	v, found := m.c.Get(key)
	if !found {
		return "", false, nil
	}
	s, _ := v.(string)
	return s, true, nil
}

// Set implements Store.
func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.c.Set(key, value, cache.NoExpiration)
	return nil
}
