package kv

import (
	"context"
	"sync"
)

// Cache is the small settings store used for category order and shop
// configuration. Values are opaque strings; callers pick the encoding.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Clear(ctx context.Context) error
}

type MemoryCache struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{values: make(map[string]string)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	c.values[key] = value
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.values = make(map[string]string)
	c.mu.Unlock()
	return nil
}
