package modelstore

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
)

// DefaultCacheSize is the number of model sets a Cache keeps.
const DefaultCacheSize = 16

type cacheEntry struct {
	models []any
	meta   Metadata
}

// Cache is a Loader that remembers recently loaded model sets. Cached
// models are shared between callers and must be treated as read-only.
type Cache struct {
	loader Loader
	lru    *lru.Cache
}

// NewCache wraps loader with an LRU of the given size.
func NewCache(loader Loader, size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Cache{loader: loader, lru: c}, nil
}

// Load returns the cached set for (root, tag), loading it on a miss.
// Failures are not cached.
func (c *Cache) Load(ctx context.Context, root, tag string) ([]any, Metadata, error) {
	key := root + "\x00" + tag
	if v, ok := c.lru.Get(key); ok {
		e := v.(cacheEntry)
		return append([]any(nil), e.models...), e.meta, nil
	}

	models, meta, err := c.loader.Load(ctx, root, tag)
	if err != nil {
		return nil, nil, err
	}
	c.lru.Add(key, cacheEntry{models: models, meta: meta})
	return append([]any(nil), models...), meta, nil
}

// Purge drops every cached set.
func (c *Cache) Purge() { c.lru.Purge() }
