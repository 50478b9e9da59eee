package relaycache

import (
	"context"
	"errors"
	"time"

	"github.com/bluele/gcache"
)

// LRUCache is an in-process cache bounded by entry count.
type LRUCache struct {
	cache gcache.Cache
}

// NewLRUCache returns a cache holding at most size entries. When ttl is
// positive, entries expire after it.
func NewLRUCache(size int, ttl time.Duration) *LRUCache {
	b := gcache.New(size).LRU()
	if ttl > 0 {
		b = b.Expiration(ttl)
	}
	return &LRUCache{cache: b.Build()}
}

// Get implements relay.Cache. A missing key yields an empty result.
func (c *LRUCache) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := c.cache.Get(key)
	if errors.Is(err, gcache.KeyNotFoundError) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), v.([]byte)...), nil
}

// Set implements relay.Cache.
func (c *LRUCache) Set(ctx context.Context, key string, value []byte) error {
	return c.cache.Set(key, append([]byte(nil), value...))
}

// Len returns the number of cached entries.
func (c *LRUCache) Len() int {
	return c.cache.Len(true)
}
