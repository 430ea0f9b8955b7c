package resolver

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is the injected result cache. The resolver owns no cache state
// of its own so tests can substitute an isolated, clock-controlled
// implementation per case.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
}

// TTLCache is the production Cache, a thin wrapper around go-cache.
type TTLCache struct {
	c *gocache.Cache
}

// NewTTLCache builds a cache with the given default TTL and janitor
// cleanup interval.
func NewTTLCache(defaultTTL, cleanupInterval time.Duration) *TTLCache {
	return &TTLCache{c: gocache.New(defaultTTL, cleanupInterval)}
}

func (t *TTLCache) Get(key string) (any, bool) {
	return t.c.Get(key)
}

func (t *TTLCache) Set(key string, value any, ttl time.Duration) {
	t.c.Set(key, value, ttl)
}
