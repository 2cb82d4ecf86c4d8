package options

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	DefaultCacheExpiration = 10 * time.Minute
	DefaultCacheCleanup    = 30 * time.Minute
)

// Cache keeps fetched option sets keyed by source so several questions bound
// to the same value set share one fetch.
type Cache struct {
	cache *gocache.Cache
}

// NewCache builds a cache with the given TTL and cleanup interval. Zero values
// fall back to the package defaults.
func NewCache(expiration, cleanup time.Duration) *Cache {
	if expiration <= 0 {
		expiration = DefaultCacheExpiration
	}
	if cleanup <= 0 {
		cleanup = DefaultCacheCleanup
	}
	return &Cache{cache: gocache.New(expiration, cleanup)}
}

// Get returns a copy of the cached options for source.
func (c *Cache) Get(source string) ([]Option, bool) {
	if c == nil || c.cache == nil {
		return nil, false
	}
	value, found := c.cache.Get(source)
	if !found {
		return nil, false
	}
	opts, ok := value.([]Option)
	if !ok {
		return nil, false
	}
	return append([]Option(nil), opts...), true
}

// Set stores options for source using the default expiration.
func (c *Cache) Set(source string, opts []Option) {
	if c == nil || c.cache == nil {
		return
	}
	c.cache.Set(source, append([]Option(nil), opts...), gocache.DefaultExpiration)
}

// Delete evicts source so the next refresh fetches again.
func (c *Cache) Delete(source string) {
	if c == nil || c.cache == nil {
		return
	}
	c.cache.Delete(source)
}
