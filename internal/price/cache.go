// Package price resolves a current USD price per asset via an ordered
// fallback chain of independent sources, with time-bounded caching.
package price

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is a time-bounded price store shared across requests for the life
// of the process. Entries never come back after the TTL; overwrites by a
// newer fetch are allowed. Safe for concurrent use.
type Cache struct {
	store *gocache.Cache
}

// NewCache creates a cache whose entries expire after ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{store: gocache.New(ttl, 2*ttl)}
}

// Get returns the cached price for a symbol if it is still fresh.
func (c *Cache) Get(symbol string) (float64, bool) {
	v, ok := c.store.Get(strings.ToLower(symbol))
	if !ok {
		return 0, false
	}
	price, ok := v.(float64)
	return price, ok
}

// Set stores a price for a symbol with the current timestamp.
func (c *Cache) Set(symbol string, price float64) {
	c.store.Set(strings.ToLower(symbol), price, gocache.DefaultExpiration)
}
