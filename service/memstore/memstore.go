// Package memstore is the process-local hot cache: a bounded TTL map in
// front of the chain gateway and catalog store. It is an acceleration
// layer only; misses always degrade to the underlying source.
package memstore

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultMaxEntries = 4096

// Keys are structured tuples joined with a separator that cannot appear
// in addresses or decimal token ids.
const keySep = "|"

// Key builds a structured cache key from a method name and its arguments.
func Key(method string, args ...string) string {
	return method + keySep + strings.Join(args, keySep)
}

// Cache is a typed TTL cache with time-then-size eviction.
type Cache[V any] struct {
	name string
	ttl  time.Duration
	lru  *expirable.LRU[string, V]
}

// New creates a cache holding at most maxEntries values for at most ttl.
// maxEntries <= 0 uses a sensible default.
func New[V any](name string, maxEntries int, ttl time.Duration) *Cache[V] {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &Cache[V]{
		name: name,
		ttl:  ttl,
		lru:  expirable.NewLRU[string, V](maxEntries, nil, ttl),
	}
}

func (c *Cache[V]) Name() string {
	return c.name
}

func (c *Cache[V]) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached value for key, if present and unexpired.
func (c *Cache[V]) Get(key string) (V, bool) {
	return c.lru.Get(key)
}

// Set stores value under key with the cache's TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.lru.Add(key, value)
}

// Delete removes a single key.
func (c *Cache[V]) Delete(key string) {
	c.lru.Remove(key)
}

// Purge removes every key with the given prefix. An empty prefix clears
// the whole cache.
func (c *Cache[V]) Purge(prefix string) int {
	if prefix == "" {
		n := c.lru.Len()
		c.lru.Purge()
		return n
	}
	removed := 0
	for _, k := range c.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			if c.lru.Remove(k) {
				removed++
			}
		}
	}
	return removed
}

// Len returns the current entry count.
func (c *Cache[V]) Len() int {
	return c.lru.Len()
}
