// Package cache memoizes expensive aggregate reads for a fixed time.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultTTL applies to every cached aggregate unless configured otherwise.
const DefaultTTL = 30 * time.Second

const defaultSize = 64

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache holds {value, expiresAt} entries keyed by operation name. Entries
// are replaced wholesale; there is no per-key invalidation.
type Cache struct {
	entries *lru.Cache[string, entry]
	now     func() time.Time
}

type Option func(*Cache)

// WithClock overrides time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New returns a cache bounded to size keys. size <= 0 uses a small default.
func New(size int, opts ...Option) *Cache {
	if size <= 0 {
		size = defaultSize
	}
	entries, err := lru.New[string, entry](size)
	if err != nil {
		// only returned for non-positive sizes
		panic(err)
	}
	c := &Cache{entries: entries, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call returns the live value stored under key, or runs compute and stores
// its result until now+ttl. Errors are returned without being stored.
// Concurrent misses may each run compute.
func Call[T any](c *Cache, key string, ttl time.Duration, compute func() (T, error)) (T, error) {
	if e, ok := c.entries.Get(key); ok && c.now().Before(e.expiresAt) {
		if v, ok := e.value.(T); ok {
			return v, nil
		}
	}

	v, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}
	c.entries.Add(key, entry{value: v, expiresAt: c.now().Add(ttl)})
	return v, nil
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.entries.Purge()
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	return c.entries.Len()
}
