// file: internal/cache/cache.go
// version: 2.1.0
// guid: a1b2c3d4-e5f6-7a8b-9c0d-1e2f3a4b5c6d

package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e entry[T]) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// Cache is a simple generic TTL cache safe for concurrent use.
// The report service keeps recomputed match lists here until the next write.
type Cache[T any] struct {
	mu         sync.RWMutex
	items      map[string]entry[T]
	defaultTTL time.Duration
	// generation is bumped by every invalidation
	generation uint64
}

// New creates a cache with the given default TTL.
func New[T any](defaultTTL time.Duration) *Cache[T] {
	return &Cache[T]{
		items:      make(map[string]entry[T]),
		defaultTTL: defaultTTL,
	}
}

// Get retrieves a value if it exists and hasn't expired.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || e.expired(time.Now()) {
		var zero T
		return zero, false
	}
	return e.value, true
}

// GetOrLoad returns the cached value for key or calls load and caches its
// result. Errors are returned as-is and never cached. A result is not cached
// when the cache was invalidated while load was running.
func (c *Cache[T]) GetOrLoad(key string, load func() (T, error)) (T, bool, error) {
	c.mu.RLock()
	e, ok := c.items[key]
	gen := c.generation
	c.mu.RUnlock()
	if ok && !e.expired(time.Now()) {
		return e.value, true, nil
	}

	v, err := load()
	if err != nil {
		var zero T
		return zero, false, err
	}

	c.mu.Lock()
	if c.generation == gen {
		c.items[key] = entry[T]{value: v, expiresAt: time.Now().Add(c.defaultTTL)}
	}
	c.mu.Unlock()
	return v, false, nil
}

// Set stores a value with the default TTL.
func (c *Cache[T]) Set(key string, value T) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores a value with a specific TTL.
func (c *Cache[T]) SetWithTTL(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	c.items[key] = entry[T]{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// Invalidate removes a single key.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.generation++
	c.mu.Unlock()
}

// InvalidateAll removes all entries.
func (c *Cache[T]) InvalidateAll() {
	c.mu.Lock()
	c.items = make(map[string]entry[T])
	c.generation++
	c.mu.Unlock()
}

// PurgeExpired drops expired entries and returns how many were removed.
func (c *Cache[T]) PurgeExpired() int {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.items {
		if e.expired(now) {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored entries, expired or not.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
