// Package cache provides a small in-memory TTL cache. It holds remote
// session tokens so repeated frontend calls for the same entity do not
// mint a new token every time. A Redis-backed variant could replace it
// without changing callers.
package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// TTL is a thread-safe in-memory cache whose entries expire.
type TTL[T any] struct {
	mu         sync.RWMutex
	items      map[string]entry[T]
	defaultTTL time.Duration
}

// New creates a cache with the given default entry lifetime and starts a
// background sweep of expired entries.
func New[T any](defaultTTL time.Duration) *TTL[T] {
	c := &TTL[T]{
		items:      make(map[string]entry[T]),
		defaultTTL: defaultTTL,
	}
	go c.sweep()
	return c
}

// Get returns the cached value for key. The second result is false when
// the key is absent or its entry has expired.
func (c *TTL[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok || time.Now().After(e.expiresAt) {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the default lifetime.
func (c *TTL[T]) Set(key string, value T) {
	c.SetFor(key, value, c.defaultTTL)
}

// SetFor stores value under key with an explicit lifetime. Used when the
// remote side dictates the token expiry.
func (c *TTL[T]) SetFor(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry[T]{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

func (c *TTL[T]) sweep() {
	interval := c.defaultTTL
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		for k, e := range c.items {
			if now.After(e.expiresAt) {
				delete(c.items, k)
			}
		}
		c.mu.Unlock()
	}
}
