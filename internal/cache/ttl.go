package cache

import (
	"sync"
	"time"
)

// TTL is a small in-memory cache whose entries expire after a fixed lifetime.
// It is safe for concurrent use. A nil *TTL behaves as an always-empty cache.
type TTL[K comparable, V any] struct {
	mu  sync.RWMutex
	ttl time.Duration
	now func() time.Time

	items map[K]cachedItem[V]

	janitorStop chan struct{}
}

// cachedItem wraps a cached value with an expiration time.
type cachedItem[V any] struct {
	value     V
	expiresAt time.Time
}

// New creates a cache. If ttl <= 0, entries live for one hour.
func New[K comparable, V any](ttl time.Duration) *TTL[K, V] {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TTL[K, V]{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[K]cachedItem[V]),
	}
}

// Set stores value under key for the cache's TTL.
func (c *TTL[K, V]) Set(key K, value V) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.items[key] = cachedItem[V]{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Get returns the value for key if present and not expired.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}

	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}

	if c.now().After(item.expiresAt) {
		// Expired - evict eagerly
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return zero, false
	}
	return item.value, true
}

// Delete drops key.
func (c *TTL[K, V]) Delete(key K) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// PurgeExpired removes expired entries.
func (c *TTL[K, V]) PurgeExpired() {
	if c == nil {
		return
	}
	now := c.now()

	c.mu.Lock()
	for k, v := range c.items {
		if now.After(v.expiresAt) {
			delete(c.items, k)
		}
	}
	c.mu.Unlock()
}

// Len returns the number of live entries after purging expired ones.
func (c *TTL[K, V]) Len() int {
	if c == nil {
		return 0
	}
	c.PurgeExpired()

	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// StartJanitor purges expired entries every interval until the returned stop
// function is called. If interval <= 0, 5 minutes is used.
func (c *TTL[K, V]) StartJanitor(interval time.Duration) func() {
	if c == nil {
		return func() {}
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	c.mu.Lock()
	// If already running, stop the previous one
	if c.janitorStop != nil {
		close(c.janitorStop)
	}
	stop := make(chan struct{})
	c.janitorStop = stop
	c.mu.Unlock()

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.PurgeExpired()
			case <-stop:
				return
			}
		}
	}()

	return func() {
		c.mu.Lock()
		if c.janitorStop == stop {
			close(c.janitorStop)
			c.janitorStop = nil
		}
		c.mu.Unlock()
	}
}
