// Package cache is a small in-process TTL cache with a background sweeper.
package cache

import (
	"sync"
	"time"
)

type item[V any] struct {
	value      V
	expiration int64
}

type Cache[V any] struct {
	mu    sync.RWMutex
	items map[string]item[V]
	now   func() time.Time
	stop  chan struct{}
	once  sync.Once
}

// New starts a cache whose expired entries are swept every interval.
func New[V any](interval time.Duration) *Cache[V] {
	c := &Cache[V]{
		items: make(map[string]item[V]),
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	if interval > 0 {
		go c.sweep(interval)
	}
	return c
}

func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item[V]{
		value:      value,
		expiration: c.now().Add(ttl).UnixNano(),
	}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero V
	it, found := c.items[key]
	if !found || c.now().UnixNano() > it.expiration {
		return zero, false
	}
	return it.value, true
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stop ends the sweeper. It is safe to call more than once.
func (c *Cache[V]) Stop() {
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache[V]) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().UnixNano()
	for k, v := range c.items {
		if now > v.expiration {
			delete(c.items, k)
		}
	}
}

func (c *Cache[V]) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.purge()
		case <-c.stop:
			return
		}
	}
}
