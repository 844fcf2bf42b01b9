// SPDX-License-Identifier: MIT

// Package cache provides the snippets cache: Redis when reachable, with an
// in-memory TTL cache as fallback.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Cache provides thread-safe caching with expiration support.
type Cache interface {
	// Get retrieves a value. Expired and missing entries report false.
	Get(key string) (any, bool)
	// Set stores a value with the specified TTL.
	Set(key string, value any, ttl time.Duration)
	Delete(key string)
	Clear()
	Stats() CacheStats
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	// Backend names the implementation ("redis", "memory", "noop").
	Backend() string
	Close() error
}

// CacheStats holds cache performance counters.
type CacheStats struct {
	Hits        int64
	Misses      int64
	Sets        int64
	Evictions   int64 // expired entries removed by the janitor
	CurrentSize int
}

type counters struct {
	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	evictions atomic.Int64
}

func (c *counters) snapshot(size int) CacheStats {
	return CacheStats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Sets:        c.sets.Load(),
		Evictions:   c.evictions.Load(),
		CurrentSize: size,
	}
}

type entry struct {
	value      any
	expiration time.Time
}

func (e *entry) isExpired(now time.Time) bool {
	return now.After(e.expiration)
}

type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	stats   counters

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewMemoryCache creates an in-memory cache. A positive cleanupInterval
// starts a janitor goroutine that Close stops.
func NewMemoryCache(cleanupInterval time.Duration) Cache {
	c := &memoryCache{
		entries: make(map[string]*entry),
	}
	if cleanupInterval > 0 {
		c.stop = make(chan struct{})
		c.done = make(chan struct{})
		go c.janitor(cleanupInterval)
	}
	return c
}

func (c *memoryCache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, found := c.entries[key]
	c.mu.RUnlock()

	if !found || e.isExpired(time.Now()) {
		c.stats.misses.Add(1)
		return nil, false
	}
	c.stats.hits.Add(1)
	return e.value, true
}

func (c *memoryCache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = &entry{value: value, expiration: time.Now().Add(ttl)}
	c.mu.Unlock()
	c.stats.sets.Add(1)
}

func (c *memoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *memoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

func (c *memoryCache) Stats() CacheStats {
	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()
	return c.stats.snapshot(size)
}

func (c *memoryCache) Ping(context.Context) error { return nil }

func (c *memoryCache) Backend() string { return "memory" }

// Close stops the janitor. It is safe to call more than once.
func (c *memoryCache) Close() error {
	if c.stop == nil {
		return nil
	}
	c.stopOnce.Do(func() {
		close(c.stop)
		<-c.done
	})
	return nil
}

// deleteExpired removes expired entries and returns how many were dropped.
func (c *memoryCache) deleteExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	count := 0
	for key, e := range c.entries {
		if e.isExpired(now) {
			delete(c.entries, key)
			count++
		}
	}
	c.stats.evictions.Add(int64(count))
	return count
}

func (c *memoryCache) janitor(interval time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stop:
			return
		}
	}
}

type noOpCache struct{}

// NewNoOpCache creates a cache that stores nothing.
func NewNoOpCache() Cache {
	return noOpCache{}
}

func (noOpCache) Get(string) (any, bool)         { return nil, false }
func (noOpCache) Set(string, any, time.Duration) {}
func (noOpCache) Delete(string)                  {}
func (noOpCache) Clear()                         {}
func (noOpCache) Stats() CacheStats              { return CacheStats{} }
func (noOpCache) Ping(context.Context) error     { return nil }
func (noOpCache) Backend() string                { return "noop" }
func (noOpCache) Close() error                   { return nil }
