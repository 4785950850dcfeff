// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package cache provides typed key/value caches with TTL support backed by memory or Redis.
package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// Cache provides thread-safe caching with expiration support.
type Cache[V any] interface {
	// Get retrieves a value from the cache. Returns false if not found or expired.
	Get(key string) (V, bool)
	// Set stores a value in the cache. A ttl <= 0 keeps the entry until deleted or cleared.
	Set(key string, value V, ttl time.Duration)
	// Delete removes a value from the cache.
	Delete(key string)
	// Clear removes all values from the cache.
	Clear()
	// Stats returns cache statistics.
	Stats() CacheStats
}

// CacheStats holds cache performance metrics.
type CacheStats struct {
	Hits        int64 // Number of successful Get operations
	Misses      int64 // Number of failed Get operations (not found or expired)
	Sets        int64 // Number of Set operations
	Evictions   int64 // Number of expired entries cleaned up
	CurrentSize int   // Current number of cached entries
}

// counters is shared by the backends.
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

// entry represents a cached value with expiration time.
type entry[V any] struct {
	value      V
	expiration time.Time // zero means no expiry
}

func (e *entry[V]) isExpired(now time.Time) bool {
	return !e.expiration.IsZero() && now.After(e.expiration)
}

// MemoryCache is an in-memory implementation of Cache.
type MemoryCache[V any] struct {
	mu      sync.RWMutex
	entries map[string]*entry[V]
	stats   counters
	janitor *janitor
	now     func() time.Time
}

// NewMemoryCache creates a new in-memory cache with automatic cleanup.
// The cleanupInterval determines how often expired entries are removed; zero disables the janitor.
func NewMemoryCache[V any](cleanupInterval time.Duration) *MemoryCache[V] {
	c := &MemoryCache[V]{
		entries: make(map[string]*entry[V]),
		now:     time.Now,
	}

	if cleanupInterval > 0 {
		c.janitor = &janitor{
			interval: cleanupInterval,
			stop:     make(chan struct{}),
		}
		go c.janitor.run(c.deleteExpired)
	}

	return c
}

// Get retrieves a value from the cache.
func (c *MemoryCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, found := c.entries[key]
	c.mu.RUnlock()

	if !found || e.isExpired(c.now()) {
		c.stats.misses.Add(1)
		var zero V
		return zero, false
	}

	c.stats.hits.Add(1)
	return e.value, true
}

// Set stores a value in the cache.
func (c *MemoryCache[V]) Set(key string, value V, ttl time.Duration) {
	e := &entry[V]{value: value}
	if ttl > 0 {
		e.expiration = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	c.stats.sets.Add(1)
}

// Delete removes a value from the cache.
func (c *MemoryCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all values from the cache.
func (c *MemoryCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry[V])
}

// Stats returns cache statistics.
func (c *MemoryCache[V]) Stats() CacheStats {
	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()
	return c.stats.snapshot(size)
}

// deleteExpired removes all expired entries from the cache.
// Returns the number of entries deleted.
func (c *MemoryCache[V]) deleteExpired() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

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

// Stop stops the background cleanup goroutine. It is safe to call more than once.
func (c *MemoryCache[V]) Stop() {
	if c.janitor != nil {
		c.janitor.once.Do(func() { close(c.janitor.stop) })
	}
}

// janitor performs periodic cleanup of expired entries.
type janitor struct {
	interval time.Duration
	stop     chan struct{}
	once     sync.Once
}

func (j *janitor) run(sweep func() int) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sweep()
		case <-j.stop:
			return
		}
	}
}

// noOpCache is a cache that does nothing (useful for disabling caching).
type noOpCache[V any] struct{}

// NewNoOpCache creates a cache that doesn't cache anything.
func NewNoOpCache[V any]() Cache[V] {
	return noOpCache[V]{}
}

func (noOpCache[V]) Get(string) (V, bool) {
	var zero V
	return zero, false
}
func (noOpCache[V]) Set(string, V, time.Duration) {}
func (noOpCache[V]) Delete(string)                {}
func (noOpCache[V]) Clear()                       {}
func (noOpCache[V]) Stats() CacheStats            { return CacheStats{} }
