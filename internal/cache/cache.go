// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

// Package cache provides a thread-safe in-memory TTL cache.
//
// It backs the per-user view cache: library definitions and Live TV
// presence are fetched on every manifest build, and a short TTL keeps
// repeated manifest requests from hammering the user's Emby server.
// Entries never hold credentials, only API responses keyed by a hash
// of the server URL and user id.
package cache

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Entry is a cached value with its expiration time.
type Entry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// Cache is a thread-safe in-memory cache with per-entry TTL support.
// Expired entries are removed lazily on access and by a background
// cleanup loop that runs every five minutes.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration

	statsMu   sync.Mutex
	hits      int64
	misses    int64
	evictions int64
}

// Stats is a snapshot of cache performance counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Keys      int64
}

// New creates a cache with the given default TTL and starts the
// background cleanup goroutine. The goroutine runs for the lifetime
// of the cache.
func New(ttl time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
	}
	go c.cleanupLoop()
	return c
}

// Get returns the value stored under key. Expired entries are removed
// and reported as misses.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.record(func() { c.misses++ })
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		c.record(func() { c.misses++; c.evictions++ })
		return nil, false
	}

	c.record(func() { c.hits++ })
	return entry.Data, true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key with a custom TTL, overwriting any
// existing entry.
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = Entry{
		Data:      value,
		ExpiresAt: time.Now().Add(ttl),
	}
}

// Delete removes the entry under key. Safe to call for absent keys.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	c.record(func() { c.evictions++ })
}

// Clear drops all entries in one operation.
func (c *Cache) Clear() {
	c.mu.Lock()
	n := int64(len(c.entries))
	c.entries = make(map[string]Entry)
	c.mu.Unlock()
	c.record(func() { c.evictions += n })
}

// GetStats returns a snapshot of the cache counters.
func (c *Cache) GetStats() Stats {
	c.mu.RLock()
	keys := int64(len(c.entries))
	c.mu.RUnlock()

	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Keys:      keys,
	}
}

// HitRate returns the fraction of lookups served from cache, in [0, 1].
func (c *Cache) HitRate() float64 {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total)
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		c.cleanup()
	}
}

func (c *Cache) cleanup() {
	now := time.Now()
	c.mu.Lock()
	var evicted int64
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			evicted++
		}
	}
	c.mu.Unlock()
	if evicted > 0 {
		c.record(func() { c.evictions += evicted })
	}
}

func (c *Cache) record(fn func()) {
	c.statsMu.Lock()
	fn()
	c.statsMu.Unlock()
}

// Key builds a cache key from a namespace and identifying parts. The
// parts are hashed so server URLs and user ids never appear verbatim
// in memory profiles or debug output.
func Key(namespace string, parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return fmt.Sprintf("%s:%x", namespace, sum[:12])
}
