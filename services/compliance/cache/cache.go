// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package cache implements the process-local performance cache that fronts
// the read-heavy aggregation endpoints: a TTL key/value store with bounded
// size, FIFO eviction, and substring pattern invalidation.
//
// The cache lives only for the process lifetime and is deliberately not
// coherent across instances. In a horizontally scaled deployment the
// persisted document-compliance rows and score snapshots remain the source
// of truth; each instance merely pays the recompute cost once per TTL.
package cache

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/vantagecompliance/VantageCore/services/compliance/observability"
)

// Default TTLs per call-site. Aggregate freshness requirements differ by
// endpoint cost, so TTL is always a parameter; these are the documented
// defaults the handlers pass.
const (
	TTLWorkspaceScore = 2 * time.Minute
	TTLDashboard      = 5 * time.Minute
	TTLTrends         = 5 * time.Minute
	TTLBenchmarks     = 10 * time.Minute
)

// DefaultCapacity bounds the entry count when the caller passes zero.
const DefaultCapacity = 1000

type entry struct {
	data      any
	storedAt  time.Time
	ttl       time.Duration
	insertSeq uint64
}

// PerformanceCache is a size-bounded TTL cache with FIFO eviction.
//
// Eviction is FIFO, not LRU: when full, the entry with the lowest insertion
// order is dropped regardless of how recently it was read. Re-setting an
// existing key refreshes its data and timestamp but keeps its original
// insertion position.
//
// Safe for concurrent use within one process. Not shared across processes.
type PerformanceCache struct {
	mu       sync.Mutex
	entries  map[string]*entry
	capacity int
	seq      uint64
	clock    Clock
}

// New creates a cache bounded to capacity entries. A zero or negative
// capacity falls back to DefaultCapacity; a nil clock falls back to the
// system clock.
func New(capacity int, clock Clock) *PerformanceCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &PerformanceCache{
		entries:  make(map[string]*entry, capacity),
		capacity: capacity,
		clock:    clock,
	}
}

// Set stores data under key with the given TTL, evicting the oldest entry
// first when the cache is at capacity and the key is new.
func (c *PerformanceCache) Set(key string, data any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok {
		existing.data = data
		existing.storedAt = c.clock.Now()
		existing.ttl = ttl
		return
	}

	if len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}

	c.seq++
	c.entries[key] = &entry{
		data:      data,
		storedAt:  c.clock.Now(),
		ttl:       ttl,
		insertSeq: c.seq,
	}
	observability.Default().SetCacheEntries(len(c.entries))
}

// Get returns the cached data for key, or (nil, false) when the key is
// absent or its TTL has elapsed. Expired entries are removed on read.
func (c *PerformanceCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		observability.Default().RecordCacheMiss()
		return nil, false
	}
	if c.clock.Now().Sub(e.storedAt) > e.ttl {
		delete(c.entries, key)
		observability.Default().RecordCacheMiss()
		return nil, false
	}
	observability.Default().RecordCacheHit()
	return e.data, true
}

// Invalidate removes every key containing pattern as a substring and returns
// the number of entries removed. An empty pattern clears the whole cache.
// Workspace-scoped call sites pass prefixes like "dashboard:<workspaceId>".
func (c *PerformanceCache) Invalidate(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pattern == "" {
		n := len(c.entries)
		c.entries = make(map[string]*entry, c.capacity)
		return n
	}

	removed := 0
	for key := range c.entries {
		if strings.Contains(key, pattern) {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		slog.Debug("cache: invalidated entries", "pattern", pattern, "removed", removed)
	}
	return removed
}

// Size returns the current entry count, including entries that have expired
// but not yet been read or evicted.
func (c *PerformanceCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOldestLocked drops the entry with the lowest insertion sequence.
// Caller must hold c.mu. Linear scan is fine at the default capacity.
func (c *PerformanceCache) evictOldestLocked() {
	var oldestKey string
	var oldestSeq uint64
	first := true
	for key, e := range c.entries {
		if first || e.insertSeq < oldestSeq {
			oldestKey = key
			oldestSeq = e.insertSeq
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
		observability.Default().RecordCacheEviction()
	}
}
