// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests advance time manually.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) advance(d time.Duration) { f.now = f.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

// TestCache_RoundTrip verifies that a value set is returned immediately and
// becomes a miss once its TTL elapses.
func TestCache_RoundTrip(t *testing.T) {
	clock := newFakeClock()
	c := New(10, clock)

	c.Set("score:ws-1", 87, 2*time.Minute)

	got, ok := c.Get("score:ws-1")
	assert.True(t, ok)
	assert.Equal(t, 87, got)

	clock.advance(2*time.Minute + time.Second)

	got, ok = c.Get("score:ws-1")
	assert.False(t, ok)
	assert.Nil(t, got)
}

// TestCache_ExpiredEntryEvictedOnRead verifies that reading an expired key
// removes it rather than leaving it to occupy capacity.
func TestCache_ExpiredEntryEvictedOnRead(t *testing.T) {
	clock := newFakeClock()
	c := New(10, clock)

	c.Set("k", "v", time.Minute)
	clock.advance(2 * time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())
}

// TestCache_FIFOEviction verifies that inserting capacity+1 distinct keys
// leaves exactly capacity keys with the first-inserted key gone.
func TestCache_FIFOEviction(t *testing.T) {
	const capacity = 5
	c := New(capacity, newFakeClock())

	for i := 0; i <= capacity; i++ {
		c.Set(fmt.Sprintf("key-%d", i), i, time.Hour)
	}

	assert.Equal(t, capacity, c.Size())

	_, ok := c.Get("key-0")
	assert.False(t, ok, "first-inserted key should have been evicted")

	for i := 1; i <= capacity; i++ {
		_, ok := c.Get(fmt.Sprintf("key-%d", i))
		assert.True(t, ok, "key-%d should survive", i)
	}
}

// TestCache_EvictionIsFIFONotLRU verifies that reading an old key does not
// save it from eviction.
func TestCache_EvictionIsFIFONotLRU(t *testing.T) {
	c := New(2, newFakeClock())

	c.Set("a", 1, time.Hour)
	c.Set("b", 2, time.Hour)

	// Touch "a" so an LRU cache would evict "b" next.
	_, ok := c.Get("a")
	assert.True(t, ok)

	c.Set("c", 3, time.Hour)

	_, ok = c.Get("a")
	assert.False(t, ok, "oldest insertion is evicted regardless of reads")
	_, ok = c.Get("b")
	assert.True(t, ok)
}

// TestCache_SetExistingKeyKeepsInsertionOrder verifies that re-setting a key
// refreshes its value without moving it to the back of the eviction queue.
func TestCache_SetExistingKeyKeepsInsertionOrder(t *testing.T) {
	c := New(2, newFakeClock())

	c.Set("a", 1, time.Hour)
	c.Set("b", 2, time.Hour)
	c.Set("a", 10, time.Hour) // update, not re-insert

	c.Set("c", 3, time.Hour) // forces eviction

	_, ok := c.Get("a")
	assert.False(t, ok, "a keeps its original insertion position and is evicted first")

	got, ok := c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, got)
}

// TestCache_InvalidateAll verifies that an empty pattern clears everything.
func TestCache_InvalidateAll(t *testing.T) {
	c := New(10, newFakeClock())

	c.Set("dashboard:ws-1", 1, time.Hour)
	c.Set("trends:ws-1", 2, time.Hour)

	removed := c.Invalidate("")
	assert.Equal(t, 2, removed)
	assert.Equal(t, 0, c.Size())
}

// TestCache_InvalidatePattern verifies workspace-scoped invalidation by
// substring containment.
func TestCache_InvalidatePattern(t *testing.T) {
	c := New(10, newFakeClock())

	c.Set("dashboard:ws-1", 1, time.Hour)
	c.Set("trends:ws-1", 2, time.Hour)
	c.Set("dashboard:ws-2", 3, time.Hour)

	removed := c.Invalidate("ws-1")
	assert.Equal(t, 2, removed)

	_, ok := c.Get("dashboard:ws-2")
	assert.True(t, ok, "other workspaces are untouched")
}

// TestCache_ZeroCapacityDefaults verifies the DefaultCapacity fallback.
func TestCache_ZeroCapacityDefaults(t *testing.T) {
	c := New(0, nil)

	c.Set("k", "v", time.Minute)
	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)
}
