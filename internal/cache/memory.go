// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package cache

import (
	"strings"
	"sync"
	"time"
)

// memoryEntry holds a live reference plus its expiry deadline.
// A zero ExpiresAt means the entry never expires.
type memoryEntry struct {
	value     interface{}
	expiresAt time.Time
}

// Memory is a thread-safe in-process cache with per-entry TTLs and lazy
// expiration: expired entries are removed when they are next looked up,
// not by a background sweeper. Values are stored by reference, so a Get
// returns the exact value that was Set.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	stats   MemoryStats

	// now is swappable so tests can simulate the passage of time without
	// sleeping.
	now func() time.Time
}

// MemoryStats tracks memory-tier performance counters. Counters are
// monotonically increasing; Keys is the current entry count including
// entries that expired but have not been looked up yet.
type MemoryStats struct {
	Hits      int64
	Misses    int64
	Expired   int64
	Keys      int64
}

// NewMemory creates an empty memory-tier cache.
//
// Entries carry their own TTL, supplied at Set time. A non-positive TTL
// means the entry never expires; it stays until explicitly deleted or the
// cache is cleared. There is no background cleanup goroutine: expiry is
// checked on access, which keeps the cache allocation-free at rest and
// avoids goroutine lifecycle management for short-lived instances in tests.
//
// Safe for concurrent use.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the cached value for key. The second return is false when
// the key is absent or its entry has expired; an expired entry is removed
// as a side effect.
func (m *Memory) Get(key string) (interface{}, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		m.mu.Lock()
		m.stats.Misses++
		m.mu.Unlock()
		return nil, false
	}

	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock; another goroutine may have
		// replaced the entry since the read lock was dropped.
		if current, still := m.entries[key]; still && current.expiresAt.Equal(entry.expiresAt) {
			delete(m.entries, key)
			m.stats.Expired++
		}
		m.stats.Misses++
		m.mu.Unlock()
		return nil, false
	}

	m.mu.Lock()
	m.stats.Hits++
	m.mu.Unlock()
	return entry.value, true
}

// Set stores value under key with the given TTL. A non-positive TTL makes
// the entry permanent. Setting an existing key replaces its value and
// resets its expiry.
func (m *Memory) Set(key string, value interface{}, ttl time.Duration) {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = memoryEntry{value: value, expiresAt: expiresAt}
	m.mu.Unlock()
}

// Delete removes key from the cache. Deleting an absent key is a no-op.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// DeletePrefix removes every entry whose key starts with prefix. Services
// use this to invalidate all limit variants of a listing key after a write.
func (m *Memory) DeletePrefix(prefix string) {
	m.mu.Lock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
}

// Clear removes all entries. Counters are preserved.
func (m *Memory) Clear() {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
}

// Len returns the current entry count, including entries that have expired
// but not yet been swept by a lookup.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Stats returns a snapshot of the cache counters.
func (m *Memory) Stats() MemoryStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.stats
	s.Keys = int64(len(m.entries))
	return s
}
