// Package cache provides caching implementations for Gatehouse
// capability results.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/xraph/gatehouse"
)

// Compile-time interface check.
var _ gatehouse.Cache = (*Memory)(nil)

// Memory is an in-memory cache with TTL-based expiration.
type Memory struct {
	mu      sync.RWMutex
	entries map[cacheKey]*entry
	ttl     time.Duration
	maxSize int
}

// cacheKey is a struct so a ":" inside a user ID cannot collide with a
// (resource, action) boundary.
type cacheKey struct {
	userID   string
	resource string
	action   string
}

type entry struct {
	allowed   bool
	expiresAt time.Time
}

// MemoryOption configures the memory cache.
type MemoryOption func(*Memory)

// WithTTL sets the default cache entry time-to-live, used when the
// caller does not supply one.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) { m.ttl = ttl }
}

// WithMaxSize sets the maximum number of cache entries.
func WithMaxSize(n int) MemoryOption {
	return func(m *Memory) { m.maxSize = n }
}

// NewMemory creates a new in-memory cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[cacheKey]*entry),
		ttl:     5 * time.Minute,
		maxSize: 10000,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns a cached capability answer.
func (m *Memory) Get(_ context.Context, userID, resource, action string) (bool, bool) {
	key := cacheKey{userID: userID, resource: resource, action: action}
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return false, false
	}
	if time.Now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return false, false
	}
	return e.allowed, true
}

// Set stores a capability answer in the cache. A non-positive ttl falls
// back to the cache's default.
func (m *Memory) Set(_ context.Context, userID, resource, action string, allowed bool, ttl time.Duration) {
	key := cacheKey{userID: userID, resource: resource, action: action}
	if ttl <= 0 {
		ttl = m.ttl
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	// Evict if at capacity.
	if len(m.entries) >= m.maxSize {
		m.evictExpired()
		if len(m.entries) >= m.maxSize {
			// Evict oldest entry.
			m.evictOne()
		}
	}

	m.entries[key] = &entry{
		allowed:   allowed,
		expiresAt: time.Now().Add(ttl),
	}
}

// InvalidateUser removes all cached answers for a user.
func (m *Memory) InvalidateUser(_ context.Context, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if k.userID == userID {
			delete(m.entries, k)
		}
	}
}

// InvalidateAll removes every cached answer.
func (m *Memory) InvalidateAll(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[cacheKey]*entry)
}

// evictExpired removes all expired entries. Must hold write lock.
func (m *Memory) evictExpired() {
	now := time.Now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}

// evictOne removes one arbitrary entry. Must hold write lock.
func (m *Memory) evictOne() {
	for k := range m.entries {
		delete(m.entries, k)
		return
	}
}
