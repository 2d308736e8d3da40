package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, ok := m.Get(ctx, "u1", "rfps", "read"); ok {
		t.Fatal("expected miss on empty cache")
	}

	m.Set(ctx, "u1", "rfps", "read", true, 0)
	m.Set(ctx, "u1", "rfps", "delete", false, 0)

	allowed, ok := m.Get(ctx, "u1", "rfps", "read")
	if !ok || !allowed {
		t.Fatal("expected cached allow")
	}
	allowed, ok = m.Get(ctx, "u1", "rfps", "delete")
	if !ok || allowed {
		t.Fatal("expected cached deny")
	}
}

func TestMemoryTTLExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(WithTTL(10 * time.Millisecond))

	m.Set(ctx, "u1", "rfps", "read", true, 0)
	time.Sleep(20 * time.Millisecond)

	if _, ok := m.Get(ctx, "u1", "rfps", "read"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestMemoryPerCallTTL(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(WithTTL(time.Hour))

	// The caller's TTL overrides the cache default.
	m.Set(ctx, "u1", "rfps", "read", true, 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, ok := m.Get(ctx, "u1", "rfps", "read"); ok {
		t.Fatal("expected per-call TTL to win over the default")
	}
}

func TestMemoryKeyBoundaries(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	// A ":" in the user ID must not bleed across the (resource, action)
	// boundary.
	m.Set(ctx, "a:b", "c", "d", true, 0)

	if _, ok := m.Get(ctx, "a", "b:c", "d"); ok {
		t.Fatal("expected distinct keys for shifted segment boundaries")
	}
	if _, ok := m.Get(ctx, "a:b:c", "", "d"); ok {
		t.Fatal("expected distinct keys for shifted segment boundaries")
	}

	// Invalidating user "a" must not clear entries of user "a:b".
	m.InvalidateUser(ctx, "a")
	if _, ok := m.Get(ctx, "a:b", "c", "d"); !ok {
		t.Fatal("expected entry for user a:b to survive")
	}
	m.InvalidateUser(ctx, "a:b")
	if _, ok := m.Get(ctx, "a:b", "c", "d"); ok {
		t.Fatal("expected entry for user a:b to be invalidated")
	}
}

func TestMemoryInvalidateUser(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	m.Set(ctx, "u1", "rfps", "read", true, 0)
	m.Set(ctx, "u1", "users", "read", true, 0)
	m.Set(ctx, "u2", "rfps", "read", true, 0)

	m.InvalidateUser(ctx, "u1")

	if _, ok := m.Get(ctx, "u1", "rfps", "read"); ok {
		t.Fatal("expected u1 entries invalidated")
	}
	if _, ok := m.Get(ctx, "u1", "users", "read"); ok {
		t.Fatal("expected u1 entries invalidated")
	}
	if _, ok := m.Get(ctx, "u2", "rfps", "read"); !ok {
		t.Fatal("expected u2 entry untouched")
	}
}

func TestMemoryInvalidateAll(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	m.Set(ctx, "u1", "rfps", "read", true, 0)
	m.Set(ctx, "u2", "rfps", "read", true, 0)

	m.InvalidateAll(ctx)

	if _, ok := m.Get(ctx, "u1", "rfps", "read"); ok {
		t.Fatal("expected all entries invalidated")
	}
	if _, ok := m.Get(ctx, "u2", "rfps", "read"); ok {
		t.Fatal("expected all entries invalidated")
	}
}

func TestMemoryMaxSizeEviction(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(WithMaxSize(2))

	m.Set(ctx, "u1", "rfps", "read", true, 0)
	m.Set(ctx, "u2", "rfps", "read", true, 0)
	m.Set(ctx, "u3", "rfps", "read", true, 0)

	m.mu.RLock()
	size := len(m.entries)
	m.mu.RUnlock()
	if size > 2 {
		t.Fatalf("expected at most 2 entries, got %d", size)
	}
}
