package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestMemoryGetSet tests the basic round trip
func TestMemoryGetSet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.Get(ctx, "absent"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get(absent) error = %v, want ErrMiss", err)
	}

	if err := m.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	got, err := m.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("Get() = %q, want %q", got, "value")
	}
}

// TestMemoryExpiry tests lazy TTL expiration
func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	current := time.Unix(1000, 0)
	m.now = func() time.Time { return current }

	if err := m.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	if _, err := m.Get(ctx, "key"); err != nil {
		t.Fatalf("Get() before expiry failed: %v", err)
	}

	current = current.Add(2 * time.Hour)
	if _, err := m.Get(ctx, "key"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get() after expiry error = %v, want ErrMiss", err)
	}
}

// TestMemoryValueIsolation tests that callers cannot mutate cached bytes
func TestMemoryValueIsolation(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	original := []byte("immutable")
	if err := m.Set(ctx, "key", original, 0); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	original[0] = 'X'

	first, err := m.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if string(first) != "immutable" {
		t.Errorf("cached value mutated through the caller's slice: %q", first)
	}

	first[0] = 'Y'
	second, err := m.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if string(second) != "immutable" {
		t.Errorf("cached value mutated through a returned slice: %q", second)
	}
}
