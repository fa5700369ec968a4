package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestInMemoryCache_SetAndGet(t *testing.T) {
	cache := NewInMemoryCache(1 * time.Second)
	ctx := context.Background()
	key := "AAPL"
	value := map[string]interface{}{"current_price": 231.5}

	err := cache.Set(ctx, key, value)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := cache.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	snapshot, ok := got.(map[string]interface{})
	if !ok || snapshot["current_price"] != 231.5 {
		t.Errorf("expected cached snapshot, got %v", got)
	}
}

func TestInMemoryCache_Expiration(t *testing.T) {
	cache := NewInMemoryCache(50 * time.Millisecond)
	ctx := context.Background()

	if err := cache.Set(ctx, "baz", "qux"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(60 * time.Millisecond)
	if _, err := cache.Get(ctx, "baz"); err == nil {
		t.Errorf("expected error for expired item, got nil")
	}
}

func TestInMemoryCache_Purge(t *testing.T) {
	cache := NewInMemoryCache(10 * time.Millisecond)
	ctx := context.Background()

	if err := cache.Set(ctx, "old", 1); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	cache.Purge()

	cache.mutex.RLock()
	_, exists := cache.store["old"]
	cache.mutex.RUnlock()
	if exists {
		t.Error("expected purged item to be removed from the store")
	}
}

func TestInMemoryCache_CancelledContext(t *testing.T) {
	cache := NewInMemoryCache(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := cache.Set(ctx, "k", "v"); err == nil {
		t.Error("expected error for cancelled context on Set")
	}
	if _, err := cache.Get(ctx, "k"); err == nil {
		t.Error("expected error for cancelled context on Get")
	}
}

func TestInMemoryCache_Concurrency(t *testing.T) {
	cache := NewInMemoryCache(1 * time.Second)
	ctx := context.Background()
	setErr := make(chan error, 1)
	getErr := make(chan error, 1)

	go func() {
		setErr <- cache.Set(ctx, "concurrent", "val")
	}()
	go func() {
		_, err := cache.Get(ctx, "concurrent")
		getErr <- err
	}()

	if err := <-setErr; err != nil {
		t.Errorf("Set failed: %v", err)
	}
	if err := <-getErr; err != nil && !strings.Contains(err.Error(), "not found") {
		t.Errorf("unexpected Get error: %v", err)
	}
}
