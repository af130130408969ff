package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bobmcallan/nav-portal/internal/config"
)

func TestMemory_GetSet(t *testing.T) {
	c := NewMemory(100)
	ctx := context.Background()

	key := MakeKey("sheet", "https://example.com/pub.csv")
	if err := c.Set(ctx, key, []byte("date,nav\n"), 5*time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(got) != "date,nav\n" {
		t.Errorf("unexpected value: %s", got)
	}
}

func TestMemory_Miss(t *testing.T) {
	c := NewMemory(100)

	_, ok, _ := c.Get(context.Background(), "nonexistent")
	if ok {
		t.Error("expected cache miss for nonexistent key")
	}
}

func TestMemory_ZeroTTLStoresNothing(t *testing.T) {
	c := NewMemory(100)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), 0)

	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("expected zero ttl to be a passthrough")
	}
	if c.Len() != 0 {
		t.Errorf("expected empty store, got %d entries", c.Len())
	}
}

func TestMemory_TTLExpiration(t *testing.T) {
	c := NewMemory(100)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); !ok {
		t.Fatal("expected cache hit before expiry")
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("expected cache miss after expiry")
	}
	if c.Len() != 0 {
		t.Errorf("expected expired entry to be removed, got %d entries", c.Len())
	}
}

func TestMemory_EvictsOldest(t *testing.T) {
	c := NewMemory(2)
	ctx := context.Background()

	c.Set(ctx, "a", []byte("1"), time.Minute)
	c.Set(ctx, "b", []byte("2"), time.Minute)
	c.Set(ctx, "c", []byte("3"), time.Minute)

	if _, ok, _ := c.Get(ctx, "a"); ok {
		t.Error("expected oldest entry a to be evicted")
	}
	if _, ok, _ := c.Get(ctx, "c"); !ok {
		t.Error("expected newest entry c to be present")
	}
}

func TestMemory_UpdateDoesNotEvict(t *testing.T) {
	c := NewMemory(2)
	ctx := context.Background()

	c.Set(ctx, "a", []byte("1"), time.Minute)
	c.Set(ctx, "b", []byte("2"), time.Minute)
	c.Set(ctx, "a", []byte("updated"), time.Minute)

	got, ok, _ := c.Get(ctx, "a")
	if !ok || string(got) != "updated" {
		t.Errorf("expected updated value, got %q (hit=%v)", got, ok)
	}
	if _, ok, _ := c.Get(ctx, "b"); !ok {
		t.Error("expected b to survive an in-place update")
	}
}

func TestMemory_DeleteAndInvalidatePrefix(t *testing.T) {
	c := NewMemory(10)
	ctx := context.Background()

	c.Set(ctx, MakeKey("sheet", "one"), []byte("1"), time.Minute)
	c.Set(ctx, MakeKey("sheet", "two"), []byte("2"), time.Minute)
	c.Set(ctx, MakeKey("chart", "^NSEI"), []byte("3"), time.Minute)

	c.Delete(ctx, MakeKey("sheet", "one"))
	if _, ok, _ := c.Get(ctx, MakeKey("sheet", "one")); ok {
		t.Error("expected deleted key to miss")
	}

	c.InvalidatePrefix("sheet:")
	if _, ok, _ := c.Get(ctx, MakeKey("sheet", "two")); ok {
		t.Error("expected sheet entries to be invalidated")
	}
	if _, ok, _ := c.Get(ctx, MakeKey("chart", "^NSEI")); !ok {
		t.Error("expected chart entry to survive")
	}
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	c := NewMemory(50)
	ctx := context.Background()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", n%5)
			c.Set(ctx, key, []byte("v"), time.Minute)
			c.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	if c.Len() > 5 {
		t.Errorf("expected at most 5 keys, got %d", c.Len())
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	if _, err := New(config.CacheConfig{Backend: "memcached"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestNew_MemoryBackend(t *testing.T) {
	s, err := New(config.CacheConfig{Backend: "memory", MaxEntries: 4})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Errorf("expected *Memory store, got %T", s)
	}
}
