package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/tendermatch/backend/internal/domain"
)

func products(hashes ...string) []domain.Product {
	out := make([]domain.Product, len(hashes))
	for i, h := range hashes {
		out[i] = domain.Product{Hash: h}
	}
	return out
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := NewMemoryCache(100)
	ctx := context.Background()

	t.Run("store and retrieve products", func(t *testing.T) {
		err := cache.Set(ctx, "okpd2:10.11:50", products("a", "b"), time.Minute)
		if err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		got, err := cache.Get(ctx, "okpd2:10.11:50")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if len(got) != 2 || got[0].Hash != "a" || got[1].Hash != "b" {
			t.Errorf("Get() = %v, want products a,b", got)
		}
	})

	t.Run("expired entry is a miss", func(t *testing.T) {
		err := cache.Set(ctx, "short", products("x"), time.Millisecond)
		if err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		time.Sleep(10 * time.Millisecond)

		_, err = cache.Get(ctx, "short")
		if err != domain.ErrCacheMiss {
			t.Errorf("Get() error = %v, want ErrCacheMiss", err)
		}
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		err := cache.Set(ctx, "copy", products("original"), time.Minute)
		if err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		got, err := cache.Get(ctx, "copy")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		got[0].Hash = "mutated"

		again, err := cache.Get(ctx, "copy")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if again[0].Hash != "original" {
			t.Error("cached value was mutated through the returned slice")
		}
	})
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	cache := NewMemoryCache(100)
	ctx := context.Background()

	_, err := cache.Get(ctx, "non-existent-key")
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache(100)
	ctx := context.Background()

	key := "delete-test"
	if err := cache.Set(ctx, key, products("a"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := cache.Delete(ctx, key); err != nil {
		t.Errorf("Delete() error = %v", err)
	}

	_, err := cache.Get(ctx, key)
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() after delete error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Eviction(t *testing.T) {
	cache := NewMemoryCache(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		key := fmt.Sprintf("key-%d", i)
		if err := cache.Set(ctx, key, products(key), time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		// Distinct access times so recency ordering is unambiguous.
		time.Sleep(2 * time.Millisecond)
	}

	// Touch key-0 so key-1 becomes the oldest.
	if _, err := cache.Get(ctx, "key-0"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	time.Sleep(2 * time.Millisecond)

	if err := cache.Set(ctx, "key-3", products("key-3"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if cache.Size() != 3 {
		t.Errorf("Size() = %d, want 3 after eviction", cache.Size())
	}
	if _, err := cache.Get(ctx, "key-1"); err != domain.ErrCacheMiss {
		t.Errorf("least recently used key should be evicted, got error = %v", err)
	}
	if _, err := cache.Get(ctx, "key-0"); err != nil {
		t.Errorf("recently touched key should survive, got error = %v", err)
	}
	if _, err := cache.Get(ctx, "key-3"); err != nil {
		t.Errorf("new key should be present, got error = %v", err)
	}
}

func TestMemoryCache_UnboundedWhenZero(t *testing.T) {
	cache := NewMemoryCache(0)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("key-%d", i)
		if err := cache.Set(ctx, key, products(key), time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	if cache.Size() != 50 {
		t.Errorf("Size() = %d, want 50 without a cap", cache.Size())
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	cache := NewMemoryCache(100)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("key-%d", i)
		if err := cache.Set(ctx, key, products(key), time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	cache.Clear()

	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 after clear", size)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache(100)
	ctx := context.Background()

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			key := fmt.Sprintf("key-%d", id)
			if err := cache.Set(ctx, key, products(key), time.Minute); err != nil {
				t.Errorf("Concurrent Set() error = %v", err)
			}
			if _, err := cache.Get(ctx, key); err != nil {
				t.Errorf("Concurrent Get() error = %v", err)
			}
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
