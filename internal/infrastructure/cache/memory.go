package cache

import (
	"context"
	"sync"
	"time"

	"github.com/tendermatch/backend/internal/domain"
)

// cacheItem is a cached candidate list with expiration and last-access time.
type cacheItem struct {
	products   []domain.Product
	expiration time.Time
	accessedAt time.Time
}

// MemoryCache is a thread-safe in-memory product cache with TTL support
// and a size cap. When full, the least recently accessed entry is evicted.
type MemoryCache struct {
	data       map[string]cacheItem
	maxEntries int
	mutex      sync.RWMutex
}

// NewMemoryCache creates an in-memory cache holding at most maxEntries
// candidate lists. Non-positive maxEntries means unbounded.
func NewMemoryCache(maxEntries int) *MemoryCache {
	cache := &MemoryCache{
		data:       make(map[string]cacheItem),
		maxEntries: maxEntries,
	}

	// Cleanup goroutine removes expired entries every 10 minutes
	go cache.cleanupExpired()

	return cache
}

// Get retrieves a cached candidate list. Expired entries count as misses.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]domain.Product, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	item, exists := c.data[key]
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	if time.Now().After(item.expiration) {
		delete(c.data, key)
		return nil, domain.ErrCacheMiss
	}

	item.accessedAt = time.Now()
	c.data[key] = item

	// Callers may truncate or re-sort the result; hand out a copy.
	products := make([]domain.Product, len(item.products))
	copy(products, item.products)
	return products, nil
}

// Set stores a candidate list with TTL, evicting the least recently
// accessed entry when the cache is full.
func (c *MemoryCache) Set(ctx context.Context, key string, products []domain.Product, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.data[key]; !exists && c.maxEntries > 0 && len(c.data) >= c.maxEntries {
		c.evictOldest()
	}

	stored := make([]domain.Product, len(products))
	copy(stored, products)

	now := time.Now()
	c.data[key] = cacheItem{
		products:   stored,
		expiration: now.Add(ttl),
		accessedAt: now,
	}
	return nil
}

// Delete removes an entry from the cache.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// evictOldest removes the least recently accessed entry. Caller holds the lock.
func (c *MemoryCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time
	for key, item := range c.data {
		if oldestKey == "" || item.accessedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = item.accessedAt
		}
	}
	if oldestKey != "" {
		delete(c.data, oldestKey)
	}
}

// cleanupExpired removes expired entries from the cache periodically
func (c *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := time.Now()
		for key, item := range c.data {
			if now.After(item.expiration) {
				delete(c.data, key)
			}
		}
		c.mutex.Unlock()
	}
}

// Size returns the current number of entries (for debugging/monitoring)
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Clear removes all entries from the cache
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]cacheItem)
}
