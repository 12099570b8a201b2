package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// cacheItem represents an item in the memory cache
type cacheItem struct {
	value      []byte
	expiration time.Time
}

func (i *cacheItem) expired(now time.Time) bool {
	return now.After(i.expiration)
}

// MemoryCache implements Cache interface using in-process storage
type MemoryCache struct {
	mutex         sync.RWMutex
	items         map[string]*cacheItem
	maxMemory     int64
	currentMemory int64
	hits          int64
	misses        int64
	evictions     int64
	cleanupDone   chan struct{}
	closeOnce     sync.Once
	closed        bool
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates a new in-memory cache and starts its expiry sweeper
func NewMemoryCache(config *CacheConfig) *MemoryCache {
	if config == nil {
		config = DefaultCacheConfig()
	}

	c := &MemoryCache{
		items:       make(map[string]*cacheItem),
		maxMemory:   config.MaxMemory,
		cleanupDone: make(chan struct{}),
	}

	interval := config.CleanupInterval
	if interval <= 0 {
		interval = time.Minute
	}
	go c.startCleanup(interval)

	return c
}

// Get retrieves a value from cache
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mutex.RLock()
	if c.closed {
		c.mutex.RUnlock()
		return nil, ErrCacheDisabled
	}
	item, exists := c.items[key]
	c.mutex.RUnlock()

	if !exists || item.expired(time.Now()) {
		atomic.AddInt64(&c.misses, 1)
		if exists {
			c.mutex.Lock()
			if current, ok := c.items[key]; ok && current == item {
				c.removeLocked(key, item)
			}
			c.mutex.Unlock()
		}
		return nil, ErrKeyNotFound
	}

	atomic.AddInt64(&c.hits, 1)
	result := make([]byte, len(item.value))
	copy(result, item.value)
	return result, nil
}

// Set stores a value in cache with expiration
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return ErrCacheDisabled
	}

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	newItem := &cacheItem{value: valueCopy, expiration: time.Now().Add(ttl)}

	if old, ok := c.items[key]; ok {
		c.removeLocked(key, old)
	}
	c.items[key] = newItem
	c.currentMemory += itemSize(key, newItem)

	c.evictIfNeeded(key)
	return nil
}

// Delete removes a value from cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if item, exists := c.items[key]; exists {
		c.removeLocked(key, item)
	}
	return nil
}

// DeletePattern removes all keys matching the given pattern
func (c *MemoryCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for key, item := range c.items {
		if matchPattern(key, pattern) {
			c.removeLocked(key, item)
		}
	}
	return nil
}

// Ping reports ErrCacheUnavailable once the cache is closed
func (c *MemoryCache) Ping(ctx context.Context) error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if c.closed {
		return ErrCacheUnavailable
	}
	return nil
}

// Close stops the sweeper and drops all items
func (c *MemoryCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.cleanupDone)

		c.mutex.Lock()
		c.items = make(map[string]*cacheItem)
		c.currentMemory = 0
		c.closed = true
		c.mutex.Unlock()
	})
	return nil
}

// Stats returns cache statistics
func (c *MemoryCache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	now := time.Now()
	var active int64
	for _, item := range c.items {
		if !item.expired(now) {
			active++
		}
	}

	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)
	return CacheStats{
		Hits:        hits,
		Misses:      misses,
		HitRatio:    hitRatio(hits, misses),
		Keys:        active,
		MemoryUsage: c.currentMemory,
		Evictions:   atomic.LoadInt64(&c.evictions),
	}
}

func (c *MemoryCache) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpired()
		case <-c.cleanupDone:
			return
		}
	}
}

func (c *MemoryCache) cleanupExpired() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	for key, item := range c.items {
		if item.expired(now) {
			c.removeLocked(key, item)
		}
	}
}

// evictIfNeeded drops expired items, then the items closest to expiry,
// until usage fits. keep is never evicted.
func (c *MemoryCache) evictIfNeeded(keep string) {
	if c.maxMemory <= 0 || c.currentMemory <= c.maxMemory {
		return
	}

	now := time.Now()
	for key, item := range c.items {
		if key != keep && item.expired(now) {
			c.removeLocked(key, item)
			atomic.AddInt64(&c.evictions, 1)
		}
	}

	for c.currentMemory > c.maxMemory {
		victim := ""
		var victimItem *cacheItem
		for key, item := range c.items {
			if key == keep {
				continue
			}
			if victimItem == nil || item.expiration.Before(victimItem.expiration) {
				victim, victimItem = key, item
			}
		}
		if victimItem == nil {
			return
		}
		c.removeLocked(victim, victimItem)
		atomic.AddInt64(&c.evictions, 1)
	}
}

// removeLocked deletes key and releases its accounted memory. Caller holds the write lock.
func (c *MemoryCache) removeLocked(key string, item *cacheItem) {
	delete(c.items, key)
	c.currentMemory -= itemSize(key, item)
}

// itemSize estimates memory usage for a cache item: key + value + overhead
func itemSize(key string, item *cacheItem) int64 {
	return int64(len(key) + len(item.value) + 64)
}

func hitRatio(hits, misses int64) float64 {
	if total := hits + misses; total > 0 {
		return float64(hits) / float64(total)
	}
	return 0
}

// matchPattern implements glob matching with the * wildcard only
func matchPattern(text, pattern string) bool {
	if pattern == "*" {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return text == pattern
	}

	parts := strings.Split(pattern, "*")
	if !strings.HasPrefix(text, parts[0]) {
		return false
	}
	text = text[len(parts[0]):]

	last := parts[len(parts)-1]
	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(text, part)
		if idx < 0 {
			return false
		}
		text = text[idx+len(part):]
	}
	return strings.HasSuffix(text, last)
}
