package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/qolzam/devconnector/internal/pkg/log"
)

// GenericCacheService stores JSON values under prefixed keys on top of a Cache backend.
// A nil *GenericCacheService is valid and behaves as a disabled cache.
type GenericCacheService struct {
	cache  Cache
	config *CacheConfig
	stats  serviceStats
}

// serviceStats tracks cache service statistics with atomic operations for thread safety
type serviceStats struct {
	hits    int64
	misses  int64
	errors  int64
	sets    int64
	deletes int64
}

// NewGenericCacheService creates a new generic cache service
func NewGenericCacheService(cache Cache, config *CacheConfig) *GenericCacheService {
	if config == nil {
		config = DefaultCacheConfig()
	}
	return &GenericCacheService{
		cache:  cache,
		config: config,
	}
}

// IsEnabled returns whether caching is enabled
func (gcs *GenericCacheService) IsEnabled() bool {
	return gcs != nil && gcs.config.Enabled && gcs.cache != nil
}

// GetCached retrieves and unmarshals cached data into target
func (gcs *GenericCacheService) GetCached(ctx context.Context, key string, target interface{}) error {
	if !gcs.IsEnabled() {
		return ErrCacheDisabled
	}

	fullKey := gcs.buildKey(key)
	data, err := gcs.cache.Get(ctx, fullKey)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			atomic.AddInt64(&gcs.stats.misses, 1)
		} else {
			atomic.AddInt64(&gcs.stats.errors, 1)
			log.Error("Cache get error for key %s: %v", fullKey, err)
		}
		return err
	}

	if err := json.Unmarshal(data, target); err != nil {
		atomic.AddInt64(&gcs.stats.errors, 1)
		log.Error("Cache data unmarshal error for key %s: %v", fullKey, err)
		return fmt.Errorf("%w: %v", ErrDeserializationFailed, err)
	}

	atomic.AddInt64(&gcs.stats.hits, 1)
	return nil
}

// CacheData marshals and stores data with the configured TTL, or ttl[0] when given
func (gcs *GenericCacheService) CacheData(ctx context.Context, key string, data interface{}, ttl ...time.Duration) error {
	if !gcs.IsEnabled() {
		return ErrCacheDisabled
	}

	cacheTTL := gcs.config.TTL
	if len(ttl) > 0 && ttl[0] > 0 {
		cacheTTL = ttl[0]
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		atomic.AddInt64(&gcs.stats.errors, 1)
		return fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}

	fullKey := gcs.buildKey(key)
	if err := gcs.cache.Set(ctx, fullKey, jsonData, cacheTTL); err != nil {
		atomic.AddInt64(&gcs.stats.errors, 1)
		log.Error("Cache set error for key %s: %v", fullKey, err)
		return err
	}

	atomic.AddInt64(&gcs.stats.sets, 1)
	return nil
}

// InvalidatePattern removes all cache keys matching the given pattern
func (gcs *GenericCacheService) InvalidatePattern(ctx context.Context, pattern string) error {
	if !gcs.IsEnabled() {
		return ErrCacheDisabled
	}

	fullPattern := gcs.buildKey(pattern)
	if err := gcs.cache.DeletePattern(ctx, fullPattern); err != nil {
		atomic.AddInt64(&gcs.stats.errors, 1)
		log.Error("Cache pattern invalidation error for pattern %s: %v", fullPattern, err)
		return err
	}

	atomic.AddInt64(&gcs.stats.deletes, 1)
	return nil
}

// InvalidateKey removes a specific key from cache
func (gcs *GenericCacheService) InvalidateKey(ctx context.Context, key string) error {
	if !gcs.IsEnabled() {
		return ErrCacheDisabled
	}

	fullKey := gcs.buildKey(key)
	if err := gcs.cache.Delete(ctx, fullKey); err != nil {
		atomic.AddInt64(&gcs.stats.errors, 1)
		log.Error("Cache key invalidation error for key %s: %v", fullKey, err)
		return err
	}

	atomic.AddInt64(&gcs.stats.deletes, 1)
	return nil
}

// Ping checks the backend; a disabled service reports ErrCacheDisabled
func (gcs *GenericCacheService) Ping(ctx context.Context) error {
	if !gcs.IsEnabled() {
		return ErrCacheDisabled
	}
	return gcs.cache.Ping(ctx)
}

// GetStats merges service-level hit counters with backend statistics
func (gcs *GenericCacheService) GetStats() CacheStats {
	if !gcs.IsEnabled() {
		return CacheStats{}
	}

	backend := gcs.cache.Stats()
	hits := atomic.LoadInt64(&gcs.stats.hits)
	misses := atomic.LoadInt64(&gcs.stats.misses)

	return CacheStats{
		Hits:        hits,
		Misses:      misses,
		HitRatio:    hitRatio(hits, misses),
		Keys:        backend.Keys,
		MemoryUsage: backend.MemoryUsage,
		Evictions:   backend.Evictions,
	}
}

// Close closes the cache backend
func (gcs *GenericCacheService) Close() error {
	if gcs == nil || gcs.cache == nil {
		return nil
	}
	return gcs.cache.Close()
}

// buildKey constructs the full cache key with prefix
func (gcs *GenericCacheService) buildKey(key string) string {
	if gcs.config.Prefix == "" {
		return key
	}

	// Ensure prefix ends with a colon
	prefix := gcs.config.Prefix
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return prefix + key
}
