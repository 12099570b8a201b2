package cache

import (
	"fmt"

	platformconfig "github.com/qolzam/devconnector/internal/platform/config"
	"github.com/qolzam/devconnector/internal/pkg/log"
)

// NewCache creates a cache backend based on the provided configuration
func NewCache(config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	switch config.Backend {
	case CacheTypeMemory:
		return NewMemoryCache(config), nil
	case CacheTypeRedis:
		return NewRedisCache(config)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidCacheType, config.Backend)
	}
}

// ConfigFromPlatform converts the loaded server configuration.
func ConfigFromPlatform(cfg platformconfig.CacheConfig) *CacheConfig {
	return &CacheConfig{
		Enabled:         cfg.Enabled,
		TTL:             cfg.TTL,
		Prefix:          cfg.Prefix,
		Backend:         CacheType(cfg.Backend),
		MaxMemory:       cfg.MaxMemory,
		CleanupInterval: cfg.CleanupInterval,
		Redis: RedisConfig{
			Address:      cfg.Redis.Address,
			Password:     cfg.Redis.Password,
			Database:     cfg.Redis.Database,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxConnAge:   cfg.Redis.MaxConnAge,
		},
	}
}

// NewServiceFromConfig builds the cache service for the server.
// It returns nil when caching is disabled. An unreachable Redis is logged and
// also yields nil so the server keeps serving from the store.
func NewServiceFromConfig(cfg platformconfig.CacheConfig) *GenericCacheService {
	if !cfg.Enabled {
		log.Info("cache disabled")
		return nil
	}

	config := ConfigFromPlatform(cfg)
	backend, err := NewCache(config)
	if err != nil {
		log.Warn("cache backend %q unavailable, continuing without cache: %v", config.Backend, err)
		return nil
	}

	log.Info("cache enabled (backend=%s, ttl=%s)", config.Backend, config.TTL)
	return NewGenericCacheService(backend, config)
}
