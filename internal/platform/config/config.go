// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported values for DB_TYPE
const (
	DatabaseMongoDB    = "mongodb"
	DatabasePostgreSQL = "postgresql"
	DatabaseMemory     = "memory"
)

// Config is the root configuration of the API server
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	JWT      JWTConfig      `json:"jwt"`
	Cache    CacheConfig    `json:"cache"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	BaseRoute       string        `json:"baseRoute"`
	WebDomain       string        `json:"webDomain"`
	Debug           bool          `json:"debug"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects and configures the post store
type DatabaseConfig struct {
	Type     string           `json:"type"`
	Mongo    MongoDBConfig    `json:"mongo"`
	Postgres PostgreSQLConfig `json:"postgres"`
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI            string        `json:"uri"`
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	Username       string        `json:"username"`
	Password       string        `json:"password"`
	Database       string        `json:"database"`
	AuthDatabase   string        `json:"authDatabase"`
	MaxPoolSize    int           `json:"maxPoolSize"`
	ConnectTimeout time.Duration `json:"connectTimeout"`
}

// PostgreSQLConfig holds PostgreSQL-specific configuration
type PostgreSQLConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Username        string        `json:"username"`
	Password        string        `json:"password"`
	Database        string        `json:"database"`
	SSLMode         string        `json:"sslMode"`
	MaxOpenConns    int           `json:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime"`
}

// JWTConfig holds the identity verifier configuration
type JWTConfig struct {
	PublicKey string `json:"publicKey"`
	ClaimKey  string `json:"claimKey"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Enabled         bool          `json:"enabled"`
	Backend         string        `json:"backend"`
	TTL             time.Duration `json:"ttl"`
	Prefix          string        `json:"prefix"`
	MaxMemory       int64         `json:"maxMemory"`
	CleanupInterval time.Duration `json:"cleanupInterval"`
	Redis           RedisConfig   `json:"redis"`
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Address      string        `json:"address"`
	Password     string        `json:"password"`
	Database     int           `json:"database"`
	PoolSize     int           `json:"poolSize"`
	MinIdleConns int           `json:"minIdleConns"`
	MaxConnAge   time.Duration `json:"maxConnAge"`
}

// LoadFromEnv loads configuration from the environment.
// It follows a clear precedence:
// 1. Explicit Environment Variables (e.g., set in the shell or by CI)
// 2. Values from the .env file (if it exists)
// 3. Hardcoded defaults (if applicable)
func LoadFromEnv() (*Config, error) {
	// godotenv.Load never overrides variables that are already set.
	envPaths := []string{".env", "../.env", "../../.env"}

	var loadErr error
	for _, envPath := range envPaths {
		loadErr = godotenv.Load(envPath)
		if loadErr == nil {
			break
		}
	}
	if loadErr != nil {
		fmt.Println("INFO: .env file not found, using environment variables and defaults.")
	}

	return load(os.LookupEnv)
}

// LoadFromMap loads configuration from an in-memory map.
// This is the primary helper for testing configuration logic in isolation
// without manipulating global environment variables.
func LoadFromMap(envMap map[string]string) (*Config, error) {
	return load(func(key string) (string, bool) {
		value, ok := envMap[key]
		return value, ok
	})
}

func load(lookup func(string) (string, bool)) (*Config, error) {
	e := env{lookup: lookup}

	config := &Config{
		Server: ServerConfig{
			Host:            e.str("HOST", "localhost"),
			Port:            e.int("SERVER_PORT", 8080),
			BaseRoute:       e.str("BASE_ROUTE", "/api"),
			WebDomain:       e.str("WEB_DOMAIN", "http://localhost:3000"),
			Debug:           e.bool("DEBUG", false),
			ShutdownTimeout: e.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Type: e.str("DB_TYPE", DatabaseMongoDB),
			Mongo: MongoDBConfig{
				URI:            e.str("MONGO_URI", ""),
				Host:           e.str("MONGO_HOST", "localhost"),
				Port:           e.int("MONGO_PORT", 27017),
				Username:       e.str("MONGO_USERNAME", ""),
				Password:       e.str("MONGO_PASSWORD", ""),
				Database:       e.str("MONGO_DATABASE", "devconnector"),
				AuthDatabase:   e.str("MONGO_AUTH_DATABASE", ""),
				MaxPoolSize:    e.int("MONGO_MAX_POOL_SIZE", 50),
				ConnectTimeout: e.duration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
			},
			Postgres: PostgreSQLConfig{
				Host:            e.str("POSTGRES_HOST", "localhost"),
				Port:            e.int("POSTGRES_PORT", 5432),
				Username:        e.str("POSTGRES_USERNAME", ""),
				Password:        e.str("POSTGRES_PASSWORD", ""),
				Database:        e.str("POSTGRES_DATABASE", "devconnector"),
				SSLMode:         e.str("POSTGRES_SSL_MODE", "disable"),
				MaxOpenConns:    e.int("POSTGRES_MAX_OPEN_CONNS", 25),
				MaxIdleConns:    e.int("POSTGRES_MAX_IDLE_CONNS", 25),
				ConnMaxLifetime: time.Duration(e.int("POSTGRES_CONN_MAX_LIFETIME", 300)) * time.Second,
			},
		},
		JWT: JWTConfig{
			PublicKey: e.str("JWT_PUBLIC_KEY", ""),
			ClaimKey:  e.str("JWT_CLAIM_KEY", "claim"),
		},
		Cache: CacheConfig{
			Enabled:         e.bool("CACHE_ENABLED", true),
			Backend:         e.str("CACHE_BACKEND", "memory"),
			TTL:             e.duration("CACHE_TTL", 1*time.Hour),
			Prefix:          e.str("CACHE_PREFIX", "devconnector:"),
			MaxMemory:       e.int64("CACHE_MAX_MEMORY", 100*1024*1024), // 100MB default
			CleanupInterval: e.duration("CACHE_CLEANUP_INTERVAL", 5*time.Minute),
			Redis: RedisConfig{
				Address:      e.str("REDIS_ADDRESS", "localhost:6379"),
				Password:     e.str("REDIS_PASSWORD", ""),
				Database:     e.int("REDIS_DATABASE", 0),
				PoolSize:     e.int("REDIS_POOL_SIZE", 10),
				MinIdleConns: e.int("REDIS_MIN_IDLE_CONNS", 5),
				MaxConnAge:   time.Duration(e.int("REDIS_MAX_CONN_AGE", 300)) * time.Second,
			},
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration for required fields
func (c *Config) Validate() error {
	var errors []string

	if strings.TrimSpace(c.JWT.PublicKey) == "" {
		errors = append(errors, "JWT_PUBLIC_KEY is required")
	}
	if strings.TrimSpace(c.JWT.ClaimKey) == "" {
		errors = append(errors, "JWT_CLAIM_KEY must not be empty")
	}

	validDbTypes := []string{DatabaseMongoDB, DatabasePostgreSQL, DatabaseMemory}
	if !contains(validDbTypes, c.Database.Type) {
		errors = append(errors, fmt.Sprintf("DB_TYPE must be one of: %s", strings.Join(validDbTypes, ", ")))
	}

	validBackends := []string{"memory", "redis"}
	if c.Cache.Enabled && !contains(validBackends, c.Cache.Backend) {
		errors = append(errors, fmt.Sprintf("CACHE_BACKEND must be one of: %s", strings.Join(validBackends, ", ")))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errors = append(errors, "SERVER_PORT must be between 1 and 65535")
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// env reads typed values through a lookup function, falling back to
// defaults on missing or unparsable input.
type env struct {
	lookup func(string) (string, bool)
}

func (e env) str(key, defaultValue string) string {
	if value, ok := e.lookup(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func (e env) int(key string, defaultValue int) int {
	if value, ok := e.lookup(key); ok && value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (e env) int64(key string, defaultValue int64) int64 {
	if value, ok := e.lookup(key); ok && value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (e env) bool(key string, defaultValue bool) bool {
	if value, ok := e.lookup(key); ok && value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func (e env) duration(key string, defaultValue time.Duration) time.Duration {
	if value, ok := e.lookup(key); ok && value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
