// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package interfaces

import (
	"context"
	"time"

	platformconfig "github.com/qolzam/devconnector/internal/platform/config"
)

// HealthChecker is implemented by every store client so the server can
// report readiness and release connections on shutdown.
type HealthChecker interface {
	Ping(ctx context.Context) error
	Close() error
}

// MongoDBConfig represents MongoDB specific connection settings
type MongoDBConfig struct {
	URI            string
	Host           string
	Port           int
	Username       string
	Password       string
	AuthDatabase   string
	ReplicaSet     string
	SSL            bool
	ConnectTimeout time.Duration
	MaxPoolSize    int
	MinPoolSize    int
}

// PostgreSQLConfig represents PostgreSQL specific connection settings
type PostgreSQLConfig struct {
	Host               string
	Port               int
	Username           string
	Password           string
	SSLMode            string
	ConnectTimeout     int
	MaxOpenConnections int
	MaxIdleConnections int
	MaxLifetime        time.Duration
}

// MongoFromPlatform converts the loaded server configuration.
func MongoFromPlatform(cfg platformconfig.MongoDBConfig) *MongoDBConfig {
	return &MongoDBConfig{
		URI:            cfg.URI,
		Host:           cfg.Host,
		Port:           cfg.Port,
		Username:       cfg.Username,
		Password:       cfg.Password,
		AuthDatabase:   cfg.AuthDatabase,
		ConnectTimeout: cfg.ConnectTimeout,
		MaxPoolSize:    cfg.MaxPoolSize,
	}
}

// PostgresFromPlatform converts the loaded server configuration.
func PostgresFromPlatform(cfg platformconfig.PostgreSQLConfig) *PostgreSQLConfig {
	return &PostgreSQLConfig{
		Host:               cfg.Host,
		Port:               cfg.Port,
		Username:           cfg.Username,
		Password:           cfg.Password,
		SSLMode:            cfg.SSLMode,
		MaxOpenConnections: cfg.MaxOpenConns,
		MaxIdleConnections: cfg.MaxIdleConns,
		MaxLifetime:        cfg.ConnMaxLifetime,
	}
}
