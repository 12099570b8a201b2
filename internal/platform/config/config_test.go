// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"JWT_PUBLIC_KEY": "-----BEGIN PUBLIC KEY-----\ntest\n-----END PUBLIC KEY-----",
	}
}

func TestLoadFromMap_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromMap(baseEnv())
	require.NoError(t, err)

	require.Equal(t, "localhost", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "/api", cfg.Server.BaseRoute)
	require.Equal(t, "localhost:8080", cfg.Server.Addr())
	require.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	require.False(t, cfg.Server.Debug)

	require.Equal(t, DatabaseMongoDB, cfg.Database.Type)
	require.Equal(t, "localhost", cfg.Database.Mongo.Host)
	require.Equal(t, 27017, cfg.Database.Mongo.Port)
	require.Equal(t, "devconnector", cfg.Database.Mongo.Database)
	require.Equal(t, 5432, cfg.Database.Postgres.Port)
	require.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	require.Equal(t, 300*time.Second, cfg.Database.Postgres.ConnMaxLifetime)

	require.Equal(t, "claim", cfg.JWT.ClaimKey)

	require.True(t, cfg.Cache.Enabled)
	require.Equal(t, "memory", cfg.Cache.Backend)
	require.Equal(t, 1*time.Hour, cfg.Cache.TTL)
	require.Equal(t, int64(100*1024*1024), cfg.Cache.MaxMemory)
	require.Equal(t, "localhost:6379", cfg.Cache.Redis.Address)
}

func TestLoadFromMap_Overrides(t *testing.T) {
	t.Parallel()

	env := baseEnv()
	env["SERVER_PORT"] = "9090"
	env["DEBUG"] = "true"
	env["SHUTDOWN_TIMEOUT"] = "3s"
	env["DB_TYPE"] = "postgresql"
	env["POSTGRES_HOST"] = "db.internal"
	env["POSTGRES_MAX_OPEN_CONNS"] = "7"
	env["CACHE_BACKEND"] = "redis"
	env["CACHE_TTL"] = "30s"
	env["REDIS_DATABASE"] = "2"
	env["JWT_CLAIM_KEY"] = "identity"

	cfg, err := LoadFromMap(env)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.True(t, cfg.Server.Debug)
	require.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, DatabasePostgreSQL, cfg.Database.Type)
	require.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	require.Equal(t, 7, cfg.Database.Postgres.MaxOpenConns)
	require.Equal(t, "redis", cfg.Cache.Backend)
	require.Equal(t, 30*time.Second, cfg.Cache.TTL)
	require.Equal(t, 2, cfg.Cache.Redis.Database)
	require.Equal(t, "identity", cfg.JWT.ClaimKey)
}

func TestLoadFromMap_UnparsableValuesFallBack(t *testing.T) {
	t.Parallel()

	env := baseEnv()
	env["SERVER_PORT"] = "not-a-number"
	env["CACHE_TTL"] = "forever"
	env["CACHE_ENABLED"] = "maybe"

	cfg, err := LoadFromMap(env)
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 1*time.Hour, cfg.Cache.TTL)
	require.True(t, cfg.Cache.Enabled)
}

func TestLoadFromMap_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing public key",
			env:     map[string]string{},
			wantErr: "JWT_PUBLIC_KEY is required",
		},
		{
			name: "unknown database type",
			env: map[string]string{
				"JWT_PUBLIC_KEY": "key",
				"DB_TYPE":        "cassandra",
			},
			wantErr: "DB_TYPE must be one of",
		},
		{
			name: "unknown cache backend",
			env: map[string]string{
				"JWT_PUBLIC_KEY": "key",
				"CACHE_BACKEND":  "memcached",
			},
			wantErr: "CACHE_BACKEND must be one of",
		},
		{
			name: "port out of range",
			env: map[string]string{
				"JWT_PUBLIC_KEY": "key",
				"SERVER_PORT":    "70000",
			},
			wantErr: "SERVER_PORT must be between",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := LoadFromMap(tt.env)
			require.Error(t, err)
			require.Nil(t, cfg)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_DisabledCacheIgnoresBackend(t *testing.T) {
	t.Parallel()

	env := baseEnv()
	env["CACHE_ENABLED"] = "false"
	env["CACHE_BACKEND"] = "anything"

	cfg, err := LoadFromMap(env)
	require.NoError(t, err)
	require.False(t, cfg.Cache.Enabled)
}
