// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"fmt"

	dbi "github.com/qolzam/devconnector/internal/database/interfaces"
	"github.com/qolzam/devconnector/internal/database/mongodb"
	"github.com/qolzam/devconnector/internal/database/postgres"
	platformconfig "github.com/qolzam/devconnector/internal/platform/config"
)

// noopHealthChecker backs the in-process store, which has no connection.
type noopHealthChecker struct{}

func (noopHealthChecker) Ping(ctx context.Context) error { return nil }
func (noopHealthChecker) Close() error                   { return nil }

// NewPostRepositoryFromConfig creates the PostRepository selected by
// DB_TYPE together with the client used for health checks and shutdown.
func NewPostRepositoryFromConfig(ctx context.Context, cfg *platformconfig.Config) (PostRepository, dbi.HealthChecker, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	switch cfg.Database.Type {
	case platformconfig.DatabaseMemory:
		return NewMemoryRepository(), noopHealthChecker{}, nil

	case platformconfig.DatabaseMongoDB:
		client, err := mongodb.NewClient(ctx, dbi.MongoFromPlatform(cfg.Database.Mongo), cfg.Database.Mongo.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create mongodb client: %w", err)
		}
		if err := EnsureMongoIndexes(ctx, client); err != nil {
			client.Close()
			return nil, nil, err
		}
		return NewMongoRepository(client), client, nil

	case platformconfig.DatabasePostgreSQL:
		client, err := postgres.NewClient(ctx, dbi.PostgresFromPlatform(cfg.Database.Postgres), cfg.Database.Postgres.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create postgres client: %w", err)
		}
		if err := EnsurePostgresSchema(ctx, client); err != nil {
			client.Close()
			return nil, nil, err
		}
		return NewPostgresRepository(client), client, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}
}
