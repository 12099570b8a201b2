// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package mongodb

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/qolzam/devconnector/internal/database/interfaces"
	"github.com/qolzam/devconnector/internal/pkg/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Client wraps a connected mongo.Client bound to one database.
type Client struct {
	client   *mongo.Client
	database *mongo.Database
	dbName   string
}

var _ interfaces.HealthChecker = (*Client)(nil)

// NewClient connects to MongoDB and verifies the connection with a ping.
func NewClient(ctx context.Context, config *interfaces.MongoDBConfig, databaseName string) (*Client, error) {
	uri := buildConnectionURI(config)

	clientOptions := options.Client().ApplyURI(uri)

	if config.MaxPoolSize > 0 {
		clientOptions.SetMaxPoolSize(uint64(config.MaxPoolSize))
	}
	if config.MinPoolSize > 0 {
		clientOptions.SetMinPoolSize(uint64(config.MinPoolSize))
	}
	if config.ConnectTimeout > 0 {
		clientOptions.SetConnectTimeout(config.ConnectTimeout)
		clientOptions.SetServerSelectionTimeout(config.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Info("connected to MongoDB database %q", databaseName)

	return &Client{
		client:   client,
		database: client.Database(databaseName),
		dbName:   databaseName,
	}, nil
}

// buildConnectionURI builds MongoDB connection URI from config.
// An explicit URI wins over the discrete fields.
func buildConnectionURI(config *interfaces.MongoDBConfig) string {
	if config.URI != "" {
		return config.URI
	}

	var b strings.Builder
	b.WriteString("mongodb://")

	if config.Username != "" && config.Password != "" {
		b.WriteString(url.QueryEscape(config.Username))
		b.WriteString(":")
		b.WriteString(url.QueryEscape(config.Password))
		b.WriteString("@")
	}

	fmt.Fprintf(&b, "%s:%d", config.Host, config.Port)

	query := url.Values{}
	if config.AuthDatabase != "" {
		query.Set("authSource", config.AuthDatabase)
	}
	if config.ReplicaSet != "" {
		query.Set("replicaSet", config.ReplicaSet)
	}
	if config.SSL {
		query.Set("ssl", "true")
	}
	if len(query) > 0 {
		b.WriteString("/?")
		b.WriteString(query.Encode())
	}

	return b.String()
}

// Collection returns a handle to the named collection.
func (c *Client) Collection(name string) *mongo.Collection {
	return c.database.Collection(name)
}

// Database returns the bound database.
// This is useful for administrative operations in tests, like dropping a database.
func (c *Client) Database() *mongo.Database {
	return c.database
}

// Ping tests the database connection
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.client.Disconnect(context.Background())
}
