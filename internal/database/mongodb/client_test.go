// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package mongodb

import (
	"testing"

	"github.com/qolzam/devconnector/internal/database/interfaces"
	"github.com/stretchr/testify/assert"
)

func TestBuildConnectionURI(t *testing.T) {
	tests := []struct {
		name   string
		config interfaces.MongoDBConfig
		want   string
	}{
		{
			name:   "host only",
			config: interfaces.MongoDBConfig{Host: "localhost", Port: 27017},
			want:   "mongodb://localhost:27017",
		},
		{
			name: "credentials and auth source",
			config: interfaces.MongoDBConfig{
				Host: "db", Port: 27018, Username: "app", Password: "p@ss", AuthDatabase: "admin",
			},
			want: "mongodb://app:p%40ss@db:27018/?authSource=admin",
		},
		{
			name:   "replica set and ssl",
			config: interfaces.MongoDBConfig{Host: "db", Port: 27017, ReplicaSet: "rs0", SSL: true},
			want:   "mongodb://db:27017/?replicaSet=rs0&ssl=true",
		},
		{
			name:   "explicit uri wins",
			config: interfaces.MongoDBConfig{URI: "mongodb+srv://cluster.example.net", Host: "ignored"},
			want:   "mongodb+srv://cluster.example.net",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildConnectionURI(&tt.config))
		})
	}
}
