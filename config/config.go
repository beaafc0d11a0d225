// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package config

import (
	"time"
)

// Config is the complete configuration for a marketplace process,
// whether it is running the gateway (`marketplaced serve`) or an agent
// (`marketplaced agent run`).
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Agent     AgentConfig
	Search    SearchConfig
	Logging   LoggingConfig
	Metrics   MetricsConfig
	RateLimit RateLimitConfig
}

// ServerConfig contains the gateway's HTTP listener settings.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// CORSAllowedOrigins lists the origins the gateway's CORS middleware
	// accepts; "*" allows any origin.
	CORSAllowedOrigins []string
}

// StorageConfig selects and configures one of the four storage backends.
type StorageConfig struct {
	// Type is one of "memory", "bolt", "sharded", "postgres".
	Type string

	// BoltPath is the bbolt database file path, used when Type is "bolt".
	BoltPath string

	// ShardDir and ShardCount configure the sharded backend, used when
	// Type is "sharded".
	ShardDir   string
	ShardCount int

	Postgres PostgresConfig

	Cache ParticipantCacheConfig
}

// ParticipantCacheConfig configures an optional Redis read-through cache
// placed in front of the chosen backend's participant lookups.
type ParticipantCacheConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

// PostgresConfig contains PostgreSQL connection settings, used when
// StorageConfig.Type is "postgres".
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// AgentConfig contains the settings an `agent run` process needs to
// connect to and register with a marketplace.
type AgentConfig struct {
	ID             string
	MarketplaceURL string
	ProfilePath    string
	ErrorBackoff   time.Duration
	RequestTimeout time.Duration
	MaxRetries     int
	RetryInitial   time.Duration
	RetryMax       time.Duration
	RetryJitter    float64
}

// SearchConfig tunes the search handler's defaults.
type SearchConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level   string // "debug", "info", "warn", "error"
	Backend string // "structured" or "zap"
}

// MetricsConfig contains metrics and monitoring configuration.
type MetricsConfig struct {
	Enabled bool
	Port    int
	Path    string
}

// RateLimitConfig configures the gateway's per-participant request
// throttle.
type RateLimitConfig struct {
	Enabled bool

	// Algorithm is one of "token_bucket" or "sliding_window".
	Algorithm string

	// RatePerSecond is the sustained requests-per-second allowance,
	// used by the token_bucket algorithm.
	RatePerSecond float64

	// Burst is the token bucket capacity, i.e. the largest burst above
	// RatePerSecond a single key may spend at once.
	Burst int

	// WindowLimit and WindowSize configure the sliding_window
	// algorithm: WindowLimit requests per WindowSize.
	WindowLimit int
	WindowSize  time.Duration
}

// DefaultConfig returns a configuration with default values: an
// in-memory storage backend listening on 0.0.0.0:8080, suitable for
// local development without any external dependency.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8080,
			ReadTimeout:        30 * time.Second,
			WriteTimeout:       30 * time.Second,
			ShutdownTimeout:    10 * time.Second,
			CORSAllowedOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Type:       "memory",
			BoltPath:   "marketplace.db",
			ShardDir:   "marketplace-shards",
			ShardCount: 4,
			Postgres: PostgresConfig{
				Host:            "localhost",
				Port:            5432,
				SSLMode:         "disable",
				MaxOpenConns:    10,
				MaxIdleConns:    5,
				ConnMaxLifetime: 30 * time.Minute,
				AutoMigrate:     true,
			},
			Cache: ParticipantCacheConfig{
				Enabled: false,
				Address: "localhost:6379",
				TTL:     1 * time.Minute,
			},
		},
		Agent: AgentConfig{
			MarketplaceURL: "http://localhost:8080",
			ErrorBackoff:   time.Second,
			RequestTimeout: 30 * time.Second,
			MaxRetries:     3,
			RetryInitial:   100 * time.Millisecond,
			RetryMax:       5 * time.Second,
			RetryJitter:    0.2,
		},
		Search: SearchConfig{
			DefaultLimit: 20,
			MaxLimit:     100,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Backend: "structured",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
		RateLimit: RateLimitConfig{
			Enabled:       false,
			Algorithm:     "token_bucket",
			RatePerSecond: 50,
			Burst:         100,
			WindowLimit:   1000,
			WindowSize:    time.Minute,
		},
	}
}

// NewConfig creates a new default configuration.
// This is an alias for DefaultConfig().
func NewConfig() *Config {
	return DefaultConfig()
}
