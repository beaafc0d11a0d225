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
	"github.com/sage-x-project/marketplace/pkg/errors"
)

// configError builds an errors.ErrConfigurationError carrying msg, the
// sentinel config/loader.go's caller (loadConfig in
// cmd/marketplaced/serve.go) sees when a process starts with a config
// that fails Validate.
func configError(msg string) error {
	return errors.ErrConfigurationError.WithMessage(msg)
}

// Validate validates the entire configuration.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateStorage(); err != nil {
		return err
	}

	if err := c.validateSearch(); err != nil {
		return err
	}

	if err := c.validateLogging(); err != nil {
		return err
	}

	if err := c.validateRateLimit(); err != nil {
		return err
	}

	return nil
}

// validateServer validates server configuration.
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return configError("server port must be between 1 and 65535")
	}

	if c.Server.ReadTimeout <= 0 {
		return configError("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return configError("server write timeout must be positive")
	}

	return nil
}

// validateStorage validates storage configuration.
func (c *Config) validateStorage() error {
	validTypes := map[string]bool{
		"memory":   true,
		"bolt":     true,
		"sharded":  true,
		"postgres": true,
	}

	if !validTypes[c.Storage.Type] {
		return configError("storage type must be one of: memory, bolt, sharded, postgres")
	}

	switch c.Storage.Type {
	case "bolt":
		if c.Storage.BoltPath == "" {
			return configError("bolt storage path must not be empty")
		}
	case "sharded":
		if c.Storage.ShardDir == "" {
			return configError("sharded storage directory must not be empty")
		}
		if c.Storage.ShardCount < 1 {
			return configError("sharded storage shard count must be at least 1")
		}
	case "postgres":
		if err := c.validatePostgres(); err != nil {
			return err
		}
	}

	if c.Storage.Cache.Enabled {
		if c.Storage.Cache.Address == "" {
			return configError("storage cache address must not be empty")
		}
		if c.Storage.Cache.TTL <= 0 {
			return configError("storage cache TTL must be positive")
		}
	}

	return nil
}

// validatePostgres validates PostgreSQL configuration.
func (c *Config) validatePostgres() error {
	if c.Storage.Postgres.Host == "" {
		return configError("postgres host must not be empty")
	}

	if c.Storage.Postgres.Port < 1 || c.Storage.Postgres.Port > 65535 {
		return configError("postgres port must be between 1 and 65535")
	}

	if c.Storage.Postgres.User == "" {
		return configError("postgres user must not be empty")
	}

	if c.Storage.Postgres.Database == "" {
		return configError("postgres database must not be empty")
	}

	return nil
}

// validateSearch validates search-handler defaults.
func (c *Config) validateSearch() error {
	if c.Search.DefaultLimit < 1 {
		return configError("search default limit must be at least 1")
	}

	if c.Search.MaxLimit < c.Search.DefaultLimit {
		return configError("search max limit must be at least the default limit")
	}

	return nil
}

// validateLogging validates logging configuration.
func (c *Config) validateLogging() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return configError("logging level must be one of: debug, info, warn, error")
	}

	validBackends := map[string]bool{
		"structured": true,
		"zap":        true,
	}
	if !validBackends[c.Logging.Backend] {
		return configError("logging backend must be one of: structured, zap")
	}

	return nil
}

// validateRateLimit validates rate limit configuration.
func (c *Config) validateRateLimit() error {
	if !c.RateLimit.Enabled {
		return nil
	}

	switch c.RateLimit.Algorithm {
	case "token_bucket":
		if c.RateLimit.RatePerSecond <= 0 {
			return configError("rate limit rate per second must be positive")
		}
		if c.RateLimit.Burst < 1 {
			return configError("rate limit burst must be at least 1")
		}
	case "sliding_window":
		if c.RateLimit.WindowLimit < 1 {
			return configError("rate limit window limit must be at least 1")
		}
		if c.RateLimit.WindowSize <= 0 {
			return configError("rate limit window size must be positive")
		}
	default:
		return configError("rate limit algorithm must be one of: token_bucket, sliding_window")
	}

	return nil
}
