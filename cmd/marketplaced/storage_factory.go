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

package main

import (
	"fmt"

	"github.com/sage-x-project/marketplace/config"
	"github.com/sage-x-project/marketplace/storage"
	"github.com/sage-x-project/marketplace/storage/boltbackend"
	storagecache "github.com/sage-x-project/marketplace/storage/cache"
	"github.com/sage-x-project/marketplace/storage/sharded"
)

// newBackend builds the storage.Backend named by cfg.Type, wrapping it
// in a Redis participant cache when cfg.Cache is enabled.
func newBackend(cfg *config.StorageConfig) (storage.Backend, error) {
	backend, err := newRawBackend(cfg)
	if err != nil {
		return nil, err
	}

	if !cfg.Cache.Enabled {
		return backend, nil
	}

	return storagecache.WrapBackend(backend, storagecache.RedisConfig{
		Address:  cfg.Cache.Address,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
		TTL:      cfg.Cache.TTL,
	})
}

// newRawBackend builds the uncached storage.Backend named by cfg.Type.
func newRawBackend(cfg *config.StorageConfig) (storage.Backend, error) {
	switch cfg.Type {
	case "", "memory":
		return storage.NewMemoryBackend(), nil

	case "bolt":
		return boltbackend.Open(cfg.BoltPath)

	case "sharded":
		return sharded.Open(cfg.ShardDir, cfg.ShardCount)

	case "postgres":
		pgCfg := &storage.PostgresConfig{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			User:            cfg.Postgres.User,
			Password:        cfg.Postgres.Password,
			Database:        cfg.Postgres.Database,
			SSLMode:         cfg.Postgres.SSLMode,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
			AutoMigrate:     cfg.Postgres.AutoMigrate,
		}
		return storage.NewPostgresBackend(pgCfg)

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
