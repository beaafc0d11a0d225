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

// Package config provides layered configuration for the marketplace
// gateway and agent processes, built on spf13/viper.
//
// Precedence, highest first:
//  1. MARKETPLACE_<SECTION>_<FIELD> environment variables
//  2. Configuration file (YAML, JSON, or TOML)
//  3. Default values (DefaultConfig)
//
// # Configuration Structure
//
//   - Server: gateway HTTP listener settings
//   - Storage: backend selection (memory, bolt, sharded, postgres)
//   - Agent: settings for connecting/registering an `agent run` process
//   - Search: search-handler pagination defaults
//   - Logging: level and backend (structured or zap)
//   - Metrics: Prometheus exporter settings
//
// # Usage
//
//	cfg, err := config.LoadFromFile("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// With no file, reading defaults and environment only:
//
//	cfg, err := config.LoadFromEnv()
//
// Environment variable override:
//
//	export MARKETPLACE_SERVER_PORT=9090
//	export MARKETPLACE_STORAGE_TYPE=postgres
//	export MARKETPLACE_STORAGE_POSTGRES_HOST=db.internal
//
// # Validation
//
// LoadFromFile and LoadFromEnv both call Config.Validate before
// returning; callers constructing a Config by hand should call it too.
package config
