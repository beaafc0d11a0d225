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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "MARKETPLACE"

// LoadFromFile loads configuration from path (any format viper supports
// -- YAML, JSON, TOML -- determined by extension), applying
// MARKETPLACE_<SECTION>_<FIELD> environment variable overrides on top of
// the file, then validates the result.
func LoadFromFile(path string) (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	v.SetConfigFile(path)

	if err := v.MergeInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv builds a Config from defaults overlaid with
// MARKETPLACE_<SECTION>_<FIELD> environment variables only, with no
// config file.
func LoadFromEnv() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// newViper builds a *viper.Viper seeded with DefaultConfig's values and
// configured so MARKETPLACE_SERVER_PORT, MARKETPLACE_STORAGE_TYPE, etc.
// (the nested struct path joined with underscores, upper-cased) override
// them -- the nested-struct path joined with underscores, upper-cased.
func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults, err := structToMap(DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to seed config defaults: %w", err)
	}
	if err := v.MergeConfigMap(defaults); err != nil {
		return nil, fmt.Errorf("failed to merge config defaults: %w", err)
	}

	return v, nil
}

// structToMap round-trips cfg through JSON to get a plain
// map[string]interface{} viper can merge as its defaults layer.
func structToMap(cfg *Config) (map[string]interface{}, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
