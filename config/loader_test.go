// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFile_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "server:\n  port: 9191\nstorage:\n  type: bolt\n  boltpath: /tmp/test.db\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9191 {
		t.Fatalf("expected port 9191, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Type != "bolt" {
		t.Fatalf("expected bolt storage, got %q", cfg.Storage.Type)
	}
	if cfg.Search.DefaultLimit != DefaultConfig().Search.DefaultLimit {
		t.Fatal("unrelated default values should still come from DefaultConfig")
	}
}

func TestLoadFromFile_MissingFileReturnsError(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadFromFile_InvalidConfigFailsValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFromFile(path)
	if err == nil {
		t.Fatal("expected validation error for port 0")
	}
}

func TestLoadFromEnv_OverridesServerPort(t *testing.T) {
	t.Setenv("MARKETPLACE_SERVER_PORT", "7777")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 7777 {
		t.Fatalf("expected env override to set port 7777, got %d", cfg.Server.Port)
	}
}

func TestLoadFromEnv_WithoutOverridesMatchesDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != DefaultConfig().Server.Port {
		t.Fatalf("expected default port, got %d", cfg.Server.Port)
	}
}
