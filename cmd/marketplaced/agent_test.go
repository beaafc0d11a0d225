// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProfile_Empty(t *testing.T) {
	metadata, err := loadProfile("")
	if err != nil {
		t.Fatalf("loadProfile: %v", err)
	}
	if len(metadata) != 0 {
		t.Errorf("expected empty metadata, got %v", metadata)
	}
}

func TestLoadProfile_ValidFile(t *testing.T) {
	tempDir := t.TempDir()
	profilePath := filepath.Join(tempDir, "profile.yaml")

	content := `
business:
  name: Test Cafe
  description: a place for coffee
  rating: 4.5
`
	if err := os.WriteFile(profilePath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write profile: %v", err)
	}

	metadata, err := loadProfile(profilePath)
	if err != nil {
		t.Fatalf("loadProfile: %v", err)
	}
	business, ok := metadata["business"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected business key, got %v", metadata)
	}
	if business["name"] != "Test Cafe" {
		t.Errorf("expected name 'Test Cafe', got %v", business["name"])
	}
}

func TestLoadProfile_MissingFile(t *testing.T) {
	if _, err := loadProfile("/nonexistent/profile.yaml"); err == nil {
		t.Error("expected error for missing profile file")
	}
}

func TestMustParams(t *testing.T) {
	type payload struct {
		Foo string `json:"foo"`
	}
	out := mustParams(payload{Foo: "bar"})
	if out["foo"] != "bar" {
		t.Errorf("expected foo=bar, got %v", out)
	}
}
