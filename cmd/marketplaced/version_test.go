// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"strings"
	"testing"
)

func TestVersionConstants(t *testing.T) {
	if version == "" {
		t.Error("version constant should not be empty")
	}
	if buildDate == "" {
		t.Error("buildDate constant should not be empty")
	}
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		t.Errorf("version should be in semantic versioning format, got: %s", version)
	}
}

func TestVersionCmd_VerboseFlag(t *testing.T) {
	if versionCmd.Flags().Lookup("verbose") == nil {
		t.Error("expected version command to have verbose flag")
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "agent", "version"} {
		if !names[want] {
			t.Errorf("expected rootCmd to have subcommand %q", want)
		}
	}
}
