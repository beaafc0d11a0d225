// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package boltbackend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sage-x-project/marketplace/pkg/types"
)

func TestBackend_CreateGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "marketplace.db")

	b, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	token := "tok-1"
	p := &types.Participant{ID: "B-1", Metadata: map[string]interface{}{"name": "acme"}, AuthToken: &token}
	if err := b.Participants().Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.RowIndex != 1 {
		t.Fatalf("RowIndex = %d, want 1", p.RowIndex)
	}

	got, err := b.Participants().GetByToken(ctx, token)
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if got.ID != "B-1" {
		t.Fatalf("ID = %s, want B-1", got.ID)
	}
}

func TestBackend_ReopenPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "marketplace.db")

	b1, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := b1.Actions().Create(ctx, &types.Action{ID: "a1", AgentID: "B-1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := b1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b2.Close()

	a, err := b2.Actions().GetByID(ctx, "a1")
	if err != nil {
		t.Fatalf("GetByID after reopen: %v", err)
	}
	if a.AgentID != "B-1" {
		t.Fatalf("AgentID = %s, want B-1", a.AgentID)
	}
}
