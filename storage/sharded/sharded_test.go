// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package sharded

import (
	"context"
	"fmt"
	"testing"

	"github.com/sage-x-project/marketplace/pkg/types"
	"github.com/sage-x-project/marketplace/storage/query"
)

func TestBackend_CreateSpreadsAcrossShards(t *testing.T) {
	ctx := context.Background()
	b, err := Open(t.TempDir(), 4)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("B-%d", i)
		if err := b.Participants().Create(ctx, &types.Participant{ID: id}); err != nil {
			t.Fatalf("Create(%s): %v", id, err)
		}
	}

	got, err := b.Participants().GetByID(ctx, "B-5")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ID != "B-5" {
		t.Fatalf("ID = %s, want B-5", got.ID)
	}

	count, err := b.Participants().Count(ctx, nil)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 20 {
		t.Fatalf("Count = %d, want 20", count)
	}
}

func TestBackend_FindMergesAndPaginatesAcrossShards(t *testing.T) {
	ctx := context.Background()
	b, err := Open(t.TempDir(), 3)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("A-%d", i)
		if err := b.Actions().Create(ctx, &types.Action{ID: id, AgentID: "agent-1"}); err != nil {
			t.Fatalf("Create(%s): %v", id, err)
		}
	}

	limit := 4
	page1, err := b.Actions().Find(ctx, nil, query.RangeQueryParams{Limit: &limit})
	if err != nil {
		t.Fatalf("Find page1: %v", err)
	}
	if len(page1) != 4 {
		t.Fatalf("len(page1) = %d, want 4", len(page1))
	}

	offset := 4
	page2, err := b.Actions().Find(ctx, nil, query.RangeQueryParams{Offset: &offset, Limit: &limit})
	if err != nil {
		t.Fatalf("Find page2: %v", err)
	}
	if len(page2) != 4 {
		t.Fatalf("len(page2) = %d, want 4", len(page2))
	}

	seen := map[string]bool{}
	for _, a := range append(page1, page2...) {
		if seen[a.ID] {
			t.Fatalf("duplicate id %s across pages", a.ID)
		}
		seen[a.ID] = true
	}
}

func TestBackend_GetByTokenScansAllShards(t *testing.T) {
	ctx := context.Background()
	b, err := Open(t.TempDir(), 4)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	token := "tok-xyz"
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("B-%d", i)
		p := &types.Participant{ID: id}
		if id == "B-6" {
			p.AuthToken = &token
		}
		if err := b.Participants().Create(ctx, p); err != nil {
			t.Fatalf("Create(%s): %v", id, err)
		}
	}

	got, err := b.Participants().GetByToken(ctx, token)
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if got.ID != "B-6" {
		t.Fatalf("ID = %s, want B-6", got.ID)
	}
}
