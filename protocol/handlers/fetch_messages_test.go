// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package handlers

import (
	"context"
	"testing"

	"github.com/sage-x-project/marketplace/pkg/types"
	"github.com/sage-x-project/marketplace/storage"
)

func createTestParticipant(t *testing.T, backend storage.Backend, id string) *types.Participant {
	t.Helper()
	p := &types.Participant{ID: id, Metadata: map[string]interface{}{}}
	if err := backend.Participants().Create(context.Background(), p); err != nil {
		t.Fatalf("create participant %s: %v", id, err)
	}
	return p
}

var sendActionSeq int

func sendAction(t *testing.T, backend storage.Backend, from, to string, msg types.Message) {
	t.Helper()
	params := map[string]interface{}{"to_agent_id": to, "message": msg}
	raw, _ := SuccessResult(params)
	sendActionSeq++
	action := &types.Action{
		ID:      from + "-" + to + "-" + string(msg.Type) + "-" + string(rune('0'+sendActionSeq)),
		AgentID: from,
		Request: types.ActionExecutionRequest{Name: types.ActionSendMessage, Parameters: raw.Content},
		Result:  types.ActionExecutionResult{Content: map[string]interface{}{"status": "sent"}},
	}
	if err := backend.Actions().Create(context.Background(), action); err != nil {
		t.Fatalf("create action: %v", err)
	}
}

func TestFetchMessages_ReturnsOnlyAddressedMessages(t *testing.T) {
	backend := storage.NewMemoryBackend()
	alice := createTestParticipant(t, backend, "alice")
	createTestParticipant(t, backend, "bob")
	createTestParticipant(t, backend, "carol")

	sendAction(t, backend, "bob", "alice", types.NewTextMessage("hi alice"))
	sendAction(t, backend, "carol", "bob", types.NewTextMessage("hi bob, not alice"))

	req := types.ActionExecutionRequest{Name: types.ActionFetchMessages, Parameters: map[string]interface{}{}}
	result, err := (FetchMessages{}).Execute(context.Background(), alice, req, backend)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %+v", result.Content)
	}

	var decoded types.FetchMessagesResult
	if err := DecodeParams(result.Content, &decoded); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(decoded.Messages) != 1 {
		t.Fatalf("len(messages) = %d, want 1", len(decoded.Messages))
	}
	if decoded.Messages[0].FromAgentID != "bob" {
		t.Errorf("FromAgentID = %s, want bob", decoded.Messages[0].FromAgentID)
	}
}

func TestFetchMessages_HasMoreWhenMoreThanLimit(t *testing.T) {
	backend := storage.NewMemoryBackend()
	alice := createTestParticipant(t, backend, "alice")
	createTestParticipant(t, backend, "bob")

	for i := 0; i < 3; i++ {
		sendAction(t, backend, "bob", "alice", types.NewTextMessage(string(rune('a'+i))))
	}

	limit := 2
	req := types.ActionExecutionRequest{
		Name:       types.ActionFetchMessages,
		Parameters: map[string]interface{}{"limit": limit},
	}
	result, err := (FetchMessages{}).Execute(context.Background(), alice, req, backend)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var decoded types.FetchMessagesResult
	if err := DecodeParams(result.Content, &decoded); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(decoded.Messages) != limit {
		t.Fatalf("len(messages) = %d, want %d", len(decoded.Messages), limit)
	}
	if !decoded.HasMore {
		t.Error("HasMore = false, want true")
	}
}

func TestFetchMessages_OmittedLimitReturnsEverythingWithoutHasMore(t *testing.T) {
	backend := storage.NewMemoryBackend()
	alice := createTestParticipant(t, backend, "alice")
	createTestParticipant(t, backend, "bob")

	for i := 0; i < 25; i++ {
		sendAction(t, backend, "bob", "alice", types.NewTextMessage(string(rune('a'+i))))
	}

	req := types.ActionExecutionRequest{Name: types.ActionFetchMessages, Parameters: map[string]interface{}{}}
	result, err := (FetchMessages{}).Execute(context.Background(), alice, req, backend)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var decoded types.FetchMessagesResult
	if err := DecodeParams(result.Content, &decoded); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(decoded.Messages) != 25 {
		t.Fatalf("len(messages) = %d, want 25 (no implicit cap)", len(decoded.Messages))
	}
	if decoded.HasMore {
		t.Error("HasMore = true, want false (unbounded fetch)")
	}
}

func TestFetchMessages_ExplicitZeroLimitReturnsEverythingWithoutHasMore(t *testing.T) {
	backend := storage.NewMemoryBackend()
	alice := createTestParticipant(t, backend, "alice")
	createTestParticipant(t, backend, "bob")

	for i := 0; i < 3; i++ {
		sendAction(t, backend, "bob", "alice", types.NewTextMessage(string(rune('a'+i))))
	}

	req := types.ActionExecutionRequest{
		Name:       types.ActionFetchMessages,
		Parameters: map[string]interface{}{"limit": 0},
	}
	result, err := (FetchMessages{}).Execute(context.Background(), alice, req, backend)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var decoded types.FetchMessagesResult
	if err := DecodeParams(result.Content, &decoded); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(decoded.Messages) != 3 {
		t.Fatalf("len(messages) = %d, want 3", len(decoded.Messages))
	}
	if decoded.HasMore {
		t.Error("HasMore = true, want false (explicit limit:0 is falsy, unbounded)")
	}
}

func TestFetchMessages_FiltersByFromAgentID(t *testing.T) {
	backend := storage.NewMemoryBackend()
	alice := createTestParticipant(t, backend, "alice")
	createTestParticipant(t, backend, "bob")
	createTestParticipant(t, backend, "carol")

	sendAction(t, backend, "bob", "alice", types.NewTextMessage("from bob"))
	sendAction(t, backend, "carol", "alice", types.NewTextMessage("from carol"))

	from := "carol"
	req := types.ActionExecutionRequest{
		Name:       types.ActionFetchMessages,
		Parameters: map[string]interface{}{"from_agent_id": from},
	}
	result, err := (FetchMessages{}).Execute(context.Background(), alice, req, backend)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var decoded types.FetchMessagesResult
	if err := DecodeParams(result.Content, &decoded); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(decoded.Messages) != 1 || decoded.Messages[0].FromAgentID != "carol" {
		t.Fatalf("messages = %+v, want exactly one from carol", decoded.Messages)
	}
}
