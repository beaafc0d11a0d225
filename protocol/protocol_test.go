// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package protocol

import (
	"context"
	"testing"

	"github.com/sage-x-project/marketplace/pkg/errors"
	"github.com/sage-x-project/marketplace/pkg/types"
	"github.com/sage-x-project/marketplace/protocol/handlers"
	"github.com/sage-x-project/marketplace/storage"
)

func TestRegistry_DispatchesToRegisteredHandler(t *testing.T) {
	called := false
	r := NewRegistry()
	r.Register(types.ActionName("ping"), types.ActionDescriptor{Name: types.ActionName("ping")}, HandlerFunc(
		func(ctx context.Context, caller *types.Participant, req types.ActionExecutionRequest, backend storage.Backend) (types.ActionExecutionResult, error) {
			called = true
			return types.ActionExecutionResult{Content: map[string]interface{}{"pong": true}}, nil
		},
	))

	result, err := r.ExecuteAction(context.Background(), nil, types.ActionExecutionRequest{Name: types.ActionName("ping")}, nil)
	if err != nil {
		t.Fatalf("ExecuteAction: %v", err)
	}
	if !called {
		t.Fatal("handler was not invoked")
	}
	if result.Content["pong"] != true {
		t.Errorf("result = %+v", result)
	}
}

func TestRegistry_UnknownActionReturnsError(t *testing.T) {
	r := NewRegistry()
	_, err := r.ExecuteAction(context.Background(), nil, types.ActionExecutionRequest{Name: types.ActionName("nope")}, nil)
	if !errors.Is(err, errors.ErrUnknownAction) {
		t.Fatalf("err = %v, want ErrUnknownAction", err)
	}
}

func TestNewDefault_AdvertisesThreeActions(t *testing.T) {
	r := NewDefault()
	actions := r.Actions()
	if len(actions) != 3 {
		t.Fatalf("len(actions) = %d, want 3", len(actions))
	}

	names := map[types.ActionName]bool{}
	for _, a := range actions {
		names[a.Name] = true
	}
	for _, want := range []types.ActionName{types.ActionSendMessage, types.ActionFetchMessages, types.ActionSearch} {
		if !names[want] {
			t.Errorf("missing action %s", want)
		}
	}
}

func TestNewDefault_EndToEndSendAndFetch(t *testing.T) {
	backend := storage.NewMemoryBackend()
	r := NewDefault()

	alice := &types.Participant{ID: "alice", Metadata: map[string]interface{}{}}
	bob := &types.Participant{ID: "bob", Metadata: map[string]interface{}{}}
	if err := backend.Participants().Create(context.Background(), alice); err != nil {
		t.Fatalf("create alice: %v", err)
	}
	if err := backend.Participants().Create(context.Background(), bob); err != nil {
		t.Fatalf("create bob: %v", err)
	}

	sendReq := types.ActionExecutionRequest{
		Name: types.ActionSendMessage,
		Parameters: map[string]interface{}{
			"to_agent_id": "bob",
			"message":     types.NewTextMessage("hello bob"),
		},
	}
	sendResult, err := r.ExecuteAction(context.Background(), alice, sendReq, backend)
	if err != nil {
		t.Fatalf("send ExecuteAction: %v", err)
	}
	if sendResult.IsError {
		t.Fatalf("send result is error: %+v", sendResult.Content)
	}

	action := &types.Action{ID: "action-1", AgentID: alice.ID, Request: sendReq, Result: sendResult}
	if err := backend.Actions().Create(context.Background(), action); err != nil {
		t.Fatalf("persist action: %v", err)
	}

	fetchReq := types.ActionExecutionRequest{Name: types.ActionFetchMessages, Parameters: map[string]interface{}{}}
	fetchResult, err := r.ExecuteAction(context.Background(), bob, fetchReq, backend)
	if err != nil {
		t.Fatalf("fetch ExecuteAction: %v", err)
	}

	var decoded types.FetchMessagesResult
	if err := handlers.DecodeParams(fetchResult.Content, &decoded); err != nil {
		t.Fatalf("decode fetch result: %v", err)
	}
	if len(decoded.Messages) != 1 {
		t.Fatalf("messages = %+v, want 1 entry", decoded.Messages)
	}
	if decoded.Messages[0].FromAgentID != "alice" {
		t.Errorf("FromAgentID = %s, want alice", decoded.Messages[0].FromAgentID)
	}
}
