// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package handlers

import (
	"context"
	"testing"

	"github.com/sage-x-project/marketplace/pkg/types"
	"github.com/sage-x-project/marketplace/storage"
)

func TestSendMessage_RecipientNotFound(t *testing.T) {
	backend := storage.NewMemoryBackend()
	alice := createTestParticipant(t, backend, "alice")

	req := types.ActionExecutionRequest{
		Name: types.ActionSendMessage,
		Parameters: map[string]interface{}{
			"to_agent_id": "ghost",
			"message":     types.NewTextMessage("hello?"),
		},
	}
	result, err := (SendMessage{}).Execute(context.Background(), alice, req, backend)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected is_error result for unknown recipient")
	}
	if result.Content["error_type"] != "recipient_not_found" {
		t.Errorf("error_type = %v, want recipient_not_found", result.Content["error_type"])
	}
}

func TestSendMessage_TextMessageSucceeds(t *testing.T) {
	backend := storage.NewMemoryBackend()
	alice := createTestParticipant(t, backend, "alice")
	createTestParticipant(t, backend, "bob")

	req := types.ActionExecutionRequest{
		Name: types.ActionSendMessage,
		Parameters: map[string]interface{}{
			"to_agent_id": "bob",
			"message":     types.NewTextMessage("hi bob"),
		},
	}
	result, err := (SendMessage{}).Execute(context.Background(), alice, req, backend)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %+v", result.Content)
	}
	if result.Metadata["status"] != "sent" {
		t.Errorf("metadata status = %v, want sent", result.Metadata["status"])
	}
}

func TestSendMessage_PaymentWithoutMatchingProposalFails(t *testing.T) {
	backend := storage.NewMemoryBackend()
	alice := createTestParticipant(t, backend, "alice")
	createTestParticipant(t, backend, "bob")

	req := types.ActionExecutionRequest{
		Name: types.ActionSendMessage,
		Parameters: map[string]interface{}{
			"to_agent_id": "bob",
			"message":     types.NewPayment(types.Payment{ProposalID: "nope", Amount: 10}),
		},
	}
	result, err := (SendMessage{}).Execute(context.Background(), alice, req, backend)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.IsError || result.Content["error_type"] != "invalid_proposal" {
		t.Fatalf("result = %+v, want invalid_proposal error", result)
	}
}

func TestSendMessage_PaymentWithMatchingProposalSucceeds(t *testing.T) {
	backend := storage.NewMemoryBackend()
	alice := createTestParticipant(t, backend, "alice")
	createTestParticipant(t, backend, "bob")

	proposal := types.OrderProposal{
		ProposalID: "prop-1",
		Items:      []types.OrderItem{{Name: "coffee", Quantity: 1, Price: 4.5}},
		TotalPrice: 4.5,
	}
	sendAction(t, backend, "bob", "alice", types.NewOrderProposal(proposal))

	req := types.ActionExecutionRequest{
		Name: types.ActionSendMessage,
		Parameters: map[string]interface{}{
			"to_agent_id": "bob",
			"message":     types.NewPayment(types.Payment{ProposalID: "prop-1", Amount: 4.5}),
		},
	}
	result, err := (SendMessage{}).Execute(context.Background(), alice, req, backend)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %+v", result.Content)
	}
}
