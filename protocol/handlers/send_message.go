// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package handlers

import (
	"context"

	"github.com/sage-x-project/marketplace/pkg/errors"
	"github.com/sage-x-project/marketplace/pkg/types"
	"github.com/sage-x-project/marketplace/storage"
	"github.com/sage-x-project/marketplace/storage/query"
)

// SendMessage validates a send_message action: the recipient must exist,
// and a payment must reference a proposal the recipient actually sent to
// the sender. Persisting the action row is the gateway's job, run after
// Execute returns, independent of whether this returns a business error.
type SendMessage struct{}

// Execute implements protocol.Handler.
func (SendMessage) Execute(ctx context.Context, sender *types.Participant, req types.ActionExecutionRequest, backend storage.Backend) (types.ActionExecutionResult, error) {
	var params types.SendMessageParams
	if err := DecodeParams(req.Parameters, &params); err != nil {
		return ErrorResult("invalid_parameters", err.Error()), nil
	}

	if _, err := backend.Participants().GetByID(ctx, params.ToAgentID); err != nil {
		if errors.IsNotFound(err) {
			return ErrorResult("recipient_not_found", "recipient not found"), nil
		}
		return types.ActionExecutionResult{}, err
	}

	if params.Message.Type == types.MessageTypePayment && params.Message.Payment != nil {
		if err := validateProposal(ctx, backend, sender.ID, params.ToAgentID, params.Message.Payment.ProposalID); err != nil {
			return ErrorResult("invalid_proposal", err.Error()), nil
		}
	}

	result, err := SuccessResult(params)
	if err != nil {
		return types.ActionExecutionResult{}, err
	}
	result.Metadata = map[string]interface{}{"status": "sent"}
	return result, nil
}

// validateProposal confirms proposalID names an order proposal actually
// sent by recipientID to senderID. The proposal's ExpiresAt is
// deliberately not checked here -- see OrderProposal's doc comment.
func validateProposal(ctx context.Context, backend storage.Backend, senderID, recipientID, proposalID string) error {
	q := query.AndAll(
		query.Leaf{Path: "request.name", Operator: query.OpEq, Value: string(types.ActionSendMessage)},
		query.Leaf{Path: "agent_id", Operator: query.OpEq, Value: recipientID},
		query.Leaf{Path: "request.parameters.to_agent_id", Operator: query.OpEq, Value: senderID},
		query.Leaf{Path: "request.parameters.message.type", Operator: query.OpEq, Value: string(types.MessageTypeOrderProposal)},
		query.Leaf{Path: "request.parameters.message.order_proposal.proposal_id", Operator: query.OpEq, Value: proposalID},
	)

	rows, err := backend.Actions().Find(ctx, q, query.RangeQueryParams{})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return errors.ErrInvalidProposal
	}
	return nil
}
