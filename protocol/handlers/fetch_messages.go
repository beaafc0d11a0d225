// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package handlers

import (
	"context"

	"github.com/sage-x-project/marketplace/pkg/types"
	"github.com/sage-x-project/marketplace/storage"
	"github.com/sage-x-project/marketplace/storage/query"
)

// FetchMessages projects the actions journal into the caller's received
// messages: every send_message action whose to_agent_id is the caller,
// optionally narrowed to one sender, ordered ascending by row index.
type FetchMessages struct{}

// Execute implements protocol.Handler.
func (FetchMessages) Execute(ctx context.Context, caller *types.Participant, req types.ActionExecutionRequest, backend storage.Backend) (types.ActionExecutionResult, error) {
	var params types.FetchMessagesParams
	if err := DecodeParams(req.Parameters, &params); err != nil {
		return ErrorResult("invalid_parameters", err.Error()), nil
	}

	q := query.AndAll(
		query.Leaf{Path: "request.name", Operator: query.OpEq, Value: string(types.ActionSendMessage)},
		query.Leaf{Path: "request.parameters.to_agent_id", Operator: query.OpEq, Value: caller.ID},
	)
	if params.FromAgentID != nil {
		q = query.AndAll(q, query.Leaf{Path: "agent_id", Operator: query.OpEq, Value: *params.FromAgentID})
	}

	rangeParams := query.RangeQueryParams{
		Offset:     params.Offset,
		After:      params.After,
		AfterIndex: params.AfterIndex,
	}

	// An omitted or non-positive limit means "every matching row, no
	// pagination": fetch unbounded and never report more beyond it.
	var limit int
	hasLimit := params.Limit != nil && *params.Limit > 0
	if hasLimit {
		limit = *params.Limit
		// Request one extra row: if it comes back, there is more beyond limit.
		fetchLimit := limit + 1
		rangeParams.Limit = &fetchLimit
	}

	rows, err := backend.Actions().Find(ctx, q, rangeParams)
	if err != nil {
		return types.ActionExecutionResult{}, err
	}

	hasMore := hasLimit && len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	messages := make([]types.ReceivedMessage, 0, len(rows))
	for _, row := range rows {
		var sendParams types.SendMessageParams
		if err := DecodeParams(row.Request.Parameters, &sendParams); err != nil {
			continue
		}
		messages = append(messages, types.ReceivedMessage{
			FromAgentID: row.AgentID,
			ToAgentID:   sendParams.ToAgentID,
			Message:     sendParams.Message,
			RowIndex:    row.RowIndex,
			CreatedAt:   row.CreatedAt,
		})
	}

	return SuccessResult(types.FetchMessagesResult{Messages: messages, HasMore: hasMore})
}
