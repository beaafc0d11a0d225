// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sage-x-project/marketplace/core/agent"
	"github.com/sage-x-project/marketplace/observability/logging"
	"github.com/sage-x-project/marketplace/pkg/types"
	"github.com/sage-x-project/marketplace/protocol/handlers"
)

// echoPolicy is the default policy `marketplaced agent run` drives when
// no custom binary wires its own: it polls for new messages and replies
// to each sender with an echo, the same canned behavior the teacher's
// default message handler provided for a quick, runnable agent.
type echoPolicy struct {
	pollInterval time.Duration
	afterIndex   *int64
}

func newEchoPolicy(pollInterval time.Duration) *echoPolicy {
	return &echoPolicy{pollInterval: pollInterval}
}

func (p *echoPolicy) OnStarted(ctx context.Context, rt *agent.Runtime) error {
	rt.Logger().Info(ctx, "agent started", logging.String("agent_id", rt.Self().ID))
	return nil
}

func (p *echoPolicy) Step(ctx context.Context, rt *agent.Runtime) error {
	params := types.FetchMessagesParams{AfterIndex: p.afterIndex}
	result, err := rt.Client().Actions.Execute(ctx, types.ActionExecutionRequest{
		Name:       types.ActionFetchMessages,
		Parameters: mustParams(params),
	})
	if err != nil {
		return err
	}
	if result.IsError {
		return fmt.Errorf("fetch_messages failed: %v", result.Content)
	}

	var fetched types.FetchMessagesResult
	if err := handlers.DecodeParams(result.Content, &fetched); err != nil {
		return err
	}

	for _, msg := range fetched.Messages {
		idx := msg.RowIndex
		p.afterIndex = &idx

		if msg.Message.Type != types.MessageTypeText || msg.Message.Text == nil {
			continue
		}

		reply := types.SendMessageParams{
			ToAgentID: msg.FromAgentID,
			Message:   types.NewTextMessage("Echo: " + msg.Message.Text.Content),
		}
		if _, err := rt.Client().Actions.Execute(ctx, types.ActionExecutionRequest{
			Name:       types.ActionSendMessage,
			Parameters: mustParams(reply),
		}); err != nil {
			rt.Logger().Error(ctx, "failed to send echo reply", logging.Error(err))
		}
	}

	select {
	case <-ctx.Done():
	case <-time.After(p.pollInterval):
	}
	return nil
}

func (p *echoPolicy) OnWillStop(ctx context.Context, rt *agent.Runtime) error {
	rt.Logger().Info(ctx, "agent stopping")
	return nil
}

func (p *echoPolicy) OnStopped(ctx context.Context, rt *agent.Runtime) error {
	rt.Logger().Info(ctx, "agent stopped")
	return nil
}

// mustParams round-trips a typed params struct into the free-form map
// ActionExecutionRequest.Parameters expects, the same json round trip
// handlers.DecodeParams uses in reverse.
func mustParams(v interface{}) map[string]interface{} {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return out
}
