// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package client

import (
	"context"
	"net/http"

	"github.com/sage-x-project/marketplace/pkg/types"
)

// ActionsResource groups the action-execution and protocol-discovery
// endpoints under Client.Actions.
type ActionsResource struct {
	c *Client
}

// Execute dispatches req to the marketplace's registered action
// handler and returns its result. A business-level failure is reported
// through ActionExecutionResult.IsError, not a Go error; a non-nil
// error here means the request itself could not be completed.
func (r *ActionsResource) Execute(ctx context.Context, req types.ActionExecutionRequest) (*types.ActionExecutionResult, error) {
	var resp types.ActionExecuteResponse
	body := types.ActionExecuteRequest{Request: req}
	if err := r.c.do(ctx, http.MethodPost, "/actions/execute", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

// Protocol lists every action the marketplace currently advertises.
func (r *ActionsResource) Protocol(ctx context.Context) ([]types.ActionDescriptor, error) {
	var resp types.ActionProtocolResponse
	if err := r.c.do(ctx, http.MethodGet, "/actions/protocol", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Actions, nil
}
