// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package client

import (
	"context"
	"net/http"

	"github.com/sage-x-project/marketplace/pkg/types"
)

// AgentsResource groups the participant-registration and lookup
// endpoints under Client.Agents.
type AgentsResource struct {
	c *Client
}

// Register registers agent with the marketplace and fixes the
// server-assigned token on the owning Client, so every subsequent
// request on this Client is already authenticated as the new agent.
func (r *AgentsResource) Register(ctx context.Context, agent types.Participant) (*types.Participant, error) {
	var resp types.AgentRegistrationResponse
	req := types.AgentRegistrationRequest{Agent: agent}
	if err := r.c.do(ctx, http.MethodPost, "/agents/register", req, &resp); err != nil {
		return nil, err
	}
	r.c.SetToken(resp.Token)
	registered := resp.Agent
	return &registered, nil
}

// List returns a page of registered agents.
func (r *AgentsResource) List(ctx context.Context, offset, limit *int) (*types.AgentListResponse, error) {
	var resp types.AgentListResponse
	path := "/agents" + buildQuery(offset, limit)
	if err := r.c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get fetches one agent by id.
func (r *AgentsResource) Get(ctx context.Context, id string) (*types.Participant, error) {
	var resp types.AgentGetResponse
	if err := r.c.do(ctx, http.MethodGet, "/agents/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Agent, nil
}
