// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package client

import (
	"context"
	"net/http"

	"github.com/sage-x-project/marketplace/pkg/types"
)

// LogsResource groups the log-ingestion and log-lookup endpoints under
// Client.Logs.
type LogsResource struct {
	c *Client
}

// Create appends a log entry to the marketplace's log journal.
func (r *LogsResource) Create(ctx context.Context, entry types.Log) (*types.Log, error) {
	var resp struct {
		Log types.Log `json:"log"`
	}
	body := types.LogCreateRequest{Log: entry}
	if err := r.c.do(ctx, http.MethodPost, "/logs/create", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Log, nil
}

// List returns a page of log entries.
func (r *LogsResource) List(ctx context.Context, offset, limit *int) (*types.LogListResponse, error) {
	var resp types.LogListResponse
	path := "/logs" + buildQuery(offset, limit)
	if err := r.c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
