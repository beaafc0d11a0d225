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

/*
Package client is a thin HTTP client for the marketplace gateway.

# Overview

A Client wraps a shared, reference-counted connection pool, a bearer
token, and an exponential-backoff-with-jitter retry policy behind three
grouped resources: Agents, Actions, and Logs. Registering an agent
fixes the server-issued token on the client, so subsequent calls are
already authenticated, and returns the registered participant carrying
the server-assigned id.

# Quick Start

	c, err := client.NewClient("http://localhost:8080")
	if err != nil {
	    log.Fatal(err)
	}
	defer c.Close()

	resp, err := c.Agents.Register(ctx, types.Participant{
	    ID:       "customer",
	    Metadata: map[string]interface{}{"kind": "customer"},
	})
	if err != nil {
	    log.Fatal(err)
	}

	result, err := c.Actions.Execute(ctx, types.ActionExecutionRequest{
	    Name:       types.ActionSearch,
	    Parameters: map[string]interface{}{"search_algorithm": "simple"},
	})

# Configuration

	c, err := client.NewClient(
	    baseURL,
	    client.WithTimeout(60*time.Second),
	    client.WithRetry(5, 200*time.Millisecond, 10*time.Second, 0.2),
	    client.WithUserAgent("my-agent/1.0.0"),
	)

# Retry and Error Handling

Requests that fail with a 429 or a connection/timeout error are retried
up to maxRetries times with exponential backoff and symmetric jitter;
4xx client errors other than 429 are never retried. Errors are typed via
pkg/errors:

	if _, err := c.Actions.Execute(ctx, req); err != nil {
	    if errors.IsUnauthorized(err) {
	        // token missing or invalid
	    }
	}

# Connection Pooling

Multiple Client values that share the same base URL, timeout, and retry
identity reuse one underlying *http.Transport, reference-counted so the
pool's idle connections are only closed once every sharing Client has
been Closed.

# Thread Safety

Client and its resources are safe for concurrent use by multiple
goroutines.
*/
package client
