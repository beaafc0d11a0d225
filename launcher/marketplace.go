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

// Package launcher starts and stops the marketplace gateway and drives
// groups of agents against it, mirroring the lifecycle the reference
// platform's MarketplaceLauncher/AgentLauncher expose as async context
// managers: a goroutine running the HTTP server, health-probed with
// exponential backoff until ready, and stopped on exit.
package launcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sage-x-project/marketplace/client"
	httpserver "github.com/sage-x-project/marketplace/server/http"
)

// MarketplaceLauncher runs the gateway in the background and exposes a
// health-probed Start and a graceful Stop.
type MarketplaceLauncher struct {
	server   *httpserver.Server
	errCh    chan error
	shutdown time.Duration
}

// NewMarketplaceLauncher wraps server. shutdownTimeout bounds how long
// Stop waits for in-flight requests to drain.
func NewMarketplaceLauncher(server *httpserver.Server, shutdownTimeout time.Duration) *MarketplaceLauncher {
	return &MarketplaceLauncher{server: server, shutdown: shutdownTimeout}
}

// Start launches the gateway in a background goroutine and blocks until
// GET /health succeeds, probing up to maxRetries times in all with an
// exponential backoff between probes. It returns once the server is confirmed healthy, or
// the error from the final failed probe (or the server itself, if it
// exited before ever becoming healthy).
func (l *MarketplaceLauncher) Start(ctx context.Context, maxRetries int, initialDelay, maxDelay time.Duration) error {
	l.errCh = make(chan error, 1)
	go func() {
		l.errCh <- l.server.ListenAndServe()
	}()

	healthClient, err := client.NewClient("http://" + dialAddr(l.server.Addr()))
	if err != nil {
		return err
	}
	defer healthClient.Close()

	delay := initialDelay
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		select {
		case err := <-l.errCh:
			if err != nil {
				return fmt.Errorf("server exited before becoming healthy: %w", err)
			}
			return fmt.Errorf("server stopped before becoming healthy")
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if _, err := healthClient.HealthCheck(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}

	return fmt.Errorf("server failed to become healthy after %d attempts: %w", maxRetries, lastErr)
}

// dialAddr rewrites a listen address's wildcard host (e.g. "0.0.0.0" or
// "") to a loopback address dialable from within the same process, since
// a server configured to listen on all interfaces cannot be dialed back
// using that same address on every platform.
func dialAddr(addr string) string {
	if strings.HasPrefix(addr, "0.0.0.0:") {
		return "127.0.0.1" + strings.TrimPrefix(addr, "0.0.0.0")
	}
	if strings.HasPrefix(addr, ":") {
		return "127.0.0.1" + addr
	}
	return addr
}

// Stop gracefully shuts the gateway down and waits for its ListenAndServe
// goroutine to return.
func (l *MarketplaceLauncher) Stop(ctx context.Context) error {
	if err := l.server.Shutdown(ctx, l.shutdown); err != nil {
		return err
	}
	return <-l.errCh
}
