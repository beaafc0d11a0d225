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

package agent

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sage-x-project/marketplace/client"
	"github.com/sage-x-project/marketplace/observability/logging"
	"github.com/sage-x-project/marketplace/pkg/types"
)

// Runtime drives one participant's long-lived cooperative loop:
// register, OnStarted, repeated Step until shutdown, OnWillStop,
// OnStopped, close.
type Runtime struct {
	c      *client.Client
	policy Policy
	self   types.Participant
	logger logging.Logger

	errorBackoff time.Duration

	shuttingDown atomic.Bool
}

// Self returns the registered participant, including the server-assigned
// id once Run has completed registration.
func (r *Runtime) Self() types.Participant {
	return r.self
}

// Client returns the marketplace client this runtime is driving actions
// through.
func (r *Runtime) Client() *client.Client {
	return r.c
}

// Logger returns the runtime's logger.
func (r *Runtime) Logger() logging.Logger {
	return r.logger
}

// Shutdown flags the runtime to stop. The flag is only observed at the
// next loop boundary, matching spec'd "shutdown() is a flag-set".
func (r *Runtime) Shutdown() {
	r.shuttingDown.Store(true)
}

// ShuttingDown reports whether Shutdown has been called.
func (r *Runtime) ShuttingDown() bool {
	return r.shuttingDown.Load()
}

// Run executes the full lifecycle: register, OnStarted, loop(Step) until
// shutdown, OnWillStop, OnStopped, close. It returns a registration
// failure or an OnStarted error at once; otherwise it returns the
// client's Close error. Per-iteration Step errors and OnWillStop or
// OnStopped errors are logged, and ctx cancellation is treated as a
// shutdown, not returned as an error.
func (r *Runtime) Run(ctx context.Context) error {
	registered, err := r.c.Agents.Register(ctx, r.self)
	if err != nil {
		return err
	}
	r.self = *registered

	r.logger = r.logger.With(logging.String("agent_id", r.self.ID))

	if err := r.policy.OnStarted(ctx, r); err != nil {
		return err
	}

	for !r.shuttingDown.Load() {
		select {
		case <-ctx.Done():
			r.shuttingDown.Store(true)
		default:
		}
		if r.shuttingDown.Load() {
			break
		}

		if err := r.policy.Step(ctx, r); err != nil {
			r.logger.Error(ctx, "step failed", logging.Error(err))
			if r.shuttingDown.Load() {
				break
			}
			select {
			case <-ctx.Done():
				r.shuttingDown.Store(true)
			case <-time.After(r.errorBackoff):
			}
		}
	}

	if err := r.policy.OnWillStop(ctx, r); err != nil {
		r.logger.Error(ctx, "OnWillStop failed", logging.Error(err))
	}
	if err := r.policy.OnStopped(ctx, r); err != nil {
		r.logger.Error(ctx, "OnStopped failed", logging.Error(err))
	}

	if s, ok := r.logger.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}

	return r.c.Close()
}
