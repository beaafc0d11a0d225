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

// Package agent drives a marketplace participant's long-lived
// cooperative loop.
//
// A Runtime owns the lifecycle mechanics -- connect, register, loop,
// shutdown -- and calls into a Policy at the points where domain
// behavior belongs: OnStarted, Step (repeated), OnWillStop, OnStopped.
// Domain code never sees the loop itself, only these four hooks plus
// the Client and Logger the Runtime hands it.
//
// # Quick Start
//
//	rt, err := agent.NewBuilder(types.Participant{ID: "customer-1"}).
//	    WithClient(c).
//	    WithPolicy(myPolicy).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := rt.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Lifecycle
//
//  1. Register with the marketplace; the server-issued token is fixed on
//     the client and the server-assigned id is kept as Runtime.Self.
//  2. Call Policy.OnStarted.
//  3. Loop until Shutdown is observed: call Policy.Step. A Step error is
//     logged; unless shutting down, the loop sleeps an error backoff and
//     continues.
//  4. Call Policy.OnWillStop, then Policy.OnStopped, flush the logger,
//     and close the client.
//
// Shutdown is a flag set by Runtime.Shutdown; it is only observed at the
// next loop boundary, never pre-empting a Step already in flight.
//
// # Dual Logging
//
// NewDualLogger wraps a local logging.Logger and forwards every entry,
// best-effort, to the marketplace's log journal through
// client.Logs.Create, so a participant's activity is visible both in its
// own process logs and in GET /logs.
package agent
