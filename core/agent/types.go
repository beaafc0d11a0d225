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

import "context"

// Policy is the behavior a participant brings to the marketplace. A
// Runtime owns the connect/register/loop/shutdown mechanics and calls
// into Policy at the points where domain behavior belongs.
type Policy interface {
	// OnStarted runs once, after registration succeeds and before the
	// first Step call.
	OnStarted(ctx context.Context, rt *Runtime) error

	// Step runs once per loop iteration. It may perform any number of
	// actions through rt.Client() and may sleep internally between
	// iterations where nothing happened; Runtime imposes no poll
	// interval of its own. A returned error is logged and does not stop
	// the loop unless the Runtime is already shutting down.
	Step(ctx context.Context, rt *Runtime) error

	// OnWillStop runs once, after the loop observes shutdown and before
	// OnStopped.
	OnWillStop(ctx context.Context, rt *Runtime) error

	// OnStopped runs once, after OnWillStop, as the last hook before the
	// Runtime closes its client.
	OnStopped(ctx context.Context, rt *Runtime) error
}
