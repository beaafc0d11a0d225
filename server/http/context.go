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

package http

import (
	"context"

	"github.com/sage-x-project/marketplace/pkg/types"
)

type callerKey struct{}

// withCaller attaches the authenticated participant to ctx.
func withCaller(ctx context.Context, p *types.Participant) context.Context {
	return context.WithValue(ctx, callerKey{}, p)
}

// callerFrom returns the participant the auth middleware attached to
// ctx, or nil if the route is unauthenticated.
func callerFrom(ctx context.Context) *types.Participant {
	p, _ := ctx.Value(callerKey{}).(*types.Participant)
	return p
}
