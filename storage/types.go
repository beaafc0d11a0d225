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

// Package storage defines the table-controller contract every backend
// (in-memory, single-file bbolt, sharded-local, Postgres) implements
// identically, and the Backend aggregate the rest of the marketplace
// depends on instead of any one concrete backend.
package storage

import (
	"context"

	"github.com/sage-x-project/marketplace/pkg/types"
	"github.com/sage-x-project/marketplace/storage/query"
)

// ParticipantController stores registered agents, keyed by their
// allocated id, and resolves auth tokens back to a participant.
type ParticipantController interface {
	Create(ctx context.Context, p *types.Participant) error
	GetByID(ctx context.Context, id string) (*types.Participant, error)
	GetByToken(ctx context.Context, token string) (*types.Participant, error)
	GetAll(ctx context.Context, params query.RangeQueryParams) ([]*types.Participant, error)
	Find(ctx context.Context, q query.Query, params query.RangeQueryParams) ([]*types.Participant, error)
	// FindByIDPattern returns every participant whose id matches the
	// regular expression pattern, used by the id allocator to find the
	// highest existing numeric suffix for a base id.
	FindByIDPattern(ctx context.Context, pattern string) ([]*types.Participant, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, q query.Query) (int, error)
}

// ActionController stores the append-only log of dispatched actions.
type ActionController interface {
	Create(ctx context.Context, a *types.Action) error
	GetByID(ctx context.Context, id string) (*types.Action, error)
	GetAll(ctx context.Context, params query.RangeQueryParams) ([]*types.Action, error)
	Find(ctx context.Context, q query.Query, params query.RangeQueryParams) ([]*types.Action, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, q query.Query) (int, error)
}

// LogController stores structured log entries submitted by agents and by
// the marketplace itself.
type LogController interface {
	Create(ctx context.Context, l *types.Log) error
	GetByID(ctx context.Context, id string) (*types.Log, error)
	GetAll(ctx context.Context, params query.RangeQueryParams) ([]*types.Log, error)
	Find(ctx context.Context, q query.Query, params query.RangeQueryParams) ([]*types.Log, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, q query.Query) (int, error)
}

// Backend aggregates the three table controllers behind one storage
// technology. RowIndexColumn names the column/field every controller uses
// as its authoritative insertion-order key, surfaced so cursor-based
// pagination can be documented consistently across backends.
type Backend interface {
	Participants() ParticipantController
	Actions() ActionController
	Logs() LogController
	RowIndexColumn() string
	Close() error
}
