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
	"time"

	"github.com/sage-x-project/marketplace/client"
	"github.com/sage-x-project/marketplace/observability/logging"
	"github.com/sage-x-project/marketplace/pkg/errors"
	"github.com/sage-x-project/marketplace/pkg/types"
)

const defaultErrorBackoff = time.Second

// Builder constructs a Runtime with a fluent API.
type Builder struct {
	rt  *Runtime
	err error
}

// NewBuilder starts building a Runtime for the given participant profile.
func NewBuilder(self types.Participant) *Builder {
	return &Builder{
		rt: &Runtime{
			self:         self,
			errorBackoff: defaultErrorBackoff,
			logger:       logging.NewStructuredLogger(logging.LevelInfo),
		},
	}
}

// WithClient sets the marketplace client the runtime drives actions
// through.
func (b *Builder) WithClient(c *client.Client) *Builder {
	b.rt.c = c
	return b
}

// WithPolicy sets the domain behavior the runtime invokes at each
// lifecycle point.
func (b *Builder) WithPolicy(p Policy) *Builder {
	b.rt.policy = p
	return b
}

// WithLogger overrides the default local logger. Combine with
// NewDualLogger to also forward entries to the marketplace's log
// journal.
func (b *Builder) WithLogger(l logging.Logger) *Builder {
	b.rt.logger = l
	return b
}

// WithErrorBackoff overrides how long the loop sleeps after a Step
// error before retrying, when not already shutting down.
func (b *Builder) WithErrorBackoff(d time.Duration) *Builder {
	b.rt.errorBackoff = d
	return b
}

// Build validates configuration and returns the Runtime.
func (b *Builder) Build() (*Runtime, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.rt.c == nil {
		return nil, errors.ErrMissingField.WithDetail("field", "client")
	}
	if b.rt.policy == nil {
		return nil, errors.ErrMissingField.WithDetail("field", "policy")
	}
	if b.rt.self.ID == "" {
		return nil, errors.ErrMissingField.WithDetail("field", "self.id")
	}
	return b.rt, nil
}
