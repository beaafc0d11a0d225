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

package launcher

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	agent "github.com/sage-x-project/marketplace/core/agent"
)

// runnable is the subset of *agent.Runtime the launcher needs: run the
// lifecycle, and flag it to stop.
type runnable interface {
	Run(ctx context.Context) error
	Shutdown()
}

var _ runnable = (*agent.Runtime)(nil)

// AgentLauncher runs groups of agent runtimes concurrently against an
// already-running marketplace.
type AgentLauncher struct {
	// DependentGrace bounds how long RunWithDependencies waits after
	// signalling dependents before it gives up waiting for them to
	// observe the shutdown flag and return on their own.
	DependentGrace time.Duration
}

// NewAgentLauncher returns an AgentLauncher with the reference platform's
// default grace window.
func NewAgentLauncher() *AgentLauncher {
	return &AgentLauncher{DependentGrace: 100 * time.Millisecond}
}

// Run starts every agent concurrently and waits for all of them to
// finish. On any agent's Run returning a non-nil error, every other
// agent in the group is signalled to shut down; Run still waits for all
// of them before returning the first error.
func (l *AgentLauncher) Run(ctx context.Context, agents ...runnable) error {
	if len(agents) == 0 {
		return nil
	}

	var g errgroup.Group
	for _, a := range agents {
		a := a
		g.Go(func() error {
			if err := a.Run(ctx); err != nil {
				for _, other := range agents {
					other.Shutdown()
				}
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// RunWithDependencies runs primary and dependent agents concurrently.
// Primaries are awaited to completion; once every primary has returned,
// dependents are signalled to shut down, given DependentGrace to notice,
// then awaited. An error from any agent signals the entire group (both
// primaries and dependents) to shut down, matching the reference
// platform's "on any exception, shutdown everything" behavior.
func (l *AgentLauncher) RunWithDependencies(ctx context.Context, primaries, dependents []runnable) error {
	if len(primaries) == 0 && len(dependents) == 0 {
		return nil
	}

	all := make([]runnable, 0, len(primaries)+len(dependents))
	all = append(all, primaries...)
	all = append(all, dependents...)

	var depGroup errgroup.Group
	for _, d := range dependents {
		d := d
		depGroup.Go(func() error {
			if err := d.Run(ctx); err != nil {
				for _, other := range all {
					other.Shutdown()
				}
				return err
			}
			return nil
		})
	}

	var primaryGroup errgroup.Group
	for _, p := range primaries {
		p := p
		primaryGroup.Go(func() error {
			if err := p.Run(ctx); err != nil {
				for _, other := range all {
					other.Shutdown()
				}
				return err
			}
			return nil
		})
	}

	primaryErr := primaryGroup.Wait()

	for _, d := range dependents {
		d.Shutdown()
	}
	if l.DependentGrace > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(l.DependentGrace):
		}
	}

	depErr := depGroup.Wait()
	if primaryErr != nil {
		return primaryErr
	}
	return depErr
}
