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

package health

import (
	"context"

	"github.com/sage-x-project/marketplace/storage"
)

// StorageHealthCheck reports whether the configured storage backend can
// still serve a trivial read, by counting participants with no filter.
type StorageHealthCheck struct {
	backend storage.Backend
}

// NewStorageHealthCheck builds a Checker over backend.
func NewStorageHealthCheck(backend storage.Backend) *StorageHealthCheck {
	return &StorageHealthCheck{backend: backend}
}

// Name implements Checker.
func (c *StorageHealthCheck) Name() string { return "storage" }

// Check implements Checker.
func (c *StorageHealthCheck) Check(ctx context.Context) CheckResult {
	if _, err := c.backend.Participants().Count(ctx, nil); err != nil {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusUnhealthy,
			Message: err.Error(),
		}
	}
	return CheckResult{Name: c.Name(), Status: StatusHealthy}
}
