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

// Package convert copies every row of one storage.Backend into another,
// used to assert two backend technologies hold equivalent data and to
// migrate a deployment from one backend to another.
package convert

import (
	"context"
	"fmt"

	"github.com/sage-x-project/marketplace/pkg/types"
	"github.com/sage-x-project/marketplace/storage"
	"github.com/sage-x-project/marketplace/storage/query"
)

// copyBatchSize bounds how many rows Copy holds in memory per page.
const copyBatchSize = 200

// Copy reads every row of src's three tables in ascending row-index
// order and re-inserts each into dst.
//
// dst is assumed empty. Every backend's Create assigns its own
// monotonic RowIndex at insertion time and does not accept a
// caller-supplied one, so RowIndex is "preserved" only in the sense
// that copying rows onto an empty destination in the same order they
// were assigned at the source reproduces the same ordinal positions --
// it does not force identical RowIndex or CreatedAt values if dst
// already holds rows of its own.
func Copy(ctx context.Context, src, dst storage.Backend) error {
	if err := copyTable(ctx, src.Participants().GetAll, dst.Participants().Create,
		func(p *types.Participant) int64 { return p.RowIndex }); err != nil {
		return fmt.Errorf("copy participants: %w", err)
	}
	if err := copyTable(ctx, src.Actions().GetAll, dst.Actions().Create,
		func(a *types.Action) int64 { return a.RowIndex }); err != nil {
		return fmt.Errorf("copy actions: %w", err)
	}
	if err := copyTable(ctx, src.Logs().GetAll, dst.Logs().Create,
		func(l *types.Log) int64 { return l.RowIndex }); err != nil {
		return fmt.Errorf("copy logs: %w", err)
	}
	return nil
}

// copyTable pages through getAll with an AfterIndex cursor and calls
// create for every row, in the same order it was read.
func copyTable[T any](
	ctx context.Context,
	getAll func(context.Context, query.RangeQueryParams) ([]*T, error),
	create func(context.Context, *T) error,
	rowIndex func(*T) int64,
) error {
	var after *int64
	for {
		limit := copyBatchSize
		rows, err := getAll(ctx, query.RangeQueryParams{Limit: &limit, AfterIndex: after})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		for _, row := range rows {
			v := *row
			if err := create(ctx, &v); err != nil {
				return err
			}
		}

		idx := rowIndex(rows[len(rows)-1])
		after = &idx
		if len(rows) < limit {
			return nil
		}
	}
}
