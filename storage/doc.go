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

// Package storage provides the pluggable storage contract for the
// marketplace's three tables (participants, actions, logs).
//
// # Backends
//
// Four backends implement the same Backend/ParticipantController/
// ActionController/LogController contract:
//
//   - memory: in-memory, for tests and short-lived local runs.
//   - boltbackend: single bbolt file, for a single-process deployment.
//   - sharded: N bbolt shards hash-partitioned by id, for local
//     deployments that want write concurrency beyond one file.
//   - postgres: PostgreSQL with a jsonb data column, for a
//     server-based deployment shared by multiple marketplace processes.
//
// All four compile the same storage/query predicate tree and honor the
// same query.RangeQueryParams pagination contract, so callers can switch
// backends by changing configuration alone.
//
// # Row index
//
// Every row carries a RowIndex: a monotonically increasing integer
// assigned at insertion time, unique per table, that is the
// authoritative ordering key range queries page against (After/Before
// use created_at as a secondary, human-facing cursor; AfterIndex/
// BeforeIndex use the row index directly and never skip or repeat a row
// even if two inserts share a timestamp).
//
// The sharded backend is the exception: a row's RowIndex comes from the
// shard that holds it, so it is unique only within that shard. Its Find
// results are ordered by created_at, and its AfterIndex/BeforeIndex count
// 1-based positions in that merged order for the query being run.
//
//	backend.RowIndexColumn() // "row_index" (postgres, bolt, sharded) or "index" (memory)
//
// # Too-busy errors
//
// errors.ErrTooBusy is the retryable error for a write rejected by an
// overloaded backend, and the gateway maps it to 429. None of the four
// backends returns it: none of them bounds in-flight writes.
package storage
