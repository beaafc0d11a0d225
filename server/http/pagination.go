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
	"net/http"
	"strconv"

	"github.com/sage-x-project/marketplace/storage/query"
)

// parseOffsetLimit reads the offset/limit query params shared by every
// paginated GET route, applying defaultLimit when limit is omitted and
// capping at maxLimit.
func parseOffsetLimit(r *http.Request, defaultLimit, maxLimit int) (offset, limit int) {
	offset = 0
	limit = defaultLimit

	q := r.URL.Query()
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return offset, limit
}

// fetchPage requests limit+1 rows at offset so the caller can tell
// whether another page follows without a separate count query, the same
// "fetch one extra" hack protocol/handlers.FetchMessages uses.
func fetchPage(offset, limit int) query.RangeQueryParams {
	fetchLimit := limit + 1
	return query.RangeQueryParams{}.WithOffset(offset).WithLimit(fetchLimit)
}

// splitPage trims rows (sized limit+1) down to at most limit, reporting
// whether more rows exist beyond this page.
func splitPage[T any](rows []T, limit int) (page []T, hasMore bool) {
	hasMore = len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	return rows, hasMore
}
