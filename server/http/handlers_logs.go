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
	"encoding/json"
	"net/http"

	"github.com/sage-x-project/marketplace/pkg/errors"
	"github.com/sage-x-project/marketplace/pkg/types"
)

// createLog handles POST /logs/create.
func (s *Server) createLog(w http.ResponseWriter, r *http.Request) {
	var body types.LogCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, errors.ErrInvalidInput.Wrap(err))
		return
	}

	if err := s.backend.Logs().Create(r.Context(), &body.Log); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Log types.Log `json:"log"`
	}{Log: body.Log})
}

// listLogs handles GET /logs?offset&limit.
func (s *Server) listLogs(w http.ResponseWriter, r *http.Request) {
	offset, limit := parseOffsetLimit(r, s.defaultLimit, s.maxLimit)

	ctx := r.Context()
	total, err := s.backend.Logs().Count(ctx, nil)
	if err != nil {
		writeError(w, err)
		return
	}

	rows, err := s.backend.Logs().GetAll(ctx, fetchPage(offset, limit))
	if err != nil {
		writeError(w, err)
		return
	}
	page, hasMore := splitPage(rows, limit)

	items := make([]types.Log, len(page))
	for i, l := range page {
		items[i] = *l
	}

	writeJSON(w, http.StatusOK, types.LogListResponse{
		ListResponse: types.ListResponse{Total: total, Offset: offset, Limit: limit, HasMore: hasMore},
		Items:        items,
	})
}
