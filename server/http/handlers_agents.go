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

	"github.com/gorilla/mux"

	"github.com/sage-x-project/marketplace/pkg/errors"
	"github.com/sage-x-project/marketplace/pkg/types"
)

// sanitize clears the token field before a Participant is ever echoed
// back over HTTP, per the doc comment on types.Participant.AuthToken.
func sanitize(p types.Participant) types.Participant {
	p.AuthToken = nil
	return p
}

// registerAgent handles POST /agents/register.
func (s *Server) registerAgent(w http.ResponseWriter, r *http.Request) {
	var body types.AgentRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, errors.ErrInvalidInput.Wrap(err))
		return
	}
	if body.Agent.Metadata == nil {
		body.Agent.Metadata = map[string]interface{}{}
	}

	ctx := r.Context()
	base := body.Agent.ID
	if base == "" {
		writeError(w, errors.ErrMissingField.WithDetail("field", "agent.id"))
		return
	}

	id, err := s.idAllocator.Next(ctx, base)
	if err != nil {
		writeError(w, err)
		return
	}
	body.Agent.ID = id

	if err := s.backend.Participants().Create(ctx, &body.Agent); err != nil {
		writeError(w, err)
		return
	}

	token, err := s.tokens.GenerateToken(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, types.AgentRegistrationResponse{
		Agent: sanitize(body.Agent),
		Token: token,
	})
}

// listAgents handles GET /agents?offset&limit.
func (s *Server) listAgents(w http.ResponseWriter, r *http.Request) {
	offset, limit := parseOffsetLimit(r, s.defaultLimit, s.maxLimit)

	ctx := r.Context()
	total, err := s.backend.Participants().Count(ctx, nil)
	if err != nil {
		writeError(w, err)
		return
	}

	rows, err := s.backend.Participants().GetAll(ctx, fetchPage(offset, limit))
	if err != nil {
		writeError(w, err)
		return
	}
	page, hasMore := splitPage(rows, limit)

	items := make([]types.Participant, len(page))
	for i, p := range page {
		items[i] = sanitize(*p)
	}

	writeJSON(w, http.StatusOK, types.AgentListResponse{
		ListResponse: types.ListResponse{Total: total, Offset: offset, Limit: limit, HasMore: hasMore},
		Items:        items,
	})
}

// getAgent handles GET /agents/{id}.
func (s *Server) getAgent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	p, err := s.backend.Participants().GetByID(r.Context(), id)
	if err != nil {
		if errors.IsNotFound(err) {
			writeError(w, errors.ErrNotFound.WithDetail("id", id))
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, types.AgentGetResponse{Agent: sanitize(*p)})
}
