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
	"encoding/json"
	"net/http"

	"github.com/sage-x-project/marketplace/core/resilience"
	"github.com/sage-x-project/marketplace/pkg/errors"
	"github.com/sage-x-project/marketplace/pkg/types"
)

// executeAction handles POST /actions/execute: authenticate (done by the
// auth middleware), dispatch through the protocol registry, then persist
// the {agent_id, request, result} tuple -- steps 3 and 4 of spec.md §4.4.
// A business-level failure (result.IsError) is still written and still a
// 200; only a non-nil error from the protocol itself, or from the
// journal write, reaches the client as a non-2xx response.
func (s *Server) executeAction(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r.Context())

	var body types.ActionExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, errors.ErrInvalidInput.Wrap(err))
		return
	}

	ctx := r.Context()
	var result types.ActionExecutionResult
	err := s.actions.Execute(ctx, func(ctx context.Context) error {
		var execErr error
		result, execErr = s.protocol.ExecuteAction(ctx, caller, body.Request, s.backend)
		return execErr
	})
	if err == resilience.ErrBulkheadFull {
		writeError(w, errors.ErrRateLimitExceeded.WithMessage("too many concurrent actions in flight"))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	action := &types.Action{
		AgentID: caller.ID,
		Request: body.Request,
		Result:  result,
	}
	if err := s.backend.Actions().Create(ctx, action); err != nil {
		// Step 4 failing (e.g. TooBusyError) is retryable from the
		// caller's perspective; the whole request is replayed.
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, types.ActionExecuteResponse{Result: result})
}

// actionsProtocol handles GET /actions/protocol.
func (s *Server) actionsProtocol(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.ActionProtocolResponse{Actions: s.protocol.Actions()})
}
