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
	"strings"

	"github.com/sage-x-project/marketplace/auth"
	"github.com/sage-x-project/marketplace/pkg/errors"
	"github.com/sage-x-project/marketplace/storage"
)

// authMiddleware resolves the bearer token on every request into a
// participant and binds it to the request context, per spec.md §6: "the
// gateway binds the token to an agent id available to handlers". Callers
// missing a token, or carrying one that does not resolve, get 401 before
// the route's handler runs.
func authMiddleware(tokens *auth.TokenService, participants storage.ParticipantController) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token := strings.TrimPrefix(header, "Bearer ")
			if token == "" || token == header {
				writeError(w, errors.ErrUnauthorized)
				return
			}

			agentID, err := tokens.ValidateToken(r.Context(), token)
			if err != nil {
				writeError(w, err)
				return
			}

			caller, err := participants.GetByID(r.Context(), agentID)
			if err != nil {
				writeError(w, errors.ErrUnauthorized)
				return
			}

			r = r.WithContext(withCaller(r.Context(), caller))
			next.ServeHTTP(w, r)
		})
	}
}
