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

// errorToStatus maps a pkg/errors category/code pair to an HTTP status,
// inverted from the client's errorFromStatus switch: TooBusy/storage
// timeouts become 429, a duplicate id on register becomes 409, a missing
// row 404, an auth failure 401, an invalid-input or validation error
// 400, anything else 500.
func errorToStatus(err error) int {
	switch {
	case errors.Is(err, errors.ErrTooBusy), errors.Is(err, errors.ErrStorageTimeout), errors.IsRateLimitExceeded(err):
		return http.StatusTooManyRequests
	case errors.Is(err, errors.ErrDuplicateID), errors.Is(err, errors.ErrAlreadyExists):
		return http.StatusConflict
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsUnauthorized(err):
		return http.StatusUnauthorized
	case errors.IsInvalidInput(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as the gateway's ErrorResponse envelope, mapping
// its status with errorToStatus.
func writeError(w http.ResponseWriter, err error) {
	status := errorToStatus(err)

	code := "INTERNAL_ERROR"
	details := map[string]interface{}(nil)
	var mpErr *errors.Error
	if errors.As(err, &mpErr) {
		code = mpErr.Code
		details = mpErr.Details
	}

	writeJSON(w, status, types.ErrorResponse{
		Error: types.ErrorDetail{
			Code:    code,
			Message: err.Error(),
			Details: details,
		},
	})
}

// writeJSON writes v as a JSON body with status, logging nothing itself
// -- the observability middleware wrapping every route already records
// status and duration.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}
