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

package errors

// Marketplace-specific errors. These are surfaced by the storage backends,
// the auth service and the protocol handlers and are mapped to HTTP status
// codes by the gateway (see server/http).
var (
	// ErrTooBusy indicates a storage backend rejected a write because it is
	// at its concurrency limit. Callers should retry with backoff.
	ErrTooBusy = &Error{
		Category: CategoryStorage,
		Code:     "TOO_BUSY",
		Message:  "storage backend is too busy",
	}

	// ErrDuplicateID indicates a create call used an id that already exists.
	ErrDuplicateID = &Error{
		Category: CategoryValidation,
		Code:     "DUPLICATE_ID",
		Message:  "id already exists",
	}

	// ErrRecipientNotFound indicates a send_message action named a to_agent_id
	// that has no registered participant.
	ErrRecipientNotFound = &Error{
		Category: CategoryNotFound,
		Code:     "RECIPIENT_NOT_FOUND",
		Message:  "recipient not found",
	}

	// ErrInvalidProposal indicates a payment action referenced a proposal_id
	// that has no matching order proposal from the recipient. Proposal
	// expiry is not checked.
	ErrInvalidProposal = &Error{
		Category: CategoryValidation,
		Code:     "INVALID_PROPOSAL",
		Message:  "no matching order proposal for payment",
	}

	// ErrUnsupportedAlgorithm indicates a search request named a search
	// algorithm the marketplace does not implement (e.g. retrieve-and-rerank,
	// which requires an embedding model that is out of scope here).
	ErrUnsupportedAlgorithm = &Error{
		Category: CategoryProtocol,
		Code:     "UNSUPPORTED_ALGORITHM",
		Message:  "search algorithm not supported",
	}

	// ErrUnknownAction indicates a protocol dispatch named an action the
	// registry has no handler for.
	ErrUnknownAction = &Error{
		Category: CategoryProtocol,
		Code:     "UNKNOWN_ACTION",
		Message:  "unknown action",
	}

	// ErrUnauthorized indicates a request carried no token, or a token that
	// does not resolve to a participant.
	ErrUnauthorized = &Error{
		Category: CategoryUnauthorized,
		Code:     "UNAUTHORIZED",
		Message:  "missing or invalid auth token",
	}

	// ErrIDExhausted indicates the id allocator could not find a free
	// suffix for a base id within its retry budget.
	ErrIDExhausted = &Error{
		Category: CategoryInternal,
		Code:     "ID_EXHAUSTED",
		Message:  "could not allocate a unique id",
	}
)
