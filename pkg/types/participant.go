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

// Package types holds the wire/storage data model shared by every
// marketplace component: participants, actions, logs, the message and
// action-request sum types, and the HTTP request/response envelopes.
package types

import (
	"strings"
	"time"
)

// Participant is a registered marketplace agent. Metadata carries the
// agent's self-description (for businesses: a Business payload; for
// customers: free-form preferences) and is opaque to storage.
type Participant struct {
	ID        string                 `json:"id"`
	Metadata  map[string]interface{} `json:"metadata"`
	Embedding []byte                 `json:"-"`
	// AuthToken is part of the storage envelope, not the wire format: it
	// must marshal so every backend persists it, but handlers returning a
	// Participant over HTTP must clear it first (see server/http's
	// response sanitization) so a token is never echoed back on a read.
	AuthToken *string   `json:"auth_token,omitempty"`
	RowIndex  int64     `json:"-"`
	CreatedAt time.Time              `json:"created_at"`
}

// Business is the metadata shape search handlers expect to find under
// Participant.Metadata["business"]. It is not enforced by storage; handlers
// validate it on read and skip participants whose metadata does not parse.
type Business struct {
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Rating          float64            `json:"rating"`
	AmenityFeatures map[string]bool    `json:"amenity_features,omitempty"`
	// MenuFeatures maps a menu item name to its price.
	MenuFeatures    map[string]float64 `json:"menu_features,omitempty"`
}

// BusinessAgentProfile pairs a participant id with its parsed Business
// metadata, the shape every search algorithm ranks and paginates.
type BusinessAgentProfile struct {
	ID       string
	Business Business
}

// GetSearchableText concatenates the fields the lexical search algorithm
// shingles over: name, description, every menu item name, and every
// amenity name whose value is true.
func (b Business) GetSearchableText() string {
	parts := []string{b.Name, b.Description}
	for item := range b.MenuFeatures {
		parts = append(parts, item)
	}
	for amenity, available := range b.AmenityFeatures {
		if available {
			parts = append(parts, amenity)
		}
	}
	return strings.Join(parts, " ")
}
