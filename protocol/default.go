// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package protocol

import (
	"github.com/sage-x-project/marketplace/pkg/types"
	"github.com/sage-x-project/marketplace/protocol/handlers"
	"github.com/sage-x-project/marketplace/protocol/handlers/search"
)

// NewDefault returns the Registry wired with the marketplace's three
// actions: send_message, fetch_messages, search.
func NewDefault() *Registry {
	r := NewRegistry()

	r.Register(types.ActionSendMessage, types.ActionDescriptor{
		Name:        types.ActionSendMessage,
		Description: "Send a message to another registered participant.",
		Parameters: map[string]interface{}{
			"to_agent_id": "string",
			"message":     "Message (text | order_proposal | payment)",
		},
	}, handlers.SendMessage{})

	r.Register(types.ActionFetchMessages, types.ActionDescriptor{
		Name:        types.ActionFetchMessages,
		Description: "Fetch messages addressed to the caller, oldest first.",
		Parameters: map[string]interface{}{
			"from_agent_id": "string, optional",
			"limit":         "int, optional",
			"offset":        "int, optional",
			"after":         "timestamp, optional",
			"after_index":   "int, optional",
		},
	}, handlers.FetchMessages{})

	r.Register(types.ActionSearch, types.ActionDescriptor{
		Name:        types.ActionSearch,
		Description: "Search registered businesses using one of the supported ranking algorithms.",
		Parameters: map[string]interface{}{
			"search_algorithm":  "simple | filtered | lexical | optimal | rnr",
			"query":             "string, optional",
			"page":              "int, optional",
			"limit":             "int, optional",
			"rating_threshold":  "number, optional",
			"amenity_features":  "[string], optional",
			"menu_items":        "[string], optional",
			"menu_features":     "{string: number}, optional (optimal only)",
		},
	}, search.Handler{})

	return r
}
