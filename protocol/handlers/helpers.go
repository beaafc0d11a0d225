// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

// Package handlers implements the marketplace's three dispatchable
// actions (send_message, fetch_messages, search) as protocol.Handler
// values, plus the four search ranking algorithms under its search
// subpackage.
package handlers

import (
	"encoding/json"

	"github.com/sage-x-project/marketplace/pkg/errors"
	"github.com/sage-x-project/marketplace/pkg/types"
)

// DecodeParams round-trips a decoded ActionExecutionRequest.Parameters
// map into a typed struct via JSON, since every handler's parameters
// arrive as free-form map[string]interface{}. A params shape that does
// not fit the handler's expected struct (send_message, fetch_messages,
// search all call this) surfaces as errors.ErrMessageParsing rather
// than a raw encoding/json error. Each of those handlers turns it into
// an "invalid_parameters" ErrorResult, so it reaches the caller as a
// business-level error in a 200 response, not as a non-2xx status.
func DecodeParams(params map[string]interface{}, out interface{}) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return errors.ErrMessageParsing.Wrap(err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.ErrMessageParsing.Wrap(err)
	}
	return nil
}

// SuccessResult wraps content in a non-error ActionExecutionResult,
// round-tripping it through JSON so the Content field is always a plain
// map[string]interface{} regardless of content's static type.
func SuccessResult(content interface{}) (types.ActionExecutionResult, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return types.ActionExecutionResult{}, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return types.ActionExecutionResult{}, err
	}
	return types.ActionExecutionResult{Content: m}, nil
}

// ErrorResult builds a business-level error result. This is not a Go
// error: the dispatcher still records the action with is_error=true and
// returns it to the caller as a 200, per the handler-originated-errors
// are-not-retryable rule.
func ErrorResult(errorType, message string) types.ActionExecutionResult {
	return types.ActionExecutionResult{
		IsError: true,
		Content: map[string]interface{}{
			"error_type": errorType,
			"message":    message,
		},
	}
}
