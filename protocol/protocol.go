// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

// Package protocol declares the pluggable action registry the HTTP
// gateway dispatches execute-action requests through: a set of named
// actions, each backed by a Handler.
package protocol

import (
	"context"
	"sync"

	"github.com/sage-x-project/marketplace/pkg/errors"
	"github.com/sage-x-project/marketplace/pkg/types"
	"github.com/sage-x-project/marketplace/storage"
)

// Handler executes one named action against backend on behalf of caller.
type Handler interface {
	Execute(ctx context.Context, caller *types.Participant, req types.ActionExecutionRequest, backend storage.Backend) (types.ActionExecutionResult, error)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, caller *types.Participant, req types.ActionExecutionRequest, backend storage.Backend) (types.ActionExecutionResult, error)

// Execute implements Handler.
func (f HandlerFunc) Execute(ctx context.Context, caller *types.Participant, req types.ActionExecutionRequest, backend storage.Backend) (types.ActionExecutionResult, error) {
	return f(ctx, caller, req, backend)
}

// Protocol is a pluggable module declaring the actions it supports and
// routing a request to whichever handler is registered for its name.
type Protocol interface {
	// Actions lists the action descriptors this protocol advertises, for
	// GET /actions/protocol discovery.
	Actions() []types.ActionDescriptor

	// ExecuteAction dispatches req to the handler registered for req.Name.
	// Returns ErrUnknownAction if no handler is registered.
	ExecuteAction(ctx context.Context, caller *types.Participant, req types.ActionExecutionRequest, backend storage.Backend) (types.ActionExecutionResult, error)
}

// Registry is a Protocol built by registering named handlers at
// construction time. It is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	descriptors []types.ActionDescriptor
	handlers    map[types.ActionName]Handler
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[types.ActionName]Handler)}
}

// Register adds handler under name, advertised with descriptor. A second
// call for the same name replaces the handler but appends another
// descriptor entry, so callers should register each name exactly once.
func (r *Registry) Register(name types.ActionName, descriptor types.ActionDescriptor, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[name] = handler
	r.descriptors = append(r.descriptors, descriptor)
}

// Actions implements Protocol.
func (r *Registry) Actions() []types.ActionDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.ActionDescriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// ExecuteAction implements Protocol.
func (r *Registry) ExecuteAction(ctx context.Context, caller *types.Participant, req types.ActionExecutionRequest, backend storage.Backend) (types.ActionExecutionResult, error) {
	r.mu.RLock()
	h, ok := r.handlers[req.Name]
	r.mu.RUnlock()

	if !ok {
		return types.ActionExecutionResult{}, errors.ErrUnknownAction.WithDetail("action", string(req.Name))
	}
	return h.Execute(ctx, caller, req, backend)
}
