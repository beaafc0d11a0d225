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

// Package http implements the marketplace's RESTful gateway: the
// /agents, /actions, /logs, and /health routes of spec.md §6, routed with
// github.com/gorilla/mux and wrapped in github.com/rs/cors.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/sage-x-project/marketplace/auth"
	"github.com/sage-x-project/marketplace/config"
	"github.com/sage-x-project/marketplace/core/resilience"
	"github.com/sage-x-project/marketplace/observability"
	"github.com/sage-x-project/marketplace/protocol"
	"github.com/sage-x-project/marketplace/ratelimit"
	"github.com/sage-x-project/marketplace/storage"
)

// Server is the marketplace HTTP gateway.
type Server struct {
	backend     storage.Backend
	protocol    protocol.Protocol
	tokens      *auth.TokenService
	idAllocator *auth.IDAllocator

	defaultLimit int
	maxLimit     int

	// actions bounds how many /actions/execute calls may run against
	// backend concurrently, so a burst of agents issuing search or
	// fetch_messages actions can't starve a single-writer storage
	// backend (boltdb, the sharded bbolt backend) of its lock.
	actions *resilience.Bulkhead

	httpServer *http.Server
}

// Deps bundles the collaborators NewServer wires into routes.
type Deps struct {
	Backend       storage.Backend
	Protocol      protocol.Protocol
	Tokens        *auth.TokenService
	IDAllocator   *auth.IDAllocator
	Observability *observability.Manager
}

// NewServer builds a Server from cfg and deps, registering every route in
// spec.md §6 on a gorilla/mux router wrapped with CORS, the observability
// middleware, and, when rl.Enabled, a per-key rate limiter.
func NewServer(cfg config.ServerConfig, search config.SearchConfig, rl config.RateLimitConfig, deps Deps) *Server {
	s := &Server{
		backend:      deps.Backend,
		protocol:     deps.Protocol,
		tokens:       deps.Tokens,
		idAllocator:  deps.IDAllocator,
		defaultLimit: search.DefaultLimit,
		maxLimit:     search.MaxLimit,
		actions:      resilience.NewBulkhead(resilience.DefaultBulkheadConfig()),
	}

	router := mux.NewRouter()
	if deps.Observability != nil {
		router.Use(deps.Observability.Middleware().Handler)
	}
	if rl.Enabled {
		router.Use(rateLimitMiddleware(rl))
	}

	router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	router.HandleFunc("/agents/register", s.registerAgent).Methods(http.MethodPost)

	authed := router.NewRoute().Subrouter()
	authed.Use(authMiddleware(s.tokens, s.backend.Participants()))
	authed.HandleFunc("/agents", s.listAgents).Methods(http.MethodGet)
	authed.HandleFunc("/agents/{id}", s.getAgent).Methods(http.MethodGet)
	authed.HandleFunc("/actions/execute", s.executeAction).Methods(http.MethodPost)
	authed.HandleFunc("/actions/protocol", s.actionsProtocol).Methods(http.MethodGet)
	authed.HandleFunc("/logs/create", s.createLog).Methods(http.MethodPost)
	authed.HandleFunc("/logs", s.listLogs).Methods(http.MethodGet)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           corsMiddleware.Handler(router),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	return s
}

// Addr returns the address the server listens on once started.
func (s *Server) Addr() string { return s.httpServer.Addr }

// ListenAndServe starts the gateway. It blocks until Shutdown is called,
// returning nil in that case instead of http.ErrServerClosed.
func (s *Server) ListenAndServe() error {
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server, waiting up to timeout for
// in-flight requests to finish.
func (s *Server) Shutdown(ctx context.Context, timeout time.Duration) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// rateLimitMiddleware builds the per-key request throttle selected by rl,
// keyed by bearer token (falling back to remote address for the
// unauthenticated register/health routes).
func rateLimitMiddleware(rl config.RateLimitConfig) ratelimit.Middleware {
	switch rl.Algorithm {
	case "sliding_window":
		return ratelimit.NewSlidingWindowMiddleware(ratelimit.SlidingWindowConfig{
			Limit:  rl.WindowLimit,
			Window: rl.WindowSize,
		}, ratelimit.BearerTokenKeyFunc)
	default:
		return ratelimit.NewTokenBucketMiddleware(ratelimit.TokenBucketConfig{
			Rate:     rl.RatePerSecond,
			Capacity: rl.Burst,
		}, ratelimit.BearerTokenKeyFunc)
	}
}
