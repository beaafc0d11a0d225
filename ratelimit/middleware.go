// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package ratelimit

import (
	"net/http"
	"strings"
)

// Handler is a function with the http.HandlerFunc signature. Middleware
// wraps http.Handler values, not this type.
type Handler func(w http.ResponseWriter, r *http.Request)

// Middleware wraps a Handler with rate limiting.
type Middleware func(http.Handler) http.Handler

// MiddlewareConfig holds middleware configuration.
type MiddlewareConfig struct {
	// Limiter is the rate limiter to use.
	Limiter Limiter

	// KeyFunc generates the rate limit key from the incoming request.
	KeyFunc func(r *http.Request) string

	// OnRateLimitExceeded writes the response when a request is denied.
	// The default writes 429 with a JSON error body.
	OnRateLimitExceeded func(w http.ResponseWriter, r *http.Request, key string)
}

// DefaultMiddlewareConfig returns default middleware configuration:
// keyed by bearer token when present, else by remote address, 429 on
// denial.
func DefaultMiddlewareConfig() MiddlewareConfig {
	return MiddlewareConfig{
		KeyFunc: BearerTokenKeyFunc,
		OnRateLimitExceeded: func(w http.ResponseWriter, r *http.Request, key string) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"code":"TOO_BUSY","message":"rate limit exceeded"}}`))
		},
	}
}

// NewMiddleware builds a Middleware from config, filling in defaults for
// any zero-valued KeyFunc/OnRateLimitExceeded.
func NewMiddleware(config MiddlewareConfig) Middleware {
	if config.KeyFunc == nil || config.OnRateLimitExceeded == nil {
		def := DefaultMiddlewareConfig()
		if config.KeyFunc == nil {
			config.KeyFunc = def.KeyFunc
		}
		if config.OnRateLimitExceeded == nil {
			config.OnRateLimitExceeded = def.OnRateLimitExceeded
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := config.KeyFunc(r)

			if !config.Limiter.Allow(key) {
				config.OnRateLimitExceeded(w, r, key)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// NewTokenBucketMiddleware builds a token-bucket-backed Middleware.
func NewTokenBucketMiddleware(config TokenBucketConfig, keyFunc func(*http.Request) string) Middleware {
	limiter := NewTokenBucket(config)

	middlewareConfig := DefaultMiddlewareConfig()
	middlewareConfig.Limiter = limiter
	if keyFunc != nil {
		middlewareConfig.KeyFunc = keyFunc
	}

	return NewMiddleware(middlewareConfig)
}

// NewSlidingWindowMiddleware builds a sliding-window-backed Middleware.
func NewSlidingWindowMiddleware(config SlidingWindowConfig, keyFunc func(*http.Request) string) Middleware {
	limiter := NewSlidingWindow(config)

	middlewareConfig := DefaultMiddlewareConfig()
	middlewareConfig.Limiter = limiter
	if keyFunc != nil {
		middlewareConfig.KeyFunc = keyFunc
	}

	return NewMiddleware(middlewareConfig)
}

// NewDistributedMiddleware builds a Redis-backed Middleware shared
// across gateway instances.
func NewDistributedMiddleware(config DistributedConfig, keyFunc func(*http.Request) string) (Middleware, error) {
	limiter, err := NewDistributed(config)
	if err != nil {
		return nil, err
	}

	middlewareConfig := DefaultMiddlewareConfig()
	middlewareConfig.Limiter = limiter
	if keyFunc != nil {
		middlewareConfig.KeyFunc = keyFunc
	}

	return NewMiddleware(middlewareConfig), nil
}

// BearerTokenKeyFunc keys by the request's bearer token, so each
// registered participant gets its own budget, falling back to
// RemoteAddrKeyFunc for unauthenticated routes (register, health).
func BearerTokenKeyFunc(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok && token != "" {
		return "token:" + token
	}
	return RemoteAddrKeyFunc(r)
}

// RemoteAddrKeyFunc keys by the request's remote address.
func RemoteAddrKeyFunc(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "addr:unknown"
	}
	return "addr:" + r.RemoteAddr
}

// GlobalKeyFunc keys every request the same, for a single process-wide
// budget.
func GlobalKeyFunc(r *http.Request) string {
	return "global"
}
