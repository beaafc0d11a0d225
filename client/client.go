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

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/sage-x-project/marketplace/core/resilience"
	"github.com/sage-x-project/marketplace/pkg/errors"
	"github.com/sage-x-project/marketplace/pkg/types"
)

// Client is an HTTP client for the marketplace gateway, grouping its
// three resources behind one shared transport, token, and retry policy.
type Client struct {
	baseURL    string
	httpClient *http.Client
	poolKey    poolKey

	mu    sync.RWMutex
	token string

	timeout      time.Duration
	maxRetries   int
	initialDelay time.Duration
	maxDelay     time.Duration
	jitter       float64

	headers map[string]string

	breaker *resilience.CircuitBreaker

	Agents  *AgentsResource
	Actions *ActionsResource
	Logs    *LogsResource
}

// NewClient creates a Client for baseURL, applying opts. The underlying
// *http.Transport is shared with any other Client created with the same
// base URL, timeout, and retry identity.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.ErrInvalidInput.WithMessage("baseURL cannot be empty")
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	c := &Client{
		baseURL:      baseURL,
		timeout:      30 * time.Second,
		maxRetries:   3,
		initialDelay: 100 * time.Millisecond,
		maxDelay:     5 * time.Second,
		jitter:       0.2,
		headers:      make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.poolKey = poolKey{baseURL: baseURL, timeout: c.timeout, maxRetries: c.maxRetries}
	transport := acquirePool(c.poolKey)
	c.httpClient = &http.Client{Timeout: c.timeout, Transport: transport}
	c.breaker = resilience.NewCircuitBreaker(&resilience.CircuitBreakerConfig{
		MaxFailures:         5,
		Timeout:             c.timeout,
		MaxHalfOpenRequests: 1,
	})

	c.Agents = &AgentsResource{c: c}
	c.Actions = &ActionsResource{c: c}
	c.Logs = &LogsResource{c: c}

	return c, nil
}

// SetToken sets the bearer token used on every subsequent request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the currently configured bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Close releases this Client's reference to its shared connection pool.
func (c *Client) Close() error {
	releasePool(c.poolKey)
	return nil
}

// HealthCheck calls GET /health.
func (c *Client) HealthCheck(ctx context.Context) (*types.HealthResponse, error) {
	var resp types.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do executes one logical request, retrying on 429 and on
// connection/timeout errors with exponential backoff and symmetric
// jitter. body is marshaled as the JSON request body when non-nil; out,
// when non-nil, receives the JSON response body on success. The whole
// retry sequence runs behind this Client's circuit breaker, so a gateway
// that is down fails every caller immediately once it has tripped,
// instead of each one separately burning through its own retry budget.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	cfg := &resilience.RetryConfig{
		MaxAttempts: c.maxRetries + 1,
		Backoff:     c.backoff(),
		ShouldRetry: isRetryable,
	}
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return resilience.Retry(ctx, cfg, func(ctx context.Context) error {
			return c.doOnce(ctx, method, path, body, out)
		})
	})
	if err == resilience.ErrCircuitBreakerOpen {
		return errors.ErrNetworkUnavailable.WithMessage("gateway circuit breaker open")
	}
	return err
}

// backoff builds the exponential-with-jitter delay curve for this
// Client's configured initialDelay/maxDelay/jitter.
func (c *Client) backoff() resilience.BackoffStrategy {
	base := resilience.ExponentialBackoff(c.initialDelay, 2.0, c.maxDelay)
	return func(attempt int) time.Duration {
		delay := base(attempt)
		if c.jitter <= 0 {
			return delay
		}
		spread := float64(delay) * c.jitter
		return delay + time.Duration(spread*rand.Float64()*2-spread)
	}
}

func (c *Client) doOnce(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.ErrInvalidInput.Wrap(err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errConnection{classifyTransportError(err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorFromStatus(resp.StatusCode, respBody)
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errConnection marks a transport-level failure (connection refused,
// timeout, DNS failure) as retryable.
type errConnection struct{ err error }

func (e errConnection) Error() string { return e.err.Error() }
func (e errConnection) Unwrap() error { return e.err }

// classifyTransportError narrows an http.Client.Do failure into the
// pkg/errors sentinel that best describes it, so a caller inspecting
// the final error after retries are exhausted sees why the gateway was
// unreachable rather than a bare net/url error string.
func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.ErrNetworkTimeout.Wrap(err)
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return errors.ErrConnectionRefused.Wrap(err)
	}
	return errors.ErrNetworkUnavailable.Wrap(err)
}

func isRetryable(err error) bool {
	if _, ok := err.(errConnection); ok {
		return true
	}
	return errors.IsRateLimitExceeded(err)
}

// errorFromStatus maps a non-2xx HTTP response into a typed pkg/errors
// value, unwrapping the gateway's ErrorResponse envelope when present.
func errorFromStatus(statusCode int, body []byte) error {
	var envelope types.ErrorResponse
	message := string(body)
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
	}

	switch statusCode {
	case http.StatusBadRequest:
		return errors.ErrInvalidInput.WithMessage(message)
	case http.StatusUnauthorized:
		return errors.ErrUnauthorized.WithMessage(message)
	case http.StatusNotFound:
		return errors.ErrNotFound.WithMessage(message)
	case http.StatusConflict:
		return errors.ErrDuplicateID.WithMessage(message)
	case http.StatusTooManyRequests:
		return errors.ErrRateLimitExceeded.WithMessage(message)
	case http.StatusGatewayTimeout:
		return errors.ErrTimeout.WithMessage(message)
	default:
		return errors.ErrInternal.WithMessage(fmt.Sprintf("HTTP %d: %s", statusCode, message))
	}
}

// buildQuery renders offset/limit as a URL query string, omitting unset
// fields.
func buildQuery(offset, limit *int) string {
	q := url.Values{}
	if offset != nil {
		q.Set("offset", fmt.Sprintf("%d", *offset))
	}
	if limit != nil {
		q.Set("limit", fmt.Sprintf("%d", *limit))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
