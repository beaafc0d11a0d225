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

import "time"

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

// WithRetry configures the retry policy: up to maxRetries retries after
// the first attempt (maxRetries+1 attempts in all), exponential backoff starting at initialDelay and capped at maxDelay,
// with a symmetric jitter fraction (0.2 means +/-20%).
func WithRetry(maxRetries int, initialDelay, maxDelay time.Duration, jitter float64) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.initialDelay = initialDelay
		c.maxDelay = maxDelay
		c.jitter = jitter
	}
}

// WithToken sets the bearer token used on every request, bypassing
// Agents.Register's usual token capture.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHeaders sets custom HTTP headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		if c.headers == nil {
			c.headers = make(map[string]string)
		}
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if c.headers == nil {
			c.headers = make(map[string]string)
		}
		c.headers["User-Agent"] = userAgent
	}
}
