// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package client

import (
	"net/http"
	"sync"
	"time"
)

// poolKey identifies a connection pool shared by every Client with the
// same base URL, timeout, and retry identity.
type poolKey struct {
	baseURL    string
	timeout    time.Duration
	maxRetries int
}

type sharedPool struct {
	transport *http.Transport
	refs      int
}

var (
	poolMu sync.Mutex
	pools  = map[poolKey]*sharedPool{}
)

// acquirePool returns the *http.Transport for key, creating it on first
// use, and increments its reference count.
func acquirePool(key poolKey) *http.Transport {
	poolMu.Lock()
	defer poolMu.Unlock()

	p, ok := pools[key]
	if !ok {
		p = &sharedPool{transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		}}
		pools[key] = p
	}
	p.refs++
	return p.transport
}

// releasePool decrements key's reference count, closing its idle
// connections and forgetting the pool once no Client references it.
func releasePool(key poolKey) {
	poolMu.Lock()
	defer poolMu.Unlock()

	p, ok := pools[key]
	if !ok {
		return
	}
	p.refs--
	if p.refs <= 0 {
		p.transport.CloseIdleConnections()
		delete(pools, key)
	}
}
