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

// Package cache wraps a storage.ParticipantController with a Redis
// read-through cache over the two lookups the gateway's auth path drives
// on every request: GetByID and GetByToken.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sage-x-project/marketplace/pkg/types"
	"github.com/sage-x-project/marketplace/storage"
	"github.com/sage-x-project/marketplace/storage/query"
)

// RedisConfig configures the Redis connection backing CachedParticipants.
type RedisConfig struct {
	// Address is the Redis server address (host:port).
	Address string

	// Password is the Redis password.
	Password string

	// DB is the Redis database number.
	DB int

	// TTL is how long a cached participant stays fresh.
	TTL time.Duration

	// PoolSize is the maximum number of socket connections.
	PoolSize int

	// MinIdleConns is the minimum number of idle connections.
	MinIdleConns int

	// MaxRetries is the maximum number of retries before giving up.
	MaxRetries int

	// DialTimeout is the timeout for establishing new connections.
	DialTimeout time.Duration

	// ReadTimeout is the timeout for socket reads.
	ReadTimeout time.Duration

	// WriteTimeout is the timeout for socket writes.
	WriteTimeout time.Duration
}

// DefaultRedisConfig returns sane defaults for a local Redis instance.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Address:      "localhost:6379",
		DB:           0,
		TTL:          1 * time.Minute,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// CachedParticipants decorates a storage.ParticipantController with a
// Redis read-through cache. List/search operations (GetAll, Find,
// FindByIDPattern, Count) pass straight through to inner, since caching a
// query result set correctly would require invalidating on every write to
// the table; only the two single-row lookups the authenticated request
// path depends on are cached.
type CachedParticipants struct {
	inner  storage.ParticipantController
	client *redis.Client
	ttl    time.Duration
}

// NewCachedParticipants connects to Redis per config and wraps inner.
func NewCachedParticipants(inner storage.ParticipantController, config RedisConfig) (*CachedParticipants, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Address,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl := config.TTL
	if ttl <= 0 {
		ttl = DefaultRedisConfig().TTL
	}

	return &CachedParticipants{inner: inner, client: client, ttl: ttl}, nil
}

// envelope mirrors types.Participant with every field tagged, since
// Participant's own json tags deliberately drop Embedding and RowIndex
// from the wire format -- the cache needs the full row, not the wire
// shape.
type envelope struct {
	ID        string                 `json:"id"`
	Metadata  map[string]interface{} `json:"metadata"`
	Embedding []byte                 `json:"embedding"`
	AuthToken *string                `json:"auth_token"`
	RowIndex  int64                  `json:"row_index"`
	CreatedAt time.Time              `json:"created_at"`
}

func toEnvelope(p *types.Participant) envelope {
	return envelope{
		ID:        p.ID,
		Metadata:  p.Metadata,
		Embedding: p.Embedding,
		AuthToken: p.AuthToken,
		RowIndex:  p.RowIndex,
		CreatedAt: p.CreatedAt,
	}
}

func (e envelope) toParticipant() *types.Participant {
	return &types.Participant{
		ID:        e.ID,
		Metadata:  e.Metadata,
		Embedding: e.Embedding,
		AuthToken: e.AuthToken,
		RowIndex:  e.RowIndex,
		CreatedAt: e.CreatedAt,
	}
}

func idKey(id string) string       { return "participant:id:" + id }
func tokenKey(token string) string { return "participant:token:" + token }

// Create persists p through inner; the cache only fills on read.
func (c *CachedParticipants) Create(ctx context.Context, p *types.Participant) error {
	return c.inner.Create(ctx, p)
}

// GetByID returns the cached participant if present, else reads through
// to inner and caches the result.
func (c *CachedParticipants) GetByID(ctx context.Context, id string) (*types.Participant, error) {
	if p, ok := c.get(ctx, idKey(id)); ok {
		return p, nil
	}

	p, err := c.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, idKey(id), p)
	return p, nil
}

// GetByToken returns the cached participant for token if present, else
// reads through to inner and caches the result under both the token and
// id keys.
func (c *CachedParticipants) GetByToken(ctx context.Context, token string) (*types.Participant, error) {
	if p, ok := c.get(ctx, tokenKey(token)); ok {
		return p, nil
	}

	p, err := c.inner.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	c.set(ctx, tokenKey(token), p)
	c.set(ctx, idKey(p.ID), p)
	return p, nil
}

// GetAll passes through uncached.
func (c *CachedParticipants) GetAll(ctx context.Context, params query.RangeQueryParams) ([]*types.Participant, error) {
	return c.inner.GetAll(ctx, params)
}

// Find passes through uncached.
func (c *CachedParticipants) Find(ctx context.Context, q query.Query, params query.RangeQueryParams) ([]*types.Participant, error) {
	return c.inner.Find(ctx, q, params)
}

// FindByIDPattern passes through uncached.
func (c *CachedParticipants) FindByIDPattern(ctx context.Context, pattern string) ([]*types.Participant, error) {
	return c.inner.FindByIDPattern(ctx, pattern)
}

// Count passes through uncached.
func (c *CachedParticipants) Count(ctx context.Context, q query.Query) (int, error) {
	return c.inner.Count(ctx, q)
}

// Update invalidates any cached entry for id -- and for the participant's
// current token, if it has one, since a token update must take effect
// immediately for auth to stay correct -- then applies updates through
// inner.
func (c *CachedParticipants) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	c.invalidateByID(ctx, id)
	return c.inner.Update(ctx, id, updates)
}

// Delete invalidates any cached entry for id and its token, then deletes
// through inner.
func (c *CachedParticipants) Delete(ctx context.Context, id string) error {
	c.invalidateByID(ctx, id)
	return c.inner.Delete(ctx, id)
}

// Close closes the Redis connection. It does not close inner.
func (c *CachedParticipants) Close() error {
	return c.client.Close()
}

func (c *CachedParticipants) get(ctx context.Context, key string) (*types.Participant, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var e envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, false
	}
	return e.toParticipant(), true
}

func (c *CachedParticipants) set(ctx context.Context, key string, p *types.Participant) {
	data, err := json.Marshal(toEnvelope(p))
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, data, c.ttl).Err()
}

func (c *CachedParticipants) invalidateByID(ctx context.Context, id string) {
	if old, err := c.inner.GetByID(ctx, id); err == nil && old.AuthToken != nil {
		c.client.Del(ctx, tokenKey(*old.AuthToken))
	}
	c.client.Del(ctx, idKey(id))
}

// Backend decorates a storage.Backend, replacing its Participants()
// controller with a CachedParticipants wrapping the original. Actions()
// and Logs() pass through unchanged.
type Backend struct {
	storage.Backend
	participants *CachedParticipants
}

// WrapBackend builds a Backend whose Participants() controller is
// Redis-cached per config, leaving inner's Actions/Logs untouched.
func WrapBackend(inner storage.Backend, config RedisConfig) (*Backend, error) {
	cached, err := NewCachedParticipants(inner.Participants(), config)
	if err != nil {
		return nil, err
	}
	return &Backend{Backend: inner, participants: cached}, nil
}

// Participants returns the Redis-cached participant controller.
func (b *Backend) Participants() storage.ParticipantController {
	return b.participants
}

// Close closes the cache's Redis connection, then the wrapped backend.
func (b *Backend) Close() error {
	if err := b.participants.Close(); err != nil {
		return err
	}
	return b.Backend.Close()
}
