// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

// Package sharded implements storage.Backend as N bbolt shards, each one
// a boltbackend.Backend, hash-partitioned by id with blake2b. Writes to
// different ids with different shards proceed concurrently (bbolt's
// single-writer-transaction limit is per file); reads that need the full
// table fan out to every shard and merge-sort the results.
package sharded

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"

	"github.com/sage-x-project/marketplace/pkg/errors"
	"github.com/sage-x-project/marketplace/pkg/types"
	"github.com/sage-x-project/marketplace/storage"
	"github.com/sage-x-project/marketplace/storage/boltbackend"
	"github.com/sage-x-project/marketplace/storage/query"
)

// Backend is a storage.Backend spread across N bbolt shard files.
type Backend struct {
	shards []*boltbackend.Backend
}

// Open opens (creating if necessary) n shard files under dir, named
// shard-0.db .. shard-(n-1).db.
func Open(dir string, n int) (*Backend, error) {
	if n < 1 {
		return nil, errors.ErrInvalidInput.WithMessage("shard count must be >= 1")
	}
	shards := make([]*boltbackend.Backend, n)
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("shard-%d.db", i))
		b, err := boltbackend.Open(path)
		if err != nil {
			for _, opened := range shards[:i] {
				opened.Close()
			}
			return nil, err
		}
		shards[i] = b
	}
	return &Backend{shards: shards}, nil
}

// shardIndex hashes id with blake2b-256 and reduces mod len(shards). The
// hash (not FNV or a simple sum) is what the rest of the pack reaches
// for when it needs a uniform, non-adversarial partition function.
func shardIndex(id string, n int) int {
	sum := blake2b.Sum256([]byte(id))
	var h uint64
	for _, b := range sum[:8] {
		h = h<<8 | uint64(b)
	}
	return int(h % uint64(n))
}

func (b *Backend) shardFor(id string) *boltbackend.Backend {
	return b.shards[shardIndex(id, len(b.shards))]
}

func (b *Backend) Participants() storage.ParticipantController {
	return shardedParticipants{b.shards}
}
func (b *Backend) Actions() storage.ActionController { return shardedActions{b.shards} }
func (b *Backend) Logs() storage.LogController       { return shardedLogs{b.shards} }
func (b *Backend) RowIndexColumn() string            { return "row_index" }

func (b *Backend) Close() error {
	var firstErr error
	for _, s := range b.shards {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// fanOut runs fn against every shard concurrently and collects results in
// shard order. The calls are not cancelled when one fails: every call
// runs to completion and the first error is returned.
func fanOut[T any](shards []*boltbackend.Backend, fn func(*boltbackend.Backend) ([]T, error)) ([]T, error) {
	results := make([][]T, len(shards))
	g, _ := errgroup.WithContext(context.Background())
	for i, s := range shards {
		i, s := i, s
		g.Go(func() error {
			r, err := fn(s)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var merged []T
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged, nil
}

// mergeByCreatedAt sorts rows by created_at ascending, so the sharded
// backend presents the same global ordering a single-file backend would,
// modulo id for stable tie-breaks among same-timestamp rows.
func mergeByCreatedAt[T any](rows []T, createdAt func(T) (string, int64)) []T {
	sort.SliceStable(rows, func(i, j int) bool {
		idI, idxI := createdAt(rows[i])
		idJ, idxJ := createdAt(rows[j])
		if idxI != idxJ {
			return idxI < idxJ
		}
		return idI < idJ
	})
	return rows
}

// filterByGlobalIndex drops rows outside (afterIdx, beforeIdx), treating
// a row's 1-based position in the merge-sorted slice as its synthetic
// global index. This only holds for the snapshot being filtered; it is
// not a stable id and must not be persisted or returned to callers.
func filterByGlobalIndex[T any](rows []T, afterIdx, beforeIdx *int64) []T {
	if afterIdx == nil && beforeIdx == nil {
		return rows
	}
	out := rows[:0:0]
	for i, r := range rows {
		idx := int64(i + 1)
		if afterIdx != nil && idx <= *afterIdx {
			continue
		}
		if beforeIdx != nil && idx >= *beforeIdx {
			continue
		}
		out = append(out, r)
	}
	return out
}

func applyWindow[T any](rows []T, params query.RangeQueryParams) []T {
	offset := 0
	if params.Offset != nil {
		offset = *params.Offset
	}
	if offset > len(rows) {
		offset = len(rows)
	}
	rows = rows[offset:]
	if params.Limit != nil && *params.Limit < len(rows) {
		rows = rows[:*params.Limit]
	}
	return rows
}

// --- ParticipantController ---

type shardedParticipants struct{ shards []*boltbackend.Backend }

func (c shardedParticipants) shardFor(id string) storage.ParticipantController {
	return c.shards[shardIndex(id, len(c.shards))].Participants()
}

func (c shardedParticipants) Create(ctx context.Context, p *types.Participant) error {
	return c.shardFor(p.ID).Create(ctx, p)
}

func (c shardedParticipants) GetByID(ctx context.Context, id string) (*types.Participant, error) {
	return c.shardFor(id).GetByID(ctx, id)
}

func (c shardedParticipants) GetByToken(ctx context.Context, token string) (*types.Participant, error) {
	// Tokens aren't derived from id, so they can land on any shard.
	for _, s := range c.shards {
		p, err := s.Participants().GetByToken(ctx, token)
		if err == nil {
			return p, nil
		}
		if !errors.IsNotFound(err) {
			return nil, err
		}
	}
	return nil, errors.ErrNotFound.WithDetail("token", "***")
}

func (c shardedParticipants) GetAll(ctx context.Context, params query.RangeQueryParams) ([]*types.Participant, error) {
	return c.Find(ctx, nil, params)
}

func (c shardedParticipants) Find(ctx context.Context, q query.Query, params query.RangeQueryParams) ([]*types.Participant, error) {
	unbounded := params
	unbounded.Offset, unbounded.Limit = nil, nil
	// Per-shard row indices aren't comparable across shards, so index
	// cursors are dropped before fanning out and re-applied after the
	// merge sort establishes a global order.
	afterIdx, beforeIdx := unbounded.AfterIndex, unbounded.BeforeIndex
	unbounded.AfterIndex, unbounded.BeforeIndex = nil, nil

	merged, err := fanOut(c.shards, func(s *boltbackend.Backend) ([]*types.Participant, error) {
		return s.Participants().Find(ctx, q, unbounded)
	})
	if err != nil {
		return nil, err
	}
	merged = mergeByCreatedAt(merged, func(p *types.Participant) (string, int64) {
		return p.ID, p.CreatedAt.UnixNano()
	})
	merged = filterByGlobalIndex(merged, afterIdx, beforeIdx)
	return applyWindow(merged, params), nil
}

func (c shardedParticipants) FindByIDPattern(ctx context.Context, pattern string) ([]*types.Participant, error) {
	if _, err := regexp.Compile(pattern); err != nil {
		return nil, errors.ErrInvalidInput.Wrap(err)
	}
	return fanOut(c.shards, func(s *boltbackend.Backend) ([]*types.Participant, error) {
		return s.Participants().FindByIDPattern(ctx, pattern)
	})
}

func (c shardedParticipants) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	return c.shardFor(id).Update(ctx, id, updates)
}

func (c shardedParticipants) Delete(ctx context.Context, id string) error {
	return c.shardFor(id).Delete(ctx, id)
}

func (c shardedParticipants) Count(ctx context.Context, q query.Query) (int, error) {
	counts, err := fanOut(c.shards, func(s *boltbackend.Backend) ([]int, error) {
		n, err := s.Participants().Count(ctx, q)
		return []int{n}, err
	})
	if err != nil {
		return 0, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return total, nil
}

// --- ActionController ---

type shardedActions struct{ shards []*boltbackend.Backend }

func (c shardedActions) shardFor(id string) storage.ActionController {
	return c.shards[shardIndex(id, len(c.shards))].Actions()
}

func (c shardedActions) Create(ctx context.Context, a *types.Action) error {
	return c.shardFor(a.ID).Create(ctx, a)
}

func (c shardedActions) GetByID(ctx context.Context, id string) (*types.Action, error) {
	return c.shardFor(id).GetByID(ctx, id)
}

func (c shardedActions) GetAll(ctx context.Context, params query.RangeQueryParams) ([]*types.Action, error) {
	return c.Find(ctx, nil, params)
}

func (c shardedActions) Find(ctx context.Context, q query.Query, params query.RangeQueryParams) ([]*types.Action, error) {
	unbounded := params
	unbounded.Offset, unbounded.Limit = nil, nil
	// Per-shard row indices aren't comparable across shards, so index
	// cursors are dropped before fanning out and re-applied after the
	// merge sort establishes a global order.
	afterIdx, beforeIdx := unbounded.AfterIndex, unbounded.BeforeIndex
	unbounded.AfterIndex, unbounded.BeforeIndex = nil, nil

	merged, err := fanOut(c.shards, func(s *boltbackend.Backend) ([]*types.Action, error) {
		return s.Actions().Find(ctx, q, unbounded)
	})
	if err != nil {
		return nil, err
	}
	merged = mergeByCreatedAt(merged, func(a *types.Action) (string, int64) {
		return a.ID, a.CreatedAt.UnixNano()
	})
	merged = filterByGlobalIndex(merged, afterIdx, beforeIdx)
	return applyWindow(merged, params), nil
}

func (c shardedActions) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	return c.shardFor(id).Update(ctx, id, updates)
}

func (c shardedActions) Delete(ctx context.Context, id string) error {
	return c.shardFor(id).Delete(ctx, id)
}

func (c shardedActions) Count(ctx context.Context, q query.Query) (int, error) {
	counts, err := fanOut(c.shards, func(s *boltbackend.Backend) ([]int, error) {
		n, err := s.Actions().Count(ctx, q)
		return []int{n}, err
	})
	if err != nil {
		return 0, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return total, nil
}

// --- LogController ---

type shardedLogs struct{ shards []*boltbackend.Backend }

func (c shardedLogs) shardFor(id string) storage.LogController {
	return c.shards[shardIndex(id, len(c.shards))].Logs()
}

func (c shardedLogs) Create(ctx context.Context, l *types.Log) error {
	return c.shardFor(l.ID).Create(ctx, l)
}

func (c shardedLogs) GetByID(ctx context.Context, id string) (*types.Log, error) {
	return c.shardFor(id).GetByID(ctx, id)
}

func (c shardedLogs) GetAll(ctx context.Context, params query.RangeQueryParams) ([]*types.Log, error) {
	return c.Find(ctx, nil, params)
}

func (c shardedLogs) Find(ctx context.Context, q query.Query, params query.RangeQueryParams) ([]*types.Log, error) {
	unbounded := params
	unbounded.Offset, unbounded.Limit = nil, nil
	// Per-shard row indices aren't comparable across shards, so index
	// cursors are dropped before fanning out and re-applied after the
	// merge sort establishes a global order.
	afterIdx, beforeIdx := unbounded.AfterIndex, unbounded.BeforeIndex
	unbounded.AfterIndex, unbounded.BeforeIndex = nil, nil

	merged, err := fanOut(c.shards, func(s *boltbackend.Backend) ([]*types.Log, error) {
		return s.Logs().Find(ctx, q, unbounded)
	})
	if err != nil {
		return nil, err
	}
	merged = mergeByCreatedAt(merged, func(l *types.Log) (string, int64) {
		return l.ID, l.CreatedAt.UnixNano()
	})
	merged = filterByGlobalIndex(merged, afterIdx, beforeIdx)
	return applyWindow(merged, params), nil
}

func (c shardedLogs) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	return c.shardFor(id).Update(ctx, id, updates)
}

func (c shardedLogs) Delete(ctx context.Context, id string) error {
	return c.shardFor(id).Delete(ctx, id)
}

func (c shardedLogs) Count(ctx context.Context, q query.Query) (int, error) {
	counts, err := fanOut(c.shards, func(s *boltbackend.Backend) ([]int, error) {
		n, err := s.Logs().Count(ctx, q)
		return []int{n}, err
	})
	if err != nil {
		return 0, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return total, nil
}
