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

package storage

import (
	"context"
	"encoding/json"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/sage-x-project/marketplace/pkg/errors"
	"github.com/sage-x-project/marketplace/pkg/types"
	"github.com/sage-x-project/marketplace/storage/query"
)

// MemoryBackend is an in-process Backend, safe for concurrent use. It
// keeps each table's rows JSON-encoded so storage/query.MatchMemory can
// compile filters identically to the bbolt and sharded backends.
type MemoryBackend struct {
	participants *memoryTable[types.Participant]
	actions      *memoryTable[types.Action]
	logs         *memoryTable[types.Log]
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		participants: newMemoryTable[types.Participant](),
		actions:      newMemoryTable[types.Action](),
		logs:         newMemoryTable[types.Log](),
	}
}

func (b *MemoryBackend) Participants() ParticipantController { return memoryParticipants{b.participants} }
func (b *MemoryBackend) Actions() ActionController           { return memoryActions{b.actions} }
func (b *MemoryBackend) Logs() LogController                 { return memoryLogs{b.logs} }
func (b *MemoryBackend) RowIndexColumn() string               { return "index" }
func (b *MemoryBackend) Close() error                          { return nil }

// memoryRow is the generic envelope every memory table stores: the raw
// JSON of the typed row, plus the index/created_at extracted at insert
// time so range queries don't need to re-decode every row.
type memoryRow struct {
	id        string
	index     int64
	createdAt time.Time
	data      []byte // JSON encoding of the typed value
}

type memoryTable[T any] struct {
	mu      sync.RWMutex
	rows    map[string]*memoryRow
	nextIdx int64
}

func newMemoryTable[T any]() *memoryTable[T] {
	return &memoryTable[T]{rows: make(map[string]*memoryRow)}
}

func (t *memoryTable[T]) create(id string, createdAt time.Time, value *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.rows[id]; exists {
		return errors.ErrDuplicateID.WithDetail("id", id)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return errors.ErrInternal.Wrap(err)
	}

	t.nextIdx++
	t.rows[id] = &memoryRow{id: id, index: t.nextIdx, createdAt: createdAt, data: data}
	return nil
}

func (t *memoryTable[T]) getByID(id string) (*T, *memoryRow, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	row, ok := t.rows[id]
	if !ok {
		return nil, nil, errors.ErrNotFound.WithDetail("id", id)
	}
	var v T
	if err := json.Unmarshal(row.data, &v); err != nil {
		return nil, nil, errors.ErrInternal.Wrap(err)
	}
	return &v, row, nil
}

func (t *memoryTable[T]) update(id string, updates map[string]interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	row, ok := t.rows[id]
	if !ok {
		return errors.ErrNotFound.WithDetail("id", id)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(row.data, &fields); err != nil {
		return errors.ErrInternal.Wrap(err)
	}
	for k, v := range updates {
		fields[k] = v
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return errors.ErrInternal.Wrap(err)
	}
	row.data = data
	return nil
}

func (t *memoryTable[T]) delete(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		return errors.ErrNotFound.WithDetail("id", id)
	}
	delete(t.rows, id)
	return nil
}

// snapshot returns every row sorted by index, the table's authoritative
// insertion order.
func (t *memoryTable[T]) snapshot() []*memoryRow {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rows := make([]*memoryRow, 0, len(t.rows))
	for _, r := range t.rows {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].index < rows[j].index })
	return rows
}

func (t *memoryTable[T]) find(q query.Query, params query.RangeQueryParams) ([]*T, error) {
	rows := t.snapshot()
	filtered := make([]*memoryRow, 0, len(rows))
	for _, r := range rows {
		if params.AfterIndex != nil && r.index <= *params.AfterIndex {
			continue
		}
		if params.BeforeIndex != nil && r.index >= *params.BeforeIndex {
			continue
		}
		if params.After != nil && !r.createdAt.After(*params.After) {
			continue
		}
		if params.Before != nil && !r.createdAt.Before(*params.Before) {
			continue
		}
		if query.MatchMemory(q, r.data) {
			filtered = append(filtered, r)
		}
	}

	offset := 0
	if params.Offset != nil {
		offset = *params.Offset
	}
	if offset > len(filtered) {
		offset = len(filtered)
	}
	filtered = filtered[offset:]

	if params.Limit != nil && *params.Limit < len(filtered) {
		filtered = filtered[:*params.Limit]
	}

	values := make([]*T, 0, len(filtered))
	for _, r := range filtered {
		var v T
		if err := json.Unmarshal(r.data, &v); err != nil {
			return nil, errors.ErrInternal.Wrap(err)
		}
		values = append(values, &v)
	}
	return values, nil
}

func (t *memoryTable[T]) count(q query.Query) int {
	rows := t.snapshot()
	n := 0
	for _, r := range rows {
		if query.MatchMemory(q, r.data) {
			n++
		}
	}
	return n
}

// --- ParticipantController ---

type memoryParticipants struct{ t *memoryTable[types.Participant] }

func (c memoryParticipants) Create(ctx context.Context, p *types.Participant) error {
	now := time.Now()
	p.CreatedAt = now
	if err := c.t.create(p.ID, now, p); err != nil {
		return err
	}
	_, row, _ := c.t.getByID(p.ID)
	p.RowIndex = row.index
	return nil
}

func (c memoryParticipants) GetByID(ctx context.Context, id string) (*types.Participant, error) {
	v, row, err := c.t.getByID(id)
	if err != nil {
		return nil, err
	}
	v.RowIndex = row.index
	return v, nil
}

func (c memoryParticipants) GetByToken(ctx context.Context, token string) (*types.Participant, error) {
	for _, row := range c.t.snapshot() {
		var p types.Participant
		if err := json.Unmarshal(row.data, &p); err != nil {
			continue
		}
		if p.AuthToken != nil && *p.AuthToken == token {
			p.RowIndex = row.index
			return &p, nil
		}
	}
	return nil, errors.ErrNotFound.WithDetail("token", "***")
}

func (c memoryParticipants) GetAll(ctx context.Context, params query.RangeQueryParams) ([]*types.Participant, error) {
	return c.t.find(nil, params)
}

func (c memoryParticipants) Find(ctx context.Context, q query.Query, params query.RangeQueryParams) ([]*types.Participant, error) {
	return c.t.find(q, params)
}

func (c memoryParticipants) FindByIDPattern(ctx context.Context, pattern string) ([]*types.Participant, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.ErrInvalidInput.Wrap(err)
	}
	var out []*types.Participant
	for _, row := range c.t.snapshot() {
		if !re.MatchString(row.id) {
			continue
		}
		var p types.Participant
		if err := json.Unmarshal(row.data, &p); err != nil {
			continue
		}
		p.RowIndex = row.index
		out = append(out, &p)
	}
	return out, nil
}

func (c memoryParticipants) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	return c.t.update(id, updates)
}

func (c memoryParticipants) Delete(ctx context.Context, id string) error { return c.t.delete(id) }

func (c memoryParticipants) Count(ctx context.Context, q query.Query) (int, error) {
	return c.t.count(q), nil
}

// --- ActionController ---

type memoryActions struct{ t *memoryTable[types.Action] }

func (c memoryActions) Create(ctx context.Context, a *types.Action) error {
	now := time.Now()
	a.CreatedAt = now
	if err := c.t.create(a.ID, now, a); err != nil {
		return err
	}
	_, row, _ := c.t.getByID(a.ID)
	a.RowIndex = row.index
	return nil
}

func (c memoryActions) GetByID(ctx context.Context, id string) (*types.Action, error) {
	v, row, err := c.t.getByID(id)
	if err != nil {
		return nil, err
	}
	v.RowIndex = row.index
	return v, nil
}

func (c memoryActions) GetAll(ctx context.Context, params query.RangeQueryParams) ([]*types.Action, error) {
	return c.t.find(nil, params)
}

func (c memoryActions) Find(ctx context.Context, q query.Query, params query.RangeQueryParams) ([]*types.Action, error) {
	return c.t.find(q, params)
}

func (c memoryActions) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	return c.t.update(id, updates)
}

func (c memoryActions) Delete(ctx context.Context, id string) error { return c.t.delete(id) }

func (c memoryActions) Count(ctx context.Context, q query.Query) (int, error) {
	return c.t.count(q), nil
}

// --- LogController ---

type memoryLogs struct{ t *memoryTable[types.Log] }

func (c memoryLogs) Create(ctx context.Context, l *types.Log) error {
	now := time.Now()
	l.CreatedAt = now
	if err := c.t.create(l.ID, now, l); err != nil {
		return err
	}
	_, row, _ := c.t.getByID(l.ID)
	l.RowIndex = row.index
	return nil
}

func (c memoryLogs) GetByID(ctx context.Context, id string) (*types.Log, error) {
	v, row, err := c.t.getByID(id)
	if err != nil {
		return nil, err
	}
	v.RowIndex = row.index
	return v, nil
}

func (c memoryLogs) GetAll(ctx context.Context, params query.RangeQueryParams) ([]*types.Log, error) {
	return c.t.find(nil, params)
}

func (c memoryLogs) Find(ctx context.Context, q query.Query, params query.RangeQueryParams) ([]*types.Log, error) {
	return c.t.find(q, params)
}

func (c memoryLogs) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	return c.t.update(id, updates)
}

func (c memoryLogs) Delete(ctx context.Context, id string) error { return c.t.delete(id) }

func (c memoryLogs) Count(ctx context.Context, q query.Query) (int, error) {
	return c.t.count(q), nil
}
