// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

// Package boltbackend implements storage.Backend as a single bbolt file,
// for the "single-file local" deployment: one process, one data file,
// no external services. It is grounded on the same bolt.DB-wrapper shape
// the pack uses for JSON-in-a-bucket storage, generalized here from a
// flat key/value store into three row-indexed tables.
package boltbackend

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/sage-x-project/marketplace/pkg/errors"
	"github.com/sage-x-project/marketplace/pkg/types"
	"github.com/sage-x-project/marketplace/storage"
	"github.com/sage-x-project/marketplace/storage/query"
)

var (
	bucketParticipants      = []byte("participants")
	bucketParticipantTokens = []byte("participant_tokens") // token -> id
	bucketActions           = []byte("actions")
	bucketLogs              = []byte("logs")
)

// envelope is what every row is marshaled as: the typed JSON payload plus
// the row index and created_at extracted at write time, so reads don't
// need a second bucket lookup to sort or cursor-page.
type envelope struct {
	Index     int64           `json:"index"`
	CreatedAt time.Time       `json:"created_at"`
	Data      json.RawMessage `json:"data"`
}

// Backend is a storage.Backend backed by a single bbolt file.
type Backend struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the bbolt file at path and ensures
// all three table buckets exist.
func Open(path string) (*Backend, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.ErrStorageConnection.Wrap(err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketParticipants, bucketParticipantTokens, bucketActions, bucketLogs} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, errors.ErrStorageConnection.Wrap(err)
	}

	return &Backend{db: db}, nil
}

func (b *Backend) Participants() storage.ParticipantController { return participantController{b.db} }
func (b *Backend) Actions() storage.ActionController           { return actionController{b.db} }
func (b *Backend) Logs() storage.LogController                 { return logController{b.db} }
func (b *Backend) RowIndexColumn() string                      { return "row_index" }
func (b *Backend) Close() error                                { return b.db.Close() }

func put(db *bolt.DB, bucket []byte, id string, createdAt time.Time, value interface{}) (int64, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return 0, errors.ErrInternal.Wrap(err)
	}

	var index int64
	err = db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b.Get([]byte(id)) != nil {
			return errors.ErrDuplicateID.WithDetail("id", id)
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		index = int64(seq)
		env := envelope{Index: index, CreatedAt: createdAt, Data: data}
		encoded, err := json.Marshal(env)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), encoded)
	})
	return index, err
}

func get(db *bolt.DB, bucket []byte, id string, out interface{}) (*envelope, error) {
	var env envelope
	err := db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucket).Get([]byte(id))
		if raw == nil {
			return errors.ErrNotFound.WithDetail("id", id)
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return errors.ErrInternal.Wrap(err)
		}
		return json.Unmarshal(env.Data, out)
	})
	if err != nil {
		return nil, err
	}
	return &env, nil
}

func updateFields(db *bolt.DB, bucket []byte, id string, updates map[string]interface{}) error {
	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		raw := b.Get([]byte(id))
		if raw == nil {
			return errors.ErrNotFound.WithDetail("id", id)
		}
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return errors.ErrInternal.Wrap(err)
		}
		var fields map[string]interface{}
		if err := json.Unmarshal(env.Data, &fields); err != nil {
			return errors.ErrInternal.Wrap(err)
		}
		for k, v := range updates {
			fields[k] = v
		}
		data, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		env.Data = data
		encoded, err := json.Marshal(env)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), encoded)
	})
}

func deleteRow(db *bolt.DB, bucket []byte, id string) error {
	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b.Get([]byte(id)) == nil {
			return errors.ErrNotFound.WithDetail("id", id)
		}
		return b.Delete([]byte(id))
	})
}

// scan walks every row in bucket, invoking fn(id, envelope) for
// each. Iteration order is bbolt's key-sorted order, not insertion order,
// so callers that need row order must sort on envelope.Index themselves.
func scan(db *bolt.DB, bucket []byte, fn func(id string, env envelope) error) error {
	return db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).ForEach(func(k, v []byte) error {
			var env envelope
			if err := json.Unmarshal(v, &env); err != nil {
				return err
			}
			return fn(string(k), env)
		})
	})
}

type matchedRow struct {
	id  string
	env envelope
}

func find[T any](db *bolt.DB, bucket []byte, q query.Query, params query.RangeQueryParams) ([]*T, error) {
	var matched []matchedRow
	err := scan(db, bucket, func(id string, env envelope) error {
		if params.AfterIndex != nil && env.Index <= *params.AfterIndex {
			return nil
		}
		if params.BeforeIndex != nil && env.Index >= *params.BeforeIndex {
			return nil
		}
		if params.After != nil && !env.CreatedAt.After(*params.After) {
			return nil
		}
		if params.Before != nil && !env.CreatedAt.Before(*params.Before) {
			return nil
		}
		if query.MatchMemory(q, env.Data) {
			matched = append(matched, matchedRow{id: id, env: env})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortByIndex(matched)

	offset := 0
	if params.Offset != nil {
		offset = *params.Offset
	}
	if offset > len(matched) {
		offset = len(matched)
	}
	matched = matched[offset:]
	if params.Limit != nil && *params.Limit < len(matched) {
		matched = matched[:*params.Limit]
	}

	out := make([]*T, 0, len(matched))
	for _, m := range matched {
		var v T
		if err := json.Unmarshal(m.env.Data, &v); err != nil {
			return nil, errors.ErrInternal.Wrap(err)
		}
		out = append(out, &v)
	}
	return out, nil
}

func count(db *bolt.DB, bucket []byte, q query.Query) (int, error) {
	n := 0
	err := scan(db, bucket, func(id string, env envelope) error {
		if query.MatchMemory(q, env.Data) {
			n++
		}
		return nil
	})
	return n, err
}

func sortByIndex(rows []matchedRow) {
	// Insertion sort is fine: bbolt tables are local, row counts are
	// bounded by what fits on one machine's disk, not internet scale.
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j-1].env.Index > rows[j].env.Index; j-- {
			rows[j-1], rows[j] = rows[j], rows[j-1]
		}
	}
}

// --- ParticipantController ---

type participantController struct{ db *bolt.DB }

func (c participantController) Create(ctx context.Context, p *types.Participant) error {
	now := time.Now()
	p.CreatedAt = now
	index, err := put(c.db, bucketParticipants, p.ID, now, p)
	if err != nil {
		return err
	}
	p.RowIndex = index

	if p.AuthToken != nil {
		if err := c.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketParticipantTokens).Put([]byte(*p.AuthToken), []byte(p.ID))
		}); err != nil {
			return errors.ErrInternal.Wrap(err)
		}
	}
	return nil
}

func (c participantController) GetByID(ctx context.Context, id string) (*types.Participant, error) {
	var p types.Participant
	env, err := get(c.db, bucketParticipants, id, &p)
	if err != nil {
		return nil, err
	}
	p.RowIndex = env.Index
	return &p, nil
}

func (c participantController) GetByToken(ctx context.Context, token string) (*types.Participant, error) {
	var id string
	err := c.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketParticipantTokens).Get([]byte(token))
		if raw == nil {
			return errors.ErrNotFound.WithDetail("token", "***")
		}
		id = string(raw)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.GetByID(ctx, id)
}

func (c participantController) GetAll(ctx context.Context, params query.RangeQueryParams) ([]*types.Participant, error) {
	return find[types.Participant](c.db, bucketParticipants, nil, params)
}

func (c participantController) Find(ctx context.Context, q query.Query, params query.RangeQueryParams) ([]*types.Participant, error) {
	return find[types.Participant](c.db, bucketParticipants, q, params)
}

func (c participantController) FindByIDPattern(ctx context.Context, pattern string) ([]*types.Participant, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.ErrInvalidInput.Wrap(err)
	}
	var out []*types.Participant
	err = scan(c.db, bucketParticipants, func(id string, env envelope) error {
		if !re.MatchString(id) {
			return nil
		}
		var p types.Participant
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return err
		}
		p.RowIndex = env.Index
		out = append(out, &p)
		return nil
	})
	return out, err
}

func (c participantController) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	return updateFields(c.db, bucketParticipants, id, updates)
}

func (c participantController) Delete(ctx context.Context, id string) error {
	return deleteRow(c.db, bucketParticipants, id)
}

func (c participantController) Count(ctx context.Context, q query.Query) (int, error) {
	return count(c.db, bucketParticipants, q)
}

// --- ActionController ---

type actionController struct{ db *bolt.DB }

func (c actionController) Create(ctx context.Context, a *types.Action) error {
	now := time.Now()
	a.CreatedAt = now
	index, err := put(c.db, bucketActions, a.ID, now, a)
	if err != nil {
		return err
	}
	a.RowIndex = index
	return nil
}

func (c actionController) GetByID(ctx context.Context, id string) (*types.Action, error) {
	var a types.Action
	env, err := get(c.db, bucketActions, id, &a)
	if err != nil {
		return nil, err
	}
	a.RowIndex = env.Index
	return &a, nil
}

func (c actionController) GetAll(ctx context.Context, params query.RangeQueryParams) ([]*types.Action, error) {
	return find[types.Action](c.db, bucketActions, nil, params)
}

func (c actionController) Find(ctx context.Context, q query.Query, params query.RangeQueryParams) ([]*types.Action, error) {
	return find[types.Action](c.db, bucketActions, q, params)
}

func (c actionController) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	return updateFields(c.db, bucketActions, id, updates)
}

func (c actionController) Delete(ctx context.Context, id string) error {
	return deleteRow(c.db, bucketActions, id)
}

func (c actionController) Count(ctx context.Context, q query.Query) (int, error) {
	return count(c.db, bucketActions, q)
}

// --- LogController ---

type logController struct{ db *bolt.DB }

func (c logController) Create(ctx context.Context, l *types.Log) error {
	now := time.Now()
	l.CreatedAt = now
	index, err := put(c.db, bucketLogs, l.ID, now, l)
	if err != nil {
		return err
	}
	l.RowIndex = index
	return nil
}

func (c logController) GetByID(ctx context.Context, id string) (*types.Log, error) {
	var l types.Log
	env, err := get(c.db, bucketLogs, id, &l)
	if err != nil {
		return nil, err
	}
	l.RowIndex = env.Index
	return &l, nil
}

func (c logController) GetAll(ctx context.Context, params query.RangeQueryParams) ([]*types.Log, error) {
	return find[types.Log](c.db, bucketLogs, nil, params)
}

func (c logController) Find(ctx context.Context, q query.Query, params query.RangeQueryParams) ([]*types.Log, error) {
	return find[types.Log](c.db, bucketLogs, q, params)
}

func (c logController) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	return updateFields(c.db, bucketLogs, id, updates)
}

func (c logController) Delete(ctx context.Context, id string) error {
	return deleteRow(c.db, bucketLogs, id)
}

func (c logController) Count(ctx context.Context, q query.Query) (int, error) {
	return count(c.db, bucketLogs, q)
}
