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
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/sage-x-project/marketplace/pkg/errors"
	"github.com/sage-x-project/marketplace/pkg/types"
	"github.com/sage-x-project/marketplace/storage/query"
)

// PostgresConfig configures the server-based Backend. Every table shares
// one connection pool; row counts here are expected to exceed what a
// single bbolt file or a handful of shards can hold.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// AutoMigrate creates the three tables (and their indexes) if they
	// don't exist yet.
	AutoMigrate bool
}

// DefaultPostgresConfig returns sane defaults for local development.
func DefaultPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		Host:            "localhost",
		Port:            5432,
		User:            "postgres",
		Database:        "marketplace",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		AutoMigrate:     true,
	}
}

// PostgresBackend is the server-based Backend: three tables, one per
// controller, each shaped (id TEXT PRIMARY KEY, row_index BIGSERIAL,
// created_at TIMESTAMPTZ, data JSONB). Filters compile through
// storage/query.CompilePostgres straight to a jsonb #>> expression, so
// the same Query values the in-memory and bbolt backends evaluate with
// gjson are pushed down to the database here instead of scanned.
type PostgresBackend struct {
	db *sql.DB
}

// NewPostgresBackend opens a connection pool and, if AutoMigrate is set,
// creates the participants/actions/logs tables.
func NewPostgresBackend(cfg *PostgresConfig) (*PostgresBackend, error) {
	if cfg == nil {
		cfg = DefaultPostgresConfig()
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, errors.ErrStorageConnection.Wrap(err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.ErrStorageConnection.Wrap(err)
	}

	b := &PostgresBackend{db: db}
	if cfg.AutoMigrate {
		if err := b.migrate(ctx); err != nil {
			db.Close()
			return nil, errors.ErrStorageConnection.Wrap(err)
		}
	}
	return b, nil
}

var pgTables = []string{"participants", "actions", "logs"}

func (b *PostgresBackend) migrate(ctx context.Context) error {
	for _, table := range pgTables {
		ddl := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				row_index BIGSERIAL UNIQUE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				data JSONB NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_%s_created_at ON %s(created_at);
			CREATE INDEX IF NOT EXISTS idx_%s_data ON %s USING GIN (data);
		`, table, table, table, table, table)
		if _, err := b.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("migrate %s: %w", table, err)
		}
	}
	// Participant auth tokens are looked up by value, so they get their
	// own expression index rather than a full-table JSON scan.
	_, err := b.db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_participants_auth_token
		ON participants ((data #>> '{auth_token}'))
	`)
	return err
}

func (b *PostgresBackend) Participants() ParticipantController { return pgParticipants{b.db} }
func (b *PostgresBackend) Actions() ActionController           { return pgActions{b.db} }
func (b *PostgresBackend) Logs() LogController                 { return pgLogs{b.db} }
func (b *PostgresBackend) RowIndexColumn() string              { return "row_index" }
func (b *PostgresBackend) Close() error                        { return b.db.Close() }

func pgInsert(ctx context.Context, db *sql.DB, table, id string, createdAt time.Time, value interface{}) (int64, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return 0, errors.ErrInternal.Wrap(err)
	}

	var rowIndex int64
	query := fmt.Sprintf(`
		INSERT INTO %s (id, created_at, data) VALUES ($1, $2, $3)
		RETURNING row_index
	`, table)
	err = db.QueryRowContext(ctx, query, id, createdAt, data).Scan(&rowIndex)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, errors.ErrDuplicateID.WithDetail("id", id)
		}
		return 0, errors.ErrInternal.Wrap(err)
	}
	return rowIndex, nil
}

func pgGetByID(ctx context.Context, db *sql.DB, table, id string, out interface{}) (int64, error) {
	var data []byte
	var rowIndex int64
	query := fmt.Sprintf(`SELECT row_index, data FROM %s WHERE id = $1`, table)
	err := db.QueryRowContext(ctx, query, id).Scan(&rowIndex, &data)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, errors.ErrNotFound.WithDetail("id", id)
		}
		return 0, errors.ErrInternal.Wrap(err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return 0, errors.ErrInternal.Wrap(err)
	}
	return rowIndex, nil
}

func pgUpdate(ctx context.Context, db *sql.DB, table, id string, updates map[string]interface{}) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.ErrInternal.Wrap(err)
	}
	defer tx.Rollback()

	var data []byte
	err = tx.QueryRowContext(ctx, fmt.Sprintf(`SELECT data FROM %s WHERE id = $1 FOR UPDATE`, table), id).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return errors.ErrNotFound.WithDetail("id", id)
		}
		return errors.ErrInternal.Wrap(err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return errors.ErrInternal.Wrap(err)
	}
	for k, v := range updates {
		fields[k] = v
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return errors.ErrInternal.Wrap(err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`UPDATE %s SET data = $1 WHERE id = $2`, table), merged, id); err != nil {
		return errors.ErrInternal.Wrap(err)
	}
	return tx.Commit()
}

func pgDelete(ctx context.Context, db *sql.DB, table, id string) error {
	res, err := db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return errors.ErrInternal.Wrap(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.ErrInternal.Wrap(err)
	}
	if n == 0 {
		return errors.ErrNotFound.WithDetail("id", id)
	}
	return nil
}

func pgFind[T any](ctx context.Context, db *sql.DB, table string, q query.Query, params query.RangeQueryParams) ([]*T, error) {
	where, args, next := query.CompilePostgres(q, 1)
	conds := []string{where}

	if params.AfterIndex != nil {
		args = append(args, *params.AfterIndex)
		conds = append(conds, fmt.Sprintf("row_index > $%d", next))
		next++
	}
	if params.BeforeIndex != nil {
		args = append(args, *params.BeforeIndex)
		conds = append(conds, fmt.Sprintf("row_index < $%d", next))
		next++
	}
	if params.After != nil {
		args = append(args, *params.After)
		conds = append(conds, fmt.Sprintf("created_at > $%d", next))
		next++
	}
	if params.Before != nil {
		args = append(args, *params.Before)
		conds = append(conds, fmt.Sprintf("created_at < $%d", next))
		next++
	}

	sqlStr := fmt.Sprintf(`SELECT data FROM %s WHERE %s ORDER BY row_index ASC`, table, joinAnd(conds))
	if params.Limit != nil {
		args = append(args, *params.Limit)
		sqlStr += fmt.Sprintf(" LIMIT $%d", next)
		next++
	}
	if params.Offset != nil {
		args = append(args, *params.Offset)
		sqlStr += fmt.Sprintf(" OFFSET $%d", next)
		next++
	}

	rows, err := db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, errors.ErrInternal.Wrap(err)
	}
	defer rows.Close()

	var out []*T
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, errors.ErrInternal.Wrap(err)
		}
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, errors.ErrInternal.Wrap(err)
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

func pgCount(ctx context.Context, db *sql.DB, table string, q query.Query) (int, error) {
	where, args, _ := query.CompilePostgres(q, 1)
	var n int
	sqlStr := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, table, where)
	err := db.QueryRowContext(ctx, sqlStr, args...).Scan(&n)
	if err != nil {
		return 0, errors.ErrInternal.Wrap(err)
	}
	return n, nil
}

func joinAnd(conds []string) string {
	out := conds[0]
	for _, c := range conds[1:] {
		out += " AND " + c
	}
	return out
}

// isUniqueViolation reports whether err is a Postgres unique_violation
// (SQLSTATE 23505), without importing lib/pq's error type directly so
// callers that stub *sql.DB in tests don't need a pq.Error.
func isUniqueViolation(err error) bool {
	type sqlState interface{ SQLState() string }
	if pe, ok := err.(sqlState); ok {
		return pe.SQLState() == "23505"
	}
	return false
}

// --- ParticipantController ---

type pgParticipants struct{ db *sql.DB }

func (c pgParticipants) Create(ctx context.Context, p *types.Participant) error {
	now := time.Now()
	p.CreatedAt = now
	idx, err := pgInsert(ctx, c.db, "participants", p.ID, now, p)
	if err != nil {
		return err
	}
	p.RowIndex = idx
	return nil
}

func (c pgParticipants) GetByID(ctx context.Context, id string) (*types.Participant, error) {
	var p types.Participant
	idx, err := pgGetByID(ctx, c.db, "participants", id, &p)
	if err != nil {
		return nil, err
	}
	p.RowIndex = idx
	return &p, nil
}

func (c pgParticipants) GetByToken(ctx context.Context, token string) (*types.Participant, error) {
	var data []byte
	var idx int64
	err := c.db.QueryRowContext(ctx,
		`SELECT row_index, data FROM participants WHERE data #>> '{auth_token}' = $1`, token,
	).Scan(&idx, &data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrNotFound.WithDetail("token", "***")
		}
		return nil, errors.ErrInternal.Wrap(err)
	}
	var p types.Participant
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.ErrInternal.Wrap(err)
	}
	p.RowIndex = idx
	return &p, nil
}

func (c pgParticipants) GetAll(ctx context.Context, params query.RangeQueryParams) ([]*types.Participant, error) {
	return pgFind[types.Participant](ctx, c.db, "participants", nil, params)
}

func (c pgParticipants) Find(ctx context.Context, q query.Query, params query.RangeQueryParams) ([]*types.Participant, error) {
	return pgFind[types.Participant](ctx, c.db, "participants", q, params)
}

func (c pgParticipants) FindByIDPattern(ctx context.Context, pattern string) ([]*types.Participant, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT data FROM participants WHERE id ~ $1 ORDER BY row_index ASC`, pattern)
	if err != nil {
		return nil, errors.ErrInternal.Wrap(err)
	}
	defer rows.Close()

	var out []*types.Participant
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, errors.ErrInternal.Wrap(err)
		}
		var p types.Participant
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, errors.ErrInternal.Wrap(err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (c pgParticipants) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	return pgUpdate(ctx, c.db, "participants", id, updates)
}

func (c pgParticipants) Delete(ctx context.Context, id string) error {
	return pgDelete(ctx, c.db, "participants", id)
}

func (c pgParticipants) Count(ctx context.Context, q query.Query) (int, error) {
	return pgCount(ctx, c.db, "participants", q)
}

// --- ActionController ---

type pgActions struct{ db *sql.DB }

func (c pgActions) Create(ctx context.Context, a *types.Action) error {
	now := time.Now()
	a.CreatedAt = now
	idx, err := pgInsert(ctx, c.db, "actions", a.ID, now, a)
	if err != nil {
		return err
	}
	a.RowIndex = idx
	return nil
}

func (c pgActions) GetByID(ctx context.Context, id string) (*types.Action, error) {
	var a types.Action
	idx, err := pgGetByID(ctx, c.db, "actions", id, &a)
	if err != nil {
		return nil, err
	}
	a.RowIndex = idx
	return &a, nil
}

func (c pgActions) GetAll(ctx context.Context, params query.RangeQueryParams) ([]*types.Action, error) {
	return pgFind[types.Action](ctx, c.db, "actions", nil, params)
}

func (c pgActions) Find(ctx context.Context, q query.Query, params query.RangeQueryParams) ([]*types.Action, error) {
	return pgFind[types.Action](ctx, c.db, "actions", q, params)
}

func (c pgActions) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	return pgUpdate(ctx, c.db, "actions", id, updates)
}

func (c pgActions) Delete(ctx context.Context, id string) error {
	return pgDelete(ctx, c.db, "actions", id)
}

func (c pgActions) Count(ctx context.Context, q query.Query) (int, error) {
	return pgCount(ctx, c.db, "actions", q)
}

// --- LogController ---

type pgLogs struct{ db *sql.DB }

func (c pgLogs) Create(ctx context.Context, l *types.Log) error {
	now := time.Now()
	l.CreatedAt = now
	idx, err := pgInsert(ctx, c.db, "logs", l.ID, now, l)
	if err != nil {
		return err
	}
	l.RowIndex = idx
	return nil
}

func (c pgLogs) GetByID(ctx context.Context, id string) (*types.Log, error) {
	var l types.Log
	idx, err := pgGetByID(ctx, c.db, "logs", id, &l)
	if err != nil {
		return nil, err
	}
	l.RowIndex = idx
	return &l, nil
}

func (c pgLogs) GetAll(ctx context.Context, params query.RangeQueryParams) ([]*types.Log, error) {
	return pgFind[types.Log](ctx, c.db, "logs", nil, params)
}

func (c pgLogs) Find(ctx context.Context, q query.Query, params query.RangeQueryParams) ([]*types.Log, error) {
	return pgFind[types.Log](ctx, c.db, "logs", q, params)
}

func (c pgLogs) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	return pgUpdate(ctx, c.db, "logs", id, updates)
}

func (c pgLogs) Delete(ctx context.Context, id string) error {
	return pgDelete(ctx, c.db, "logs", id)
}

func (c pgLogs) Count(ctx context.Context, q query.Query) (int, error) {
	return pgCount(ctx, c.db, "logs", q)
}
