// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

// Package query implements the JSON-path predicate tree every storage
// backend filters and searches with. A Query is built once by handler
// code and compiled by each backend against its own storage shape: gjson
// path evaluation over the raw JSON blob for the in-memory and bbolt
// backends, jsonb operators for Postgres.
package query

import "time"

// Operator is the comparison applied by a Leaf predicate.
type Operator string

const (
	OpEq          Operator = "="
	OpNeq         Operator = "!="
	OpGt          Operator = ">"
	OpGte         Operator = ">="
	OpLt          Operator = "<"
	OpLte         Operator = "<="
	OpIsNull      Operator = "is_null"
	OpIsNotNull   Operator = "is_not_null"
	OpLike        Operator = "contains"     // substring match, case-insensitive
	OpNotLike     Operator = "not_contains" // negated substring match, case-insensitive
	OpIn          Operator = "in"           // Value must be a []interface{}
	OpNotIn       Operator = "not_in"       // Value must be a []interface{}
)

// OpContains is an alias for OpLike kept for the simpler substring-match
// call sites that don't care about the IN/NOT IN family.
const OpContains = OpLike

// Query is a predicate tree: a Leaf, or an And/Or combination of two
// sub-queries. Build trees with Leaf literals and the And/Or helpers, or
// the package-level combinators AndAll/OrAny for variadic use.
type Query interface {
	isQuery()
}

// Leaf evaluates a single JSON path against Value using Operator. Path
// uses dot notation ("business.rating"); each backend's compiler
// translates it to its own path syntax.
type Leaf struct {
	Path     string
	Operator Operator
	Value    interface{}
}

func (Leaf) isQuery() {}

// And returns the conjunction of q and other.
func (q Leaf) And(other Query) Query { return And{Left: q, Right: other} }

// Or returns the disjunction of q and other.
func (q Leaf) Or(other Query) Query { return Or{Left: q, Right: other} }

// And is the conjunction of two sub-queries.
type And struct{ Left, Right Query }

func (And) isQuery() {}

// Or is the disjunction of two sub-queries.
type Or struct{ Left, Right Query }

func (Or) isQuery() {}

// AndAll folds queries into a left-associative conjunction. Returns nil
// for an empty slice, and the single element unchanged for one.
func AndAll(queries ...Query) Query {
	return fold(queries, func(l, r Query) Query { return And{Left: l, Right: r} })
}

// OrAny folds queries into a left-associative disjunction.
func OrAny(queries ...Query) Query {
	return fold(queries, func(l, r Query) Query { return Or{Left: l, Right: r} })
}

func fold(queries []Query, combine func(l, r Query) Query) Query {
	var acc Query
	for _, q := range queries {
		if q == nil {
			continue
		}
		if acc == nil {
			acc = q
			continue
		}
		acc = combine(acc, q)
	}
	return acc
}

// RangeQueryParams bounds and paginates a Find call. Offset/Limit page by
// position; After/Before and AfterIndex/BeforeIndex page by a cursor on
// created_at or row index respectively. A backend applies whichever
// cursor fields are set in addition to offset/limit.
type RangeQueryParams struct {
	Offset      *int
	Limit       *int
	After       *time.Time
	Before      *time.Time
	AfterIndex  *int64
	BeforeIndex *int64
}

// WithOffset returns p with Offset set, for fluent construction.
func (p RangeQueryParams) WithOffset(offset int) RangeQueryParams {
	p.Offset = &offset
	return p
}

// WithLimit returns p with Limit set.
func (p RangeQueryParams) WithLimit(limit int) RangeQueryParams {
	p.Limit = &limit
	return p
}
