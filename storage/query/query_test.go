// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package query

import (
	"strings"
	"testing"
)

var sampleDoc = []byte(`{"name":"acme","business":{"rating":4.5,"open":true},"tags":["cafe","wifi"]}`)

func TestMatchMemory_Operators(t *testing.T) {
	cases := []struct {
		name string
		q    Query
		want bool
	}{
		{"eq string match", Leaf{Path: "name", Operator: OpEq, Value: "acme"}, true},
		{"eq string mismatch", Leaf{Path: "name", Operator: OpEq, Value: "other"}, false},
		{"neq", Leaf{Path: "name", Operator: OpNeq, Value: "other"}, true},
		{"gt numeric", Leaf{Path: "business.rating", Operator: OpGt, Value: 4.0}, true},
		{"lte numeric false", Leaf{Path: "business.rating", Operator: OpLte, Value: 4.0}, false},
		{"is_null missing path", Leaf{Path: "missing", Operator: OpIsNull}, true},
		{"is_not_null present", Leaf{Path: "name", Operator: OpIsNotNull}, true},
		{"contains substring", Leaf{Path: "name", Operator: OpLike, Value: "AC"}, true},
		{"not_contains", Leaf{Path: "name", Operator: OpNotLike, Value: "zzz"}, true},
		{"in match", Leaf{Path: "name", Operator: OpIn, Value: []interface{}{"acme", "other"}}, true},
		{"not_in match", Leaf{Path: "name", Operator: OpNotIn, Value: []interface{}{"x", "y"}}, true},
		{"bool eq", Leaf{Path: "business.open", Operator: OpEq, Value: true}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := MatchMemory(c.q, sampleDoc); got != c.want {
				t.Fatalf("MatchMemory(%v) = %v, want %v", c.q, got, c.want)
			}
		})
	}
}

func TestMatchMemory_AndOr(t *testing.T) {
	q := Leaf{Path: "business.rating", Operator: OpGte, Value: 4.0}.And(
		Leaf{Path: "business.open", Operator: OpEq, Value: true},
	)
	if !MatchMemory(q, sampleDoc) {
		t.Fatal("expected AND to match")
	}

	q2 := Leaf{Path: "name", Operator: OpEq, Value: "nope"}.Or(
		Leaf{Path: "business.open", Operator: OpEq, Value: true},
	)
	if !MatchMemory(q2, sampleDoc) {
		t.Fatal("expected OR to match")
	}
}

func TestAndAllOrAny(t *testing.T) {
	if AndAll() != nil {
		t.Fatal("AndAll() of no queries should be nil")
	}
	l1 := Leaf{Path: "a", Operator: OpEq, Value: 1}
	if AndAll(l1) != Query(l1) {
		t.Fatal("AndAll of one query should return it unchanged")
	}
	combined := AndAll(l1, Leaf{Path: "b", Operator: OpEq, Value: 2})
	if _, ok := combined.(And); !ok {
		t.Fatalf("expected And, got %T", combined)
	}
}

func TestCompilePostgres_Leaf(t *testing.T) {
	expr, args, next := CompilePostgres(Leaf{Path: "business.rating", Operator: OpGte, Value: 4.0}, 1)
	if !strings.Contains(expr, "business,rating") {
		t.Fatalf("expr = %s, want path business,rating", expr)
	}
	if !strings.Contains(expr, "$1") {
		t.Fatalf("expr = %s, want placeholder $1", expr)
	}
	if len(args) != 1 || args[0] != 4.0 {
		t.Fatalf("args = %v, want [4.0]", args)
	}
	if next != 2 {
		t.Fatalf("next = %d, want 2", next)
	}
}

func TestCompilePostgres_NilIsTrue(t *testing.T) {
	expr, args, next := CompilePostgres(nil, 1)
	if expr != "TRUE" {
		t.Fatalf("expr = %s, want TRUE", expr)
	}
	if len(args) != 0 || next != 1 {
		t.Fatalf("expected no args and unchanged next, got args=%v next=%d", args, next)
	}
}

func TestCompilePostgres_InOperator(t *testing.T) {
	expr, args, _ := CompilePostgres(Leaf{Path: "name", Operator: OpIn, Value: []interface{}{"a", "b"}}, 1)
	if !strings.Contains(expr, "IN ($1, $2)") {
		t.Fatalf("expr = %s, want IN ($1, $2)", expr)
	}
	if len(args) != 2 {
		t.Fatalf("args = %v, want 2 elements", args)
	}
}

func TestCompilePostgres_AndOr(t *testing.T) {
	q := And{
		Left:  Leaf{Path: "a", Operator: OpEq, Value: 1.0},
		Right: Or{Left: Leaf{Path: "b", Operator: OpEq, Value: "x"}, Right: Leaf{Path: "c", Operator: OpIsNull}},
	}
	expr, args, _ := CompilePostgres(q, 1)
	if !strings.HasPrefix(expr, "(") {
		t.Fatalf("expr = %s, want to start with (", expr)
	}
	if len(args) != 2 {
		t.Fatalf("args = %v, want 2 elements", args)
	}
}
