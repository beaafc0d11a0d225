// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package query

import (
	"fmt"
	"strings"
)

// CompilePostgres renders q as a SQL boolean expression over a jsonb
// column named "data", using $-numbered placeholders starting at
// startArg. It returns the expression, the placeholder values in order,
// and the next unused placeholder index. A nil query compiles to "TRUE".
func CompilePostgres(q Query, startArg int) (string, []interface{}, int) {
	if q == nil {
		return "TRUE", nil, startArg
	}
	var args []interface{}
	expr := compilePG(q, &startArg, &args)
	return expr, args, startArg
}

func compilePG(q Query, next *int, args *[]interface{}) string {
	switch v := q.(type) {
	case Leaf:
		return compileLeafPG(v, next, args)
	case And:
		return fmt.Sprintf("(%s AND %s)", compilePG(v.Left, next, args), compilePG(v.Right, next, args))
	case Or:
		return fmt.Sprintf("(%s OR %s)", compilePG(v.Left, next, args), compilePG(v.Right, next, args))
	default:
		return "TRUE"
	}
}

func compileLeafPG(l Leaf, next *int, args *[]interface{}) string {
	path := pgPath(l.Path)

	switch l.Operator {
	case OpIsNull:
		return fmt.Sprintf("(data #>> '{%s}') IS NULL", path)
	case OpIsNotNull:
		return fmt.Sprintf("(data #>> '{%s}') IS NOT NULL", path)
	case OpLike:
		ph := placeholder(next, args, fmt.Sprintf("%%%v%%", l.Value))
		return fmt.Sprintf("(data #>> '{%s}') ILIKE %s", path, ph)
	case OpNotLike:
		ph := placeholder(next, args, fmt.Sprintf("%%%v%%", l.Value))
		return fmt.Sprintf("(data #>> '{%s}') NOT ILIKE %s", path, ph)
	case OpIn, OpNotIn:
		return compileInPG(l, path, next, args)
	}

	op, ok := sqlOperator(l.Operator)
	if !ok {
		return "TRUE"
	}

	// Numeric comparisons cast the extracted text to numeric so ordering
	// matches the JSON number, not lexicographic string order.
	if isNumeric(l.Value) {
		ph := placeholder(next, args, l.Value)
		return fmt.Sprintf("(data #>> '{%s}')::numeric %s %s", path, op, ph)
	}

	ph := placeholder(next, args, fmt.Sprintf("%v", l.Value))
	return fmt.Sprintf("(data #>> '{%s}') %s %s", path, op, ph)
}

func compileInPG(l Leaf, path string, next *int, args *[]interface{}) string {
	list, ok := l.Value.([]interface{})
	if !ok || len(list) == 0 {
		if l.Operator == OpIn {
			return "FALSE"
		}
		return "TRUE"
	}
	placeholders := make([]string, len(list))
	for i, v := range list {
		placeholders[i] = placeholder(next, args, fmt.Sprintf("%v", v))
	}
	in := fmt.Sprintf("(data #>> '{%s}') IN (%s)", path, strings.Join(placeholders, ", "))
	if l.Operator == OpNotIn {
		return "NOT " + in
	}
	return in
}

func sqlOperator(op Operator) (string, bool) {
	switch op {
	case OpEq:
		return "=", true
	case OpNeq:
		return "!=", true
	case OpGt:
		return ">", true
	case OpGte:
		return ">=", true
	case OpLt:
		return "<", true
	case OpLte:
		return "<=", true
	default:
		return "", false
	}
}

func isNumeric(value interface{}) bool {
	switch value.(type) {
	case float64, float32, int, int64:
		return true
	default:
		return false
	}
}

func placeholder(next *int, args *[]interface{}, value interface{}) string {
	*args = append(*args, value)
	ph := fmt.Sprintf("$%d", *next)
	*next++
	return ph
}

// pgPath converts dot notation ("business.rating") to the comma-separated
// path Postgres's #>> operator expects ("business,rating").
func pgPath(path string) string {
	return strings.ReplaceAll(path, ".", ",")
}
