// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package query

import (
	"strings"

	"github.com/tidwall/gjson"
)

// MatchMemory evaluates q against the raw JSON document data, using gjson
// path lookups. A nil query matches everything.
func MatchMemory(q Query, data []byte) bool {
	if q == nil {
		return true
	}
	switch v := q.(type) {
	case Leaf:
		return matchLeaf(v, data)
	case And:
		return MatchMemory(v.Left, data) && MatchMemory(v.Right, data)
	case Or:
		return MatchMemory(v.Left, data) || MatchMemory(v.Right, data)
	default:
		return false
	}
}

func matchLeaf(l Leaf, data []byte) bool {
	result := gjson.GetBytes(data, l.Path)

	switch l.Operator {
	case OpIsNull:
		return !result.Exists() || result.Type == gjson.Null
	case OpIsNotNull:
		return result.Exists() && result.Type != gjson.Null
	}

	if !result.Exists() {
		return false
	}

	switch l.Operator {
	case OpEq:
		return compareEq(result, l.Value)
	case OpNeq:
		return !compareEq(result, l.Value)
	case OpGt, OpGte, OpLt, OpLte:
		return compareOrdered(l.Operator, result, l.Value)
	case OpLike:
		s, ok := l.Value.(string)
		if !ok {
			return false
		}
		return strings.Contains(strings.ToLower(result.String()), strings.ToLower(s))
	case OpNotLike:
		s, ok := l.Value.(string)
		if !ok {
			return false
		}
		return !strings.Contains(strings.ToLower(result.String()), strings.ToLower(s))
	case OpIn:
		return matchIn(result, l.Value, true)
	case OpNotIn:
		return matchIn(result, l.Value, false)
	default:
		return false
	}
}

// matchIn reports whether result equals any element of values (a slice),
// XOR'd with !want so OpNotIn is just the negation sharing this code.
func matchIn(result gjson.Result, values interface{}, want bool) bool {
	list, ok := values.([]interface{})
	if !ok {
		return !want
	}
	found := false
	for _, v := range list {
		if compareEq(result, v) {
			found = true
			break
		}
	}
	return found == want
}

func compareEq(result gjson.Result, value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return (result.Type == gjson.True || result.Type == gjson.False) && result.Bool() == v
	case string:
		return result.Type == gjson.String && result.String() == v
	case float64:
		return result.Num == v
	case int:
		return result.Num == float64(v)
	case nil:
		return result.Type == gjson.Null
	default:
		return result.String() == toString(value)
	}
}

func compareOrdered(op Operator, result gjson.Result, value interface{}) bool {
	a := result.Num
	b, ok := toFloat(value)
	if !ok {
		return false
	}
	switch op {
	case OpGt:
		return a > b
	case OpGte:
		return a >= b
	case OpLt:
		return a < b
	case OpLte:
		return a <= b
	}
	return false
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func toString(value interface{}) string {
	s, _ := value.(string)
	return s
}
