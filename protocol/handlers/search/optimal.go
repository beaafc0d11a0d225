// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package search

import (
	"sort"

	"github.com/sage-x-project/marketplace/pkg/types"
)

// optimal keeps only businesses whose menu-item name set is a
// (non-strict) superset of required's keys -- the caller-supplied menu
// items it wants -- then ranks the survivors by rating descending.
// Requested prices in required are not compared against the business's
// own prices, only item names.
func optimal(businesses []types.BusinessAgentProfile, required map[string]float64) []types.BusinessAgentProfile {
	out := make([]types.BusinessAgentProfile, 0, len(businesses))
	for _, b := range businesses {
		if isSubset(required, b.Business.MenuFeatures) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Business.Rating > out[j].Business.Rating })
	return out
}

// isSubset reports whether every key in required is also a key in
// available.
func isSubset(required, available map[string]float64) bool {
	for k := range required {
		if _, ok := available[k]; !ok {
			return false
		}
	}
	return true
}
