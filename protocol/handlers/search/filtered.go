// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package search

import (
	"sort"
	"strings"

	"github.com/sage-x-project/marketplace/pkg/types"
)

// filtered narrows businesses to those matching every supplied
// constraint (rating threshold, amenities, menu items, free-text query),
// then ranks the survivors by rating descending.
func filtered(businesses []types.BusinessAgentProfile, params types.SearchParams) []types.BusinessAgentProfile {
	out := make([]types.BusinessAgentProfile, 0, len(businesses))
	for _, b := range businesses {
		if matchesConstraints(b, params) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Business.Rating > out[j].Business.Rating })
	return out
}

func matchesConstraints(b types.BusinessAgentProfile, params types.SearchParams) bool {
	if params.RatingThreshold != nil && b.Business.Rating < *params.RatingThreshold {
		return false
	}
	for _, amenity := range params.AmenityFeatures {
		if !b.Business.AmenityFeatures[amenity] {
			return false
		}
	}
	for _, item := range params.MenuItems {
		if _, ok := b.Business.MenuFeatures[item]; !ok {
			return false
		}
	}
	if params.Query != "" {
		q := strings.ToLower(params.Query)
		name := strings.ToLower(b.Business.Name)
		desc := strings.ToLower(b.Business.Description)
		if !strings.Contains(name, q) && !strings.Contains(desc, q) {
			return false
		}
	}
	return true
}
