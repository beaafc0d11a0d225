// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package search

import (
	"sort"

	"github.com/sage-x-project/marketplace/pkg/types"
)

// simple ranks every business by rating descending, with no filtering.
func simple(businesses []types.BusinessAgentProfile) []types.BusinessAgentProfile {
	out := append([]types.BusinessAgentProfile(nil), businesses...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Business.Rating > out[j].Business.Rating })
	return out
}
