// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package search

import (
	"regexp"
	"sort"
	"strings"

	"github.com/sage-x-project/marketplace/pkg/types"
)

// shingleK is the shingle window length used by shingleOverlapScore.
const shingleK = 4

var (
	nonAlphanumericOrSpace = regexp.MustCompile(`[^a-z0-9 ]+`)
	whitespaceRun          = regexp.MustCompile(`\s+`)
)

// normalizeForShingling lower-cases s, strips everything but letters,
// digits and spaces, collapses whitespace runs, and pads with a
// leading/trailing space so shingles can start or end on a word boundary.
func normalizeForShingling(s string) string {
	s = strings.ToLower(s)
	s = nonAlphanumericOrSpace.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return " " + s + " "
}

// shingleSet returns the set of all contiguous k-character substrings of
// s, right-padding s with spaces first if it is shorter than k.
func shingleSet(s string, k int) map[string]struct{} {
	if len(s) < k {
		s = s + strings.Repeat(" ", k-len(s))
	}
	set := make(map[string]struct{}, len(s))
	for i := 0; i+k <= len(s); i++ {
		set[s[i:i+k]] = struct{}{}
	}
	return set
}

// shingleOverlapScore is the fraction of query's k-shingles that also
// appear in doc: |intersection| / |query shingles|. Returns 0 if query
// has no shingles (the empty string).
func shingleOverlapScore(query, doc string, k int) float64 {
	q := shingleSet(normalizeForShingling(query), k)
	if len(q) == 0 {
		return 0
	}
	d := shingleSet(normalizeForShingling(doc), k)
	overlap := 0
	for s := range q {
		if _, ok := d[s]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(len(q))
}

// lexical rating-sorts businesses first (so the no-query case and ties
// are deterministic), then, if a query is given, re-ranks by shingle
// overlap score descending, breaking ties by rating descending.
func lexical(businesses []types.BusinessAgentProfile, queryText string) []types.BusinessAgentProfile {
	out := append([]types.BusinessAgentProfile(nil), businesses...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Business.Rating > out[j].Business.Rating })
	if queryText == "" {
		return out
	}

	scores := make(map[string]float64, len(out))
	for _, b := range out {
		scores[b.ID] = shingleOverlapScore(queryText, b.Business.GetSearchableText(), shingleK)
	}
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := scores[out[i].ID], scores[out[j].ID]
		if si != sj {
			return si > sj
		}
		return out[i].Business.Rating > out[j].Business.Rating
	})
	return out
}
