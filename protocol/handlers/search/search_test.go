// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package search

import (
	"context"
	"testing"

	"github.com/sage-x-project/marketplace/pkg/errors"
	"github.com/sage-x-project/marketplace/pkg/types"
	"github.com/sage-x-project/marketplace/protocol/handlers"
	"github.com/sage-x-project/marketplace/storage"
)

func registerBusiness(t *testing.T, backend storage.Backend, id string, b types.Business) {
	t.Helper()
	p := &types.Participant{
		ID:       id,
		Metadata: map[string]interface{}{"business": b},
	}
	if err := backend.Participants().Create(context.Background(), p); err != nil {
		t.Fatalf("create %s: %v", id, err)
	}
}

func seedBusinesses(t *testing.T, backend storage.Backend) {
	t.Helper()
	registerBusiness(t, backend, "cafe-a", types.Business{
		Name: "Acme Cafe", Description: "cozy coffee shop", Rating: 4.2,
		AmenityFeatures: map[string]bool{"wifi": true},
		MenuFeatures:    map[string]float64{"latte": 4.50, "espresso": 3.00},
	})
	registerBusiness(t, backend, "cafe-b", types.Business{
		Name: "Best Bakery", Description: "fresh bread daily", Rating: 4.8,
		AmenityFeatures: map[string]bool{"wifi": false, "parking": true},
		MenuFeatures:    map[string]float64{"bread": 5.25, "latte": 4.75},
	})
	registerBusiness(t, backend, "cafe-c", types.Business{
		Name: "Corner Diner", Description: "classic breakfast spot", Rating: 3.9,
		AmenityFeatures: map[string]bool{"wifi": true, "parking": true},
		MenuFeatures:    map[string]float64{"pancakes": 6.00},
	})
	// Not a business: search must skip it.
	p := &types.Participant{ID: "shopper-1", Metadata: map[string]interface{}{"preferences": "none"}}
	if err := backend.Participants().Create(context.Background(), p); err != nil {
		t.Fatalf("create shopper: %v", err)
	}
}

func execSearch(t *testing.T, backend storage.Backend, params types.SearchParams) types.SearchResult {
	t.Helper()
	req := types.ActionExecutionRequest{Name: types.ActionSearch}
	raw, err := handlers.SuccessResult(params)
	if err != nil {
		t.Fatalf("encode params: %v", err)
	}
	req.Parameters = raw.Content

	result, err := (Handler{}).Execute(context.Background(), nil, req, backend)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %+v", result.Content)
	}
	var decoded types.SearchResult
	if err := handlers.DecodeParams(result.Content, &decoded); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return decoded
}

func TestSearch_SimpleRanksByRatingDescending(t *testing.T) {
	backend := storage.NewMemoryBackend()
	seedBusinesses(t, backend)

	result := execSearch(t, backend, types.SearchParams{Algorithm: types.SearchAlgorithmSimple, Limit: 10, Page: 1})
	if result.Total != 3 {
		t.Fatalf("Total = %d, want 3", result.Total)
	}
	if result.Items[0].AgentID != "cafe-b" {
		t.Errorf("Items[0] = %s, want cafe-b (highest rating)", result.Items[0].AgentID)
	}
}

func TestSearch_FilteredByRatingThresholdAndAmenity(t *testing.T) {
	backend := storage.NewMemoryBackend()
	seedBusinesses(t, backend)

	threshold := 4.0
	result := execSearch(t, backend, types.SearchParams{
		Algorithm:       types.SearchAlgorithmFiltered,
		RatingThreshold: &threshold,
		AmenityFeatures: []string{"wifi"},
		Limit:           10,
		Page:            1,
	})
	if result.Total != 1 || result.Items[0].AgentID != "cafe-a" {
		t.Fatalf("result = %+v, want exactly cafe-a", result)
	}
}

func TestSearch_FilteredByQueryText(t *testing.T) {
	backend := storage.NewMemoryBackend()
	seedBusinesses(t, backend)

	result := execSearch(t, backend, types.SearchParams{
		Algorithm: types.SearchAlgorithmFiltered,
		Query:     "bread",
		Limit:     10,
		Page:      1,
	})
	if result.Total != 1 || result.Items[0].AgentID != "cafe-b" {
		t.Fatalf("result = %+v, want exactly cafe-b", result)
	}
}

func TestSearch_LexicalRanksByShingleOverlap(t *testing.T) {
	backend := storage.NewMemoryBackend()
	seedBusinesses(t, backend)

	result := execSearch(t, backend, types.SearchParams{
		Algorithm: types.SearchAlgorithmLexical,
		Query:     "cozy coffee",
		Limit:     10,
		Page:      1,
	})
	if len(result.Items) == 0 || result.Items[0].AgentID != "cafe-a" {
		t.Fatalf("result = %+v, want cafe-a ranked first", result)
	}
}

func TestSearch_OptimalRequiresMenuFeatureSubset(t *testing.T) {
	backend := storage.NewMemoryBackend()
	seedBusinesses(t, backend)

	result := execSearch(t, backend, types.SearchParams{
		Algorithm:    types.SearchAlgorithmOptimal,
		MenuFeatures: map[string]float64{"latte": 99.99},
		Limit:        10,
		Page:         1,
	})
	if result.Total != 2 {
		t.Fatalf("Total = %d, want 2 (cafe-a, cafe-b both serve latte)", result.Total)
	}
	if result.Items[0].AgentID != "cafe-b" {
		t.Errorf("Items[0] = %s, want cafe-b (higher rating)", result.Items[0].AgentID)
	}
}

// TestSearch_OptimalIgnoresRequestedPriceValue confirms the subset check
// ported from is_subset compares menu item names only: a requested price
// that does not match what the business actually charges still matches,
// since optimal.py never compares values.
func TestSearch_OptimalIgnoresRequestedPriceValue(t *testing.T) {
	backend := storage.NewMemoryBackend()
	seedBusinesses(t, backend)

	result := execSearch(t, backend, types.SearchParams{
		Algorithm:    types.SearchAlgorithmOptimal,
		MenuFeatures: map[string]float64{"bread": 0.01},
		Limit:        10,
		Page:         1,
	})
	if result.Total != 1 || result.Items[0].AgentID != "cafe-b" {
		t.Fatalf("result = %+v, want exactly cafe-b regardless of requested price", result)
	}
}

// TestSearch_RegisteredBusinessWithNumericMenuPricesSurvivesRoundTrip
// guards against the unmarshal-and-drop bug: a participant whose
// MenuFeatures carries real JSON-number prices must still come back out
// of convertParticipantsToBusinesses, not be silently skipped because the
// field no longer decodes as a bool.
func TestSearch_RegisteredBusinessWithNumericMenuPricesSurvivesRoundTrip(t *testing.T) {
	backend := storage.NewMemoryBackend()
	registerBusiness(t, backend, "priced-cafe", types.Business{
		Name: "Priced Cafe", Description: "has real prices", Rating: 4.0,
		MenuFeatures: map[string]float64{"mocha": 5.5},
	})

	result := execSearch(t, backend, types.SearchParams{Algorithm: types.SearchAlgorithmSimple, Limit: 10, Page: 1})
	if result.Total != 1 || result.Items[0].AgentID != "priced-cafe" {
		t.Fatalf("result = %+v, want priced-cafe present (not silently dropped)", result)
	}
}

func TestSearch_PaginationRespectsLimitAndPage(t *testing.T) {
	backend := storage.NewMemoryBackend()
	seedBusinesses(t, backend)

	result := execSearch(t, backend, types.SearchParams{Algorithm: types.SearchAlgorithmSimple, Limit: 2, Page: 2})
	if result.TotalPages != 2 {
		t.Fatalf("TotalPages = %d, want 2", result.TotalPages)
	}
	if len(result.Items) != 1 {
		t.Fatalf("len(Items) = %d, want 1 (last page)", len(result.Items))
	}
}

func TestSearch_OmittedLimitReturnsEverythingUnpaginated(t *testing.T) {
	backend := storage.NewMemoryBackend()
	seedBusinesses(t, backend)

	result := execSearch(t, backend, types.SearchParams{Algorithm: types.SearchAlgorithmSimple, Page: 1})
	if result.TotalPages != 1 {
		t.Fatalf("TotalPages = %d, want 1 (unpaginated)", result.TotalPages)
	}
	if len(result.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3 (every business, no page size)", len(result.Items))
	}
}

func TestSearch_ExplicitZeroLimitReturnsEverythingUnpaginated(t *testing.T) {
	backend := storage.NewMemoryBackend()
	seedBusinesses(t, backend)

	result := execSearch(t, backend, types.SearchParams{Algorithm: types.SearchAlgorithmSimple, Limit: 0, Page: 1})
	if result.TotalPages != 1 || len(result.Items) != 3 {
		t.Fatalf("result = %+v, want all 3 items on 1 page", result)
	}
}

func TestSearch_RNRIsUnsupported(t *testing.T) {
	backend := storage.NewMemoryBackend()
	seedBusinesses(t, backend)

	req := types.ActionExecutionRequest{Name: types.ActionSearch, Parameters: map[string]interface{}{
		"search_algorithm": string(types.SearchAlgorithmRNR),
	}}
	_, err := (Handler{}).Execute(context.Background(), nil, req, backend)
	if !errors.Is(err, errors.ErrUnsupportedAlgorithm) {
		t.Fatalf("err = %v, want ErrUnsupportedAlgorithm", err)
	}
}
