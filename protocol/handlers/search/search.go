// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

// Package search implements the search action's four ranking algorithms
// (simple, filtered, lexical, optimal) plus the recognized-but-unsupported
// RNR (retrieve-and-rerank) algorithm enum value.
package search

import (
	"context"
	"encoding/json"

	"github.com/sage-x-project/marketplace/pkg/errors"
	"github.com/sage-x-project/marketplace/pkg/types"
	"github.com/sage-x-project/marketplace/protocol/handlers"
	"github.com/sage-x-project/marketplace/storage"
	"github.com/sage-x-project/marketplace/storage/query"
)

// Handler dispatches a search action to the algorithm named in the
// request.
type Handler struct{}

// Execute implements protocol.Handler.
func (Handler) Execute(ctx context.Context, caller *types.Participant, req types.ActionExecutionRequest, backend storage.Backend) (types.ActionExecutionResult, error) {
	var params types.SearchParams
	if err := handlers.DecodeParams(req.Parameters, &params); err != nil {
		return handlers.ErrorResult("invalid_parameters", err.Error()), nil
	}
	if params.Page <= 0 {
		params.Page = 1
	}

	businesses, err := loadBusinesses(ctx, backend)
	if err != nil {
		return types.ActionExecutionResult{}, err
	}

	var ranked []types.BusinessAgentProfile
	switch params.Algorithm {
	case types.SearchAlgorithmSimple:
		ranked = simple(businesses)
	case types.SearchAlgorithmFiltered:
		ranked = filtered(businesses, params)
	case types.SearchAlgorithmLexical:
		ranked = lexical(businesses, params.Query)
	case types.SearchAlgorithmOptimal:
		ranked = optimal(businesses, params.MenuFeatures)
	case types.SearchAlgorithmRNR:
		return types.ActionExecutionResult{}, errors.ErrUnsupportedAlgorithm.WithDetail("algorithm", string(types.SearchAlgorithmRNR))
	default:
		return types.ActionExecutionResult{}, errors.ErrUnsupportedAlgorithm.WithDetail("algorithm", string(params.Algorithm))
	}

	return handlers.SuccessResult(paginate(ranked, params.Page, params.Limit))
}

// paginate slices ranked into the requested page and fills in the
// pagination accounting fields. limit <= 0 (including an explicit
// "limit: 0") means unpaginated: every ranked result is returned on one
// page.
func paginate(ranked []types.BusinessAgentProfile, page, limit int) types.SearchResult {
	total := len(ranked)

	if limit <= 0 {
		return types.SearchResult{Items: toItems(ranked), Total: total, Page: page, TotalPages: 1}
	}

	totalPages := (total + limit - 1) / limit
	start := (page - 1) * limit

	var slice []types.BusinessAgentProfile
	if start < total {
		end := start + limit
		if end > total {
			end = total
		}
		slice = ranked[start:end]
	}

	return types.SearchResult{Items: toItems(slice), Total: total, Page: page, TotalPages: totalPages}
}

func toItems(businesses []types.BusinessAgentProfile) []types.SearchResultItem {
	items := make([]types.SearchResultItem, 0, len(businesses))
	for _, b := range businesses {
		items = append(items, types.SearchResultItem{AgentID: b.ID, Business: b.Business})
	}
	return items
}

// loadBusinesses fetches every participant advertising business metadata
// and parses it into BusinessAgentProfile, skipping unparseable rows.
func loadBusinesses(ctx context.Context, backend storage.Backend) ([]types.BusinessAgentProfile, error) {
	q := query.Leaf{Path: "metadata.business", Operator: query.OpIsNotNull}
	rows, err := backend.Participants().Find(ctx, q, query.RangeQueryParams{})
	if err != nil {
		return nil, err
	}
	return convertParticipantsToBusinesses(rows), nil
}

// convertParticipantsToBusinesses converts registered-agent rows into
// BusinessAgentProfile, skipping any participant whose business metadata
// does not parse rather than failing the whole search.
func convertParticipantsToBusinesses(participants []*types.Participant) []types.BusinessAgentProfile {
	businesses := make([]types.BusinessAgentProfile, 0, len(participants))
	for _, p := range participants {
		raw, ok := p.Metadata["business"]
		if !ok {
			continue
		}
		data, err := json.Marshal(raw)
		if err != nil {
			continue
		}
		var b types.Business
		if err := json.Unmarshal(data, &b); err != nil {
			continue
		}
		businesses = append(businesses, types.BusinessAgentProfile{ID: p.ID, Business: b})
	}
	return businesses
}
