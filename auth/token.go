// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

// Package auth issues and validates participant auth tokens and allocates
// unique participant ids.
package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/sage-x-project/marketplace/pkg/errors"
	"github.com/sage-x-project/marketplace/storage"
)

// TokenService issues and validates bearer tokens for participants,
// persisting them through a ParticipantController rather than holding
// state of its own.
type TokenService struct {
	participants storage.ParticipantController
}

// NewTokenService builds a TokenService over the given controller.
func NewTokenService(participants storage.ParticipantController) *TokenService {
	return &TokenService{participants: participants}
}

// GenerateToken mints a new v4 UUID token for agentID and persists it.
func (s *TokenService) GenerateToken(ctx context.Context, agentID string) (string, error) {
	token := uuid.New().String()
	if err := s.participants.Update(ctx, agentID, map[string]interface{}{"auth_token": token}); err != nil {
		return "", err
	}
	return token, nil
}

// ValidateToken resolves a token back to its participant id. It returns
// errors.ErrUnauthorized if the token is unknown, matching the gateway's
// 401 mapping for every other auth failure.
func (s *TokenService) ValidateToken(ctx context.Context, token string) (string, error) {
	p, err := s.participants.GetByToken(ctx, token)
	if err != nil {
		if errors.IsNotFound(err) {
			return "", errors.ErrUnauthorized
		}
		return "", err
	}
	return p.ID, nil
}

// RevokeToken clears agentID's token.
func (s *TokenService) RevokeToken(ctx context.Context, agentID string) error {
	return s.participants.Update(ctx, agentID, map[string]interface{}{"auth_token": nil})
}
