// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package auth

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sage-x-project/marketplace/pkg/errors"
	"github.com/sage-x-project/marketplace/storage"
)

// IDAllocator generates unique participant ids by suffixing a base id
// with the next free integer (e.g. "Agent-0", "Agent-1"). Concurrent
// requests for the same base collapse into one scan-then-insert attempt
// via singleflight, mirroring the per-base asyncio.Lock the original
// allocator keeps in process memory.
type IDAllocator struct {
	participants storage.ParticipantController
	group        singleflight.Group
	maxRetries   int
}

// NewIDAllocator builds an IDAllocator over the given controller.
func NewIDAllocator(participants storage.ParticipantController) *IDAllocator {
	return &IDAllocator{participants: participants, maxRetries: 10}
}

// Next returns a participant id of the form "<base>-<n>" not currently in
// use. It rescans on every attempt since another process may have
// inserted a colliding id between the scan and the caller's own Create.
func (a *IDAllocator) Next(ctx context.Context, base string) (string, error) {
	result, err, _ := a.group.Do(base, func() (interface{}, error) {
		return a.allocate(ctx, base)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (a *IDAllocator) allocate(ctx context.Context, base string) (string, error) {
	pattern := fmt.Sprintf(`^%s-(\d+)$`, regexp.QuoteMeta(base))
	re := regexp.MustCompile(pattern)

	for attempt := 0; attempt < a.maxRetries; attempt++ {
		matches, err := a.participants.FindByIDPattern(ctx, pattern)
		if err != nil {
			return "", err
		}

		maxSuffix := -1
		for _, p := range matches {
			if m := re.FindStringSubmatch(p.ID); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil && n > maxSuffix {
					maxSuffix = n
				}
			}
		}

		candidate := fmt.Sprintf("%s-%d", base, maxSuffix+1)
		if _, err := a.participants.GetByID(ctx, candidate); errors.IsNotFound(err) {
			return candidate, nil
		} else if err != nil {
			return "", err
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(1000+attempt) * time.Millisecond):
		}
	}

	return "", errors.ErrIDExhausted.WithDetail("base", base)
}
