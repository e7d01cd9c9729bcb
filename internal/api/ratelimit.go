package api

import (
	"context"
	"fmt"
	"time"
)

// Tier names as sent by the auth layer.
const (
	tierAnonymous = "anonymous"
	tierFree      = "free"
	tierMonitor   = "monitor"
	tierDIY       = "diy"
	tierPro       = "pro"
)

// tierLimit is a tier's scan allowance within a rolling window.
type tierLimit struct {
	max    int
	window time.Duration
}

// tierLimits holds the scan allowance per subscription tier. Anonymous
// visitors are counted by IP over an hour; signed-in users by user ID
// over a day.
var tierLimits = map[string]tierLimit{
	tierAnonymous: {max: 3, window: time.Hour},
	tierFree:      {max: 5, window: 24 * time.Hour},
	tierMonitor:   {max: 30, window: 24 * time.Hour},
	tierDIY:       {max: 100, window: 24 * time.Hour},
	tierPro:       {max: 500, window: 24 * time.Hour},
}

// ScanCounter counts recent scans for rate limiting.
type ScanCounter interface {
	CountByUserSince(ctx context.Context, userID string, since time.Time) (int, error)
	CountByIPSince(ctx context.Context, ip string, since time.Time) (int, error)
}

// RateLimitResult reports a rate limit decision.
type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RateLimiter enforces per-tier scan quotas against the scans table, so
// the limit holds across replicas.
type RateLimiter struct {
	counter ScanCounter
}

// NewRateLimiter creates a rate limiter backed by the given counter.
func NewRateLimiter(counter ScanCounter) *RateLimiter {
	return &RateLimiter{counter: counter}
}

// Check decides whether another scan is allowed for this caller. Unknown
// tiers get the anonymous allowance.
func (r *RateLimiter) Check(ctx context.Context, ip, userID, tier string) (RateLimitResult, error) {
	limit, ok := tierLimits[tier]
	if !ok {
		limit = tierLimits[tierAnonymous]
	}

	now := time.Now()
	windowStart := now.Add(-limit.window)

	var count int
	var err error
	if userID != "" && tier != tierAnonymous {
		count, err = r.counter.CountByUserSince(ctx, userID, windowStart)
	} else {
		count, err = r.counter.CountByIPSince(ctx, ip, windowStart)
	}
	if err != nil {
		return RateLimitResult{}, fmt.Errorf("count recent scans: %w", err)
	}

	remaining := limit.max - count
	if remaining < 0 {
		remaining = 0
	}

	return RateLimitResult{
		Allowed:   count < limit.max,
		Remaining: remaining,
		ResetAt:   now.Add(limit.window),
	}, nil
}
