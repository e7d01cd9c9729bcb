package api_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreyshath-a11y/aeo-app/internal/api"
)

// mockCounter implements api.ScanCounter with overridable functions.
type mockCounter struct {
	countByUserFunc func(ctx context.Context, userID string, since time.Time) (int, error)
	countByIPFunc   func(ctx context.Context, ip string, since time.Time) (int, error)
}

func (m *mockCounter) CountByUserSince(ctx context.Context, userID string, since time.Time) (int, error) {
	return m.countByUserFunc(ctx, userID, since)
}

func (m *mockCounter) CountByIPSince(ctx context.Context, ip string, since time.Time) (int, error) {
	return m.countByIPFunc(ctx, ip, since)
}

func TestRateLimiter_AnonymousCountsByIP(t *testing.T) {
	t.Parallel()

	var gotIP string
	var gotSince time.Time
	counter := &mockCounter{
		countByIPFunc: func(_ context.Context, ip string, since time.Time) (int, error) {
			gotIP = ip
			gotSince = since
			return 2, nil
		},
		countByUserFunc: func(context.Context, string, time.Time) (int, error) {
			t.Fatal("anonymous callers must not be counted by user")
			return 0, nil
		},
	}

	limiter := api.NewRateLimiter(counter)
	result, err := limiter.Check(context.Background(), "203.0.113.7", "", "anonymous")
	require.NoError(t, err)

	assert.True(t, result.Allowed)
	assert.Equal(t, 1, result.Remaining)
	assert.Equal(t, "203.0.113.7", gotIP)

	// Anonymous callers get an hourly window.
	assert.WithinDuration(t, time.Now().Add(-time.Hour), gotSince, 2*time.Second)
	assert.WithinDuration(t, time.Now().Add(time.Hour), result.ResetAt, 2*time.Second)
}

func TestRateLimiter_TierAllowances(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tier    string
		count   int
		allowed bool
	}{
		{"anonymous", 3, false},
		{"free", 4, true},
		{"free", 5, false},
		{"monitor", 29, true},
		{"monitor", 30, false},
		{"diy", 100, false},
		{"pro", 499, true},
		{"pro", 500, false},
	}

	for _, tt := range tests {
		counter := &mockCounter{
			countByUserFunc: func(context.Context, string, time.Time) (int, error) {
				return tt.count, nil
			},
			countByIPFunc: func(context.Context, string, time.Time) (int, error) {
				return tt.count, nil
			},
		}

		limiter := api.NewRateLimiter(counter)
		result, err := limiter.Check(context.Background(), "203.0.113.7", "usr_1", tt.tier)
		require.NoError(t, err)
		assert.Equal(t, tt.allowed, result.Allowed, "%s at %d scans", tt.tier, tt.count)
	}
}

func TestRateLimiter_UnknownTierGetsAnonymousAllowance(t *testing.T) {
	t.Parallel()

	counter := &mockCounter{
		countByUserFunc: func(context.Context, string, time.Time) (int, error) {
			return 3, nil
		},
	}

	limiter := api.NewRateLimiter(counter)
	result, err := limiter.Check(context.Background(), "203.0.113.7", "usr_1", "enterprise-plus")
	require.NoError(t, err)

	assert.False(t, result.Allowed)
	assert.Zero(t, result.Remaining)
}

func TestRateLimiter_CounterError(t *testing.T) {
	t.Parallel()

	counter := &mockCounter{
		countByIPFunc: func(context.Context, string, time.Time) (int, error) {
			return 0, errors.New("connection refused")
		},
	}

	limiter := api.NewRateLimiter(counter)
	_, err := limiter.Check(context.Background(), "203.0.113.7", "", "anonymous")
	assert.Error(t, err)
}
