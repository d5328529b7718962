package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/scrutor/internal/common"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"nil", nil, false},
		{"rate limit status", errors.New("googleapi: Error 429: rate limited"), true},
		{"resource exhausted", errors.New("rpc error: RESOURCE_EXHAUSTED"), true},
		{"server error", errors.New("Error 503: Service Unavailable"), true},
		{"timeout", errors.New("request timeout while awaiting headers"), true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("embed: %w", context.DeadlineExceeded), true},
		{"canceled", context.Canceled, false},
		{"wrapped canceled", fmt.Errorf("embed: %w", context.Canceled), false},
		{"bad request", errors.New("Error 400: INVALID_ARGUMENT"), false},
		{"auth failure", errors.New("Error 401: API key not valid"), false},
		{"permission denied", errors.New("Error 403: PERMISSION_DENIED"), false},
		{"unknown", errors.New("something unexpected"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.transient, IsTransient(tt.err))
		})
	}
}

func TestBackoff_Exponential(t *testing.T) {
	cfg := &RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    500 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}

	assert.Equal(t, 500*time.Millisecond, cfg.Backoff(0))
	assert.Equal(t, 1*time.Second, cfg.Backoff(1))
	assert.Equal(t, 2*time.Second, cfg.Backoff(2))
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	cfg := &RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, BackoffMultiplier: 2.0}

	calls := 0
	err := Retry(context.Background(), cfg, common.GetLogger(), "test", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("Error 503: Service Unavailable")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	cfg := &RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, BackoffMultiplier: 2.0}

	calls := 0
	permanent := errors.New("Error 400: INVALID_ARGUMENT")
	err := Retry(context.Background(), cfg, common.GetLogger(), "test", func(ctx context.Context) error {
		calls++
		return permanent
	})

	assert.Equal(t, permanent, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	cfg := &RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, BackoffMultiplier: 2.0}

	calls := 0
	transient := errors.New("Error 429: quota exceeded")
	err := Retry(context.Background(), cfg, common.GetLogger(), "test", func(ctx context.Context) error {
		calls++
		return transient
	})

	assert.Equal(t, transient, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_RespectsCancellation(t *testing.T) {
	cfg := &RetryConfig{MaxAttempts: 5, InitialBackoff: time.Minute, BackoffMultiplier: 2.0}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- Retry(ctx, cfg, common.GetLogger(), "test", func(ctx context.Context) error {
			calls++
			return errors.New("Error 503: Service Unavailable")
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Equal(t, 1, calls)
	case <-time.After(2 * time.Second):
		t.Fatal("retry did not observe cancellation during backoff")
	}
}

func TestNewRetryConfig_Fallbacks(t *testing.T) {
	cfg := NewRetryConfig(0, "bogus")
	assert.Equal(t, DefaultMaxAttempts, cfg.MaxAttempts)
	assert.Equal(t, DefaultInitialBackoff, cfg.InitialBackoff)

	cfg = NewRetryConfig(5, "2s")
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.InitialBackoff)
}
