package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
)

// RetryConfig defines the bounded retry policy applied to provider calls.
// Transient failures (rate limits, 5xx, timeouts) are retried with
// exponential backoff; validation and auth failures surface immediately.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// InitialBackoff is the wait before the first retry.
	InitialBackoff time.Duration

	// BackoffMultiplier is applied to the backoff on each subsequent retry.
	BackoffMultiplier float64
}

// Default retry constants for provider calls.
const (
	DefaultMaxAttempts       = 3
	DefaultInitialBackoff    = 500 * time.Millisecond
	DefaultBackoffMultiplier = 2.0
)

// NewDefaultRetryConfig returns a RetryConfig with sensible defaults.
func NewDefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       DefaultMaxAttempts,
		InitialBackoff:    DefaultInitialBackoff,
		BackoffMultiplier: DefaultBackoffMultiplier,
	}
}

// NewRetryConfig builds a RetryConfig from configuration values, falling
// back to defaults for missing or unparseable settings.
func NewRetryConfig(maxAttempts int, initialBackoff string) *RetryConfig {
	cfg := NewDefaultRetryConfig()
	if maxAttempts > 0 {
		cfg.MaxAttempts = maxAttempts
	}
	if d, err := time.ParseDuration(initialBackoff); err == nil && d > 0 {
		cfg.InitialBackoff = d
	}
	return cfg
}

// Backoff computes the wait before retry number attempt (0-based).
func (c *RetryConfig) Backoff(attempt int) time.Duration {
	backoff := float64(c.InitialBackoff)
	for i := 0; i < attempt; i++ {
		backoff *= c.BackoffMultiplier
	}
	return time.Duration(backoff)
}

// IsTransient reports whether an error is worth retrying. Rate limits,
// server-side failures, and network timeouts are transient; malformed
// input, auth failures, and caller cancellation are not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := err.Error()
	for _, permanent := range []string{"400", "401", "403", "INVALID_ARGUMENT", "PERMISSION_DENIED", "API key"} {
		if strings.Contains(errStr, permanent) {
			return false
		}
	}
	for _, transient := range []string{
		"429", "500", "502", "503", "504",
		"RESOURCE_EXHAUSTED", "UNAVAILABLE", "DEADLINE_EXCEEDED",
		"quota", "overloaded",
		"timeout", "connection refused", "connection reset", "no such host",
	} {
		if strings.Contains(errStr, transient) {
			return true
		}
	}
	return false
}

// Retry runs fn up to cfg.MaxAttempts times, backing off between attempts.
// Only transient errors are retried; the last error is returned unwrapped
// so callers can classify it.
func Retry(ctx context.Context, cfg *RetryConfig, logger arbor.ILogger, operation string, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := cfg.Backoff(attempt - 1)
			logger.Warn().
				Str("operation", operation).
				Int("attempt", attempt+1).
				Int("max_attempts", cfg.MaxAttempts).
				Dur("backoff", backoff).
				Err(lastErr).
				Msg("Retrying provider call")

			select {
			case <-ctx.Done():
				return fmt.Errorf("%s canceled during backoff: %w", operation, ctx.Err())
			case <-time.After(backoff):
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) {
			return lastErr
		}
	}
	return lastErr
}
