package retry

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig describes how many times an operation is attempted and how long to wait in between.
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     bool // Linear backoff: attempt * Delay

	// DelayFor overrides Delay/Backoff when set. It receives the 1-based attempt that
	// just failed and its error.
	DelayFor func(attempt int, err error) time.Duration

	// Sleep waits for d or until ctx is done. Defaults to a timer; tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

// WithRetry runs fn until it succeeds, MaxAttempts is reached or ctx is cancelled.
func WithRetry(ctx context.Context, config RetryConfig, fn func() error) error {
	var lastErr error

	sleep := config.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == config.MaxAttempts {
			return fmt.Errorf("failed after %d attempts: %w", config.MaxAttempts, err)
		}

		if err := sleep(ctx, config.delay(attempt, err)); err != nil {
			return err
		}
	}

	return lastErr
}

func (c RetryConfig) delay(attempt int, err error) time.Duration {
	if c.DelayFor != nil {
		return c.DelayFor(attempt, err)
	}
	if c.Backoff {
		return time.Duration(attempt) * c.Delay
	}
	return c.Delay
}

// Sleep blocks for d, returning early with ctx.Err() if the context is cancelled.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
