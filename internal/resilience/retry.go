// Package resilience implements the bounded, jittered retry applied around
// the authorization client's HTTP round trips.
package resilience

import (
	"context"
	"math/rand"
	"time"
)

// Config configures retry behavior for a single client operation.
type Config struct {
	// MaxAttempts is the total number of tries, including the first.
	// MaxAttempts <= 1 disables retry.
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       float64 // 0-1, fraction of delay randomized each attempt
}

// FromRetryCount builds a Config from the config loader's retry_count and
// retry_delay_ms knobs. retryCount of 0 yields a disabled Config
// (MaxAttempts 1), matching the client's default of surfacing failures
// without automatic retry.
func FromRetryCount(retryCount int, retryDelayMS int) Config {
	if retryCount < 0 {
		retryCount = 0
	}
	delay := time.Duration(retryDelayMS) * time.Millisecond
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	return Config{
		MaxAttempts:  retryCount + 1,
		InitialDelay: delay,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.2,
	}
}

// Retry executes fn with exponential backoff, stopping early if
// shouldRetry(err) is false or the context is canceled. The error from the
// final attempt is returned unchanged; if the context is canceled during a
// backoff wait, ctx.Err() is returned instead.
func Retry(ctx context.Context, cfg Config, shouldRetry func(error) bool, fn func() error) error {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == maxAttempts-1 || !shouldRetry(err) {
			return lastErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(addJitter(delay, cfg.Jitter)):
		}
		delay = nextDelay(delay, cfg)
	}
	return lastErr
}

func nextDelay(current time.Duration, cfg Config) time.Duration {
	next := time.Duration(float64(current) * cfg.Multiplier)
	if cfg.MaxDelay > 0 && next > cfg.MaxDelay {
		return cfg.MaxDelay
	}
	return next
}

func addJitter(d time.Duration, jitter float64) time.Duration {
	if jitter <= 0 {
		return d
	}
	delta := float64(d) * jitter
	return d + time.Duration(rand.Float64()*delta*2-delta)
}
