// Package backoff provides delay schedules for retry loops.
package backoff

import (
	"context"
	"math"
	"time"
)

// Schedule returns the delay to wait before the given retry attempt.
// Attempts are numbered from 0.
type Schedule func(attempt int) time.Duration

// Exponential grows the delay as base * growth^attempt, capped at max.
func Exponential(base time.Duration, growth float64, max time.Duration) Schedule {
	return func(attempt int) time.Duration {
		f := float64(base) * math.Pow(growth, float64(attempt))
		if f >= float64(max) {
			return max
		}
		return time.Duration(f)
	}
}

// Linear grows the delay as base * (attempt+1), capped at max.
func Linear(base time.Duration, max time.Duration) Schedule {
	return func(attempt int) time.Duration {
		d := base * time.Duration(attempt+1)
		if d > max || d < 0 {
			return max
		}
		return d
	}
}

// Sleep waits for d or until ctx is done, whichever comes first. It
// returns ctx.Err() when the context ended the wait.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
