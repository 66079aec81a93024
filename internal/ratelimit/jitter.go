package ratelimit

import (
	"context"
	"math/rand/v2"
	"time"
)

// Jitter pauses for a random duration between Min and Max (inclusive).
// It spaces out page requests so the crawl does not hammer the listing site.
type Jitter struct {
	Min time.Duration
	Max time.Duration
}

// NewJitter returns a Jitter; a Max below Min collapses the range to Min.
func NewJitter(min, max time.Duration) *Jitter {
	if min < 0 {
		min = 0
	}
	if max < min {
		max = min
	}
	return &Jitter{Min: min, Max: max}
}

// Next picks the next pause duration
func (j *Jitter) Next() time.Duration {
	if j.Max <= j.Min {
		return j.Min
	}
	return j.Min + time.Duration(rand.Int64N(int64(j.Max-j.Min)+1))
}

// Pause sleeps for Next() or until ctx is done
func (j *Jitter) Pause(ctx context.Context) error {
	d := j.Next()
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
