// internal/retry/retry.go
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrExhausted is wrapped by the error WithRetry returns once every attempt failed
var ErrExhausted = errors.New("retry budget exhausted")

// Config defines retry behavior
type Config struct {
	MaxAttempts int           // Maximum number of attempts, including the first
	Interval    time.Duration // Pause between two attempts
}

// DefaultConfig returns three attempts with a fixed two second pause
func DefaultConfig() Config {
	return Fixed(3, 2*time.Second)
}

// Fixed returns a Config that retries every failure with a constant interval
func Fixed(attempts int, interval time.Duration) Config {
	return Config{
		MaxAttempts: attempts,
		Interval:    interval,
	}
}

// WithRetry executes the given function with retry logic
func WithRetry(ctx context.Context, cfg Config, fn func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 0 {
				log.Debug().
					Int("attempts", attempt+1).
					Msg("Retry succeeded")
			}
			return nil
		}

		lastErr = err

		// Cancellation is never retried
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if !shouldRetry(err) {
			log.Debug().
				Err(err).
				Msg("Error is not retryable")
			return err
		}

		log.Warn().
			Int("attempt", attempt+1).
			Int("max_attempts", cfg.MaxAttempts).
			Err(err).
			Msg("Attempt failed")

		// Don't sleep after the last attempt
		if attempt < cfg.MaxAttempts-1 {
			if cfg.Interval <= 0 {
				continue
			}

			timer := time.NewTimer(cfg.Interval)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}

	log.Warn().
		Int("attempts", cfg.MaxAttempts).
		Err(lastErr).
		Msg("Max retry attempts exceeded")

	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, cfg.MaxAttempts, lastErr)
}

// shouldRetry determines if an error is retryable
func shouldRetry(err error) bool {
	if err == nil {
		return false
	}

	var sc StatusCoder
	// Every non-200 answer is retried
	if errors.As(err, &sc) && sc.GetStatusCode() != 0 {
		return true
	}

	if isTimeoutError(err) {
		return true
	}

	var tempErr interface{ Temporary() bool }
	if errors.As(err, &tempErr) {
		return tempErr.Temporary()
	}

	// Default: retry
	return true
}

// isTimeoutError checks if an error is a timeout error
func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) {
		return timeoutErr.Timeout()
	}

	return false
}

// StatusCoder is an interface for errors that provide an HTTP status code
type StatusCoder interface {
	GetStatusCode() int
}
