package retry

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

type statusErr int

func (e statusErr) Error() string      { return http.StatusText(int(e)) }
func (e statusErr) GetStatusCode() int { return int(e) }

type permanentErr struct{}

func (permanentErr) Error() string   { return "permanent" }
func (permanentErr) Temporary() bool { return false }

func TestWithRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), Fixed(3, 0), func() error {
		calls++
		if calls < 3 {
			return statusErr(http.StatusServiceUnavailable)
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestWithRetry_Exhausted(t *testing.T) {
	calls := 0
	cause := statusErr(http.StatusNotFound)
	err := WithRetry(context.Background(), Fixed(3, time.Millisecond), func() error {
		calls++
		return cause
	})

	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("expected ErrExhausted, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
}

func TestWithRetry_Permanent(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), Fixed(5, 0), func() error {
		calls++
		return permanentErr{}
	})

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if _, ok := err.(permanentErr); !ok {
		t.Errorf("expected permanentErr, got %T", err)
	}
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	start := time.Now()
	err := WithRetry(ctx, Fixed(3, time.Hour), func() error {
		calls++
		cancel()
		return errors.New("boom")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if time.Since(start) > time.Second {
		t.Error("cancellation did not interrupt the backoff")
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"bad status", statusErr(http.StatusForbidden), true},
		{"deadline", context.DeadlineExceeded, true},
		{"permanent", permanentErr{}, false},
		{"plain", errors.New("boom"), true},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		if got := shouldRetry(tt.err); got != tt.want {
			t.Errorf("%s: shouldRetry = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFixed(t *testing.T) {
	cfg := Fixed(3, 2*time.Second)
	if cfg.MaxAttempts != 3 || cfg.Interval != 2*time.Second {
		t.Errorf("unexpected config %+v", cfg)
	}
	if DefaultConfig() != cfg {
		t.Errorf("default config should be 3 attempts, 2s apart, got %+v", DefaultConfig())
	}
}
