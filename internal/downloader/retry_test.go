package downloader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
		want       ErrorCategory
	}{
		{"rate limited", nil, http.StatusTooManyRequests, ErrorRateLimited},
		{"not found", errors.New("server returned 404 Not Found"), http.StatusNotFound, ErrorNonRetryable},
		{"unauthorized", nil, http.StatusUnauthorized, ErrorNonRetryable},
		{"bad gateway", nil, http.StatusBadGateway, ErrorRetryable},
		{"service unavailable", nil, http.StatusServiceUnavailable, ErrorRetryable},
		{"connection reset", errors.New("read: connection reset by peer"), 0, ErrorRetryable},
		{"timeout string", errors.New("dial tcp: i/o timeout"), 0, ErrorRetryable},
		{"unknown error", errors.New("something odd"), 0, ErrorNonRetryable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategorizeError(tt.err, tt.statusCode); got != tt.want {
				t.Fatalf("CategorizeError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := RetryConfig{
		BaseDelay:  time.Second,
		MaxDelay:   10 * time.Second,
		Multiplier: 2,
	}

	if got := CalculateBackoff(0, cfg); got != cfg.BaseDelay {
		t.Errorf("attempt 0 backoff = %v, want base delay", got)
	}

	// Jitter is ±25%, so bound-check instead of exact-match
	got := CalculateBackoff(2, cfg)
	if got < 3*time.Second || got > 5*time.Second {
		t.Errorf("attempt 2 backoff = %v, want within 4s ±25%%", got)
	}

	// Capped at max delay (plus jitter)
	got = CalculateBackoff(10, cfg)
	if got > 13*time.Second {
		t.Errorf("attempt 10 backoff = %v, want capped near max delay", got)
	}
}

func TestRetryOperationStopsOnNonRetryable(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 2}

	calls := 0
	err := RetryOperation(context.Background(), cfg, func() (int, error) {
		calls++
		return http.StatusNotFound, fmt.Errorf("server returned 404")
	})

	if err == nil {
		t.Fatal("RetryOperation() error = nil, want error")
	}
	if calls != 1 {
		t.Fatalf("operation called %d times, want 1 for non-retryable", calls)
	}
}

func TestRetryOperationRetriesUntilSuccess(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}

	calls := 0
	err := RetryOperation(context.Background(), cfg, func() (int, error) {
		calls++
		if calls < 3 {
			return http.StatusServiceUnavailable, fmt.Errorf("server returned 503")
		}
		return http.StatusOK, nil
	})

	if err != nil {
		t.Fatalf("RetryOperation() error = %v, want nil", err)
	}
	if calls != 3 {
		t.Fatalf("operation called %d times, want 3", calls)
	}
}

func TestRetryOperationExhaustsAttempts(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}

	calls := 0
	err := RetryOperation(context.Background(), cfg, func() (int, error) {
		calls++
		return http.StatusInternalServerError, fmt.Errorf("server returned 500")
	})

	if err == nil {
		t.Fatal("RetryOperation() error = nil, want last error")
	}
	if calls != 3 {
		t.Fatalf("operation called %d times, want 3", calls)
	}
}

func TestRetryOperationHonorsContext(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 10, BaseDelay: time.Minute, MaxDelay: time.Minute, Multiplier: 2}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		// Cancel while the operation waits out its first backoff
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := RetryOperation(ctx, cfg, func() (int, error) {
		calls++
		return 0, fmt.Errorf("connection refused")
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("RetryOperation() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Fatalf("operation called %d times, want 1", calls)
	}
}
