package downloader

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/heissler3/getnzbs/internal/config"
)

// RetryConfig holds retry settings
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
}

// DefaultRetryConfig returns retry config from app settings
func DefaultRetryConfig() RetryConfig {
	cfg := config.Get()
	rc := RetryConfig{
		MaxAttempts: cfg.Network.RetryAttempts,
		BaseDelay:   cfg.Network.RetryBaseDelay,
		MaxDelay:    cfg.Network.RetryMaxDelay,
		Multiplier:  cfg.Network.RetryMultiplier,
	}
	if rc.MaxAttempts <= 0 {
		rc.MaxAttempts = 3
	}
	if rc.BaseDelay <= 0 {
		rc.BaseDelay = time.Second
	}
	if rc.MaxDelay <= 0 {
		rc.MaxDelay = 30 * time.Second
	}
	if rc.Multiplier <= 1 {
		rc.Multiplier = 2
	}
	return rc
}

// ErrorCategory categorizes errors for retry decisions
type ErrorCategory int

const (
	// ErrorRetryable - temporary errors that should be retried
	ErrorRetryable ErrorCategory = iota
	// ErrorNonRetryable - permanent errors that should not be retried
	ErrorNonRetryable
	// ErrorRateLimited - rate limiting, should wait longer
	ErrorRateLimited
)

// CategorizeError determines how an error should be handled
func CategorizeError(err error, statusCode int) ErrorCategory {
	switch statusCode {
	case http.StatusTooManyRequests:
		return ErrorRateLimited
	case http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusMethodNotAllowed,
		http.StatusGone:
		return ErrorNonRetryable
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return ErrorRetryable
	}

	if err == nil {
		return ErrorRetryable
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorRetryable
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"connection reset",
		"connection refused",
		"no such host",
		"temporary failure",
		"timeout",
		"eof",
		"broken pipe",
	}
	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return ErrorRetryable
		}
	}

	return ErrorNonRetryable
}

// CalculateBackoff calculates the next backoff duration with jitter
func CalculateBackoff(attempt int, cfg RetryConfig) time.Duration {
	if attempt <= 0 {
		return cfg.BaseDelay
	}

	delay := float64(cfg.BaseDelay)
	for i := 0; i < attempt; i++ {
		delay *= cfg.Multiplier
	}

	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}

	// Jitter of ±25%
	jitter := delay * 0.25 * (rand.Float64()*2 - 1)
	delay += jitter

	return time.Duration(delay)
}

// RetryOperation executes an operation with exponential backoff.
// The operation reports the HTTP status code it saw (0 when none).
func RetryOperation(ctx context.Context, cfg RetryConfig, operation func() (int, error)) error {
	var lastErr error
	var statusCode int

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		statusCode, lastErr = operation()
		if lastErr == nil {
			return nil
		}

		switch CategorizeError(lastErr, statusCode) {
		case ErrorNonRetryable:
			return lastErr
		case ErrorRateLimited:
			if attempt < cfg.MaxAttempts-1 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(cfg.MaxDelay):
				}
			}
		case ErrorRetryable:
			if attempt < cfg.MaxAttempts-1 {
				backoff := CalculateBackoff(attempt, cfg)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(backoff):
				}
			}
		}
	}

	return lastErr
}
