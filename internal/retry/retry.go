package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"jobradar/internal/model"
)

// Policy parameterizes a bounded retry loop. The enrichment gateway and
// the delivery channel share this instead of carrying their own loops.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// Retryable decides whether an error is worth another attempt.
	// Nil defaults to Transient.
	Retryable func(error) bool

	// Delay computes the wait before the next try. attempt is 1-based
	// (the attempt that just failed). Nil defaults to Exponential(1s).
	Delay func(attempt int, err error) time.Duration
}

// Do runs fn up to p.MaxAttempts times, sleeping p.Delay between failed
// attempts. It returns nil on the first success, the last error once
// attempts are exhausted or a non-retryable error is seen, and the context
// error if ctx is cancelled while waiting.
func Do(ctx context.Context, p Policy, logger *slog.Logger, op string, fn func() error) error {
	retryable := p.Retryable
	if retryable == nil {
		retryable = Transient
	}
	delay := p.Delay
	if delay == nil {
		delay = Exponential(time.Second)
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) || attempt == p.MaxAttempts {
			return lastErr
		}

		wait := delay(attempt, lastErr)
		logger.Warn("retrying after transient error",
			"op", op,
			"attempt", attempt,
			"max_attempts", p.MaxAttempts,
			"delay", wait,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: retry cancelled: %w", op, ctx.Err())
		case <-time.After(wait):
		}
	}
	return lastErr
}

// Transient reports whether err looks like a passing failure: any network
// error, HTTP 429, or HTTP 5xx. Context cancellation and other 4xx are not.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == 429 {
			return true
		}
		return httpErr.StatusCode >= 500
	}

	// Non-HTTP errors (network, DNS, ...) are worth another try.
	return true
}

// Exponential returns a delay schedule of base * 2^(attempt-1). A
// Retry-After carried on the error takes precedence.
func Exponential(base time.Duration) func(int, error) time.Duration {
	return func(attempt int, err error) time.Duration {
		var httpErr *model.HTTPError
		if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
			return httpErr.RetryAfter
		}
		d := base
		for i := 1; i < attempt; i++ {
			d *= 2
		}
		return d
	}
}

// Scaled returns a delay schedule of base * attempt, the short
// attempt-scaled backoff used for overloaded upstreams.
func Scaled(base time.Duration) func(int, error) time.Duration {
	return func(attempt int, _ error) time.Duration {
		return base * time.Duration(attempt)
	}
}
