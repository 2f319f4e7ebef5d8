package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/lorekeeper/internal/service"
)

// ErrMaxRetries indicates that all retry attempts have been exhausted.
var ErrMaxRetries = errors.New("max retries exceeded")

// RetryableError marks whether a failure is worth another attempt.
// WithRetry gives up at once on a RetryableError with Retryable false.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// Permanent wraps err so WithRetry stops retrying it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err, Retryable: false}
}

type backoff struct {
	delay      time.Duration
	max        time.Duration
	multiplier float64
}

func newBackoff(opts service.RetryOptions) backoff {
	b := backoff{delay: opts.InitialDelay, max: opts.MaxDelay, multiplier: opts.Multiplier}
	if b.delay <= 0 {
		b.delay = 100 * time.Millisecond
	}
	if b.max <= 0 {
		b.max = 30 * time.Second
	}
	if b.multiplier <= 0 {
		b.multiplier = 2.0
	}
	return b
}

// wait sleeps for the current delay and grows it for the next call.
func (b *backoff) wait(ctx context.Context) error {
	timer := time.NewTimer(b.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	b.delay = min(time.Duration(float64(b.delay)*b.multiplier), b.max)
	return nil
}

// WithRetry runs operation with exponential backoff until it succeeds,
// fails permanently, or the attempts run out. Plain errors are retried;
// wrap one with Permanent to stop early.
func WithRetry(ctx context.Context, operation func() error, opts service.RetryOptions) error {
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	b := newBackoff(opts)

	var err error
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err = operation(); err == nil {
			return nil
		}

		var retryErr *RetryableError
		if errors.As(err, &retryErr) && !retryErr.Retryable {
			return retryErr.Err
		}
		if attempt >= attempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, attempts, err)
		}

		slog.Debug("operation failed, retrying",
			"attempt", attempt,
			"max_attempts", attempts,
			"delay", b.delay,
			"error", err)

		if waitErr := b.wait(ctx); waitErr != nil {
			return waitErr
		}
	}
}
