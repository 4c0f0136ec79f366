// Package retry runs upstream calls under a fixed attempt budget.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/liamashdown/walletscan/internal/metrics"
	"github.com/liamashdown/walletscan/internal/model"
)

// Policy bounds each attempt by Timeout and stops after Attempts tries.
// Attempts are immediate; there is no backoff between them.
type Policy struct {
	Attempts int
	Timeout  time.Duration
	// Op labels the retry metric
	Op string
}

// Do calls fn until it succeeds, the attempt budget is exhausted, the parent
// context is done, or fn returns a permanent error. The returned error wraps
// the last failure.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return fmt.Errorf("%w (last error: %v)", err, lastErr)
			}
			return err
		}

		lastErr = p.once(ctx, fn)
		if lastErr == nil {
			return nil
		}
		if permanent(ctx, lastErr) {
			return lastErr
		}
		if attempt < attempts {
			metrics.RecordRetry(p.Op)
		}
	}

	return fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

func (p Policy) once(ctx context.Context, fn func(ctx context.Context) error) error {
	if p.Timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	return fn(attemptCtx)
}

// permanent reports errors that another attempt cannot fix. A per-attempt
// deadline is retryable; cancellation of the parent is not.
func permanent(parent context.Context, err error) bool {
	if parent.Err() != nil {
		return true
	}
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, model.ErrInvalidAddress) ||
		errors.Is(err, model.ErrUnauthorized) ||
		errors.Is(err, model.ErrNotFound)
}
