package llm

import (
	"context"
	"time"
)

const (
	// maxAttempts is the initial call plus two retries.
	maxAttempts    = 3
	initialBackoff = 500 * time.Millisecond
)

// RetryObserver is notified on each retry; the orchestrator uses it for
// instrumentation and tests assert against it.
type RetryObserver func(attempt int, err error)

// WithRetry runs fn, retrying transient failures with exponential backoff
// starting at 500ms. Permanent and cancelled errors abort immediately.
// When the budget is exhausted the last transient error is escalated to
// permanent so callers fall through to their degraded path.
func WithRetry(ctx context.Context, op string, observe RetryObserver, fn func(ctx context.Context) error) error {
	var lastErr error
	backoff := initialBackoff

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		switch KindOf(lastErr) {
		case KindCancelled:
			return lastErr
		case KindPermanent:
			return lastErr
		}

		if attempt == maxAttempts {
			break
		}
		if observe != nil {
			observe(attempt, lastErr)
		}
		if err := sleepWithContext(ctx, backoff); err != nil {
			return NewError(KindCancelled, op, err)
		}
		backoff *= 2
	}

	return NewError(KindPermanent, op, lastErr)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
