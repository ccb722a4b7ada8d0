package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultMaxAttempts = 4
	defaultBaseBackoff = 500 * time.Millisecond
	defaultCallTimeout = 30 * time.Second
)

// CallPolicy wraps every outbound call a provider makes with a
// per-source request budget and bounded exponential backoff. Waiting on
// the limiter is backpressure, not a failure. Only ErrSourceUnavailable
// and ErrRateLimited are retried; auth and malformed-request errors
// propagate immediately.
type CallPolicy struct {
	limiter     *rate.Limiter
	maxAttempts int
	baseBackoff time.Duration
	callTimeout time.Duration
}

// NewCallPolicy builds a policy admitting requestsPerMinute calls with
// the given burst.
func NewCallPolicy(requestsPerMinute float64, burst int) *CallPolicy {
	return &CallPolicy{
		limiter:     rate.NewLimiter(rate.Limit(requestsPerMinute/60.0), burst),
		maxAttempts: defaultMaxAttempts,
		baseBackoff: defaultBaseBackoff,
		callTimeout: defaultCallTimeout,
	}
}

// Do runs fn under the budget. Each attempt gets its own timeout; a
// timed-out attempt counts as transient and is retried.
func (p *CallPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := p.baseBackoff * time.Duration(1<<(attempt-1))
			if errors.Is(lastErr, ErrRateLimited) {
				backoff *= 4
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
		err := fn(callCtx)
		cancel()
		if err == nil {
			return nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}

		lastErr = err
		if !isRetryable(err) {
			return err
		}
	}

	return fmt.Errorf("max attempts exceeded: %w", lastErr)
}

func isRetryable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable) || errors.Is(err, ErrRateLimited)
}
