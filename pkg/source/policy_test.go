package source

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func fastPolicy(maxAttempts int) *CallPolicy {
	return &CallPolicy{
		limiter:     rate.NewLimiter(rate.Inf, 1),
		maxAttempts: maxAttempts,
		baseBackoff: time.Millisecond,
		callTimeout: time.Second,
	}
}

func TestDoRetriesTransientFailures(t *testing.T) {
	policy := fastPolicy(4)
	calls := 0
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return fmt.Errorf("%w: connection reset", ErrSourceUnavailable)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoDoesNotRetryAuthErrors(t *testing.T) {
	policy := fastPolicy(4)
	calls := 0
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return fmt.Errorf("%w: status 401", ErrAuthExpired)
	})
	if !errors.Is(err, ErrAuthExpired) {
		t.Fatalf("err = %v, want ErrAuthExpired", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry)", calls)
	}
}

func TestDoGivesUpAfterMaxAttempts(t *testing.T) {
	policy := fastPolicy(3)
	calls := 0
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return fmt.Errorf("%w: still down", ErrSourceUnavailable)
	})
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoRespectsCancellation(t *testing.T) {
	policy := fastPolicy(4)
	policy.baseBackoff = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- policy.Do(ctx, func(ctx context.Context) error {
			return fmt.Errorf("%w: flaky", ErrSourceUnavailable)
		})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Do did not return after cancellation")
	}
}
