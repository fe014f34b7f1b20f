package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	attempts := 0
	err := Retry(context.Background(), RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond}, func(int) error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got=%d", attempts)
	}
}

func TestRetry_ReturnsLastErrorWhenExhausted(t *testing.T) {
	t.Parallel()

	last := errors.New("attempt 2")
	err := Retry(context.Background(), RetryPolicy{MaxAttempts: 2}, func(attempt int) error {
		if attempt == 2 {
			return last
		}
		return errors.New("attempt 1")
	})
	if !errors.Is(err, last) {
		t.Fatalf("expected last error, got %v", err)
	}
}

func TestRetry_PermanentStopsImmediately(t *testing.T) {
	t.Parallel()

	cause := errors.New("bad payload")
	attempts := 0
	err := Retry(context.Background(), RetryPolicy{MaxAttempts: 5}, func(int) error {
		attempts++
		return Permanent(cause)
	})
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got=%d", attempts)
	}
	if err != cause {
		t.Fatalf("expected unwrapped cause, got %v", err)
	}
}

func TestRetry_StopsWhenContextDone(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := Retry(ctx, RetryPolicy{MaxAttempts: 3, Delay: time.Hour}, func(int) error {
		attempts++
		cancel()
		return errors.New("unreachable")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got=%d", attempts)
	}
}
