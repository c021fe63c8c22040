package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"bikeride/internal/repository"
)

var errTransient = errors.New("connection reset")

func fastPolicy() RetryPolicy {
	return RetryPolicy{Timeout: 50 * time.Millisecond, Retries: 2, Backoff: time.Millisecond}
}

func TestRetryPolicy_SucceedsAfterTransientFailure(t *testing.T) {
	t.Parallel()

	calls := 0
	err := fastPolicy().Do(context.Background(), "test_op", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetryPolicy_ReturnsLastErrorWhenExhausted(t *testing.T) {
	t.Parallel()

	calls := 0
	err := fastPolicy().Do(context.Background(), "test_op", func(ctx context.Context) error {
		calls++
		return errTransient
	})

	if !errors.Is(err, errTransient) {
		t.Errorf("expected errTransient, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetryPolicy_StopsOnPermanentError(t *testing.T) {
	t.Parallel()

	for _, permanentErr := range []error{repository.ErrNotFound, repository.ErrConflict, ErrInvalidTransition} {
		calls := 0
		err := fastPolicy().Do(context.Background(), "test_op", func(ctx context.Context) error {
			calls++
			return permanentErr
		})

		if err != permanentErr {
			t.Errorf("expected %v, got %v", permanentErr, err)
		}
		if calls != 1 {
			t.Errorf("%v: expected 1 call, got %d", permanentErr, calls)
		}
	}
}

func TestRetryPolicy_AppliesPerCallTimeout(t *testing.T) {
	t.Parallel()

	policy := fastPolicy()
	policy.Retries = 0

	err := policy.Do(context.Background(), "test_op", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestRetryPolicy_StopsWhenCallerCancels(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := fastPolicy().Do(ctx, "test_op", func(ctx context.Context) error {
		calls++
		cancel()
		return errTransient
	})

	if !errors.Is(err, errTransient) {
		t.Errorf("expected errTransient, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}
