package service

import (
	"context"
	"errors"
	"log"
	"time"

	"bikeride/internal/domain"
	"bikeride/internal/metrics"
	"bikeride/internal/repository"
)

// RetryPolicy bounds each store call made by the completion protocol: a
// short per-call timeout and a small number of retries with doubling backoff.
type RetryPolicy struct {
	Timeout time.Duration
	Retries int
	Backoff time.Duration
}

// DefaultRetryPolicy returns the default policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Timeout: 3 * time.Second,
		Retries: 2,
		Backoff: 200 * time.Millisecond,
	}
}

// Do runs fn until it succeeds, fails permanently, the retries are
// exhausted or ctx is done. The last error is returned.
func (p RetryPolicy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	backoff := p.Backoff
	var err error

	for attempt := 0; attempt <= p.Retries; attempt++ {
		if attempt > 0 {
			metrics.RetryAttempts.WithLabelValues(op).Inc()
			log.Printf("[RECONCILER] %s failed, retrying (%d/%d): %v", op, attempt, p.Retries, err)

			select {
			case <-ctx.Done():
				return err
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		callCtx, cancel := ctx, context.CancelFunc(func() {})
		if p.Timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		}
		err = fn(callCtx)
		cancel()

		if err == nil || ctx.Err() != nil || permanent(err) {
			return err
		}
	}

	return err
}

// permanent reports errors that a retry cannot fix.
func permanent(err error) bool {
	return errors.Is(err, repository.ErrNotFound) ||
		errors.Is(err, repository.ErrConflict) ||
		errors.Is(err, domain.ErrInvalidTransition)
}
