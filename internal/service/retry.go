package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	ierr "github.com/flexprice/feeledger/internal/errors"
)

func defaultConflictBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 5 * time.Second
	return b
}

// retryOnConflict runs fn until it succeeds, fails with anything other than a
// version conflict, or maxRetries retries have been spent.
func retryOnConflict(ctx context.Context, b backoff.BackOff, maxRetries uint64, fn func() error) error {
	operation := func() error {
		err := fn()
		if err == nil || ierr.IsVersionConflict(err) {
			return err
		}
		return backoff.Permanent(err)
	}
	return backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, maxRetries), ctx))
}
