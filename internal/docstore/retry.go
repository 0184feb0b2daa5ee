package docstore

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"tablecheck/internal/domain"
)

const (
	DefaultMaxAttempts = 25
	baseBackoff        = 2 * time.Millisecond
	maxBackoff         = 100 * time.Millisecond
)

// errRetry marks a commit that lost a race against a concurrent writer.
var errRetry = errors.New("transaction conflict")

// retryTx runs attempt until it succeeds, fails with a non-retryable error, or the
// attempts run out. The last case is reported as domain.ErrStorageConflict.
func retryTx(ctx context.Context, maxAttempts int, retryable func(error) bool, attempt func() error) error {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	var last error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			select {
			case <-time.After(backoff(i)):
			case <-ctx.Done():
				return fmt.Errorf("%w: %w", domain.ErrStorageConflict, ctx.Err())
			}
		}
		last = attempt()
		if last == nil {
			return nil
		}
		if !retryable(last) {
			return last
		}
	}
	return fmt.Errorf("%w: gave up after %d attempts: %v", domain.ErrStorageConflict, maxAttempts, last)
}

func backoff(attempt int) time.Duration {
	d := baseBackoff << min(attempt, 6)
	if d > maxBackoff {
		d = maxBackoff
	}
	return d/2 + rand.N(d/2+1)
}
