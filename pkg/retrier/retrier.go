package retrier

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/talentforge/candidate-os/pkg/apperror"
)

// Policy bounds retries against rate-limited collaborators. Attempts are
// capped so a sustained outage never amplifies load indefinitely.
type Policy struct {
	MaxAttempts     uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
	}
}

// Do runs op, retrying with exponential backoff while the returned error is
// transient (see apperror.IsTransient). Non-transient errors stop retrying
// immediately and are returned as-is.
func (p Policy) Do(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		bo.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		bo.MaxInterval = p.MaxInterval
	}

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !apperror.IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.Retry(wrapped, backoff.WithContext(backoff.WithMaxRetries(bo, p.MaxAttempts), ctx))
}
