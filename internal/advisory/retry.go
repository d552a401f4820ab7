package advisory

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Default retry settings.
const (
	DefaultRetries   = 3
	DefaultBaseDelay = 2 * time.Second
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep is the real-clock Sleeper.
func ContextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryPolicy bounds how often and how patiently a call is retried.
// Retries counts the extra attempts after the first one; delays start at
// BaseDelay and double after each retry.
type RetryPolicy struct {
	Retries   int
	BaseDelay time.Duration
	Sleep     Sleeper
	Log       *zap.SugaredLogger
}

// DefaultRetryPolicy returns three retries starting at two seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Retries: DefaultRetries, BaseDelay: DefaultBaseDelay}
}

// Delay returns the wait before the given retry (1-based).
func (p RetryPolicy) Delay(retry int) time.Duration {
	if retry < 1 {
		return 0
	}
	return p.BaseDelay << (retry - 1)
}

// Retry calls fn until it succeeds, fails with a non-retryable error, the
// retry budget is spent or ctx is done. The last error is returned.
func Retry[T any](ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	sleep := policy.Sleep
	if sleep == nil {
		sleep = ContextSleep
	}
	log := policy.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	var zero T
	for attempt := 0; ; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if !IsRetryable(err) || attempt >= policy.Retries {
			return zero, err
		}

		delay := policy.Delay(attempt + 1)
		log.Warnw("advisory call failed, retrying",
			"attempt", attempt+1,
			"retries_left", policy.Retries-attempt,
			"delay", delay,
			"error", err,
		)
		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
}
