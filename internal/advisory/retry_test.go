package advisory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func testPolicy(s *recordingSleeper) RetryPolicy {
	return RetryPolicy{Retries: DefaultRetries, BaseDelay: DefaultBaseDelay, Sleep: s.sleep}
}

func TestRetry_SucceedsAfterTwoRetryableFailures(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0

	got, err := Retry(context.Background(), testPolicy(sleeper), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", ErrRateLimited
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, sleeper.delays)
}

func TestRetry_ScalesWithConfiguredBase(t *testing.T) {
	sleeper := &recordingSleeper{}
	policy := testPolicy(sleeper)
	policy.BaseDelay = 10 * time.Millisecond

	_, err := Retry(context.Background(), policy, func(context.Context) (int, error) {
		return 0, &APIError{StatusCode: 503}
	})

	require.Error(t, err)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond}, sleeper.delays)
}

func TestRetry_ExhaustsBudget(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0

	_, err := Retry(context.Background(), testPolicy(sleeper), func(context.Context) (int, error) {
		calls++
		return 0, fmt.Errorf("got 500 from upstream")
	})

	require.Error(t, err)
	assert.Equal(t, 4, calls, "one initial attempt plus three retries")
	assert.Len(t, sleeper.delays, 3)
}

func TestRetry_NonRetryableFailsImmediately(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0
	boom := errors.New("invalid argument")

	_, err := Retry(context.Background(), testPolicy(sleeper), func(context.Context) (int, error) {
		calls++
		return 0, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeper.delays)
}

func TestRetry_ZeroRetries(t *testing.T) {
	sleeper := &recordingSleeper{}
	policy := testPolicy(sleeper)
	policy.Retries = 0
	calls := 0

	_, err := Retry(context.Background(), policy, func(context.Context) (int, error) {
		calls++
		return 0, ErrServerError
	})

	assert.ErrorIs(t, err, ErrServerError)
	assert.Equal(t, 1, calls)
}

func TestRetry_StopsWhenContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	policy := RetryPolicy{Retries: 3, BaseDelay: time.Hour}
	_, err := Retry(ctx, policy, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, ErrRateLimited
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy_Delay(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.Equal(t, time.Duration(0), p.Delay(0))
	assert.Equal(t, 2*time.Second, p.Delay(1))
	assert.Equal(t, 4*time.Second, p.Delay(2))
	assert.Equal(t, 8*time.Second, p.Delay(3))
}

func TestContextSleep(t *testing.T) {
	require.NoError(t, ContextSleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, ContextSleep(ctx, time.Hour), context.Canceled)
}
