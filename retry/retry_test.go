package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr struct{ status int }

func (e *statusErr) Error() string   { return fmt.Sprintf("upstream status %d", e.status) }
func (e *statusErr) HTTPStatus() int { return e.status }

func testPolicy(sleeps *[]time.Duration) Policy {
	p := DefaultPolicy()
	p.Sleep = func(_ context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return nil
	}
	return p
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	var sleeps []time.Duration
	calls := 0
	v, err := Do(context.Background(), testPolicy(&sleeps), func(_ context.Context, attempt int) (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeps)
}

func TestDoRetriesServerErrorsWithExponentialBackoff(t *testing.T) {
	var sleeps []time.Duration
	calls := 0
	v, err := Do(context.Background(), testPolicy(&sleeps), func(_ context.Context, attempt int) (string, error) {
		calls++
		if attempt < 2 {
			return "", &statusErr{status: 503}
		}
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", v)
	assert.Equal(t, 3, calls)
	// baseDelay * factor^attempt: 800ms, 1600ms
	assert.Equal(t, []time.Duration{800 * time.Millisecond, 1600 * time.Millisecond}, sleeps)
}

func TestDoUsesRateLimitScheduleFor429(t *testing.T) {
	var sleeps []time.Duration
	calls := 0
	v, err := Do(context.Background(), testPolicy(&sleeps), func(_ context.Context, attempt int) (string, error) {
		calls++
		if attempt < 2 {
			return "", &statusErr{status: 429}
		}
		return "after throttle", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "after throttle", v)
	assert.Equal(t, 3, calls)
	// 2^(attempt+1) * 2s: 4s, 8s
	assert.Equal(t, []time.Duration{4 * time.Second, 8 * time.Second}, sleeps)
}

func TestDoStopsOnNonRetryable4xx(t *testing.T) {
	var sleeps []time.Duration
	calls := 0
	_, err := Do(context.Background(), testPolicy(&sleeps), func(_ context.Context, attempt int) (string, error) {
		calls++
		return "", &statusErr{status: 400}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeps)
}

func TestDoExhaustsBudgetAndPropagatesFinalError(t *testing.T) {
	var sleeps []time.Duration
	var attempts []int
	p := testPolicy(&sleeps)
	p.OnError = func(err error, attempt int) { attempts = append(attempts, attempt) }
	_, err := Do(context.Background(), p, func(_ context.Context, attempt int) (string, error) {
		return "", &statusErr{status: 500}
	})
	require.Error(t, err)
	var sc StatusCoder
	require.True(t, errors.As(err, &sc))
	assert.Equal(t, 500, sc.HTTPStatus())
	// retries=3 means 4 total calls, hook fired for every failure.
	assert.Equal(t, []int{0, 1, 2, 3}, attempts)
	assert.Len(t, sleeps, 3)
}

func TestRetryableClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limit", &statusErr{429}, true},
		{"server", &statusErr{502}, true},
		{"client", &statusErr{404}, false},
		{"deadline", context.DeadlineExceeded, true},
		{"reset text", errors.New("read tcp: connection reset by peer"), true},
		{"timeout text", errors.New("request timeout"), true},
		{"other", errors.New("invalid payload"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Retryable(tt.err))
		})
	}
}

func TestAttemptTimeoutGrowsAndCaps(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 8*time.Second, attemptTimeout(p, 0))
	assert.Equal(t, 16*time.Second, attemptTimeout(p, 1))
	assert.Equal(t, 30*time.Second, attemptTimeout(p, 2))
	assert.Equal(t, 30*time.Second, attemptTimeout(p, 3))
}

func TestDoHonorsContextCancellationDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := DefaultPolicy()
	p.Sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}
	_, err := Do(ctx, p, func(_ context.Context, attempt int) (string, error) {
		return "", &statusErr{status: 500}
	})
	assert.ErrorIs(t, err, context.Canceled)
}
