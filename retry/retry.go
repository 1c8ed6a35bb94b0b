package retry

import (
	"context"
	"errors"
	"math"
	"net"
	"strings"
	"time"
)

// StatusCoder is implemented by errors that carry an upstream HTTP status.
// Provider adapters wrap SDK failures in such errors so the executor can
// classify them without importing provider packages.
type StatusCoder interface {
	HTTPStatus() int
}

// Policy governs an execution: attempt budget, backoff and per-attempt
// timeouts. The zero value is not usable; start from DefaultPolicy.
type Policy struct {
	// Retries is the maximum number of additional attempts after the first.
	Retries int
	// BaseDelay is the first inter-attempt delay.
	BaseDelay time.Duration
	// Factor is the exponential backoff multiplier.
	Factor float64
	// InitialTimeout bounds the first attempt; subsequent attempts double it
	// up to MaxTimeout. Zero disables per-attempt deadlines.
	InitialTimeout time.Duration
	// MaxTimeout caps the per-attempt deadline growth.
	MaxTimeout time.Duration
	// ShouldRetry decides whether a failed attempt may be retried.
	// Nil means Retryable.
	ShouldRetry func(err error, attempt int) bool
	// OnError is a side-effecting hook (logging) invoked after every failed
	// attempt, including the last.
	OnError func(err error, attempt int)
	// Sleep overrides the inter-attempt wait; tests inject a recorder here.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy mirrors the production configuration of the completion
// call path.
func DefaultPolicy() Policy {
	return Policy{
		Retries:        3,
		BaseDelay:      800 * time.Millisecond,
		Factor:         2,
		InitialTimeout: 8 * time.Second,
		MaxTimeout:     30 * time.Second,
	}
}

// Do runs fn under the policy. fn receives the zero-based attempt index and
// a context carrying the per-attempt deadline. The first success wins; the
// final error is propagated unchanged when the budget is exhausted or the
// error class is terminal. The caller is responsible for producing a
// degraded fallback value rather than crashing the pipeline.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T
	shouldRetry := p.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = func(err error, _ int) bool { return Retryable(err) }
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		attemptCtx := ctx
		cancel := func() {}
		if p.InitialTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, attemptTimeout(p, attempt))
		}
		v, err := fn(attemptCtx, attempt)
		cancel()
		if err == nil {
			return v, nil
		}
		lastErr = err
		if p.OnError != nil {
			p.OnError(err, attempt)
		}
		if attempt >= p.Retries || !shouldRetry(err, attempt) {
			return zero, lastErr
		}
		if err := sleep(ctx, Delay(p, err, attempt)); err != nil {
			return zero, err
		}
	}
}

// Delay computes the inter-attempt wait after a failure at the given
// attempt index. Rate-limited errors use a more aggressive schedule than
// the policy's exponential backoff.
func Delay(p Policy, err error, attempt int) time.Duration {
	if IsRateLimit(err) {
		return time.Duration(1<<(attempt+1)) * 2 * time.Second
	}
	return time.Duration(float64(p.BaseDelay) * math.Pow(p.Factor, float64(attempt)))
}

func attemptTimeout(p Policy, attempt int) time.Duration {
	t := p.InitialTimeout << attempt
	if p.MaxTimeout > 0 && (t > p.MaxTimeout || t <= 0) {
		t = p.MaxTimeout
	}
	return t
}

// Retryable reports whether the error belongs to a transient class:
// upstream 5xx, rate limiting (429), timeouts and connection resets.
// Everything else (other 4xx, unclassified errors) is terminal.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if status, ok := httpStatus(err); ok {
		if status == 429 || status >= 500 {
			return true
		}
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection aborted")
}

// IsRateLimit reports whether the error signals upstream throttling.
func IsRateLimit(err error) bool {
	status, ok := httpStatus(err)
	return ok && status == 429
}

// IsServer reports whether the error carries an upstream 5xx status.
func IsServer(err error) bool {
	status, ok := httpStatus(err)
	return ok && status >= 500
}

func httpStatus(err error) (int, bool) {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatus(), true
	}
	return 0, false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
