// Package retry provides a pluggable retry mechanism for the smart-HTTP
// transport, injected through the context. The default is no retries;
// callers opt in by placing a Retrier in the context:
//
//	retrier := retry.NewExponentialBackoffRetrier()
//	ctx = retry.ToContext(ctx, retrier)
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net"
	"time"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -o mocks/fake_retrier.go . Retrier

// Retrier decides when a failed transport attempt is tried again and how
// long to wait in between.
type Retrier interface {
	// ShouldRetry reports whether the error warrants another attempt.
	// attempt is 1-indexed.
	ShouldRetry(err error, attempt int) bool

	// Wait blocks before the next attempt, or returns early with the
	// context's error when it is cancelled.
	Wait(ctx context.Context, attempt int) error

	// MaxAttempts is the total number of attempts, the first included.
	MaxAttempts() int
}

// NoopRetrier never retries. It is the default when the context carries no
// retrier.
type NoopRetrier struct{}

func (NoopRetrier) ShouldRetry(err error, attempt int) bool { return false }

func (NoopRetrier) Wait(ctx context.Context, attempt int) error { return nil }

func (NoopRetrier) MaxAttempts() int { return 1 }

// ExponentialBackoffRetrier retries transient transport failures with
// exponential backoff and optional jitter.
type ExponentialBackoffRetrier struct {
	// Attempts is the total number of attempts, the first included.
	Attempts int
	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration
	// MaxDelay caps the delay between retries.
	MaxDelay time.Duration
	// Multiplier grows the delay between attempts.
	Multiplier float64
	// Jitter randomizes delays to avoid thundering herds.
	Jitter bool
}

// NewExponentialBackoffRetrier returns a retrier with 3 attempts, a 100ms
// initial delay doubling up to 5s, with jitter.
func NewExponentialBackoffRetrier() *ExponentialBackoffRetrier {
	return &ExponentialBackoffRetrier{
		Attempts:     3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// ShouldRetry retries network-level failures and timeouts. Context
// cancellation is never retried.
func (r *ExponentialBackoffRetrier) ShouldRetry(err error, attempt int) bool {
	if err == nil || attempt >= r.MaxAttempts() {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// Wait sleeps for the backoff delay of the given attempt.
func (r *ExponentialBackoffRetrier) Wait(ctx context.Context, attempt int) error {
	delay := time.Duration(float64(r.InitialDelay) * math.Pow(r.Multiplier, float64(attempt-1)))
	if delay > r.MaxDelay {
		delay = r.MaxDelay
	}
	if r.Jitter {
		delay += time.Duration(rand.Int63n(int64(delay)/4 + 1))
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// MaxAttempts returns the configured attempt budget, at least 1.
func (r *ExponentialBackoffRetrier) MaxAttempts() int {
	if r.Attempts < 1 {
		return 1
	}
	return r.Attempts
}
