// Package retry runs remote calls with bounded retries, exponential backoff
// and a deadline per attempt.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/bits"
	"strings"
	"time"

	"github.com/DanielPopoola/solpay-gateway/internal/config"
)

// ErrAttemptTimeout marks an attempt that ran past Policy.AttemptTimeout.
var ErrAttemptTimeout = errors.New("attempt timed out")

type Policy struct {
	MaxRetries     int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	AttemptTimeout time.Duration
}

func PolicyFromConfig(cfg config.RetryConfig) Policy {
	return Policy{
		MaxRetries:     cfg.MaxRetries,
		InitialDelay:   cfg.InitialDelay,
		MaxDelay:       cfg.MaxDelay,
		AttemptTimeout: cfg.AttemptTimeout,
	}
}

// Backoff returns the wait before retry number attempt (0-indexed):
// min(InitialDelay * 2^attempt, MaxDelay). No jitter.
func (p Policy) Backoff(attempt int) time.Duration {
	if p.InitialDelay <= 0 || p.InitialDelay >= p.MaxDelay {
		return p.MaxDelay
	}
	// InitialDelay << attempt stays within MaxDelay, and so cannot overflow,
	// while 2^attempt <= MaxDelay/InitialDelay.
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= bits.Len64(uint64(p.MaxDelay/p.InitialDelay)) {
		return p.MaxDelay
	}
	return p.InitialDelay << attempt
}

// AggregateError is returned once every attempt has failed. Errors keeps
// the per-attempt failures in the order they happened.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "all %d attempts failed", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "; attempt %d: %v", i+1, err)
	}
	return b.String()
}

func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// Hook observes a failed attempt. attempt is 1-based.
type Hook func(attempt int, err error)

type options struct {
	retryable func(error) bool
	onFailure Hook
}

type Option func(*options)

// WithRetryable limits retries to errors for which fn returns true. Other
// errors are returned immediately and unwrapped.
func WithRetryable(fn func(error) bool) Option {
	return func(o *options) { o.retryable = fn }
}

// WithHook registers a callback fired after every failed attempt.
func WithHook(fn Hook) Option {
	return func(o *options) { o.onFailure = fn }
}

type result[T any] struct {
	value T
	err   error
}

// Do runs operation up to MaxRetries+1 times.
func Do[T any](ctx context.Context, policy Policy, operation func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	o := options{retryable: func(error) bool { return true }}
	for _, opt := range opts {
		opt(&o)
	}

	var zero T
	var failures []error

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		value, err := runAttempt(ctx, policy.AttemptTimeout, operation)
		if err == nil {
			return value, nil
		}

		// The caller's context ended while the attempt was running.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}

		if o.onFailure != nil {
			o.onFailure(attempt+1, err)
		}

		if !o.retryable(err) {
			return zero, err
		}

		failures = append(failures, err)

		if attempt < policy.MaxRetries {
			if err := sleep(ctx, policy.Backoff(attempt)); err != nil {
				return zero, err
			}
		}
	}

	return zero, &AggregateError{Errors: failures}
}

// runAttempt bounds one call by timeout. The attempt context is cancelled
// when the deadline fires, and a result arriving after that is dropped.
func runAttempt[T any](ctx context.Context, timeout time.Duration, operation func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return operation(ctx)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan result[T], 1)
	go func() {
		value, err := operation(attemptCtx)
		done <- result[T]{value: value, err: err}
	}()

	var zero T
	select {
	case r := <-done:
		if r.err != nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return zero, fmt.Errorf("%w after %s: %v", ErrAttemptTimeout, timeout, r.err)
		}
		return r.value, r.err
	case <-attemptCtx.Done():
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		return zero, fmt.Errorf("%w after %s", ErrAttemptTimeout, timeout)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
