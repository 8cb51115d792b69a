// Package retrier provides exponential backoff with jitter for transient
// failures, such as fetching an upstream news feed.
package retrier

import (
	"context"
	"math/rand"
	"time"
)

const (
	defaultBaseDelay   = 500 * time.Millisecond
	defaultMaxDelay    = 15 * time.Second
	defaultFactor      = 2.0
	defaultMaxAttempts = 4
	defaultJitter      = 0.2
)

// Retrier retries a function with exponentially growing delays. The zero
// value is not usable; construct with New.
type Retrier struct {
	baseDelay   time.Duration
	maxDelay    time.Duration
	factor      float64
	maxAttempts int
	jitter      float64
}

type Option func(*Retrier)

// WithBaseDelay sets the delay before the first retry.
func WithBaseDelay(d time.Duration) Option {
	return func(r *Retrier) { r.baseDelay = d }
}

// WithMaxDelay caps the delay between attempts.
func WithMaxDelay(d time.Duration) Option {
	return func(r *Retrier) { r.maxDelay = d }
}

// WithFactor sets the backoff growth factor.
func WithFactor(f float64) Option {
	return func(r *Retrier) { r.factor = f }
}

// WithMaxAttempts sets the total number of attempts, including the first.
func WithMaxAttempts(n int) Option {
	return func(r *Retrier) { r.maxAttempts = n }
}

// WithJitter sets the jitter fraction applied to each delay (0.0 to 1.0).
func WithJitter(j float64) Option {
	return func(r *Retrier) { r.jitter = j }
}

func New(opts ...Option) *Retrier {
	r := &Retrier{
		baseDelay:   defaultBaseDelay,
		maxDelay:    defaultMaxDelay,
		factor:      defaultFactor,
		maxAttempts: defaultMaxAttempts,
		jitter:      defaultJitter,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.maxAttempts < 1 {
		r.maxAttempts = 1
	}
	return r
}

// Do runs fn until it succeeds, attempts run out, or the context is done.
// The last error from fn is returned when all attempts fail.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	delay := r.baseDelay

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if attempt == r.maxAttempts {
			break
		}

		sleep := delay
		if r.jitter > 0 {
			offset := (rand.Float64()*2 - 1) * r.jitter * float64(delay)
			sleep = time.Duration(float64(delay) + offset)
			if sleep < 0 {
				sleep = 0
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}

		delay = time.Duration(float64(delay) * r.factor)
		if delay > r.maxDelay {
			delay = r.maxDelay
		}
	}

	return err
}

// DoWithData is Do for functions that also return a value.
func DoWithData[T any](r *Retrier, ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context) error {
		var e error
		result, e = fn(ctx)
		return e
	})
	return result, err
}
