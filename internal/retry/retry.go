// Package retry wraps remote calls with rate-limit aware retries bounded by a
// shared deadline anchor.
//
// A Controller is reset once at the start of every top-level fetch. Every call
// made through Do during that fetch shares the anchor, so the one hour budget
// covers the issue listing and all message listings together. The backoff
// attempt counter, on the other hand, is local to each Do call.
package retry

import (
	"context"
	"errors"
	"math"
	"time"

	appErrors "github.com/Tomas-vilte/sonar-funnel/internal/errors"
	"github.com/Tomas-vilte/sonar-funnel/internal/logger"
)

const (
	ProcessTimeout = time.Hour
	BaseDelay      = 5 * time.Second
	MaxDelay       = 120 * time.Second
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Controller holds the deadline anchor shared by every retried call of one
// fetch operation. It is meant to be driven from a single goroutine.
type Controller struct {
	start time.Time
	now   func() time.Time
	sleep SleepFunc
}

type Option func(*Controller)

// WithClock replaces the time source, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithSleep replaces the sleeper, mostly for tests.
func WithSleep(sleep SleepFunc) Option {
	return func(c *Controller) {
		c.sleep = sleep
	}
}

func NewController(opts ...Option) *Controller {
	c := &Controller{
		now:   time.Now,
		sleep: Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reset moves the deadline anchor to now.
func (c *Controller) Reset() {
	c.start = c.now()
}

// Elapsed returns the time since the last Reset, or zero if it was never reset.
func (c *Controller) Elapsed() time.Duration {
	if c.start.IsZero() {
		return 0
	}
	return c.now().Sub(c.start)
}

// Backoff returns the fallback delay for the given attempt: 5s * 2^attempt
// capped at two minutes.
func Backoff(attempt int) time.Duration {
	delay := float64(BaseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(MaxDelay) {
		return MaxDelay
	}
	return time.Duration(delay)
}

// Do calls fn until it succeeds, fails with something other than a rate-limit
// error, or a rate-limit error arrives after the process deadline. In the last
// case the returned error wraps ErrProcessTimeout and callers must abort.
func Do[T any](ctx context.Context, c *Controller, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	log := logger.FromContext(ctx)
	attempt := 0

	for {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		var rlErr *appErrors.RateLimitError
		if !errors.As(err, &rlErr) {
			return result, err
		}

		elapsed := c.Elapsed()
		if elapsed >= ProcessTimeout {
			var zero T
			return zero, appErrors.ErrProcessTimeout.
				WithError(err).
				WithContext("operation", operation).
				WithContext("elapsed", elapsed.Round(time.Second).String())
		}

		delay := rlErr.RetryAfter
		if delay <= 0 {
			delay = Backoff(attempt)
		}
		attempt++

		log.Warn("rate limited, retrying",
			"operation", operation,
			"attempt", attempt,
			"elapsed", elapsed.Round(time.Second),
			"delay", delay)

		if err := c.sleep(ctx, delay); err != nil {
			var zero T
			return zero, err
		}
	}
}

// Sleep blocks for d without holding anything else up, returning early with
// the context error if ctx is cancelled.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
