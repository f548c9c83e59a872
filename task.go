package taskscheduler

import (
	"context"
	"fmt"
	"time"

	boff "github.com/Andrej220/go-utils/backoff"
	lg "github.com/Andrej220/go-utils/zlog"
)

// The scheduler itself neither retries nor recovers. The adapters below
// wrap a task body so a Converter can opt in to either.

// WithRetry returns a Task that calls fn until it succeeds, the policy's
// attempts are used up, or ctx is done. Delays between attempts come from
// an exponential backoff bounded by pol.Initial and pol.Max.
//
// The last error, wrapped in ErrRetriesExhausted, goes to onErr.
func WithRetry(ctx context.Context, fn func() error, pol RetryPolicy, onErr func(error)) Task {
	if ctx == nil {
		ctx = context.Background()
	}
	pol = pol.withDefaults()

	return func() {
		logger := lg.FromContext(ctx)
		bo := boff.New(pol.Initial, pol.Max, time.Now().UnixNano())

		for attempt := 1; attempt <= pol.Attempts; attempt++ {
			err := fn()
			if err == nil {
				return
			}
			if attempt == pol.Attempts {
				logger.Error("task failed", lg.Int("attempt", attempt), lg.Any("error", err))
				reportError(onErr, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempt, err))
				return
			}

			delay := bo.Next()
			logger.Warn("task attempt failed; backing off",
				lg.Int("attempt", attempt),
				lg.String("sleep", delay.String()),
				lg.Any("error", err),
			)
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				logger.Info("task retry canceled", lg.Any("reason", ctx.Err()))
				reportError(onErr, fmt.Errorf("taskscheduler: retry canceled: %w", ctx.Err()))
				return
			}
		}
	}
}

// Recover returns a Task that runs t and turns a panic into an
// ErrTaskPanicked error passed to onErr, so the surrounding drain loop
// keeps going. The panic is logged with the logger carried by ctx.
func Recover(ctx context.Context, t Task, onErr func(error)) Task {
	if ctx == nil {
		ctx = context.Background()
	}
	return func() {
		defer func() {
			if r := recover(); r != nil {
				lg.FromContext(ctx).Error("task panicked", lg.Any("panic", r))
				reportError(onErr, fmt.Errorf("%w: %v", ErrTaskPanicked, r))
			}
		}()
		t()
	}
}
