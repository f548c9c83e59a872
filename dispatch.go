package taskscheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	lg "github.com/Andrej220/go-utils/zlog"
	"golang.org/x/time/rate"
)

// Inline runs the drain loop on the caller's goroutine, i.e. inside
// Submit.
func Inline(t Task) { t() }

// Go runs every drain loop on its own goroutine. Nothing waits for it.
func Go(t Task) { go t() }

// Group is a goroutine dispatcher that keeps track of the drain loops it
// started, so the owner can wait for them before exiting.
type Group struct {
	wg       sync.WaitGroup
	inflight atomic.Int32
}

// Dispatch starts t on a new goroutine. Use g.Dispatch as a Dispatcher.
func (g *Group) Dispatch(t Task) {
	g.wg.Add(1)
	g.inflight.Add(1)
	go func() {
		defer g.wg.Done()
		defer g.inflight.Add(-1)
		t()
	}()
}

// Wait blocks until every dispatched drain loop has returned or ctx is
// done, in which case ctx.Err() is returned and the loops keep running.
func (g *Group) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.wg.Wait()
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Inflight returns the number of drain loops still running.
func (g *Group) Inflight() int32 { return g.inflight.Load() }

// RateLimited throttles how fast new drain loops start. The limiter wait
// happens inside the dispatched task, so Submit is never held up by it.
//
// A failed wait is reported to onErr and the task runs anyway: a
// dispatcher must execute every task exactly once.
func RateLimited(ctx context.Context, lim *rate.Limiter, next Dispatcher, onErr func(error)) Dispatcher {
	if ctx == nil {
		ctx = context.Background()
	}
	return func(t Task) {
		next(func() {
			if err := lim.Wait(ctx); err != nil {
				lg.FromContext(ctx).Warn("rate limiter wait failed; starting drain loop anyway", lg.Any("error", err))
				reportError(onErr, fmt.Errorf("taskscheduler: rate limit wait: %w", err))
			}
			t()
		})
	}
}
