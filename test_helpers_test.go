package taskscheduler_test

import (
	"runtime"
	"sync"
	"testing"
	"time"

	ts "github.com/azargarov/taskscheduler"
)

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		runtime.Gosched()
	}
	t.Fatal("condition not satisfied before timeout")
}

// manualDispatcher parks dispatched drain loops until the test runs them.
type manualDispatcher struct {
	mu    sync.Mutex
	tasks []ts.Task
}

func (d *manualDispatcher) Dispatch(t ts.Task) {
	d.mu.Lock()
	d.tasks = append(d.tasks, t)
	d.mu.Unlock()
}

func (d *manualDispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tasks)
}

// RunAll runs the parked drain loops in dispatch order.
func (d *manualDispatcher) RunAll() {
	d.mu.Lock()
	tasks := d.tasks
	d.tasks = nil
	d.mu.Unlock()

	for _, t := range tasks {
		t()
	}
}

// recorder collects processed items.
type recorder[T comparable] struct {
	mu    sync.Mutex
	items []T
}

func (r *recorder[T]) add(v T) {
	r.mu.Lock()
	r.items = append(r.items, v)
	r.mu.Unlock()
}

func (r *recorder[T]) snapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.items...)
}

func (r *recorder[T]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *recorder[T]) converter() ts.Converter[T] {
	return func(v T) ts.Task {
		return func() { r.add(v) }
	}
}

// hookMetrics runs callbacks from inside metric hooks, which fire at
// fixed points of Submit and the drain loop.
type hookMetrics struct {
	*ts.AtomicMetrics
	onSubmitted func()
	onReleased  func()
}

func (m *hookMetrics) IncSubmitted() {
	if m.onSubmitted != nil {
		m.onSubmitted()
	}
	m.AtomicMetrics.IncSubmitted()
}

func (m *hookMetrics) IncReleased() {
	if m.onReleased != nil {
		m.onReleased()
	}
	m.AtomicMetrics.IncReleased()
}
