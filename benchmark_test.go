package taskscheduler_test

import (
	"crypto/sha256"
	"fmt"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	ts "github.com/azargarov/taskscheduler"
)

type workload struct {
	name string
	fn   func()
}

var shaData = []byte("some deterministic payloadsome deterministic payloadsome deterministic payloadsome deterministic payload")

var workloads = []workload{
	{"empty", func() {}},
	{"sha256", func() { _ = sha256.Sum256(shaData) }},
	{"cpu", func() {
		x := 0
		for i := range 1000 {
			x += i * i
		}
		_ = x
	}},
	{"io", func() { time.Sleep(5 * time.Microsecond) }},
}

// -----------------------------------------------------------------------------
// Queue
// -----------------------------------------------------------------------------

func BenchmarkWorkQueue_PushPop(b *testing.B) {
	q := ts.NewWorkQueue[int](runtime.GOMAXPROCS(0))

	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		q.Push(1)
		if _, ok := q.PopFront(); !ok {
			b.Fatal("pop failed")
		}
	}
}

func BenchmarkWorkQueue_ParallelPushPop(b *testing.B) {
	q := ts.NewWorkQueue[int](runtime.GOMAXPROCS(0))

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			q.Push(1)
			q.PopFront()
		}
	})
}

// -----------------------------------------------------------------------------
// Scheduler
// -----------------------------------------------------------------------------

func BenchmarkScheduler_Submit(b *testing.B) {
	for _, mode := range probeModes {
		for _, slots := range []int{1, 4, runtime.GOMAXPROCS(0)} {
			for _, wl := range workloads {
				name := fmt.Sprintf("%s/slots=%d/%s", mode, slots, wl.name)
				b.Run(name, func(b *testing.B) {
					benchSubmit(b, mode, slots, wl.fn)
				})
			}
		}
	}
}

func benchSubmit(b *testing.B, mode ts.ProbeMode, slots int, work func()) {
	b.Helper()

	var g ts.Group
	var executed atomic.Int64

	s, err := ts.NewSchedulerFromOptions[*ts.NoopMetrics, int](
		&ts.NoopMetrics{},
		ts.Options{MaxConcurrency: slots, Probe: mode},
		func(int) ts.Task {
			return func() {
				work()
				executed.Add(1)
			}
		},
		g.Dispatch,
	)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()

	var submitted atomic.Int64
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			s.Submit(1)
			submitted.Add(1)
		}
	})

	// hint-gated submits with one slot never probe, nothing to wait for
	if mode == ts.ProbeOnDrainHint && slots == 1 {
		return
	}
	deadline := time.Now().Add(30 * time.Second)
	for executed.Load() < submitted.Load() {
		if time.Now().After(deadline) {
			b.Fatalf("executed %d of %d", executed.Load(), submitted.Load())
		}
		runtime.Gosched()
	}
	b.StopTimer()
}
