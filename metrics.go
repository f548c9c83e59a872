package taskscheduler

import (
	"fmt"
	"sync/atomic"
)

// MetricsPolicy defines hooks used by the scheduler to report
// submission, claim and execution activity.
//
// Implementations must be safe for concurrent use.
// All methods are expected to be lightweight and non-blocking.
type MetricsPolicy interface {
	// IncSubmitted increments the submitted items counter.
	IncSubmitted()

	// IncExecuted increments the executed tasks counter.
	IncExecuted()

	// IncClaimed is called when a probe claims an idle slot and
	// dispatches a new drain loop.
	IncClaimed()

	// IncReclaimed is called when a drain loop takes its slot back
	// after releasing it because new work showed up.
	IncReclaimed()

	// IncReleased is called every time a slot claim is cleared.
	IncReleased()

	// IncProbeSkipped is called when a submit skips the probe because
	// the queue is presumed saturated.
	IncProbeSkipped()
}

// AtomicMetrics is a lock-free metrics implementation backed by atomics.
//
// Writes are optimized for hot paths.
// Reads are intended for cold-path observation.
type AtomicMetrics struct {
	submitted atomic.Uint64
	executed  atomic.Uint64

	_ cachePad

	claimed      atomic.Uint64
	reclaimed    atomic.Uint64
	released     atomic.Uint64
	probeSkipped atomic.Uint64

	_ cachePad

	// active is claims minus releases; peak is its high-water mark.
	active atomic.Int64
	peak   atomic.Int64
}

func (m *AtomicMetrics) IncSubmitted()    { m.submitted.Add(1) }
func (m *AtomicMetrics) IncExecuted()     { m.executed.Add(1) }
func (m *AtomicMetrics) IncProbeSkipped() { m.probeSkipped.Add(1) }

func (m *AtomicMetrics) IncClaimed() {
	m.claimed.Add(1)
	m.raise()
}

func (m *AtomicMetrics) IncReclaimed() {
	m.reclaimed.Add(1)
	m.raise()
}

func (m *AtomicMetrics) IncReleased() {
	m.released.Add(1)
	m.active.Add(-1)
}

func (m *AtomicMetrics) raise() {
	n := m.active.Add(1)
	for {
		p := m.peak.Load()
		if n <= p || m.peak.CompareAndSwap(p, n) {
			return
		}
	}
}

// Executed returns the total number of executed tasks.
func (m *AtomicMetrics) Executed() uint64 { return m.executed.Load() }

// Active returns the number of slots currently claimed.
func (m *AtomicMetrics) Active() int64 { return m.active.Load() }

// PeakActive returns the largest number of simultaneously claimed slots
// observed so far.
func (m *AtomicMetrics) PeakActive() int64 { return m.peak.Load() }

// MetricsSnapshot is a point-in-time copy of AtomicMetrics.
type MetricsSnapshot struct {
	Submitted    uint64
	Executed     uint64
	Claimed      uint64
	Reclaimed    uint64
	Released     uint64
	ProbeSkipped uint64
	Active       int64
	PeakActive   int64
}

// Snapshot copies all counters. Counters are read one by one, so the
// snapshot is only consistent when the scheduler is quiet.
func (m *AtomicMetrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Submitted:    m.submitted.Load(),
		Executed:     m.executed.Load(),
		Claimed:      m.claimed.Load(),
		Reclaimed:    m.reclaimed.Load(),
		Released:     m.released.Load(),
		ProbeSkipped: m.probeSkipped.Load(),
		Active:       m.active.Load(),
		PeakActive:   m.peak.Load(),
	}
}

func (s MetricsSnapshot) String() string {
	return fmt.Sprintf(
		"submitted=%d executed=%d claimed=%d reclaimed=%d released=%d probe_skipped=%d active=%d peak=%d",
		s.Submitted, s.Executed, s.Claimed, s.Reclaimed, s.Released, s.ProbeSkipped, s.Active, s.PeakActive,
	)
}

//------------- NoopMetrics ----------------------------------

// NoopMetrics is a MetricsPolicy implementation that discards
// all metric updates.
//
// It can be used when metrics collection is disabled and
// zero overhead is desired.
type NoopMetrics struct{}

func (m *NoopMetrics) IncSubmitted()    {}
func (m *NoopMetrics) IncExecuted()     {}
func (m *NoopMetrics) IncClaimed()      {}
func (m *NoopMetrics) IncReclaimed()    {}
func (m *NoopMetrics) IncReleased()     {}
func (m *NoopMetrics) IncProbeSkipped() {}
