package taskscheduler

import (
	"sync/atomic"

	lg "github.com/Andrej220/go-utils/zlog"
	"golang.org/x/sys/cpu"
)

// cachePad is used to prevent false sharing between hot fields.
type cachePad = cpu.CacheLinePad

// slot is one lane of the scheduler. At most one drain loop owns a slot
// at any instant; ownership is the claimed flag.
//
// Lifecycle:
//
//	idle ──tryClaim──► claimed ──release──► idle
//	                      ▲                  │
//	                      └──── recheck ─────┘ (same drain loop, no new dispatch)
type slot struct {
	claimed atomic.Bool
	index   int
	_       cachePad
}

// tryClaim flips the slot from idle to claimed. Exactly one caller wins
// a given idle→claimed transition.
func (sl *slot) tryClaim() bool {
	return sl.claimed.CompareAndSwap(false, true)
}

func (sl *slot) release() {
	sl.claimed.Store(false)
}

func (sl *slot) isClaimed() bool {
	return sl.claimed.Load()
}

// drainLoop returns the Task handed to the dispatcher after sl has been
// claimed.
func (s *Scheduler[T, M]) drainLoop(sl *slot) Task {
	return func() { s.drain(sl) }
}

// drain pops and runs items until the queue is observed empty, then
// releases the slot. Releasing is followed by a recheck: an item pushed
// between the emptiness check and the release would otherwise wait for
// the next probe, which may never come. If the recheck finds work and
// the slot can be taken back, draining continues in the same dispatched
// context.
//
// Tasks run without recover: a panicking task ends the drain loop with
// the slot still claimed.
func (s *Scheduler[T, M]) drain(sl *slot) {
	for {
		if item, ok := s.queue.PopFront(); ok {
			s.toTask(item)()
			s.metrics.IncExecuted()
		}
		if s.queue.Size() != 0 {
			continue
		}

		if s.afterEmpty != nil {
			s.afterEmpty(sl.index)
		}

		// Count the release while the slot is still ours; once the flag
		// clears, a producer may claim it and count a new claim.
		s.metrics.IncReleased()
		sl.release()

		if s.queue.Size() > 0 && sl.tryClaim() {
			s.metrics.IncReclaimed()
			lg.FromContext(s.opts.Ctx).Info("slot reclaimed on recheck", lg.Int("slot", sl.index))
			continue
		}

		lg.FromContext(s.opts.Ctx).Info("slot released", lg.Int("slot", sl.index))
		return
	}
}
