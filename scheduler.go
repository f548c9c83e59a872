package taskscheduler

import (
	lg "github.com/Andrej220/go-utils/zlog"
)

// Scheduler pairs a WorkQueue with a fixed set of slots. Producers call
// Submit concurrently; every slot claimed by a probe starts one drain
// loop through the dispatcher, so no more than MaxConcurrency drain loops
// are ever active regardless of queue depth.
//
// M is the metrics policy; use NoopMetrics to pay nothing for it.
type Scheduler[T any, M MetricsPolicy] struct {
	queue    *WorkQueue[T]
	slots    []slot
	toTask   Converter[T]
	dispatch Dispatcher
	metrics  M
	opts     Options

	// afterEmpty, when set, runs inside a drain loop between observing
	// an empty queue and releasing the slot.
	afterEmpty func(slot int)
}

// NewScheduler creates a scheduler with maxConcurrency slots, ProbeAuto
// and no metrics.
func NewScheduler[T any](maxConcurrency int, toTask Converter[T], dispatch Dispatcher) (*Scheduler[T, *NoopMetrics], error) {
	return NewSchedulerFromOptions[*NoopMetrics, T](
		&NoopMetrics{},
		Options{MaxConcurrency: maxConcurrency},
		toTask,
		dispatch,
	)
}

// NewSchedulerFromOptions creates a scheduler using opts and the given
// metrics policy. Zero option values are filled with defaults.
func NewSchedulerFromOptions[M MetricsPolicy, T any](metrics M, opts Options, toTask Converter[T], dispatch Dispatcher) (*Scheduler[T, M], error) {
	if toTask == nil {
		return nil, ErrNilConverter
	}
	if dispatch == nil {
		return nil, ErrNilDispatcher
	}
	opts.FillDefaults()
	if opts.Probe == ProbeOnDrainHint && opts.MaxConcurrency == 1 {
		lg.FromContext(opts.Ctx).Warn("hint-gated probing with a single slot never dispatches; use ProbeAlways",
			lg.Int("max_concurrency", opts.MaxConcurrency))
	}

	s := &Scheduler[T, M]{
		queue:    NewWorkQueue[T](opts.MaxConcurrency),
		slots:    make([]slot, opts.MaxConcurrency),
		toTask:   toTask,
		dispatch: dispatch,
		metrics:  metrics,
		opts:     opts,
	}
	for i := range s.slots {
		s.slots[i].index = i
	}
	return s, nil
}

// Submit enqueues item and tries to put idle slots to work. It never
// fails; with a synchronous dispatcher the item may already be processed
// when Submit returns.
func (s *Scheduler[T, M]) Submit(item T) {
	// Size and hint are observed together with the push. Reading them
	// afterwards lets concurrent producers all see the hint cleared by
	// someone else's push and all skip the probe while every slot is idle.
	waiting, drained := s.queue.PushObserve(item)
	s.metrics.IncSubmitted()

	if s.opts.Probe == ProbeOnDrainHint && !drained {
		s.metrics.IncProbeSkipped()
		if s.opts.Verbose {
			lg.FromContext(s.opts.Ctx).Info("probe skipped, queue presumed saturated", lg.Int("waiting", waiting))
		}
		return
	}
	s.probe(waiting)
}

// probe walks the slots in order and claims up to budget idle ones.
// Busy slots are skipped without spending budget.
func (s *Scheduler[T, M]) probe(budget int) {
	for i := 0; i < len(s.slots) && budget > 0; i++ {
		sl := &s.slots[i]
		if !sl.tryClaim() {
			continue
		}
		s.metrics.IncClaimed()
		lg.FromContext(s.opts.Ctx).Info("slot claimed", lg.Int("slot", sl.index), lg.Int("budget", budget))
		s.dispatch(s.drainLoop(sl))
		budget--
	}
}

// MaxConcurrency returns the number of slots.
func (s *Scheduler[T, M]) MaxConcurrency() int { return len(s.slots) }

// Pending returns the number of items waiting in the queue.
func (s *Scheduler[T, M]) Pending() int { return s.queue.Size() }

// RecentlyDrained exposes the queue's drained hint.
func (s *Scheduler[T, M]) RecentlyDrained() bool { return s.queue.RecentlyDrained() }

// ActiveSlots returns how many slots are claimed right now.
func (s *Scheduler[T, M]) ActiveSlots() int {
	n := 0
	for i := range s.slots {
		if s.slots[i].isClaimed() {
			n++
		}
	}
	return n
}

func (s *Scheduler[T, M]) Metrics() M { return s.metrics }

func (s *Scheduler[T, M]) ProbeMode() ProbeMode { return s.opts.Probe }
