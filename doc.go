// Package taskscheduler provides a bounded-concurrency task dispatcher:
// a thread-safe queue of work items paired with a fixed number of slots
// that cap how many drain loops run at the same time.
//
// Design goals
//
//   - Never lose submitted work
//   - Never run more than MaxConcurrency drain loops at once
//   - Never leave a slot idle while work it could take is stranded
//   - Stay out of the threading business: where a drain loop runs is
//     decided by an injected Dispatcher
//
// Architecture overview
//
//	producer ──Submit──► WorkQueue.Push ──► probe(slots)
//	                                           │ tryClaim ok
//	                                           ▼
//	                                 Dispatcher(drain loop)
//	                                           │
//	                      ┌────────────────────┘
//	                      ▼
//	         PopFront → Converter(item)() → ... → queue empty
//	                      ▲                            │
//	                      └──── recheck reclaims ◄─── release
//
//   1. WorkQueue
//      Unbounded FIFO under a reader/writer lock. It also keeps a
//      "recently drained" hint: set when the queue empties, cleared
//      when it grows to MaxConcurrency items.
//
//   2. Slots
//      A fixed array of claim flags. A successful compare-and-swap on a
//      flag gives the caller the right to start exactly one drain loop.
//
//   3. Scheduler
//      Submit pushes the item and, unless the hint says every slot is
//      presumably busy, probes the slots: it claims up to "queue size"
//      idle slots, skipping claimed ones without spending budget, and
//      dispatches a drain loop for each claim.
//
// Drain loop and recheck
//
// A drain loop pops and runs items until it sees the queue empty. It
// then releases its slot and looks at the queue once more. An item that
// arrived between the emptiness check and the release would otherwise
// sit unclaimed: its producer's probe found the slot still claimed. If
// the second look finds work and the slot can be claimed again, the same
// drain loop continues; no new dispatch happens.
//
// Probe modes
//
// ProbeOnDrainHint skips the probe while the drained hint is cleared. If
// a slot goes idle while the queue never fully empties, new submits do
// not wake it until the queue drains. With MaxConcurrency 1 the very
// first push clears the hint, so that configuration needs ProbeAlways.
// ProbeAlways probes on every submit. ProbeAuto, the zero value, picks
// ProbeOnDrainHint unless there is a single slot.
//
// Submit reads the queue size and the hint under the lock of its own
// push. Reading them afterwards lets concurrent producers all see a hint
// cleared by a later push and all skip the probe while every slot idles.
//
// Ordering
//
// Items leave the queue in global FIFO order. Completion order across
// slots is not defined.
//
// Errors
//
// Submit cannot fail and claim contention is silent. Tasks run without
// recover; use Recover and WithRetry to wrap task bodies when needed.
// Dispatchers report their own failures (pinning, rate limiting) through
// an OnError callback and still run the task.
//
// Usage
//
//	var g taskscheduler.Group
//	s, err := taskscheduler.NewScheduler(3,
//	    func(n int) taskscheduler.Task {
//	        return func() { process(n) }
//	    },
//	    g.Dispatch,
//	)
//	if err != nil {
//	    return err
//	}
//	for i := range 10 {
//	    s.Submit(i)
//	}
//	_ = g.Wait(ctx)
package taskscheduler
