package taskscheduler

import (
	"context"
	"fmt"
	"runtime"
)

// ProbeMode defines when Submit walks the slots looking for idle ones.
//
// The mode is configured via Options.Probe when creating a Scheduler.
type ProbeMode int

const (
	// ProbeAuto resolves to ProbeOnDrainHint, or to ProbeAlways when there
	// is a single slot: with one slot the first push already clears the
	// drained hint and a hint-gated submit would never probe.
	ProbeAuto ProbeMode = iota

	// ProbeOnDrainHint probes only while the queue's drained hint is set.
	// Once the queue has grown to MaxConcurrency items without emptying,
	// every slot is assumed busy and submits skip the walk.
	ProbeOnDrainHint

	// ProbeAlways probes on every submit. It closes the gap where a slot
	// goes idle while the queue never fully empties, at the cost of one
	// walk over the slots per submit.
	ProbeAlways
)

// Options configure a Scheduler.
//
// All zero values are replaced with sensible defaults in FillDefaults.
type Options struct {
	// MaxConcurrency is the number of slots, i.e. the upper bound of
	// drain loops running at the same time.
	MaxConcurrency int

	Probe ProbeMode

	// Ctx carries the logger used by the scheduler. It is never used for
	// cancellation.
	Ctx context.Context

	// Verbose enables per-submit log lines (skipped probes).
	Verbose bool
}

func (o *Options) FillDefaults() {
	if o.MaxConcurrency <= 0 {
		o.MaxConcurrency = runtime.GOMAXPROCS(0)
	}
	if o.Ctx == nil {
		o.Ctx = context.Background()
	}
	if o.Probe == ProbeAuto {
		o.Probe = ProbeOnDrainHint
		if o.MaxConcurrency == 1 {
			o.Probe = ProbeAlways
		}
	}
}

func (m ProbeMode) String() string {
	switch m {
	case ProbeAuto:
		return "ProbeAuto"
	case ProbeOnDrainHint:
		return "ProbeOnDrainHint"
	case ProbeAlways:
		return "ProbeAlways"
	default:
		return "Unknown"
	}
}

// ParseProbeMode maps the short names used by command line tools
// ("auto", "hint", "always") to a ProbeMode.
func ParseProbeMode(s string) (ProbeMode, error) {
	switch s {
	case "", "auto":
		return ProbeAuto, nil
	case "hint":
		return ProbeOnDrainHint, nil
	case "always":
		return ProbeAlways, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownProbeMode, s)
	}
}
