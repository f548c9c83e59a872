package taskscheduler

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	lg "github.com/Andrej220/go-utils/zlog"
)

// Pinned runs each drain loop on its own goroutine locked to an OS thread
// pinned to one of cpus, chosen round-robin. With an empty cpus list the
// loops are spread over all GOMAXPROCS CPUs.
//
// A pin failure is reported to onErr and the drain loop runs unpinned.
func Pinned(cpus []int, onErr func(error)) Dispatcher {
	if len(cpus) == 0 {
		cpus = make([]int, runtime.GOMAXPROCS(0))
		for i := range cpus {
			cpus[i] = i
		}
	}
	var next atomic.Uint64
	return func(t Task) {
		cpu := pickCPU(cpus, next.Add(1)-1)
		go func() {
			// No UnlockOSThread: the thread keeps its affinity mask, so it
			// must exit with the goroutine instead of going back to the pool.
			runtime.LockOSThread()

			if err := PinToCPU(cpu); err != nil {
				lg.FromContext(context.Background()).Warn("pin failed, running unpinned", lg.Int("cpu", cpu), lg.Any("error", err))
				reportError(onErr, fmt.Errorf("taskscheduler: pin to cpu %d: %w", cpu, err))
			}
			t()
		}()
	}
}

// pickCPU maps the n-th dispatch onto cpus round-robin.
func pickCPU(cpus []int, n uint64) int {
	return cpus[n%uint64(len(cpus))]
}
