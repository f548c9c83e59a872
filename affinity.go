//go:build linux

package taskscheduler

import (
	"golang.org/x/sys/unix"
)

// PinToCPU restricts the calling OS thread to a single CPU. The caller
// must hold runtime.LockOSThread for the pin to mean anything.
func PinToCPU(cpu int) error {
	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpu)
	return unix.SchedSetaffinity(0, &mask)
}
