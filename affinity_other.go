//go:build !linux

package taskscheduler

func PinToCPU(cpu int) error {
	return ErrPinUnsupported
}
