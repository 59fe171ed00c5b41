//go:build linux

package arch

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// PinCPU locks the calling goroutine to its current OS thread and pins that
// thread to logical CPU cpu. The Prime+Probe engine assumes this has already
// been called before any build/prime/probe call (spec §5): measurement
// correctness depends on not migrating mid-measurement.
func PinCPU(cpu int) error {
	runtime.LockOSThread()

	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("arch: pin to CPU %d: %w", cpu, err)
	}
	return nil
}
