//go:build amd64

package arch

import "unsafe"

// Flush evicts the cache line containing p from all cache levels.
//
//go:noescape
//go:nosplit
func Flush(p unsafe.Pointer)

// Load issues a single 8-byte load from p and returns the value read.
//
//go:noescape
//go:nosplit
func Load(p unsafe.Pointer) uint64

// Inc issues a single 8-byte read-modify-write increment to p.
//
//go:noescape
//go:nosplit
func Inc(p unsafe.Pointer)

// Mfence issues a full memory fence.
//
//go:nosplit
func Mfence()

// Lfence issues a load fence.
//
//go:nosplit
func Lfence()

// Sfence issues a store fence.
//
//go:nosplit
func Sfence()

// Cpuid issues a serialising CPUID, draining the out-of-order execution
// pipeline of anything issued before it.
//
//go:nosplit
func Cpuid()

// StartTimer serialises and returns the low 32 bits of the cycle counter.
// Pair with StopTimer to measure the cycles spent in between.
//
//go:nosplit
func StartTimer() uint32

// StopTimer serialises, reads the cycle counter again and returns the
// 32-bit cycle delta since the timestamp returned by StartTimer.
//
//go:nosplit
func StopTimer(prev uint32) uint32

// AccessTime serialises, touches p, serialises again and returns the cycle
// delta. This is the combined start/touch/stop form used for calibration
// and is_cached checks; it is not used inside prime/probe, which time
// whole sets at once to amortise overhead (see pkg/primeprobe).
//
//go:noescape
//go:nosplit
func AccessTime(p unsafe.Pointer) uint32

// AccessTimeOverhead has the same shape as AccessTime but touches no
// memory; subtracting it from AccessTime(p) isolates the cost of the
// memory access itself from fixed measurement overhead.
//
//go:nosplit
func AccessTimeOverhead() uint32

// NopSlide runs a short sequence of no-ops to drain the pipeline before a
// timer is started, reducing variance from whatever preceded the call.
//
//go:nosplit
func NopSlide()
