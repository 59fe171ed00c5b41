// Package arch provides the architecture-specific primitives the Prime+Probe
// engine measures through: serialising instructions, a monotonic cycle
// counter, and single-instruction memory touches. Every primitive here is a
// //go:nosplit no-body Go declaration backed by a hand-written amd64
// assembly file, the same pattern the reference firmware uses for its PMU
// cycle counter reads. Go does not inline assembly functions, so each use
// is an ordinary call/return; only the timed sequences inside AccessTime
// and AccessTimeOverhead run without a call between their timestamps.
//
// Nothing in this package is safe to call from more than one goroutine at a
// time against the same memory; the caller is expected to have already
// pinned itself to a single logical CPU with PinCPU.
package arch
