// Package primeprobe implements the forward/reverse prime, per-set and
// per-line probe, and measurement-extraction primitives (spec.md §4.9).
// Every walk here is ordered strictly by the ring topology pkg/topology
// built; nothing in this package is safe to call concurrently against the
// same structure (spec.md §5).
package primeprobe

import (
	"unsafe"

	"github.com/Miro-H/cachesc/internal/arch"
	"github.com/Miro-H/cachesc/pkg/cacheline"
	"github.com/Miro-H/cachesc/pkg/cachectx"
)

// Prime walks forward from entry, touching every line exactly once and
// issuing an Mfence after each touch so the load commits before the next
// one issues, filling every set via each line's way. It returns
// entry.Prev, the natural starting point for the next round.
func Prime(entry *cacheline.Line) *cacheline.Line {
	arch.Cpuid()
	cur := entry
	for {
		arch.Load(unsafe.Pointer(cur))
		arch.Mfence()
		next := cur.Next
		if next == entry {
			break
		}
		cur = next
	}
	arch.Cpuid()
	return entry.Prev
}

// PrimeRev is Prime but walks backward (via Prev). Used for L2 so the
// first sets touched are the ones probed first, avoiding transient L1
// residency bias (spec.md §4.9). Returns entry.Next.
func PrimeRev(entry *cacheline.Line) *cacheline.Line {
	arch.Cpuid()
	cur := entry
	for {
		arch.Load(unsafe.Pointer(cur))
		arch.Mfence()
		prev := cur.Prev
		if prev == entry {
			break
		}
		cur = prev
	}
	arch.Cpuid()
	return entry.Next
}

// ProbeSet times all lines of one set in a single back-to-back access
// burst, amortising the fixed measurement overhead across the whole set
// rather than paying it per line, and writes the result into setHead's
// Timing. It returns the head of the next set so Probe can chain.
//
// level only selects which cache level's latency the caller should compare
// the reading against (pkg/cachectx.Context.AccessTime); the timed
// sequence itself is identical across levels, matching the Go-orchestrates
// small-asm-primitives shape of the teacher's calibration loop rather than
// separately hand-unrolled per-level assembly.
func ProbeSet(level cachectx.Level, setHead *cacheline.Line) *cacheline.Line {
	_ = level
	start := arch.StartTimer()
	cur := setHead
	for {
		arch.Load(unsafe.Pointer(cur))
		if cur.Flags&cacheline.FlagLast != 0 {
			break
		}
		cur = cur.Next
	}
	setHead.Timing = arch.StopTimer(start)
	return cur.Next
}

// Probe walks the whole ring starting at entry, calling ProbeSet once per
// set and chaining by its return value, until it reaches entry again.
func Probe(level cachectx.Level, entry *cacheline.Line) *cacheline.Line {
	head := entry
	for {
		next := ProbeSet(level, head)
		if next == entry {
			return next
		}
		head = next
	}
}

// ProbeLines is the line-by-line counterpart to Probe: every line is timed
// individually with AccessTime rather than amortised per set, at the cost
// of more measurement noise (spec.md §1: "measure, line-by-line or
// set-by-set").
func ProbeLines(entry *cacheline.Line) {
	cur := entry
	for {
		cur.Timing = arch.AccessTime(unsafe.Pointer(cur))
		next := cur.Next
		if next == entry {
			return
		}
		cur = next
	}
}

// FullProbe times the whole structure with a single start/stop pair and
// returns one cycle count for the entire traversal.
func FullProbe(entry *cacheline.Line) uint32 {
	start := arch.StartTimer()
	cur := entry
	for {
		arch.Load(unsafe.Pointer(cur))
		next := cur.Next
		if next == entry {
			break
		}
		cur = next
	}
	return arch.StopTimer(start)
}

// PerLineTimes copies each line's Timing in walk order into out, which
// must have length >= the ring's line count. Meaningful after ProbeLines.
func PerLineTimes(entry *cacheline.Line, out []uint32) {
	cur := entry
	i := 0
	for {
		out[i] = cur.Timing
		i++
		next := cur.Next
		if next == entry {
			return
		}
		cur = next
	}
}

// SetTimes writes each FlagFirst line's Timing into out[line.SetIndex].
// Meaningful after Probe/ProbeSet.
func SetTimes(entry *cacheline.Line, out []uint32) {
	cur := entry
	for {
		if cur.Flags&cacheline.FlagFirst != 0 {
			out[cur.SetIndex] = cur.Timing
		}
		next := cur.Next
		if next == entry {
			return
		}
		cur = next
	}
}

// PerSetSum adds each line's Timing into out[line.SetIndex]. Used when
// individual lines were timed via ProbeLines.
func PerSetSum(entry *cacheline.Line, out []uint32) {
	cur := entry
	for {
		out[cur.SetIndex] += cur.Timing
		next := cur.Next
		if next == entry {
			return
		}
		cur = next
	}
}
