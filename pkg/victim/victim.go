// Package victim isolates a single attacker-owned cache line in a chosen
// set, the minimal building block Prime+Probe needs to watch one victim
// access without needing the whole-cache structure (spec.md §4.10).
package victim

import (
	"math/rand"
	"unsafe"

	"github.com/Miro-H/cachesc/internal/arch"
	"github.com/Miro-H/cachesc/internal/fault"
	"github.com/Miro-H/cachesc/internal/xlate"
	"github.com/Miro-H/cachesc/pkg/cacheline"
	"github.com/Miro-H/cachesc/pkg/cachectx"
	"github.com/Miro-H/cachesc/pkg/topology"
)

// Line is a handle to one cache line sitting in a known set, with its own
// teardown discipline depending on how it was built.
type Line struct {
	ctx   *cachectx.Context
	Entry *cacheline.Line

	// built is set for VIRTUAL lines, whose backing allocation is one big
	// block shared with the rest of the (otherwise discarded) structure.
	built *topology.Structure

	// page is set for PHYSICAL lines, whose backing allocation is the
	// single page Entry lives on, isolated via Structure.ReleaseExcept.
	page []byte
}

// Prepare builds a one-set structure targeting targetSet and returns a
// handle to a single line inside it. For a physically addressed ctx, every
// other page the build touched — including pages that contributed no line
// to the final set, not just the set's other associativity-1 members — is
// released immediately, since spec.md §4.10 only needs one line, and each
// physical line lives on its own page (one page contributes at most one
// line to any given set, by construction of the group-offset mapping).
func Prepare(ctx *cachectx.Context, targetSet int, t *xlate.Translator, r *rand.Rand) *Line {
	fault.Assert(targetSet >= 0 && targetSet < ctx.Sets, "victim: set %d out of range [0,%d)", targetSet, ctx.Sets)

	s := topology.BuildForSets(ctx, []int{targetSet}, t, r)
	fault.Assert(s.Entry != nil, "victim: failed to build set %d", targetSet)

	keep := s.Entry
	if ctx.Addressing != cachectx.Physical {
		return &Line{ctx: ctx, Entry: keep, built: s}
	}

	page := s.ReleaseExcept(keep)
	return &Line{ctx: ctx, Entry: keep, page: page}
}

// Release returns the line's backing memory: the whole aligned block for a
// VIRTUAL line, or the single owned page for a PHYSICAL one.
func Release(v *Line) {
	if v.built != nil {
		v.built.Release()
		v.built = nil
		v.Entry = nil
		return
	}
	if v.page != nil {
		fault.Require(arch.FreePages(v.page))
		v.page = nil
	}
	v.Entry = nil
}

// Touch brings the line back into cache after a suspected eviction, putting
// it into a known state before the next probe (spec.md §4.10).
func Touch(v *Line) {
	arch.Load(unsafe.Pointer(v.Entry))
}

// Evict flushes the line out of cache directly, used to establish a known
// baseline rather than relying on a victim access (spec.md §4.10).
func Evict(v *Line) {
	arch.Flush(unsafe.Pointer(v.Entry))
}
