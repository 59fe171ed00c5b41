package topology

import (
	"math/bits"
	"math/rand"
	"unsafe"

	"github.com/Miro-H/cachesc/internal/arch"
	"github.com/Miro-H/cachesc/internal/fault"
	"github.com/Miro-H/cachesc/internal/xlate"
	"github.com/Miro-H/cachesc/pkg/cacheline"
	"github.com/Miro-H/cachesc/pkg/cachectx"
)

// BuildPhysicalPrivileged implements the physical builder used when the
// caller can read resolved physical frame numbers (spec.md §4.6). Pages are
// allocated one at a time; a whole page is accepted or rejected atomically,
// because every line in one physical page maps to CacheGroupSize
// consecutive physical sets sharing the page's high address bits.
func BuildPhysicalPrivileged(ctx *cachectx.Context, t *xlate.Translator, sets []int, r *rand.Rand) *Structure {
	fault.Assert(ctx.Addressing == cachectx.Physical, "topology: BuildPhysicalPrivileged requires a physically addressed context")

	want := toSet(sets)
	targetSets := sets
	if len(targetSets) == 0 {
		targetSets = allSets(ctx.Sets)
	}

	counts := make(map[int32]int, len(targetSets))
	for _, s := range targetSets {
		counts[int32(s)] = 0
	}

	shift := bits.TrailingZeros(uint(ctx.LineSize))
	mask := uint(ctx.Sets - 1)

	var tagged []taggedLine
	var pages [][]byte

	for !allFull(counts, ctx.Associativity) {
		page, err := arch.AllocPages(1)
		fault.Require(err)
		for i := range page {
			page[i] = 0
		}

		type slot struct {
			line *cacheline.Line
			set  int32
		}
		var candidates []slot
		overflow := false

		for off := 0; off+ctx.LineSize <= len(page); off += ctx.LineSize {
			vaddr := uintptr(unsafe.Pointer(&page[off]))
			phys, ok := t.Translate(vaddr)
			fault.Assert(ok, "topology: physical translation unavailable after privilege probe succeeded")

			setIdx := int32((uint(phys) >> shift) & mask)
			if want != nil && !want[setIdx] {
				continue
			}
			if counts[setIdx] >= ctx.Associativity {
				overflow = true
				break
			}
			candidates = append(candidates, slot{
				line: (*cacheline.Line)(unsafe.Pointer(&page[off])),
				set:  setIdx,
			})
		}

		if overflow {
			fault.Require(arch.FreePages(page))
			continue
		}

		for _, c := range candidates {
			tagged = append(tagged, taggedLine{line: c.line, set: c.set})
			counts[c.set]++
		}
		pages = append(pages, page)
	}

	entry := assemble(ctx, tagged, ctx.Associativity, r)
	return &Structure{Ctx: ctx, Entry: entry, pages: pages}
}

func allSets(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func allFull(counts map[int32]int, assoc int) bool {
	for _, c := range counts {
		if c < assoc {
			return false
		}
	}
	return true
}
