package topology

import (
	"math/bits"
	"math/rand"
	"unsafe"

	"github.com/Miro-H/cachesc/internal/arch"
	"github.com/Miro-H/cachesc/internal/fault"
	"github.com/Miro-H/cachesc/pkg/cacheline"
	"github.com/Miro-H/cachesc/pkg/cachectx"
)

// BuildVirtual implements the virtually indexed builder (spec.md §4.5): a
// single cache-sized, page-aligned allocation contains exactly one line per
// (set, way) pair because the index bits do not cross a page boundary, so
// set membership is derived directly from each line's address.
//
// When sets is non-empty, only lines whose address-derived set index is in
// sets are linked into the returned ring; the rest of the allocation is
// still owned (and freed) by the Structure but never traversed.
func BuildVirtual(ctx *cachectx.Context, sets []int, r *rand.Rand) *Structure {
	fault.Assert(ctx.Addressing == cachectx.Virtual, "topology: BuildVirtual requires a virtually addressed context")

	numPages := (ctx.CacheBytes + arch.PageSize - 1) / arch.PageSize
	block, err := arch.AllocPages(numPages)
	fault.Require(err)

	want := toSet(sets)
	wantAssoc := ctx.Associativity

	shift := bits.TrailingZeros(uint(ctx.LineSize))
	mask := uint(ctx.Sets - 1)

	var tagged []taggedLine
	for off := 0; off+ctx.LineSize <= len(block); off += ctx.LineSize {
		line := (*cacheline.Line)(unsafe.Pointer(&block[off]))
		addr := uintptr(unsafe.Pointer(&block[off]))
		setIdx := int32((uint(addr) >> shift) & mask)

		if want != nil && !want[setIdx] {
			continue
		}
		tagged = append(tagged, taggedLine{line: line, set: setIdx})
	}

	entry := assemble(ctx, tagged, wantAssoc, r)
	return &Structure{Ctx: ctx, Entry: entry, pages: [][]byte{block}}
}

func toSet(ints []int) map[int32]bool {
	if len(ints) == 0 {
		return nil
	}
	m := make(map[int32]bool, len(ints))
	for _, i := range ints {
		m[int32(i)] = true
	}
	return m
}
