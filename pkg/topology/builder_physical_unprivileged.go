package topology

import (
	"math/rand"
	"unsafe"

	"github.com/Miro-H/cachesc/internal/arch"
	"github.com/Miro-H/cachesc/internal/fault"
	"github.com/Miro-H/cachesc/pkg/cacheline"
	"github.com/Miro-H/cachesc/pkg/cachectx"
)

// BuildPhysicalUnprivileged implements the physical builder used when the
// caller cannot read resolved physical frame numbers (spec.md §4.7): no
// privilege means no way to ask the kernel which physical set a line maps
// to, so the builder uses Prime+Probe itself, via hasCollision, as a
// set-membership oracle.
//
// A ring's label is assigned only once it seals (reaches Associativity
// confirmed members), never at its first member: the number of rings that
// ever complete across the whole build is bounded by targetSetCount (the
// construction loop exits the moment completedSets reaches it), so
// labelCursor can never run past len(labels). Assigning eagerly at the
// first member instead would tie label consumption to how many of the
// CacheGroupSize per-page offsets happen to start a ring — unrelated to
// how many sets the caller actually asked for, and unbounded by it — and
// would also leak a never-sealed ring's partial members into tagged with a
// label whose set never reaches ctx.Associativity, which assemble rejects.
//
// Simplification (see DESIGN.md): a candidate ring is reset to empty the
// instant it seals, so the next page's candidate at that offset starts a
// fresh ring rather than being tested against an already-full one. This
// keeps the construction loop to the single pass spec.md describes without
// the cross-page identify_cache_sets disambiguation pool; the hasCollision
// oracle itself — the part spec.md gives exact numeric semantics for — is
// implemented faithfully in collision.go.
func BuildPhysicalUnprivileged(ctx *cachectx.Context, sets []int, r *rand.Rand) *Structure {
	fault.Assert(ctx.Addressing == cachectx.Physical, "topology: BuildPhysicalUnprivileged requires a physically addressed context")

	groupSize := cachectx.CacheGroupSize

	var labels []int32
	if len(sets) > 0 {
		labels = make([]int32, len(sets))
		for i, s := range sets {
			labels[i] = int32(s)
		}
	}
	targetSetCount := ctx.Sets
	if labels != nil {
		targetSetCount = len(labels)
	}

	rings := make([]*ring, groupSize)
	for i := range rings {
		rings[i] = &ring{}
	}

	var tagged []taggedLine
	var pages [][]byte
	completedSets := 0
	labelCursor := 0
	nextSynthetic := int32(0)
	consecutiveCollisionPages := 0

	nextLabel := func() int32 {
		if labels != nil {
			fault.Assert(labelCursor < len(labels),
				"topology: unprivileged builder sealed more rings (%d) than requested sets (%d)", labelCursor+1, len(labels))
			l := labels[labelCursor]
			labelCursor++
			return l
		}
		l := nextSynthetic
		nextSynthetic++
		return l
	}

	for completedSets < targetSetCount {
		pageCount := 1
		if consecutiveCollisionPages >= 3 {
			// Defeat an allocator that keeps returning the same parity by
			// requesting a larger, differently aligned run and using only
			// its first page (spec.md §4.7 step 5).
			pageCount = 2
		}
		page, err := arch.AllocPages(pageCount)
		fault.Require(err)
		pages = append(pages, page)

		allCollided := true
		for o := 0; o < groupSize; o++ {
			off := o * ctx.LineSize
			if off+ctx.LineSize > len(page) {
				break
			}
			cand := (*cacheline.Line)(unsafe.Pointer(&page[off]))
			rg := rings[o]

			if hasCollision(ctx, cand, rg) {
				continue
			}
			allCollided = false

			rg.add(cand)

			if rg.len == ctx.Associativity {
				label := nextLabel()
				for _, m := range rg.members {
					tagged = append(tagged, taggedLine{line: m, set: label})
				}
				completedSets++
				rings[o] = &ring{}
				if completedSets >= targetSetCount {
					break
				}
			}
		}

		if allCollided {
			consecutiveCollisionPages++
		} else {
			consecutiveCollisionPages = 0
		}
	}

	entry := assemble(ctx, tagged, ctx.Associativity, r)
	return &Structure{Ctx: ctx, Entry: entry, pages: pages}
}
