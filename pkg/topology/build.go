package topology

import (
	"math/rand"

	"github.com/Miro-H/cachesc/internal/xlate"
	"github.com/Miro-H/cachesc/pkg/cachectx"
)

// Build constructs a full structure covering every set of ctx, selecting
// the virtual, physical-privileged, or physical-unprivileged path
// according to ctx.Addressing and whether t can resolve physical
// addresses (spec.md §4.11: can_translate false routes to the
// unprivileged builder, a soft condition, not a fault).
func Build(ctx *cachectx.Context, t *xlate.Translator, r *rand.Rand) *Structure {
	return BuildForSets(ctx, nil, t, r)
}

// BuildForSets is Build restricted to the given set indices (spec.md §8
// scenario 5). A nil or empty sets covers every set.
func BuildForSets(ctx *cachectx.Context, sets []int, t *xlate.Translator, r *rand.Rand) *Structure {
	if ctx.Addressing == cachectx.Virtual {
		return BuildVirtual(ctx, sets, r)
	}
	if t != nil && xlate.CanTranslate(t) {
		return BuildPhysicalPrivileged(ctx, t, sets, r)
	}
	return BuildPhysicalUnprivileged(ctx, sets, r)
}

// ReleaseSetStructure is an alias for (*Structure).Release, kept as a
// distinct name because spec.md §6 lists release and release_set_structure
// as separate API surface entries even though this port gives both
// lifecycles the same Structure type and teardown.
func ReleaseSetStructure(s *Structure) {
	s.Release()
}
