package topology

import (
	"unsafe"

	"github.com/Miro-H/cachesc/internal/arch"
	"github.com/Miro-H/cachesc/pkg/cacheline"
	"github.com/Miro-H/cachesc/pkg/cachectx"
	"github.com/Miro-H/cachesc/pkg/primeprobe"
)

// ring is a small working Prime+Probe structure used purely as a
// collision-detection oracle during unprivileged construction (spec.md
// §4.7). It owns no pages of its own; its lines are owned by whichever
// page carried them, tracked separately by the builder.
type ring struct {
	head    *cacheline.Line
	len     int
	members []*cacheline.Line
}

func (r *ring) add(l *cacheline.Line) {
	if r.head == nil {
		cacheline.InsertAfter(nil, l)
		r.head = l
	} else {
		cacheline.InsertAfter(r.head.Prev, l)
	}
	r.members = append(r.members, l)
	r.len++
}

// hasCollision implements spec.md §4.7 step 2's oracle: would adding cand
// to the set represented by r cause an eviction? Tried at every rotation
// of r — spec.md §9 reads the reference source's termination condition as
// "try every rotation", so each of r.len possible starting points is
// tested exactly once per call. Collision is declared for the whole ring
// once at least len-associativity+1 rotations report it (there are always
// up to len-associativity innocent non-collisions, spec.md §4.7).
func hasCollision(ctx *cachectx.Context, cand *cacheline.Line, r *ring) bool {
	if r.len == 0 {
		return false
	}
	threshold := uint32(cachectx.L3AccessTime - cachectx.L2AccessTime)

	reports := 0
	start := r.head
	cur := start
	for {
		if collidesAtRotation(cand, cur, threshold) {
			reports++
		}
		cur = cur.Next
		if cur == start {
			break
		}
	}

	needed := r.len - ctx.Associativity + 1
	if needed < 1 {
		needed = 1
	}
	return reports >= needed
}

// collidesAtRotation runs one rotation's baseline/test pair: a clean
// baseline (minimum over CollisionRepetitions trials, the most optimistic
// clean run) versus the average probe time after swapping cand into the
// ring in place of rotationStart (a few outlier trials should not mask a
// true collision, hence averaging rather than taking the min here).
func collidesAtRotation(cand, rotationStart *cacheline.Line, threshold uint32) bool {
	baseline := ^uint32(0)
	for i := 0; i < cachectx.CollisionRepetitions; i++ {
		arch.Load(unsafe.Pointer(cand))
		primeprobe.PrimeRev(rotationStart)
		t := primeprobe.FullProbe(rotationStart)
		if t < baseline {
			baseline = t
		}
	}

	cacheline.Replace(cand, rotationStart)
	var sum uint64
	for i := 0; i < cachectx.CollisionRepetitions; i++ {
		primeprobe.PrimeRev(cand)
		sum += uint64(primeprobe.FullProbe(cand))
	}
	avg := uint32(sum / uint64(cachectx.CollisionRepetitions))
	cacheline.Replace(rotationStart, cand)

	return avg >= baseline+threshold
}
