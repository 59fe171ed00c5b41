// Package cacheline implements the fixed-size cache-line record and its
// intrusive cyclic doubly linked list operations (spec.md §3, §4.4).
package cacheline

const (
	// FlagFirst marks the first line of its set in ring order.
	FlagFirst uint32 = 1 << iota
	// FlagLast marks the last line of its set in ring order.
	FlagLast
	// FlagGroupInit marks a line whose physical-set assignment has been
	// confirmed. No builder in this module sets it; assemble clears all
	// flags other than FlagFirst and FlagLast.
	FlagGroupInit
)

// Line is one cache-line-sized record. Next and Prev are the first two
// machine words (fixed offsets 0 and 8 on amd64) so that a hand-written
// probe routine can walk the ring by offset via go_asm.h rather than by Go
// field name — the same contract the teacher's assembly primitives use
// when they take a raw pointer instead of an opaque handle.
type Line struct {
	Next *Line
	Prev *Line

	SetIndex int32  // the set this line maps to
	Flags    uint32 // FlagFirst / FlagLast / FlagGroupInit
	Timing   uint32 // last measured access cycles
	Group    int32  // physical cache-group number; no builder in this module sets it

	_ [64 - 8 - 8 - 4 - 4 - 4 - 4]byte // pad to exactly one cache line
}

// InsertAfter splices new immediately after anchor in the ring. If anchor
// is nil, new becomes a singleton ring (its own next and prev).
func InsertAfter(anchor, new *Line) {
	if anchor == nil {
		new.Next = new
		new.Prev = new
		return
	}
	next := anchor.Next
	anchor.Next = new
	new.Prev = anchor
	new.Next = next
	next.Prev = new
}

// Remove unlinks cl from its ring. It must not be called on a line whose
// neighbours have already been freed.
func Remove(cl *Line) {
	cl.Prev.Next = cl.Next
	cl.Next.Prev = cl.Prev
	cl.Next = nil
	cl.Prev = nil
}

// Replace substitutes new for old: new takes old's neighbours. old is left
// detached with dangling links — this is intentional, used transiently
// during the unprivileged builder's collision testing where the caller
// immediately reverses the swap (spec.md §4.4).
func Replace(new, old *Line) {
	prev, next := old.Prev, old.Next
	new.Prev = prev
	new.Next = next
	prev.Next = new
	next.Prev = new
}

// Length counts lines by walking backward from entry until entry is seen
// again. Diagnostic use only (spec.md §4.4) — never called from a timed
// region.
func Length(entry *Line) int {
	if entry == nil {
		return 0
	}
	n := 1
	for cur := entry.Prev; cur != entry; cur = cur.Prev {
		n++
	}
	return n
}
