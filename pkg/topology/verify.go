package topology

import (
	"fmt"

	"github.com/Miro-H/cachesc/pkg/cacheline"
	"github.com/Miro-H/cachesc/pkg/cachectx"
)

// Verify checks the structural invariants spec.md §8 requires of any built
// structure and returns the first violation found, rather than panicking.
// Builders still fault.Assert at construction time (spec.md §4.11); Verify
// exists for tests and the self-check CLI to re-check a structure (or a
// deliberately corrupted one, spec.md §8 scenario 6) without crashing.
func Verify(ctx *cachectx.Context, entry *cacheline.Line, wantLines int) error {
	if entry == nil {
		return fmt.Errorf("topology: nil entry")
	}

	counts := make(map[int32]int)
	firsts := make(map[int32]int)
	lasts := make(map[int32]int)

	n := 0
	cur := entry
	for {
		n++
		counts[cur.SetIndex]++
		if cur.Flags&cacheline.FlagFirst != 0 {
			firsts[cur.SetIndex]++
		}
		if cur.Flags&cacheline.FlagLast != 0 {
			lasts[cur.SetIndex]++
		}
		next := cur.Next
		if next == entry {
			break
		}
		if n > wantLines {
			return fmt.Errorf("topology: ring did not return to entry within %d steps", wantLines)
		}
		cur = next
	}

	if n != wantLines {
		return fmt.Errorf("topology: forward length %d, want %d", n, wantLines)
	}
	if back := cacheline.Length(entry); back != wantLines {
		return fmt.Errorf("topology: backward length %d, want %d", back, wantLines)
	}

	for set, c := range counts {
		if c != ctx.Associativity {
			return fmt.Errorf("topology: set %d has %d lines, want %d", set, c, ctx.Associativity)
		}
		if firsts[set] != 1 {
			return fmt.Errorf("topology: set %d has %d FIRST lines, want 1", set, firsts[set])
		}
		if lasts[set] != 1 {
			return fmt.Errorf("topology: set %d has %d LAST lines, want 1", set, lasts[set])
		}
	}
	return nil
}
