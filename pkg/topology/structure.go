// Package topology builds and tears down the randomised Prime+Probe ring:
// a set of cachelines bucketised by set index, shuffled within and across
// sets, stitched into a single ring (spec.md §3, §4.5–§4.8).
package topology

import (
	"math/rand"
	"unsafe"

	"github.com/Miro-H/cachesc/internal/arch"
	"github.com/Miro-H/cachesc/internal/fault"
	"github.com/Miro-H/cachesc/pkg/cacheline"
	"github.com/Miro-H/cachesc/pkg/cachectx"
)

// Structure is a built Prime+Probe ring together with the backing pages it
// exclusively owns. Callers hold Entry only as an opaque handle into the
// ring; all lifetime management goes through Release.
type Structure struct {
	Ctx   *cachectx.Context
	Entry *cacheline.Line

	pages [][]byte
}

// Release frees every backing page exactly once, regardless of how many
// lines shared it, and discards the ring.
func (s *Structure) Release() {
	for _, p := range s.pages {
		if err := arch.FreePages(p); err != nil {
			fault.Require(err)
		}
	}
	s.pages = nil
	s.Entry = nil
}

// ReleaseExcept frees every backing page except the one carrying keep, and
// detaches keep into a standalone singleton so it remains valid after the
// rest of the structure is gone. Used by pkg/victim to isolate one physical
// line out of a freshly built one-set structure (spec.md §4.10): every
// other page accepted during the build — including ones that contributed no
// tagged line to the final ring — is released here, not just the ring's
// other members.
func (s *Structure) ReleaseExcept(keep *cacheline.Line) []byte {
	keepBase := pageBase(keep)

	// Unlink keep while its neighbours' pages are still mapped.
	cacheline.Remove(keep)
	keep.Next = keep
	keep.Prev = keep

	var keepPage []byte
	for _, p := range s.pages {
		if len(p) == 0 {
			continue
		}
		if uintptr(unsafe.Pointer(&p[0])) == keepBase {
			keepPage = p
			continue
		}
		if err := arch.FreePages(p); err != nil {
			fault.Require(err)
		}
	}
	fault.Assert(keepPage != nil, "topology: ReleaseExcept could not find keep's backing page")

	s.pages = nil
	s.Entry = nil
	return keepPage
}

func pageBase(l *cacheline.Line) uintptr {
	return uintptr(unsafe.Pointer(l)) &^ uintptr(arch.PageSize-1)
}

// taggedLine is a cacheline paired with the set index a builder discovered
// for it, before topology assembly groups and links them.
type taggedLine struct {
	line *cacheline.Line
	set  int32
}

// assemble groups tagged lines by set, shuffles within and across sets, and
// stitches everything into one ring. It is the shared final step of all
// three builders (spec.md §4.5 steps 3–5, §4.8).
func assemble(ctx *cachectx.Context, tagged []taggedLine, wantAssoc int, r *rand.Rand) *cacheline.Line {
	buckets := make(map[int32][]*cacheline.Line)
	for _, t := range tagged {
		t.line.SetIndex = t.set
		buckets[t.set] = append(buckets[t.set], t.line)
	}

	setKeys := make([]int32, 0, len(buckets))
	for k := range buckets {
		setKeys = append(setKeys, k)
	}

	for _, k := range setKeys {
		lines := buckets[k]
		fault.Assert(len(lines) == wantAssoc,
			"topology: set %d has %d lines, want %d", k, len(lines), wantAssoc)

		shuffle(r, lines)
		for i, l := range lines {
			l.Flags = 0
			if i == 0 {
				l.Flags |= cacheline.FlagFirst
			}
			if i == len(lines)-1 {
				l.Flags |= cacheline.FlagLast
			}
		}
		for i, l := range lines {
			next := lines[(i+1)%len(lines)]
			prev := lines[(i-1+len(lines))%len(lines)]
			l.Next = next
			l.Prev = prev
		}
		buckets[k] = lines
	}

	shuffle(r, setKeys)

	for i, k := range setKeys {
		lines := buckets[k]
		last := lines[len(lines)-1]
		nextKey := setKeys[(i+1)%len(setKeys)]
		firstOfNext := firstOf(buckets[nextKey])
		last.Next = firstOfNext
		firstOfNext.Prev = last
	}

	return firstOf(buckets[setKeys[0]])
}

func firstOf(lines []*cacheline.Line) *cacheline.Line {
	for _, l := range lines {
		if l.Flags&cacheline.FlagFirst != 0 {
			return l
		}
	}
	return lines[0]
}
