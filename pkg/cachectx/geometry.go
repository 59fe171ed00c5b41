// Package cachectx describes one cache level's geometry: the number of
// sets, the associativity, the line size and the cycle threshold below
// which an access is a hit. A Context is immutable after MakeContext
// returns it and is shared by reference with every builder and primitive
// that needs it (spec.md §9: "an immutable configuration record built once
// at start-up from compile-time constants, passed by reference").
package cachectx

import "fmt"

// Level names a supported cache level. Only L1 and L2 are in scope
// (spec.md §1); L3 only ever appears as the collision-detection threshold
// constant L3AccessTime, never as a buildable Context.
type Level int

const (
	L1 Level = iota
	L2
)

func (l Level) String() string {
	switch l {
	case L1:
		return "L1"
	case L2:
		return "L2"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Addressing names whether a cache level is indexed by virtual or physical
// address bits.
type Addressing int

const (
	// Virtual cache levels index entirely within the page offset, so a
	// single large aligned allocation has a known address-to-set mapping
	// without needing physical-address translation.
	Virtual Addressing = iota
	// Physical cache levels are indexed by bits the OS can relocate
	// across a page boundary, so set membership must be learned either
	// from the kernel's page-frame map or by timing-based inference.
	Physical
)

// Compile-time geometry constants. These describe a representative
// commodity x86-64 part and match the scenario values used in spec.md §8
// (L1 64 sets / 8 ways, L2 target_set=100 requiring >100 sets).
const (
	PageSize      = 4096
	CachelineSize = 64

	// CacheGroupSize is the number of consecutive physical sets whose
	// index bits all lie within one page offset: every line of one
	// physical page distributes, one per group member, across this band.
	CacheGroupSize = PageSize / CachelineSize

	L1Sets          = 64
	L1Associativity = 8
	L1AccessTime    = 4 // cycles

	L2Sets          = 1024
	L2Associativity = 16
	L2AccessTime    = 12 // cycles

	L3AccessTime = 40 // cycles; used only as the collision-detection threshold

	// ProcessorFreq is the target CPU's nominal frequency in Hz, used to
	// size the PrepareMeasurement warm-up busy loop.
	ProcessorFreq = 3_000_000_000

	// CollisionRepetitions is the number of repeated collision probes
	// averaged/minimised in the unprivileged builder's oracle.
	CollisionRepetitions = 100
)

// Context describes one cache level. It is produced once by MakeContext and
// never mutated afterwards.
type Context struct {
	Level      Level
	Addressing Addressing

	Sets          int
	Associativity int
	AccessTime    int // cycles; below this an access is deemed a hit
	LineSize      int

	// Derived fields.
	NumLines  int
	SetBytes  int
	CacheBytes int
}

// MakeContext selects the built-in geometry for level and fills in its
// derived fields.
func MakeContext(level Level) (*Context, error) {
	ctx := &Context{Level: level, LineSize: CachelineSize}

	switch level {
	case L1:
		ctx.Addressing = Virtual
		ctx.Sets = L1Sets
		ctx.Associativity = L1Associativity
		ctx.AccessTime = L1AccessTime
	case L2:
		ctx.Addressing = Physical
		ctx.Sets = L2Sets
		ctx.Associativity = L2Associativity
		ctx.AccessTime = L2AccessTime
	default:
		return nil, fmt.Errorf("cachectx: unknown cache level %v", level)
	}

	ctx.NumLines = ctx.Sets * ctx.Associativity
	ctx.SetBytes = ctx.LineSize * ctx.Associativity
	ctx.CacheBytes = ctx.Sets * ctx.SetBytes
	return ctx, nil
}

// Release frees the descriptor. Context carries no external resources of
// its own (those live in the structures a builder produces), so this is a
// no-op kept for symmetry with the rest of the lifecycle API.
func Release(ctx *Context) {
	_ = ctx
}
