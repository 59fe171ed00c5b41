package cachectx

import (
	"unsafe"

	"github.com/Miro-H/cachesc/internal/arch"
	"github.com/Miro-H/cachesc/pkg/cacheline"
)

// IsCached reports whether p is currently resident at ctx's cache level, by
// comparing a fresh access against ctx.AccessTime after subtracting the
// fixed measurement overhead.
func IsCached(ctx *Context, p unsafe.Pointer) bool {
	cycles := int(arch.AccessTime(p)) - int(arch.AccessTimeOverhead())
	return cycles < ctx.AccessTime
}

// ClearCache flushes every line reachable from entry by forward traversal,
// evicting the whole structure from all cache levels. Used to establish a
// known-cold baseline before a fresh prime.
func ClearCache(ctx *Context, entry *cacheline.Line) {
	if entry == nil {
		return
	}
	cur := entry
	for {
		arch.Flush(unsafe.Pointer(cur))
		cur = cur.Next
		if cur == entry {
			break
		}
	}
}
