//go:build linux

package arch

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// PageSize is the runtime page size, read once at init.
var PageSize = unix.Getpagesize()

// AllocPages reserves an anonymous, zero-filled mapping of n pages and
// returns it page-aligned (anonymous mmap is always page aligned on Linux).
// The returned slice is owned by the caller; release it with FreePages.
func AllocPages(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("arch: AllocPages: n must be positive, got %d", n)
	}
	size := n * PageSize
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("arch: mmap %d pages: %w", n, err)
	}
	return b, nil
}

// FreePages releases a mapping previously returned by AllocPages. b must be
// exactly the slice AllocPages returned; partial or offset slices are
// rejected by munmap.
func FreePages(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if err := unix.Munmap(b); err != nil {
		return fmt.Errorf("arch: munmap: %w", err)
	}
	return nil
}
