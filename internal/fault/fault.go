// Package fault implements the library's "assert and abort" failure model
// (spec.md §4.11, §7, §9): allocation failures, sanity-check failures, and
// a privileged translation that unexpectedly stops working are all
// unrecoverable at the point of first detection. These are never turned
// into recoverable results inside measurement paths, which must not branch
// unpredictably.
package fault

import (
	"fmt"

	"github.com/go-errors/errors"
)

// Fault is a fatal, stack-captured error. The self-check CLI recovers one
// and returns its Error() message as the command's error; the captured
// stack is available through the embedded *errors.Error.
type Fault struct {
	*errors.Error
}

// Assert panics with a Fault if cond is false.
func Assert(cond bool, format string, args ...any) {
	if cond {
		return
	}
	panic(Fault{errors.Wrap(fmt.Errorf(format, args...), 1)})
}

// Require panics with a Fault wrapping err if err is non-nil.
func Require(err error) {
	if err == nil {
		return
	}
	panic(Fault{errors.Wrap(err, 1)})
}
