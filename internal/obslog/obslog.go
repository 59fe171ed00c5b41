// Package obslog provides the structured, leveled logging used by the
// self-check CLI. It is never called from inside prime/probe or any other
// timed region (spec.md §7: measurement paths must not branch
// unpredictably).
package obslog

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// New returns a named hclog.Logger writing to stderr at the given level
// name ("debug", "info", "warn", "error"). The self-check CLI creates one
// per command run.
func New(name string, levelName string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(levelName),
		Output:     os.Stderr,
		JSONFormat: false,
	})
}
