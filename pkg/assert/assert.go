// Package assert checks runtime invariants of the dispatch counters
// and the split-ratio cell. Checks compile to no-ops unless the
// CONFIG_SPLITTER_ASSERTIONS build tag is set, so the hot path pays
// nothing in production builds.
package assert

import (
	"fmt"
	"os"
	"runtime/debug"
)

// Invariant panics when cond is false, writing the formatted
// description and a stack trace to stderr first. Without the
// CONFIG_SPLITTER_ASSERTIONS build tag it returns immediately.
func Invariant(cond bool, format string, args ...interface{}) {
	if !enabled || cond {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "splitter invariant violated: %s\n%s", msg, debug.Stack())
	panic("splitter invariant violated: " + msg)
}
