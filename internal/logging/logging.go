// Package logging holds the process-wide debug switch. main sets it once from
// the configured log level; every package logs debug lines through Debugf.
package logging

import (
	"fmt"
	"log"
	"sync/atomic"
)

var debug atomic.Bool

// SetDebug turns debug output on or off.
func SetDebug(on bool) {
	debug.Store(on)
}

// DebugEnabled reports whether debug output is on.
func DebugEnabled() bool {
	return debug.Load()
}

// Debugf logs through the standard logger when debug output is on. The
// logged file and line are the caller's.
func Debugf(format string, args ...any) {
	if debug.Load() {
		log.Output(2, fmt.Sprintf(format, args...))
	}
}
