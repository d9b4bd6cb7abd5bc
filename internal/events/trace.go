package events

import (
	"os"
	"sync/atomic"
)

// traceEnabled is read on every UI message, so it is an atomic flag set
// once at init.
var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(os.Getenv("LOOKOUT_TRACE") != "")
}

// TraceEnabled reports whether LOOKOUT_TRACE is set.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

// setTraceEnabled overrides the flag for tests.
func setTraceEnabled(v bool) {
	traceEnabled.Store(v)
}
