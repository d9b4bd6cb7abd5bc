// Package events records what the query engine does as JSONL lines, with
// an optional in-memory ring for the debug overlay.
//
// The Logger writes asynchronously via a buffered channel and a single drain
// goroutine, so emitting from the UI loop never blocks on disk.
package events

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Kind identifies an event. Dot-delimited: "<subsystem>.<action>".
type Kind string

const (
	// Query pipeline
	KindQueryStart    Kind = "query.start"
	KindQueryComplete Kind = "query.complete"
	KindQueryCancel   Kind = "query.cancel"
	KindQueryStale    Kind = "query.stale"
	KindModeChange    Kind = "query.mode"

	// Background refresh
	KindRefreshStart   Kind = "refresh.start"
	KindRefreshApply   Kind = "refresh.apply"
	KindRefreshDiscard Kind = "refresh.discard"
	KindTaskFailed     Kind = "refresh.task_failed"

	// Execution
	KindExec      Kind = "exec.run"
	KindExecError Kind = "exec.error"

	// System
	KindActivate Kind = "sys.activate"
	KindReload   Kind = "sys.reload"
	KindStartup  Kind = "sys.startup"
	KindShutdown Kind = "sys.shutdown"

	// Message tracing, only with LOOKOUT_TRACE set
	KindMsgReceived Kind = "trace.msg_received"
)

// Event is the universal record. Every field except Kind and Time is
// optional.
type Event struct {
	Time       time.Time      `json:"t"`
	Level      Level          `json:"level,omitempty"`
	Kind       Kind           `json:"kind"`
	Comp       string         `json:"comp,omitempty"`       // "ui", "refresh", "exec", "main"
	ProcessID  string         `json:"process_id,omitempty"` // same for the whole process
	Session    string         `json:"session,omitempty"`    // one per activation
	RunID      string         `json:"run,omitempty"`        // pipeline run correlation ID
	Generation uint64         `json:"gen,omitempty"`
	Dur        time.Duration  `json:"-"`
	DurMs      float64        `json:"dur_ms,omitempty"` // computed from Dur at marshal time
	Count      int            `json:"count,omitempty"`
	Mode       string         `json:"mode,omitempty"`
	Query      string         `json:"query,omitempty"`
	Err        string         `json:"err,omitempty"`
	Msg        string         `json:"msg,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// MarshalJSON converts Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	p := plain(e)
	if e.Dur > 0 {
		p.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(p)
}
