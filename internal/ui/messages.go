// Package ui provides the Bubble Tea TUI for lookout.
package ui

import (
	"time"

	"github.com/abelbrown/lookout/internal/action"
	"github.com/abelbrown/lookout/internal/mode"
	"github.com/abelbrown/lookout/internal/pool"
	"github.com/abelbrown/lookout/internal/session"
)

// ResultsMsg is sent when a pipeline run finishes. Indices point into
// Snapshot, not into the live pool.
type ResultsMsg struct {
	Run      session.Run
	Snapshot *pool.Snapshot
	Indices  []int
	Dur      time.Duration
	Err      error
}

// RefreshDone is sent when a refresh batch has been collected and offered
// to the pool.
type RefreshDone struct {
	Generation uint64
	Applied    bool // the pool changed and results must be recomputed
	Updated    int
	Failed     int
}

// ExecDone is sent when an action has run.
type ExecDone struct {
	Kind    action.Kind
	Outcome action.Outcome
	Err     error
}

// OpenMsg is sent when another invocation asks the running instance to
// show itself. It starts a new session.
type OpenMsg struct{}

// ReloadMsg is sent after the item set was rebuilt from a fresh config. The
// pool already holds the new items under Generation.
type ReloadMsg struct {
	Generation uint64
	Known      []mode.Mode
	Items      int
}

// RefreshTick triggers periodic refresh. It collects under the current
// generation; only an activation starts a new one.
type RefreshTick struct{}
