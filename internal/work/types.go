// Package work runs background tasks on a bounded goroutine pool and keeps
// enough bookkeeping to show what is in flight.
//
// Logging: every state change is logged via internal/logging, since the
// launcher UI is gone most of the time work finishes.
package work

import (
	"context"
	"fmt"
	"time"

	"github.com/abelbrown/lookout/internal/logging"
)

// LogEvent logs a work event for debugging.
func LogEvent(event Event) {
	t := event.Task
	switch event.Change {
	case "started":
		logging.Debug("Work started",
			"id", t.ID,
			"type", t.Type,
			"desc", t.Description)
	case "completed":
		logging.Debug("Work completed",
			"id", t.ID,
			"type", t.Type,
			"desc", t.Description,
			"result", t.Result,
			"duration", t.Duration())
	case "failed":
		logging.Debug("Work failed",
			"id", t.ID,
			"type", t.Type,
			"desc", t.Description,
			"error", t.Error,
			"duration", t.Duration())
	}
}

// Type categorizes tasks for display.
type Type string

const (
	TypeRefresh Type = "refresh" // Item payload refresh
	TypeLaunch  Type = "launch"  // Spawning a program
	TypeOther   Type = "other"
)

// Icon returns a display icon for the work type.
func (t Type) Icon() string {
	switch t {
	case TypeRefresh:
		return "↻"
	case TypeLaunch:
		return "▶"
	default:
		return "○"
	}
}

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusPending  Status = "pending"  // Submitted, waiting for a worker
	StatusActive   Status = "active"   // Running
	StatusComplete Status = "complete" // Finished successfully
	StatusFailed   Status = "failed"   // Finished with error or panic
)

// Task is a unit of background work. Fields other than ID, Type and
// Description are written by the pool and are only safe to read after Wait.
type Task struct {
	ID          string
	Type        Type
	Description string // Human-readable: "Refreshing Weather"
	Status      Status

	CreatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time

	Result string
	Error  error

	fn   func() (string, error)
	done chan struct{}
}

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.Error
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Duration returns how long the task ran.
func (t *Task) Duration() time.Duration {
	if t.FinishedAt.IsZero() {
		if t.StartedAt.IsZero() {
			return 0
		}
		return time.Since(t.StartedAt)
	}
	return t.FinishedAt.Sub(t.StartedAt)
}

// StatusIcon returns a display icon for the current status.
func (t *Task) StatusIcon() string {
	switch t.Status {
	case StatusPending:
		return "○"
	case StatusActive:
		return "●"
	case StatusComplete:
		return "✓"
	case StatusFailed:
		return "✗"
	default:
		return "?"
	}
}

// Event is sent to subscribers when a task changes state.
type Event struct {
	Task   *Task
	Change string // "started", "completed", "failed"
}

// Stats tracks pool metrics.
type Stats struct {
	TotalCreated   int64
	TotalCompleted int64
	TotalFailed    int64
	WorkersActive  int
	WorkersTotal   int
}

// String returns a summary string for stats.
func (s Stats) String() string {
	return fmt.Sprintf("Active: %d/%d  Done: %d  Failed: %d",
		s.WorkersActive, s.WorkersTotal, s.TotalCompleted, s.TotalFailed)
}
