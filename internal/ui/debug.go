package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/lookout/internal/events"
	"github.com/abelbrown/lookout/internal/work"
)

// debugPanelChrome is the number of terminal lines consumed by DebugPanel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
// Must be updated if DebugPanel style changes.
const debugPanelChrome = 4

// maxRecentTasks bounds the task list of the overlay.
const maxRecentTasks = 5

// WorkView exposes background task bookkeeping to the debug overlay.
type WorkView interface {
	Stats() work.Stats
	Recent() []*work.Task
}

// debugOverlay renders the debug panel showing pipeline stats and recent events.
// Pure function with no side effects. Returns empty string if ring is nil.
// wv may be nil.
func debugOverlay(ring *events.Ring, wv WorkView, width, height int) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()
	recent := ring.Last(20)

	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Pipeline Stats"))
	lines = append(lines, fmt.Sprintf("  Queries:    %d started, %d complete, %d cancelled, %d stale",
		stats[events.KindQueryStart], stats[events.KindQueryComplete], stats[events.KindQueryCancel], stats[events.KindQueryStale]))
	lines = append(lines, fmt.Sprintf("  Refreshes:  %d started, %d applied, %d discarded",
		stats[events.KindRefreshStart], stats[events.KindRefreshApply], stats[events.KindRefreshDiscard]))
	lines = append(lines, fmt.Sprintf("  Actions:    %d run, %d errors",
		stats[events.KindExec], stats[events.KindExecError]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	if wv != nil {
		lines = append(lines, DebugHeaderStyle.Render("Workers"))
		lines = append(lines, "  "+wv.Stats().String())
		recent := wv.Recent()
		for _, t := range recent[:min(len(recent), maxRecentTasks)] {
			line := fmt.Sprintf("  %s %s %-32s %6s", t.Type.Icon(), t.StatusIcon(),
				runewidth.Truncate(t.Description, 32, "…"), formatAge(t.Duration()))
			if t.Error != nil {
				line += "  ERR:" + runewidth.Truncate(t.Error.Error(), 24, "…")
			}
			lines = append(lines, line)
		}
		lines = append(lines, "")
	}

	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for _, e := range recent {
		line := fmt.Sprintf("  %6s  %-18s", formatAge(time.Since(e.Time)), string(e.Kind))
		if e.Query != "" {
			line += fmt.Sprintf("  %q", runewidth.Truncate(e.Query, 20, "…"))
		}
		if e.Msg != "" {
			line += "  " + runewidth.Truncate(e.Msg, 40, "…")
		}
		if e.Err != "" {
			line += "  ERR:" + runewidth.Truncate(e.Err, 30, "…")
		}
		if e.Generation != 0 {
			line += fmt.Sprintf("  gen:%d", e.Generation)
		}
		if e.RunID != "" {
			line += "  run:" + shortID(e.RunID)
		}
		lines = append(lines, line)
	}

	maxHeight := max(height-debugPanelChrome, 1)
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := max(min(76, width-4), 20)
	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatAge formats a duration as a compact human string.
// Handles negative durations from clock skew by clamping to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}
