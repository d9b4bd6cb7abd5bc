package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/lookout/internal/events"
	"github.com/abelbrown/lookout/internal/item"
	"github.com/abelbrown/lookout/internal/work"
)

func TestDebugOverlayNilRing(t *testing.T) {
	if got := debugOverlay(nil, nil, 80, 24); got != "" {
		t.Errorf("debugOverlay(nil) should return empty string, got %q", got)
	}
}

func TestDebugOverlayRendersStats(t *testing.T) {
	ring := events.NewRing(64)
	now := time.Now()
	ring.Push(events.Event{Kind: events.KindQueryStart, Time: now})
	ring.Push(events.Event{Kind: events.KindQueryStart, Time: now})
	ring.Push(events.Event{Kind: events.KindQueryComplete, Time: now})
	ring.Push(events.Event{Kind: events.KindQueryStale, Time: now})
	ring.Push(events.Event{Kind: events.KindRefreshApply, Time: now, Generation: 3})

	result := debugOverlay(ring, nil, 100, 40)
	for _, want := range []string{"Pipeline Stats", "2 started, 1 complete, 0 cancelled, 1 stale", "0 started, 1 applied", "5 / 64 events", "gen:3"} {
		if !strings.Contains(result, want) {
			t.Errorf("overlay missing %q:\n%s", want, result)
		}
	}
}

func TestDebugOverlayRecentEvents(t *testing.T) {
	ring := events.NewRing(64)
	ring.Push(events.Event{Kind: events.KindExecError, Time: time.Now(), Err: "timeout"})
	ring.Push(events.Event{Kind: events.KindQueryStart, Time: time.Now(), RunID: "abcdef1234567890", Query: "fire"})

	result := debugOverlay(ring, nil, 100, 40)
	for _, want := range []string{"Recent Events", "ERR:timeout", "run:abcdef12", `"fire"`} {
		if !strings.Contains(result, want) {
			t.Errorf("overlay missing %q:\n%s", want, result)
		}
	}
}

func TestDebugOverlayTruncation(t *testing.T) {
	ring := events.NewRing(64)
	for i := 0; i < 30; i++ {
		ring.Push(events.Event{Kind: events.KindQueryStart, Time: time.Now()})
	}
	result := debugOverlay(ring, nil, 80, 12)
	// Height includes the panel chrome.
	if lines := strings.Count(result, "\n") + 1; lines > 12 {
		t.Errorf("overlay has %d lines, want at most 12", lines)
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{-time.Second, "0ms"},
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{3 * time.Minute, "3m"},
	}
	for _, tt := range tests {
		if got := formatAge(tt.d); got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestRenderRowFitsWidth(t *testing.T) {
	d := item.Descriptor{Title: strings.Repeat("very long title ", 10), Subtitle: "subtitle", Tag: "Apps", Kind: "app"}
	for _, w := range []int{20, 40, 80} {
		row := renderRow(d, w)
		if got := len([]rune(stripANSI(row))); got > w+2 {
			t.Errorf("row at width %d is %d runes", w, got)
		}
	}
}

func TestVisibleWindow(t *testing.T) {
	tests := []struct {
		total, cursor, height int
		from, to              int
	}{
		{10, 0, 5, 0, 5},
		{10, 4, 5, 0, 5},
		{10, 7, 5, 3, 8},
		{3, 2, 5, 0, 3},
		{0, 0, 5, 0, 0},
	}
	for _, tt := range tests {
		from, to := visibleWindow(tt.total, tt.cursor, tt.height)
		if from != tt.from || to != tt.to {
			t.Errorf("visibleWindow(%d, %d, %d) = %d, %d; want %d, %d", tt.total, tt.cursor, tt.height, from, to, tt.from, tt.to)
		}
	}
}

type fakeWork struct {
	stats  work.Stats
	recent []*work.Task
}

func (f fakeWork) Stats() work.Stats    { return f.stats }
func (f fakeWork) Recent() []*work.Task { return f.recent }

func TestDebugOverlayWorkers(t *testing.T) {
	start := time.Now().Add(-time.Second)
	var recent []*work.Task
	for i := 0; i < 8; i++ {
		recent = append(recent, &work.Task{
			Type:        work.TypeRefresh,
			Description: "Refreshing Weather",
			Status:      work.StatusComplete,
			StartedAt:   start,
			FinishedAt:  start.Add(120 * time.Millisecond),
		})
	}
	recent[0].Status = work.StatusFailed
	recent[0].Error = errors.New("wttr.in unreachable")

	wv := fakeWork{
		stats:  work.Stats{TotalCompleted: 7, TotalFailed: 1, WorkersTotal: 4},
		recent: recent,
	}
	result := debugOverlay(events.NewRing(8), wv, 120, 60)
	for _, want := range []string{"Workers", "Active: 0/4  Done: 7  Failed: 1", "✗", "ERR:wttr.in unreachable", "120ms"} {
		if !strings.Contains(result, want) {
			t.Errorf("overlay missing %q:\n%s", want, result)
		}
	}
	if n := strings.Count(result, "Refreshing Weather"); n != maxRecentTasks {
		t.Errorf("listed %d tasks, want %d", n, maxRecentTasks)
	}
}
