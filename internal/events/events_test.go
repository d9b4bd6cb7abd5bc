package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestEmitWritesJSONL(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Emit(Event{Kind: KindQueryComplete, Comp: "ui", Query: "fire", Count: 2, Dur: 1500 * time.Microsecond})
	l.Close()

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	ev := lines[0]
	if ev["kind"] != "query.complete" || ev["comp"] != "ui" || ev["query"] != "fire" {
		t.Errorf("unexpected event %v", ev)
	}
	if ev["dur_ms"] != 1.5 {
		t.Errorf("dur_ms = %v, want 1.5", ev["dur_ms"])
	}
	if id, _ := ev["process_id"].(string); len(id) != 36 {
		t.Errorf("process_id %q is not a uuid", id)
	}
}

func TestOmitEmptyFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Emit(Event{Kind: KindStartup})
	l.Close()

	line := buf.String()
	for _, field := range []string{"dur_ms", "count", "query", "err", "msg", "extra", "run", "gen"} {
		if strings.Contains(line, `"`+field+`"`) {
			t.Errorf("field %q should be omitted: %s", field, line)
		}
	}
}

func TestConcurrentEmit(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Emit(Event{Kind: KindQueryStart})
		}()
	}
	wg.Wait()
	l.Close()

	if got := len(decodeLines(t, &buf)); got != 100 {
		t.Errorf("lines = %d, want 100", got)
	}
}

func TestEmitAfterCloseIsDropped(t *testing.T) {
	l := NewNullLogger()
	l.Close()
	l.Emit(Event{Kind: KindQueryStart})
	l.Close() // idempotent
	if l.Dropped() != 1 {
		t.Errorf("dropped = %d, want 1", l.Dropped())
	}
}

func TestNilLoggerIsNoop(t *testing.T) {
	var l *Logger
	l.Emit(Event{Kind: KindStartup})
	l.Close()
}

func TestHelpersAndRing(t *testing.T) {
	l := NewNullLogger()
	ring := NewRing(4)
	l.SetRing(ring)

	l.Info(KindActivate, "ipc", "open")
	l.Error(KindExecError, "exec", errors.New("boom"))
	l.Error(KindExecError, "exec", nil)
	l.Close()

	last := ring.Last(10)
	if len(last) != 3 {
		t.Fatalf("ring has %d events, want 3", len(last))
	}
	if last[0].Level != LevelInfo || last[1].Err != "boom" || last[2].Err != "" {
		t.Errorf("unexpected ring contents %+v", last)
	}
	if s := ring.Stats(); s[KindExecError] != 2 || s[KindActivate] != 1 {
		t.Errorf("stats = %v", s)
	}
}

func TestRingWrapAround(t *testing.T) {
	r := NewRing(3)
	for i := 1; i <= 5; i++ {
		r.Push(Event{Count: i})
	}
	if r.Len() != 3 || r.Cap() != 3 {
		t.Fatalf("len=%d cap=%d", r.Len(), r.Cap())
	}
	last := r.Last(3)
	for i, want := range []int{3, 4, 5} {
		if last[i].Count != want {
			t.Errorf("last[%d] = %d, want %d", i, last[i].Count, want)
		}
	}
	if got := r.Last(1); len(got) != 1 || got[0].Count != 5 {
		t.Errorf("Last(1) = %+v", got)
	}
	if r.Last(0) != nil || r.Last(-1) != nil {
		t.Error("non-positive n should return nil")
	}
	if s := r.Stats(); s[""] != 3 {
		t.Errorf("stats = %v", s)
	}
}

func TestRingCopiesExtra(t *testing.T) {
	r := NewRing(2)
	extra := map[string]any{"k": 1}
	r.Push(Event{Extra: extra})
	extra["k"] = 2
	if r.Last(1)[0].Extra["k"] != 1 {
		t.Error("ring aliased the caller's map")
	}
}

func TestTraceToggle(t *testing.T) {
	orig := TraceEnabled()
	defer setTraceEnabled(orig)
	setTraceEnabled(true)
	if !TraceEnabled() {
		t.Error("expected trace enabled")
	}
	setTraceEnabled(false)
	if TraceEnabled() {
		t.Error("expected trace disabled")
	}
}
