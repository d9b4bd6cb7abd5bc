package events

// The drain goroutine is the sole reader of l.ch and the sole writer to l.w.
// Logger.mu protects only l.ring. Push happens after mu is released.

import (
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/abelbrown/lookout/internal/logging"
)

// chanSize is the capacity of the async write channel.
const chanSize = 2048

type entry struct {
	data []byte
	ev   Event
}

// Logger serializes events as JSONL. Goroutine-safe.
type Logger struct {
	mu        sync.Mutex
	ring      *Ring
	processID string
	ch        chan entry
	w         io.Writer
	dropped   atomic.Uint64
	closed    atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

// NewLogger creates a Logger writing to w and starts its drain goroutine.
// Call Close to flush.
func NewLogger(w io.Writer) *Logger {
	l := &Logger{
		processID: uuid.NewString(),
		ch:        make(chan entry, chanSize),
		w:         w,
		done:      make(chan struct{}),
	}
	go l.drain()
	return l
}

// NewNullLogger creates a Logger that discards output.
func NewNullLogger() *Logger {
	return NewLogger(io.Discard)
}

func (l *Logger) drain() {
	defer close(l.done)
	for e := range l.ch {
		if _, err := l.w.Write(e.data); err != nil {
			l.dropped.Add(1)
		}

		l.mu.Lock()
		ring := l.ring
		l.mu.Unlock()

		if ring != nil {
			ring.Push(e.ev)
		}
	}
}

// Emit queues an event. It never blocks: when the channel is full or the
// logger is closed the event is counted as dropped. A nil Logger is a no-op.
func (l *Logger) Emit(e Event) {
	if l == nil {
		return
	}
	defer func() {
		// Close may race the closed check below.
		if recover() != nil {
			l.dropped.Add(1)
		}
	}()

	if l.closed.Load() {
		l.dropped.Add(1)
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	e.ProcessID = l.processID

	data, err := json.Marshal(e)
	if err != nil {
		l.dropped.Add(1)
		return
	}
	data = append(data, '\n')

	select {
	case l.ch <- entry{data: data, ev: e}:
	default:
		l.dropped.Add(1)
	}
}

// Info emits an info-level event.
func (l *Logger) Info(kind Kind, comp, msg string) {
	l.Emit(Event{Level: LevelInfo, Kind: kind, Comp: comp, Msg: msg})
}

// Error emits an error-level event. Nil err is safe.
func (l *Logger) Error(kind Kind, comp string, err error) {
	var s string
	if err != nil {
		s = err.Error()
	}
	l.Emit(Event{Level: LevelError, Kind: kind, Comp: comp, Err: s})
}

// SetRing attaches a ring buffer for live inspection.
func (l *Logger) SetRing(r *Ring) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ring = r
}

// Dropped returns the number of events dropped so far.
func (l *Logger) Dropped() uint64 {
	return l.dropped.Load()
}

// Close flushes pending events and stops the drain goroutine.
func (l *Logger) Close() {
	if l == nil {
		return
	}
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		close(l.ch)
		<-l.done

		if d := l.dropped.Load(); d > 0 {
			logging.Warn("events dropped", "count", d, "process", l.processID)
		}
	})
}
