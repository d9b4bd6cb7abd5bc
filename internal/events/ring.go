package events

import (
	"maps"
	"sync"
)

// DefaultRingSize is the default ring capacity.
const DefaultRingSize = 512

// Ring is a fixed-size circular buffer of events. Goroutine-safe.
type Ring struct {
	mu    sync.Mutex
	buf   []Event
	head  int // next write position
	count int
}

// NewRing creates a ring with the given capacity.
func NewRing(size int) *Ring {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Ring{buf: make([]Event, size)}
}

// Push adds an event, overwriting the oldest when full. Extra is copied so
// callers may reuse their map.
func (r *Ring) Push(e Event) {
	if e.Extra != nil {
		e.Extra = maps.Clone(e.Extra)
	}
	r.mu.Lock()
	r.buf[r.head] = e
	r.head = (r.head + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
	r.mu.Unlock()
}

// Last returns up to n of the most recent events, oldest first.
func (r *Ring) Last(n int) []Event {
	if n <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	n = min(n, r.count)
	if n == 0 {
		return nil
	}
	out := make([]Event, n)
	start := (r.head - n + len(r.buf)) % len(r.buf)
	for i := range out {
		out[i] = r.buf[(start+i)%len(r.buf)]
	}
	return out
}

// Len returns the number of buffered events.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Cap returns the ring capacity.
func (r *Ring) Cap() int {
	return len(r.buf)
}

// Stats counts buffered events by kind.
func (r *Ring) Stats() map[Kind]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[Kind]int)
	start := (r.head - r.count + len(r.buf)) % len(r.buf)
	for i := 0; i < r.count; i++ {
		counts[r.buf[(start+i)%len(r.buf)].Kind]++
	}
	return counts
}
