package work

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/abelbrown/lookout/internal/logging"
)

// ErrClosed is returned by Submit after Release.
var ErrClosed = errors.New("work pool closed")

// historySize is the number of finished tasks kept for display.
const historySize = 50

// Pool runs tasks on a bounded ants pool.
type Pool struct {
	workers int
	ants    *ants.Pool

	mu      sync.RWMutex
	history []*Task // newest last, capped at historySize

	subscribersMu sync.RWMutex
	subscribers   []chan Event

	totalCreated   atomic.Int64
	totalCompleted atomic.Int64
	totalFailed    atomic.Int64
	running        atomic.Int64
	nextID         atomic.Int64
}

// NewPool creates a pool with the given number of workers.
// If workers <= 0, uses runtime.NumCPU().
func NewPool(workers int) (*Pool, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	ap, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Pool{workers: workers, ants: ap}, nil
}

// Release stops accepting work. Tasks already running finish.
func (p *Pool) Release() {
	p.ants.Release()
	logging.Info("Work pool stopped",
		"created", p.totalCreated.Load(),
		"completed", p.totalCompleted.Load(),
		"failed", p.totalFailed.Load())
}

// Submit queues fn. It blocks while every worker is busy.
func (p *Pool) Submit(typ Type, desc string, fn func() (string, error)) (*Task, error) {
	t := &Task{
		ID:          fmt.Sprintf("w%d", p.nextID.Add(1)),
		Type:        typ,
		Description: desc,
		Status:      StatusPending,
		CreatedAt:   time.Now(),
		fn:          fn,
		done:        make(chan struct{}),
	}
	p.totalCreated.Add(1)

	if err := p.ants.Submit(func() { p.execute(t) }); err != nil {
		if errors.Is(err, ants.ErrPoolClosed) {
			err = ErrClosed
		}
		p.finish(t, "", err)
		return t, err
	}
	return t, nil
}

// execute runs a single task, converting panics into failures.
func (p *Pool) execute(t *Task) {
	t.Status = StatusActive
	t.StartedAt = time.Now()
	p.running.Add(1)
	p.notify(Event{Task: t, Change: "started"})

	var (
		result string
		err    error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				logging.Error("Work panicked", "id", t.ID, "panic", r)
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		if t.fn == nil {
			err = errors.New("no work function")
			return
		}
		result, err = t.fn()
	}()

	p.running.Add(-1)
	p.finish(t, result, err)
}

// finish records the outcome and releases waiters.
func (p *Pool) finish(t *Task, result string, err error) {
	t.FinishedAt = time.Now()
	t.Result = result
	t.Error = err
	change := "completed"
	if err != nil {
		t.Status = StatusFailed
		p.totalFailed.Add(1)
		change = "failed"
	} else {
		t.Status = StatusComplete
		p.totalCompleted.Add(1)
	}

	p.mu.Lock()
	p.history = append(p.history, t)
	if len(p.history) > historySize {
		p.history = p.history[len(p.history)-historySize:]
	}
	p.mu.Unlock()

	close(t.done)
	p.notify(Event{Task: t, Change: change})
}

// Recent returns finished tasks, newest first.
func (p *Pool) Recent() []*Task {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Task, len(p.history))
	for i, t := range p.history {
		out[len(out)-1-i] = t
	}
	return out
}

// Stats returns current statistics.
func (p *Pool) Stats() Stats {
	return Stats{
		TotalCreated:   p.totalCreated.Load(),
		TotalCompleted: p.totalCompleted.Load(),
		TotalFailed:    p.totalFailed.Load(),
		WorkersActive:  int(p.running.Load()),
		WorkersTotal:   p.workers,
	}
}

// Subscribe returns a channel that receives work events.
// The channel should be drained to avoid dropped events.
func (p *Pool) Subscribe() <-chan Event {
	ch := make(chan Event, 100)
	p.subscribersMu.Lock()
	p.subscribers = append(p.subscribers, ch)
	p.subscribersMu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber channel.
func (p *Pool) Unsubscribe(ch <-chan Event) {
	p.subscribersMu.Lock()
	defer p.subscribersMu.Unlock()

	for i, sub := range p.subscribers {
		if sub == ch {
			p.subscribers = append(p.subscribers[:i], p.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// notify sends an event to all subscribers.
func (p *Pool) notify(event Event) {
	LogEvent(event)

	p.subscribersMu.RLock()
	defer p.subscribersMu.RUnlock()

	for _, ch := range p.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber not keeping up, drop event
		}
	}
}
