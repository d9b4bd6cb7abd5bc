package work

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func newTestPool(t *testing.T, workers int) *Pool {
	t.Helper()
	p, err := NewPool(workers)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	t.Cleanup(p.Release)
	return p
}

func TestSubmitAndWait(t *testing.T) {
	p := newTestPool(t, 2)

	task, err := p.Submit(TypeRefresh, "test", func() (string, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := task.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if task.Status != StatusComplete || task.Result != "ok" {
		t.Errorf("task = %+v", task)
	}
}

func TestFailedTaskIsCounted(t *testing.T) {
	p := newTestPool(t, 1)
	boom := errors.New("boom")

	task, _ := p.Submit(TypeRefresh, "fails", func() (string, error) { return "", boom })
	if err := task.Wait(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Wait err = %v", err)
	}
	if task.Status != StatusFailed {
		t.Errorf("status = %s", task.Status)
	}
	if s := p.Stats(); s.TotalFailed != 1 || s.TotalCompleted != 0 {
		t.Errorf("stats = %+v", s)
	}
}

func TestPanicIsRecovered(t *testing.T) {
	p := newTestPool(t, 1)
	task, _ := p.Submit(TypeOther, "panics", func() (string, error) { panic("oops") })
	err := task.Wait(context.Background())
	if err == nil || task.Status != StatusFailed {
		t.Fatalf("panic not turned into failure: err=%v status=%s", err, task.Status)
	}

	// The pool keeps working afterwards.
	next, _ := p.Submit(TypeOther, "after", func() (string, error) { return "fine", nil })
	if err := next.Wait(context.Background()); err != nil {
		t.Errorf("pool broken after panic: %v", err)
	}
}

func TestConcurrencyLimit(t *testing.T) {
	p := newTestPool(t, 2)
	var running, peak atomic.Int32

	var tasks []*Task
	for i := 0; i < 8; i++ {
		task, err := p.Submit(TypeRefresh, "limited", func() (string, error) {
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return "", nil
		})
		if err != nil {
			t.Fatal(err)
		}
		tasks = append(tasks, task)
	}
	for _, task := range tasks {
		_ = task.Wait(context.Background())
	}
	if peak.Load() > 2 {
		t.Errorf("peak concurrency %d exceeds 2 workers", peak.Load())
	}
	if got := p.Stats().TotalCompleted; got != 8 {
		t.Errorf("completed = %d, want 8", got)
	}
}

func TestWaitHonoursContext(t *testing.T) {
	p := newTestPool(t, 1)
	release := make(chan struct{})
	task, _ := p.Submit(TypeOther, "slow", func() (string, error) {
		<-release
		return "", nil
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := task.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait err = %v", err)
	}
}

func TestSubmitAfterRelease(t *testing.T) {
	p, err := NewPool(1)
	if err != nil {
		t.Fatal(err)
	}
	p.Release()
	task, err := p.Submit(TypeOther, "late", func() (string, error) { return "", nil })
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
	if task.Status != StatusFailed {
		t.Errorf("status = %s", task.Status)
	}
}

func TestSubscribeAndRecent(t *testing.T) {
	p := newTestPool(t, 1)
	events := p.Subscribe()
	defer p.Unsubscribe(events)

	task, _ := p.Submit(TypeRefresh, "observed", func() (string, error) { return "done", nil })
	_ = task.Wait(context.Background())

	seen := map[string]bool{}
	timeout := time.After(time.Second)
	for !seen["completed"] {
		select {
		case ev := <-events:
			seen[ev.Change] = true
		case <-timeout:
			t.Fatalf("events seen: %v", seen)
		}
	}
	if !seen["started"] {
		t.Error("missing started event")
	}
	if r := p.Recent(); len(r) != 1 || r[0] != task {
		t.Errorf("Recent = %v", r)
	}
}
