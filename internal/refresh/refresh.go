// Package refresh re-fetches async items in the background and splices the
// results back into the pool if nothing newer has started meanwhile.
package refresh

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/abelbrown/lookout/internal/item"
	"github.com/abelbrown/lookout/internal/logging"
	"github.com/abelbrown/lookout/internal/pool"
	"github.com/abelbrown/lookout/internal/work"
)

// taskTimeout bounds each item refresh.
const taskTimeout = 20 * time.Second

// submitter interface for dependency injection (testing).
type submitter interface {
	Submit(typ work.Type, desc string, fn func() (string, error)) (*work.Task, error)
}

// Batch is the outcome of one generation's refresh: changed items keyed by
// their index in the pool snapshot the batch started from.
type Batch struct {
	Generation uint64
	Updates    map[int]item.Item
	Failed     int
}

// Coordinator owns the generation counter.
type Coordinator struct {
	pool    *pool.Pool
	work    submitter
	sources item.Sources

	gen    atomic.Uint64
	mu     sync.Mutex
	ctx    context.Context // context of the current generation
	cancel context.CancelFunc
}

// New creates a Coordinator. Sources with nil fields skip those refreshes.
func New(p *pool.Pool, w submitter, sources item.Sources) *Coordinator {
	return &Coordinator{pool: p, work: w, sources: sources}
}

// Generation returns the current generation.
func (c *Coordinator) Generation() uint64 {
	return c.gen.Load()
}

// Begin starts a new generation, cancelling the tasks of the previous one.
func (c *Coordinator) Begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.beginLocked()
}

func (c *Coordinator) beginLocked() uint64 {
	if c.cancel != nil {
		c.cancel()
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c.gen.Add(1)
}

// Stop cancels in-flight tasks without starting a new generation.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

// generationContext returns a context that ends with ctx or when gen is
// superseded.
func (c *Coordinator) generationContext(ctx context.Context, gen uint64) (context.Context, context.CancelFunc) {
	c.mu.Lock()
	genCtx := c.ctx
	current := c.gen.Load() == gen
	c.mu.Unlock()

	out, cancel := context.WithCancel(ctx)
	if !current || genCtx == nil {
		cancel()
		return out, cancel
	}
	stop := context.AfterFunc(genCtx, cancel)
	return out, func() {
		stop()
		cancel()
	}
}

// Collect refreshes every async-eligible item of the current pool snapshot
// and waits for all of them. A failing item never fails the batch. Several
// collections may share a generation; each batch is keyed by indices that
// stay valid until the next Begin or Reload.
func (c *Coordinator) Collect(ctx context.Context, gen uint64) Batch {
	batch := Batch{Generation: gen, Updates: make(map[int]item.Item)}

	ctx, cancel := c.generationContext(ctx, gen)
	defer cancel()
	if ctx.Err() != nil {
		return batch
	}

	snap := c.pool.Snapshot()
	var (
		mu    sync.Mutex
		tasks []*work.Task
	)
	for idx, it := range snap.Items {
		if !it.AsyncEligible() {
			continue
		}
		task, err := c.work.Submit(work.TypeRefresh, "Refreshing "+it.Def.Title(), func() (string, error) {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			taskCtx, cancel := context.WithTimeout(ctx, taskTimeout)
			defer cancel()

			next, changed, err := it.Refresh(taskCtx, c.sources)
			if err != nil {
				return "", err
			}
			if !changed {
				return "unchanged", nil
			}
			mu.Lock()
			batch.Updates[idx] = next
			mu.Unlock()
			return "updated", nil
		})
		if err != nil {
			logging.Debug("refresh: submit failed", "item", it.Def.Name, "error", err)
			batch.Failed++
			continue
		}
		tasks = append(tasks, task)
	}

	for _, task := range tasks {
		if err := task.Wait(context.Background()); err != nil {
			logging.Debug("refresh: item failed", "task", task.Description, "error", err)
			batch.Failed++
		}
	}
	return batch
}

// Apply splices a batch into the pool if its generation is still current.
// It reports whether the pool changed; the caller then re-runs the query.
func (c *Coordinator) Apply(b Batch) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if b.Generation != c.Generation() {
		logging.Debug("refresh: discarding stale batch", "batch", b.Generation, "current", c.Generation())
		return false
	}
	if len(b.Updates) == 0 {
		return false
	}
	if _, err := c.pool.Splice(b.Updates); err != nil {
		logging.Warn("refresh: splice failed", "error", err)
		return false
	}
	return true
}

// Reload swaps in a new item set. It starts a new generation so batches
// collected against the old indices are discarded.
func (c *Coordinator) Reload(items []item.Item) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pool.Replace(items)
	return c.beginLocked()
}

// String summarises a batch for logs.
func (b Batch) String() string {
	return fmt.Sprintf("gen=%d updated=%d failed=%d", b.Generation, len(b.Updates), b.Failed)
}
