// Package pool holds the shared item collection.
package pool

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/abelbrown/lookout/internal/item"
)

// Snapshot is an immutable view of the pool. Indices into Items stay valid
// for as long as the snapshot is held.
type Snapshot struct {
	Version uint64
	Items   []item.Item
}

// Pool is a versioned, copy-on-write item collection.
// Readers take snapshots without locking; writers serialize on mu and
// publish a new slice.
type Pool struct {
	mu   sync.Mutex
	snap atomic.Pointer[Snapshot]
}

// New creates a pool holding items. The slice is copied.
func New(items []item.Item) *Pool {
	p := &Pool{}
	p.snap.Store(&Snapshot{Items: append([]item.Item(nil), items...)})
	return p
}

// Snapshot returns the current contents.
func (p *Pool) Snapshot() *Snapshot {
	return p.snap.Load()
}

// Len returns the number of items.
func (p *Pool) Len() int {
	return len(p.snap.Load().Items)
}

// Version returns the number of writes applied so far.
func (p *Pool) Version() uint64 {
	return p.snap.Load().Version
}

// Splice replaces the items at the given indices and returns the new
// version. All indices are checked before anything is written.
func (p *Pool) Splice(updates map[int]item.Item) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cur := p.snap.Load()
	if len(updates) == 0 {
		return cur.Version, nil
	}
	for idx := range updates {
		if idx < 0 || idx >= len(cur.Items) {
			return cur.Version, fmt.Errorf("splice index %d out of range [0, %d)", idx, len(cur.Items))
		}
	}

	items := make([]item.Item, len(cur.Items))
	copy(items, cur.Items)
	for idx, it := range updates {
		items[idx] = it
	}
	next := &Snapshot{Version: cur.Version + 1, Items: items}
	p.snap.Store(next)
	return next.Version, nil
}

// Replace swaps in a whole new item set, as after a config reload.
func (p *Pool) Replace(items []item.Item) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := &Snapshot{
		Version: p.snap.Load().Version + 1,
		Items:   append([]item.Item(nil), items...),
	}
	p.snap.Store(next)
	return next.Version
}
