// Package rank filters and orders the pool for a query.
package rank

import (
	"context"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/lookout/internal/item"
	"github.com/abelbrown/lookout/internal/launcher"
	"github.com/abelbrown/lookout/internal/match"
	"github.com/abelbrown/lookout/internal/mode"
)

// DefaultCategoryThreshold is the priority an item needs to be listed in
// the "all" lane when it belongs to another lane.
const DefaultCategoryThreshold = 1.0

// defaultChunkSize is the number of items scored per goroutine.
const defaultChunkSize = 256

// defaultWorkers limits parallel chunks.
const defaultWorkers = 4

// Options tunes a run.
type Options struct {
	CategoryThreshold float64
	ChunkSize         int
	Workers           int
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		CategoryThreshold: DefaultCategoryThreshold,
		ChunkSize:         defaultChunkSize,
		Workers:           defaultWorkers,
	}
}

type scored struct {
	idx int
	key float64
}

// Run returns the indices of the items shown for query in mode m, best
// first. Equal keys keep pool order. It returns ctx.Err() if the run was
// superseded before it finished.
func Run(ctx context.Context, items []item.Item, m mode.Mode, query string, opts Options) ([]int, error) {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}

	lowered := strings.ToLower(query)
	chunks := (len(items) + opts.ChunkSize - 1) / opts.ChunkSize
	results := make([][]scored, chunks)

	score := func(c int) {
		lo := c * opts.ChunkSize
		hi := min(lo+opts.ChunkSize, len(items))
		out := make([]scored, 0, hi-lo)
		for i := lo; i < hi; i++ {
			it := items[i]
			if !Accept(it, m, query, lowered, opts.CategoryThreshold) {
				continue
			}
			out = append(out, scored{idx: i, key: match.Key(it.Priority(), lowered, it.MatchText())})
		}
		results[c] = out
	}

	if chunks <= 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for c := 0; c < chunks; c++ {
			score(c)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Workers)
		for c := 0; c < chunks; c++ {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				score(c)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []scored
	for _, r := range results {
		all = append(all, r...)
	}
	slices.SortStableFunc(all, func(a, b scored) int {
		switch {
		case a.key < b.key:
			return -1
		case a.key > b.key:
			return 1
		default:
			return 0
		}
	})

	indices := make([]int, len(all))
	for i, s := range all {
		indices[i] = s.idx
	}
	return indices, nil
}

// Accept applies the visibility rules to one item. The first decisive
// rule wins. raw is the query as typed, lowered its lowercase form.
func Accept(it item.Item, m mode.Mode, raw, lowered string, threshold float64) bool {
	lane := m.Lane()
	if own, ok := it.AliasLane(); !ok || own != lane {
		if lane != mode.AllLane || it.Priority() < threshold {
			return false
		}
	}

	vis := it.Visibility()
	if vis == launcher.Persist {
		return true
	}
	if show, ok := it.BasedShow(lowered); ok {
		return show
	}

	home := m.IsHome(raw)
	if !home && vis == launcher.OnlyHome {
		return false
	}
	if home && vis == launcher.SearchOnly {
		return false
	}
	return match.Matches(it.SearchText(), lowered)
}
