// Package app assembles the item pool and the known alias modes from the
// configuration, installed desktop entries and launch history.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/abelbrown/lookout/internal/apps"
	"github.com/abelbrown/lookout/internal/calc"
	"github.com/abelbrown/lookout/internal/config"
	"github.com/abelbrown/lookout/internal/item"
	"github.com/abelbrown/lookout/internal/launcher"
	"github.com/abelbrown/lookout/internal/logging"
	"github.com/abelbrown/lookout/internal/match"
	"github.com/abelbrown/lookout/internal/mode"
)

// UsageSource provides launch counts by usage key.
type UsageSource interface {
	Counts(ctx context.Context) (map[string]int, error)
}

// Loaded is everything the query engine starts from.
type Loaded struct {
	Definitions []*launcher.Definition
	Items       []item.Item
	Known       []mode.Mode
}

// Loader builds items. Usage may be nil.
type Loader struct {
	cfg   *config.Config
	usage UsageSource
	scan  func(dirs []string) []apps.Entry
}

// NewLoader returns a loader for cfg.
func NewLoader(cfg *config.Config, usage UsageSource) *Loader {
	return &Loader{cfg: cfg, usage: usage, scan: apps.Scan}
}

// Load builds the definitions, the items and the known modes. A failing
// usage source only costs the usage weighting.
func (l *Loader) Load(ctx context.Context) (Loaded, error) {
	counts := map[string]int{}
	if l.usage != nil {
		c, err := l.usage.Counts(ctx)
		if err != nil {
			logging.Warn("launch counts unavailable", "err", err)
		} else {
			counts = c
		}
	}

	var (
		out   Loaded
		modes []mode.Mode
	)
	for _, lc := range l.cfg.Launchers {
		def, err := launcher.FromConfig(lc)
		if err != nil {
			return Loaded{}, err
		}
		out.Definitions = append(out.Definitions, def)
		if m, ok := def.Mode(); ok {
			modes = append(modes, m)
		}

		items, extra := l.items(def, lc, counts)
		out.Items = append(out.Items, items...)
		modes = append(modes, extra...)
	}
	out.Known = mode.Dedup(modes)

	logging.Info("items loaded", "launchers", len(out.Definitions), "items", len(out.Items), "modes", len(out.Known))
	return out, nil
}

// items returns the items of one definition and any alias modes its entries
// switch to.
func (l *Loader) items(def *launcher.Definition, lc config.LauncherConfig, counts map[string]int) ([]item.Item, []mode.Mode) {
	decimals := l.cfg.Search.Decimals
	tier := float64(def.Priority)

	switch def.Kind {
	case launcher.App:
		entries := l.scan(l.cfg.DesktopDirs())
		out := make([]item.Item, 0, len(entries))
		for _, e := range entries {
			out = append(out, item.Item{Def: def, Payload: &item.AppData{
				Name:        e.Name,
				Exec:        e.Exec,
				Icon:        e.Icon,
				Description: e.Comment,
				SearchText:  e.SearchText(),
				Terminal:    e.Terminal,
				Priority:    tier + match.UsageFraction(counts[e.Exec], decimals),
			}})
		}
		return out, nil

	case launcher.Command, launcher.Category:
		var (
			out   []item.Item
			modes []mode.Mode
		)
		for _, c := range lc.Commands {
			p := &item.AppData{
				Name:       c.Name,
				Exec:       c.Exec,
				Icon:       c.Icon,
				SearchText: searchText(c.Name, c.Keywords),
				Terminal:   c.Terminal,
				Priority:   tier,
			}
			if def.Kind == launcher.Category {
				modes = append(modes, mode.NewAlias(c.Exec, c.Name))
			} else {
				p.Priority += match.UsageFraction(counts[c.Exec], decimals)
			}
			out = append(out, item.Item{Def: def, Payload: p})
		}
		return out, modes

	case launcher.Web:
		return []item.Item{{Def: def, Payload: &item.AppData{
			Name:        def.Title(),
			Description: webDescription(def.Engine),
			SearchText:  searchText(def.Title(), ""),
			Priority:    tier,
		}}}, nil

	case launcher.Calc:
		return []item.Item{{Def: def, Payload: item.NewCalcData(calc.ParseCapabilities(def.Capabilities), nil)}}, nil

	case launcher.Music:
		return []item.Item{{Def: def, Payload: &item.MusicData{}}}, nil

	case launcher.Weather:
		return []item.Item{{Def: def, Payload: &item.WeatherData{}}}, nil
	}
	panic(fmt.Sprintf("app: unhandled launcher kind %v", def.Kind))
}

func searchText(name, keywords string) string {
	fields := []string{name}
	for _, k := range strings.Split(keywords, ";") {
		if k = strings.TrimSpace(k); k != "" {
			fields = append(fields, k)
		}
	}
	return strings.ToLower(strings.Join(fields, ";"))
}

func webDescription(engine string) string {
	host, _, _ := strings.Cut(strings.TrimPrefix(strings.TrimPrefix(engine, "https://"), "http://"), "/")
	return "Search " + host
}
