package item

import (
	"fmt"
	"math"
	"strings"

	"github.com/abelbrown/lookout/internal/action"
	"github.com/abelbrown/lookout/internal/launcher"
	"github.com/abelbrown/lookout/internal/mode"
)

// maxFraction keeps a priority inside its integer tier.
const maxFraction = 0.999

func unknown(p Payload) string {
	return fmt.Sprintf("item: unknown payload %T", p)
}

// SearchText is the lowercase text the matcher filters on.
func (it Item) SearchText() string {
	switch p := it.Payload.(type) {
	case *AppData:
		return p.SearchText
	case *CalcData:
		return ""
	case *MusicData:
		if !p.Available {
			return ""
		}
		return strings.ToLower(p.Track.Title + ";" + p.Track.Artists + ";" + p.Track.Album)
	case *WeatherData:
		return strings.ToLower(it.Def.Name + ";" + it.Def.Location)
	default:
		panic(unknown(p))
	}
}

// MatchText is the text scored against the query. App items of a definition
// with keyword matching disabled are scored on their name alone.
func (it Item) MatchText() string {
	if p, ok := it.Payload.(*AppData); ok && !it.Def.UseKeywords {
		return strings.ToLower(p.Name)
	}
	return it.SearchText()
}

// Priority is the integer tier of the definition plus a fraction in [0, 1).
func (it Item) Priority() float64 {
	switch p := it.Payload.(type) {
	case *AppData:
		tier := math.Floor(p.Priority)
		return tier + math.Min(p.Priority-tier, maxFraction)
	case *CalcData, *MusicData, *WeatherData:
		return float64(it.Def.Priority)
	default:
		panic(unknown(p))
	}
}

// Visibility is the home-view rule of the item's definition.
func (it Item) Visibility() launcher.Visibility {
	return it.Def.Home
}

// AliasLane returns the alias lane the item belongs to, if its definition
// has one.
func (it Item) AliasLane() (string, bool) {
	if it.Def.Alias == "" {
		return "", false
	}
	return it.Def.Alias, true
}

// AsyncEligible reports whether the item refreshes in the background.
func (it Item) AsyncEligible() bool {
	switch p := it.Payload.(type) {
	case *AppData:
		return false
	case *CalcData, *MusicData, *WeatherData:
		return it.Def.Async
	default:
		panic(unknown(p))
	}
}

// BasedShow lets an item override text matching. ok is false when the item
// has no opinion. Calculator items show only when the query evaluates.
func (it Item) BasedShow(query string) (show, ok bool) {
	switch p := it.Payload.(type) {
	case *AppData, *WeatherData:
		return false, false
	case *CalcData:
		_, show := p.Answer(query)
		return show, true
	case *MusicData:
		if !p.Available {
			return false, true
		}
		return false, false
	default:
		panic(unknown(p))
	}
}

// UsageKey is the key launch counts are stored under, or "".
func (it Item) UsageKey() string {
	if p, ok := it.Payload.(*AppData); ok {
		switch it.Def.Kind {
		case launcher.App, launcher.Command:
			return p.Exec
		}
	}
	return ""
}

// BuildExec returns what executing the item does for the committed query.
func (it Item) BuildExec(query string) (action.Action, bool) {
	switch p := it.Payload.(type) {
	case *AppData:
		switch it.Def.Kind {
		case launcher.Category:
			return action.Action{Kind: action.SwitchMode, Mode: mode.NewAlias(p.Exec, p.Name)}, true
		case launcher.Web:
			return action.Action{Kind: action.Open, URL: it.Def.Engine, Browser: it.Def.Browser}, true
		default:
			if p.Exec == "" {
				return action.Action{}, false
			}
			return action.Action{Kind: action.Launch, Exec: p.Exec, Terminal: p.Terminal, UsageKey: it.UsageKey()}, true
		}
	case *CalcData:
		r, ok := p.Answer(query)
		if !ok {
			return action.Action{}, false
		}
		return action.Action{Kind: action.Copy, Content: r.Value}, true
	case *MusicData:
		if !p.Available {
			return action.Action{}, false
		}
		return action.Action{Kind: action.Media, Player: p.Track.Player, Method: "PlayPause"}, true
	case *WeatherData:
		return action.Action{}, false
	default:
		panic(unknown(p))
	}
}
