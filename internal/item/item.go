// Package item is the launcher's item model: a definition plus one of a
// closed set of payloads, and the capabilities the query engine asks of it.
package item

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/abelbrown/lookout/internal/calc"
	"github.com/abelbrown/lookout/internal/launcher"
)

// ErrNoPlayer is returned by a MediaSource when no player is running.
var ErrNoPlayer = errors.New("no media player")

// Item is one entry of the pool.
type Item struct {
	Def     *launcher.Definition
	Payload Payload
}

// Payload is implemented by *AppData, *CalcData, *MusicData and
// *WeatherData only.
type Payload interface {
	isPayload()
}

// AppData is the static payload of app, command, category and web items.
type AppData struct {
	Name        string
	Exec        string // command line, or alias short code for categories
	Icon        string
	Description string
	SearchText  string // lowercase ';'-separated name and keywords
	Terminal    bool
	Priority    float64 // tier plus usage fraction
}

// CalcData is the calculator payload. Answers are keyed by the query they
// were computed for, so a run for an older query cannot change what a newer
// one displays.
type CalcData struct {
	Caps  calc.Capabilities
	rates atomic.Pointer[calc.Rates]
	last  atomic.Pointer[answer]
}

type answer struct {
	query  string
	result calc.Result
	ok     bool
}

// NewCalcData returns an empty calculator payload.
func NewCalcData(caps calc.Capabilities, rates calc.Rates) *CalcData {
	d := &CalcData{Caps: caps}
	if rates != nil {
		d.rates.Store(&rates)
	}
	return d
}

// Rates returns the currency rates in use, or nil.
func (d *CalcData) Rates() calc.Rates {
	if r := d.rates.Load(); r != nil {
		return *r
	}
	return nil
}

// Answer returns the calculator answer for query. The answer remembered
// from filtering is reused when it belongs to the same query.
func (d *CalcData) Answer(query string) (calc.Result, bool) {
	query = strings.ToLower(query)
	if a := d.last.Load(); a != nil && a.query == query {
		return a.result, a.ok
	}
	return d.evaluate(query)
}

func (d *CalcData) evaluate(query string) (calc.Result, bool) {
	r, err := calc.Evaluate(query, d.Caps, d.Rates())
	a := &answer{query: query, result: r, ok: err == nil}
	d.last.Store(a)
	return a.result, a.ok
}

// Track is the media player state reported by a MediaSource.
type Track struct {
	Player  string // D-Bus name
	Title   string
	Artists string
	Album   string
	Playing bool
}

// MusicData is a snapshot of the current player. Available is false when no
// player session exists.
type MusicData struct {
	Track     Track
	Available bool
}

// WeatherReport is the current conditions at a location.
type WeatherReport struct {
	Location    string `json:"location"`
	Temperature string `json:"temperature"`
	Wind        string `json:"wind"`
	Condition   string `json:"condition"`
	Sunset      string `json:"sunset"`
}

// WeatherData is a snapshot of a weather report. Init is false until the
// first fetch succeeds.
type WeatherData struct {
	Report WeatherReport
	Init   bool
}

func (*AppData) isPayload()     {}
func (*CalcData) isPayload()    {}
func (*MusicData) isPayload()   {}
func (*WeatherData) isPayload() {}

// WeatherSource fetches weather reports.
type WeatherSource interface {
	Weather(ctx context.Context, location string, maxAge time.Duration) (WeatherReport, error)
}

// MediaSource reports the current media player.
type MediaSource interface {
	NowPlaying(ctx context.Context) (Track, error)
}

// CurrencySource fetches exchange rates.
type CurrencySource interface {
	Rates(ctx context.Context) (calc.Rates, error)
}

// Sources bundles the payload producers used by Refresh. Nil sources make
// the matching items skip their refresh.
type Sources struct {
	Weather  WeatherSource
	Media    MediaSource
	Currency CurrencySource
}
