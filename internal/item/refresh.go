package item

import (
	"context"
	"errors"
	"fmt"

	"github.com/abelbrown/lookout/internal/calc"
)

// Refresh fetches a fresh payload for an async-eligible item. It returns the
// updated item and true only when the payload changed. Fetch errors are
// returned alongside false so the caller can log them.
func (it Item) Refresh(ctx context.Context, src Sources) (Item, bool, error) {
	switch p := it.Payload.(type) {
	case *AppData:
		return it, false, nil
	case *CalcData:
		if src.Currency == nil || !p.Caps.Has(calc.Currencies) {
			return it, false, nil
		}
		rates, err := src.Currency.Rates(ctx)
		if err != nil {
			return it, false, fmt.Errorf("currency rates: %w", err)
		}
		if rates.Equal(p.Rates()) {
			return it, false, nil
		}
		return Item{Def: it.Def, Payload: NewCalcData(p.Caps, rates)}, true, nil
	case *MusicData:
		if src.Media == nil {
			return it, false, nil
		}
		track, err := src.Media.NowPlaying(ctx)
		if errors.Is(err, ErrNoPlayer) {
			if !p.Available {
				return it, false, nil
			}
			return Item{Def: it.Def, Payload: &MusicData{}}, true, nil
		}
		if err != nil {
			return it, false, fmt.Errorf("media player: %w", err)
		}
		if p.Available && track.Title == p.Track.Title && track.Playing == p.Track.Playing {
			return it, false, nil
		}
		return Item{Def: it.Def, Payload: &MusicData{Track: track, Available: true}}, true, nil
	case *WeatherData:
		if src.Weather == nil {
			return it, false, nil
		}
		report, err := src.Weather.Weather(ctx, it.Def.Location, it.Def.UpdateInterval)
		if err != nil {
			return it, false, fmt.Errorf("weather %s: %w", it.Def.Location, err)
		}
		if p.Init && report == p.Report {
			return it, false, nil
		}
		return Item{Def: it.Def, Payload: &WeatherData{Report: report, Init: true}}, true, nil
	default:
		panic(unknown(p))
	}
}
