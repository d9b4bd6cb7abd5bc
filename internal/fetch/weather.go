package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abelbrown/lookout/internal/config"
	"github.com/abelbrown/lookout/internal/item"
)

// ErrBadReport is returned when the weather service answers without the
// fields a report needs.
var ErrBadReport = errors.New("incomplete weather report")

// wttrEndpoint is formatted with the escaped location.
const wttrEndpoint = "https://wttr.in/%s?format=j2"

// windArrows are the eight compass sectors, starting at north.
var windArrows = [8]string{"↑", "↗", "→", "↘", "↓", "↙", "←", "↖"}

// imperialLengths select mph for wind speed.
var imperialLengths = map[string]bool{
	"inches": true, "inch": true, "in": true,
	"feet": true, "foot": true, "ft": true,
	"yards": true, "yard": true, "yd": true,
	"miles": true, "mile": true, "mi": true,
}

// Weather fetches current conditions from wttr.in.
type Weather struct {
	f        *Fetcher
	units    config.UnitsConfig
	endpoint string
}

// NewWeather returns a wttr.in weather source formatting in units.
func NewWeather(f *Fetcher, units config.UnitsConfig) *Weather {
	return &Weather{f: f, units: units, endpoint: wttrEndpoint}
}

type wttrResponse struct {
	CurrentCondition []struct {
		TempC          string `json:"temp_C"`
		TempF          string `json:"temp_F"`
		WeatherCode    string `json:"weatherCode"`
		WinddirDegree  string `json:"winddirDegree"`
		WindspeedKmph  string `json:"windspeedKmph"`
		WindspeedMiles string `json:"windspeedMiles"`
	} `json:"current_condition"`
	Weather []struct {
		Astronomy []struct {
			Sunset string `json:"sunset"`
		} `json:"astronomy"`
	} `json:"weather"`
}

// Weather returns the report for location. maxAge is honoured by caching
// wrappers; this source always asks the service.
func (w *Weather) Weather(ctx context.Context, location string, _ time.Duration) (item.WeatherReport, error) {
	var resp wttrResponse
	u := fmt.Sprintf(w.endpoint, url.PathEscape(location))
	if err := w.f.fetchJSON(ctx, request{url: u}, &resp); err != nil {
		return item.WeatherReport{}, err
	}
	return w.report(location, resp)
}

func (w *Weather) report(location string, resp wttrResponse) (item.WeatherReport, error) {
	if len(resp.CurrentCondition) == 0 {
		return item.WeatherReport{}, ErrBadReport
	}
	cur := resp.CurrentCondition[0]

	r := item.WeatherReport{
		Location:  titleCase(location),
		Condition: ConditionClass(cur.WeatherCode),
	}
	if strings.EqualFold(w.units.Temperature, "F") {
		r.Temperature = cur.TempF + "°F"
	} else {
		r.Temperature = cur.TempC + "°C"
	}

	deg, err := strconv.ParseFloat(cur.WinddirDegree, 64)
	if err != nil {
		return item.WeatherReport{}, fmt.Errorf("%w: wind direction %q", ErrBadReport, cur.WinddirDegree)
	}
	arrow := WindArrow(deg)
	if imperialLengths[strings.ToLower(w.units.Length)] {
		r.Wind = arrow + " " + cur.WindspeedMiles + "mph"
	} else {
		r.Wind = arrow + " " + cur.WindspeedKmph + "km/h"
	}

	if len(resp.Weather) > 0 && len(resp.Weather[0].Astronomy) > 0 {
		if t, err := time.Parse("03:04 PM", resp.Weather[0].Astronomy[0].Sunset); err == nil {
			r.Sunset = t.Format("15:04")
		}
	}
	return r, nil
}

// WindArrow maps a direction in degrees to one of eight arrows.
func WindArrow(deg float64) string {
	const sector = 45.0
	idx := int((deg+sector/2)/sector) % 8
	if idx < 0 {
		idx += 8
	}
	return windArrows[idx]
}

// ConditionClass maps a wttr.in weather code to an icon class name.
func ConditionClass(code string) string {
	switch code {
	case "113":
		return "weather-clear"
	case "116":
		return "weather-few-clouds"
	case "119", "122":
		return "weather-many-clouds"
	case "143", "248", "260":
		return "weather-mist"
	case "176", "263", "299", "305", "353", "356":
		return "weather-showers"
	case "179", "362", "365", "374":
		return "weather-freezing-scattered-rain-storm"
	case "182", "185", "281", "284", "311", "314", "317", "350", "377":
		return "weather-freezing-scattered-rain"
	case "200", "302", "308", "359", "386", "389":
		return "weather-storm"
	case "227", "320":
		return "weather-snow-scattered-day"
	case "230", "329", "332", "338":
		return "weather-snow-storm"
	case "323", "326", "335", "368", "371", "392", "395":
		return "weather-snow-scattered-storm"
	case "266", "293", "296":
		return "weather-showers-scattered"
	default:
		return "weather-none-available"
	}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
