package calc

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var conversionRe = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s*([a-zA-Z°]+)\s+(?:to|in|as)\s+([a-zA-Z°]+)$`)

type conversion struct {
	amount   float64
	from, to string
}

func parseConversion(q string) (conversion, bool) {
	m := conversionRe.FindStringSubmatch(q)
	if m == nil {
		return conversion{}, false
	}
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return conversion{}, false
	}
	return conversion{
		amount: amount,
		from:   strings.ToLower(m[2]),
		to:     strings.ToLower(m[3]),
	}, true
}

type unit struct {
	dimension string
	factor    float64 // in base units of the dimension
}

var units = map[string]unit{
	"mm": {"length", 0.001}, "cm": {"length", 0.01}, "m": {"length", 1}, "km": {"length", 1000},
	"in": {"length", 0.0254}, "ft": {"length", 0.3048}, "yd": {"length", 0.9144}, "mi": {"length", 1609.344},

	"mg": {"mass", 0.001}, "g": {"mass", 1}, "kg": {"mass", 1000}, "t": {"mass", 1e6},
	"oz": {"mass", 28.349523125}, "lb": {"mass", 453.59237},

	"ms": {"time", 0.001}, "s": {"time", 1}, "min": {"time", 60}, "h": {"time", 3600}, "d": {"time", 86400},

	"ml": {"volume", 0.001}, "l": {"volume", 1}, "gal": {"volume", 3.785411784},

	"b": {"data", 1}, "kb": {"data", 1e3}, "mb": {"data", 1e6}, "gb": {"data", 1e9}, "tb": {"data", 1e12},
}

var unitAliases = map[string]string{
	"meter": "m", "meters": "m", "kilometer": "km", "kilometers": "km",
	"inch": "in", "inches": "in", "foot": "ft", "feet": "ft", "yard": "yd", "yards": "yd",
	"mile": "mi", "miles": "mi", "gram": "g", "grams": "g", "kilogram": "kg", "kilograms": "kg",
	"pound": "lb", "pounds": "lb", "lbs": "lb", "ounce": "oz", "ounces": "oz",
	"sec": "s", "second": "s", "seconds": "s", "minute": "min", "minutes": "min",
	"hour": "h", "hours": "h", "day": "d", "days": "d", "liter": "l", "liters": "l",
	"°c": "c", "celsius": "c", "°f": "f", "fahrenheit": "f", "kelvin": "k",
}

func canonicalUnit(s string) string {
	if a, ok := unitAliases[s]; ok {
		return a
	}
	return s
}

func convertUnit(c conversion) (string, error) {
	from, to := canonicalUnit(c.from), canonicalUnit(c.to)
	if isTemperature(from) && isTemperature(to) {
		return formatNumber(convertTemperature(c.amount, from, to)) + " " + strings.ToUpper(to), nil
	}

	uf, ok1 := units[from]
	ut, ok2 := units[to]
	if !ok1 || !ok2 || uf.dimension != ut.dimension {
		return "", ErrNoResult
	}
	return formatNumber(c.amount*uf.factor/ut.factor) + " " + to, nil
}

func isTemperature(u string) bool {
	return u == "c" || u == "f" || u == "k"
}

func convertTemperature(v float64, from, to string) float64 {
	var kelvin float64
	switch from {
	case "c":
		kelvin = v + 273.15
	case "f":
		kelvin = (v-32)*5/9 + 273.15
	default:
		kelvin = v
	}
	switch to {
	case "c":
		return kelvin - 273.15
	case "f":
		return (kelvin-273.15)*9/5 + 32
	default:
		return kelvin
	}
}

// Rates holds the USD value of one unit of each currency, keyed by
// lowercase ISO code.
type Rates map[string]float64

func (r Rates) convert(c conversion) (string, error) {
	from, okf := r[c.from]
	to, okt := r[c.to]
	if !okf || !okt || to == 0 {
		return "", ErrNoResult
	}
	return fmt.Sprintf("%.2f %s", c.amount*from/to, strings.ToUpper(c.to)), nil
}

// Equal reports whether both rate sets carry the same values.
func (r Rates) Equal(o Rates) bool {
	if len(r) != len(o) {
		return false
	}
	for k, v := range r {
		if ov, ok := o[k]; !ok || ov != v {
			return false
		}
	}
	return true
}
