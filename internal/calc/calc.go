// Package calc evaluates calculator queries: arithmetic, unit and currency
// conversions, and colour conversions.
package calc

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrNoResult means the query is not something the calculator can answer.
var ErrNoResult = errors.New("no result")

// Capabilities is the set of query kinds a calculator answers.
type Capabilities uint8

const (
	Math Capabilities = 1 << iota
	Units
	Currencies
	Colors
)

// All enables every capability.
const All = Math | Units | Currencies | Colors

var capabilityNames = map[string]Capabilities{
	"calc.math":       Math,
	"calc.units":      Units,
	"calc.currencies": Currencies,
	"calc.colors":     Colors,
	"calc.lengths":    Units,
	"calc.weights":    Units,
	"colors.all":      Colors,
}

// ParseCapabilities maps config capability names onto a set. Unknown names
// are ignored; an empty list enables everything.
func ParseCapabilities(names []string) Capabilities {
	if len(names) == 0 {
		return All
	}
	var c Capabilities
	for _, n := range names {
		c |= capabilityNames[strings.ToLower(strings.TrimSpace(n))]
	}
	return c
}

// Has reports whether all of want are enabled.
func (c Capabilities) Has(want Capabilities) bool {
	return c&want == want
}

// Result is a calculator answer. Value is what gets copied, Display is what
// the user sees.
type Result struct {
	Value   string
	Display string
}

// Evaluate answers query with the enabled capabilities. Conversions win over
// plain arithmetic when both apply.
func Evaluate(query string, caps Capabilities, rates Rates) (Result, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return Result{}, ErrNoResult
	}

	if caps.Has(Colors) {
		if r, err := convertColor(q); err == nil {
			return Result{Value: r, Display: r}, nil
		}
	}
	if caps.Has(Units) || caps.Has(Currencies) {
		if conv, ok := parseConversion(q); ok {
			if caps.Has(Units) {
				if r, err := convertUnit(conv); err == nil {
					return Result{Value: r, Display: r}, nil
				}
			}
			if caps.Has(Currencies) && rates != nil {
				if r, err := rates.convert(conv); err == nil {
					return Result{Value: r, Display: r}, nil
				}
			}
		}
	}
	if caps.Has(Math) {
		v, err := evalMath(q)
		if err != nil {
			return Result{}, err
		}
		r := formatNumber(v)
		if r == q {
			return Result{}, ErrNoResult
		}
		return Result{Value: r, Display: "= " + r}, nil
	}
	return Result{}, ErrNoResult
}

func formatNumber(v float64) string {
	if math.Abs(v) < 1e15 {
		v = math.Round(v*1e6) / 1e6
	}
	if v == 0 {
		v = 0 // normalise -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
