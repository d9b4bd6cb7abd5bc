package calc

import (
	"errors"
	"testing"
)

func TestEvaluateMath(t *testing.T) {
	tests := []struct {
		query   string
		want    string
		wantErr bool
	}{
		{"2+3", "5", false},
		{" 2 * (3 + 4) ", "14", false},
		{"0.1 + 0.2", "0.3", false},
		{"10 / 4", "2.5", false},
		{"2^10", "1024", false},
		{"sqrt(16)", "4", false},
		{"5", "", true},     // echoing the input is not an answer
		{"1/0", "", true},   // not finite
		{"firefox", "", true},
		{"true", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r, err := Evaluate(tt.query, Math, nil)
			if tt.wantErr {
				if !errors.Is(err, ErrNoResult) {
					t.Fatalf("Evaluate(%q) err = %v, want ErrNoResult", tt.query, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Evaluate(%q): %v", tt.query, err)
			}
			if r.Value != tt.want || r.Display != "= "+tt.want {
				t.Errorf("Evaluate(%q) = %+v, want %q", tt.query, r, tt.want)
			}
		})
	}
}

func TestEvaluateUnits(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"1000 m to km", "1 km"},
		{"1 mi in km", "1.609344 km"},
		{"2 feet to in", "24 in"},
		{"1 kg to g", "1000 g"},
		{"100 c to f", "212 F"},
		{"32 fahrenheit to celsius", "0 C"},
		{"90 min to h", "1.5 h"},
	}
	for _, tt := range tests {
		r, err := Evaluate(tt.query, Units, nil)
		if err != nil {
			t.Errorf("Evaluate(%q): %v", tt.query, err)
			continue
		}
		if r.Value != tt.want {
			t.Errorf("Evaluate(%q) = %q, want %q", tt.query, r.Value, tt.want)
		}
	}

	if _, err := Evaluate("1 kg to km", Units, nil); !errors.Is(err, ErrNoResult) {
		t.Errorf("mixed dimensions should not convert, got %v", err)
	}
}

func TestEvaluateCurrencies(t *testing.T) {
	rates := Rates{"usd": 1, "eur": 1.1, "gbp": 1.25}
	r, err := Evaluate("10 eur to usd", Currencies, rates)
	if err != nil {
		t.Fatal(err)
	}
	if r.Value != "11.00 USD" {
		t.Errorf("got %q", r.Value)
	}

	if _, err := Evaluate("10 eur to usd", Currencies, nil); !errors.Is(err, ErrNoResult) {
		t.Errorf("no rates should give no result, got %v", err)
	}
	if _, err := Evaluate("10 eur to xyz", Currencies, rates); !errors.Is(err, ErrNoResult) {
		t.Errorf("unknown currency should give no result, got %v", err)
	}
}

func TestEvaluateColors(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"#ff0000 to hsl", "hsl(0, 100%, 50%)"},
		{"#f00 to rgb", "rgb(255, 0, 0)"},
		{"rgb(0, 128, 255) to hex", "#0080ff"},
		{"hsl(120, 100%, 50%) to hex", "#00ff00"},
		{"hsv(240, 100%, 100%) to rgb", "rgb(0, 0, 255)"},
		{"#FFFFFF to hsv", "hsv(0, 0%, 100%)"},
	}
	for _, tt := range tests {
		r, err := Evaluate(tt.query, Colors, nil)
		if err != nil {
			t.Errorf("Evaluate(%q): %v", tt.query, err)
			continue
		}
		if r.Value != tt.want {
			t.Errorf("Evaluate(%q) = %q, want %q", tt.query, r.Value, tt.want)
		}
	}
}

func TestCapabilitiesGateQueries(t *testing.T) {
	if _, err := Evaluate("1 km to m", Math, nil); err == nil {
		t.Error("conversion answered without the units capability")
	}
	if _, err := Evaluate("2+2", Units|Colors, nil); err == nil {
		t.Error("arithmetic answered without the math capability")
	}
}

func TestParseCapabilities(t *testing.T) {
	if got := ParseCapabilities(nil); got != All {
		t.Errorf("empty list = %v, want All", got)
	}
	got := ParseCapabilities([]string{"calc.math", "CALC.COLORS", "bogus"})
	if !got.Has(Math|Colors) || got.Has(Units) {
		t.Errorf("ParseCapabilities = %b", got)
	}
}

func TestRatesEqual(t *testing.T) {
	a := Rates{"usd": 1, "eur": 1.1}
	if !a.Equal(Rates{"eur": 1.1, "usd": 1}) {
		t.Error("equal rates reported different")
	}
	if a.Equal(Rates{"usd": 1, "eur": 1.2}) || a.Equal(Rates{"usd": 1}) {
		t.Error("different rates reported equal")
	}
}
