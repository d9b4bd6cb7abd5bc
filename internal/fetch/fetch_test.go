package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/abelbrown/lookout/internal/config"
)

const wttrJSON = `{
  "current_condition": [{
    "temp_C": "12", "temp_F": "54", "weatherCode": "116",
    "winddirDegree": "90", "windspeedKmph": "15", "windspeedMiles": "9"
  }],
  "weather": [{"astronomy": [{"sunset": "07:42 PM"}]}]
}`

func TestWeatherFetch(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Header.Get("User-Agent") != userAgent {
			t.Errorf("missing user agent")
		}
		w.Write([]byte(wttrJSON))
	}))
	defer server.Close()

	src := NewWeather(NewFetcher(5*time.Second), config.UnitsConfig{Temperature: "C", Length: "meters"})
	src.endpoint = server.URL + "/%s"

	r, err := src.Weather(context.Background(), "new york", time.Hour)
	if err != nil {
		t.Fatalf("Weather failed: %v", err)
	}
	if gotPath != "/new york" {
		t.Errorf("path = %q", gotPath)
	}
	if r.Location != "New York" {
		t.Errorf("location = %q", r.Location)
	}
	if r.Temperature != "12°C" {
		t.Errorf("temperature = %q", r.Temperature)
	}
	if r.Wind != "→ 15km/h" {
		t.Errorf("wind = %q", r.Wind)
	}
	if r.Condition != "weather-few-clouds" {
		t.Errorf("condition = %q", r.Condition)
	}
	if r.Sunset != "19:42" {
		t.Errorf("sunset = %q", r.Sunset)
	}
}

func TestWeatherImperialUnits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(wttrJSON))
	}))
	defer server.Close()

	src := NewWeather(NewFetcher(5*time.Second), config.UnitsConfig{Temperature: "F", Length: "feet"})
	src.endpoint = server.URL + "/%s"

	r, err := src.Weather(context.Background(), "berlin", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if r.Temperature != "54°F" || r.Wind != "→ 9mph" {
		t.Errorf("got %q / %q", r.Temperature, r.Wind)
	}
}

func TestWeatherErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, ""},
		{"malformed", http.StatusOK, "{not json"},
		{"no conditions", http.StatusOK, `{"current_condition": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			src := NewWeather(NewFetcher(5*time.Second), config.UnitsConfig{})
			src.endpoint = server.URL + "/%s"
			if _, err := src.Weather(context.Background(), "berlin", time.Hour); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFetchRespectsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	src := NewWeather(NewFetcher(5*time.Second), config.UnitsConfig{})
	src.endpoint = server.URL + "/%s"

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := src.Weather(ctx, "berlin", time.Hour); err == nil {
		t.Error("expected cancellation error")
	}
}

func TestWindArrow(t *testing.T) {
	tests := []struct {
		deg  float64
		want string
	}{
		{0, "↑"}, {22, "↑"}, {23, "↗"}, {90, "→"}, {180, "↓"}, {270, "←"}, {338, "↑"}, {337, "↖"},
	}
	for _, tt := range tests {
		if got := WindArrow(tt.deg); got != tt.want {
			t.Errorf("WindArrow(%v) = %q, want %q", tt.deg, got, tt.want)
		}
	}
}

func TestCurrencyRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "FX_IDC") {
			t.Errorf("unexpected body %s", body)
		}
		w.Write([]byte(`{"data": [
			{"s": "FX_IDC:EURUSD", "d": ["EURUSD", "forex", 1.08]},
			{"s": "FX_IDC:JPYUSD", "d": ["JPYUSD", "forex", 0.0067]},
			{"s": "broken", "d": []}
		]}`))
	}))
	defer server.Close()

	src := NewCurrency(NewFetcher(5 * time.Second))
	src.endpoint = server.URL

	rates, err := src.Rates(context.Background())
	if err != nil {
		t.Fatalf("Rates: %v", err)
	}
	if rates["usd"] != 1 || rates["eur"] != 1.08 || rates["jpy"] != 0.0067 {
		t.Errorf("rates = %v", rates)
	}
	if len(rates) != 3 {
		t.Errorf("expected 3 rates, got %d", len(rates))
	}
}

func TestCurrencyEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	src := NewCurrency(NewFetcher(5 * time.Second))
	src.endpoint = server.URL
	if _, err := src.Rates(context.Background()); !errors.Is(err, ErrNoRates) {
		t.Errorf("expected ErrNoRates, got %v", err)
	}
}

func TestPickPlayer(t *testing.T) {
	names := []string{
		"org.freedesktop.DBus",
		"org.mpris.MediaPlayer2.firefox.instance1",
		"org.mpris.MediaPlayer2.spotify",
	}
	tests := []struct {
		preferred string
		want      string
	}{
		{"", "org.mpris.MediaPlayer2.firefox.instance1"},
		{"spotify", "org.mpris.MediaPlayer2.spotify"},
		{"vlc", "org.mpris.MediaPlayer2.firefox.instance1"},
	}
	for _, tt := range tests {
		got, ok := pickPlayer(names, tt.preferred)
		if !ok || got != tt.want {
			t.Errorf("pickPlayer(%q) = %q, %v; want %q", tt.preferred, got, ok, tt.want)
		}
	}
	if _, ok := pickPlayer([]string{"org.freedesktop.DBus"}, ""); ok {
		t.Error("expected no player")
	}
}

func TestTrackFromProps(t *testing.T) {
	props := map[string]dbus.Variant{
		"PlaybackStatus": dbus.MakeVariant("Playing"),
		"Metadata": dbus.MakeVariant(map[string]dbus.Variant{
			"xesam:title":  dbus.MakeVariant("Windowlicker"),
			"xesam:album":  dbus.MakeVariant("Windowlicker EP"),
			"xesam:artist": dbus.MakeVariant([]string{"Aphex Twin"}),
		}),
	}
	tr := trackFromProps("org.mpris.MediaPlayer2.spotify", props)
	if !tr.Playing || tr.Title != "Windowlicker" || tr.Artists != "Aphex Twin" || tr.Album != "Windowlicker EP" {
		t.Errorf("track = %+v", tr)
	}

	paused := trackFromProps("p", map[string]dbus.Variant{"PlaybackStatus": dbus.MakeVariant("Paused")})
	if paused.Playing || paused.Title != "" {
		t.Errorf("paused track = %+v", paused)
	}
}

func TestControlRejectsUnknownMethod(t *testing.T) {
	m := NewMPRIS("")
	if err := m.Control(context.Background(), "org.mpris.MediaPlayer2.x", "Stop"); err == nil {
		t.Error("expected error for unsupported method")
	}
}
