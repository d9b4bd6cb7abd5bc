package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/lookout/internal/item"
)

// weatherGlyphs maps condition classes to a terminal-friendly symbol.
var weatherGlyphs = map[string]string{
	"weather-clear":                         "☀",
	"weather-few-clouds":                    "🌤",
	"weather-many-clouds":                   "☁",
	"weather-mist":                          "🌫",
	"weather-showers":                       "🌧",
	"weather-showers-scattered":             "🌦",
	"weather-freezing-scattered-rain":       "🌧",
	"weather-freezing-scattered-rain-storm": "⛈",
	"weather-storm":                         "⛈",
	"weather-snow-scattered-day":            "🌨",
	"weather-snow-storm":                    "❄",
	"weather-snow-scattered-storm":          "🌨",
}

// renderRow draws one result line of exactly width cells.
func renderRow(d item.Descriptor, width int) string {
	style := NormalItem
	if d.Selected {
		style = SelectedItem
	}
	inner := max(width-style.GetHorizontalFrameSize(), 1)

	var glyph string
	switch d.Kind {
	case "music":
		glyph = d.Icon
	case "weather":
		glyph = weatherGlyphs[d.Icon]
	case "calc":
		glyph = "="
	}

	title := d.Title
	if d.Kind == "calc" {
		title = CalcResult.Render(strings.TrimPrefix(title, "= "))
	}
	left := title
	if glyph != "" {
		left = glyph + " " + left
	}
	if d.Subtitle != "" {
		left += "  " + Subtitle.Render(d.Subtitle)
	}
	tag := CategoryTag.Render(d.Tag)

	room := inner - lipgloss.Width(tag) - 1
	if room < 1 {
		return style.Width(width).Render(truncate(left, inner))
	}
	left = truncate(left, room)
	gap := inner - lipgloss.Width(left) - lipgloss.Width(tag)
	return style.Width(width).Render(left + strings.Repeat(" ", max(gap, 1)) + tag)
}

// truncate shortens s to w cells. Styled text is truncated as plain text.
func truncate(s string, w int) string {
	if lipgloss.Width(s) <= w {
		return s
	}
	return runewidth.Truncate(stripANSI(s), w, "…")
}

// stripANSI removes escape sequences so the text can be measured by rune.
func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// visibleWindow returns the [from, to) range of rows to draw so the cursor
// stays on screen.
func visibleWindow(total, cursor, height int) (int, int) {
	if height <= 0 || total == 0 {
		return 0, 0
	}
	from := 0
	if cursor >= height {
		from = cursor - height + 1
	}
	return from, min(from+height, total)
}

// renderStatusBar renders position info and key hints.
func renderStatusBar(cursor, total, width int, refreshing bool, spin string) string {
	var left string
	switch {
	case total == 0:
		left = " no results "
	default:
		left = fmt.Sprintf(" %d/%d ", cursor+1, total)
	}
	if refreshing {
		left += spin + " refreshing "
	}

	var hints []string
	for _, b := range keys.hints() {
		h := b.Help()
		hints = append(hints, StatusBarKey.Render(h.Key)+StatusBarText.Render(":"+h.Desc))
	}
	right := strings.Join(hints, " ")

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right)-StatusBar.GetHorizontalFrameSize(), 0)
	return StatusBar.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}
