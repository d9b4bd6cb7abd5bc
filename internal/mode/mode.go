// Package mode holds the launcher's mode state machine.
package mode

import "strings"

// AllLane is the lane of the Home and Search modes.
const AllLane = "all"

// Kind enumerates the mode states.
type Kind int

const (
	Home Kind = iota
	Search
	Alias
)

// Mode is the active mode. Short and Name are only set for Alias.
type Mode struct {
	Kind  Kind
	Short string
	Name  string
}

// NewAlias returns the Alias mode for a short code.
func NewAlias(short, name string) Mode {
	if name == "" {
		name = short
	}
	return Mode{Kind: Alias, Short: short, Name: name}
}

// Lane is the key items are gated on: "all" or the alias short code.
func (m Mode) Lane() string {
	if m.Kind == Alias {
		return m.Short
	}
	return AllLane
}

// Label is the human-readable mode name shown next to the search bar.
func (m Mode) Label() string {
	switch m.Kind {
	case Home:
		return "All"
	case Search:
		return "Search"
	default:
		return m.Name
	}
}

// IsHome reports whether the empty-query home view is active for query.
func (m Mode) IsHome(query string) bool {
	return query == "" && m.Lane() == AllLane
}

// Transition computes the next mode for the current query text. The second
// return value tells the caller to clear the input field, which happens
// when the user typed an alias short code followed by a single space.
func Transition(cur Mode, query string, known []Mode) (Mode, bool) {
	switch {
	case cur.Kind == Search && query == "":
		return Mode{Kind: Home}, false
	case cur.Kind == Home && query != "":
		return Mode{Kind: Search}, false
	case (cur.Kind == Search || cur.Kind == Alias) && query != "":
		input, ok := strings.CutSuffix(query, " ")
		if !ok {
			return cur, false
		}
		for _, m := range known {
			if m.Kind == Alias && strings.EqualFold(m.Short, input) {
				return m, true
			}
		}
	}
	return cur, false
}

// Dedup keeps the first Alias mode for every short code (case-insensitive)
// and drops everything else.
func Dedup(modes []Mode) []Mode {
	seen := make(map[string]bool, len(modes))
	out := make([]Mode, 0, len(modes))
	for _, m := range modes {
		if m.Kind != Alias || m.Short == "" {
			continue
		}
		key := strings.ToLower(m.Short)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	return out
}
