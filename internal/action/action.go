// Package action describes what executing an item does and runs it.
package action

import "github.com/abelbrown/lookout/internal/mode"

// Kind enumerates the things an item can do when executed.
type Kind int

const (
	None Kind = iota
	Launch
	Open
	Copy
	SwitchMode
	Media
)

func (k Kind) String() string {
	switch k {
	case Launch:
		return "launch"
	case Open:
		return "open"
	case Copy:
		return "copy"
	case SwitchMode:
		return "switch_mode"
	case Media:
		return "media"
	default:
		return "none"
	}
}

// Action is an execution descriptor built by an item. Only the fields of
// its Kind are set.
type Action struct {
	Kind Kind

	// Launch
	Exec     string
	Terminal bool

	// Open. URL may contain {keyword}, replaced by the query.
	URL     string
	Browser string

	// Copy
	Content string

	// SwitchMode
	Mode mode.Mode

	// Media
	Player string
	Method string

	// UsageKey is counted by the usage store when non-empty.
	UsageKey string
}
