// Package launcher holds the immutable category definitions items point at.
package launcher

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/lookout/internal/config"
	"github.com/abelbrown/lookout/internal/mode"
)

// Visibility controls when items of a definition take part in a query.
type Visibility int

const (
	Default Visibility = iota
	Persist
	OnlyHome
	SearchOnly
)

func (v Visibility) String() string {
	switch v {
	case Persist:
		return "persist"
	case OnlyHome:
		return "only_home"
	case SearchOnly:
		return "search"
	default:
		return "default"
	}
}

// UnmarshalText parses the config spelling of a visibility.
func (v *Visibility) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "default":
		*v = Default
	case "persist":
		*v = Persist
	case "only_home":
		*v = OnlyHome
	case "search":
		*v = SearchOnly
	default:
		return fmt.Errorf("invalid visibility %q", text)
	}
	return nil
}

// Kind is the variant of a definition.
type Kind int

const (
	App Kind = iota
	Command
	Category
	Web
	Calc
	Music
	Weather
)

var kindNames = map[string]Kind{
	config.KindApp:      App,
	config.KindCommand:  Command,
	config.KindCategory: Category,
	config.KindWeb:      Web,
	config.KindCalc:     Calc,
	config.KindMusic:    Music,
	config.KindWeather:  Weather,
}

func (k Kind) String() string {
	for name, kind := range kindNames {
		if kind == k {
			return name
		}
	}
	return "unknown"
}

// Definition describes one category of items. It is created once by the
// loader and shared by pointer; nothing mutates it afterwards.
type Definition struct {
	Name        string
	DisplayName string
	Alias       string // empty when the category has no mode
	Priority    int
	Home        Visibility
	Async       bool
	Kind        Kind

	UseKeywords    bool
	Engine         string
	Browser        string
	Location       string
	UpdateInterval time.Duration
	Capabilities   []string
}

// Title is the name shown to the user.
func (d *Definition) Title() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.Name
}

// Lane is the alias lane items of this definition belong to.
func (d *Definition) Lane() string {
	if d.Alias == "" {
		return mode.AllLane
	}
	return d.Alias
}

// Mode returns the alias mode the definition contributes, if any.
func (d *Definition) Mode() (mode.Mode, bool) {
	if d.Alias == "" {
		return mode.Mode{}, false
	}
	return mode.NewAlias(d.Alias, d.Title()), true
}

// HasCapability reports whether a calc capability such as "calc.units" is on.
func (d *Definition) HasCapability(name string) bool {
	for _, c := range d.Capabilities {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

// FromConfig builds a definition from its config entry.
func FromConfig(c config.LauncherConfig) (*Definition, error) {
	kind, ok := kindNames[c.Type]
	if !ok {
		return nil, fmt.Errorf("launcher %q: %w: %q", c.Name, config.ErrUnknownKind, c.Type)
	}
	var home Visibility
	if err := home.UnmarshalText([]byte(c.Home)); err != nil {
		return nil, fmt.Errorf("launcher %q: %w", c.Name, err)
	}

	d := &Definition{
		Name:         c.Name,
		DisplayName:  c.DisplayName,
		Alias:        strings.TrimSpace(c.Alias),
		Priority:     c.Priority,
		Home:         home,
		Async:        c.Async,
		Kind:         kind,
		UseKeywords:  c.UseKeywords == nil || *c.UseKeywords,
		Engine:       c.Engine,
		Browser:      c.Browser,
		Location:     c.Location,
		Capabilities: append([]string(nil), c.Capabilities...),
	}
	if c.UpdateInterval > 0 {
		d.UpdateInterval = time.Duration(c.UpdateInterval) * time.Minute
	}
	if kind == Weather && d.UpdateInterval == 0 {
		d.UpdateInterval = time.Hour
	}
	return d, nil
}
