package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnknownKind is returned by Validate for a launcher type it does not know.
var ErrUnknownKind = errors.New("unknown launcher type")

// Launcher types understood by the loader.
const (
	KindApp      = "app_launcher"
	KindCommand  = "command"
	KindCategory = "categories"
	KindWeb      = "web_launcher"
	KindCalc     = "calculation"
	KindMusic    = "audio_sink"
	KindWeather  = "weather"
)

// Config is the persistent application configuration
type Config struct {
	Launchers   []LauncherConfig  `json:"launchers"`
	Search      SearchConfig      `json:"search"`
	Units       UnitsConfig       `json:"units"`
	IPC         IPCConfig         `json:"ipc"`
	Paths       PathsConfig       `json:"paths"`
	DefaultApps DefaultAppsConfig `json:"default_apps"`
}

// LauncherConfig describes one category of items. Type-specific fields are
// ignored by launchers that do not use them.
type LauncherConfig struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	Alias       string `json:"alias,omitempty"`
	Type        string `json:"type"`
	Priority    int    `json:"priority"`
	Home        string `json:"home,omitempty"` // "default", "persist", "only_home", "search"
	Async       bool   `json:"async,omitempty"`

	// app_launcher
	UseKeywords *bool `json:"use_keywords,omitempty"`

	// web_launcher
	Engine  string `json:"engine,omitempty"`
	Browser string `json:"browser,omitempty"`

	// weather
	Location       string `json:"location,omitempty"`
	UpdateInterval int    `json:"update_interval,omitempty"` // minutes

	// calculation
	Capabilities []string `json:"capabilities,omitempty"`

	// command, categories
	Commands []CommandConfig `json:"commands,omitempty"`
}

// CommandConfig is a named entry of a command or categories launcher. For
// categories, Exec holds the alias short code the entry switches to.
type CommandConfig struct {
	Name     string `json:"name"`
	Exec     string `json:"exec"`
	Icon     string `json:"icon,omitempty"`
	Keywords string `json:"search_string,omitempty"`
	Terminal bool   `json:"terminal,omitempty"`
}

// SearchConfig tunes the ranking pipeline.
type SearchConfig struct {
	// CategoryThreshold is the minimum priority an item needs to be listed
	// outside its own alias lane.
	CategoryThreshold float64 `json:"category_threshold"`
	// Decimals sets how many launch counts the usage fraction distinguishes.
	Decimals int `json:"decimals"`
}

// UnitsConfig holds display units for weather and conversions
type UnitsConfig struct {
	Temperature string `json:"temperature"` // "C" or "F"
	Length      string `json:"length"`      // "meters" or "feet"
	Currency    string `json:"currency"`
}

// IPCConfig configures the single-instance socket
type IPCConfig struct {
	Socket string `json:"socket,omitempty"`
}

// PathsConfig holds on-disk locations
type PathsConfig struct {
	DataDir     string   `json:"data_dir,omitempty"`
	DesktopDirs []string `json:"desktop_dirs,omitempty"`
}

// DefaultAppsConfig names the programs actions are delegated to
type DefaultAppsConfig struct {
	Terminal    string `json:"terminal"`
	Browser     string `json:"browser"`
	MediaPlayer string `json:"media_player,omitempty"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	keywords := true
	return &Config{
		Launchers: []LauncherConfig{
			{Name: "Calculator", Alias: "cc", Type: KindCalc, Priority: 1, Async: true,
				Capabilities: []string{"calc.math", "calc.units", "calc.currencies", "calc.colors"}},
			{Name: "Weather", Alias: "wt", Type: KindWeather, Priority: 1, Home: "only_home", Async: true,
				Location: "berlin", UpdateInterval: 60},
			{Name: "Music", Alias: "mu", Type: KindMusic, Priority: 1, Home: "only_home", Async: true},
			{Name: "App Launcher", Alias: "app", Type: KindApp, Priority: 2, UseKeywords: &keywords},
			{Name: "Categories", Type: KindCategory, Priority: 3, Home: "only_home", Commands: []CommandConfig{
				{Name: "Apps", Exec: "app", Icon: "applications-all"},
				{Name: "Calculator", Exec: "cc", Icon: "accessories-calculator"},
				{Name: "Weather", Exec: "wt", Icon: "weather-clear"},
			}},
			{Name: "System", Alias: "sys", Type: KindCommand, Priority: 4, Home: "search", Commands: []CommandConfig{
				{Name: "Lock Screen", Exec: "loginctl lock-session", Keywords: "lock;screen"},
				{Name: "Suspend", Exec: "systemctl suspend", Keywords: "sleep;suspend"},
			}},
			{Name: "Web Search", Alias: "g", Type: KindWeb, Priority: 100, Home: "persist",
				Engine: "https://duckduckgo.com/?q={keyword}"},
		},
		Search: SearchConfig{
			CategoryThreshold: 1.0,
			Decimals:          2,
		},
		Units: UnitsConfig{
			Temperature: "C",
			Length:      "meters",
			Currency:    "eur",
		},
		DefaultApps: DefaultAppsConfig{
			Terminal: "xterm",
			Browser:  "xdg-open",
		},
	}
}

// DataDir returns the directory holding the database, cache and logs.
func (c *Config) DataDir() string {
	if c.Paths.DataDir != "" {
		return expandHome(c.Paths.DataDir)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".lookout")
}

// SocketPath returns the single-instance socket location.
func (c *Config) SocketPath() string {
	if c.IPC.Socket != "" {
		return expandHome(c.IPC.Socket)
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "lookout.sock")
	}
	return filepath.Join(os.TempDir(), "lookout.sock")
}

// DesktopDirs returns the directories scanned for .desktop entries.
func (c *Config) DesktopDirs() []string {
	if len(c.Paths.DesktopDirs) > 0 {
		dirs := make([]string, len(c.Paths.DesktopDirs))
		for i, d := range c.Paths.DesktopDirs {
			dirs[i] = expandHome(d)
		}
		return dirs
	}
	home, _ := os.UserHomeDir()
	return []string{
		"/usr/share/applications",
		"/usr/local/share/applications",
		filepath.Join(home, ".local", "share", "applications"),
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".lookout", "config.json")
}

// Load reads config from path, or returns defaults when it does not exist.
// An empty path means ConfigPath().
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Launchers = nil
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Search.Decimals <= 0 {
		cfg.Search.Decimals = 2
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to path
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks launcher types and visibility names.
func (c *Config) Validate() error {
	for i, l := range c.Launchers {
		switch l.Type {
		case KindApp, KindCommand, KindCategory, KindWeb, KindCalc, KindMusic, KindWeather:
		default:
			return fmt.Errorf("launcher %d (%q): %w: %q", i, l.Name, ErrUnknownKind, l.Type)
		}
		switch l.Home {
		case "", "default", "persist", "only_home", "search":
		default:
			return fmt.Errorf("launcher %d (%q): invalid home value %q", i, l.Name, l.Home)
		}
		if l.Priority < 0 {
			return fmt.Errorf("launcher %d (%q): negative priority", i, l.Name)
		}
		if l.Type == KindWeather && l.Location == "" {
			return fmt.Errorf("launcher %d (%q): weather launcher needs a location", i, l.Name)
		}
	}
	return nil
}

func expandHome(p string) string {
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return p
}
