package action

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/abelbrown/lookout/internal/config"
	"github.com/abelbrown/lookout/internal/logging"
	"github.com/abelbrown/lookout/internal/mode"
)

// ErrNoMedia is returned for a Media action when no controller is set.
var ErrNoMedia = errors.New("no media controller")

// Recorder counts launches.
type Recorder interface {
	Increment(ctx context.Context, key string) error
}

// Controller sends a method call to a media player.
type Controller interface {
	Control(ctx context.Context, player, method string) error
}

// Outcome tells the UI what to do after an action ran.
type Outcome struct {
	Close  bool      // hide the launcher
	Switch bool      // enter Mode
	Mode   mode.Mode // target of a SwitchMode action
}

// Executor runs actions. Usage and media may be nil.
type Executor struct {
	apps  config.DefaultAppsConfig
	usage Recorder
	media Controller

	spawn func(name string, args ...string) error
	copy  func(string) error
}

// NewExecutor returns an executor delegating to the given default programs.
func NewExecutor(apps config.DefaultAppsConfig, usage Recorder, media Controller) *Executor {
	return &Executor{
		apps:  apps,
		usage: usage,
		media: media,
		spawn: spawn,
		copy:  clipboard.WriteAll,
	}
}

// Execute runs a. query is the raw search text, substituted into Open URLs.
func (e *Executor) Execute(ctx context.Context, a Action, query string) (Outcome, error) {
	switch a.Kind {
	case Launch:
		if err := e.launch(a); err != nil {
			return Outcome{}, err
		}
		if a.UsageKey != "" && e.usage != nil {
			if err := e.usage.Increment(ctx, a.UsageKey); err != nil {
				logging.Warn("usage count not stored", "key", a.UsageKey, "err", err)
			}
		}
		return Outcome{Close: true}, nil

	case Open:
		browser := a.Browser
		if browser == "" {
			browser = e.apps.Browser
		}
		target := strings.ReplaceAll(a.URL, "{keyword}", url.QueryEscape(query))
		if err := e.spawn(browser, target); err != nil {
			return Outcome{}, fmt.Errorf("open %s: %w", target, err)
		}
		return Outcome{Close: true}, nil

	case Copy:
		if err := e.copy(a.Content); err != nil {
			return Outcome{}, fmt.Errorf("copy to clipboard: %w", err)
		}
		return Outcome{Close: true}, nil

	case SwitchMode:
		return Outcome{Switch: true, Mode: a.Mode}, nil

	case Media:
		if e.media == nil {
			return Outcome{}, ErrNoMedia
		}
		if err := e.media.Control(ctx, a.Player, a.Method); err != nil {
			return Outcome{}, fmt.Errorf("media %s: %w", a.Method, err)
		}
		return Outcome{}, nil

	default:
		return Outcome{}, nil
	}
}

func (e *Executor) launch(a Action) error {
	if a.Terminal {
		term := e.apps.Terminal
		if term == "" {
			term = "xterm"
		}
		return e.spawn(term, "-e", "sh", "-c", a.Exec)
	}
	return e.spawn("sh", "-c", a.Exec)
}

// spawn starts a detached process and reaps it in the background.
func spawn(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			logging.Debug("child exited", "cmd", name, "err", err)
		}
	}()
	return nil
}
