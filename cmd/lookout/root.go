package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/abelbrown/lookout/internal/action"
	"github.com/abelbrown/lookout/internal/app"
	"github.com/abelbrown/lookout/internal/cache"
	"github.com/abelbrown/lookout/internal/config"
	"github.com/abelbrown/lookout/internal/events"
	"github.com/abelbrown/lookout/internal/fetch"
	"github.com/abelbrown/lookout/internal/ipc"
	"github.com/abelbrown/lookout/internal/item"
	"github.com/abelbrown/lookout/internal/logging"
	"github.com/abelbrown/lookout/internal/pool"
	"github.com/abelbrown/lookout/internal/rank"
	"github.com/abelbrown/lookout/internal/refresh"
	"github.com/abelbrown/lookout/internal/store"
	"github.com/abelbrown/lookout/internal/ui"
	"github.com/abelbrown/lookout/internal/work"
)

const (
	fetchTimeout   = 15 * time.Second
	refreshEvery   = 30 * time.Second
	refreshWorkers = 4
)

type rootOptions struct {
	configPath string
	socket     string
	debug      bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "lookout",
		Short:        "Keyboard launcher for applications, commands and quick answers",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			// Another instance is up: raise it and leave.
			if err := ipc.Signal(cfg.SocketPath(), ipc.CmdOpen); err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "lookout: raised running instance")
				return nil
			}
			return run(cmd.Context(), opts, cfg)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.lookout/config.json)")
	cmd.PersistentFlags().StringVar(&opts.socket, "socket", "", "single-instance socket path")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "debug logging")

	cmd.AddCommand(newSignalCommand(opts, ipc.CmdOpen, "Raise the running instance without starting a new one"))
	cmd.AddCommand(newSignalCommand(opts, ipc.CmdReload, "Make the running instance re-read its config and rescan entries"))
	cmd.AddCommand(newStatsCommand(opts))
	cmd.AddCommand(newEventsCommand(opts))
	return cmd
}

// load reads the config and applies flag overrides.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.socket != "" {
		cfg.IPC.Socket = o.socket
	}
	return cfg, nil
}

func run(ctx context.Context, opts *rootOptions, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	if err := logging.Init(filepath.Join(dataDir, "logs"), opts.debug); err != nil {
		return err
	}
	defer logging.Close()

	// Event log
	evLog := events.NewNullLogger()
	ring := events.NewRing(events.DefaultRingSize)
	if f, err := os.OpenFile(eventLogPath(cfg), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
		logging.Warn("event log disabled", "error", err)
	} else {
		defer f.Close()
		evLog = events.NewLogger(f)
	}
	evLog.SetRing(ring)
	defer evLog.Close()

	st, err := store.Open(filepath.Join(dataDir, "lookout.db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	kv, err := cache.Open(filepath.Join(dataDir, "cache"))
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer kv.Close()

	fetcher := fetch.NewFetcher(fetchTimeout)
	media := fetch.NewMPRIS(cfg.DefaultApps.MediaPlayer)
	defer media.Close()
	sources := item.Sources{
		Weather:  cache.NewWeather(kv, fetch.NewWeather(fetcher, cfg.Units)),
		Media:    media,
		Currency: cache.NewCurrency(kv, fetch.NewCurrency(fetcher), cache.DefaultRatesTTL),
	}

	loaded, err := app.NewLoader(cfg, st).Load(ctx)
	if err != nil {
		return err
	}

	wp, err := work.NewPool(refreshWorkers)
	if err != nil {
		return err
	}
	defer wp.Release()
	tasks := wp.Subscribe()
	defer wp.Unsubscribe(tasks)
	go forwardFailures(tasks, evLog)

	items := pool.New(loaded.Items)
	coord := refresh.New(items, wp, sources)
	defer coord.Stop()

	exec := action.NewExecutor(cfg.DefaultApps, st, media)

	rankOpts := rank.DefaultOptions()
	rankOpts.CategoryThreshold = cfg.Search.CategoryThreshold

	model := ui.NewApp(ui.AppConfig{
		Pool:  items,
		Known: loaded.Known,
		Rank:  rankOpts,
		Begin: coord.Begin,
		Refresh: func(gen uint64) tea.Cmd {
			return func() tea.Msg {
				batch := coord.Collect(ctx, gen)
				applied := coord.Apply(batch)
				logging.Debug("refresh done", "batch", batch.String(), "applied", applied)
				return ui.RefreshDone{
					Generation: batch.Generation,
					Applied:    applied,
					Updated:    len(batch.Updates),
					Failed:     batch.Failed,
				}
			}
		},
		Execute: func(a action.Action, query string) tea.Cmd {
			return func() tea.Msg {
				out, err := exec.Execute(ctx, a, query)
				return ui.ExecDone{Kind: a.Kind, Outcome: out, Err: err}
			}
		},
		RefreshEvery: refreshEvery,
		Events:       evLog,
		Ring:         ring,
		Work:         wp,
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	rl := &reloader{load: opts.load, usage: st, coord: coord, send: program.Send}

	socket := cfg.SocketPath()
	srv, err := ipc.Listen(socket, func(cmd string) error {
		switch cmd {
		case ipc.CmdOpen:
			program.Send(ui.OpenMsg{})
			return nil
		case ipc.CmdReload:
			return rl.reload(ctx)
		case ipc.CmdPing:
			return nil
		}
		return fmt.Errorf("unknown command %q", cmd)
	})
	if errors.Is(err, ipc.ErrRunning) {
		// Lost the race against another instance starting up.
		return ipc.Signal(socket, ipc.CmdOpen)
	}
	if err != nil {
		return fmt.Errorf("listen on %s: %w", socket, err)
	}
	defer srv.Close()
	go func() {
		if err := srv.Serve(); err != nil {
			logging.Warn("ipc server stopped", "error", err)
		}
	}()

	evLog.Emit(events.Event{Kind: events.KindStartup, Comp: "main", Count: len(loaded.Items)})
	_, err = program.Run()
	evLog.Emit(events.Event{Kind: events.KindShutdown, Comp: "main"})
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// reloader rebuilds the item set from a freshly read config and hands it to
// the running UI.
type reloader struct {
	load  func() (*config.Config, error)
	usage app.UsageSource
	coord *refresh.Coordinator
	send  func(tea.Msg)
}

func (r *reloader) reload(ctx context.Context) error {
	cfg, err := r.load()
	if err != nil {
		return fmt.Errorf("reload config: %w", err)
	}
	loaded, err := app.NewLoader(cfg, r.usage).Load(ctx)
	if err != nil {
		return fmt.Errorf("reload items: %w", err)
	}
	gen := r.coord.Reload(loaded.Items)
	logging.Info("reloaded", "items", len(loaded.Items), "modes", len(loaded.Known), "generation", gen)
	r.send(ui.ReloadMsg{Generation: gen, Known: loaded.Known, Items: len(loaded.Items)})
	return nil
}

func eventLogPath(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir(), "events.jsonl")
}

// forwardFailures records failed background tasks in the event log until
// tasks is closed.
func forwardFailures(tasks <-chan work.Event, evLog *events.Logger) {
	for ev := range tasks {
		if ev.Change != "failed" {
			continue
		}
		var msg string
		if ev.Task.Error != nil {
			msg = ev.Task.Error.Error()
		}
		evLog.Emit(events.Event{
			Level: events.LevelWarn,
			Kind:  events.KindTaskFailed,
			Comp:  "refresh",
			Msg:   ev.Task.Description,
			Err:   msg,
			Dur:   ev.Task.Duration(),
		})
	}
}
