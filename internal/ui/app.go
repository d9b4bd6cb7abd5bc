package ui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/lookout/internal/action"
	"github.com/abelbrown/lookout/internal/events"
	"github.com/abelbrown/lookout/internal/item"
	"github.com/abelbrown/lookout/internal/mode"
	"github.com/abelbrown/lookout/internal/pool"
	"github.com/abelbrown/lookout/internal/rank"
	"github.com/abelbrown/lookout/internal/session"
)

// AppConfig holds the collaborators of the App. Refresh and Execute return
// commands so the App never blocks on I/O.
type AppConfig struct {
	Pool  *pool.Pool
	Known []mode.Mode
	Rank  rank.Options

	// Begin starts a new refresh generation and returns it. Refresh collects
	// the async items under gen and offers the batch to the pool; the
	// command reports RefreshDone.
	Begin   func() uint64
	Refresh func(gen uint64) tea.Cmd
	// Execute runs an action. The command reports ExecDone.
	Execute func(a action.Action, query string) tea.Cmd

	// RefreshEvery re-runs Refresh periodically under the current
	// generation; zero disables it.
	RefreshEvery time.Duration

	Events *events.Logger
	Ring   *events.Ring // debug overlay source, may be nil
	Work   WorkView     // may be nil
}

// App is the root Bubble Tea model.
// IMPORTANT: App does NOT hold the fetchers or the store. It reads pool
// snapshots and talks to everything else via commands.
type App struct {
	cfg     AppConfig
	session *session.Session

	input   textinput.Model
	spinner spinner.Model

	snap   *pool.Snapshot // snapshot the committed results index into
	cursor int

	refreshGen uint64 // latest generation started
	inflight   int    // collections of refreshGen still running
	showDebug  bool
	err        error
	width      int
	height     int
	ready      bool
}

// NewApp creates the App in Home mode.
func NewApp(cfg AppConfig) App {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "Search"
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	if cfg.Rank == (rank.Options{}) {
		cfg.Rank = rank.DefaultOptions()
	}

	a := App{
		cfg:     cfg,
		session: session.New(cfg.Known),
		input:   ti,
		spinner: sp,
	}
	if cfg.Refresh != nil {
		// Init collects the first generation.
		if cfg.Begin != nil {
			a.refreshGen = cfg.Begin()
		}
		a.inflight = 1
	}
	return a
}

// Init runs the home query and the first refresh.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, a.spinner.Tick, a.runQuery()}
	if a.cfg.Refresh != nil {
		a.emit(events.Event{Kind: events.KindRefreshStart, Comp: "refresh", Generation: a.refreshGen})
		cmds = append(cmds, a.cfg.Refresh(a.refreshGen))
	}
	if a.cfg.RefreshEvery > 0 {
		cmds = append(cmds, a.tick())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if events.TraceEnabled() {
		switch msg.(type) {
		case spinner.TickMsg:
		default:
			a.cfg.Events.Emit(events.Event{Level: events.LevelDebug, Kind: events.KindMsgReceived, Comp: "ui", Msg: fmt.Sprintf("%T", msg)})
		}
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.input.Width = max(msg.Width-20, 10)
		a.ready = true
		return a, nil

	case ResultsMsg:
		a.handleResults(msg)
		return a, nil

	case RefreshDone:
		if msg.Generation == a.refreshGen && a.inflight > 0 {
			a.inflight--
		}
		if !msg.Applied {
			a.emit(events.Event{Kind: events.KindRefreshDiscard, Comp: "refresh", Generation: msg.Generation, Count: msg.Updated})
			return a, nil
		}
		a.emit(events.Event{Kind: events.KindRefreshApply, Comp: "refresh", Generation: msg.Generation, Count: msg.Updated})
		a.session.Invalidate()
		return a, a.runQuery()

	case ExecDone:
		return a.handleExecDone(msg)

	case OpenMsg:
		a.session.Reset()
		a.input.SetValue("")
		a.cursor = 0
		a.err = nil
		a.emit(events.Event{Kind: events.KindActivate, Comp: "ui"})
		cmd := tea.Batch(a.runQuery(), a.beginRefresh())
		return a, cmd

	case ReloadMsg:
		return a.handleReload(msg)

	case RefreshTick:
		var refresh tea.Cmd
		if a.inflight == 0 {
			refresh = a.collect()
		}
		cmd := tea.Batch(refresh, a.tick())
		return a, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case key.Matches(msg, keys.Down):
		if a.cursor < len(a.session.Results())-1 {
			a.cursor++
		}
		return a, nil

	case key.Matches(msg, keys.Debug):
		a.showDebug = !a.showDebug
		return a, nil

	case key.Matches(msg, keys.Exec):
		return a, a.execSelected()

	case key.Matches(msg, keys.Back) && a.input.Value() == "":
		if a.session.EmptyBackspace() {
			a.emitMode()
			return a, a.runQuery()
		}
		return a, nil
	}

	a.err = nil
	var inputCmd tea.Cmd
	a.input, inputCmd = a.input.Update(msg)
	runCmd := a.setQuery(a.input.Value())
	return a, tea.Batch(inputCmd, runCmd)
}

// setQuery feeds new input text to the session and starts a run when the
// results are out of date.
func (a *App) setQuery(value string) tea.Cmd {
	if value == a.session.Query() && !a.session.NeedsRun() {
		return nil
	}
	before := a.session.Mode()
	if a.session.Input(value) {
		a.input.SetValue("")
	}
	if a.session.Mode() != before {
		a.emitMode()
	}
	if !a.session.NeedsRun() {
		return nil
	}
	return a.runQuery()
}

// runQuery starts a pipeline run over the current pool snapshot.
func (a *App) runQuery() tea.Cmd {
	if a.cfg.Pool == nil {
		return nil
	}
	run := a.session.Start(context.Background())
	snap := a.cfg.Pool.Snapshot()
	opts := a.cfg.Rank
	a.emit(events.Event{Kind: events.KindQueryStart, Comp: "ui", RunID: run.ID, Query: run.Query, Mode: run.Mode.Label()})

	return func() tea.Msg {
		start := time.Now()
		idx, err := rank.Run(run.Ctx, snap.Items, run.Mode, run.Query, opts)
		return ResultsMsg{Run: run, Snapshot: snap, Indices: idx, Dur: time.Since(start), Err: err}
	}
}

func (a *App) handleResults(msg ResultsMsg) {
	ev := events.Event{Comp: "ui", RunID: msg.Run.ID, Query: msg.Run.Query, Mode: msg.Run.Mode.Label(), Dur: msg.Dur}
	if msg.Err != nil {
		ev.Kind = events.KindQueryCancel
		if !errors.Is(msg.Err, context.Canceled) {
			ev.Err = msg.Err.Error()
		}
		a.emit(ev)
		return
	}
	if !a.session.Commit(msg.Run, msg.Indices) {
		ev.Kind = events.KindQueryStale
		a.emit(ev)
		return
	}

	a.snap = msg.Snapshot
	a.cursor = 0
	ev.Kind = events.KindQueryComplete
	ev.Count = len(msg.Indices)
	a.emit(ev)
}

// selected returns the highlighted item.
func (a App) selected() (item.Item, bool) {
	results := a.session.Results()
	if a.snap == nil || a.cursor < 0 || a.cursor >= len(results) {
		return item.Item{}, false
	}
	idx := results[a.cursor]
	if idx >= len(a.snap.Items) {
		return item.Item{}, false
	}
	return a.snap.Items[idx], true
}

func (a *App) execSelected() tea.Cmd {
	it, ok := a.selected()
	if !ok || a.cfg.Execute == nil {
		return nil
	}
	act, ok := it.BuildExec(a.session.Committed())
	if !ok {
		return nil
	}
	a.emit(events.Event{Kind: events.KindExec, Comp: "exec", Msg: act.Kind.String() + " " + it.Def.Title(), Query: a.session.Query()})
	return a.cfg.Execute(act, a.session.Query())
}

func (a App) handleExecDone(msg ExecDone) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		a.err = msg.Err
		a.emit(events.Event{Level: events.LevelError, Kind: events.KindExecError, Comp: "exec", Msg: msg.Kind.String(), Err: msg.Err.Error()})
		return a, nil
	}
	switch {
	case msg.Outcome.Switch:
		a.session.SetMode(msg.Outcome.Mode)
		a.input.SetValue("")
		a.emitMode()
		return a, a.runQuery()
	case msg.Outcome.Close:
		return a, tea.Quit
	}
	return a, nil
}

// handleReload adopts a rebuilt item set. The pool and the generation have
// already moved; an alias mode whose launcher is gone falls back to Home.
func (a App) handleReload(msg ReloadMsg) (tea.Model, tea.Cmd) {
	a.session.SetKnown(msg.Known)
	if m := a.session.Mode(); m.Kind == mode.Alias && !slices.ContainsFunc(a.session.Known(), func(k mode.Mode) bool {
		return k.Lane() == m.Lane()
	}) {
		a.session.SetMode(mode.Mode{Kind: mode.Home})
		a.input.SetValue("")
		a.emitMode()
	}
	a.session.Invalidate()
	a.refreshGen = msg.Generation
	a.inflight = 0
	a.emit(events.Event{Kind: events.KindReload, Comp: "ui", Generation: msg.Generation, Count: msg.Items})

	cmd := tea.Batch(a.runQuery(), a.collect())
	return a, cmd
}

// beginRefresh starts a new generation and collects it. Collections of
// older generations still running no longer count as in flight.
func (a *App) beginRefresh() tea.Cmd {
	if a.cfg.Refresh == nil {
		return nil
	}
	if a.cfg.Begin != nil {
		a.refreshGen = a.cfg.Begin()
	}
	a.inflight = 0
	return a.collect()
}

// collect refreshes under the current generation.
func (a *App) collect() tea.Cmd {
	if a.cfg.Refresh == nil {
		return nil
	}
	a.inflight++
	a.emit(events.Event{Kind: events.KindRefreshStart, Comp: "refresh", Generation: a.refreshGen})
	return a.cfg.Refresh(a.refreshGen)
}

// Refreshing reports whether a refresh of the latest generation is running.
func (a App) Refreshing() bool {
	return a.inflight > 0
}

func (a App) tick() tea.Cmd {
	return tea.Tick(a.cfg.RefreshEvery, func(time.Time) tea.Msg { return RefreshTick{} })
}

func (a App) emit(e events.Event) {
	e.Session = a.session.ID()
	a.cfg.Events.Emit(e)
}

func (a App) emitMode() {
	a.emit(events.Event{Kind: events.KindModeChange, Comp: "ui", Mode: a.session.Mode().Label()})
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	bar := a.renderSearchBar()
	status := renderStatusBar(a.cursor, len(a.session.Results()), a.width, a.Refreshing(), a.spinner.View())
	body := a.height - lipgloss.Height(bar) - 1

	var errLine string
	if a.err != nil {
		errLine = ErrorStyle.Width(a.width).Render("Error: " + a.err.Error())
		body--
	}

	var content string
	if a.showDebug {
		content = debugOverlay(a.cfg.Ring, a.cfg.Work, a.width, body)
	} else {
		content = a.renderResults(body)
	}
	content = lipgloss.NewStyle().Height(max(body, 0)).Render(content)

	parts := []string{bar, content}
	if errLine != "" {
		parts = append(parts, errLine)
	}
	parts = append(parts, status)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a App) renderSearchBar() string {
	badge := ModeBadge.Render(a.session.Mode().Label())
	inner := badge + a.input.View()
	return SearchBar.Width(max(a.width-SearchBar.GetHorizontalBorderSize(), 10)).Render(inner)
}

func (a App) renderResults(height int) string {
	results := a.session.Results()
	if len(results) == 0 || a.snap == nil {
		return EmptyStyle.Render("Nothing matches")
	}

	query := a.session.Committed()
	from, to := visibleWindow(len(results), a.cursor, height)
	rows := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		idx := results[i]
		if idx >= len(a.snap.Items) {
			continue
		}
		rows = append(rows, renderRow(a.snap.Items[idx].Render(query, i == a.cursor), a.width))
	}
	return strings.Join(rows, "\n")
}

// Cursor returns the current cursor position (for testing).
func (a App) Cursor() int {
	return a.cursor
}

// Mode returns the active mode (for testing).
func (a App) Mode() mode.Mode {
	return a.session.Mode()
}

// Visible returns the titles of the current results (for testing).
func (a App) Visible() []string {
	results := a.session.Results()
	out := make([]string, 0, len(results))
	for _, idx := range results {
		if a.snap != nil && idx < len(a.snap.Items) {
			out = append(out, a.snap.Items[idx].Render(a.session.Committed(), false).Title)
		}
	}
	return out
}
