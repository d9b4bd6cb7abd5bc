// Package session tracks the per-activation query state of the launcher:
// the active mode, the query text, and which pipeline run may publish.
package session

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/abelbrown/lookout/internal/mode"
)

// Run identifies one pipeline run. Only the latest run may commit.
type Run struct {
	ID    string
	Ctx   context.Context
	Mode  mode.Mode
	Query string
}

// Session is safe for concurrent use, though in practice only the UI event
// loop touches it.
type Session struct {
	mu sync.Mutex

	id      string
	known   []mode.Mode
	mode    mode.Mode
	query   string
	last    string // query of the last started run
	hasLast bool

	runID  string
	cancel context.CancelFunc

	results   []int
	committed string // query the results were computed for
}

// New creates a session in Home mode. known lists the alias modes the
// user can switch into.
func New(known []mode.Mode) *Session {
	return &Session{
		id:    uuid.NewString(),
		known: slices.Clone(known),
	}
}

// ID identifies the session in event logs.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Mode returns the active mode.
func (s *Session) Mode() mode.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Query returns the current query text.
func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Known returns the alias modes of the session.
func (s *Session) Known() []mode.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.known)
}

// SetKnown replaces the alias modes, as after a reload.
func (s *Session) SetKnown(known []mode.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.known = slices.Clone(known)
}

// Input records new query text and runs the mode transition. When it
// returns true the caller must clear its input field; the stored query is
// already empty.
func (s *Session) Input(query string) (clear bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, clear := mode.Transition(s.mode, query, s.known)
	if next != s.mode {
		s.mode = next
		s.hasLast = false
	}
	if clear {
		query = ""
	}
	s.query = query
	return clear
}

// SetMode switches mode directly, as when a category item is executed.
func (s *Session) SetMode(m mode.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
	s.query = ""
	s.hasLast = false
}

// EmptyBackspace handles backspace on an empty input: outside Home it
// returns to Home and reports true.
func (s *Session) EmptyBackspace() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.query != "" || s.mode.Kind == mode.Home {
		return false
	}
	s.mode = mode.Mode{Kind: mode.Home}
	s.hasLast = false
	return true
}

// Invalidate forgets the last run's query so the next NeedsRun is true.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasLast = false
}

// NeedsRun reports whether the results are out of date for the query.
func (s *Session) NeedsRun() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.hasLast || s.last != s.query
}

// Start begins a pipeline run for the current query, cancelling the
// previous one.
func (s *Session) Start(parent context.Context) Run {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.runID = uuid.NewString()
	s.last = s.query
	s.hasLast = true
	return Run{ID: s.runID, Ctx: ctx, Mode: s.mode, Query: s.query}
}

// Commit publishes the results of run if it is still the latest run and the
// query and mode have not moved on. It reports whether the results were kept.
func (s *Session) Commit(run Run, indices []int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID != s.runID || run.Query != s.query || run.Mode != s.mode {
		return false
	}
	s.results = indices
	s.committed = run.Query
	return true
}

// Results returns the committed indices.
func (s *Session) Results() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results
}

// Committed returns the query the committed results belong to. It lags
// Query while a run is in flight.
func (s *Session) Committed() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committed
}

// Reset starts a fresh activation: Home mode, empty query, no results.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.id = uuid.NewString()
	s.mode = mode.Mode{}
	s.query = ""
	s.hasLast = false
	s.runID = ""
	s.results = nil
	s.committed = ""
}
