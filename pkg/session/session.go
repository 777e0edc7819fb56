// Package session owns the editable problem behind a viewer. Every edit
// restarts a debounce timer; when it fires the polytope is recomputed and a
// fresh immutable Snapshot is published. Results of computations superseded
// by a newer edit are discarded.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bep/debounce"

	"github.com/chazu/feasible/pkg/polytope"
	"github.com/chazu/feasible/pkg/problem"
)

// DefaultDelay is the debounce interval between the last edit and
// recomputation.
const DefaultDelay = 50 * time.Millisecond

// Snapshot is one published computation. It is never modified after
// publication.
type Snapshot struct {
	Generation uint64           `json:"generation"`
	Problem    *problem.Problem `json:"problem"`
	Result     polytope.Result  `json:"result"`
}

// Publisher receives every snapshot that is not superseded.
type Publisher func(Snapshot)

// Option configures a Session.
type Option func(*Session)

// WithDelay sets the debounce interval.
func WithDelay(d time.Duration) Option {
	return func(s *Session) { s.delay = d }
}

// WithPublisher registers the snapshot callback. It runs on the debounce
// goroutine and must not call back into the session's edit methods
// synchronously.
func WithPublisher(p Publisher) Option {
	return func(s *Session) { s.publish = p }
}

// WithBusyListener registers a callback for busy/idle transitions. It is
// called with the session lock held and must not call session methods.
func WithBusyListener(fn func(busy bool)) Option {
	return func(s *Session) { s.onBusy = fn }
}

// WithTolerances overrides the pipeline tolerances.
func WithTolerances(t polytope.Tolerances) Option {
	return func(s *Session) { s.tol = t }
}

// WithLogger sets the session logger. The default derives from
// polytope.Logger at construction time.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// Session is safe for concurrent use.
type Session struct {
	delay   time.Duration
	publish Publisher
	onBusy  func(bool)
	tol     polytope.Tolerances
	log     *slog.Logger

	debounced func(func())

	mu         sync.Mutex
	problem    *problem.Problem
	generation uint64
	busy       bool
	latest     Snapshot
	closed     bool
}

// New creates a session editing p (or the default problem when p is nil)
// and computes the initial snapshot synchronously.
func New(p *problem.Problem, opts ...Option) *Session {
	if p == nil {
		p = problem.Default()
	}
	s := &Session{
		delay:   DefaultDelay,
		problem: p.Clone(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = polytope.Logger().With("component", "session")
	}
	s.debounced = debounce.New(s.delay)
	s.Recompute()
	return s
}

// Problem returns a copy of the current problem.
func (s *Session) Problem() *problem.Problem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.problem.Clone()
}

// Latest returns the most recently published snapshot.
func (s *Session) Latest() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Busy reports whether an edit is waiting for recomputation.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Generation returns the number of edits applied so far.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Close stops publishing. Pending debounced runs become no-ops.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	// Pending edits are never computed.
	s.setBusyLocked(false)
	s.mu.Unlock()
}

// Recompute runs the pipeline immediately on the current problem, publishes
// and returns the snapshot. A closed session returns its last snapshot.
func (s *Session) Recompute() Snapshot {
	s.mu.Lock()
	if s.closed {
		snap := s.latest
		s.mu.Unlock()
		return snap
	}
	s.generation++
	s.setBusyLocked(true)
	s.mu.Unlock()
	snap, _ := s.run()
	return snap
}

// edit applies fn under the lock and schedules recomputation when fn
// succeeds.
func (s *Session) edit(fn func(p *problem.Problem) error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("session: closed")
	}
	if err := fn(s.problem); err != nil {
		s.mu.Unlock()
		return err
	}
	s.generation++
	s.setBusyLocked(true)
	s.mu.Unlock()

	s.debounced(func() { s.run() })
	return nil
}

// run computes the current problem and publishes the result unless a newer
// edit arrived while computing. It reports whether the snapshot was
// published.
func (s *Session) run() (Snapshot, bool) {
	s.mu.Lock()
	if s.closed {
		snap := s.latest
		s.mu.Unlock()
		return snap, false
	}
	gen := s.generation
	p := s.problem.Clone()
	s.mu.Unlock()

	in := polytope.InputFrom(p)
	in.Tolerances = s.tol
	start := time.Now()
	res := polytope.Compute(in)
	snap := Snapshot{Generation: gen, Problem: p, Result: res}
	if !s.commit(snap) {
		s.log.Debug("discarding superseded result", "generation", gen)
		return snap, false
	}
	s.log.Debug("recomputed",
		"generation", gen,
		"status", res.Status,
		"vertices", len(res.Vertices),
		"faces", len(res.Faces),
		"elapsed", time.Since(start))
	return snap, true
}

// commit stores and publishes snap unless a newer edit has been made since
// its generation was read.
func (s *Session) commit(snap Snapshot) bool {
	s.mu.Lock()
	if snap.Generation != s.generation || s.closed {
		s.mu.Unlock()
		return false
	}
	s.latest = snap
	s.setBusyLocked(false)
	publish := s.publish
	s.mu.Unlock()

	if publish != nil {
		publish(snap)
	}
	return true
}

func (s *Session) setBusyLocked(busy bool) {
	if s.busy == busy {
		return
	}
	s.busy = busy
	if s.onBusy != nil {
		s.onBusy(busy)
	}
}
