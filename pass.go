package grove

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Pass is one named, prioritized unit of per-tick logic. The scheduler
// selects the entities owning every kind in RequiredKinds and hands them to
// Apply; a pass that returns an error (or panics) is reported and skipped
// for the rest of the tick, never halting the passes after it.
//
// The entities slice is a scheduler-owned buffer, valid only for the
// duration of the Apply call; a pass that needs the selection afterwards
// must copy it.
//
// Lower Priority runs first; ties run in registration order.
type Pass interface {
	Name() string
	Priority() int
	RequiredKinds() []Kind
	Apply(w *World, entities []Entity, dt float64) error
}

// Notifier is an optional Pass upgrade: Notify runs after Apply each tick
// and is the place to publish domain events describing what changed.
// Failures in Notify are isolated the same way as Apply failures.
type Notifier interface {
	Notify(w *World)
}

// EmptyRunner is an optional Pass upgrade. A pass returning true still runs
// when its selection is empty — needed by adapters that must prune state for
// entities that vanished this tick.
type EmptyRunner interface {
	RunsWhenEmpty() bool
}

// ErrDuplicatePass is returned by Scheduler.Register when a pass with the
// same name is already registered.
var ErrDuplicatePass = errors.New("grove: duplicate pass name")

// statsWindow is the number of recent duration samples kept per pass.
const statsWindow = 100

// PassStats summarizes the rolling duration window of one pass.
type PassStats struct {
	Count int           // total runs, not capped by the window
	Avg   time.Duration // over the window
	Min   time.Duration
	Max   time.Duration
}

type registeredPass struct {
	pass     Pass
	required kindMask
	order    int // registration order, tiebreaker

	samples [statsWindow]time.Duration
	head    int // next sample slot
	filled  int // samples currently in the window
	runs    int // lifetime run count
}

func (p *registeredPass) record(d time.Duration) {
	p.samples[p.head] = d
	p.head = (p.head + 1) % statsWindow
	if p.filled < statsWindow {
		p.filled++
	}
	p.runs++
}

func (p *registeredPass) stats() PassStats {
	s := PassStats{Count: p.runs}
	if p.filled == 0 {
		return s
	}
	var total time.Duration
	s.Min = p.samples[0]
	for i := 0; i < p.filled; i++ {
		d := p.samples[i]
		total += d
		if d < s.Min {
			s.Min = d
		}
		if d > s.Max {
			s.Max = d
		}
	}
	s.Avg = total / time.Duration(p.filled)
	return s
}

// Scheduler owns the ordered pass list and drives one tick's worth of
// updates. It isolates pass failures: a panic or error from one pass becomes
// a single error:occurred event naming the pass, and execution continues
// with the next pass.
type Scheduler struct {
	passes  []*registeredPass // kept sorted by ascending priority, stable
	byName  map[string]*registeredPass
	running bool
	events  *Channel
	logger  *zap.Logger
	debug   bool

	selection []Entity // reused per-pass selection buffer
}

// NewScheduler creates a stopped scheduler publishing to events.
func NewScheduler(events *Channel) *Scheduler {
	return &Scheduler{
		byName: make(map[string]*registeredPass),
		events: events,
		logger: zap.NewNop(),
	}
}

// SetLogger installs a structured logger for pass failures. Nil restores the
// no-op logger.
func (s *Scheduler) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s.logger = logger
}

// SetDebug toggles per-tick timing output on stderr.
func (s *Scheduler) SetDebug(debug bool) { s.debug = debug }

// Register adds a pass. Names must be unique; a collision returns
// ErrDuplicatePass and registers nothing.
func (s *Scheduler) Register(pass Pass) error {
	if _, exists := s.byName[pass.Name()]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicatePass, pass.Name())
	}
	rp := &registeredPass{
		pass:     pass,
		required: maskOf(pass.RequiredKinds()),
		order:    len(s.byName),
	}
	s.byName[pass.Name()] = rp
	s.passes = append(s.passes, rp)
	sort.SliceStable(s.passes, func(i, j int) bool {
		pi, pj := s.passes[i], s.passes[j]
		if pi.pass.Priority() != pj.pass.Priority() {
			return pi.pass.Priority() < pj.pass.Priority()
		}
		return pi.order < pj.order
	})
	return nil
}

// Start enables Update. The scheduler starts stopped so a half-wired world
// cannot tick.
func (s *Scheduler) Start() { s.running = true }

// Stop disables Update.
func (s *Scheduler) Stop() { s.running = false }

// Running reports whether Update currently does anything.
func (s *Scheduler) Running() bool { return s.running }

// PassNames returns the registered pass names in execution order.
func (s *Scheduler) PassNames() []string {
	names := make([]string, len(s.passes))
	for i, rp := range s.passes {
		names[i] = rp.pass.Name()
	}
	return names
}

// Stats returns the rolling duration summary for a pass, or false if no
// pass with that name is registered.
func (s *Scheduler) Stats(name string) (PassStats, bool) {
	rp, ok := s.byName[name]
	if !ok {
		return PassStats{}, false
	}
	return rp.stats(), true
}

// Update runs every registered pass, in priority order, against the active
// entity list. Does nothing while stopped.
func (s *Scheduler) Update(w *World, entities []Entity, dt float64) {
	if !s.running {
		return
	}
	tickStart := time.Now()
	for _, rp := range s.passes {
		s.selection = s.selection[:0]
		for _, id := range entities {
			if w.mask(id).containsAll(rp.required) {
				s.selection = append(s.selection, id)
			}
		}
		if len(s.selection) == 0 && !runsWhenEmpty(rp.pass) {
			continue
		}
		start := time.Now()
		s.runIsolated(w, rp, s.selection, dt)
		rp.record(time.Since(start))
	}
	if s.debug {
		s.debugLog(time.Since(tickStart))
	}
}

func runsWhenEmpty(p Pass) bool {
	er, ok := p.(EmptyRunner)
	return ok && er.RunsWhenEmpty()
}

// runIsolated executes one pass's apply and notify phases, converting a
// panic or returned error into a single error:occurred event naming the
// pass.
func (s *Scheduler) runIsolated(w *World, rp *registeredPass, entities []Entity, dt float64) {
	defer func() {
		if r := recover(); r != nil {
			s.report(rp.pass.Name(), fmt.Sprint(r))
		}
	}()
	if err := rp.pass.Apply(w, entities, dt); err != nil {
		s.report(rp.pass.Name(), err.Error())
		return
	}
	if n, ok := rp.pass.(Notifier); ok {
		n.Notify(w)
	}
}

func (s *Scheduler) report(passName, msg string) {
	s.logger.Error("pass failed",
		zap.String("pass", passName),
		zap.String("error", msg))
	s.events.Emit(ErrorEvent{
		Source:      passName,
		Message:     msg,
		Recoverable: true,
	})
}

// debugLog prints per-pass rolling averages and the whole-tick duration to
// stderr. Only called when debug is enabled.
func (s *Scheduler) debugLog(tick time.Duration) {
	for _, rp := range s.passes {
		st := rp.stats()
		_, _ = fmt.Fprintf(os.Stderr, "[grove] pass %s: avg %v | min %v | max %v | runs %d\n",
			rp.pass.Name(), st.Avg, st.Min, st.Max, st.Count)
	}
	_, _ = fmt.Fprintf(os.Stderr, "[grove] tick total: %v\n", tick)
}
