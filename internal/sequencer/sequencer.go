package sequencer

import (
	"context"
	"log"
	"sync"

	"github.com/vitals-badge/go-host/internal/badge"
	"github.com/vitals-badge/go-host/internal/vitals"
)

// #region sequencer-struct

// Sequencer drives at most one badge animation run per tab. Each Start call
// allocates a generation from a process-wide monotonic counter and records it
// as the authoritative run for the tab; in-flight runs holding an older
// generation observe the mismatch at their next wake-up and stop silently.
// That generation check is the only cross-run serialization point: a
// superseded run performs at most one already-committed render before it
// notices and halts.
type Sequencer struct {
	renderer badge.Renderer
	tabs     TabChecker
	clock    Clock

	mu      sync.Mutex
	closed  bool
	nextGen uint64
	gens    map[int]uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// #endregion sequencer-struct

// #region constructor

// New creates a sequencer using the real wall clock.
func New(renderer badge.Renderer, tabs TabChecker) *Sequencer {
	return NewWithClock(renderer, tabs, realClock{})
}

// NewWithClock creates a sequencer with an injected clock for deterministic
// replay and tests.
func NewWithClock(renderer badge.Renderer, tabs TabChecker, clock Clock) *Sequencer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Sequencer{
		renderer: renderer,
		tabs:     tabs,
		clock:    clock,
		gens:     make(map[int]uint64),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// #endregion constructor

// #region start

// Start begins a new animation run for the tab, superseding any prior run.
// The overall verdict badge is rendered immediately; only a fail verdict
// enters the timed metric cycle, which runs fire-and-forget until it is
// superseded, the tab closes, or the sequencer shuts down. A Start arriving
// after Close is a no-op: registration and the WaitGroup add happen under
// the mutex that Close takes before waiting, so no run can slip in behind
// the shutdown wait.
func (s *Sequencer) Start(tabID int, rep vitals.Report) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.nextGen++
	gen := s.nextGen
	s.gens[tabID] = gen
	loop := rep.Verdict == vitals.VerdictFail
	if loop {
		s.wg.Add(1)
	}
	s.mu.Unlock()

	if err := s.renderer.RenderOverall(s.ctx, tabID, rep.Verdict); err != nil {
		log.Printf("[SEQ] tab %d: overall render rejected: %v", tabID, err)
	}

	if !loop {
		return
	}

	go func() {
		defer s.wg.Done()
		s.cycle(tabID, gen, rep)
	}()
}

// #endregion start

// #region cycle

// cycle loops the fixed metric order, rendering a badge frame only for
// readings over threshold, with a delay before every step and a staleness
// check on every wake. The loop-back step additionally checks tab liveness
// and re-renders the overall badge. Superseded runs and vanished tabs are
// expected terminations, not errors.
func (s *Sequencer) cycle(tabID int, gen uint64, rep vitals.Report) {
	for {
		for _, m := range vitals.MetricOrder {
			if !s.clock.Sleep(s.ctx, StepDelay) {
				return
			}
			if !s.current(tabID, gen) {
				return
			}
			r := rep.Reading(m)
			if !r.Fails() {
				continue
			}
			if err := s.renderer.RenderMetric(s.ctx, tabID, m, r.Value); err != nil {
				log.Printf("[SEQ] tab %d: %s render rejected: %v", tabID, m, err)
			}
		}

		if !s.clock.Sleep(s.ctx, StepDelay) {
			return
		}
		if !s.current(tabID, gen) {
			return
		}
		if !s.tabs.TabExists(s.ctx, tabID) {
			return
		}
		if err := s.renderer.RenderOverall(s.ctx, tabID, rep.Verdict); err != nil {
			log.Printf("[SEQ] tab %d: overall render rejected: %v", tabID, err)
		}
	}
}

// #endregion cycle

// #region generation-table

// current reports whether gen is still the authoritative run for the tab.
func (s *Sequencer) current(tabID int, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[tabID] == gen
}

// Forget evicts the tab's generation entry. Called when the browser reports
// the tab removed, so the table does not grow with every tab ever seen; any
// in-flight run for the tab halts at its next check.
func (s *Sequencer) Forget(tabID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.gens, tabID)
}

// Generation returns the authoritative generation recorded for a tab,
// or zero when none is registered.
func (s *Sequencer) Generation(tabID int) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[tabID]
}

// #endregion generation-table

// #region close

// Close cancels every in-flight run and waits for them to exit. Starts
// arriving afterwards are dropped.
func (s *Sequencer) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
}

// #endregion close
