package replay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vitals-badge/go-host/internal/badge"
	"github.com/vitals-badge/go-host/internal/sequencer"
	"github.com/vitals-badge/go-host/internal/vitals"
)

// #region types

// StepResult is the outcome of one fixture step: the frames it rendered.
type StepResult struct {
	Index  int           `json:"index"`
	Action string        `json:"action"`
	TabID  int           `json:"tab_id"`
	Frames []FrameRecord `json:"frames,omitempty"`
}

// Summary aggregates a replay run.
type Summary struct {
	TotalSteps   int                 `json:"total_steps"`
	TotalFrames  int                 `json:"total_frames"`
	Measurements int                 `json:"measurements"`
	LastFrame    map[int]badge.Frame `json:"last_frame"`
}

// Transcript is the full result of replaying a fixture.
type Transcript struct {
	Results []StepResult `json:"results"`
	Summary Summary      `json:"summary"`
}

// #endregion types

// #region scaffolding

// frameTap is a badge.Renderer that forwards every frame to the harness.
type frameTap struct {
	frames chan FrameRecord
}

func (t *frameTap) RenderOverall(ctx context.Context, tabID int, v vitals.Verdict) error {
	t.frames <- FrameRecord{TabID: tabID, Frame: badge.OverallFrame(v)}
	return nil
}

func (t *frameTap) RenderMetric(ctx context.Context, tabID int, m vitals.Metric, value float64) error {
	t.frames <- FrameRecord{TabID: tabID, Frame: badge.MetricFrame(m, value)}
	return nil
}

// stepClock parks every sleeper until released. Each park is reported on
// parked, so the harness knows when a released cycle has finished its step
// and settled on the next delay.
type stepClock struct {
	parked chan struct{}
	gate   chan struct{}
}

func newStepClock() *stepClock {
	return &stepClock{
		parked: make(chan struct{}, 1),
		gate:   make(chan struct{}),
	}
}

func (c *stepClock) Sleep(ctx context.Context, d time.Duration) bool {
	select {
	case c.parked <- struct{}{}:
	case <-ctx.Done():
		return false
	}
	select {
	case <-c.gate:
		return true
	case <-ctx.Done():
		return false
	}
}

// tabSet answers the sequencer's liveness checks from fixture state.
type tabSet struct {
	mu   sync.Mutex
	open map[int]bool
}

func (t *tabSet) TabExists(ctx context.Context, tabID int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open[tabID]
}

func (t *tabSet) set(tabID int, open bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.open[tabID] = open
}

// tabRun is one tab's live sequencer and the clock that steps it. Each tab
// gets its own sequencer so its cycle can be advanced independently of other
// tabs; supersession is per tab, so transcripts are unaffected by the split.
type tabRun struct {
	seq    *sequencer.Sequencer
	clock  *stepClock
	active bool // a fail cycle is parked on the clock
}

// #endregion scaffolding

// #region run

// Run replays fixture steps through a real sequencer, stepped by a manual
// clock with a recording renderer, so transcripts show exactly what the live
// animation would render, deterministically. A measure step supersedes the
// tab's previous run before starting the new one; a cycle step releases full
// loop iterations; close_tab mirrors the bridge's tab-removed handling
// (registry cleared, generation forgotten).
func Run(fix Fixture) Transcript {
	tap := &frameTap{frames: make(chan FrameRecord, 64)}
	tabs := &tabSet{open: make(map[int]bool)}
	runs := make(map[int]*tabRun)

	results := make([]StepResult, 0, len(fix.Steps))
	measurements := 0

	for i, st := range fix.Steps {
		res := StepResult{Index: i, Action: st.Action, TabID: st.TabID}

		switch st.Action {
		case "measure":
			tr := runs[st.TabID]
			if tr == nil {
				clock := newStepClock()
				tr = &tabRun{seq: sequencer.NewWithClock(tap, tabs, clock), clock: clock}
				runs[st.TabID] = tr
			}
			retire(tr, st.TabID)
			tabs.set(st.TabID, true)

			rep := reportFor(st)
			tr.seq.Start(st.TabID, rep)
			if rep.Verdict == vitals.VerdictFail {
				<-tr.clock.parked // the cycle reached its first delay
				tr.active = true
			}
			measurements++
			res.Frames = drain(tap)

		case "cycle":
			tr := runs[st.TabID]
			if tr == nil || !tr.active {
				break
			}
			n := st.Count
			if n <= 0 {
				n = 1
			}
			for c := 0; c < n; c++ {
				res.Frames = append(res.Frames, stepIteration(tr, tap)...)
			}

		case "close_tab":
			tabs.set(st.TabID, false)
			if tr := runs[st.TabID]; tr != nil {
				retire(tr, st.TabID)
			}
		}

		results = append(results, res)
	}

	for _, tr := range runs {
		tr.seq.Close()
	}

	return Transcript{Results: results, Summary: summarize(results, measurements)}
}

// stepIteration releases one full animation loop: the three metric delays
// plus the loop-back delay, collecting frames after each step settles.
func stepIteration(tr *tabRun, tap *frameTap) []FrameRecord {
	var frames []FrameRecord
	for i := 0; i < 4; i++ {
		tr.clock.gate <- struct{}{}
		<-tr.clock.parked
		frames = append(frames, drain(tap)...)
	}
	return frames
}

// retire evicts the tab's generation and wakes any parked cycle, which
// observes the eviction and halts without rendering.
func retire(tr *tabRun, tabID int) {
	tr.seq.Forget(tabID)
	if !tr.active {
		return
	}
	tr.clock.gate <- struct{}{}
	tr.active = false
}

// drain collects every frame rendered so far.
func drain(tap *frameTap) []FrameRecord {
	var frames []FrameRecord
	for {
		select {
		case f := <-tap.frames:
			frames = append(frames, f)
		default:
			return frames
		}
	}
}

// reportFor builds the report for a measure step, deriving the verdict from
// the thresholds when the fixture omits it.
func reportFor(st Step) vitals.Report {
	if st.Verdict == "" {
		return vitals.Evaluate(st.LCP, st.FID, st.CLS)
	}
	return vitals.Report{
		Verdict: vitals.ParseVerdict(st.Verdict),
		LCP:     st.LCP,
		FID:     st.FID,
		CLS:     st.CLS,
	}
}

func summarize(results []StepResult, measurements int) Summary {
	s := Summary{
		TotalSteps:   len(results),
		Measurements: measurements,
		LastFrame:    make(map[int]badge.Frame),
	}
	for _, r := range results {
		s.TotalFrames += len(r.Frames)
		for _, f := range r.Frames {
			s.LastFrame[f.TabID] = f.Frame
		}
	}
	return s
}

// #endregion run

// #region verify

// Verify compares a transcript's flattened frames against the fixture's
// expectations. Returns one message per mismatch; empty means a clean run.
func Verify(fix Fixture, tr Transcript) []string {
	if len(fix.ExpectedFrames) == 0 {
		return nil
	}

	var got []FrameRecord
	for _, r := range tr.Results {
		got = append(got, r.Frames...)
	}

	var mismatches []string
	if len(got) != len(fix.ExpectedFrames) {
		mismatches = append(mismatches,
			fmt.Sprintf("frame count: got %d, expected %d", len(got), len(fix.ExpectedFrames)))
	}
	n := len(got)
	if len(fix.ExpectedFrames) < n {
		n = len(fix.ExpectedFrames)
	}
	for i := 0; i < n; i++ {
		if got[i] != fix.ExpectedFrames[i] {
			mismatches = append(mismatches,
				fmt.Sprintf("frame %d: got %+v, expected %+v", i, got[i], fix.ExpectedFrames[i]))
		}
	}
	return mismatches
}

// #endregion verify
