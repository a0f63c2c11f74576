package replay

import (
	"path/filepath"
	"testing"

	"github.com/vitals-badge/go-host/internal/badge"
	"github.com/vitals-badge/go-host/internal/vitals"
)

// helper: a failing measurement where only lcp is over threshold.
func lcpOnlyFailure(tabID int) Step {
	return Step{Action: "measure", TabID: tabID, URL: "https://a.test", Verdict: "fail", LCP: 3000, FID: 50, CLS: 0.05}
}

func TestRunPassMeasurementRendersOnce(t *testing.T) {
	fix := Fixture{Steps: []Step{
		{Action: "measure", TabID: 1, Verdict: "pass", LCP: 1200},
		{Action: "cycle", TabID: 1, Count: 3},
	}}

	tr := Run(fix)
	if tr.Summary.TotalFrames != 1 {
		t.Fatalf("pass verdict should render exactly one frame, got %d", tr.Summary.TotalFrames)
	}
	if tr.Results[0].Frames[0].Icon != "icons/good128.png" {
		t.Fatalf("wrong frame: %+v", tr.Results[0].Frames[0])
	}
}

func TestRunCycleRendersOnlyFailingMetrics(t *testing.T) {
	fix := Fixture{Steps: []Step{
		lcpOnlyFailure(1),
		{Action: "cycle", TabID: 1, Count: 1},
	}}

	tr := Run(fix)
	cyc := tr.Results[1]
	if len(cyc.Frames) != 2 {
		t.Fatalf("expected lcp frame + overall re-render, got %d frames", len(cyc.Frames))
	}
	if cyc.Frames[0].Text != "3.00" || cyc.Frames[0].Icon != "icons/lcp128.png" {
		t.Fatalf("lcp frame wrong: %+v", cyc.Frames[0])
	}
	if cyc.Frames[1].Icon != "icons/poor128.png" {
		t.Fatalf("loop-back frame wrong: %+v", cyc.Frames[1])
	}
}

func TestRunClosedTabStopsCycling(t *testing.T) {
	fix := Fixture{Steps: []Step{
		lcpOnlyFailure(1),
		{Action: "close_tab", TabID: 1},
		{Action: "cycle", TabID: 1, Count: 5},
	}}

	tr := Run(fix)
	if tr.Summary.TotalFrames != 1 {
		t.Fatalf("closed tab should not cycle, got %d frames", tr.Summary.TotalFrames)
	}
}

func TestRunMeasureSupersedesReport(t *testing.T) {
	fix := Fixture{Steps: []Step{
		lcpOnlyFailure(1),
		{Action: "measure", TabID: 1, Verdict: "pass", LCP: 1000},
		{Action: "cycle", TabID: 1, Count: 2},
	}}

	tr := Run(fix)
	// Two overall renders, no metric frames: the pass report superseded.
	if tr.Summary.TotalFrames != 2 {
		t.Fatalf("expected 2 frames, got %d", tr.Summary.TotalFrames)
	}
	if lf := tr.Summary.LastFrame[1]; lf.Icon != "icons/good128.png" {
		t.Fatalf("last frame should be the pass badge, got %+v", lf)
	}
}

func TestRunDerivesVerdictWhenOmitted(t *testing.T) {
	fix := Fixture{Steps: []Step{
		{Action: "measure", TabID: 1, CLS: 0.3}, // no verdict in fixture
	}}

	tr := Run(fix)
	if tr.Results[0].Frames[0].Frame != badge.OverallFrame(vitals.VerdictFail) {
		t.Fatalf("expected derived fail verdict, got %+v", tr.Results[0].Frames[0])
	}
}

func TestRunNewMeasurementCyclesNewValues(t *testing.T) {
	fix := Fixture{Steps: []Step{
		lcpOnlyFailure(1),
		{Action: "cycle", TabID: 1, Count: 1},
		{Action: "measure", TabID: 1, Verdict: "fail", LCP: 4000, FID: 50, CLS: 0.05},
		{Action: "cycle", TabID: 1, Count: 1},
	}}

	tr := Run(fix)
	if f := tr.Results[1].Frames[0]; f.Text != "3.00" {
		t.Fatalf("first cycle should show the first reading, got %+v", f)
	}
	// The second cycle's frames come from the superseding run, not a stale
	// continuation of the first.
	if f := tr.Results[3].Frames[0]; f.Text != "4.00" {
		t.Fatalf("second cycle should show the new reading, got %+v", f)
	}
	if tr.Summary.TotalFrames != 6 {
		t.Fatalf("expected 2 overall + 2 frames per cycle, got %d", tr.Summary.TotalFrames)
	}
}

func TestRunAllFailingMetricsCycleInOrder(t *testing.T) {
	fix := Fixture{Steps: []Step{
		{Action: "measure", TabID: 1, Verdict: "fail", LCP: 3000, FID: 150, CLS: 0.2},
		{Action: "cycle", TabID: 1, Count: 1},
	}}

	tr := Run(fix)
	cyc := tr.Results[1]
	if len(cyc.Frames) != 4 {
		t.Fatalf("expected three metric frames + overall re-render, got %d", len(cyc.Frames))
	}
	wantIcons := []string{"icons/lcp128.png", "icons/fid128.png", "icons/cls128.png", "icons/poor128.png"}
	for i, want := range wantIcons {
		if cyc.Frames[i].Icon != want {
			t.Fatalf("frame %d: expected %s, got %+v", i, want, cyc.Frames[i])
		}
	}
}

func TestRunTabsCycleIndependently(t *testing.T) {
	fix := Fixture{Steps: []Step{
		lcpOnlyFailure(1),
		lcpOnlyFailure(2),
		{Action: "cycle", TabID: 1, Count: 1},
		{Action: "close_tab", TabID: 2},
		{Action: "cycle", TabID: 2, Count: 3},
		{Action: "cycle", TabID: 1, Count: 1},
	}}

	tr := Run(fix)
	// Tab 2's run is gone; tab 1 keeps cycling untouched.
	if len(tr.Results[4].Frames) != 0 {
		t.Fatalf("closed tab rendered frames: %+v", tr.Results[4].Frames)
	}
	if len(tr.Results[5].Frames) != 2 {
		t.Fatalf("expected tab 1 to keep cycling, got %+v", tr.Results[5].Frames)
	}
	for _, f := range tr.Results[5].Frames {
		if f.TabID != 1 {
			t.Fatalf("frame attributed to wrong tab: %+v", f)
		}
	}
}

func TestVerifyReportsMismatches(t *testing.T) {
	fix := Fixture{
		Steps: []Step{{Action: "measure", TabID: 1, Verdict: "pass"}},
		ExpectedFrames: []FrameRecord{
			{TabID: 1, Frame: badge.OverallFrame(vitals.VerdictPass)},
		},
	}

	if ms := Verify(fix, Run(fix)); len(ms) != 0 {
		t.Fatalf("expected clean verify, got %v", ms)
	}

	fix.ExpectedFrames[0].Frame = badge.OverallFrame(vitals.VerdictFail)
	if ms := Verify(fix, Run(fix)); len(ms) == 0 {
		t.Fatal("expected a mismatch")
	}
}

func TestFixtureRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	fix := Fixture{
		Description: "lcp regression on the landing page",
		Steps: []Step{
			lcpOnlyFailure(1),
			{Action: "cycle", TabID: 1, Count: 2},
		},
	}

	if err := Save(path, fix); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Description != fix.Description || len(loaded.Steps) != 2 {
		t.Fatalf("round trip wrong: %+v", loaded)
	}

	// Replays of the same fixture are identical.
	a := Run(fix)
	b := Run(loaded)
	if a.Summary.TotalFrames != b.Summary.TotalFrames {
		t.Fatalf("replay not deterministic: %d vs %d", a.Summary.TotalFrames, b.Summary.TotalFrames)
	}
}
