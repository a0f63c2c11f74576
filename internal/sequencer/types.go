package sequencer

import (
	"context"
	"time"
)

// StepDelay is the fixed pause between badge animation steps. Same clock as
// the ms metric thresholds.
const StepDelay = 2000 * time.Millisecond

// #region tab-checker
// TabChecker reports whether a tab still exists in the host browser. It never
// errors: an unreachable or unknown tab is reported as false.
type TabChecker interface {
	TabExists(ctx context.Context, tabID int) bool
}

// #endregion tab-checker

// #region clock
// Clock is the cancellable sleep primitive the animation suspends on.
// Sleep returns false when the context is done before the delay elapses.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) bool
}

type realClock struct{}

func (realClock) Sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// #endregion clock
