package badge

import (
	"context"
	"fmt"

	"github.com/vitals-badge/go-host/internal/vitals"
)

// #region frame
// Frame is one visual badge state: action icon, badge text, and badge
// background color. An empty text clears any previous badge text.
type Frame struct {
	Icon  string `json:"icon"`
	Text  string `json:"text"`
	Color string `json:"color"`
}

// #endregion frame

// #region renderer-interface
// Renderer applies a badge state to a tab's action icon. Implementations are
// stateless and idempotent; they know nothing about animation sequencing.
// A returned error means the host refused the render (e.g. a restricted
// page); callers swallow it and move on.
type Renderer interface {
	RenderOverall(ctx context.Context, tabID int, v vitals.Verdict) error
	RenderMetric(ctx context.Context, tabID int, m vitals.Metric, value float64) error
}

// #endregion renderer-interface

// #region overall-frame
// OverallFrame maps a verdict to its badge frame. Pass and fail get their own
// icons; anything else falls back to the default icon. Badge text is cleared
// in all three cases.
func OverallFrame(v vitals.Verdict) Frame {
	switch v {
	case vitals.VerdictPass:
		return Frame{Icon: "icons/good128.png"}
	case vitals.VerdictFail:
		return Frame{Icon: "icons/poor128.png"}
	}
	return Frame{Icon: "icons/default128.png"}
}

// #endregion overall-frame

// #region metric-frame
// MetricFrame maps a failing metric reading to its badge frame: the metric's
// icon, a black badge background, and the value formatted per metric (lcp as
// seconds, fid as milliseconds, cls unitless; two decimals, rounded).
func MetricFrame(m vitals.Metric, value float64) Frame {
	return Frame{
		Icon:  fmt.Sprintf("icons/%s128.png", m),
		Text:  FormatValue(m, value),
		Color: "#000000",
	}
}

// FormatValue renders a metric value as badge text.
func FormatValue(m vitals.Metric, value float64) string {
	if m == vitals.MetricLCP {
		return fmt.Sprintf("%.2f", value/1000)
	}
	return fmt.Sprintf("%.2f", value)
}

// #endregion metric-frame
