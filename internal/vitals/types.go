package vitals

// #region metric
// Metric identifies one of the three tracked Core Web Vitals.
type Metric string

const (
	MetricLCP Metric = "lcp" // largest contentful paint, ms
	MetricFID Metric = "fid" // first input delay, ms
	MetricCLS Metric = "cls" // cumulative layout shift, unitless
)

// MetricOrder is the fixed order the badge animation cycles through.
var MetricOrder = [3]Metric{MetricLCP, MetricFID, MetricCLS}

// Threshold returns the pass/fail cutoff for the metric.
func (m Metric) Threshold() float64 {
	switch m {
	case MetricLCP:
		return 2500
	case MetricFID:
		return 100
	case MetricCLS:
		return 0.1
	}
	return 0
}

// #endregion metric

// #region verdict
// Verdict is the overall pass/fail classification for a page load.
type Verdict string

const (
	VerdictPass    Verdict = "pass"
	VerdictFail    Verdict = "fail"
	VerdictUnknown Verdict = "unknown"
)

// #endregion verdict

// #region reading
// Reading pairs a metric with its measured value.
type Reading struct {
	Metric Metric
	Value  float64
}

// Fails reports whether the reading exceeds its metric's threshold.
func (r Reading) Fails() bool {
	return r.Value > r.Metric.Threshold()
}

// #endregion reading

// #region report
// Report is the immutable input to one badge animation run: the overall
// verdict plus the three metric readings from a completed measurement.
type Report struct {
	Verdict Verdict
	LCP     float64
	FID     float64
	CLS     float64
}

// Reading returns the report's reading for the given metric.
func (r Report) Reading(m Metric) Reading {
	switch m {
	case MetricLCP:
		return Reading{Metric: MetricLCP, Value: r.LCP}
	case MetricFID:
		return Reading{Metric: MetricFID, Value: r.FID}
	case MetricCLS:
		return Reading{Metric: MetricCLS, Value: r.CLS}
	}
	return Reading{Metric: m}
}

// #endregion report
