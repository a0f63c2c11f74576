package intake

// #region measurement-event
// MeasurementEvent is a completed page-load measurement reported by the
// extension's content script.
type MeasurementEvent struct {
	TabID   int     `json:"tab_id"`
	URL     string  `json:"url"`
	Verdict string  `json:"verdict"`
	Metrics Metrics `json:"metrics"`
}

// Metrics carries the three raw Core Web Vitals values.
type Metrics struct {
	LCP float64 `json:"lcp"`
	FID float64 `json:"fid"`
	CLS float64 `json:"cls"`
}

// #endregion measurement-event

// #region navigation-event
// NavigationEvent is emitted on every navigation; Background marks tabs that
// loaded without focus.
type NavigationEvent struct {
	TabID      int  `json:"tab_id"`
	Background bool `json:"background"`
}

// #endregion navigation-event
