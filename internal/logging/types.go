package logging

import "time"

// #region badge-log-entry
// BadgeLogEntry is a single row in the badge_log table: one completed
// measurement as it arrived at intake.
type BadgeLogEntry struct {
	EventID   string
	TabID     int
	URLKey    string
	URL       string
	Verdict   string
	LCP       float64
	FID       float64
	CLS       float64
	CreatedAt time.Time
}

// #endregion badge-log-entry
