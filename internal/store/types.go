package store

import (
	"time"

	"github.com/vitals-badge/go-host/internal/vitals"
)

// #region page-vitals
// PageVitals is the stored last-known measurement for a URL key, the
// key/value contract consumed by the extension popup.
type PageVitals struct {
	Key       string
	URL       string
	LCP       float64
	FID       float64
	CLS       float64
	Verdict   vitals.Verdict
	UpdatedAt time.Time
}

// #endregion page-vitals
