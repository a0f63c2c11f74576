package intake

import (
	"log"
	"strconv"

	"github.com/google/uuid"

	"github.com/vitals-badge/go-host/internal/logging"
	"github.com/vitals-badge/go-host/internal/store"
	"github.com/vitals-badge/go-host/internal/vitals"
)

// #region starter-interface
// Starter begins a badge animation run. Satisfied by *sequencer.Sequencer;
// abstracted so intake can be tested without timers.
type Starter interface {
	Start(tabID int, rep vitals.Report)
}

// #endregion starter-interface

// #region intake-struct

// Intake receives completed measurements from the extension, kicks off the
// badge animation, and persists raw readings for later popup lookup.
type Intake struct {
	seq   Starter
	store *store.Store
}

// New creates an intake wired to the sequencer and store.
func New(seq Starter, st *store.Store) *Intake {
	return &Intake{seq: seq, store: st}
}

// #endregion intake-struct

// #region handle-measurement

// HandleMeasurement processes one completed page measurement. The animation
// is started fire-and-forget; persistence failures are logged and never block
// or abort the badge update.
func (i *Intake) HandleMeasurement(ev MeasurementEvent) {
	eventID := uuid.New().String()

	rep := vitals.Report{
		Verdict: vitals.ParseVerdict(ev.Verdict),
		LCP:     ev.Metrics.LCP,
		FID:     ev.Metrics.FID,
		CLS:     ev.Metrics.CLS,
	}

	i.seq.Start(ev.TabID, rep)

	key := vitals.URLKey(ev.URL)
	if err := i.store.SavePageVitals(key, ev.URL, rep); err != nil {
		log.Printf("[INTAKE] save vitals for tab %d: %v", ev.TabID, err)
	}

	entry := logging.BadgeLogEntry{
		EventID: eventID,
		TabID:   ev.TabID,
		URLKey:  key,
		URL:     ev.URL,
		Verdict: string(rep.Verdict),
		LCP:     ev.Metrics.LCP,
		FID:     ev.Metrics.FID,
		CLS:     ev.Metrics.CLS,
	}
	if err := logging.LogMeasurement(i.store.DB(), entry); err != nil {
		log.Printf("[INTAKE] log measurement: %v", err)
	}

	log.Printf("[INTAKE] measurement: tab=%d verdict=%s key=%s lcp=%.0f fid=%.0f cls=%.2f",
		ev.TabID, rep.Verdict, key, ev.Metrics.LCP, ev.Metrics.FID, ev.Metrics.CLS)
}

// #endregion handle-measurement

// #region handle-navigation

// HandleNavigation records whether the navigated tab was loaded in the
// background. Nothing inside the host reads this; the popup does.
func (i *Intake) HandleNavigation(ev NavigationEvent) {
	if err := i.store.SetBackgroundTab(strconv.Itoa(ev.TabID), ev.Background); err != nil {
		log.Printf("[INTAKE] set background flag for tab %d: %v", ev.TabID, err)
	}
}

// #endregion handle-navigation
