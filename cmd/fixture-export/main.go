package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vitals-badge/go-host/internal/logging"
	"github.com/vitals-badge/go-host/internal/replay"
	"github.com/vitals-badge/go-host/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to badge_host.db")
	last := flag.Int("last", 10, "number of most recent measurements to export")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/db --out path/to/fixture.json [--last N]")
		os.Exit(2)
	}

	if err := run(*dbPath, *last, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region export

func run(dbPath string, last int, outPath string) error {
	st, err := store.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := logging.ListRecent(st.DB(), last)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no measurements in badge_log")
	}

	// ListRecent returns newest first; replay wants arrival order.
	fix := replay.Fixture{
		Description: fmt.Sprintf("exported from %s (%d measurements)", dbPath, len(entries)),
	}
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		fix.Steps = append(fix.Steps,
			replay.Step{
				Action:  "measure",
				TabID:   e.TabID,
				URL:     e.URL,
				Verdict: e.Verdict,
				LCP:     e.LCP,
				FID:     e.FID,
				CLS:     e.CLS,
			},
			replay.Step{Action: "cycle", TabID: e.TabID, Count: 1},
		)
	}

	if err := replay.Save(outPath, fix); err != nil {
		return err
	}
	fmt.Printf("wrote %d steps to %s\n", len(fix.Steps), outPath)
	return nil
}

// #endregion export
