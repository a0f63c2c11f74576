package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/vitals-badge/go-host/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to replay fixture JSON")
	jsonOut := flag.Bool("json", false, "output the full transcript as JSON")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--json]")
		os.Exit(2)
	}

	fix, err := replay.Load(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	tr := replay.Run(fix)

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(tr); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	} else {
		printTranscript(fix, tr)
	}

	if mismatches := replay.Verify(fix, tr); len(mismatches) > 0 {
		fmt.Fprintf(os.Stderr, "\n%d expectation mismatch(es):\n", len(mismatches))
		for _, m := range mismatches {
			fmt.Fprintf(os.Stderr, "  %s\n", m)
		}
		os.Exit(1)
	}
}

// #endregion main

// #region output

func printTranscript(fix replay.Fixture, tr replay.Transcript) {
	if fix.Description != "" {
		fmt.Printf("Fixture: %s\n\n", fix.Description)
	}

	for _, r := range tr.Results {
		fmt.Printf("step %d  %-9s tab=%d", r.Index, r.Action, r.TabID)
		if len(r.Frames) == 0 {
			fmt.Println()
			continue
		}
		fmt.Println()
		for _, f := range r.Frames {
			text := f.Text
			if text == "" {
				text = "(cleared)"
			}
			fmt.Printf("        -> tab %d: %s  text=%s\n", f.TabID, f.Icon, text)
		}
	}

	fmt.Printf("\nSteps: %d | Measurements: %d | Frames rendered: %d\n",
		tr.Summary.TotalSteps, tr.Summary.Measurements, tr.Summary.TotalFrames)
	for tabID, f := range tr.Summary.LastFrame {
		fmt.Printf("  tab %d last frame: %s\n", tabID, f.Icon)
	}
}

// #endregion output
