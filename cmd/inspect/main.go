package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/vitals-badge/go-host/internal/logging"
	"github.com/vitals-badge/go-host/internal/store"
	"github.com/vitals-badge/go-host/internal/vitals"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to badge_host.db")
	url := flag.String("url", "", "look up stored vitals for a URL")
	key := flag.String("key", "", "look up stored vitals by raw url key")
	last := flag.Int("last", 20, "show N most recent measurement log rows")
	tabs := flag.Bool("tabs", false, "show background tab flags")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/badge_host.db [--url u | --key k] [--last N] [--tabs] [--json]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	switch {
	case *url != "" || *key != "":
		k := *key
		if *url != "" {
			k = vitals.URLKey(*url)
		}
		err = runLookupMode(st, k, *jsonOut)
	case *tabs:
		err = runTabsMode(st, *jsonOut)
	default:
		err = runLogMode(st, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region lookup-mode

func runLookupMode(st *store.Store, key string, jsonOut bool) error {
	pv, err := st.GetPageVitals(key)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{
			"url_key":    pv.Key,
			"url":        pv.URL,
			"lcp":        pv.LCP,
			"fid":        pv.FID,
			"cls":        pv.CLS,
			"verdict":    string(pv.Verdict),
			"updated_at": pv.UpdatedAt,
		})
	}

	fmt.Printf("Key:      %s\n", pv.Key)
	fmt.Printf("URL:      %s\n", pv.URL)
	fmt.Printf("Verdict:  %s\n", pv.Verdict)
	fmt.Printf("LCP:      %.2f ms\n", pv.LCP)
	fmt.Printf("FID:      %.2f ms\n", pv.FID)
	fmt.Printf("CLS:      %.4f\n", pv.CLS)
	fmt.Printf("Updated:  %s\n", pv.UpdatedAt.Format("2006-01-02T15:04:05Z"))
	return nil
}

// #endregion lookup-mode

// #region log-mode

func runLogMode(st *store.Store, last int, jsonOut bool) error {
	entries, err := logging.ListRecent(st.DB(), last)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no measurements logged")
		return nil
	}

	if jsonOut {
		return printJSON(entries)
	}

	fmt.Printf("%-10s  %5s  %-8s  %9s  %8s  %6s  %s\n",
		"Event", "Tab", "Verdict", "LCP", "FID", "CLS", "Time")
	fmt.Printf("%-10s+-%5s+-%-8s+-%9s+-%8s+-%6s+-%s\n",
		"----------", "-----", "--------", "---------", "--------", "------", "--------------------")
	for _, e := range entries {
		fmt.Printf("%-10s  %5d  %-8s  %9.2f  %8.2f  %6.3f  %s\n",
			shortID(e.EventID), e.TabID, e.Verdict, e.LCP, e.FID, e.CLS,
			e.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

// #endregion log-mode

// #region tabs-mode

func runTabsMode(st *store.Store, jsonOut bool) error {
	flags, err := st.ListBackgroundTabs()
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(flags)
	}

	fmt.Printf("%-8s  %s\n", "Tab", "Background")
	for id, bg := range flags {
		fmt.Printf("%-8s  %v\n", id, bg)
	}
	return nil
}

// #endregion tabs-mode

// #region helpers

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// #endregion helpers
