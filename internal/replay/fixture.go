package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vitals-badge/go-host/internal/badge"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a badge replay fixture.
type Fixture struct {
	Description    string        `json:"description"`
	Steps          []Step        `json:"steps"`
	ExpectedFrames []FrameRecord `json:"expected_frames,omitempty"`
}

// Step is one scripted action. Actions:
//   - "measure": a completed measurement arrives for a tab. An empty verdict
//     string means "derive it from the metric values".
//   - "cycle": advance the tab's badge animation by Count full iterations.
//   - "close_tab": the browser closes the tab; its run halts and later
//     cycles are inert.
type Step struct {
	Action  string  `json:"action"`
	TabID   int     `json:"tab_id"`
	URL     string  `json:"url,omitempty"`
	Verdict string  `json:"verdict,omitempty"`
	LCP     float64 `json:"lcp,omitempty"`
	FID     float64 `json:"fid,omitempty"`
	CLS     float64 `json:"cls,omitempty"`
	Count   int     `json:"count,omitempty"`
}

// FrameRecord is a rendered badge frame attributed to a tab.
type FrameRecord struct {
	TabID int `json:"tab_id"`
	badge.Frame
}

// #endregion fixture-types

// #region load-save

// Load reads and parses a fixture file.
func Load(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var fix Fixture
	if err := json.Unmarshal(data, &fix); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	return fix, nil
}

// Save writes a fixture as indented JSON.
func Save(path string, fix Fixture) error {
	data, err := json.MarshalIndent(fix, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	return nil
}

// #endregion load-save
