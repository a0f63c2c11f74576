package badge

import (
	"testing"

	"github.com/vitals-badge/go-host/internal/vitals"
)

func TestOverallFrameIcons(t *testing.T) {
	if f := OverallFrame(vitals.VerdictPass); f.Icon != "icons/good128.png" || f.Text != "" {
		t.Fatalf("pass frame wrong: %+v", f)
	}
	if f := OverallFrame(vitals.VerdictFail); f.Icon != "icons/poor128.png" || f.Text != "" {
		t.Fatalf("fail frame wrong: %+v", f)
	}
	if f := OverallFrame(vitals.VerdictUnknown); f.Icon != "icons/default128.png" {
		t.Fatalf("unknown frame wrong: %+v", f)
	}
}

func TestMetricFrameBlackBackground(t *testing.T) {
	f := MetricFrame(vitals.MetricLCP, 3000)
	if f.Color != "#000000" {
		t.Fatalf("expected black background, got %q", f.Color)
	}
	if f.Icon != "icons/lcp128.png" {
		t.Fatalf("unexpected icon %q", f.Icon)
	}
}

func TestFormatValue(t *testing.T) {
	cases := []struct {
		m     vitals.Metric
		value float64
		want  string
	}{
		{vitals.MetricLCP, 2500, "2.50"}, // ms shown as seconds
		{vitals.MetricLCP, 3000, "3.00"},
		{vitals.MetricCLS, 0.1234, "0.12"},
		{vitals.MetricFID, 99.999, "100.00"}, // rounded, not truncated
	}
	for _, c := range cases {
		if got := FormatValue(c.m, c.value); got != c.want {
			t.Fatalf("FormatValue(%s, %v) = %q, want %q", c.m, c.value, got, c.want)
		}
	}
}
