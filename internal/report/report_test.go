package report

import (
	"strings"
	"testing"

	"github.com/James2022-rgb/gpmf-tools/internal/gps9"
)

func TestSummarize_IgnoresUnusableFixes(t *testing.T) {
	fixes := []gps9.Fix{
		{Fix: 0, Speed2D: 100, Altitude: 100}, // unusable, must be excluded
		{Fix: 3, Speed2D: 10, Altitude: 50},
		{Fix: 3, Speed2D: 20, Altitude: 60},
		{Fix: 3, Speed2D: 30, Altitude: 70},
	}

	summary := Summarize(fixes)
	if summary.Count != 3 {
		t.Fatalf("Count = %d, want 3", summary.Count)
	}
	if summary.MinSpeed2D != 10 || summary.MaxSpeed2D != 30 {
		t.Errorf("speed range = [%v,%v], want [10,30]", summary.MinSpeed2D, summary.MaxSpeed2D)
	}
	if summary.MinAltitude != 50 || summary.MaxAltitude != 70 {
		t.Errorf("altitude range = [%v,%v], want [50,70]", summary.MinAltitude, summary.MaxAltitude)
	}
	if summary.Speed2DP50 != 20 {
		t.Errorf("P50 = %v, want 20", summary.Speed2DP50)
	}
}

func TestSummarize_EmptyIsZeroValue(t *testing.T) {
	summary := Summarize(nil)
	if summary.Count != 0 {
		t.Errorf("Count = %d, want 0", summary.Count)
	}

	summary = Summarize([]gps9.Fix{{Fix: 0}})
	if summary.Count != 0 {
		t.Errorf("Count with only unusable fixes = %d, want 0", summary.Count)
	}
}

func TestWriteChart_RendersHTML(t *testing.T) {
	fixes := []gps9.Fix{
		{Fix: 3, Speed2D: 10, Altitude: 50},
		{Fix: 3, Speed2D: 20, Altitude: 60},
	}

	var buf strings.Builder
	if err := WriteChart(&buf, fixes); err != nil {
		t.Fatalf("WriteChart: %v", err)
	}
	if !strings.Contains(buf.String(), "<html") {
		t.Errorf("rendered output does not look like HTML:\n%s", buf.String()[:min(200, len(buf.String()))])
	}
}
