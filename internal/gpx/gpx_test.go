package gpx

import (
	"strings"
	"testing"

	"github.com/James2022-rgb/gpmf-tools/internal/gps9"
)

func TestWrite_FiltersUnusableFixes(t *testing.T) {
	fixes := []gps9.Fix{
		{Fix: 0, Latitude: 1, Longitude: 1},
		{Fix: 3, Latitude: 33.4055, Longitude: -118.2943, Altitude: 54.321, Speed2D: 3.5, Dop: 1.5},
	}

	var buf strings.Builder
	if err := Write(&buf, fixes, Meta{Name: "Test Session", Desc: "unit test"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()

	if strings.Count(out, "<trkpt") != 1 {
		t.Errorf("got %d trkpt elements, want 1 (unusable fix should be dropped)", strings.Count(out, "<trkpt"))
	}
	if !strings.Contains(out, "lat=\"33.4055000\"") {
		t.Errorf("missing expected lat in output:\n%s", out)
	}
	if !strings.Contains(out, "<fix>3d</fix>") {
		t.Errorf("missing expected fix mode in output:\n%s", out)
	}
}

func TestWrite_EscapesMeta(t *testing.T) {
	var buf strings.Builder
	if err := Write(&buf, nil, Meta{Name: "A & B <session>"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "A &amp; B &lt;session&gt;") {
		t.Errorf("metadata name not escaped:\n%s", out)
	}
}

func TestFixModeString(t *testing.T) {
	cases := map[uint32]string{0: "none", 1: "none", 2: "2d", 3: "3d", 4: "none"}
	for fix, want := range cases {
		if got := fixModeString(fix); got != want {
			t.Errorf("fixModeString(%d) = %q, want %q", fix, got, want)
		}
	}
}
