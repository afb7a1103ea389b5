// Package gps9 projects GPS9 samples out of a decoded GPMF DEVC record.
//
// GPS9 is the nine-field GPS record GoPro introduced with HERO11: a raw
// Complex payload scaled against a sibling SCAL record's divisors, framed
// inside a STRM container whose TYPE descriptor names the payload's layout.
package gps9

import "time"

// epoch2000 is the reference instant GPS9's days_since_2000 /
// seconds_since_midnight pair is measured from.
var epoch2000 = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Fix is one projected GPS9 sample. Project reads the raw payload in the
// order lat, lon, alt, speed_2d, speed_3d, days, secs, dop, fix; the struct
// declares Fix and Dop first.
type Fix struct {
	Fix                   uint32
	Dop                   float32
	Latitude              float32
	Longitude             float32
	Altitude              float32
	Speed2D               float32
	Speed3D               float32
	DaysSince2000         float32
	SecondsSinceMidnight  float32
}

// Usable reports whether Fix != 0, GPMF's marker for a sample too poor to
// use. Project does not filter these (spec: "the projector itself does not
// filter") — this is for collaborators like internal/gpx and
// internal/csvexport that choose to.
func (f Fix) Usable() bool {
	return f.Fix != 0
}

// Time resolves DaysSince2000 and SecondsSinceMidnight into an absolute
// UTC instant against the GPS9 epoch of 2000-01-01 UTC.
func (f Fix) Time() time.Time {
	days := time.Duration(f.DaysSince2000) * 24 * time.Hour
	secs := time.Duration(float64(f.SecondsSinceMidnight) * float64(time.Second))
	return epoch2000.Add(days + secs)
}
