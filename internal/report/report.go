// Package report summarizes a projected GPS9 fix series and renders an
// interactive HTML chart for a human to eyeball a session at a glance.
package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/stat"

	"github.com/James2022-rgb/gpmf-tools/internal/gps9"
)

// Summary is the quantile/extrema aggregation over one fix series.
type Summary struct {
	Count         int
	Start, End    time.Time
	Speed2DP50    float64
	Speed2DP85    float64
	Speed2DP98    float64
	MinAltitude   float64
	MaxAltitude   float64
	MinSpeed2D    float64
	MaxSpeed2D    float64
}

// Summarize computes Summary over fixes, ignoring unusable ones (Fix == 0).
// An empty (or all-unusable) series returns a zero Summary with Count == 0.
func Summarize(fixes []gps9.Fix) Summary {
	var speeds []float64
	var summary Summary
	first := true

	for _, fix := range fixes {
		if !fix.Usable() {
			continue
		}
		speed := float64(fix.Speed2D)
		alt := float64(fix.Altitude)
		t := fix.Time()

		if first {
			summary.MinAltitude, summary.MaxAltitude = alt, alt
			summary.MinSpeed2D, summary.MaxSpeed2D = speed, speed
			summary.Start, summary.End = t, t
			first = false
		} else {
			if alt < summary.MinAltitude {
				summary.MinAltitude = alt
			}
			if alt > summary.MaxAltitude {
				summary.MaxAltitude = alt
			}
			if speed < summary.MinSpeed2D {
				summary.MinSpeed2D = speed
			}
			if speed > summary.MaxSpeed2D {
				summary.MaxSpeed2D = speed
			}
			if t.Before(summary.Start) {
				summary.Start = t
			}
			if t.After(summary.End) {
				summary.End = t
			}
		}
		speeds = append(speeds, speed)
		summary.Count++
	}

	if summary.Count == 0 {
		return Summary{}
	}

	sort.Float64s(speeds)
	summary.Speed2DP50 = stat.Quantile(0.50, stat.Empirical, speeds, nil)
	summary.Speed2DP85 = stat.Quantile(0.85, stat.Empirical, speeds, nil)
	summary.Speed2DP98 = stat.Quantile(0.98, stat.Empirical, speeds, nil)
	return summary
}

// WriteChart renders an interactive speed/altitude-over-elapsed-time line
// chart for the usable fixes in fixes.
func WriteChart(w io.Writer, fixes []gps9.Fix) error {
	var times []time.Time
	var speeds, altitudes []opts.LineData
	for _, fix := range fixes {
		if !fix.Usable() {
			continue
		}
		times = append(times, fix.Time())
		speeds = append(speeds, opts.LineData{Value: fix.Speed2D})
		altitudes = append(altitudes, opts.LineData{Value: fix.Altitude})
	}

	xAxis := make([]string, len(times))
	var start time.Time
	if len(times) > 0 {
		start = times[0]
	}
	for i, t := range times {
		xAxis[i] = fmt.Sprintf("%.1fs", t.Sub(start).Seconds())
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "GPS9 Session"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "elapsed"}),
	)
	line.SetXAxis(xAxis).
		AddSeries("speed_2d (m/s)", speeds).
		AddSeries("altitude (m)", altitudes)

	return line.Render(w)
}
