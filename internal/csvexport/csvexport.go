// Package csvexport writes projected GPS9 fixes as a flat CSV track.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"

	"github.com/James2022-rgb/gpmf-tools/internal/gps9"
)

var columns = []string{
	"utc_ms", "lat", "lon", "alt_m", "speed_2d_ms", "speed_3d_ms", "dop", "fix", "cum_distance_km",
}

// Write emits one row per fix, unfiltered (every fix carries its own fix
// column so downstream consumers can filter), with a running haversine
// distance accumulated only across consecutive usable fixes.
func Write(w io.Writer, fixes []gps9.Fix) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}

	cumDistanceKm := 0.0
	var prevLat, prevLon float64
	havePrev := false

	for _, fix := range fixes {
		if havePrev && fix.Usable() {
			cumDistanceKm += haversineKm(prevLat, prevLon, float64(fix.Latitude), float64(fix.Longitude))
		}
		if fix.Usable() {
			prevLat, prevLon = float64(fix.Latitude), float64(fix.Longitude)
			havePrev = true
		}

		row := []string{
			fmt.Sprintf("%d", fix.Time().UnixMilli()),
			fmt.Sprintf("%.7f", fix.Latitude),
			fmt.Sprintf("%.7f", fix.Longitude),
			fmt.Sprintf("%.1f", fix.Altitude),
			fmt.Sprintf("%.2f", fix.Speed2D),
			fmt.Sprintf("%.2f", fix.Speed3D),
			fmt.Sprintf("%.2f", fix.Dop),
			fmt.Sprintf("%d", fix.Fix),
			fmt.Sprintf("%.4f", cumDistanceKm),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// haversineKm is the great-circle distance in kilometers between two
// lat/lon points in degrees.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
