// Package geoindex provides fast spatial queries over projected GPS9 fixes
// using an R-tree, so "what telemetry exists near this point" does not
// require a linear scan over the whole track.
package geoindex

import (
	"math"

	"github.com/dhconnelly/rtreego"

	"github.com/James2022-rgb/gpmf-tools/internal/gps9"
)

// entry wraps a Fix so it can satisfy rtreego.Spatial as a minSpan-sized
// rectangle at its lat/lon.
type entry struct {
	fix gps9.Fix
}

func (e entry) Bounds() rtreego.Rect {
	point := rtreego.Point{float64(e.fix.Longitude), float64(e.fix.Latitude)}
	rect, _ := rtreego.NewRect(point, []float64{minSpan, minSpan})
	return rect
}

// minSpan is rtreego's minimum rectangle span; fixes are points, so each
// gets a negligible footprint rather than a true zero-area rectangle,
// which rtreego rejects.
const minSpan = 1e-9

// Bounds is an inclusive lat/lon bounding box, degrees.
type Bounds struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Index is an R-tree over a fixed set of usable fixes (Fix.Usable()).
type Index struct {
	rtree *rtreego.Rtree
	count int
}

// Build indexes every usable fix in fixes. Unusable fixes (Fix == 0) carry
// no trustworthy position and are excluded.
func Build(fixes []gps9.Fix) *Index {
	rtree := rtreego.NewTree(2, 25, 50)
	count := 0
	for _, fix := range fixes {
		if !fix.Usable() {
			continue
		}
		rtree.Insert(entry{fix: fix})
		count++
	}
	return &Index{rtree: rtree, count: count}
}

// Len returns the number of fixes held in the index.
func (idx *Index) Len() int {
	return idx.count
}

// Query returns every indexed fix whose position falls within bounds.
func (idx *Index) Query(bounds Bounds) []gps9.Fix {
	point := rtreego.Point{bounds.MinLon, bounds.MinLat}
	lengths := []float64{bounds.MaxLon - bounds.MinLon, bounds.MaxLat - bounds.MinLat}
	rect, err := rtreego.NewRect(point, lengths)
	if err != nil {
		return nil
	}

	var out []gps9.Fix
	for _, spatial := range idx.rtree.SearchIntersect(rect) {
		out = append(out, spatial.(entry).fix)
	}
	return out
}

// Nearest returns the indexed fix closest to (lat, lon) by Euclidean
// distance in lon/lat degree space (rtreego's metric, not a great-circle
// distance), and whether the index held any fixes at all.
func (idx *Index) Nearest(lat, lon float64) (gps9.Fix, bool) {
	if idx.count == 0 {
		return gps9.Fix{}, false
	}
	point := rtreego.Point{lon, lat}
	nearest := idx.rtree.NearestNeighbor(point)
	if nearest == nil {
		return gps9.Fix{}, false
	}
	return nearest.(entry).fix, true
}

// NearestWithDistance is Nearest plus the great-circle distance in
// kilometers to the match. rtreego.NearestNeighbor itself ranks candidates
// by Euclidean distance in lat/lon space, a fine approximation at track
// scale but not a true geodesic, so the reported distance is recomputed
// with haversineKm.
func (idx *Index) NearestWithDistance(lat, lon float64) (fix gps9.Fix, distanceKm float64, ok bool) {
	fix, ok = idx.Nearest(lat, lon)
	if !ok {
		return gps9.Fix{}, 0, false
	}
	return fix, haversineKm(lat, lon, float64(fix.Latitude), float64(fix.Longitude)), true
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
