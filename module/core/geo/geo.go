// Package geo provides the stateless containment primitives used by the
// evaluator: great-circle point-in-circle and ray-casting point-in-polygon.
package geo

import (
	"fmt"
	"math"

	"github.com/rentride/geofence/module/core/domain"
)

const earthRadiusMeters = 6371000

// onEdgeEpsilon bounds the cross/dot product slack when deciding whether a
// point sits exactly on a polygon edge.
const onEdgeEpsilon = 1e-12

func ValidateCoordinates(p domain.LatLon) error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %f out of range", domain.ErrInvalidGeometry, p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: longitude %f out of range", domain.ErrInvalidGeometry, p.Lon)
	}
	return nil
}

// ValidateRing checks that a polygon ring has at least 3 distinct,
// non-collinear vertices with coordinates in range.
func ValidateRing(ring []domain.LatLon) error {
	for _, v := range ring {
		if err := ValidateCoordinates(v); err != nil {
			return err
		}
	}

	distinct := distinctVertices(ring)
	if len(distinct) < 3 {
		return fmt.Errorf("%w: polygon needs at least 3 distinct vertices, got %d", domain.ErrInvalidGeometry, len(distinct))
	}

	if collinear(distinct) {
		return fmt.Errorf("%w: polygon vertices are collinear", domain.ErrInvalidGeometry)
	}
	return nil
}

// Haversine returns the great-circle distance in meters between two points.
func Haversine(a, b domain.LatLon) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// PointInCircle reports whether p lies within radiusM meters of center.
// A point at exactly the radius counts as inside.
func PointInCircle(p, center domain.LatLon, radiusM float64) (bool, error) {
	if err := ValidateCoordinates(p); err != nil {
		return false, err
	}
	if err := ValidateCoordinates(center); err != nil {
		return false, err
	}
	if radiusM <= 0 {
		return false, fmt.Errorf("%w: radius must be positive, got %f", domain.ErrInvalidGeometry, radiusM)
	}
	return Haversine(p, center) <= radiusM, nil
}

// PointInPolygon reports whether p lies inside the simple closed polygon
// described by ring, using the even-odd ray-casting rule in lat/lon space.
// A point exactly on an edge counts as inside; the boundary belongs to the
// region, matching the circle's inclusive radius.
func PointInPolygon(p domain.LatLon, ring []domain.LatLon) (bool, error) {
	if err := ValidateCoordinates(p); err != nil {
		return false, err
	}
	if err := ValidateRing(ring); err != nil {
		return false, err
	}

	if !inBoundingBox(p, ring) {
		return false, nil
	}

	n := len(ring)
	for i := 0; i < n; i++ {
		if onSegment(p, ring[i], ring[(i+1)%n]) {
			return true, nil
		}
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi, vj := ring[i], ring[j]
		if (vi.Lat > p.Lat) != (vj.Lat > p.Lat) &&
			p.Lon < (vj.Lon-vi.Lon)*(p.Lat-vi.Lat)/(vj.Lat-vi.Lat)+vi.Lon {
			inside = !inside
		}
	}
	return inside, nil
}

func inBoundingBox(p domain.LatLon, ring []domain.LatLon) bool {
	minLat, maxLat := ring[0].Lat, ring[0].Lat
	minLon, maxLon := ring[0].Lon, ring[0].Lon
	for _, v := range ring[1:] {
		minLat = math.Min(minLat, v.Lat)
		maxLat = math.Max(maxLat, v.Lat)
		minLon = math.Min(minLon, v.Lon)
		maxLon = math.Max(maxLon, v.Lon)
	}
	return p.Lat >= minLat && p.Lat <= maxLat && p.Lon >= minLon && p.Lon <= maxLon
}

// onSegment reports whether p lies on the segment a-b, within epsilon.
func onSegment(p, a, b domain.LatLon) bool {
	cross := (b.Lon-a.Lon)*(p.Lat-a.Lat) - (b.Lat-a.Lat)*(p.Lon-a.Lon)
	if math.Abs(cross) > onEdgeEpsilon {
		return false
	}
	dot := (p.Lon-a.Lon)*(b.Lon-a.Lon) + (p.Lat-a.Lat)*(b.Lat-a.Lat)
	if dot < 0 {
		return false
	}
	lenSq := (b.Lon-a.Lon)*(b.Lon-a.Lon) + (b.Lat-a.Lat)*(b.Lat-a.Lat)
	return dot <= lenSq
}

func distinctVertices(ring []domain.LatLon) []domain.LatLon {
	var out []domain.LatLon
	for _, v := range ring {
		dup := false
		for _, seen := range out {
			if seen == v {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}

func collinear(pts []domain.LatLon) bool {
	a, b := pts[0], pts[1]
	for _, c := range pts[2:] {
		cross := (b.Lon-a.Lon)*(c.Lat-a.Lat) - (b.Lat-a.Lat)*(c.Lon-a.Lon)
		if math.Abs(cross) > onEdgeEpsilon {
			return false
		}
	}
	return true
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
