package geo

import (
	"errors"
	"testing"

	"github.com/rentride/geofence/module/core/domain"
)

var copenhagen = domain.LatLon{Lat: 55.6761, Lon: 12.5683}

// Rough bounding box around Denmark.
var denmarkRing = []domain.LatLon{
	{Lat: 54.5, Lon: 8.0},
	{Lat: 57.8, Lon: 8.0},
	{Lat: 57.8, Lon: 12.8},
	{Lat: 54.5, Lon: 12.8},
}

func TestHaversine_SamePoint(t *testing.T) {
	if d := Haversine(copenhagen, copenhagen); d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestHaversine_KnownDistance(t *testing.T) {
	// One degree of latitude is ~111 km.
	a := domain.LatLon{Lat: 55.0, Lon: 12.0}
	b := domain.LatLon{Lat: 56.0, Lon: 12.0}
	d := Haversine(a, b)
	if d < 110000 || d > 112500 {
		t.Errorf("expected ~111km, got %f", d)
	}
}

func TestPointInCircle_Inside(t *testing.T) {
	inside, err := PointInCircle(copenhagen, copenhagen, 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inside {
		t.Error("center should be inside")
	}
}

func TestPointInCircle_Outside(t *testing.T) {
	// ~6km north of center.
	p := domain.LatLon{Lat: copenhagen.Lat + 0.054, Lon: copenhagen.Lon}
	inside, err := PointInCircle(p, copenhagen, 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inside {
		t.Error("point 6km away should be outside a 5km circle")
	}
}

func TestPointInCircle_BoundaryIsInside(t *testing.T) {
	p := domain.LatLon{Lat: copenhagen.Lat + 0.02, Lon: copenhagen.Lon}
	exact := Haversine(p, copenhagen)

	inside, err := PointInCircle(p, copenhagen, exact)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inside {
		t.Error("distance == radius should count as inside")
	}
}

func TestPointInCircle_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		p       domain.LatLon
		center  domain.LatLon
		radiusM float64
	}{
		{"lat out of range", domain.LatLon{Lat: 91}, copenhagen, 100},
		{"lon out of range", domain.LatLon{Lon: -181}, copenhagen, 100},
		{"bad center", copenhagen, domain.LatLon{Lat: -95}, 100},
		{"zero radius", copenhagen, copenhagen, 0},
		{"negative radius", copenhagen, copenhagen, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PointInCircle(tt.p, tt.center, tt.radiusM)
			if !errors.Is(err, domain.ErrInvalidGeometry) {
				t.Errorf("expected ErrInvalidGeometry, got %v", err)
			}
		})
	}
}

func TestPointInPolygon_Inside(t *testing.T) {
	inside, err := PointInPolygon(copenhagen, denmarkRing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inside {
		t.Error("Copenhagen should be inside the Denmark box")
	}
}

func TestPointInPolygon_FarOutside(t *testing.T) {
	hamburg := domain.LatLon{Lat: 53.5511, Lon: 9.9937}
	inside, err := PointInPolygon(hamburg, denmarkRing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inside {
		t.Error("Hamburg should be outside the Denmark box")
	}
}

func TestPointInPolygon_ConvexCentroid(t *testing.T) {
	var c domain.LatLon
	for _, v := range denmarkRing {
		c.Lat += v.Lat
		c.Lon += v.Lon
	}
	c.Lat /= float64(len(denmarkRing))
	c.Lon /= float64(len(denmarkRing))

	inside, err := PointInPolygon(c, denmarkRing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inside {
		t.Error("centroid of a convex polygon should be inside")
	}
}

func TestPointInPolygon_OnEdgeIsInside(t *testing.T) {
	// Midpoint of the western edge.
	p := domain.LatLon{Lat: 56.15, Lon: 8.0}
	inside, err := PointInPolygon(p, denmarkRing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inside {
		t.Error("a point on an edge should count as inside")
	}
}

func TestPointInPolygon_VertexIsInside(t *testing.T) {
	inside, err := PointInPolygon(denmarkRing[0], denmarkRing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inside {
		t.Error("a vertex should count as inside")
	}
}

func TestPointInPolygon_DegenerateRing(t *testing.T) {
	tests := []struct {
		name string
		ring []domain.LatLon
	}{
		{"empty", nil},
		{"two points", []domain.LatLon{{Lat: 1}, {Lat: 2}}},
		{"duplicates only", []domain.LatLon{{Lat: 1, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 1, Lon: 1}}},
		{"collinear", []domain.LatLon{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}, {Lat: 3, Lon: 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PointInPolygon(copenhagen, tt.ring)
			if !errors.Is(err, domain.ErrInvalidGeometry) {
				t.Errorf("expected ErrInvalidGeometry, got %v", err)
			}
		})
	}
}

func TestValidateRing_Valid(t *testing.T) {
	if err := ValidateRing(denmarkRing); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
