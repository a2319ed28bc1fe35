package service

import (
	"log"

	"github.com/rentride/geofence/module/core/domain"
	"github.com/rentride/geofence/module/core/geo"
)

// Evaluator computes membership of one fix against a snapshot of geofences.
// It is pure over the geometry primitives; a geofence with a broken shape is
// logged and skipped rather than aborting the whole fix.
type Evaluator struct{}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

func (e *Evaluator) Evaluate(fix *domain.PositionFix, geofences []domain.Geofence) []domain.MembershipResult {
	point := domain.LatLon{Lat: fix.Lat, Lon: fix.Lon}
	results := make([]domain.MembershipResult, 0, len(geofences))

	for _, gf := range geofences {
		var inside bool
		var err error

		switch gf.Shape {
		case domain.ShapeCircle:
			inside, err = geo.PointInCircle(point, gf.Center, gf.RadiusM)
		case domain.ShapePolygon:
			inside, err = geo.PointInPolygon(point, gf.Vertices)
		default:
			log.Printf("geofence %s has unknown shape %q, skipping", gf.ID, gf.Shape)
			continue
		}
		if err != nil {
			// Shapes are validated at creation; this only fires on corrupt data.
			log.Printf("geofence %s evaluation failed: %v", gf.ID, err)
			continue
		}

		results = append(results, domain.MembershipResult{GeofenceID: gf.ID, Inside: inside})
	}
	return results
}
