package domain

import "time"

type ShapeKind string

const (
	ShapeCircle  ShapeKind = "circle"
	ShapePolygon ShapeKind = "polygon"
)

type LatLon struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// GeofenceDefinition is the caller-supplied shape of a geofence. It is
// re-validated by the core regardless of what the dashboard form checked.
type GeofenceDefinition struct {
	DeviceID     string    `json:"device_id" validate:"required"`
	Name         string    `json:"name" validate:"required"`
	Shape        ShapeKind `json:"shape" validate:"required,oneof=circle polygon"`
	Center       LatLon    `json:"center"`
	RadiusM      float64   `json:"radius_m"`
	Vertices     []LatLon  `json:"vertices"`
	AlertOnEnter bool      `json:"alert_on_enter"`
	AlertOnExit  bool      `json:"alert_on_exit"`
}

type Geofence struct {
	ID           string    `json:"id"`
	DeviceID     string    `json:"device_id"`
	Name         string    `json:"name"`
	Shape        ShapeKind `json:"shape"`
	Center       LatLon    `json:"center"`
	RadiusM      float64   `json:"radius_m"`
	Vertices     []LatLon  `json:"vertices,omitempty"`
	AlertOnEnter bool      `json:"alert_on_enter"`
	AlertOnExit  bool      `json:"alert_on_exit"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
