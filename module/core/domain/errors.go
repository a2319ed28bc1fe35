package domain

import "errors"

var (
	// ErrInvalidGeometry marks malformed coordinates or degenerate shapes.
	// Terminal: no retry makes these succeed.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrInvalidGeofence marks a definition rejected at create/update time.
	ErrInvalidGeofence = errors.New("invalid geofence definition")

	ErrGeofenceNotFound = errors.New("geofence not found")

	// Ingestion-time rejections. Logged, never escalated, scoped to one fix.
	ErrStaleFix       = errors.New("stale fix")
	ErrDuplicateFix   = errors.New("duplicate fix")
	ErrDeviceInactive = errors.New("device inactive")
)
