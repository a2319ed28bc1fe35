package domain

import "time"

// Alert is the persisted record of one transition. At most one alert exists
// per (device, geofence, kind, fix timestamp); retries return the original.
type Alert struct {
	ID             int64          `json:"id"`
	DeviceID       string         `json:"device_id"`
	GeofenceID     string         `json:"geofence_id"`
	Kind           TransitionKind `json:"event"`
	Lat            float64        `json:"latitude"`
	Lon            float64        `json:"longitude"`
	FixTimestamp   time.Time      `json:"fix_timestamp"`
	CreatedAt      time.Time      `json:"created_at"`
	AcknowledgedAt *time.Time     `json:"acknowledged_at,omitempty"`
}

type AlertQuery struct {
	After int64
	Limit int
}
