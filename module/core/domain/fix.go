package domain

import "time"

// PositionFix is one timestamped GPS report for a device. Fixes are received
// once and never mutated; superseded fixes are discarded, not deleted.
type PositionFix struct {
	DeviceID   string    `json:"device_id"`
	Lat        float64   `json:"latitude"`
	Lon        float64   `json:"longitude"`
	Timestamp  time.Time `json:"timestamp"`
	AccuracyM  float64   `json:"accuracy_m,omitempty"`
	SpeedKmh   float64   `json:"speed_kmh,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

type HistoryQuery struct {
	DeviceID string
	Start    time.Time
	End      time.Time
}
