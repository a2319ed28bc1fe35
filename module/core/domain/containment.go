package domain

import "time"

type Membership string

const (
	MembershipUnknown Membership = "unknown"
	MembershipInside  Membership = "inside"
	MembershipOutside Membership = "outside"
)

// ContainmentState is the last-known membership of a device relative to one
// geofence. Unknown is the state before any fix has been evaluated against the
// pair and never by itself triggers an alert.
type ContainmentState struct {
	DeviceID   string     `json:"device_id"`
	GeofenceID string     `json:"geofence_id"`
	Membership Membership `json:"membership"`
	LastFixAt  time.Time  `json:"last_fix_at"`
}

// MembershipResult is the evaluator's verdict for one fix against one geofence.
type MembershipResult struct {
	GeofenceID string
	Inside     bool
}

type TransitionKind string

const (
	TransitionEntered TransitionKind = "entered"
	TransitionExited  TransitionKind = "exited"
)

// Transition is a genuine boundary crossing derived from two consecutive
// containment observations for the same (device, geofence) pair.
type Transition struct {
	DeviceID   string         `json:"device_id"`
	GeofenceID string         `json:"geofence_id"`
	Kind       TransitionKind `json:"kind"`
	Fix        PositionFix    `json:"fix"`
}
