package service

import (
	"sync"

	"github.com/rentride/geofence/module/core/domain"
)

type stateKey struct {
	deviceID   string
	geofenceID string
}

// Tracker holds the last-known containment state per (device, geofence) pair
// and turns evaluator results into enter/exit transitions. The first
// observation for a pair establishes a baseline and never emits; repeated
// same-side observations are no-ops. The caller serializes observations per
// device in fix-timestamp order; the internal lock only protects the map
// across devices.
type Tracker struct {
	mu     sync.Mutex
	states map[stateKey]domain.ContainmentState
}

func NewTracker() *Tracker {
	return &Tracker{states: make(map[stateKey]domain.ContainmentState)}
}

// Observe records the membership of fix relative to gf and returns the
// transition to dispatch, or nil when no alert is due. Transitions are only
// returned when the geofence's matching alert flag is set; the state machine
// advances either way.
func (t *Tracker) Observe(fix *domain.PositionFix, gf *domain.Geofence, inside bool) *domain.Transition {
	key := stateKey{deviceID: fix.DeviceID, geofenceID: gf.ID}
	membership := domain.MembershipOutside
	if inside {
		membership = domain.MembershipInside
	}

	t.mu.Lock()
	prev, ok := t.states[key]
	t.states[key] = domain.ContainmentState{
		DeviceID:   fix.DeviceID,
		GeofenceID: gf.ID,
		Membership: membership,
		LastFixAt:  fix.Timestamp,
	}
	t.mu.Unlock()

	if !ok || prev.Membership == domain.MembershipUnknown {
		return nil // baseline, not a transition
	}
	if prev.Membership == membership {
		return nil
	}

	if membership == domain.MembershipInside {
		if !gf.AlertOnEnter {
			return nil
		}
		return &domain.Transition{
			DeviceID:   fix.DeviceID,
			GeofenceID: gf.ID,
			Kind:       domain.TransitionEntered,
			Fix:        *fix,
		}
	}
	if !gf.AlertOnExit {
		return nil
	}
	return &domain.Transition{
		DeviceID:   fix.DeviceID,
		GeofenceID: gf.ID,
		Kind:       domain.TransitionExited,
		Fix:        *fix,
	}
}

// State returns the current containment state for the pair, or an unknown
// state when the pair has never been observed.
func (t *Tracker) State(deviceID, geofenceID string) domain.ContainmentState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st, ok := t.states[stateKey{deviceID: deviceID, geofenceID: geofenceID}]; ok {
		return st
	}
	return domain.ContainmentState{
		DeviceID:   deviceID,
		GeofenceID: geofenceID,
		Membership: domain.MembershipUnknown,
	}
}

// Forget drops all state for a deleted geofence.
func (t *Tracker) Forget(geofenceID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key := range t.states {
		if key.geofenceID == geofenceID {
			delete(t.states, key)
		}
	}
}
