package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/rentride/geofence/module/core/domain"
	"github.com/rentride/geofence/module/core/geo"
)

type fixStore interface {
	Insert(ctx context.Context, fix *domain.PositionFix) error
}

type lastFixCache interface {
	SetLastFix(ctx context.Context, fix *domain.PositionFix) error
}

type deviceState struct {
	mu           sync.Mutex
	hasAccepted  bool
	lastReleased time.Time
	newest       time.Time
	pending      []domain.PositionFix // sorted by timestamp ascending
}

// IngestService is the gatekeeper for raw fixes. It validates coordinates,
// rejects fixes for deactivated devices, discards stale and duplicate fixes
// per device, and releases accepted fixes in strict timestamp order. With a
// non-zero reorder window, out-of-order fixes within the window are buffered
// and released in order; anything older than the window is rejected as stale.
type IngestService struct {
	positions fixStore
	cache     lastFixCache
	window    time.Duration

	mu       sync.Mutex
	devices  map[string]*deviceState
	inactive map[string]bool
}

func NewIngestService(positions fixStore, cache lastFixCache, window time.Duration) *IngestService {
	return &IngestService{
		positions: positions,
		cache:     cache,
		window:    window,
		devices:   make(map[string]*deviceState),
		inactive:  make(map[string]bool),
	}
}

// Accept validates and persists one fix. It returns the fixes released for
// evaluation, in timestamp order; with a zero reorder window that is either
// the fix itself or nothing. A storage failure leaves the per-device state
// untouched so the caller can retry the same fix.
func (s *IngestService) Accept(ctx context.Context, fix *domain.PositionFix) ([]domain.PositionFix, error) {
	if fix.DeviceID == "" {
		return nil, fmt.Errorf("device_id: required")
	}
	if fix.Timestamp.IsZero() {
		return nil, fmt.Errorf("timestamp: required")
	}
	if err := geo.ValidateCoordinates(domain.LatLon{Lat: fix.Lat, Lon: fix.Lon}); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.inactive[fix.DeviceID] {
		s.mu.Unlock()
		return nil, domain.ErrDeviceInactive
	}
	st, ok := s.devices[fix.DeviceID]
	if !ok {
		st = &deviceState{}
		s.devices[fix.DeviceID] = st
	}
	s.mu.Unlock()

	st.mu.Lock()
	defer st.mu.Unlock()

	ts := fix.Timestamp
	if st.hasAccepted {
		if ts.Equal(st.lastReleased) {
			return nil, domain.ErrDuplicateFix
		}
		if ts.Before(st.lastReleased) {
			return nil, domain.ErrStaleFix
		}
	}
	if s.window > 0 && !st.newest.IsZero() && ts.Before(st.newest.Add(-s.window)) {
		return nil, fmt.Errorf("%w: outside reordering window", domain.ErrStaleFix)
	}
	for _, p := range st.pending {
		if p.Timestamp.Equal(ts) {
			return nil, domain.ErrDuplicateFix
		}
	}

	if fix.ReceivedAt.IsZero() {
		fix.ReceivedAt = time.Now().UTC()
	}

	if err := s.positions.Insert(ctx, fix); err != nil {
		return nil, fmt.Errorf("persist fix: %w", err)
	}
	if s.cache != nil && !ts.Before(st.newest) {
		if err := s.cache.SetLastFix(ctx, fix); err != nil {
			log.Printf("last-fix cache update failed for %s: %v", fix.DeviceID, err)
		}
	}

	if ts.After(st.newest) {
		st.newest = ts
	}

	if s.window == 0 {
		st.hasAccepted = true
		st.lastReleased = ts
		return []domain.PositionFix{*fix}, nil
	}

	st.pending = append(st.pending, *fix)
	sort.Slice(st.pending, func(i, j int) bool {
		return st.pending[i].Timestamp.Before(st.pending[j].Timestamp)
	})

	cutoff := st.newest.Add(-s.window)
	var released []domain.PositionFix
	for len(st.pending) > 0 && !st.pending[0].Timestamp.After(cutoff) {
		released = append(released, st.pending[0])
		st.pending = st.pending[1:]
	}
	if len(released) > 0 {
		st.hasAccepted = true
		st.lastReleased = released[len(released)-1].Timestamp
	}
	return released, nil
}

// Flush releases every buffered fix for the device in timestamp order,
// regardless of the reorder window. Used on shutdown.
func (s *IngestService) Flush(deviceID string) []domain.PositionFix {
	s.mu.Lock()
	st, ok := s.devices[deviceID]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	released := st.pending
	st.pending = nil
	if len(released) > 0 {
		st.hasAccepted = true
		st.lastReleased = released[len(released)-1].Timestamp
	}
	return released
}

// Devices returns every device id seen by the ingest, for shutdown draining.
func (s *IngestService) Devices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.devices))
	for id := range s.devices {
		ids = append(ids, id)
	}
	return ids
}

// Deactivate stops future fixes for the device from being accepted. In-flight
// work is not cancelled; it simply runs to completion.
func (s *IngestService) Deactivate(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inactive[deviceID] = true
}

func (s *IngestService) Activate(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inactive, deviceID)
}
