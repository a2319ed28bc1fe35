package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/rentride/geofence/module/core/domain"
	"github.com/rentride/geofence/module/core/geo"
	"github.com/rentride/geofence/module/core/internal/repository/database"
)

// stateForgetter lets the store purge containment state when a geofence is
// hard-deleted, so a recreated geofence starts from the unknown baseline.
type stateForgetter interface {
	Forget(geofenceID string)
}

// GeofenceService is the source of truth for geofence definitions. Operations
// on the same geofence id are serialized; different ids do not block each
// other.
type GeofenceService struct {
	repo     database.GeofenceRepository
	tracker  stateForgetter
	validate *validator.Validate

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewGeofenceService(repo database.GeofenceRepository, tracker stateForgetter) *GeofenceService {
	return &GeofenceService{
		repo:     repo,
		tracker:  tracker,
		validate: validator.New(),
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *GeofenceService) Create(ctx context.Context, def *domain.GeofenceDefinition) (*domain.Geofence, error) {
	if err := s.validateDefinition(def); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	gf := &domain.Geofence{
		ID:           uuid.NewString(),
		DeviceID:     def.DeviceID,
		Name:         def.Name,
		Shape:        def.Shape,
		Center:       def.Center,
		RadiusM:      def.RadiusM,
		Vertices:     def.Vertices,
		AlertOnEnter: def.AlertOnEnter,
		AlertOnExit:  def.AlertOnExit,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, gf); err != nil {
		return nil, fmt.Errorf("insert geofence: %w", err)
	}
	return gf, nil
}

func (s *GeofenceService) Update(ctx context.Context, id string, def *domain.GeofenceDefinition) (*domain.Geofence, error) {
	if err := s.validateDefinition(def); err != nil {
		return nil, err
	}

	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	gf := &domain.Geofence{
		ID:           id,
		DeviceID:     existing.DeviceID,
		Name:         def.Name,
		Shape:        def.Shape,
		Center:       def.Center,
		RadiusM:      def.RadiusM,
		Vertices:     def.Vertices,
		AlertOnEnter: def.AlertOnEnter,
		AlertOnExit:  def.AlertOnExit,
		CreatedAt:    existing.CreatedAt,
		UpdatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Update(ctx, gf); err != nil {
		return nil, err
	}
	return gf, nil
}

// Delete is a hard removal. In-flight evaluations keep working on the
// snapshot they already read; the tracker state for the geofence is purged so
// an id reuse starts from unknown.
func (s *GeofenceService) Delete(ctx context.Context, id string) error {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.tracker != nil {
		s.tracker.Forget(id)
	}
	return nil
}

// ListActiveFor returns a consistent snapshot of the device's geofences as of
// the call, taken in a single query.
func (s *GeofenceService) ListActiveFor(ctx context.Context, deviceID string) ([]domain.Geofence, error) {
	return s.repo.ListActiveForDevice(ctx, deviceID)
}

func (s *GeofenceService) validateDefinition(def *domain.GeofenceDefinition) error {
	if err := s.validate.Struct(def); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidGeofence, err)
	}

	switch def.Shape {
	case domain.ShapeCircle:
		if def.RadiusM <= 0 {
			return fmt.Errorf("%w: circle radius must be positive, got %f", domain.ErrInvalidGeofence, def.RadiusM)
		}
		if err := geo.ValidateCoordinates(def.Center); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidGeofence, err)
		}
	case domain.ShapePolygon:
		if err := geo.ValidateRing(def.Vertices); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidGeofence, err)
		}
	default:
		return fmt.Errorf("%w: unknown shape %q", domain.ErrInvalidGeofence, def.Shape)
	}
	return nil
}

func (s *GeofenceService) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}
