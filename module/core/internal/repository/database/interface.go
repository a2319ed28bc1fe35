package database

import (
	"context"

	"github.com/rentride/geofence/module/core/domain"
)

type GeofenceRepository interface {
	Insert(ctx context.Context, gf *domain.Geofence) error
	Update(ctx context.Context, gf *domain.Geofence) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Geofence, error)
	ListActiveForDevice(ctx context.Context, deviceID string) ([]domain.Geofence, error)
}

type PositionRepository interface {
	Insert(ctx context.Context, fix *domain.PositionFix) error
	GetLatest(ctx context.Context, deviceID string) (*domain.PositionFix, error)
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.PositionFix, error)
}

type AlertRepository interface {
	// InsertIdempotent persists the alert for a transition. The second return
	// value is false when an alert for the same logical transition already
	// existed, in which case the existing row is returned.
	InsertIdempotent(ctx context.Context, tr *domain.Transition) (*domain.Alert, bool, error)
	ListAfter(ctx context.Context, query *domain.AlertQuery) ([]domain.Alert, error)
	Acknowledge(ctx context.Context, id int64) error
}
