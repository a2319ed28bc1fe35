package service

import (
	"context"
	"fmt"
	"log"

	"github.com/rentride/geofence/module/core/domain"
	"github.com/rentride/geofence/module/core/internal/repository/database"
	"github.com/rentride/geofence/module/core/internal/repository/publisher"
)

type alertDedupCache interface {
	CheckAlertDedup(ctx context.Context, tr *domain.Transition) (bool, error)
	SetAlertDedup(ctx context.Context, tr *domain.Transition) error
}

// Dispatcher persists alerts for transitions and hands them to the messaging
// collaborator. Persistence is idempotent on the logical transition key;
// publishing is best-effort and never rolls back a persisted alert. The redis
// marker short-circuits re-publishing on hot retries; the unique index in
// Postgres is the durable guarantee.
type Dispatcher struct {
	alerts database.AlertRepository
	pub    publisher.AlertPublisher
	cache  alertDedupCache
}

func NewDispatcher(alerts database.AlertRepository, pub publisher.AlertPublisher, cache alertDedupCache) *Dispatcher {
	return &Dispatcher{alerts: alerts, pub: pub, cache: cache}
}

func (d *Dispatcher) Dispatch(ctx context.Context, tr *domain.Transition) (*domain.Alert, error) {
	alreadySent := false
	if d.cache != nil {
		dup, err := d.cache.CheckAlertDedup(ctx, tr)
		if err != nil {
			log.Printf("alert dedup check failed for %s/%s: %v", tr.DeviceID, tr.GeofenceID, err)
		} else {
			alreadySent = dup
		}
	}

	alert, created, err := d.alerts.InsertIdempotent(ctx, tr)
	if err != nil {
		return nil, fmt.Errorf("persist alert: %w", err)
	}

	if created && !alreadySent {
		if d.cache != nil {
			if err := d.cache.SetAlertDedup(ctx, tr); err != nil {
				log.Printf("alert dedup set failed for %s/%s: %v", tr.DeviceID, tr.GeofenceID, err)
			}
		}
		if err := d.pub.PublishAlert(ctx, alert); err != nil {
			// The alert exists whether or not notification succeeded;
			// redelivery is the notification layer's responsibility.
			log.Printf("alert %d persisted but publish failed: %v", alert.ID, err)
		}
	}
	return alert, nil
}
