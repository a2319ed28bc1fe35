package publisher

import (
	"context"

	"github.com/rentride/geofence/module/core/domain"
)

// AlertPublisher hands persisted alerts to the messaging collaborator.
// Publishing is best-effort: the alert already exists in storage and
// redelivery is the notification layer's responsibility.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert *domain.Alert) error
}
