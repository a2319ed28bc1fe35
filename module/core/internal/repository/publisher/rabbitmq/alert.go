package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/rentride/geofence/module/core/domain"
	"github.com/rentride/geofence/module/core/internal/repository/publisher"
)

var _ publisher.AlertPublisher = (*AlertPublisher)(nil)

const (
	exchangeName = "fleet.events"
	queueName    = "geofence_alerts"
)

type AlertPublisher struct {
	ch *amqp.Channel
}

func NewAlertPublisher(conn *amqp.Connection) (*AlertPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchangeName, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(queueName, "", exchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return &AlertPublisher{ch: ch}, nil
}

type alertMessage struct {
	AlertID      int64                 `json:"alert_id"`
	DeviceID     string                `json:"device_id"`
	GeofenceID   string                `json:"geofence_id"`
	Event        domain.TransitionKind `json:"event"`
	Latitude     float64               `json:"latitude"`
	Longitude    float64               `json:"longitude"`
	FixTimestamp int64                 `json:"fix_timestamp"`
}

func (p *AlertPublisher) PublishAlert(ctx context.Context, alert *domain.Alert) error {
	msg := alertMessage{
		AlertID:      alert.ID,
		DeviceID:     alert.DeviceID,
		GeofenceID:   alert.GeofenceID,
		Event:        alert.Kind,
		Latitude:     alert.Lat,
		Longitude:    alert.Lon,
		FixTimestamp: alert.FixTimestamp.Unix(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	return p.ch.PublishWithContext(ctx, exchangeName, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}
