package subscriber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/rentride/geofence/module/core/domain"
)

const topicPattern = "/fleet/device/+/position"

type fixPipeline interface {
	Submit(ctx context.Context, fix *domain.PositionFix) error
}

type positionMessage struct {
	DeviceID  string  `json:"device_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
	AccuracyM float64 `json:"accuracy_m"`
	SpeedKmh  float64 `json:"speed_kmh"`
}

type PositionSubscriber struct {
	client   mqtt.Client
	pipeline fixPipeline
}

func NewPositionSubscriber(client mqtt.Client, pipeline fixPipeline) *PositionSubscriber {
	return &PositionSubscriber{
		client:   client,
		pipeline: pipeline,
	}
}

func (s *PositionSubscriber) Start() error {
	token := s.client.Subscribe(topicPattern, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *PositionSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw positionMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		log.Printf("invalid position message: %v", err)
		return
	}

	if err := validatePositionMessage(&raw); err != nil {
		log.Printf("validation error: %v", err)
		return
	}

	fix := &domain.PositionFix{
		DeviceID:  raw.DeviceID,
		Lat:       raw.Latitude,
		Lon:       raw.Longitude,
		Timestamp: time.Unix(raw.Timestamp, 0),
		AccuracyM: raw.AccuracyM,
		SpeedKmh:  raw.SpeedKmh,
	}

	if err := s.pipeline.Submit(context.Background(), fix); err != nil {
		switch {
		case errors.Is(err, domain.ErrStaleFix), errors.Is(err, domain.ErrDuplicateFix):
			log.Printf("fix discarded for %s: %v", fix.DeviceID, err)
		case errors.Is(err, domain.ErrDeviceInactive):
			log.Printf("fix from inactive device %s discarded", fix.DeviceID)
		default:
			log.Printf("submit fix error for %s: %v", fix.DeviceID, err)
		}
	}
}

func validatePositionMessage(msg *positionMessage) error {
	if msg.DeviceID == "" {
		return fmt.Errorf("device_id: required")
	}
	if msg.Latitude < -90 || msg.Latitude > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if msg.Longitude < -180 || msg.Longitude > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	if msg.Timestamp <= 0 {
		return fmt.Errorf("timestamp: must be positive")
	}
	return nil
}
