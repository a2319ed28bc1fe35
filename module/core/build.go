package core

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	handler "github.com/rentride/geofence/module/core/internal/handler/http"
	"github.com/rentride/geofence/module/core/internal/handler/subscriber"
	"github.com/rentride/geofence/module/core/internal/repository/database/postgres"
	"github.com/rentride/geofence/module/core/internal/repository/publisher/rabbitmq"
	"github.com/rentride/geofence/module/core/internal/repository/statecache"
	"github.com/rentride/geofence/module/core/service"
)

type Options struct {
	ReorderWindow      time.Duration
	PipelineBufferSize int
}

type Module struct {
	GeofenceSvc *service.GeofenceService
	IngestSvc   *service.IngestService
	Pipeline    *service.Pipeline

	geofenceHandler *handler.GeofenceHandler
	alertHandler    *handler.AlertHandler
	deviceHandler   *handler.DeviceHandler
	subscriber      *subscriber.PositionSubscriber
}

func Build(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, redisClient *redis.Client, opts Options) (*Module, error) {
	geofenceRepo := postgres.NewGeofenceRepo(db)
	positionRepo := postgres.NewPositionRepo(db)
	alertRepo := postgres.NewAlertRepo(db)

	alertPub, err := rabbitmq.NewAlertPublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("alert publisher: %w", err)
	}

	cache := statecache.New(redisClient)

	tracker := service.NewTracker()
	geofenceSvc := service.NewGeofenceService(geofenceRepo, tracker)
	ingestSvc := service.NewIngestService(positionRepo, cache, opts.ReorderWindow)
	evaluator := service.NewEvaluator()
	dispatcher := service.NewDispatcher(alertRepo, alertPub, cache)

	pipeline := service.NewPipeline(ingestSvc, geofenceSvc, evaluator, tracker, dispatcher, opts.PipelineBufferSize)

	return &Module{
		GeofenceSvc:     geofenceSvc,
		IngestSvc:       ingestSvc,
		Pipeline:        pipeline,
		geofenceHandler: handler.NewGeofenceHandler(geofenceSvc),
		alertHandler:    handler.NewAlertHandler(alertRepo),
		deviceHandler:   handler.NewDeviceHandler(positionRepo, ingestSvc),
		subscriber:      subscriber.NewPositionSubscriber(mqttClient, pipeline),
	}, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.geofenceHandler.Register(r)
	m.alertHandler.Register(r)
	m.deviceHandler.Register(r)
}

// Start launches the evaluation pipeline and subscribes to position topics.
func (m *Module) Start(ctx context.Context) error {
	m.Pipeline.Start(ctx)
	return m.subscriber.Start()
}

// Stop drains buffered fixes and waits for in-flight evaluations.
func (m *Module) Stop() {
	m.Pipeline.Stop()
}
