package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rentride/geofence/module/core/domain"
)

type positionReader interface {
	GetLatest(ctx context.Context, deviceID string) (*domain.PositionFix, error)
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.PositionFix, error)
}

type deviceGate interface {
	Activate(deviceID string)
	Deactivate(deviceID string)
}

type positionResponse struct {
	DeviceID  string  `json:"device_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

type DeviceHandler struct {
	positions positionReader
	gate      deviceGate
}

func NewDeviceHandler(positions positionReader, gate deviceGate) *DeviceHandler {
	return &DeviceHandler{positions: positions, gate: gate}
}

func (h *DeviceHandler) Register(r *gin.RouterGroup) {
	r.GET("/devices/:device_id/position", h.GetLatestPosition)
	r.GET("/devices/:device_id/history", h.GetHistory)
	r.POST("/devices/:device_id/activate", h.Activate)
	r.POST("/devices/:device_id/deactivate", h.Deactivate)
}

func (h *DeviceHandler) GetLatestPosition(c *gin.Context) {
	deviceID := c.Param("device_id")

	fix, err := h.positions.GetLatest(c.Request.Context(), deviceID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
		return
	}

	c.JSON(http.StatusOK, toPositionResponse(fix))
}

func (h *DeviceHandler) GetHistory(c *gin.Context) {
	deviceID := c.Param("device_id")

	start, err := strconv.ParseInt(c.Query("start"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start parameter"})
		return
	}

	end, err := strconv.ParseInt(c.Query("end"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end parameter"})
		return
	}

	query := &domain.HistoryQuery{
		DeviceID: deviceID,
		Start:    time.Unix(start, 0),
		End:      time.Unix(end, 0),
	}

	fixes, err := h.positions.GetHistory(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch history"})
		return
	}

	results := make([]positionResponse, len(fixes))
	for i := range fixes {
		results[i] = toPositionResponse(&fixes[i])
	}
	c.JSON(http.StatusOK, results)
}

func (h *DeviceHandler) Activate(c *gin.Context) {
	h.gate.Activate(c.Param("device_id"))
	c.Status(http.StatusNoContent)
}

func (h *DeviceHandler) Deactivate(c *gin.Context) {
	h.gate.Deactivate(c.Param("device_id"))
	c.Status(http.StatusNoContent)
}

func toPositionResponse(fix *domain.PositionFix) positionResponse {
	return positionResponse{
		DeviceID:  fix.DeviceID,
		Latitude:  fix.Lat,
		Longitude: fix.Lon,
		Timestamp: fix.Timestamp.Unix(),
	}
}
