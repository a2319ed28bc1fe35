package http

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rentride/geofence/module/core/domain"
)

const (
	defaultAlertLimit = 100
	maxAlertLimit     = 1000
)

type alertStore interface {
	ListAfter(ctx context.Context, query *domain.AlertQuery) ([]domain.Alert, error)
	Acknowledge(ctx context.Context, id int64) error
}

// AlertHandler serves the alert feed. Consumers poll with the highest id they
// have seen; alert ids are assigned in insertion order, so the cursor never
// skips or repeats.
type AlertHandler struct {
	alerts alertStore
}

func NewAlertHandler(alerts alertStore) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

func (h *AlertHandler) Register(r *gin.RouterGroup) {
	r.GET("/alerts", h.List)
	r.POST("/alerts/:alert_id/ack", h.Acknowledge)
}

func (h *AlertHandler) List(c *gin.Context) {
	query := &domain.AlertQuery{Limit: defaultAlertLimit}

	if after := c.Query("after"); after != "" {
		v, err := strconv.ParseInt(after, 10, 64)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid after parameter"})
			return
		}
		query.After = v
	}

	if limit := c.Query("limit"); limit != "" {
		v, err := strconv.Atoi(limit)
		if err != nil || v <= 0 || v > maxAlertLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter"})
			return
		}
		query.Limit = v
	}

	alerts, err := h.alerts.ListAfter(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch alerts"})
		return
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}

	c.JSON(http.StatusOK, alerts)
}

func (h *AlertHandler) Acknowledge(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("alert_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}

	if err := h.alerts.Acknowledge(c.Request.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "alert not found or already acknowledged"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to acknowledge alert"})
		return
	}

	c.Status(http.StatusNoContent)
}
