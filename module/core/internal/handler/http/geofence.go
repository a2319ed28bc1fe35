package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rentride/geofence/module/core/domain"
)

type geofenceService interface {
	Create(ctx context.Context, def *domain.GeofenceDefinition) (*domain.Geofence, error)
	Update(ctx context.Context, id string, def *domain.GeofenceDefinition) (*domain.Geofence, error)
	Delete(ctx context.Context, id string) error
	ListActiveFor(ctx context.Context, deviceID string) ([]domain.Geofence, error)
}

type GeofenceHandler struct {
	geofenceSvc geofenceService
}

func NewGeofenceHandler(geofenceSvc geofenceService) *GeofenceHandler {
	return &GeofenceHandler{geofenceSvc: geofenceSvc}
}

func (h *GeofenceHandler) Register(r *gin.RouterGroup) {
	r.POST("/geofences", h.Create)
	r.PUT("/geofences/:geofence_id", h.Update)
	r.DELETE("/geofences/:geofence_id", h.Delete)
	r.GET("/devices/:device_id/geofences", h.ListForDevice)
}

func (h *GeofenceHandler) Create(c *gin.Context) {
	var def domain.GeofenceDefinition
	if err := c.ShouldBindJSON(&def); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	gf, err := h.geofenceSvc.Create(c.Request.Context(), &def)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidGeofence) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create geofence"})
		return
	}

	c.JSON(http.StatusCreated, gf)
}

func (h *GeofenceHandler) Update(c *gin.Context) {
	geofenceID := c.Param("geofence_id")

	var def domain.GeofenceDefinition
	if err := c.ShouldBindJSON(&def); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	gf, err := h.geofenceSvc.Update(c.Request.Context(), geofenceID, &def)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidGeofence):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrGeofenceNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "geofence not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update geofence"})
		}
		return
	}

	c.JSON(http.StatusOK, gf)
}

func (h *GeofenceHandler) Delete(c *gin.Context) {
	geofenceID := c.Param("geofence_id")

	if err := h.geofenceSvc.Delete(c.Request.Context(), geofenceID); err != nil {
		if errors.Is(err, domain.ErrGeofenceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "geofence not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete geofence"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *GeofenceHandler) ListForDevice(c *gin.Context) {
	deviceID := c.Param("device_id")

	geofences, err := h.geofenceSvc.ListActiveFor(c.Request.Context(), deviceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch geofences"})
		return
	}

	c.JSON(http.StatusOK, geofences)
}
