package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/rentride/geofence/module/core/domain"
)

type mockGeofenceService struct {
	createFn func(ctx context.Context, def *domain.GeofenceDefinition) (*domain.Geofence, error)
	updateFn func(ctx context.Context, id string, def *domain.GeofenceDefinition) (*domain.Geofence, error)
	deleteFn func(ctx context.Context, id string) error
	listFn   func(ctx context.Context, deviceID string) ([]domain.Geofence, error)
}

func (m *mockGeofenceService) Create(ctx context.Context, def *domain.GeofenceDefinition) (*domain.Geofence, error) {
	return m.createFn(ctx, def)
}

func (m *mockGeofenceService) Update(ctx context.Context, id string, def *domain.GeofenceDefinition) (*domain.Geofence, error) {
	return m.updateFn(ctx, id, def)
}

func (m *mockGeofenceService) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func (m *mockGeofenceService) ListActiveFor(ctx context.Context, deviceID string) ([]domain.Geofence, error) {
	return m.listFn(ctx, deviceID)
}

func setupGeofenceRouter(svc geofenceService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewGeofenceHandler(svc)
	h.Register(r.Group(""))
	return r
}

func circleBody() []byte {
	body, _ := json.Marshal(map[string]any{
		"device_id":     "veh-001",
		"name":          "Copenhagen depot",
		"shape":         "circle",
		"center":        map[string]float64{"latitude": 55.6761, "longitude": 12.5683},
		"radius_m":      5000,
		"alert_on_exit": true,
	})
	return body
}

func TestCreateGeofence_Success(t *testing.T) {
	svc := &mockGeofenceService{
		createFn: func(_ context.Context, def *domain.GeofenceDefinition) (*domain.Geofence, error) {
			if def.Shape != domain.ShapeCircle || def.RadiusM != 5000 {
				t.Fatalf("definition not bound: %+v", def)
			}
			return &domain.Geofence{ID: "gf-1", DeviceID: def.DeviceID, Shape: def.Shape}, nil
		},
	}

	r := setupGeofenceRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/geofences", bytes.NewReader(circleBody()))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp domain.Geofence
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ID != "gf-1" {
		t.Errorf("expected gf-1, got %s", resp.ID)
	}
}

func TestCreateGeofence_InvalidBody(t *testing.T) {
	svc := &mockGeofenceService{}
	r := setupGeofenceRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/geofences", bytes.NewReader([]byte("{not json")))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCreateGeofence_InvalidDefinition(t *testing.T) {
	svc := &mockGeofenceService{
		createFn: func(_ context.Context, _ *domain.GeofenceDefinition) (*domain.Geofence, error) {
			return nil, domain.ErrInvalidGeofence
		},
	}

	r := setupGeofenceRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/geofences", bytes.NewReader(circleBody()))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestUpdateGeofence_NotFound(t *testing.T) {
	svc := &mockGeofenceService{
		updateFn: func(_ context.Context, _ string, _ *domain.GeofenceDefinition) (*domain.Geofence, error) {
			return nil, domain.ErrGeofenceNotFound
		},
	}

	r := setupGeofenceRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/geofences/missing", bytes.NewReader(circleBody()))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestUpdateGeofence_Success(t *testing.T) {
	svc := &mockGeofenceService{
		updateFn: func(_ context.Context, id string, _ *domain.GeofenceDefinition) (*domain.Geofence, error) {
			return &domain.Geofence{ID: id}, nil
		},
	}

	r := setupGeofenceRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/geofences/gf-1", bytes.NewReader(circleBody()))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestDeleteGeofence_Success(t *testing.T) {
	var deleted string
	svc := &mockGeofenceService{
		deleteFn: func(_ context.Context, id string) error {
			deleted = id
			return nil
		},
	}

	r := setupGeofenceRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/geofences/gf-1", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if deleted != "gf-1" {
		t.Errorf("expected gf-1 deleted, got %q", deleted)
	}
}

func TestDeleteGeofence_NotFound(t *testing.T) {
	svc := &mockGeofenceService{
		deleteFn: func(_ context.Context, _ string) error {
			return domain.ErrGeofenceNotFound
		},
	}

	r := setupGeofenceRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/geofences/missing", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestListGeofencesForDevice_Success(t *testing.T) {
	svc := &mockGeofenceService{
		listFn: func(_ context.Context, deviceID string) ([]domain.Geofence, error) {
			if deviceID != "veh-001" {
				t.Fatalf("unexpected deviceID: %s", deviceID)
			}
			return []domain.Geofence{{ID: "gf-1"}, {ID: "gf-2"}}, nil
		},
	}

	r := setupGeofenceRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/devices/veh-001/geofences", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp []domain.Geofence
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 geofences, got %d", len(resp))
	}
}

func TestListGeofencesForDevice_Error(t *testing.T) {
	svc := &mockGeofenceService{
		listFn: func(_ context.Context, _ string) ([]domain.Geofence, error) {
			return nil, errors.New("db error")
		},
	}

	r := setupGeofenceRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/devices/veh-001/geofences", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
