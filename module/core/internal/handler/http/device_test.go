package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rentride/geofence/module/core/domain"
)

type mockPositionReader struct {
	getLatestFn  func(ctx context.Context, deviceID string) (*domain.PositionFix, error)
	getHistoryFn func(ctx context.Context, query *domain.HistoryQuery) ([]domain.PositionFix, error)
}

func (m *mockPositionReader) GetLatest(ctx context.Context, deviceID string) (*domain.PositionFix, error) {
	return m.getLatestFn(ctx, deviceID)
}

func (m *mockPositionReader) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.PositionFix, error) {
	return m.getHistoryFn(ctx, query)
}

type mockDeviceGate struct {
	activated   []string
	deactivated []string
}

func (m *mockDeviceGate) Activate(deviceID string)   { m.activated = append(m.activated, deviceID) }
func (m *mockDeviceGate) Deactivate(deviceID string) { m.deactivated = append(m.deactivated, deviceID) }

func setupDeviceRouter(positions positionReader, gate deviceGate) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewDeviceHandler(positions, gate)
	h.Register(r.Group(""))
	return r
}

func TestGetLatestPosition_Success(t *testing.T) {
	ts := time.Unix(1715003456, 0)
	positions := &mockPositionReader{
		getLatestFn: func(_ context.Context, deviceID string) (*domain.PositionFix, error) {
			if deviceID != "veh-001" {
				t.Fatalf("unexpected deviceID: %s", deviceID)
			}
			return &domain.PositionFix{DeviceID: "veh-001", Lat: 55.6761, Lon: 12.5683, Timestamp: ts}, nil
		},
	}

	r := setupDeviceRouter(positions, &mockDeviceGate{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/devices/veh-001/position", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp positionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.DeviceID != "veh-001" {
		t.Errorf("expected veh-001, got %s", resp.DeviceID)
	}
	if resp.Latitude != 55.6761 {
		t.Errorf("expected 55.6761, got %f", resp.Latitude)
	}
	if resp.Timestamp != 1715003456 {
		t.Errorf("expected 1715003456, got %d", resp.Timestamp)
	}
}

func TestGetLatestPosition_NotFound(t *testing.T) {
	positions := &mockPositionReader{
		getLatestFn: func(_ context.Context, _ string) (*domain.PositionFix, error) {
			return nil, errors.New("not found")
		},
	}

	r := setupDeviceRouter(positions, &mockDeviceGate{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/devices/UNKNOWN/position", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetDeviceHistory_Success(t *testing.T) {
	positions := &mockPositionReader{
		getHistoryFn: func(_ context.Context, query *domain.HistoryQuery) ([]domain.PositionFix, error) {
			if query.DeviceID != "veh-001" {
				t.Fatalf("unexpected deviceID: %s", query.DeviceID)
			}
			return []domain.PositionFix{
				{DeviceID: "veh-001", Lat: 55.6, Lon: 12.5, Timestamp: time.Unix(1715000000, 0)},
				{DeviceID: "veh-001", Lat: 55.7, Lon: 12.6, Timestamp: time.Unix(1715005000, 0)},
			}, nil
		},
	}

	r := setupDeviceRouter(positions, &mockDeviceGate{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/devices/veh-001/history?start=1715000000&end=1715009999", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp []positionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp))
	}
}

func TestGetDeviceHistory_InvalidRange(t *testing.T) {
	r := setupDeviceRouter(&mockPositionReader{}, &mockDeviceGate{})

	for _, url := range []string{
		"/devices/veh-001/history?start=abc&end=1715009999",
		"/devices/veh-001/history?start=1715000000&end=abc",
	} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", url, nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", url, w.Code)
		}
	}
}

func TestActivateDeactivate(t *testing.T) {
	gate := &mockDeviceGate{}
	r := setupDeviceRouter(&mockPositionReader{}, gate)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/devices/veh-001/deactivate", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/devices/veh-001/activate", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	if len(gate.deactivated) != 1 || gate.deactivated[0] != "veh-001" {
		t.Errorf("expected veh-001 deactivated, got %v", gate.deactivated)
	}
	if len(gate.activated) != 1 || gate.activated[0] != "veh-001" {
		t.Errorf("expected veh-001 activated, got %v", gate.activated)
	}
}
