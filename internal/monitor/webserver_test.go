package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/wcd-data/eventdisplay/internal/events"
	"github.com/wcd-data/eventdisplay/internal/geometry"
	"github.com/wcd-data/eventdisplay/internal/neighbors"
	"github.com/wcd-data/eventdisplay/internal/sensors"
	"github.com/wcd-data/eventdisplay/internal/testutil"
)

func testServer(t *testing.T, event *events.Event, nt *neighbors.NeighborTable) *WebServer {
	t.Helper()

	table, err := sensors.NewTable([]sensors.Sensor{
		{TubeID: 1, X: 2, Y: 0, Z: 0},
		{TubeID: 2, X: 0, Y: 2, Z: 0},
		{TubeID: 3, X: 0, Y: 0, Z: 5},
		{TubeID: 4, X: 0, Y: 0, Z: -5},
	})
	testutil.AssertNoError(t, err)

	cfg := geometry.DetectorConfig{
		Name:     "TEST",
		Detector: geometry.Detector{Height: 10, CylinderRadius: 2, SensorRadius: 0.5},
		Margins:  geometry.CapMargins{Top: 0.01, Bottom: 0.01},
	}
	ws, err := NewWebServer(WebServerConfig{
		Address:   "127.0.0.1:0",
		Detector:  cfg,
		Table:     table,
		Event:     event,
		Neighbors: nt,
	})
	testutil.AssertNoError(t, err)
	return ws
}

func TestHandleHealth(t *testing.T) {
	ws := testServer(t, nil, nil)

	rec := testutil.NewTestRecorder()
	ws.setupRoutes().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/health"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var body map[string]string
	testutil.AssertNoError(t, json.NewDecoder(rec.Body).Decode(&body))
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestHandleDetector(t *testing.T) {
	ws := testServer(t, nil, nil)

	rec := testutil.NewTestRecorder()
	ws.setupRoutes().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/detector"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var body map[string]interface{}
	testutil.AssertNoError(t, json.NewDecoder(rec.Body).Decode(&body))
	if body["name"] != "TEST" {
		t.Errorf("name = %v, want TEST", body["name"])
	}
	if body["sensor_count"].(float64) != 4 {
		t.Errorf("sensor_count = %v, want 4", body["sensor_count"])
	}
}

func TestHandleSensorMap(t *testing.T) {
	ws := testServer(t, nil, nil)

	rec := testutil.NewTestRecorder()
	ws.setupRoutes().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/debug/sensor-map"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("Content-Type = %q, want html", ct)
	}
	if !strings.Contains(rec.Body.String(), "Sensor Map") {
		t.Error("rendered page does not mention the sensor map")
	}
}

func TestHandleEventDisplayWithoutEvent(t *testing.T) {
	ws := testServer(t, nil, nil)

	rec := testutil.NewTestRecorder()
	ws.setupRoutes().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/debug/event-display"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestHandleEventDisplay(t *testing.T) {
	event := &events.Event{
		TubeIDs: []int64{1, 3},
		Charge:  []float64{4.5, 0.5},
		Time:    []float64{950, 962},
	}
	ws := testServer(t, event, nil)

	for _, path := range []string{
		"/debug/event-display",
		"/debug/event-display?color_by=time",
	} {
		rec := testutil.NewTestRecorder()
		ws.setupRoutes().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, path))
		testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
		if !strings.Contains(rec.Body.String(), "Event Display") {
			t.Errorf("%s: rendered page does not mention the event display", path)
		}
	}
}

func TestHandleNeighbors(t *testing.T) {
	nt := &neighbors.NeighborTable{
		TubeIDs: []int64{1, 2, 3, 4},
		Rows: [][]int64{
			{2, 3, 4},
			{1, 3, 4},
			{1, 2, neighbors.NoNeighbor},
			{1, 2, neighbors.NoNeighbor},
		},
	}
	ws := testServer(t, nil, nt)
	mux := ws.setupRoutes()

	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/neighbors?tube_id=3&k=5"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var body struct {
		TubeID    int64   `json:"tube_id"`
		Neighbors []int64 `json:"neighbors"`
	}
	testutil.AssertNoError(t, json.NewDecoder(rec.Body).Decode(&body))
	if body.TubeID != 3 {
		t.Errorf("tube_id = %d, want 3", body.TubeID)
	}
	// Sentinel padding is never returned.
	if len(body.Neighbors) != 2 || body.Neighbors[0] != 1 || body.Neighbors[1] != 2 {
		t.Errorf("neighbors = %v, want [1 2]", body.Neighbors)
	}

	rec = testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/neighbors?tube_id=99"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)

	rec = testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/neighbors"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestHandleNeighborsWithoutTable(t *testing.T) {
	ws := testServer(t, nil, nil)

	rec := testutil.NewTestRecorder()
	ws.setupRoutes().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/neighbors?tube_id=1"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestSetEvent(t *testing.T) {
	ws := testServer(t, nil, nil)
	if ws.currentEvent() != nil {
		t.Fatal("expected no initial event")
	}

	e := &events.Event{TubeIDs: []int64{1}, Charge: []float64{1}, Time: []float64{0}}
	ws.SetEvent(e)
	if ws.currentEvent() != e {
		t.Error("SetEvent did not replace the current event")
	}
}

func TestStartShutsDownOnCancel(t *testing.T) {
	ws := testServer(t, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ws.Start(ctx) }()

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Start returned %v after cancel", err)
	}
}
