// Package monitor provides the HTTP surface for browsing event displays:
// JSON status endpoints plus echarts-rendered debug views of the unfolded
// detector and the current event.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/wcd-data/eventdisplay/internal/events"
	"github.com/wcd-data/eventdisplay/internal/geometry"
	"github.com/wcd-data/eventdisplay/internal/neighbors"
	"github.com/wcd-data/eventdisplay/internal/projection"
	"github.com/wcd-data/eventdisplay/internal/sensors"
	"github.com/wcd-data/eventdisplay/internal/version"
)

// WebServer serves the display endpoints for one detector.
type WebServer struct {
	address   string
	server    *http.Server
	cfg       geometry.DetectorConfig
	projector *projection.Projector
	table     *sensors.Table

	mu       sync.Mutex
	event    *events.Event
	neighbor *neighbors.NeighborTable
}

// WebServerConfig contains configuration options for the web server.
type WebServerConfig struct {
	Address  string
	Detector geometry.DetectorConfig
	Table    *sensors.Table
	// Event is the initially displayed event; may be nil.
	Event *events.Event
	// Neighbors backs the /api/neighbors endpoint; may be nil.
	Neighbors *neighbors.NeighborTable
}

// NewWebServer creates a web server with the provided configuration.
func NewWebServer(config WebServerConfig) (*WebServer, error) {
	proj, err := projection.ForPreset(config.Detector)
	if err != nil {
		return nil, err
	}

	ws := &WebServer{
		address:   config.Address,
		cfg:       config.Detector,
		projector: proj,
		table:     config.Table,
		event:     config.Event,
		neighbor:  config.Neighbors,
	}
	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}
	return ws, nil
}

// SetEvent replaces the currently displayed event.
func (ws *WebServer) SetEvent(e *events.Event) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.event = e
}

func (ws *WebServer) currentEvent() *events.Event {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.event
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// Start runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully.
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		log.Printf("starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}
	return nil
}

// setupRoutes configures the HTTP routes and handlers.
func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/api/version", ws.handleVersion)
	mux.HandleFunc("/api/detector", ws.handleDetector)
	mux.HandleFunc("/api/neighbors", ws.handleNeighbors)
	mux.HandleFunc("/debug/event-display", ws.handleEventDisplay)
	mux.HandleFunc("/debug/sensor-map", ws.handleSensorMap)

	return mux
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (ws *WebServer) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"version":    version.Version,
		"git_sha":    version.GitSHA,
		"build_time": version.BuildTime,
	})
}

func (ws *WebServer) handleDetector(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"name":            ws.cfg.Name,
		"height":          ws.cfg.Detector.Height,
		"cylinder_radius": ws.cfg.Detector.CylinderRadius,
		"sensor_radius":   ws.cfg.Detector.SensorRadius,
		"margin_top":      ws.cfg.Margins.Top,
		"margin_bottom":   ws.cfg.Margins.Bottom,
		"sensor_count":    ws.tableLen(),
	})
}

func (ws *WebServer) tableLen() int {
	if ws.table == nil {
		return 0
	}
	return ws.table.Len()
}

// handleNeighbors returns the precomputed nearest neighbors of one tube.
// Query params:
//
//	tube_id (required)
//	k (optional, default 10)
func (ws *WebServer) handleNeighbors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ws.mu.Lock()
	nt := ws.neighbor
	ws.mu.Unlock()
	if nt == nil {
		ws.writeJSONError(w, http.StatusNotFound, "no neighbor table loaded")
		return
	}

	var tubeID int64
	if _, err := fmt.Sscanf(r.URL.Query().Get("tube_id"), "%d", &tubeID); err != nil {
		ws.writeJSONError(w, http.StatusBadRequest, "missing or invalid 'tube_id' parameter")
		return
	}

	k := 10
	if raw := r.URL.Query().Get("k"); raw != "" {
		fmt.Sscanf(raw, "%d", &k)
		if k <= 0 || k > nt.Width() {
			k = 10
		}
	}

	row := -1
	for i, id := range nt.TubeIDs {
		if id == tubeID {
			row = i
			break
		}
	}
	if row < 0 {
		ws.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("tube_id %d not in neighbor table", tubeID))
		return
	}

	near := nt.Neighbors(row)
	if len(near) > k {
		near = near[:k]
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"tube_id":   tubeID,
		"neighbors": near,
	})
}
