// Command display-server serves the interactive event display: echarts
// views of the unfolded sensor layout and the loaded event, plus JSON
// endpoints for geometry and precomputed neighbors.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/wcd-data/eventdisplay/internal/db"
	"github.com/wcd-data/eventdisplay/internal/events"
	"github.com/wcd-data/eventdisplay/internal/geometry"
	"github.com/wcd-data/eventdisplay/internal/monitor"
	"github.com/wcd-data/eventdisplay/internal/neighbors"
	"github.com/wcd-data/eventdisplay/internal/sensors"
)

func main() {
	listen := flag.String("listen", ":8080", "listen address")
	detector := flag.String("detector", "SK", "detector preset name")
	sensorCSV := flag.String("sensors", "", "sensor table CSV (columns tube_id,x,y,z)")
	eventCSV := flag.String("event", "", "optional event CSV to display at startup")
	dbPath := flag.String("db", "", "optional geometry DB with a persisted neighbor build")
	buildID := flag.String("build", "", "neighbor build id to load from the DB")
	flag.Parse()

	cfg, err := geometry.Preset(*detector)
	if err != nil {
		log.Fatal(err)
	}
	if *sensorCSV == "" {
		log.Fatal("missing required -sensors flag")
	}

	table, err := sensors.LoadCSV(*sensorCSV)
	if err != nil {
		log.Fatalf("load sensor table: %v", err)
	}

	var event *events.Event
	if *eventCSV != "" {
		if event, err = events.LoadCSV(*eventCSV); err != nil {
			log.Fatalf("load event: %v", err)
		}
	}

	var neighborTable *neighbors.NeighborTable
	if *dbPath != "" && *buildID != "" {
		gdb, err := db.NewDB(*dbPath)
		if err != nil {
			log.Fatalf("open geometry DB: %v", err)
		}
		defer gdb.Close()
		if neighborTable, err = gdb.LoadNeighborTable(*buildID); err != nil {
			log.Fatalf("load neighbor build %s: %v", *buildID, err)
		}
	}

	ws, err := monitor.NewWebServer(monitor.WebServerConfig{
		Address:   *listen,
		Detector:  cfg,
		Table:     table,
		Event:     event,
		Neighbors: neighborTable,
	})
	if err != nil {
		log.Fatalf("configure web server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ws.Start(ctx); err != nil {
		log.Fatalf("web server: %v", err)
	}
}
