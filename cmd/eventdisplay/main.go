// Command eventdisplay renders one event as an unfolded-cylinder PNG.
package main

import (
	"flag"
	"log"

	"github.com/wcd-data/eventdisplay/internal/events"
	"github.com/wcd-data/eventdisplay/internal/geometry"
	"github.com/wcd-data/eventdisplay/internal/projection"
	"github.com/wcd-data/eventdisplay/internal/render"
	"github.com/wcd-data/eventdisplay/internal/sensors"
)

func main() {
	detector := flag.String("detector", "SK", "detector preset name")
	sensorCSV := flag.String("sensors", "", "sensor table CSV (columns tube_id,x,y,z)")
	eventCSV := flag.String("event", "", "event CSV (columns tube_id,charge,time)")
	out := flag.String("out", "event.png", "output PNG path")
	colorBy := flag.String("color-by", "charge", "hit coloring: charge or time")
	rotate := flag.String("rotate", "", "extra axis rotations applied after the preset realignment, e.g. x90,z180")
	flag.Parse()

	cfg, err := geometry.Preset(*detector)
	if err != nil {
		log.Fatal(err)
	}
	if *rotate != "" {
		extra, err := geometry.ParseRotationSpec(*rotate)
		if err != nil {
			log.Fatalf("parse -rotate: %v", err)
		}
		base := cfg.Realignment
		if base == nil {
			base = geometry.Identity()
		}
		cfg.Realignment = geometry.Compose(extra, base)
	}
	if *sensorCSV == "" || *eventCSV == "" {
		log.Fatal("missing required -sensors or -event flag")
	}

	table, err := sensors.LoadCSV(*sensorCSV)
	if err != nil {
		log.Fatalf("load sensor table: %v", err)
	}
	event, err := events.LoadCSV(*eventCSV)
	if err != nil {
		log.Fatalf("load event: %v", err)
	}

	hits, err := event.HitSet(table)
	if err != nil {
		log.Fatalf("resolve hit positions: %v", err)
	}

	proj, err := projection.ForPreset(cfg)
	if err != nil {
		log.Fatalf("configure projector: %v", err)
	}
	projected, err := proj.Project(hits)
	if err != nil {
		log.Fatalf("project hits: %v", err)
	}

	colorData := event.Charge
	label := "charge (p.e.)"
	if *colorBy == "time" {
		colorData = event.Time
		label = "time (ns)"
	}

	ep := render.NewEventPlot(cfg)
	ep.ColorLabel = label
	if err := ep.Render(projected, colorData, *out); err != nil {
		log.Fatalf("render event display: %v", err)
	}

	log.Printf("wrote %s (%d hits)", *out, projected.Len())
}
