// Command pmt-distances precomputes the pairwise PMT distance matrix and
// the derived nearest-neighbor table for a detector geometry, and persists
// the result to the geometry database for later graph construction.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/wcd-data/eventdisplay/internal/db"
	"github.com/wcd-data/eventdisplay/internal/neighbors"
	"github.com/wcd-data/eventdisplay/internal/sensors"
)

func main() {
	input := flag.String("input", "", "input PMT CSV file (columns tube_id,x,y,z)")
	dbPath := flag.String("db", "geometry.db", "path to sqlite geometry DB")
	detector := flag.String("detector", "", "detector name recorded with the table")
	chunkSize := flag.Int("chunk-size", neighbors.DefaultChunkSize, "rows per computation chunk")
	workers := flag.Int("workers", 1, "parallel chunk workers (negative selects GOMAXPROCS)")
	maxDistance := flag.Float64("max-distance", 0, "drop neighbors at or beyond this distance (0 = keep all)")
	k := flag.Int("k", 0, "keep only the nearest K neighbors per PMT (0 = all)")
	migrationsDir := flag.String("migrations", "", "apply pending schema migrations from this directory before writing")
	flag.Parse()

	if *input == "" {
		log.Fatal("missing required -input flag")
	}
	if _, err := os.Stat(*input); err != nil {
		log.Fatalf("input file %s not accessible: %v", *input, err)
	}

	table, err := sensors.LoadCSV(*input)
	if err != nil {
		log.Fatalf("load sensor table: %v", err)
	}
	log.Printf("loaded %d PMTs from %s", table.Len(), *input)

	log.Printf("computing distance matrix (%d x %d, chunk=%d, workers=%d)...",
		table.Len(), table.Len(), *chunkSize, *workers)
	dm, err := neighbors.BuildDistanceMatrix(context.Background(), table, neighbors.Options{
		ChunkSize: *chunkSize,
		Workers:   *workers,
	})
	if err != nil {
		log.Fatalf("build distance matrix: %v", err)
	}

	stats := dm.Summarise()
	log.Printf("distances: min=%.2f max=%.2f mean=%.2f median=%.2f cm",
		stats.Min, stats.Max, stats.Mean, stats.Median)

	tableOpts := neighbors.TableOptions{
		MaxDistance:  *maxDistance,
		MaxNeighbors: *k,
	}
	nt, err := neighbors.BuildNeighborTable(dm, table.TubeIDs(), tableOpts)
	if err != nil {
		log.Fatalf("build neighbor table: %v", err)
	}
	log.Printf("neighbor table built: %d rows, width %d", len(nt.Rows), nt.Width())

	gdb, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("open geometry DB: %v", err)
	}
	defer gdb.Close()

	if *migrationsDir != "" {
		if err := gdb.MigrateUp(*migrationsDir); err != nil {
			log.Fatalf("apply migrations: %v", err)
		}
	}

	tableID, err := gdb.SaveSensorTable(*detector, table)
	if err != nil {
		log.Fatalf("save sensor table: %v", err)
	}
	buildID, err := gdb.SaveNeighborTable(tableID, nt, tableOpts)
	if err != nil {
		log.Fatalf("save neighbor table: %v", err)
	}

	log.Printf("done: table_id=%s build_id=%s", tableID, buildID)
}
