// Package db persists detector geometry artifacts in SQLite: loaded sensor
// tables and the neighbor tables precomputed from them. Each persisted
// artifact gets a uuid so repeated builds against the same geometry stay
// distinguishable.
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// NewDB opens (creating if needed) the geometry database at path and ensures
// the base schema exists.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sensor_tables (
			table_id          TEXT PRIMARY KEY,
			detector          TEXT,
			sensor_count      BIGINT,
			created_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS sensors (
			table_id          TEXT,
			tube_id           BIGINT,
			x                 DOUBLE,
			y                 DOUBLE,
			z                 DOUBLE,
			PRIMARY KEY (table_id, tube_id),
			FOREIGN KEY (table_id) REFERENCES sensor_tables(table_id)
		);
		CREATE TABLE IF NOT EXISTS neighbor_builds (
			build_id          TEXT PRIMARY KEY,
			table_id          TEXT,
			max_distance      DOUBLE,
			max_neighbors     BIGINT,
			row_width         BIGINT,
			created_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (table_id) REFERENCES sensor_tables(table_id)
		);
		CREATE TABLE IF NOT EXISTS neighbor_entries (
			build_id          TEXT,
			tube_id           BIGINT,
			rank              BIGINT,
			neighbor_tube_id  BIGINT,
			PRIMARY KEY (build_id, tube_id, rank),
			FOREIGN KEY (build_id) REFERENCES neighbor_builds(build_id)
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &DB{db}, nil
}

// SensorTableMeta describes one persisted sensor table.
type SensorTableMeta struct {
	TableID     string
	Detector    string
	SensorCount int64
	CreatedAt   time.Time
}

// NeighborBuildMeta describes one persisted neighbor-table build.
type NeighborBuildMeta struct {
	BuildID      string
	TableID      string
	MaxDistance  float64
	MaxNeighbors int64
	RowWidth     int64
	CreatedAt    time.Time
}

// NewID returns a fresh identifier for a persisted artifact.
func NewID() string {
	return uuid.New().String()
}
