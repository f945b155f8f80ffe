package db

import (
	"database/sql"
	"fmt"

	"github.com/wcd-data/eventdisplay/internal/neighbors"
	"github.com/wcd-data/eventdisplay/internal/sensors"
)

// SaveSensorTable persists a sensor table and returns its new table id.
func (db *DB) SaveSensorTable(detector string, table *sensors.Table) (string, error) {
	tableID := NewID()

	tx, err := db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO sensor_tables (table_id, detector, sensor_count) VALUES (?, ?, ?)`,
		tableID, detector, table.Len(),
	)
	if err != nil {
		return "", fmt.Errorf("insert sensor table: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO sensors (table_id, tube_id, x, y, z) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i := 0; i < table.Len(); i++ {
		s := table.At(i)
		if _, err := stmt.Exec(tableID, s.TubeID, s.X, s.Y, s.Z); err != nil {
			return "", fmt.Errorf("insert sensor %d: %w", s.TubeID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return tableID, nil
}

// LoadSensorTable reads a previously saved sensor table back, in tube-id
// order.
func (db *DB) LoadSensorTable(tableID string) (*sensors.Table, error) {
	rows, err := db.Query(
		`SELECT tube_id, x, y, z FROM sensors WHERE table_id = ? ORDER BY tube_id`,
		tableID,
	)
	if err != nil {
		return nil, fmt.Errorf("query sensors: %w", err)
	}
	defer rows.Close()

	var list []sensors.Sensor
	for rows.Next() {
		var s sensors.Sensor
		if err := rows.Scan(&s.TubeID, &s.X, &s.Y, &s.Z); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("sensor table %s not found", tableID)
	}

	return sensors.NewTable(list)
}

// ListSensorTables returns metadata for all persisted sensor tables, newest
// first.
func (db *DB) ListSensorTables() ([]SensorTableMeta, error) {
	rows, err := db.Query(
		`SELECT table_id, detector, sensor_count, created_at
		 FROM sensor_tables ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metas []SensorTableMeta
	for rows.Next() {
		var m SensorTableMeta
		if err := rows.Scan(&m.TableID, &m.Detector, &m.SensorCount, &m.CreatedAt); err != nil {
			return nil, err
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// SaveNeighborTable persists a neighbor-table build against a saved sensor
// table and returns the new build id. Sentinel padding entries are not
// stored; row width is recorded on the build so rows can be re-padded on
// load.
func (db *DB) SaveNeighborTable(tableID string, nt *neighbors.NeighborTable, opts neighbors.TableOptions) (string, error) {
	buildID := NewID()

	tx, err := db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO neighbor_builds (build_id, table_id, max_distance, max_neighbors, row_width)
		 VALUES (?, ?, ?, ?, ?)`,
		buildID, tableID, opts.MaxDistance, opts.MaxNeighbors, nt.Width(),
	)
	if err != nil {
		return "", fmt.Errorf("insert neighbor build: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO neighbor_entries (build_id, tube_id, rank, neighbor_tube_id) VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i, tubeID := range nt.TubeIDs {
		for rank, neighbor := range nt.Neighbors(i) {
			if _, err := stmt.Exec(buildID, tubeID, rank, neighbor); err != nil {
				return "", fmt.Errorf("insert neighbor entry for tube %d: %w", tubeID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return buildID, nil
}

// LoadNeighborTable reconstructs a persisted neighbor table, including its
// sentinel padding. The tube list comes from the build's sensor table, not
// from the stored entries, so a tube whose row lost every neighbor to the
// distance cutoff still comes back as an all-sentinel row. Rows are returned
// in ascending tube-id order.
func (db *DB) LoadNeighborTable(buildID string) (*neighbors.NeighborTable, error) {
	var width int
	var tableID string
	err := db.QueryRow(
		`SELECT row_width, table_id FROM neighbor_builds WHERE build_id = ?`, buildID,
	).Scan(&width, &tableID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("neighbor build %s not found", buildID)
	}
	if err != nil {
		return nil, err
	}

	idRows, err := db.Query(
		`SELECT tube_id FROM sensors WHERE table_id = ? ORDER BY tube_id`, tableID,
	)
	if err != nil {
		return nil, err
	}
	defer idRows.Close()

	nt := &neighbors.NeighborTable{}
	index := make(map[int64]int)
	for idRows.Next() {
		var tubeID int64
		if err := idRows.Scan(&tubeID); err != nil {
			return nil, err
		}
		row := make([]int64, width)
		for k := range row {
			row[k] = neighbors.NoNeighbor
		}
		index[tubeID] = len(nt.TubeIDs)
		nt.TubeIDs = append(nt.TubeIDs, tubeID)
		nt.Rows = append(nt.Rows, row)
	}
	if err := idRows.Err(); err != nil {
		return nil, err
	}
	if len(nt.TubeIDs) == 0 {
		return nil, fmt.Errorf("sensor table %s for build %s not found", tableID, buildID)
	}

	rows, err := db.Query(
		`SELECT tube_id, rank, neighbor_tube_id FROM neighbor_entries WHERE build_id = ?`,
		buildID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var tubeID, rank, neighbor int64
		if err := rows.Scan(&tubeID, &rank, &neighbor); err != nil {
			return nil, err
		}
		i, ok := index[tubeID]
		if !ok {
			return nil, fmt.Errorf("neighbor entry references tube %d outside sensor table %s", tubeID, tableID)
		}
		if rank < 0 || rank >= int64(width) {
			return nil, fmt.Errorf("neighbor entry for tube %d has rank %d outside row width %d", tubeID, rank, width)
		}
		nt.Rows[i][rank] = neighbor
	}
	return nt, rows.Err()
}
