// Package sensors holds the static PMT position table for a detector and
// the CSV loader that populates it from a parsed geometry file.
package sensors

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/wcd-data/eventdisplay/internal/geometry"
)

// Sensor is one PMT: a unique tube id and its 3D position in cm.
type Sensor struct {
	TubeID int64
	X      float64
	Y      float64
	Z      float64
}

// Table is an immutable list of sensors with unique tube ids, in load order.
type Table struct {
	sensors []Sensor
	byID    map[int64]int
}

// NewTable builds a table from a sensor list, rejecting duplicate tube ids.
func NewTable(list []Sensor) (*Table, error) {
	if len(list) == 0 {
		return nil, &geometry.ErrConfiguration{Reason: "sensor table is empty"}
	}
	byID := make(map[int64]int, len(list))
	for i, s := range list {
		if prev, dup := byID[s.TubeID]; dup {
			return nil, fmt.Errorf("duplicate tube_id %d at rows %d and %d", s.TubeID, prev, i)
		}
		byID[s.TubeID] = i
	}
	t := &Table{
		sensors: make([]Sensor, len(list)),
		byID:    byID,
	}
	copy(t.sensors, list)
	return t, nil
}

// Len returns the number of sensors.
func (t *Table) Len() int { return len(t.sensors) }

// At returns the sensor at index i.
func (t *Table) At(i int) Sensor { return t.sensors[i] }

// TubeIDs returns the tube ids in table order.
func (t *Table) TubeIDs() []int64 {
	ids := make([]int64, len(t.sensors))
	for i, s := range t.sensors {
		ids[i] = s.TubeID
	}
	return ids
}

// Positions returns the 3D positions as parallel slices in table order.
func (t *Table) Positions() (x, y, z []float64) {
	n := len(t.sensors)
	x = make([]float64, n)
	y = make([]float64, n)
	z = make([]float64, n)
	for i, s := range t.sensors {
		x[i], y[i], z[i] = s.X, s.Y, s.Z
	}
	return x, y, z
}

// IndexOf returns the table index for a tube id, or -1 if absent.
func (t *Table) IndexOf(tubeID int64) int {
	i, ok := t.byID[tubeID]
	if !ok {
		return -1
	}
	return i
}

// LoadCSV reads a sensor table from a CSV file with a header row containing
// at least the columns tube_id, x, y, z (extra columns are ignored). This is
// the format the geometry parsing scripts emit.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sensor table: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV reads a sensor table from CSV data.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // column count checked via the header below

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read sensor table header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{"tube_id", "x", "y", "z"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("sensor table missing column %q", required)
		}
	}

	var list []Sensor
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read sensor table row %d: %w", line, err)
		}
		line++

		s, err := parseSensor(record, cols)
		if err != nil {
			return nil, fmt.Errorf("sensor table row %d: %w", line, err)
		}
		list = append(list, s)
	}

	return NewTable(list)
}

func parseSensor(record []string, cols map[string]int) (Sensor, error) {
	var s Sensor
	var err error

	get := func(name string) (string, error) {
		i := cols[name]
		if i >= len(record) {
			return "", fmt.Errorf("missing field %q", name)
		}
		return record[i], nil
	}

	raw, err := get("tube_id")
	if err != nil {
		return s, err
	}
	if s.TubeID, err = strconv.ParseInt(raw, 10, 64); err != nil {
		return s, fmt.Errorf("parse tube_id: %w", err)
	}

	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"x", &s.X},
		{"y", &s.Y},
		{"z", &s.Z},
	} {
		raw, err := get(f.name)
		if err != nil {
			return s, err
		}
		if *f.dst, err = strconv.ParseFloat(raw, 64); err != nil {
			return s, fmt.Errorf("parse %s: %w", f.name, err)
		}
	}

	return s, nil
}
