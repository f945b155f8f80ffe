// Package events loads per-event hit data and resolves hit positions
// against a sensor table. The upstream simulation exports hits as rows of
// (tube_id, charge, time); positions come from the detector geometry, never
// from the event file itself.
package events

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/wcd-data/eventdisplay/internal/projection"
	"github.com/wcd-data/eventdisplay/internal/sensors"
)

// Event holds the hits of one detector event as parallel slices.
type Event struct {
	TubeIDs []int64
	Charge  []float64
	Time    []float64
}

// Len returns the number of hits.
func (e *Event) Len() int { return len(e.TubeIDs) }

// LoadCSV reads an event from a CSV file with header columns
// tube_id, charge, time.
func LoadCSV(path string) (*Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open event file: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV reads an event from CSV data.
func ReadCSV(r io.Reader) (*Event, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read event header: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{"tube_id", "charge", "time"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("event file missing column %q", required)
		}
	}

	e := &Event{}
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read event row %d: %w", line, err)
		}
		line++

		id, err := strconv.ParseInt(record[cols["tube_id"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("event row %d: parse tube_id: %w", line, err)
		}
		charge, err := strconv.ParseFloat(record[cols["charge"]], 64)
		if err != nil {
			return nil, fmt.Errorf("event row %d: parse charge: %w", line, err)
		}
		t, err := strconv.ParseFloat(record[cols["time"]], 64)
		if err != nil {
			return nil, fmt.Errorf("event row %d: parse time: %w", line, err)
		}

		e.TubeIDs = append(e.TubeIDs, id)
		e.Charge = append(e.Charge, charge)
		e.Time = append(e.Time, t)
	}

	return e, nil
}

// HitSet resolves the event's hit positions against a sensor table. Hits
// referencing unknown tube ids are an error: an event never legitimately
// names a PMT the geometry does not have.
func (e *Event) HitSet(table *sensors.Table) (projection.HitSet, error) {
	hits := projection.HitSet{
		X: make([]float64, e.Len()),
		Y: make([]float64, e.Len()),
		Z: make([]float64, e.Len()),
	}
	for i, id := range e.TubeIDs {
		idx := table.IndexOf(id)
		if idx < 0 {
			return projection.HitSet{}, fmt.Errorf("event hit %d references unknown tube_id %d", i, id)
		}
		s := table.At(idx)
		hits.X[i], hits.Y[i], hits.Z[i] = s.X, s.Y, s.Z
	}
	return hits, nil
}
