package neighbors

import (
	"sort"

	"github.com/wcd-data/eventdisplay/internal/geometry"
)

// NoNeighbor is the sentinel tube id that pads neighbor rows past the last
// qualifying neighbor.
const NoNeighbor int64 = -1

// NeighborTable lists, for each sensor, the tube ids of the other sensors
// ordered nearest-first. Every row has the same width; rows with fewer
// qualifying neighbors are right-padded with NoNeighbor. Read-only once
// built.
type NeighborTable struct {
	// TubeIDs holds the tube id of each row's own sensor, in matrix order.
	TubeIDs []int64
	// Rows holds the ordered neighbor tube ids, one row per sensor.
	Rows [][]int64
}

// Width returns the fixed row width.
func (t *NeighborTable) Width() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return len(t.Rows[0])
}

// Neighbors returns row i truncated at the first NoNeighbor sentinel.
func (t *NeighborTable) Neighbors(i int) []int64 {
	row := t.Rows[i]
	for k, id := range row {
		if id == NoNeighbor {
			return row[:k]
		}
	}
	return row
}

// TableOptions controls neighbor table derivation.
type TableOptions struct {
	// MaxDistance drops neighbors at or beyond this distance when > 0.
	// The comparison is strict: a neighbor exactly at MaxDistance is
	// excluded.
	MaxDistance float64
	// MaxNeighbors caps the row width to the nearest K when > 0.
	// Otherwise rows are N-1 wide.
	MaxNeighbors int
}

// BuildNeighborTable derives the per-sensor neighbor lists from a distance
// matrix. For each sensor the other sensors are sorted by ascending
// distance, with ties broken by ascending tube id so the ordering is fully
// deterministic even when distances compare equal. A sensor never appears in
// its own row.
func BuildNeighborTable(dm *DistanceMatrix, tubeIDs []int64, opts TableOptions) (*NeighborTable, error) {
	if dm == nil || dm.Order() == 0 {
		return nil, &geometry.ErrConfiguration{Reason: "distance matrix is empty"}
	}
	n := dm.Order()
	if len(tubeIDs) != n {
		return nil, &geometry.ErrShapeMismatch{What: "tube ids vs matrix order", Want: n, Got: len(tubeIDs)}
	}

	width := n - 1
	if opts.MaxNeighbors > 0 && opts.MaxNeighbors < width {
		width = opts.MaxNeighbors
	}

	t := &NeighborTable{
		TubeIDs: make([]int64, n),
		Rows:    make([][]int64, n),
	}
	copy(t.TubeIDs, tubeIDs)

	order := make([]int, 0, n-1)
	row := make([]float64, n)
	for i := 0; i < n; i++ {
		row = dm.Row(i, row)

		// Self is excluded before sorting, not filtered afterwards.
		order = order[:0]
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			if opts.MaxDistance > 0 && row[j] >= opts.MaxDistance {
				continue
			}
			order = append(order, j)
		}

		sort.Slice(order, func(a, b int) bool {
			da, db := row[order[a]], row[order[b]]
			if da != db {
				return da < db
			}
			return tubeIDs[order[a]] < tubeIDs[order[b]]
		})

		out := make([]int64, width)
		for k := range out {
			if k < len(order) {
				out[k] = tubeIDs[order[k]]
			} else {
				out[k] = NoNeighbor
			}
		}
		t.Rows[i] = out
	}

	return t, nil
}
