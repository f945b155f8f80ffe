// Package neighbors precomputes the spatial adjacency of a sensor table: a
// dense pairwise distance matrix and, derived from it, a distance-sorted
// neighbor list per sensor. The output is a one-time offline artifact
// consumed by graph-construction and display tooling.
package neighbors

import (
	"context"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/wcd-data/eventdisplay/internal/geometry"
	"github.com/wcd-data/eventdisplay/internal/sensors"
)

// DefaultChunkSize is the default number of matrix rows computed per batch.
// Chunking bounds the working set for large tables (N can be tens of
// thousands, so the full matrix runs to gigabytes); it has no effect on the
// numeric result.
const DefaultChunkSize = 1000

// DistanceMatrix is the dense symmetric N x N Euclidean distance matrix of a
// sensor table, with zero diagonal. Treat it as read-only once built.
type DistanceMatrix struct {
	m *mat.Dense
	n int
}

// Order returns N, the number of sensors.
func (d *DistanceMatrix) Order() int { return d.n }

// At returns the distance between sensors i and j.
func (d *DistanceMatrix) At(i, j int) float64 { return d.m.At(i, j) }

// Row copies row i into dst, allocating a fresh slice when dst is nil or
// not exactly Order() long (mat.Row panics on any other length).
func (d *DistanceMatrix) Row(i int, dst []float64) []float64 {
	if len(dst) != d.n {
		dst = make([]float64, d.n)
	}
	return mat.Row(dst, i, d.m)
}

// Matrix exposes the underlying gonum matrix for persistence and tests.
func (d *DistanceMatrix) Matrix() mat.Matrix { return d.m }

// Options controls how the distance matrix is computed. Both knobs are
// memory/throughput strategies only; the result is identical for any values.
type Options struct {
	// ChunkSize is the number of rows computed per batch.
	// Defaults to DefaultChunkSize.
	ChunkSize int
	// Workers is the number of goroutines computing chunks. Chunks write
	// disjoint rows, so they need no coordination. Defaults to 1
	// (sequential); a negative value selects GOMAXPROCS.
	Workers int
}

// BuildDistanceMatrix computes the pairwise Euclidean distances between all
// sensors in the table. Each D[i][j] is evaluated directly from the two
// positions, so chunk boundaries cannot perturb the result.
func BuildDistanceMatrix(ctx context.Context, table *sensors.Table, opts Options) (*DistanceMatrix, error) {
	if table == nil || table.Len() == 0 {
		return nil, &geometry.ErrConfiguration{Reason: "sensor table is empty"}
	}

	chunk := opts.ChunkSize
	if chunk == 0 {
		chunk = DefaultChunkSize
	}
	if chunk < 1 {
		return nil, &geometry.ErrConfiguration{Reason: "chunk size must be positive"}
	}
	workers := opts.Workers
	if workers == 0 {
		workers = 1
	}
	if workers < 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	x, y, z := table.Positions()
	n := table.Len()
	d := &DistanceMatrix{m: mat.NewDense(n, n, nil), n: n}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			fillRows(d.m, x, y, z, start, end)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

// fillRows computes matrix rows [start, end). Rows are disjoint between
// chunks, so concurrent calls never touch the same element.
func fillRows(m *mat.Dense, x, y, z []float64, start, end int) {
	n := len(x)
	for i := start; i < end; i++ {
		row := m.RawRowView(i)
		for j := 0; j < n; j++ {
			if i == j {
				row[j] = 0
				continue
			}
			dx := x[i] - x[j]
			dy := y[i] - y[j]
			dz := z[i] - z[j]
			row[j] = math.Sqrt(dx*dx + dy*dy + dz*dz)
		}
	}
}

// Stats summarises the off-diagonal distances of a matrix, mirroring the
// report the offline precomputation prints after a build.
type Stats struct {
	Min    float64
	Max    float64
	Mean   float64
	Median float64
}

// Summarise computes distance statistics over the strict upper triangle.
func (d *DistanceMatrix) Summarise() Stats {
	vals := make([]float64, 0, d.n*(d.n-1)/2)
	for i := 0; i < d.n; i++ {
		for j := i + 1; j < d.n; j++ {
			vals = append(vals, d.m.At(i, j))
		}
	}
	if len(vals) == 0 {
		return Stats{}
	}
	sort.Float64s(vals)
	return Stats{
		Min:    vals[0],
		Max:    vals[len(vals)-1],
		Mean:   stat.Mean(vals, nil),
		Median: stat.Quantile(0.5, stat.Empirical, vals, nil),
	}
}
