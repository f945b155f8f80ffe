package projection

import (
	"errors"
	"math"
	"testing"

	"github.com/wcd-data/eventdisplay/internal/geometry"
)

func testDetector() geometry.Detector {
	return geometry.Detector{Height: 10, CylinderRadius: 2, SensorRadius: 0.5}
}

func mustProjector(t *testing.T, det geometry.Detector, m geometry.CapMargins, rot *geometry.Rotation) *Projector {
	t.Helper()
	p, err := NewProjector(det, m, rot)
	if err != nil {
		t.Fatalf("NewProjector: %v", err)
	}
	return p
}

func TestNewProjectorRejectsBadGeometry(t *testing.T) {
	tests := []struct {
		name string
		det  geometry.Detector
		m    geometry.CapMargins
	}{
		{"zero height", geometry.Detector{Height: 0, CylinderRadius: 2}, geometry.CapMargins{}},
		{"negative height", geometry.Detector{Height: -1, CylinderRadius: 2}, geometry.CapMargins{}},
		{"zero radius", geometry.Detector{Height: 10, CylinderRadius: 0}, geometry.CapMargins{}},
		{"negative margin", testDetector(), geometry.CapMargins{Top: -0.1}},
		{"margin exceeds half height", testDetector(), geometry.CapMargins{Top: 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProjector(tt.det, tt.m, nil)
			var cfgErr *geometry.ErrConfiguration
			if !errors.As(err, &cfgErr) {
				t.Errorf("NewProjector error = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestProjectShapeMismatch(t *testing.T) {
	p := mustProjector(t, testDetector(), geometry.CapMargins{Top: 0.01, Bottom: 0.01}, nil)

	_, err := p.Project(HitSet{X: []float64{1, 2}, Y: []float64{1}, Z: []float64{1, 2}})
	var shapeErr *geometry.ErrShapeMismatch
	if !errors.As(err, &shapeErr) {
		t.Fatalf("Project error = %v, want ErrShapeMismatch", err)
	}
}

func TestProjectEmptyEvent(t *testing.T) {
	p := mustProjector(t, testDetector(), geometry.CapMargins{Top: 0.01, Bottom: 0.01}, nil)

	out, err := p.Project(HitSet{})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("projected %d hits from empty event", out.Len())
	}
}

// Every hit maps to exactly one finite output point, index-aligned with the
// input.
func TestProjectCoverage(t *testing.T) {
	p := mustProjector(t, testDetector(), geometry.CapMargins{Top: 0.01, Bottom: 0.01}, nil)

	hits := HitSet{
		X: []float64{2, 0, -2, 0.5, 0, 1},
		Y: []float64{0, 2, 0, 0.5, 0, -1},
		Z: []float64{0, 2, -3, 4.999, 5, -5},
	}
	out, err := p.Project(hits)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if out.Len() != hits.Len() {
		t.Fatalf("output length = %d, want %d", out.Len(), hits.Len())
	}
	for i := 0; i < out.Len(); i++ {
		if math.IsNaN(out.X2D[i]) || math.IsInf(out.X2D[i], 0) ||
			math.IsNaN(out.Y2D[i]) || math.IsInf(out.Y2D[i], 0) {
			t.Errorf("hit %d projected to non-finite point (%v, %v)", i, out.X2D[i], out.Y2D[i])
		}
	}
}

func TestClassifyRegions(t *testing.T) {
	p := mustProjector(t, testDetector(), geometry.CapMargins{Top: 0.5, Bottom: 0.25}, nil)

	tests := []struct {
		name string
		z    float64
		want Region
	}{
		{"equator", 0, RegionBarrel},
		{"just under top boundary", 4.5, RegionBarrel},        // strict >: boundary stays barrel
		{"just over top boundary", 4.5000001, RegionTopCap},   // inside the margin
		{"nominal top plane", 5, RegionTopCap},
		{"just above bottom boundary", -4.75, RegionBarrel},   // strict <: boundary stays barrel
		{"inside bottom margin", -4.7500001, RegionBottomCap},
		{"nominal bottom plane", -5, RegionBottomCap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Classify(tt.z); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.z, got, tt.want)
			}
		})
	}
}

// Barrel hit at (r, 0, 0) has theta = 0, so x2d = -pi * R.
func TestBarrelDeterminism(t *testing.T) {
	det := testDetector()
	p := mustProjector(t, det, geometry.CapMargins{Top: 0.01, Bottom: 0.01}, nil)

	out, err := p.Project(HitSet{X: []float64{det.CylinderRadius}, Y: []float64{0}, Z: []float64{0}})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	want := -math.Pi * det.CylinderRadius
	if math.Abs(out.X2D[0]-want) > 1e-12 {
		t.Errorf("x2d = %v, want %v", out.X2D[0], want)
	}
	if out.Y2D[0] != 0 {
		t.Errorf("y2d = %v, want 0", out.Y2D[0])
	}
}

// atan2(0,0) is pinned to theta=0 so an on-axis barrel hit lands
// deterministically at x2d = -pi * R.
func TestBarrelOnAxisHit(t *testing.T) {
	det := testDetector()
	p := mustProjector(t, det, geometry.CapMargins{Top: 0.01, Bottom: 0.01}, nil)

	out, err := p.Project(HitSet{X: []float64{0}, Y: []float64{0}, Z: []float64{1}})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if out.Regions[0] != RegionBarrel {
		t.Fatalf("region = %v, want barrel", out.Regions[0])
	}
	if want := -math.Pi * det.CylinderRadius; out.X2D[0] != want {
		t.Errorf("x2d = %v, want %v", out.X2D[0], want)
	}
}

// Top-cap center hit maps exactly onto the cap disk center.
func TestTopCapOffset(t *testing.T) {
	det := testDetector()
	p := mustProjector(t, det, geometry.CapMargins{Top: 0.01, Bottom: 0.01}, nil)

	out, err := p.Project(HitSet{X: []float64{0}, Y: []float64{0}, Z: []float64{det.Height / 2}})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if out.Regions[0] != RegionTopCap {
		t.Fatalf("region = %v, want top cap", out.Regions[0])
	}
	if out.X2D[0] != 0 {
		t.Errorf("x2d = %v, want 0", out.X2D[0])
	}
	if want := det.Height/2 + det.CylinderRadius; out.Y2D[0] != want {
		t.Errorf("y2d = %v, want %v", out.Y2D[0], want)
	}
}

func TestBottomCapMirrorsTopCap(t *testing.T) {
	det := testDetector()
	p := mustProjector(t, det, geometry.CapMargins{Top: 0.01, Bottom: 0.01}, nil)

	out, err := p.Project(HitSet{X: []float64{0.5}, Y: []float64{0.25}, Z: []float64{-det.Height / 2}})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if out.Regions[0] != RegionBottomCap {
		t.Fatalf("region = %v, want bottom cap", out.Regions[0])
	}
	if out.X2D[0] != -0.25 {
		t.Errorf("x2d = %v, want -0.25", out.X2D[0])
	}
	if want := -0.5 - det.Height/2 - det.CylinderRadius; out.Y2D[0] != want {
		t.Errorf("y2d = %v, want %v", out.Y2D[0], want)
	}
}

// Three hits on a height=10, radius=2 cylinder with epsilon margins: two on
// the barrel at theta=0 and theta=pi/2, one on the top cap.
func TestProjectKnownEvent(t *testing.T) {
	det := testDetector()
	p := mustProjector(t, det, geometry.CapMargins{Top: 0.01, Bottom: 0.01}, nil)

	out, err := p.Project(HitSet{
		X: []float64{1, 0, -1},
		Y: []float64{0, 1, 0},
		Z: []float64{0, 0, 5},
	})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}

	// theta = 0: x2d = R(0 - pi)
	if want := -math.Pi * det.CylinderRadius; math.Abs(out.X2D[0]-want) > 1e-12 {
		t.Errorf("hit 0: x2d = %v, want %v", out.X2D[0], want)
	}
	// theta = pi/2: x2d = R(pi/2 - pi)
	if want := det.CylinderRadius * (math.Pi/2 - math.Pi); math.Abs(out.X2D[1]-want) > 1e-12 {
		t.Errorf("hit 1: x2d = %v, want %v", out.X2D[1], want)
	}
	// z=5 > 5-0.01: top cap, x2d = -y = 0, y2d = x + 5 + 2 = 6.
	if out.Regions[2] != RegionTopCap {
		t.Fatalf("hit 2: region = %v, want top cap", out.Regions[2])
	}
	if out.X2D[2] != 0 {
		t.Errorf("hit 2: x2d = %v, want 0", out.X2D[2])
	}
	if out.Y2D[2] != 6 {
		t.Errorf("hit 2: y2d = %v, want 6", out.Y2D[2])
	}
}

// A beam-axis-along-Z frame rotated by RotationX(pi/2) classifies the same
// as a natively cylinder-axis-along-Z frame.
func TestAxisRealignment(t *testing.T) {
	det := testDetector()
	margins := geometry.CapMargins{Top: 0.01, Bottom: 0.01}

	aligned := mustProjector(t, det, margins, nil)
	rotated := mustProjector(t, det, margins, geometry.RotationX(math.Pi/2))

	// Under RotationX(pi/2): y' = -z, z' = y, so (0, 5, 0) becomes
	// (0, 0, 5) and lands on the top cap.
	out, err := rotated.Project(HitSet{X: []float64{0}, Y: []float64{5}, Z: []float64{0}})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if out.Regions[0] != RegionTopCap {
		t.Errorf("rotated frame: region = %v, want top cap", out.Regions[0])
	}

	ref, err := aligned.Project(HitSet{X: []float64{0}, Y: []float64{0}, Z: []float64{5}})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if out.X2D[0] != ref.X2D[0] || out.Y2D[0] != ref.Y2D[0] {
		t.Errorf("rotated projection (%v, %v) != aligned projection (%v, %v)",
			out.X2D[0], out.Y2D[0], ref.X2D[0], ref.Y2D[0])
	}
}

// Each hit lands in exactly one region.
func TestRegionExclusivity(t *testing.T) {
	p := mustProjector(t, testDetector(), geometry.CapMargins{Top: 1, Bottom: 1}, nil)

	for _, z := range []float64{-5, -4.5, -4, -1, 0, 1, 4, 4.5, 5} {
		region := p.Classify(z)
		switch region {
		case RegionTopCap:
			if !(z > 4) {
				t.Errorf("z=%v classified top cap outside margin", z)
			}
		case RegionBottomCap:
			if !(z < -4) {
				t.Errorf("z=%v classified bottom cap outside margin", z)
			}
		case RegionBarrel:
			if z > 4 || z < -4 {
				t.Errorf("z=%v classified barrel inside a cap margin", z)
			}
		}
	}
}
