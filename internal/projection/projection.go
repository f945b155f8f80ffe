// Package projection maps 3D sensor hits on a capped-cylinder detector onto
// a 2D unfolded plane: the barrel is cut open into a flat strip and the two
// end caps become disks placed directly above and below it.
//
// The mapping is a pure function of the hit coordinates, the detector
// dimensions, the cap boundary margins and an optional axis-realignment
// rotation. It is intentionally lossy on the caps (the cap-local radial and
// tangential coordinates collapse onto the plane) and is meant for display,
// not for inversion.
package projection

import (
	"math"

	"github.com/wcd-data/eventdisplay/internal/geometry"
)

// Region identifies which part of the detector surface a hit landed on.
type Region int

const (
	RegionBarrel Region = iota
	RegionTopCap
	RegionBottomCap
)

func (r Region) String() string {
	switch r {
	case RegionBarrel:
		return "barrel"
	case RegionTopCap:
		return "top_cap"
	case RegionBottomCap:
		return "bottom_cap"
	default:
		return "unknown"
	}
}

// HitSet holds the 3D hit coordinates of one event as parallel slices.
// It may be empty.
type HitSet struct {
	X []float64
	Y []float64
	Z []float64
}

// Len returns the number of hits.
func (h HitSet) Len() int { return len(h.X) }

// ProjectedHitSet holds the unfolded 2D coordinates of one event,
// index-aligned with the input HitSet. Regions records the surface each hit
// was classified onto.
type ProjectedHitSet struct {
	X2D     []float64
	Y2D     []float64
	Regions []Region
}

// Len returns the number of projected hits.
func (p ProjectedHitSet) Len() int { return len(p.X2D) }

// Projector unfolds hits for one detector configuration.
type Projector struct {
	det     geometry.Detector
	margins geometry.CapMargins
	realign *geometry.Rotation
}

// NewProjector validates the configuration and returns a Projector.
// realign may be nil when the hit frame already has the cylinder axis on Z.
func NewProjector(det geometry.Detector, margins geometry.CapMargins, realign *geometry.Rotation) (*Projector, error) {
	if err := det.Validate(); err != nil {
		return nil, err
	}
	if err := margins.Validate(det); err != nil {
		return nil, err
	}
	if realign != nil && !realign.IsValid() {
		return nil, &geometry.ErrConfiguration{Reason: "axis realignment is not a proper rotation"}
	}
	return &Projector{det: det, margins: margins, realign: realign}, nil
}

// ForPreset builds a Projector from a named detector configuration.
func ForPreset(cfg geometry.DetectorConfig) (*Projector, error) {
	return NewProjector(cfg.Detector, cfg.Margins, cfg.Realignment)
}

// Classify returns the region for a single already-realigned hit. The top
// cap test runs first; both boundaries are strict, so a hit exactly on
// height/2 - margins.Top stays in the barrel.
func (p *Projector) Classify(z float64) Region {
	half := p.det.HalfHeight()
	switch {
	case z > half-p.margins.Top:
		return RegionTopCap
	case z < -half+p.margins.Bottom:
		return RegionBottomCap
	default:
		return RegionBarrel
	}
}

// Project unfolds every hit in the set. The result is freshly allocated and
// index-aligned with the input; the input is never modified. An empty HitSet
// yields an empty result.
func (p *Projector) Project(hits HitSet) (ProjectedHitSet, error) {
	n := len(hits.X)
	if len(hits.Y) != n {
		return ProjectedHitSet{}, &geometry.ErrShapeMismatch{What: "hit y coordinates", Want: n, Got: len(hits.Y)}
	}
	if len(hits.Z) != n {
		return ProjectedHitSet{}, &geometry.ErrShapeMismatch{What: "hit z coordinates", Want: n, Got: len(hits.Z)}
	}

	out := ProjectedHitSet{
		X2D:     make([]float64, n),
		Y2D:     make([]float64, n),
		Regions: make([]Region, n),
	}

	half := p.det.HalfHeight()
	radius := p.det.CylinderRadius

	for i := 0; i < n; i++ {
		x, y, z := hits.X[i], hits.Y[i], hits.Z[i]
		if p.realign != nil {
			x, y, z = p.realign.Apply(x, y, z)
		}

		region := p.Classify(z)
		out.Regions[i] = region

		switch region {
		case RegionTopCap:
			out.X2D[i] = -y
			out.Y2D[i] = x + half + radius
		case RegionBottomCap:
			out.X2D[i] = -y
			out.Y2D[i] = -x - half - radius
		default:
			// atan2(0, 0) returns 0, so a hit on the axis lands at
			// theta = 0 deterministically.
			theta := math.Atan2(y, x)
			if theta < 0 {
				theta += 2 * math.Pi
			}
			out.X2D[i] = radius * (theta - math.Pi)
			out.Y2D[i] = z
		}
	}

	return out, nil
}
