// Package geometry describes the capped-cylinder detector geometries used
// by the projection and neighbor-index code.
//
// All lengths are in centimetres, matching the geometry files the detector
// collaborations publish. A detector is modelled as a cylinder of a given
// height and barrel radius with flat (or near-flat) end caps; individual
// sensors carry a physical radius used only for marker sizing downstream.
package geometry

// Detector holds the static dimensions of a capped-cylinder detector.
type Detector struct {
	// Height is the total cylinder height in cm.
	Height float64
	// CylinderRadius is the barrel radius in cm.
	CylinderRadius float64
	// SensorRadius is the physical radius of a single PMT in cm. It is
	// carried for marker sizing and is not used by the projection itself.
	SensorRadius float64
}

// Validate checks the detector dimensions.
func (d Detector) Validate() error {
	if d.Height <= 0 {
		return &ErrConfiguration{Reason: "detector height must be positive"}
	}
	if d.CylinderRadius <= 0 {
		return &ErrConfiguration{Reason: "cylinder radius must be positive"}
	}
	return nil
}

// HalfHeight returns Height/2, the z coordinate of the nominal top cap plane.
func (d Detector) HalfHeight() float64 {
	return d.Height / 2
}

// CapMargins define the z-ranges, relative to the nominal cap planes, that
// are classified as cap rather than barrel. Real sensor layouts are not
// flush with the nominal cylinder height, and the two margins are frequently
// asymmetric; they are empirically tuned per detector and carried as
// configuration, never derived inside the projector.
type CapMargins struct {
	Top    float64
	Bottom float64
}

// Validate checks that the margins are usable with the given detector.
func (m CapMargins) Validate(d Detector) error {
	if m.Top < 0 || m.Bottom < 0 {
		return &ErrConfiguration{Reason: "cap margins must be non-negative"}
	}
	if m.Top >= d.HalfHeight() || m.Bottom >= d.HalfHeight() {
		return &ErrConfiguration{Reason: "cap margins must each be less than height/2"}
	}
	return nil
}
