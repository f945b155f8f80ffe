package geometry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Rotation is a 3x3 rotation matrix in row-major order. It realigns a hit
// frame before projection, typically to bring a detector simulated with its
// beam axis along Z back to cylinder-axis-along-Z.
type Rotation struct {
	M [9]float64
}

// Identity returns the identity rotation.
func Identity() *Rotation {
	return &Rotation{M: [9]float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}}
}

// RotationX returns a rotation by theta radians about the x axis.
func RotationX(theta float64) *Rotation {
	c, s := math.Cos(theta), math.Sin(theta)
	return &Rotation{M: [9]float64{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	}}
}

// RotationZ returns a rotation by theta radians about the z axis.
func RotationZ(theta float64) *Rotation {
	c, s := math.Cos(theta), math.Sin(theta)
	return &Rotation{M: [9]float64{
		c, s, 0,
		-s, c, 0,
		0, 0, 1,
	}}
}

// Compose returns the rotation that applies r first, then s.
func Compose(s, r *Rotation) *Rotation {
	var out Rotation
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			sum := 0.0
			for k := 0; k < 3; k++ {
				sum += s.M[i*3+k] * r.M[k*3+j]
			}
			out.M[i*3+j] = sum
		}
	}
	return &out
}

// ParseRotationSpec builds a rotation from a comma-separated list of
// axis-angle steps such as "x90" or "x90,z-45". Angles are in degrees and
// steps apply left to right. An empty spec yields the identity.
func ParseRotationSpec(spec string) (*Rotation, error) {
	rot := Identity()
	for _, step := range strings.Split(spec, ",") {
		step = strings.TrimSpace(step)
		if step == "" {
			continue
		}
		deg, err := strconv.ParseFloat(step[1:], 64)
		if err != nil {
			return nil, &ErrConfiguration{Reason: fmt.Sprintf("bad rotation step %q", step)}
		}
		theta := deg * math.Pi / 180
		var r *Rotation
		switch step[0] {
		case 'x', 'X':
			r = RotationX(theta)
		case 'z', 'Z':
			r = RotationZ(theta)
		default:
			return nil, &ErrConfiguration{Reason: fmt.Sprintf("rotation step %q: axis must be x or z", step)}
		}
		rot = Compose(r, rot)
	}
	return rot, nil
}

// Apply rotates the point (x, y, z).
func (r *Rotation) Apply(x, y, z float64) (float64, float64, float64) {
	return r.M[0]*x + r.M[1]*y + r.M[2]*z,
		r.M[3]*x + r.M[4]*y + r.M[5]*z,
		r.M[6]*x + r.M[7]*y + r.M[8]*z
}

// IsValid reports whether r has determinant approximately +1, rejecting
// reflections and degenerate matrices.
func (r *Rotation) IsValid() bool {
	const tol = 0.01
	m := r.M
	det := m[0]*(m[4]*m[8]-m[5]*m[7]) - m[1]*(m[3]*m[8]-m[5]*m[6]) + m[2]*(m[3]*m[7]-m[4]*m[6])
	return math.Abs(det-1.0) <= tol
}
