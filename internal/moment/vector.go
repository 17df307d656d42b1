// Package moment provides the three-component magnetic moment value type
// used by the configuration search. Vectors are immutable; every operation
// returns a new value.
package moment

import (
	"fmt"
	"math"
	"math/rand"
)

// zeroTol is the magnitude below which a vector is treated as the zero
// vector (a non-magnetic site with no defined direction).
const zeroTol = 1e-12

// Range bounds the physically allowed moment magnitude.
type Range struct {
	Min float64
	Max float64
}

func (r Range) Validate() error {
	if r.Min < 0 {
		return fmt.Errorf("magnitude range min must be >= 0, got %g", r.Min)
	}
	if r.Max < r.Min {
		return fmt.Errorf("magnitude range max must be >= min, got [%g, %g]", r.Min, r.Max)
	}
	return nil
}

// Contains reports whether a magnitude is physically admissible. Zero is
// always admissible: a non-magnetic site is valid regardless of the range
// floor.
func (r Range) Contains(magnitude float64) bool {
	if magnitude <= zeroTol {
		return true
	}
	return magnitude >= r.Min && magnitude <= r.Max
}

// InvalidMomentError reports a construction attempt with a magnitude outside
// the physical range.
type InvalidMomentError struct {
	Magnitude float64
	Range     Range
}

func (e *InvalidMomentError) Error() string {
	return fmt.Sprintf("moment magnitude %g outside range [%g, %g]", e.Magnitude, e.Range.Min, e.Range.Max)
}

// Vector is a Cartesian magnetic moment in Bohr magnetons.
type Vector struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// New validates the magnitude against the range before returning the vector.
func New(x, y, z float64, r Range) (Vector, error) {
	if err := r.Validate(); err != nil {
		return Vector{}, err
	}
	v := Vector{X: x, Y: y, Z: z}
	if !r.Contains(v.Norm()) {
		return Vector{}, &InvalidMomentError{Magnitude: v.Norm(), Range: r}
	}
	return v, nil
}

// FromPolar builds a vector with the given magnitude along direction. A zero
// magnitude or zero direction collapses to the zero vector.
func FromPolar(magnitude float64, direction Vector) Vector {
	if magnitude <= zeroTol || direction.Norm() <= zeroTol {
		return Vector{}
	}
	return direction.Unit().scale(magnitude)
}

func (v Vector) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Unit returns the direction of v, or the zero vector when v has no
// defined direction.
func (v Vector) Unit() Vector {
	n := v.Norm()
	if n <= zeroTol {
		return Vector{}
	}
	return Vector{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}

// IsZero reports whether v is numerically the zero vector.
func (v Vector) IsZero() bool {
	return v.Norm() <= zeroTol
}

// Flip returns the antiparallel vector.
func (v Vector) Flip() Vector {
	return Vector{X: -v.X, Y: -v.Y, Z: -v.Z}
}

func (v Vector) Dot(o Vector) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vector) Cross(o Vector) Vector {
	return Vector{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vector) add(o Vector) Vector {
	return Vector{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vector) scale(f float64) Vector {
	return Vector{X: v.X * f, Y: v.Y * f, Z: v.Z * f}
}

// Angle returns the angular distance between a and b in radians. The angle
// to or from a zero vector is defined as 0 so that magnitude tolerance alone
// decides equivalence for non-magnetic sites.
func Angle(a, b Vector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na <= zeroTol || nb <= zeroTol {
		return 0
	}
	cos := a.Dot(b) / (na * nb)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos)
}

// Perturb rotates the direction of v by a random angle drawn uniformly from
// [0, spread) about a random axis orthogonal to v. Magnitude is preserved.
// The zero vector has no direction and is returned unchanged.
func (v Vector) Perturb(rng *rand.Rand, spread float64) Vector {
	n := v.Norm()
	if n <= zeroTol || spread <= 0 {
		return v
	}

	unit := v.Unit()
	var axis Vector
	for {
		r := RandomUnit(rng)
		axis = r.add(unit.scale(-r.Dot(unit)))
		if axis.Norm() > 1e-8 {
			axis = axis.Unit()
			break
		}
	}

	theta := rng.Float64() * spread
	sin, cos := math.Sincos(theta)
	// Rodrigues rotation; the axis is orthogonal to v so the parallel
	// term vanishes.
	rotated := v.scale(cos).add(axis.Cross(v).scale(sin))
	return FromPolar(n, rotated)
}

// RandomUnit draws a direction uniformly on the unit sphere.
func RandomUnit(rng *rand.Rand) Vector {
	z := 2*rng.Float64() - 1
	phi := 2 * math.Pi * rng.Float64()
	s := math.Sqrt(1 - z*z)
	return Vector{X: s * math.Cos(phi), Y: s * math.Sin(phi), Z: z}
}
