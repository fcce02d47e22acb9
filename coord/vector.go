package coord

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/angle"
	"github.com/tzneal/geodesy/unit"
	"gonum.org/v1/gonum/mat"
)

// Projected is a grid position on a map projection.
type Projected struct {
	Northing float64     `json:"northing"`
	Easting  float64     `json:"easting"`
	Unit     unit.Linear `json:"unit"`
}

// NE returns a projected position in meters.
func NE(northing, easting float64) Projected {
	return Projected{Northing: northing, Easting: easting}
}

// Meters returns p expressed in meters.
func (p Projected) Meters() Projected {
	if p.Unit == unit.Meter {
		return p
	}
	f := p.Unit.Factor()
	return Projected{Northing: p.Northing * f, Easting: p.Easting * f}
}

func (p Projected) String() string {
	return fmt.Sprintf("(N %.4f, E %.4f %s)", p.Northing, p.Easting, p.Unit)
}

// Spherical is a position in spherical coordinates: radius, polar angle
// from +Z and azimuth from +X towards +Y.
type Spherical struct {
	R     float64     `json:"r"`
	Theta angle.Angle `json:"theta"`
	Phi   angle.Angle `json:"phi"`
}

// Cartesian converts s to a rectangular vector.
func (s Spherical) Cartesian() r3.Vector {
	sinT, cosT := math.Sincos(s.Theta.Radians())
	sinP, cosP := math.Sincos(s.Phi.Radians())
	return r3.Vector{X: s.R * sinT * cosP, Y: s.R * sinT * sinP, Z: s.R * cosT}
}

// SphericalFromCartesian converts a rectangular vector.
func SphericalFromCartesian(v r3.Vector) Spherical {
	r := v.Norm()
	theta := 0.0
	if r > 0 {
		theta = math.Acos(v.Z / r)
	}
	return Spherical{R: r, Theta: angle.FromRadians(theta), Phi: angle.FromRadians(math.Atan2(v.Y, v.X))}
}

// Polar is a plane position given by range and azimuth, measured
// clockwise from the x (north) axis as in surveying.
type Polar struct {
	Range   float64     `json:"range"`
	Azimuth angle.Angle `json:"azimuth"`
}

// XY converts p to plane coordinates with x north and y east.
func (p Polar) XY() (x, y float64) {
	s, c := math.Sincos(p.Azimuth.Radians())
	return p.Range * c, p.Range * s
}

// PolarFromXY converts plane coordinates with x north and y east.
func PolarFromXY(x, y float64) Polar {
	az := math.Atan2(y, x)
	if az < 0 {
		az += 2 * math.Pi
	}
	return Polar{Range: math.Hypot(x, y), Azimuth: angle.FromRadians(az)}
}

// Vector is a coordinate of fixed dimension with a linear unit.
type Vector struct {
	c    []float64
	unit unit.Linear
}

// NewVector returns a vector with the given components.
func NewVector(u unit.Linear, c ...float64) Vector {
	cp := make([]float64, len(c))
	copy(cp, c)
	return Vector{c: cp, unit: u}
}

// Dim returns the number of components.
func (v Vector) Dim() int { return len(v.c) }

// At returns component i.
func (v Vector) At(i int) float64 { return v.c[i] }

// Unit returns the linear unit of the components.
func (v Vector) Unit() unit.Linear { return v.unit }

// Components returns a copy of the components.
func (v Vector) Components() []float64 {
	cp := make([]float64, len(v.c))
	copy(cp, v.c)
	return cp
}

func (v Vector) sameDim(o Vector) error {
	if v.Dim() != o.Dim() {
		return &geodesy.DimensionError{Want: v.Dim(), Got: o.Dim()}
	}
	return nil
}

// Shift returns v+d, with d converted to v's unit.
func (v Vector) Shift(d Vector) (Vector, error) {
	if err := v.sameDim(d); err != nil {
		return Vector{}, err
	}
	out := NewVector(v.unit, v.c...)
	for i := range out.c {
		out.c[i] += d.unit.Convert(d.c[i], v.unit)
	}
	return out, nil
}

// Distance returns the Euclidean distance between v and o in v's unit.
func (v Vector) Distance(o Vector) (float64, error) {
	if err := v.sameDim(o); err != nil {
		return 0, err
	}
	var sum float64
	for i := range v.c {
		d := v.c[i] - o.unit.Convert(o.c[i], v.unit)
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// Rotate2D rotates a two-dimensional vector counterclockwise by theta.
func (v Vector) Rotate2D(theta angle.Angle) (Vector, error) {
	if v.Dim() != 2 {
		return Vector{}, &geodesy.DimensionError{Want: 2, Got: v.Dim()}
	}
	s, c := math.Sincos(theta.Radians())
	return NewVector(v.unit, c*v.c[0]-s*v.c[1], s*v.c[0]+c*v.c[1]), nil
}

// Rotate3D rotates a three-dimensional vector counterclockwise about the
// x, y and z axes in that order.
func (v Vector) Rotate3D(rx, ry, rz angle.Angle) (Vector, error) {
	if v.Dim() != 3 {
		return Vector{}, &geodesy.DimensionError{Want: 3, Got: v.Dim()}
	}
	var zy, r mat.Dense
	zy.Mul(axisRotation(2, rz.Radians()), axisRotation(1, ry.Radians()))
	r.Mul(&zy, axisRotation(0, rx.Radians()))
	var out mat.VecDense
	out.MulVec(&r, mat.NewVecDense(3, v.Components()))
	return NewVector(v.unit, out.AtVec(0), out.AtVec(1), out.AtVec(2)), nil
}

// axisRotation returns the counterclockwise rotation by t about axis
// (0 = x, 1 = y, 2 = z).
func axisRotation(axis int, t float64) *mat.Dense {
	s, c := math.Sincos(t)
	switch axis {
	case 0:
		return mat.NewDense(3, 3, []float64{1, 0, 0, 0, c, -s, 0, s, c})
	case 1:
		return mat.NewDense(3, 3, []float64{c, 0, s, 0, 1, 0, -s, 0, c})
	}
	return mat.NewDense(3, 3, []float64{c, -s, 0, s, c, 0, 0, 0, 1})
}
