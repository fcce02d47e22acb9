package transform

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/coord"
	"github.com/tzneal/geodesy/ellipsoid"
	"gonum.org/v1/gonum/mat"
)

// Transform maps Earth-centred Cartesian positions, in meters, from one
// datum to another.
type Transform interface {
	Apply(v r3.Vector) r3.Vector
	Invert() (Transform, error)
}

// Similarity is the affine map v' = P + T + M·(v - P). M is the scaled
// small-angle rotation (1+S)·R and P the rotation point, zero unless the
// ten-parameter model is used.
type Similarity struct {
	t, p r3.Vector
	m    *mat.Dense
}

// rotation returns the linearised rotation matrix for angles in radians.
func rotation(c Convention, rx, ry, rz float64) *mat.Dense {
	if c == BursaWolf {
		rx, ry, rz = -rx, -ry, -rz
	}
	return mat.NewDense(3, 3, []float64{
		1, -rz, ry,
		rz, 1, -rx,
		-ry, rx, 1,
	})
}

func newSimilarity(p Params, c Convention, point r3.Vector) (*Similarity, error) {
	k := 1 + p.S*ppm
	if !(k > 0) {
		return nil, &geodesy.RangeError{Field: "scale", Value: p.S, Reason: "1+S must be positive"}
	}
	m := rotation(c, p.Rx*arcSecond, p.Ry*arcSecond, p.Rz*arcSecond)
	m.Scale(k, m)
	return &Similarity{t: r3.Vector{X: p.Tx, Y: p.Ty, Z: p.Tz}, p: point, m: m}, nil
}

// NewHelmert returns the seven-parameter transform with rotations
// counterclockwise positive.
func NewHelmert(p Params) (*Similarity, error) {
	return newSimilarity(p, Helmert, r3.Vector{})
}

// NewBursaWolf returns the seven-parameter transform with rotations
// clockwise positive.
func NewBursaWolf(p Params) (*Similarity, error) {
	return newSimilarity(p, BursaWolf, r3.Vector{})
}

// NewBadekas returns the ten-parameter transform rotating and scaling
// about (Px, Py, Pz), with the rotation sign taken from p.Convention.
func NewBadekas(p Params) (*Similarity, error) {
	return newSimilarity(p, p.Convention, r3.Vector{X: p.Px, Y: p.Py, Z: p.Pz})
}

// Translation returns the three-parameter shift.
func Translation(tx, ty, tz float64) *Similarity {
	return &Similarity{t: r3.Vector{X: tx, Y: ty, Z: tz}, m: identity()}
}

func identity() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}

func mulVec(m mat.Matrix, v r3.Vector) r3.Vector {
	var out mat.VecDense
	out.MulVec(m, mat.NewVecDense(3, []float64{v.X, v.Y, v.Z}))
	return r3.Vector{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

// Apply implements Transform.
func (s *Similarity) Apply(v r3.Vector) r3.Vector {
	return s.p.Add(s.t).Add(mulVec(s.m, v.Sub(s.p)))
}

// Invert implements Transform. The inverse is exact: M is inverted as a
// matrix rather than by negating the parameters.
func (s *Similarity) Invert() (Transform, error) {
	var inv mat.Dense
	if err := inv.Inverse(s.m); err != nil {
		return nil, fmt.Errorf("%w: %v", geodesy.ErrSingularMatrix, err)
	}
	return &Similarity{t: s.t.Mul(-1), p: s.p.Add(s.t), m: &inv}, nil
}

// Translation returns T.
func (s *Similarity) Translation() r3.Vector { return s.t }

// Matrix returns a copy of M.
func (s *Similarity) Matrix() *mat.Dense { return mat.DenseCopyOf(s.m) }

// ApplyXYZ transforms a Cartesian position of any linear unit and
// returns it in meters.
func ApplyXYZ(t Transform, p coord.SpaceRectangular) coord.SpaceRectangular {
	return coord.SpaceRectangular{Vector: t.Apply(p.Meters())}
}

// GeodeticShift converts g on the source ellipsoid to Cartesian
// coordinates, applies t and converts back on the target ellipsoid.
func GeodeticShift(src, dst ellipsoid.Ellipsoid, t Transform, g coord.Geodetic) (coord.Geodetic, error) {
	out, err := coord.XYZToGeodetic(dst, ApplyXYZ(t, coord.GeodeticToXYZ(src, g)))
	if err != nil {
		return coord.Geodetic{}, err
	}
	out.HeightSystem = g.HeightSystem
	return out, nil
}
