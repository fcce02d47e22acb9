package transform

import (
	"fmt"
	"math"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/coord"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Model selects the parameters estimated by Resolve.
type Model uint8

// Transformation models.
const (
	Model3          Model = iota // translation
	Model4                       // translation and scale
	Model7Helmert                // Helmert, rotations counterclockwise positive
	Model7BursaWolf              // Bursa-Wolf, rotations clockwise positive
	Model10                      // Badekas, about the centroid of the source points
)

var modelNames = [...]string{"3", "4", "7-helmert", "7-bursa-wolf", "10"}

func (m Model) String() string {
	if int(m) < len(modelNames) {
		return modelNames[m]
	}
	return fmt.Sprintf("Model(%d)", m)
}

// ParseModel parses a model name as printed by String.
func ParseModel(s string) (Model, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range modelNames {
		if n == s {
			return Model(i), nil
		}
	}
	switch s {
	case "7", "helmert":
		return Model7Helmert, nil
	case "bursa-wolf":
		return Model7BursaWolf, nil
	}
	return 0, fmt.Errorf("unknown transformation model %q: %w", s, geodesy.ErrInvalidInput)
}

// Count returns the nominal number of parameters of m.
func (m Model) Count() int {
	switch m {
	case Model3:
		return 3
	case Model4:
		return 4
	case Model10:
		return 10
	}
	return 7
}

// unknowns is the number of estimated parameters; the Badekas rotation
// point is fixed, not estimated.
func (m Model) unknowns() int {
	if m == Model10 {
		return 7
	}
	return m.Count()
}

func (m Model) convention() Convention {
	if m == Model7BursaWolf {
		return BursaWolf
	}
	return Helmert
}

// Solution is the outcome of a least squares resolution.
type Solution struct {
	Params    Params
	Residuals []r3.Vector // target minus transformed source
	RMS       float64     // root mean square of the residual components
}

// Resolve estimates the parameters of model from matched Cartesian
// positions by weighted least squares. The weights matrix is 3N×3N,
// ordered X, Y, Z per point; nil weighs every component equally. At
// least ⌈Count/3⌉ points are needed.
func Resolve(model Model, src, dst []r3.Vector, weights mat.Matrix) (Solution, error) {
	if model > Model10 {
		return Solution{}, fmt.Errorf("model %v: %w", model, geodesy.ErrInvalidInput)
	}
	if len(src) != len(dst) {
		return Solution{}, &geodesy.DimensionError{Want: len(src), Got: len(dst)}
	}
	n := len(src)
	if need := (model.Count() + 2) / 3; n < need {
		return Solution{}, fmt.Errorf("%w: %d points for %d parameters", geodesy.ErrCannotResolve, n, model.Count())
	}

	var centre r3.Vector
	if model == Model10 {
		xs, ys, zs := make([]float64, n), make([]float64, n), make([]float64, n)
		for i, v := range src {
			xs[i], ys[i], zs[i] = v.X, v.Y, v.Z
		}
		centre = r3.Vector{X: floats.Sum(xs), Y: floats.Sum(ys), Z: floats.Sum(zs)}.Mul(1 / float64(n))
	}

	u := model.unknowns()
	a := mat.NewDense(3*n, u, nil)
	l := mat.NewVecDense(3*n, nil)
	rot := 1.0
	if model.convention() == BursaWolf {
		rot = -1
	}
	for i := range src {
		x := src[i].Sub(centre)
		d := dst[i].Sub(src[i])
		rows := [3][]float64{
			{1, 0, 0, x.X, 0, rot * x.Z, -rot * x.Y},
			{0, 1, 0, x.Y, -rot * x.Z, 0, rot * x.X},
			{0, 0, 1, x.Z, rot * x.Y, -rot * x.X, 0},
		}
		for k, row := range rows {
			a.SetRow(3*i+k, row[:u])
		}
		l.SetVec(3*i, d.X)
		l.SetVec(3*i+1, d.Y)
		l.SetVec(3*i+2, d.Z)
	}

	x, err := leastSquares(a, l, weights)
	if err != nil {
		return Solution{}, err
	}

	p := Params{Convention: model.convention()}
	p.Tx, p.Ty, p.Tz = x[0], x[1], x[2]
	if u > 3 {
		p.S = x[3] / ppm
	}
	if u > 4 {
		p.Rx, p.Ry, p.Rz = x[4]/arcSecond, x[5]/arcSecond, x[6]/arcSecond
	}
	if model == Model10 {
		p.Px, p.Py, p.Pz = centre.X, centre.Y, centre.Z
	}

	sim, err := newSimilarity(p, p.Convention, centre)
	if err != nil {
		return Solution{}, err
	}
	sol := Solution{Params: p, Residuals: make([]r3.Vector, n)}
	var sum float64
	for i := range src {
		r := dst[i].Sub(sim.Apply(src[i]))
		sol.Residuals[i] = r
		sum += r.Norm2()
	}
	sol.RMS = math.Sqrt(sum / float64(3*n))
	return sol, nil
}

// ResolvePlanar4 estimates a Planar4 from matched projected positions.
// The weights matrix is 2N×2N, ordered easting, northing per point.
func ResolvePlanar4(src, dst []coord.Projected, weights mat.Matrix) (Planar4, error) {
	if len(src) != len(dst) {
		return Planar4{}, &geodesy.DimensionError{Want: len(src), Got: len(dst)}
	}
	n := len(src)
	if n < 2 {
		return Planar4{}, fmt.Errorf("%w: %d points for 4 parameters", geodesy.ErrCannotResolve, n)
	}
	// E' = Tx + a·E - b·N, N' = Ty + b·E + a·N with a = k·cosθ, b = k·sinθ.
	a := mat.NewDense(2*n, 4, nil)
	l := mat.NewVecDense(2*n, nil)
	for i := range src {
		s, d := src[i].Meters(), dst[i].Meters()
		a.SetRow(2*i, []float64{1, 0, s.Easting, -s.Northing})
		a.SetRow(2*i+1, []float64{0, 1, s.Northing, s.Easting})
		l.SetVec(2*i, d.Easting)
		l.SetVec(2*i+1, d.Northing)
	}
	x, err := leastSquares(a, l, weights)
	if err != nil {
		return Planar4{}, err
	}
	return Planar4{
		Tx: x[0],
		Ty: x[1],
		S:  (math.Hypot(x[2], x[3]) - 1) / ppm,
		Rz: math.Atan2(x[3], x[2]) / arcSecond,
	}, nil
}

// leastSquares solves the weighted normal equations AᵀWA·x = AᵀWl.
// Columns are scaled to unit maximum before forming the normal matrix.
func leastSquares(a *mat.Dense, l *mat.VecDense, weights mat.Matrix) ([]float64, error) {
	rows, cols := a.Dims()
	if weights != nil {
		if r, c := weights.Dims(); r != rows || c != rows {
			return nil, &geodesy.DimensionError{Want: rows, Got: r}
		}
	}
	scale := make([]float64, cols)
	for j := range scale {
		col := mat.Col(nil, j, a)
		scale[j] = math.Max(floats.Max(col), -floats.Min(col))
		if scale[j] == 0 {
			scale[j] = 1
		}
		floats.Scale(1/scale[j], col)
		a.SetCol(j, col)
	}

	var at mat.Dense
	if weights != nil {
		at.Mul(a.T(), weights)
	} else {
		at.CloneFrom(a.T())
	}
	var normal mat.Dense
	normal.Mul(&at, a)
	var rhs mat.VecDense
	rhs.MulVec(&at, l)

	x, err := gaussJordan(&normal, &rhs)
	if err != nil {
		return nil, err
	}
	for j := range x {
		x[j] /= scale[j]
	}
	return x, nil
}

// singularTolerance is the smallest pivot accepted, relative to the
// largest element of the matrix.
const singularTolerance = 1e-12

// gaussJordan solves a·x = b by Gauss-Jordan elimination, choosing the
// pivot of largest magnitude in each column.
func gaussJordan(a *mat.Dense, b *mat.VecDense) ([]float64, error) {
	n, _ := a.Dims()
	var aug mat.Dense
	aug.Augment(a, b)

	limit := singularTolerance * mat.Norm(a, math.Inf(1))
	for col := 0; col < n; col++ {
		pivot, best := col, math.Abs(aug.At(col, col))
		for r := col + 1; r < n; r++ {
			if v := math.Abs(aug.At(r, col)); v > best {
				pivot, best = r, v
			}
		}
		if !(best > limit) {
			return nil, fmt.Errorf("%w: column %d", geodesy.ErrSingularMatrix, col)
		}
		if pivot != col {
			pr, cr := aug.RawRowView(pivot), aug.RawRowView(col)
			for k := range pr {
				pr[k], cr[k] = cr[k], pr[k]
			}
		}
		row := aug.RawRowView(col)
		floats.Scale(1/row[col], row)
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			other := aug.RawRowView(r)
			if f := other[col]; f != 0 {
				floats.AddScaled(other, -f, row)
			}
		}
	}
	return mat.Col(nil, n, &aug), nil
}
