package transform_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/kr/pretty"
	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/coord"
	"github.com/tzneal/geodesy/ellipsoid"
	"github.com/tzneal/geodesy/transform"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

var sevenParams = transform.Params{
	Name:   "test",
	Source: "A",
	Target: "B",
	Tx:     100, Ty: -50, Tz: 80,
	S:  5,
	Rx: 1.2, Ry: -0.8, Rz: 2.5,
}

func beijing(t *testing.T) r3.Vector {
	t.Helper()
	g, err := coord.NewGeodetic(39.9042, 116.4074, 50)
	if err != nil {
		t.Fatal(err)
	}
	return coord.GeodeticToXYZ(ellipsoid.WGS84, g).Vector
}

// globalPoints are spread over the whole Earth so every parameter is
// well determined.
func globalPoints(t *testing.T) []r3.Vector {
	t.Helper()
	var out []r3.Vector
	for _, ll := range [][2]float64{{0, 0}, {0, 90}, {0, 180}, {45, -90}, {-45, 45}, {89, 0}, {-30, -60}, {60, 120}} {
		g, err := coord.NewGeodetic(ll[0], ll[1], 100)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, coord.GeodeticToXYZ(ellipsoid.WGS84, g).Vector)
	}
	return out
}

func TestHelmertInvert(t *testing.T) {
	h, err := transform.NewHelmert(sevenParams)
	if err != nil {
		t.Fatal(err)
	}
	p := beijing(t)
	q := h.Apply(p)
	if d := q.Sub(p).Norm(); d < 100 {
		t.Fatalf("expected a shift of more than 100 m, got %v", d)
	}
	inv, err := h.Invert()
	if err != nil {
		t.Fatal(err)
	}
	if d := inv.Apply(q).Sub(p).Norm(); d > 1e-6 {
		t.Errorf("inverse missed by %g m", d)
	}
}

func TestParamsInverse(t *testing.T) {
	inv := sevenParams.Inverse()
	if inv.Source != "B" || inv.Target != "A" || inv.Tx != -100 || inv.Rz != -2.5 || inv.S != -5 {
		t.Errorf("unexpected inverse %s", inv)
	}
	fwd, err := sevenParams.Transform()
	if err != nil {
		t.Fatal(err)
	}
	back, err := inv.Transform()
	if err != nil {
		t.Fatal(err)
	}
	p := beijing(t)
	if d := back.Apply(fwd.Apply(p)).Sub(p).Norm(); d > 0.01 {
		t.Errorf("first order inverse missed by %g m", d)
	}
}

func TestConventions(t *testing.T) {
	rz := transform.Params{Rz: 1}
	h, err := transform.NewHelmert(rz)
	if err != nil {
		t.Fatal(err)
	}
	bw, err := transform.NewBursaWolf(rz)
	if err != nil {
		t.Fatal(err)
	}
	x := r3.Vector{X: 6378137}
	want := 6378137 * math.Pi / (180 * 3600)
	if y := h.Apply(x).Y; !scalar.EqualWithinAbs(y, want, 1e-9) {
		t.Errorf("helmert: expected Y %v, got %v", want, y)
	}
	if y := bw.Apply(x).Y; !scalar.EqualWithinAbs(y, -want, 1e-9) {
		t.Errorf("bursa-wolf: expected Y %v, got %v", -want, y)
	}

	neg, err := transform.NewBursaWolf(transform.Params{Rz: -1})
	if err != nil {
		t.Fatal(err)
	}
	if !mat.EqualApprox(h.Matrix(), neg.Matrix(), 1e-18) {
		t.Errorf("expected opposite conventions with opposite signs to agree:\n%v\n%v",
			mat.Formatted(h.Matrix()), mat.Formatted(neg.Matrix()))
	}
}

func TestBadekas(t *testing.T) {
	p := beijing(t)
	params := sevenParams
	params.Px, params.Py, params.Pz = p.X, p.Y, p.Z
	if params.Count() != 10 {
		t.Fatalf("expected 10 parameters, got %d", params.Count())
	}
	b, err := params.Transform()
	if err != nil {
		t.Fatal(err)
	}
	want := p.Add(r3.Vector{X: 100, Y: -50, Z: 80})
	if d := b.Apply(p).Sub(want).Norm(); d > 1e-6 {
		t.Errorf("the rotation point should only be shifted, missed by %g m", d)
	}
	inv, err := b.Invert()
	if err != nil {
		t.Fatal(err)
	}
	q := p.Add(r3.Vector{X: 1000, Y: 2000, Z: -500})
	if d := inv.Apply(b.Apply(q)).Sub(q).Norm(); d > 1e-6 {
		t.Errorf("inverse missed by %g m", d)
	}
}

func TestParamsCount(t *testing.T) {
	for _, tc := range []struct {
		p    transform.Params
		want int
	}{
		{transform.Params{Tx: 1}, 3},
		{transform.Params{Tx: 1, S: 2}, 4},
		{transform.Params{Rz: 1}, 7},
		{transform.Params{Pz: 1}, 10},
	} {
		if got := tc.p.Count(); got != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.p, tc.want, got)
		}
	}
	tr, err := transform.Params{Tx: 1, Ty: 2, Tz: 3}.Transform()
	if err != nil {
		t.Fatal(err)
	}
	if got := tr.Apply(r3.Vector{X: 10}); got != (r3.Vector{X: 11, Y: 2, Z: 3}) {
		t.Errorf("unexpected translation %v", got)
	}
	if _, err := transform.NewHelmert(transform.Params{S: -2e6}); !errors.Is(err, geodesy.ErrInvalidInput) {
		t.Errorf("expected scale error, got %v", err)
	}
}

func TestGeodeticShift(t *testing.T) {
	g, err := coord.NewGeodetic(55.75, 37.62, 150)
	if err != nil {
		t.Fatal(err)
	}
	shift := transform.Translation(-24, 123, 94)
	out, err := transform.GeodeticShift(ellipsoid.WGS84, ellipsoid.Krassovsky1940, shift, g)
	if err != nil {
		t.Fatal(err)
	}
	inv, err := shift.Invert()
	if err != nil {
		t.Fatal(err)
	}
	back, err := transform.GeodeticShift(ellipsoid.Krassovsky1940, ellipsoid.WGS84, inv, out)
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(back.Lat.Degrees(), g.Lat.Degrees(), 1e-9) ||
		!scalar.EqualWithinAbs(back.Lon.Degrees(), g.Lon.Degrees(), 1e-9) ||
		!scalar.EqualWithinAbs(back.H, g.H, 1e-6) {
		t.Errorf("expected %s, got %s", g, back)
	}
}

// groundDistance approximates the separation of two nearby geodetic
// positions in meters.
func groundDistance(a, b coord.Geodetic) float64 {
	const m = 111320.0
	dn := (a.Lat.Degrees() - b.Lat.Degrees()) * m
	de := (a.Lon.Degrees() - b.Lon.Degrees()) * m * math.Cos(a.Lat.Radians())
	return math.Sqrt(dn*dn + de*de + (a.H-b.H)*(a.H-b.H))
}

func TestMolodensky(t *testing.T) {
	g, err := coord.NewGeodetic(55.75, 37.62, 150)
	if err != nil {
		t.Fatal(err)
	}
	params := transform.Params{Tx: -24, Ty: 123, Tz: 94}
	m := transform.NewMolodensky(ellipsoid.WGS84, ellipsoid.Krassovsky1940, params)
	got := m.Apply(g)
	want, err := transform.GeodeticShift(ellipsoid.WGS84, ellipsoid.Krassovsky1940, transform.Translation(-24, 123, 94), g)
	if err != nil {
		t.Fatal(err)
	}
	if d := groundDistance(got, want); d > 0.05 {
		t.Errorf("molodensky differs from the rigorous shift by %.4f m: %s vs %s", d, got, want)
	}
	if d := groundDistance(m.Invert().Apply(got), g); d > 0.01 {
		t.Errorf("reverse molodensky missed by %.4f m", d)
	}

	pole, err := coord.NewGeodetic(90, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if p := m.Apply(pole); math.IsNaN(p.Lon.Degrees()) || math.IsNaN(p.H) {
		t.Errorf("expected a finite result at the pole, got %s", p)
	}
}

func TestMolodenskyBadekas(t *testing.T) {
	g, err := coord.NewGeodetic(30.5, 114.3, 40)
	if err != nil {
		t.Fatal(err)
	}
	centre := coord.GeodeticToXYZ(ellipsoid.CGCS2000, g).Vector
	params := sevenParams
	params.Px, params.Py, params.Pz = centre.X+1000, centre.Y-2000, centre.Z+500

	mb, err := transform.NewMolodenskyBadekas(ellipsoid.CGCS2000, ellipsoid.Xian1980, params)
	if err != nil {
		t.Fatal(err)
	}
	sim, err := transform.NewBadekas(params)
	if err != nil {
		t.Fatal(err)
	}
	want, err := transform.GeodeticShift(ellipsoid.CGCS2000, ellipsoid.Xian1980, sim, g)
	if err != nil {
		t.Fatal(err)
	}
	if d := groundDistance(mb.Apply(g), want); d > 0.05 {
		t.Errorf("molodensky-badekas differs from the rigorous shift by %.4f m", d)
	}

	plain := transform.NewMolodensky(ellipsoid.CGCS2000, ellipsoid.Xian1980, params)
	shiftOnly := params
	shiftOnly.S, shiftOnly.Rx, shiftOnly.Ry, shiftOnly.Rz = 0, 0, 0, 0
	mbShift, err := transform.NewMolodenskyBadekas(ellipsoid.CGCS2000, ellipsoid.Xian1980, shiftOnly)
	if err != nil {
		t.Fatal(err)
	}
	if d := groundDistance(mbShift.Apply(g), plain.Apply(g)); d > 1e-6 {
		t.Errorf("without rotations the two variants should agree, differ by %g m", d)
	}
}

func TestResolve(t *testing.T) {
	src := globalPoints(t)
	for _, tc := range []struct {
		model  transform.Model
		params transform.Params
	}{
		{transform.Model3, transform.Params{Tx: 12.5, Ty: -3, Tz: 40}},
		{transform.Model4, transform.Params{Tx: 12.5, Ty: -3, Tz: 40, S: -7}},
		{transform.Model7Helmert, sevenParams},
		{transform.Model7BursaWolf, func() transform.Params {
			p := sevenParams
			p.Convention = transform.BursaWolf
			return p
		}()},
	} {
		tr, err := tc.params.Transform()
		if err != nil {
			t.Fatal(err)
		}
		dst := make([]r3.Vector, len(src))
		for i, v := range src {
			dst[i] = tr.Apply(v)
		}
		sol, err := transform.Resolve(tc.model, src, dst, nil)
		if err != nil {
			t.Fatalf("%s: %s", tc.model, err)
		}
		checkParams(t, tc.model.String(), sol.Params, tc.params)
		if sol.RMS > 1e-3 {
			t.Errorf("%s: residual RMS %g", tc.model, sol.RMS)
		}
	}
}

func checkParams(t *testing.T, name string, got, want transform.Params) {
	t.Helper()
	for _, c := range []struct {
		field     string
		got, want float64
		tol       float64
	}{
		{"tx", got.Tx, want.Tx, 1e-2},
		{"ty", got.Ty, want.Ty, 1e-2},
		{"tz", got.Tz, want.Tz, 1e-2},
		{"s", got.S, want.S, 1e-3},
		{"rx", got.Rx, want.Rx, 1e-3},
		{"ry", got.Ry, want.Ry, 1e-3},
		{"rz", got.Rz, want.Rz, 1e-3},
	} {
		if !scalar.EqualWithinAbs(c.got, c.want, c.tol) {
			t.Errorf("%s: %s expected %v, got %v", name, c.field, c.want, c.got)
		}
	}
	if got.Convention != want.Convention {
		t.Errorf("%s: expected %s, got %s", name, want.Convention, got.Convention)
	}
}

func TestResolveBadekas(t *testing.T) {
	src := globalPoints(t)
	var centre r3.Vector
	for _, v := range src {
		centre = centre.Add(v)
	}
	centre = centre.Mul(1 / float64(len(src)))
	params := sevenParams
	params.Px, params.Py, params.Pz = centre.X, centre.Y, centre.Z
	b, err := transform.NewBadekas(params)
	if err != nil {
		t.Fatal(err)
	}
	dst := make([]r3.Vector, len(src))
	for i, v := range src {
		dst[i] = b.Apply(v)
	}
	w := mat.NewDiagDense(3*len(src), nil)
	for i := 0; i < 3*len(src); i++ {
		w.SetDiag(i, 1)
	}
	sol, err := transform.Resolve(transform.Model10, src, dst, w)
	if err != nil {
		t.Fatal(err)
	}
	checkParams(t, "badekas", sol.Params, params)
	got := r3.Vector{X: sol.Params.Px, Y: sol.Params.Py, Z: sol.Params.Pz}
	if d := got.Sub(centre).Norm(); d > 1e-6 {
		t.Errorf("expected the rotation point at the centroid, off by %g m", d)
	}
}

func TestResolveFailures(t *testing.T) {
	p := beijing(t)
	same := []r3.Vector{p, p, p}
	if _, err := transform.Resolve(transform.Model7Helmert, same, same, nil); !errors.Is(err, geodesy.ErrCannotResolve) {
		t.Errorf("coincident points: expected cannot resolve, got %v", err)
	}
	if _, err := transform.Resolve(transform.Model7Helmert, same[:2], same[:2], nil); !errors.Is(err, geodesy.ErrCannotResolve) {
		t.Errorf("two points: expected cannot resolve, got %v", err)
	}
	var dim *geodesy.DimensionError
	if _, err := transform.Resolve(transform.Model3, same, same[:2], nil); !errors.As(err, &dim) {
		t.Errorf("expected dimension error, got %v", err)
	}
	if _, err := transform.Resolve(transform.Model3, same, same, mat.NewDiagDense(3, nil)); !errors.Is(err, geodesy.ErrInvalidInput) {
		t.Errorf("expected weight dimension error, got %v", err)
	}
	sol, err := transform.Resolve(transform.Model3, same[:1], []r3.Vector{p.Add(r3.Vector{X: 1, Y: 2, Z: 3})}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(sol.Params.Tx, 1, 1e-9) || !scalar.EqualWithinAbs(sol.Params.Tz, 3, 1e-9) {
		t.Errorf("unexpected translation %s", sol.Params)
	}
}

func TestPlanar4(t *testing.T) {
	p := transform.Planar4{Tx: 120, Ty: -80, S: 15, Rz: 30}
	src := []coord.Projected{
		coord.NE(3000000, 500000),
		coord.NE(3100000, 500000),
		coord.NE(3000000, 620000),
		coord.NE(3080000, 590000),
	}
	dst := make([]coord.Projected, len(src))
	for i, c := range src {
		dst[i] = p.Apply(c)
		back := p.Invert().Apply(dst[i])
		if !scalar.EqualWithinAbs(back.Easting, c.Easting, 1e-6) || !scalar.EqualWithinAbs(back.Northing, c.Northing, 1e-6) {
			t.Errorf("inverse: expected %s, got %s", c, back)
		}
	}
	got, err := transform.ResolvePlanar4(src, dst, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(got.Tx, p.Tx, 1e-3) || !scalar.EqualWithinAbs(got.Ty, p.Ty, 1e-3) ||
		!scalar.EqualWithinAbs(got.S, p.S, 1e-3) || !scalar.EqualWithinAbs(got.Rz, p.Rz, 1e-3) {
		t.Errorf("expected %+v, got %+v", p, got)
	}
	if _, err := transform.ResolvePlanar4(src[:1], dst[:1], nil); !errors.Is(err, geodesy.ErrCannotResolve) {
		t.Errorf("expected cannot resolve, got %v", err)
	}
}

const catalogYAML = `
transformations:
  - name: WGS84 to Pulkovo 1942
    source: WGS84
    target: Pulkovo 1942
    convention: bursa-wolf
    tx: 23.92
    ty: -141.27
    tz: -80.9
    rx: 0
    ry: -0.35
    rz: -0.82
    s: -0.12
  - name: shift
    source: A
    target: B
    tx: 1
`

func TestCatalog(t *testing.T) {
	c, err := transform.LoadCatalog(strings.NewReader(catalogYAML))
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(c.Names(), []string{"WGS84 to Pulkovo 1942", "shift"}); len(diff) > 0 {
		t.Errorf("unexpected names: %v", diff)
	}
	p, ok := c.Lookup("WGS84 to Pulkovo 1942")
	if !ok {
		t.Fatal("missing entry")
	}
	want := transform.Params{
		Name: "WGS84 to Pulkovo 1942", Source: "WGS84", Target: "Pulkovo 1942",
		Convention: transform.BursaWolf,
		Tx:         23.92, Ty: -141.27, Tz: -80.9,
		S: -0.12, Ry: -0.35, Rz: -0.82,
	}
	if diff := pretty.Diff(p, want); len(diff) > 0 {
		t.Errorf("unexpected parameters: %v", diff)
	}
	rev, ok := c.Find("B", "A")
	if !ok || rev.Tx != -1 || rev.Source != "B" {
		t.Errorf("expected the reversed shift, got %s", rev)
	}
	if _, ok := c.Find("A", "C"); ok {
		t.Error("expected no match")
	}

	for _, doc := range []string{
		"transformations:\n  - tx: 1\n",
		"transformations:\n  - name: a\n  - name: a\n",
		"transformations:\n  - name: a\n    convention: sideways\n",
	} {
		if _, err := transform.LoadCatalog(strings.NewReader(doc)); err == nil {
			t.Errorf("expected an error loading %q", doc)
		}
	}
}

func TestParseModel(t *testing.T) {
	for _, m := range []transform.Model{transform.Model3, transform.Model4, transform.Model7Helmert, transform.Model7BursaWolf, transform.Model10} {
		got, err := transform.ParseModel(m.String())
		if err != nil || got != m {
			t.Errorf("ParseModel(%q) = %v, %v", m, got, err)
		}
	}
	if _, err := transform.ParseModel("5"); !errors.Is(err, geodesy.ErrInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}
