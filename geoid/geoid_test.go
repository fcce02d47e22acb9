package geoid_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/geoid"
	"gonum.org/v1/gonum/floats/scalar"
)

// plane returns a grid whose values follow N = 10 + 2·lat - 3·lon, which
// bilinear interpolation reproduces exactly.
func plane(t *testing.T) *geoid.MemoryGrid {
	t.Helper()
	const rows, cols = 4, 5
	var vs []float64
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			lat, lon := 30+0.5*float64(r), 110+0.25*float64(c)
			vs = append(vs, 10+2*lat-3*lon)
		}
	}
	g, err := geoid.NewMemoryGrid(30, 110, 0.5, 0.25, rows, cols, vs)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestInterpolatePlane(t *testing.T) {
	g := plane(t)
	for _, tc := range []struct{ lat, lon float64 }{
		{30, 110},
		{30.1, 110.3},
		{31.5, 111},
		{30.75, 110.625},
		{31.2, 110.99},
	} {
		got, err := g.Height(tc.lat, tc.lon)
		if err != nil {
			t.Fatalf("%v: %s", tc, err)
		}
		if want := 10 + 2*tc.lat - 3*tc.lon; !scalar.EqualWithinAbs(got, want, 1e-9) {
			t.Errorf("%v: expected %v, got %v", tc, want, got)
		}
	}
}

func TestBoundary(t *testing.T) {
	g := plane(t)
	c, err := g.Boundary(31.5, 111)
	if err != nil {
		t.Fatal(err)
	}
	if c.Row != 2 || c.Col != 3 {
		t.Errorf("expected the north east cell, got %+v", c)
	}
	c, err = g.Boundary(30.6, 110.3)
	if err != nil {
		t.Fatal(err)
	}
	if c.Row != 1 || c.Col != 1 || c.South != 30.5 || c.West != 110.25 {
		t.Errorf("unexpected cell %+v", c)
	}

	for _, tc := range []struct{ lat, lon float64 }{
		{29.9, 110.5},
		{31.6, 110.5},
		{30.5, 109},
		{30.5, 111.01},
	} {
		if _, err := g.Height(tc.lat, tc.lon); !errors.Is(err, geodesy.ErrInvalidInput) {
			t.Errorf("%v: expected out of extent, got %v", tc, err)
		}
	}
	if _, err := g.ReadGrid(geoid.Cell{Row: 3}); !errors.Is(err, geodesy.ErrInvalidInput) {
		t.Errorf("expected invalid cell, got %v", err)
	}
}

func TestNewMemoryGrid(t *testing.T) {
	for _, tc := range []struct {
		name       string
		dlat       float64
		rows, cols int
		values     int
	}{
		{"single row", 1, 1, 2, 2},
		{"zero spacing", 0, 2, 2, 4},
		{"short values", 1, 2, 2, 3},
	} {
		if _, err := geoid.NewMemoryGrid(0, 0, tc.dlat, 1, tc.rows, tc.cols, make([]float64, tc.values)); !errors.Is(err, geodesy.ErrInvalidInput) {
			t.Errorf("%s: expected invalid input, got %v", tc.name, err)
		}
	}
	if _, err := geoid.NewMemoryGrid(89, 0, 1, 1, 3, 2, make([]float64, 6)); err == nil {
		t.Error("expected an error for a grid past the pole")
	}
}

func TestDecode(t *testing.T) {
	doc := `
south: 30
west: 110
dlat: 1
dlon: 1
rows: 2
cols: 2
values: [1, 2, 3, 4]
`
	g, err := geoid.Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	got, err := geoid.Interpolate(g, 30.5, 110.5)
	if err != nil {
		t.Fatal(err)
	}
	if got != 2.5 {
		t.Errorf("expected 2.5 at the cell centre, got %v", got)
	}
	if _, err := geoid.Decode(strings.NewReader("rows: [")); err == nil {
		t.Error("expected a decoding error")
	}
}
