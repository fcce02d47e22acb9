package coord_test

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/angle"
	"github.com/tzneal/geodesy/coord"
	"github.com/tzneal/geodesy/ellipsoid"
	"github.com/tzneal/geodesy/unit"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestGeodeticXYZRoundTripBeijing(t *testing.T) {
	g, err := coord.NewGeodetic(39.9042, 116.4074, 50)
	if err != nil {
		t.Fatal(err)
	}
	p := coord.GeodeticToXYZ(ellipsoid.WGS84, g)
	back, err := coord.XYZToGeodetic(ellipsoid.WGS84, p)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(back.Lat.Degrees()-39.9042) > 1e-9 || math.Abs(back.Lon.Degrees()-116.4074) > 1e-9 {
		t.Errorf("got %s, want %s", back, g)
	}
	if math.Abs(back.H-50) > 1e-6 {
		t.Errorf("height = %.9f", back.H)
	}
}

func TestGeodeticXYZGrid(t *testing.T) {
	e := ellipsoid.Krassovsky1940
	for lat := -90.0; lat <= 90; lat += 15 {
		for lon := -180.0; lon < 180; lon += 30 {
			for _, h := range []float64{-100, 0, 8848, 20200e3} {
				g := coord.Geodetic{Geographic: coord.LatLon(lat, lon), H: h}
				back, err := coord.XYZToGeodetic(e, coord.GeodeticToXYZ(e, g))
				if err != nil {
					t.Fatalf("(%v, %v, %v): %s", lat, lon, h, err)
				}
				if math.Abs(back.Lat.Degrees()-lat) > 1e-9 || math.Abs(back.H-h) > 1e-5 {
					t.Fatalf("(%v, %v, %v) -> %s", lat, lon, h, back)
				}
				if math.Abs(lat) < 90 && math.Abs(back.Lon.Degrees()-lon) > 1e-9 {
					t.Fatalf("(%v, %v, %v) -> %s", lat, lon, h, back)
				}
			}
		}
	}
}

func TestXYZUnits(t *testing.T) {
	p := coord.SpaceRectangular{Vector: r3.Vector{X: 6378.137}, Unit: unit.Kilometer}
	g, err := coord.XYZToGeodetic(ellipsoid.WGS84, p)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(g.Lat.Degrees()) > 1e-12 || math.Abs(g.H) > 1e-6 {
		t.Errorf("got %s", g)
	}
	if d := p.Distance(coord.XYZ(6378137, 0, 0)); d > 1e-6 {
		t.Errorf("distance = %v", d)
	}
	if _, err := coord.XYZToGeodetic(ellipsoid.WGS84, coord.XYZ(0, 0, 0)); !errors.Is(err, geodesy.ErrInvalidInput) {
		t.Errorf("expected invalid input at geocentre, got %v", err)
	}
}

func TestTopocentric(t *testing.T) {
	e := ellipsoid.WGS84
	origin, _ := coord.NewGeodetic(30, 120, 10)
	target, _ := coord.NewGeodetic(30.01, 120.01, 110)
	p := coord.GeodeticToXYZ(e, target)
	enu := coord.ToTopocentric(e, origin, p)
	if enu.E <= 0 || enu.N <= 0 {
		t.Errorf("expected target north-east of origin, got %+v", enu)
	}
	back := coord.FromTopocentric(e, origin, enu)
	if d := back.Distance(p); d > 1e-6 {
		t.Errorf("round trip off by %v m", d)
	}
	pol := enu.Polar()
	if pol.Azimuth.Degrees() <= 0 || pol.Azimuth.Degrees() >= 90 {
		t.Errorf("azimuth = %v", pol.Azimuth.Degrees())
	}
	re := pol.Rectangular()
	if !scalar.EqualWithinAbs(re.E, enu.E, 1e-8) || !scalar.EqualWithinAbs(re.N, enu.N, 1e-8) || !scalar.EqualWithinAbs(re.U, enu.U, 1e-8) {
		t.Errorf("polar round trip %+v != %+v", re, enu)
	}
	up := coord.ToTopocentric(e, origin, coord.GeodeticToXYZ(e, coord.Geodetic{Geographic: origin.Geographic, H: 1010}))
	if !scalar.EqualWithinAbs(up.U, 1000, 1e-6) || math.Abs(up.E) > 1e-6 || math.Abs(up.N) > 1e-6 {
		t.Errorf("vertical offset = %+v", up)
	}
}

func TestPolarAndSpherical(t *testing.T) {
	p := coord.PolarFromXY(-1, -1)
	if !scalar.EqualWithinAbs(p.Azimuth.Degrees(), 225, 1e-12) || !scalar.EqualWithinAbs(p.Range, math.Sqrt2, 1e-15) {
		t.Errorf("polar = %+v", p)
	}
	x, y := p.XY()
	if !scalar.EqualWithinAbs(x, -1, 1e-12) || !scalar.EqualWithinAbs(y, -1, 1e-12) {
		t.Errorf("xy = %v %v", x, y)
	}
	v := r3.Vector{X: 1, Y: 2, Z: 3}
	s := coord.SphericalFromCartesian(v)
	if d := s.Cartesian().Sub(v).Norm(); d > 1e-12 {
		t.Errorf("spherical round trip off by %v", d)
	}
}

func TestVectorDimensions(t *testing.T) {
	a := coord.NewVector(unit.Meter, 1, 2, 3)
	b := coord.NewVector(unit.Meter, 1, 2)
	if _, err := a.Shift(b); !errors.Is(err, geodesy.ErrInvalidInput) {
		t.Errorf("shift: expected invalid input, got %v", err)
	}
	if _, err := a.Distance(b); !errors.Is(err, geodesy.ErrInvalidInput) {
		t.Errorf("distance: expected invalid input, got %v", err)
	}
	if _, err := a.Rotate2D(angle.New(10)); !errors.Is(err, geodesy.ErrInvalidInput) {
		t.Errorf("rotate2d: expected invalid input, got %v", err)
	}
	var de *geodesy.DimensionError
	_, err := b.Rotate3D(angle.New(1), angle.New(2), angle.New(3))
	if !errors.As(err, &de) || de.Want != 3 || de.Got != 2 {
		t.Errorf("rotate3d: %v", err)
	}
}

func TestVectorOps(t *testing.T) {
	a := coord.NewVector(unit.Meter, 1, 0, 0)
	s, err := a.Shift(coord.NewVector(unit.Kilometer, 0.001, 0.002, 0))
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualApprox(s.Components(), []float64{2, 2, 0}, 1e-12) {
		t.Errorf("shift = %v", s.Components())
	}
	r, err := a.Rotate3D(angle.New(0), angle.New(0), angle.New(90))
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualApprox(r.Components(), []float64{0, 1, 0}, 1e-12) {
		t.Errorf("rotate3d = %v", r.Components())
	}
	r2, err := coord.NewVector(unit.Meter, 1, 0).Rotate2D(angle.New(90))
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualApprox(r2.Components(), []float64{0, 1}, 1e-12) {
		t.Errorf("rotate2d = %v", r2.Components())
	}
	d, err := a.Distance(coord.NewVector(unit.Meter, 4, 4, 0))
	if err != nil || d != 5 {
		t.Errorf("distance = %v, %v", d, err)
	}
}

func TestLatLngConversion(t *testing.T) {
	ll := s2.LatLngFromDegrees(-33.8688, 151.2093)
	g := coord.FromLatLng(ll)
	if !scalar.EqualWithinAbs(g.Lat.Degrees(), -33.8688, 1e-12) || g.Lat.Kind() != angle.KindLatitude {
		t.Errorf("lat = %v", g.Lat)
	}
	if back := g.LatLng(); back.Distance(ll) > 1e-12 {
		t.Errorf("LatLng() = %s", back)
	}
	if _, err := coord.NewGeographic(120, 0); !errors.Is(err, geodesy.ErrInvalidInput) {
		t.Errorf("expected invalid latitude, got %v", err)
	}
}
