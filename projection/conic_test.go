package projection_test

import (
	"errors"
	"math"
	"testing"

	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/coord"
	"github.com/tzneal/geodesy/ellipsoid"
	"github.com/tzneal/geodesy/projection"
	"gonum.org/v1/gonum/floats/scalar"
)

var conicParams = projection.Parameters{
	CentralMeridian:   projection.P(-96),
	LatitudeOfOrigin:  projection.P(23),
	StandardParallel1: projection.P(29.5),
	StandardParallel2: projection.P(45.5),
	FalseEasting:      projection.P(1000000),
}

var conicPoints = []coord.Geographic{
	coord.LatLon(23, -96),
	coord.LatLon(35, -75),
	coord.LatLon(49, -123),
	coord.LatLon(10, -60),
	coord.LatLon(-20, -100),
	coord.LatLon(70, 170),
}

func TestLambertConformalConic(t *testing.T) {
	l, err := projection.NewLambertConformalConic(ellipsoid.WGS84, conicParams)
	if err != nil {
		t.Fatal(err)
	}
	origin := roundTrip(t, l, conicPoints[0], 1e-9)
	if !scalar.EqualWithinAbs(origin.Easting, 1000000, 1e-6) || !scalar.EqualWithinAbs(origin.Northing, 0, 1e-6) {
		t.Errorf("expected the false origin, got %s", origin)
	}
	for _, g := range conicPoints[1:] {
		roundTrip(t, l, g, 1e-9)
	}
	if _, err := l.Forward(coord.LatLon(-90, 0)); !errors.Is(err, geodesy.ErrLatitudeRange) {
		t.Errorf("expected apex error, got %v", err)
	}
}

func TestLambertSingleParallel(t *testing.T) {
	l, err := projection.NewLambertConformalConic(ellipsoid.GRS80, projection.Parameters{
		StandardParallel1: projection.P(40),
		StandardParallel2: projection.P(40),
		LatitudeOfOrigin:  projection.P(40),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(l.ConeConstant(), math.Sin(40*math.Pi/180), 1e-15) {
		t.Errorf("expected cone constant sin 40°, got %v", l.ConeConstant())
	}
	roundTrip(t, l, coord.LatLon(42, 5), 1e-9)
}

func TestAlbers(t *testing.T) {
	a, err := projection.NewAlbers(ellipsoid.GRS80, conicParams)
	if err != nil {
		t.Fatal(err)
	}
	origin := roundTrip(t, a, conicPoints[0], 1e-9)
	if !scalar.EqualWithinAbs(origin.Easting, 1000000, 1e-6) || !scalar.EqualWithinAbs(origin.Northing, 0, 1e-6) {
		t.Errorf("expected the false origin, got %s", origin)
	}
	for _, g := range conicPoints[1:] {
		roundTrip(t, a, g, 1e-9)
	}

	e, err := ellipsoid.FromAxisFlattening("sphere", 6371000, 0)
	if err != nil {
		t.Fatal(err)
	}
	sphere, err := projection.NewAlbers(e, conicParams)
	if err != nil {
		t.Fatal(err)
	}
	roundTrip(t, sphere, coord.LatLon(35, -75), 1e-9)
}

func TestConicParameterErrors(t *testing.T) {
	for name, build := range map[string]func(ellipsoid.Ellipsoid, projection.Parameters) (projection.Projection, error){
		"lambert": func(e ellipsoid.Ellipsoid, p projection.Parameters) (projection.Projection, error) {
			return projection.NewLambertConformalConic(e, p)
		},
		"albers": func(e ellipsoid.Ellipsoid, p projection.Parameters) (projection.Projection, error) {
			return projection.NewAlbers(e, p)
		},
	} {
		_, err := build(ellipsoid.WGS84, projection.Parameters{StandardParallel2: projection.P(45)})
		var missing *geodesy.MissingParameterError
		if !errors.As(err, &missing) || missing.Key != "standard_parallel_1" {
			t.Errorf("%s: expected missing standard_parallel_1, got %v", name, err)
		}
		if !errors.Is(err, geodesy.ErrMissingParameter) {
			t.Errorf("%s: expected ErrMissingParameter, got %v", name, err)
		}

		_, err = build(ellipsoid.WGS84, projection.Parameters{
			StandardParallel1: projection.P(30),
			StandardParallel2: projection.P(-30),
		})
		if !errors.Is(err, geodesy.ErrInvalidInput) {
			t.Errorf("%s: expected symmetric parallel error, got %v", name, err)
		}
	}
}
