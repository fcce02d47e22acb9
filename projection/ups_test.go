package projection_test

import (
	"errors"
	"testing"

	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/coord"
	"github.com/tzneal/geodesy/ellipsoid"
	"github.com/tzneal/geodesy/projection"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestUPSRoundTrip(t *testing.T) {
	const latInc = 0.25
	const lngInc = 1.5
	for lng := -190.0; lng < 190; lng += lngInc {
		for lat := -100.0; lat < 100; lat += latInc {
			geo := coord.LatLon(lat, lng)
			uc, err := projection.DefaultUPSConverter.FromGeodetic(geo)
			if err == nil {
				geo2, err := projection.DefaultUPSConverter.ToGeodetic(uc)
				if err != nil {
					t.Fatalf("expected no error in round trip, got one at %s (%s)", geo, err)
				}
				if d := geo.LatLng().Distance(geo2.LatLng()).Degrees(); d > 1e-7 {
					t.Fatalf("expected %s, got %s", geo, geo2)
				}
			}
		}
	}
}

func TestUPSPoles(t *testing.T) {
	for _, lat := range []float64{90, -90} {
		c, err := projection.DefaultUPSConverter.FromGeodetic(coord.LatLon(lat, 0))
		if err != nil {
			t.Fatal(err)
		}
		if c.Easting != 2000000 || c.Northing != 2000000 {
			t.Errorf("pole %v: expected the false origin, got %s", lat, c)
		}
		g, err := projection.DefaultUPSConverter.ToGeodetic(c)
		if err != nil {
			t.Fatal(err)
		}
		if !scalar.EqualWithinAbs(g.Lat.Degrees(), lat, 1e-12) {
			t.Errorf("expected latitude %v, got %s", lat, g)
		}
	}
}

func TestUPSRejects(t *testing.T) {
	if _, err := projection.DefaultUPSConverter.FromGeodetic(coord.LatLon(45, 0)); !errors.Is(err, geodesy.ErrLatitudeRange) {
		t.Errorf("expected latitude error, got %v", err)
	}
	if _, err := projection.DefaultUPSConverter.ToGeodetic(projection.UPSCoord{Band: 'Z', Easting: 5e6, Northing: 2e6}); !errors.Is(err, geodesy.ErrEastingRange) {
		t.Errorf("expected easting error, got %v", err)
	}
	if _, err := projection.DefaultUPSConverter.ToGeodetic(projection.UPSCoord{Easting: 2e6, Northing: 2e6}); !errors.Is(err, geodesy.ErrInvalidInput) {
		t.Errorf("expected missing hemisphere error, got %v", err)
	}
}

func TestPolarStereographic(t *testing.T) {
	ups, err := projection.NewPolarStereographic(ellipsoid.WGS84, projection.Parameters{
		LatitudeOfOrigin: projection.P(90),
		ScaleFactor:      projection.P(0.994),
	})
	if err != nil {
		t.Fatal(err)
	}
	if ups.Hemisphere() != projection.North {
		t.Errorf("expected north, got %s", ups.Hemisphere())
	}
	if !scalar.EqualWithinAbs(ups.StandardParallel(), 81.11452, 1e-4) {
		t.Errorf("expected true scale near 81.11452, got %v", ups.StandardParallel())
	}

	bySP, err := projection.NewPolarStereographic(ellipsoid.WGS84, projection.Parameters{
		LatitudeOfOrigin: projection.P(ups.StandardParallel()),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(bySP.ScaleFactor(), 0.994, 1e-9) {
		t.Errorf("expected scale factor 0.994, got %v", bySP.ScaleFactor())
	}

	south, err := projection.NewPolarStereographic(ellipsoid.WGS84, projection.Parameters{
		LatitudeOfOrigin: projection.P(-71),
	})
	if err != nil {
		t.Fatal(err)
	}
	if south.Hemisphere() != projection.South || !scalar.EqualWithinAbs(south.StandardParallel(), -71, 1e-12) {
		t.Errorf("unexpected southern projection %v %v", south.Hemisphere(), south.StandardParallel())
	}
	for _, g := range []coord.Geographic{
		coord.LatLon(-71, 0),
		coord.LatLon(-75, 120),
		coord.LatLon(-60, -45),
		coord.LatLon(-89.5, 179),
	} {
		roundTrip(t, south, g, 1e-9)
	}
	if _, err := south.Forward(coord.LatLon(10, 0)); !errors.Is(err, geodesy.ErrLatitudeRange) {
		t.Errorf("expected hemisphere error, got %v", err)
	}

	_, err = projection.NewPolarStereographic(ellipsoid.WGS84, projection.Parameters{})
	var missing *geodesy.MissingParameterError
	if !errors.As(err, &missing) || missing.Key != "latitude_of_origin" {
		t.Errorf("expected missing latitude of origin, got %v", err)
	}
}
