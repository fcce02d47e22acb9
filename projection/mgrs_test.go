package projection_test

import (
	"errors"
	"testing"

	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/coord"
	"github.com/tzneal/geodesy/projection"
	"gonum.org/v1/gonum/floats/scalar"
)

const earthRadius = 6371008.8

func TestMGRSKnownValues(t *testing.T) {
	m := projection.DefaultMGRSConverter
	for _, tc := range []struct {
		lat, lon  float64
		precision int
		want      string
	}{
		{0, 0, 5, "31NAA6602100000"},
		{0, 0, 4, "31NAA66020000"},
		{0, 0, 3, "31NAA660000"},
		{0, 0, 2, "31NAA6600"},
		{0, 0, 1, "31NAA60"},
		{0, 0, 0, "31NAA"},
		{90, 0, 5, "ZAH0000000000"},
		{-90, 0, 5, "BAN0000000000"},
	} {
		got, err := m.ToMGRS(coord.LatLon(tc.lat, tc.lon), tc.precision)
		if err != nil {
			t.Fatalf("(%v, %v) at %d: %s", tc.lat, tc.lon, tc.precision, err)
		}
		if got != tc.want {
			t.Errorf("(%v, %v) at %d: expected %s, got %s", tc.lat, tc.lon, tc.precision, tc.want, got)
		}
	}
}

func TestMGRSToUTM(t *testing.T) {
	for _, s := range []string{"31NAA6602100000", "31naa 66021 00000"} {
		c, err := projection.DefaultMGRSConverter.ToUTM(s)
		if err != nil {
			t.Fatalf("%q: %s", s, err)
		}
		if got := c.String(); got != "31N 166021.000 0.000" {
			t.Errorf("%q: expected 31N 166021.000 0.000, got %s", s, got)
		}
	}
	if _, err := projection.DefaultMGRSConverter.ToUTM("ZAH0000000000"); !errors.Is(err, geodesy.ErrGridReference) {
		t.Errorf("expected polar reference error, got %v", err)
	}
}

func TestMGRSFromUTM(t *testing.T) {
	c, err := projection.DefaultUTMConverter.FromGeodetic(coord.LatLon(0, 0), 0)
	if err != nil {
		t.Fatal(err)
	}
	got, err := projection.DefaultMGRSConverter.FromUTM(c, 5)
	if err != nil {
		t.Fatal(err)
	}
	if got != "31NAA6602100000" {
		t.Errorf("expected 31NAA6602100000, got %s", got)
	}
}

func TestMGRSPoles(t *testing.T) {
	for s, lat := range map[string]float64{"ZAH0000000000": 90, "BAN0000000000": -90} {
		g, err := projection.DefaultMGRSConverter.FromMGRS(s)
		if err != nil {
			t.Fatalf("%s: %s", s, err)
		}
		if !scalar.EqualWithinAbs(g.Lat.Degrees(), lat, 1e-9) {
			t.Errorf("%s: expected latitude %v, got %s", s, lat, g)
		}
	}
}

func TestMGRSRoundTrip(t *testing.T) {
	m := projection.DefaultMGRSConverter
	for lat := -89.75; lat < 90; lat += 1.5 {
		for lon := -179.7; lon < 180; lon += 2.3 {
			geo := coord.LatLon(lat, lon)
			s, err := m.ToMGRS(geo, 5)
			if err != nil {
				t.Fatalf("%s: %s", geo, err)
			}
			back, err := m.FromMGRS(s)
			if err != nil {
				t.Fatalf("%s via %s: %s", geo, s, err)
			}
			// The decoded position is the south-west corner of a 1 m
			// square.
			if d := geo.LatLng().Distance(back.LatLng()).Radians() * earthRadius; d > 2 {
				t.Fatalf("%s via %s returned %s, %.3f m away", geo, s, back, d)
			}
		}
	}
}

func TestMGRSSvalbard(t *testing.T) {
	// Zones 32, 34 and 36 do not exist in band X.
	for _, tc := range []struct {
		lon  float64
		zone string
	}{
		{8, "31X"},
		{10, "33X"},
		{20, "33X"},
		{22, "35X"},
		{40, "37X"},
	} {
		s, err := projection.DefaultMGRSConverter.ToMGRS(coord.LatLon(78, tc.lon), 0)
		if err != nil {
			t.Fatal(err)
		}
		if s[:3] != tc.zone {
			t.Errorf("lon %v: expected zone %s, got %s", tc.lon, tc.zone, s)
		}
	}
	if _, err := projection.DefaultMGRSConverter.ToUTM("32XMG"); !errors.Is(err, geodesy.ErrGridReference) {
		t.Errorf("expected grid reference error, got %v", err)
	}
}

func TestMGRSParseErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"31N",
		"31NAI6602100000",
		"31NOA6602100000",
		"31NAA660210000",
		"31NAA660210000000",
		"31NAA66O2100000",
		"31NAA66-2100000",
		"123NAA",
	} {
		if _, err := projection.DefaultMGRSConverter.FromMGRS(s); !errors.Is(err, geodesy.ErrGridReference) {
			t.Errorf("%q: expected grid reference error, got %v", s, err)
		}
	}
	if _, err := projection.DefaultMGRSConverter.FromMGRS("61NAA6602100000"); !errors.Is(err, geodesy.ErrZone) {
		t.Errorf("expected zone error, got %v", err)
	}
	if _, err := projection.DefaultMGRSConverter.ToMGRS(coord.LatLon(0, 0), 6); !errors.Is(err, geodesy.ErrInvalidInput) {
		t.Errorf("expected precision error, got %v", err)
	}
}
