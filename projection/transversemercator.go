package projection

import (
	"fmt"
	"math"

	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/coord"
	"github.com/tzneal/geodesy/ellipsoid"
)

// Series selects the expansion used by a TransverseMercator.
type Series uint8

const (
	// Classic expands about the footpoint latitude to eighth order in the
	// longitude difference. It rejects points more than 6° from the
	// central meridian.
	Classic Series = iota
	// Kruger uses Krüger's n-series through the conformal sphere and stays
	// accurate far from the central meridian.
	Kruger
)

func (s Series) String() string {
	switch s {
	case Classic:
		return "classic"
	case Kruger:
		return "kruger"
	}
	return fmt.Sprintf("Series(%d)", uint8(s))
}

const (
	minScaleFactor = 0.1
	maxScaleFactor = 10.0

	// Points this close to a pole (radians) are rejected by the classic
	// series.
	poleTolerance = 1e-10

	// The classic series round-trips to 1e-7° up to 6° from the central
	// meridian. The slack keeps the edges of the widened Norway and
	// Svalbard UTM zones inside.
	maxClassicDeltaLon = 6*deg + 1e-12

	maxDeltaEasting  = 20000000.0
	maxDeltaNorthing = 10000000.0
)

// TransverseMercator is the transverse Mercator projection.
type TransverseMercator struct {
	e      ellipsoid.Ellipsoid
	series Series

	lon0, lat0 float64 // origin in radians
	fe, fn     float64
	k0         float64

	// unscaled northing of the origin latitude on the central meridian
	originNorthing float64

	kr *krugerSeries
}

// NewTransverseMercator constructs a transverse Mercator projection using
// the classic series.
func NewTransverseMercator(e ellipsoid.Ellipsoid, p Parameters) (*TransverseMercator, error) {
	return NewTransverseMercatorSeries(e, p, Classic)
}

// NewTransverseMercatorSeries constructs a transverse Mercator projection
// evaluated with the given series.
func NewTransverseMercatorSeries(e ellipsoid.Ellipsoid, p Parameters, s Series) (*TransverseMercator, error) {
	d := p.dict(e)
	t := &TransverseMercator{
		e:      e,
		series: s,
		lon0:   d.radians(CentralMeridian, 0),
		lat0:   d.radians(LatitudeOfOrigin, 0),
		fe:     d.get(FalseEasting, 0),
		fn:     d.get(FalseNorthing, 0),
		k0:     d.get(ScaleFactor, 1),
	}
	if err := validCentralMeridian(t.lon0); err != nil {
		return nil, err
	}
	if err := checkLatitude(t.lat0); err != nil {
		return nil, err
	}
	if t.k0 < minScaleFactor || t.k0 > maxScaleFactor {
		return nil, &geodesy.RangeError{Field: ScaleFactor.String(), Value: t.k0, Reason: "must be in [0.1, 10]"}
	}
	if t.lon0 > math.Pi {
		t.lon0 -= 2 * math.Pi
	}

	switch s {
	case Classic:
		t.originNorthing = e.MeridianArc(t.lat0)
	case Kruger:
		t.kr = newKrugerSeries(e)
		t.originNorthing, _ = t.kr.project(t.lat0, 0)
	default:
		return nil, fmt.Errorf("transverse mercator series %v: %w", s, geodesy.ErrInvalidInput)
	}
	return t, nil
}

// CentralMeridian returns the longitude of the central meridian in degrees.
func (t *TransverseMercator) CentralMeridian() float64 { return t.lon0 / deg }

// ScaleFactor returns the scale factor on the central meridian.
func (t *TransverseMercator) ScaleFactor() float64 { return t.k0 }

// Forward implements Projection.
func (t *TransverseMercator) Forward(g coord.Geographic) (coord.Projected, error) {
	lat := g.Lat.Radians()
	if err := checkLatitude(lat); err != nil {
		return coord.Projected{}, err
	}
	l := normalizeLon(g.Lon.Radians() - t.lon0)

	var x, y float64
	switch t.series {
	case Kruger:
		if err := t.kr.check(lat, l); err != nil {
			return coord.Projected{}, err
		}
		x, y = t.kr.project(lat, l)
	default:
		var err error
		if x, y, err = t.classicForward(lat, l); err != nil {
			return coord.Projected{}, err
		}
	}
	return coord.NE(t.fn+t.k0*(x-t.originNorthing), t.fe+t.k0*y), nil
}

// Reverse implements Projection.
func (t *TransverseMercator) Reverse(p coord.Projected) (coord.Geographic, error) {
	p = p.Meters()
	if math.Abs(p.Easting-t.fe) > maxDeltaEasting {
		return coord.Geographic{}, fmt.Errorf("%w: %v", geodesy.ErrEastingRange, p.Easting)
	}
	if math.Abs(p.Northing-t.fn) > maxDeltaNorthing+math.Abs(t.originNorthing) {
		return coord.Geographic{}, fmt.Errorf("%w: %v", geodesy.ErrNorthingRange, p.Northing)
	}
	x := (p.Northing-t.fn)/t.k0 + t.originNorthing
	y := (p.Easting - t.fe) / t.k0

	var lat, l float64
	var err error
	switch t.series {
	case Kruger:
		lat, l, err = t.kr.unproject(x, y)
	default:
		lat, l, err = t.classicReverse(x, y)
	}
	if err != nil {
		return coord.Geographic{}, err
	}
	if math.Abs(lat) > math.Pi/2 {
		return coord.Geographic{}, fmt.Errorf("%w: %v", geodesy.ErrNorthingRange, p.Northing)
	}
	return geographic(lat, t.lon0+l), nil
}

func (t *TransverseMercator) classicForward(lat, l float64) (x, y float64, err error) {
	if math.Abs(l) > maxClassicDeltaLon {
		return 0, 0, &geodesy.RangeError{Field: "longitude from central meridian", Value: l / deg, Reason: "exceeds 6° for the classic series"}
	}
	if math.Pi/2-math.Abs(lat) < poleTolerance {
		return 0, 0, fmt.Errorf("%w: %v is too close to the pole", geodesy.ErrLatitudeRange, lat/deg)
	}
	sinPhi, cosPhi := math.Sincos(lat)
	tn := sinPhi / cosPhi
	t2 := tn * tn
	t4 := t2 * t2
	t6 := t4 * t2
	eta2 := t.e.EP2() * cosPhi * cosPhi
	n := t.e.N(lat)

	lc := l * cosPhi
	lc2 := lc * lc

	x = t.e.MeridianArc(lat) + n*tn*lc2*(1.0/2+lc2*((5-t2+9*eta2+4*eta2*eta2)/24+
		lc2*((61-58*t2+t4+270*eta2-330*t2*eta2)/720+
			lc2*(1385-3111*t2+543*t4-t6)/40320)))
	y = n * lc * (1 + lc2*((1-t2+eta2)/6+
		lc2*((5-18*t2+t4+14*eta2-58*t2*eta2)/120+
			lc2*(61-479*t2+179*t4-t6)/5040)))
	return x, y, nil
}

func (t *TransverseMercator) classicReverse(x, y float64) (lat, l float64, err error) {
	phi, err := t.e.FootpointLatitude(x)
	if err != nil {
		return 0, 0, err
	}
	if math.Pi/2-math.Abs(phi) < poleTolerance {
		return math.Copysign(math.Pi/2, phi), 0, nil
	}
	sinPhi, cosPhi := math.Sincos(phi)
	tf := sinPhi / cosPhi
	t2 := tf * tf
	t4 := t2 * t2
	t6 := t4 * t2
	eta2 := t.e.EP2() * cosPhi * cosPhi
	eta4 := eta2 * eta2
	nf := t.e.N(phi)
	mf := t.e.M(phi)

	d := y / nf
	d2 := d * d

	lat = phi - tf*nf/mf*d2*(1.0/2-d2*((5+3*t2+eta2-4*eta4-9*eta2*t2)/24-
		d2*((61+90*t2+298*eta2+45*t4-252*eta2*t2-3*eta4)/720-
			d2*(1385+3633*t2+4095*t4+1575*t6)/40320)))
	l = d / cosPhi * (1 - d2*((1+2*t2+eta2)/6-
		d2*((5+28*t2+24*t4+6*eta2+8*eta2*t2)/120-
			d2*(61+662*t2+1320*t4+720*t6)/5040)))
	return lat, l, nil
}
