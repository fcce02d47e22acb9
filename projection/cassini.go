package projection

import (
	"math"

	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/coord"
	"github.com/tzneal/geodesy/ellipsoid"
)

// Cassini is the Cassini-Soldner projection. It rejects points more than
// 2° from the central meridian, where the series falls short of 1e-7°.
type Cassini struct {
	e      ellipsoid.Ellipsoid
	lon0   float64
	fe, fn float64
	m0     float64
}

const maxCassiniDeltaLon = 2 * deg

// NewCassini constructs the projection.
func NewCassini(e ellipsoid.Ellipsoid, p Parameters) (*Cassini, error) {
	d := p.dict(e)
	c := &Cassini{
		e:    e,
		lon0: d.radians(CentralMeridian, 0),
		fe:   d.get(FalseEasting, 0),
		fn:   d.get(FalseNorthing, 0),
	}
	if err := validCentralMeridian(c.lon0); err != nil {
		return nil, err
	}
	lat0 := d.radians(LatitudeOfOrigin, 0)
	if err := checkLatitude(lat0); err != nil {
		return nil, err
	}
	c.m0 = e.MeridianArc(lat0)
	return c, nil
}

// Forward implements Projection.
func (c *Cassini) Forward(g coord.Geographic) (coord.Projected, error) {
	lat := g.Lat.Radians()
	if err := checkLatitude(lat); err != nil {
		return coord.Projected{}, err
	}
	if math.Pi/2-math.Abs(lat) < poleTolerance {
		return coord.NE(c.fn+c.e.MeridianArc(lat)-c.m0, c.fe), nil
	}
	l := normalizeLon(g.Lon.Radians() - c.lon0)
	if math.Abs(l) > maxCassiniDeltaLon {
		return coord.Projected{}, &geodesy.RangeError{Field: "longitude from central meridian", Value: l / deg, Reason: "exceeds 2°"}
	}
	sin, cos := math.Sincos(lat)
	tn := sin / cos
	t := tn * tn
	ce := c.e.EP2() * cos * cos
	n := c.e.N(lat)
	a := l * cos
	a2 := a * a

	x := n * a * (1 - a2*(t/6+a2*(8-t+8*ce)*t/120))
	y := c.e.MeridianArc(lat) - c.m0 + n*tn*a2*(1.0/2+a2*(5-t+6*ce)/24)
	return coord.NE(c.fn+y, c.fe+x), nil
}

// Reverse implements Projection.
func (c *Cassini) Reverse(p coord.Projected) (coord.Geographic, error) {
	p = p.Meters()
	phi1, err := c.e.FootpointLatitude(c.m0 + p.Northing - c.fn)
	if err != nil {
		return coord.Geographic{}, err
	}
	if math.Pi/2-math.Abs(phi1) < poleTolerance {
		return geographic(math.Copysign(math.Pi/2, phi1), c.lon0), nil
	}
	sin, cos := math.Sincos(phi1)
	tn := sin / cos
	t1 := tn * tn
	n1 := c.e.N(phi1)
	r1 := c.e.M(phi1)
	d := (p.Easting - c.fe) / n1
	d2 := d * d

	lat := phi1 - n1*tn/r1*d2*(1.0/2-(1+3*t1)*d2/24)
	lon := c.lon0 + d*(1-t1*d2/3+(1+3*t1)*t1*d2*d2/15)/cos
	return geographic(lat, lon), nil
}
