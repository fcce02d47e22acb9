package projection

import (
	"fmt"
	"math"

	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/coord"
	"github.com/tzneal/geodesy/ellipsoid"
)

// parallelTolerance is how close (radians) two standard parallels must be
// to count as one, and how close to zero their sum may get.
const parallelTolerance = 1e-10

// LambertConformalConic is the two-standard-parallel Lambert conformal
// conic projection.
type LambertConformalConic struct {
	e      ellipsoid.Ellipsoid
	ecc    float64
	lon0   float64
	fe, fn float64

	n    float64 // cone constant
	af   float64 // a·F
	rho0 float64
}

// NewLambertConformalConic constructs the projection. StandardParallel1
// and StandardParallel2 are required; they may coincide but must not be
// symmetric about the equator.
func NewLambertConformalConic(e ellipsoid.Ellipsoid, p Parameters) (*LambertConformalConic, error) {
	d := p.dict(e)
	lat1, err := d.require(StandardParallel1)
	if err != nil {
		return nil, err
	}
	lat2, err := d.require(StandardParallel2)
	if err != nil {
		return nil, err
	}
	lat1, lat2 = lat1*deg, lat2*deg
	lat0 := d.radians(LatitudeOfOrigin, 0)
	for _, lat := range []float64{lat0, lat1, lat2} {
		if err := checkLatitude(lat); err != nil {
			return nil, err
		}
	}
	if math.Abs(lat1+lat2) < parallelTolerance {
		return nil, &geodesy.RangeError{Field: "standard parallels", Value: lat1 / deg, Reason: "symmetric about the equator"}
	}
	if math.Pi/2-math.Abs(lat1) < parallelTolerance || math.Pi/2-math.Abs(lat2) < parallelTolerance {
		return nil, &geodesy.RangeError{Field: "standard parallels", Value: lat1 / deg, Reason: "at a pole"}
	}

	l := &LambertConformalConic{
		e:    e,
		ecc:  e.E(),
		lon0: d.radians(CentralMeridian, 0),
		fe:   d.get(FalseEasting, 0),
		fn:   d.get(FalseNorthing, 0),
	}
	if err := validCentralMeridian(l.lon0); err != nil {
		return nil, err
	}

	m1, t1 := conformalM(e.E2(), lat1), isometricT(l.ecc, lat1)
	if math.Abs(lat1-lat2) < parallelTolerance {
		l.n = math.Sin(lat1)
	} else {
		m2, t2 := conformalM(e.E2(), lat2), isometricT(l.ecc, lat2)
		l.n = (math.Log(m1) - math.Log(m2)) / (math.Log(t1) - math.Log(t2))
	}
	l.af = e.A() * m1 / (l.n * math.Pow(t1, l.n))
	l.rho0 = l.rho(lat0)
	return l, nil
}

// ConeConstant returns n, the ratio of cone angle to longitude.
func (l *LambertConformalConic) ConeConstant() float64 { return l.n }

func (l *LambertConformalConic) rho(lat float64) float64 {
	if math.Abs(math.Abs(lat)-math.Pi/2) < poleTolerance {
		if lat*l.n > 0 {
			return 0
		}
		return math.Inf(1)
	}
	return l.af * math.Pow(isometricT(l.ecc, lat), l.n)
}

// Forward implements Projection.
func (l *LambertConformalConic) Forward(g coord.Geographic) (coord.Projected, error) {
	lat := g.Lat.Radians()
	if err := checkLatitude(lat); err != nil {
		return coord.Projected{}, err
	}
	r := l.rho(lat)
	if math.IsInf(r, 0) {
		return coord.Projected{}, fmt.Errorf("%w: %v is the apex opposite the cone", geodesy.ErrLatitudeRange, g.Lat.Degrees())
	}
	theta := l.n * normalizeLon(g.Lon.Radians()-l.lon0)
	sin, cos := math.Sincos(theta)
	return coord.NE(l.fn+l.rho0-r*cos, l.fe+r*sin), nil
}

// Reverse implements Projection.
func (l *LambertConformalConic) Reverse(p coord.Projected) (coord.Geographic, error) {
	p = p.Meters()
	x := p.Easting - l.fe
	y := l.rho0 - (p.Northing - l.fn)
	sign := math.Copysign(1, l.n)
	r := sign * math.Hypot(x, y)
	theta := math.Atan2(sign*x, sign*y)
	lon := l.lon0 + theta/l.n
	if r == 0 {
		return geographic(math.Copysign(math.Pi/2, l.n), l.lon0), nil
	}
	t := math.Pow(r/l.af, 1/l.n)
	lat, err := phi2("lambert conformal conic latitude", l.ecc, t)
	if err != nil {
		return coord.Geographic{}, err
	}
	return geographic(lat, lon), nil
}
