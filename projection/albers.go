package projection

import (
	"math"

	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/coord"
	"github.com/tzneal/geodesy/ellipsoid"
)

// Albers is the Albers equal-area conic projection.
type Albers struct {
	e      ellipsoid.Ellipsoid
	ecc    float64
	e2     float64
	lon0   float64
	fe, fn float64

	n, c, rho0 float64
	qp         float64 // q at the pole
}

// NewAlbers constructs the projection. StandardParallel1 and
// StandardParallel2 are required and must not be symmetric about the
// equator.
func NewAlbers(e ellipsoid.Ellipsoid, p Parameters) (*Albers, error) {
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

	a := &Albers{
		e:    e,
		ecc:  e.E(),
		e2:   e.E2(),
		lon0: d.radians(CentralMeridian, 0),
		fe:   d.get(FalseEasting, 0),
		fn:   d.get(FalseNorthing, 0),
	}
	if err := validCentralMeridian(a.lon0); err != nil {
		return nil, err
	}

	m1, q1 := conformalM(a.e2, lat1), a.q(lat1)
	if math.Abs(lat1-lat2) < parallelTolerance {
		a.n = math.Sin(lat1)
	} else {
		m2, q2 := conformalM(a.e2, lat2), a.q(lat2)
		a.n = (m1*m1 - m2*m2) / (q2 - q1)
	}
	a.c = m1*m1 + a.n*q1
	a.rho0 = a.rho(lat0)
	a.qp = a.q(math.Pi / 2)
	return a, nil
}

// q is Snyder's authalic function of latitude.
func (a *Albers) q(lat float64) float64 {
	s := math.Sin(lat)
	if a.ecc < 1e-12 {
		return 2 * s
	}
	es := a.ecc * s
	return (1 - a.e2) * (s/(1-es*es) - math.Log((1-es)/(1+es))/(2*a.ecc))
}

func (a *Albers) rho(lat float64) float64 {
	return a.e.A() * math.Sqrt(math.Max(a.c-a.n*a.q(lat), 0)) / a.n
}

// Forward implements Projection.
func (a *Albers) Forward(g coord.Geographic) (coord.Projected, error) {
	lat := g.Lat.Radians()
	if err := checkLatitude(lat); err != nil {
		return coord.Projected{}, err
	}
	r := a.rho(lat)
	theta := a.n * normalizeLon(g.Lon.Radians()-a.lon0)
	sin, cos := math.Sincos(theta)
	return coord.NE(a.fn+a.rho0-r*cos, a.fe+r*sin), nil
}

const (
	albersTolerance     = 1e-12
	maxAlbersIterations = 100
)

// Reverse implements Projection.
func (a *Albers) Reverse(p coord.Projected) (coord.Geographic, error) {
	p = p.Meters()
	x := p.Easting - a.fe
	y := a.rho0 - (p.Northing - a.fn)
	sign := math.Copysign(1, a.n)
	r := math.Hypot(x, y)
	theta := math.Atan2(sign*x, sign*y)
	lon := a.lon0 + theta/a.n

	rn := r * a.n / a.e.A()
	q := (a.c - rn*rn) / a.n
	if math.Abs(q) >= a.qp-1e-12 {
		return geographic(math.Copysign(math.Pi/2, q), lon), nil
	}
	lat := math.Asin(q / 2)
	if a.ecc < 1e-12 {
		return geographic(lat, lon), nil
	}
	for i := 0; i < maxAlbersIterations; i++ {
		sin, cos := math.Sincos(lat)
		es := a.ecc * sin
		w := 1 - es*es
		next := lat + w*w/(2*cos)*(q/(1-a.e2)-sin/w+math.Log((1-es)/(1+es))/(2*a.ecc))
		if math.Abs(next-lat) < albersTolerance {
			return geographic(next, lon), nil
		}
		lat = next
	}
	return coord.Geographic{}, &geodesy.ConvergenceError{Op: "albers latitude", Iterations: maxAlbersIterations}
}
