package geodesic

import (
	"math"

	"github.com/tzneal/geodesy/angle"
	"github.com/tzneal/geodesy/coord"
	"github.com/tzneal/geodesy/ellipsoid"
	"gonum.org/v1/gonum/integrate/quad"
)

const (
	// besselTolerance is 1e-6 arc seconds in radians.
	besselTolerance     = 1e-6 / 3600 * math.Pi / 180
	maxBesselIterations = 100
	quadraturePoints    = 32
)

// Bessel solves the geodetic problems by mapping the geodesic onto a
// great circle of the auxiliary sphere. Latitudes become reduced
// latitudes u, and the distance and the longitude correction are
// integrals over the arc σ of that great circle, evaluated with
// Gauss-Legendre quadrature.
type Bessel struct {
	Ellipsoid ellipsoid.Ellipsoid
}

// NewBessel returns a Bessel solver on e.
func NewBessel(e ellipsoid.Ellipsoid) *Bessel {
	return &Bessel{Ellipsoid: e}
}

// greatCircle holds the constants of one geodesic on the auxiliary
// sphere: the sine of its equatorial azimuth α0 and k² = e'²cos²α0.
type greatCircle struct {
	f         float64
	sinAlpha0 float64
	k2        float64
}

func newGreatCircle(e ellipsoid.Ellipsoid, sinAlpha0 float64) greatCircle {
	return greatCircle{f: e.F(), sinAlpha0: sinAlpha0, k2: e.EP2() * (1 - sinAlpha0*sinAlpha0)}
}

func (g greatCircle) stretch(sigma float64) float64 {
	s := math.Sin(sigma)
	return math.Sqrt(1 + g.k2*s*s)
}

// arc returns the geodesic length from σ1 to σ2 in units of the
// semi-minor axis.
func (g greatCircle) arc(s1, s2 float64) float64 {
	if s1 == s2 {
		return 0
	}
	return quad.Fixed(g.stretch, s1, s2, quadraturePoints, quad.Legendre{}, 0)
}

// lag returns how far the ellipsoidal longitude falls behind the
// spherical one between σ1 and σ2.
func (g greatCircle) lag(s1, s2 float64) float64 {
	if s1 == s2 || g.sinAlpha0 == 0 {
		return 0
	}
	f := g.f
	integrand := func(sigma float64) float64 {
		return (2 - f) / (1 + (1-f)*g.stretch(sigma))
	}
	return f * g.sinAlpha0 * quad.Fixed(integrand, s1, s2, quadraturePoints, quad.Legendre{}, 0)
}

// Direct implements Solver.
func (bs *Bessel) Direct(p1 coord.Geographic, az1 angle.Angle, dist float64) (DirectResult, error) {
	if err := checkDirect(p1, az1, dist); err != nil {
		return DirectResult{}, err
	}
	e := bs.Ellipsoid
	f, b := e.F(), e.B()
	alpha1 := az1.Radians()
	if dist < 0 {
		dist, alpha1 = -dist, alpha1+math.Pi
	}
	sinU1, cosU1 := math.Sincos(reducedLatitude(f, p1.Lat.Radians()))
	sinA1, cosA1 := math.Sincos(alpha1)
	gc := newGreatCircle(e, cosU1*sinA1)
	sigma1 := math.Atan2(sinU1, cosU1*cosA1)

	sigma := dist / b
	for i := 0; ; i++ {
		if i == maxBesselIterations {
			return DirectResult{}, errNotConverged("bessel direct", i)
		}
		d := (dist/b - gc.arc(sigma1, sigma1+sigma)) / gc.stretch(sigma1+sigma)
		sigma += d
		if math.Abs(d) < besselTolerance {
			break
		}
	}

	sinS, cosS := math.Sincos(sigma)
	sinU2 := sinU1*cosS + cosU1*sinS*cosA1
	cosU2 := math.Hypot(gc.sinAlpha0, sinU1*sinS-cosU1*cosS*cosA1)
	omega := math.Atan2(sinS*sinA1, cosU1*cosS-sinU1*sinS*cosA1)
	lambda := omega - gc.lag(sigma1, sigma1+sigma)
	alpha2 := math.Atan2(gc.sinAlpha0, cosU1*cosS*cosA1-sinU1*sinS)

	return DirectResult{
		Point:          endpoint(geodeticLatitude(f, sinU2, cosU2), p1.Lon.Radians()+lambda),
		ReverseAzimuth: reverse(alpha2),
	}, nil
}

// sphericalTriangle solves the polar triangle on the auxiliary sphere
// for the arc σ and the azimuths at both ends.
func sphericalTriangle(sinU1, cosU1, sinU2, cosU2, omega float64) (sigma, alpha1, alpha2 float64) {
	sinW, cosW := math.Sincos(omega)
	sinS := math.Hypot(cosU2*sinW, cosU1*sinU2-sinU1*cosU2*cosW)
	cosS := sinU1*sinU2 + cosU1*cosU2*cosW
	sigma = math.Atan2(sinS, cosS)
	alpha1 = math.Atan2(cosU2*sinW, cosU1*sinU2-sinU1*cosU2*cosW)
	alpha2 = math.Atan2(cosU1*sinW, -sinU1*cosU2+cosU1*sinU2*cosW)
	return sigma, alpha1, alpha2
}

// Inverse implements Solver. The spherical longitude difference ω is
// refined until successive values agree within 1e-6 arc seconds.
func (bs *Bessel) Inverse(p1, p2 coord.Geographic) (InverseResult, error) {
	if err := checkPoint(p1); err != nil {
		return InverseResult{}, err
	}
	if err := checkPoint(p2); err != nil {
		return InverseResult{}, err
	}
	e := bs.Ellipsoid
	f := e.F()
	l := math.Remainder(p2.Lon.Radians()-p1.Lon.Radians(), 2*math.Pi)
	sinU1, cosU1 := math.Sincos(reducedLatitude(f, p1.Lat.Radians()))
	sinU2, cosU2 := math.Sincos(reducedLatitude(f, p2.Lat.Radians()))

	omega := l
	var sigma, alpha1, alpha2, sigma1 float64
	var gc greatCircle
	for i := 0; ; i++ {
		if i == maxBesselIterations {
			return InverseResult{}, errNotConverged("bessel inverse", i)
		}
		sigma, alpha1, _ = sphericalTriangle(sinU1, cosU1, sinU2, cosU2, omega)
		if sigma == 0 {
			return InverseResult{Azimuth: angle.New(0), ReverseAzimuth: angle.New(0)}, nil
		}
		gc = newGreatCircle(e, cosU1*math.Sin(alpha1))
		sigma1 = math.Atan2(sinU1, cosU1*math.Cos(alpha1))
		next := l + gc.lag(sigma1, sigma1+sigma)
		if math.Abs(next-omega) < besselTolerance {
			omega = next
			break
		}
		omega = next
	}
	sigma, alpha1, alpha2 = sphericalTriangle(sinU1, cosU1, sinU2, cosU2, omega)
	gc = newGreatCircle(e, cosU1*math.Sin(alpha1))
	sigma1 = math.Atan2(sinU1, cosU1*math.Cos(alpha1))
	return InverseResult{
		Distance:       e.B() * gc.arc(sigma1, sigma1+sigma),
		Azimuth:        azimuth(alpha1),
		ReverseAzimuth: reverse(alpha2),
	}, nil
}
