package geodesic

import (
	"log/slog"
	"math"

	"github.com/tzneal/geodesy/angle"
	"github.com/tzneal/geodesy/coord"
	"github.com/tzneal/geodesy/ellipsoid"
)

const (
	vincentyTolerance           = 1e-12
	maxVincentyIterations       = 20
	maxVincentyDirectIterations = 200
)

// Vincenty solves the geodetic problems with Vincenty's formulae.
//
// When the inverse iteration does not settle within 20 rounds, which
// happens for nearly antipodal points, the result falls back to a route
// along the meridians: straight north or south when the longitudes are
// within 90°, otherwise over the pole nearer to the two points. The
// north-south fallback ignores the longitude difference, so its distance
// is an approximation that understates the geodesic.
type Vincenty struct {
	Ellipsoid ellipsoid.Ellipsoid
	// Logger records meridian fallbacks at debug level. Nil discards.
	Logger *slog.Logger
}

// NewVincenty returns a Vincenty solver on e.
func NewVincenty(e ellipsoid.Ellipsoid) *Vincenty {
	return &Vincenty{Ellipsoid: e}
}

// seriesAB returns Vincenty's A and B coefficients for u² = cos²α·e'².
func seriesAB(u2 float64) (a, b float64) {
	a = 1 + u2/16384*(4096+u2*(-768+u2*(320-175*u2)))
	b = u2 / 1024 * (256 + u2*(-128+u2*(74-47*u2)))
	return a, b
}

func deltaSigma(b, sinS, cosS, cos2SM float64) float64 {
	c2 := cos2SM * cos2SM
	return b * sinS * (cos2SM + b/4*(cosS*(-1+2*c2)-b/6*cos2SM*(-3+4*sinS*sinS)*(-3+4*c2)))
}

// Direct implements Solver.
func (v *Vincenty) Direct(p1 coord.Geographic, az1 angle.Angle, dist float64) (DirectResult, error) {
	if err := checkDirect(p1, az1, dist); err != nil {
		return DirectResult{}, err
	}
	e := v.Ellipsoid
	f, b := e.F(), e.B()
	lat1, lon1 := p1.Lat.Radians(), p1.Lon.Radians()

	sinU1, cosU1 := math.Sincos(reducedLatitude(f, lat1))
	sinA1, cosA1 := math.Sincos(az1.Radians())
	sigma1 := math.Atan2(sinU1, cosU1*cosA1)
	sinAlpha := cosU1 * sinA1
	cos2Alpha := 1 - sinAlpha*sinAlpha
	A, B := seriesAB(cos2Alpha * e.EP2())

	s0 := dist / (b * A)
	sigma := s0
	var sinS, cosS, cos2SM float64
	for i := 0; ; i++ {
		if i == maxVincentyDirectIterations {
			return DirectResult{}, errNotConverged("vincenty direct", i)
		}
		cos2SM = math.Cos(2*sigma1 + sigma)
		sinS, cosS = math.Sincos(sigma)
		next := s0 + deltaSigma(B, sinS, cosS, cos2SM)
		if math.Abs(next-sigma) < vincentyTolerance {
			sigma = next
			break
		}
		sigma = next
	}
	sinS, cosS = math.Sincos(sigma)
	cos2SM = math.Cos(2*sigma1 + sigma)

	tmp := sinU1*sinS - cosU1*cosS*cosA1
	lat2 := math.Atan2(sinU1*cosS+cosU1*sinS*cosA1, (1-f)*math.Hypot(sinAlpha, tmp))
	lambda := math.Atan2(sinS*sinA1, cosU1*cosS-sinU1*sinS*cosA1)
	c := f / 16 * cos2Alpha * (4 + f*(4-3*cos2Alpha))
	l := lambda - (1-c)*f*sinAlpha*(sigma+c*sinS*(cos2SM+c*cosS*(-1+2*cos2SM*cos2SM)))
	alpha2 := math.Atan2(sinAlpha, -tmp)

	return DirectResult{
		Point:          endpoint(lat2, lon1+l),
		ReverseAzimuth: reverse(alpha2),
	}, nil
}

// Inverse implements Solver.
func (v *Vincenty) Inverse(p1, p2 coord.Geographic) (InverseResult, error) {
	if err := checkPoint(p1); err != nil {
		return InverseResult{}, err
	}
	if err := checkPoint(p2); err != nil {
		return InverseResult{}, err
	}
	e := v.Ellipsoid
	f := e.F()
	lat1, lat2 := p1.Lat.Radians(), p2.Lat.Radians()
	l := math.Remainder(p2.Lon.Radians()-p1.Lon.Radians(), 2*math.Pi)

	sinU1, cosU1 := math.Sincos(reducedLatitude(f, lat1))
	sinU2, cosU2 := math.Sincos(reducedLatitude(f, lat2))

	lambda := l
	var sinL, cosL, sinS, cosS, sigma, cos2Alpha, cos2SM float64
	converged := false
	for i := 0; i < maxVincentyIterations; i++ {
		sinL, cosL = math.Sincos(lambda)
		sinS = math.Hypot(cosU2*sinL, cosU1*sinU2-sinU1*cosU2*cosL)
		cosS = sinU1*sinU2 + cosU1*cosU2*cosL
		if sinS == 0 {
			if cosS > 0 {
				return InverseResult{Azimuth: angle.New(0), ReverseAzimuth: angle.New(0)}, nil
			}
			break
		}
		sigma = math.Atan2(sinS, cosS)
		sinAlpha := cosU1 * cosU2 * sinL / sinS
		cos2Alpha = 1 - sinAlpha*sinAlpha
		cos2SM = 0
		if cos2Alpha != 0 {
			cos2SM = cosS - 2*sinU1*sinU2/cos2Alpha
		}
		c := f / 16 * cos2Alpha * (4 + f*(4-3*cos2Alpha))
		prev := lambda
		lambda = l + (1-c)*f*sinAlpha*(sigma+c*sinS*(cos2SM+c*cosS*(-1+2*cos2SM*cos2SM)))
		if math.Abs(lambda-prev) < vincentyTolerance {
			converged = true
			break
		}
	}
	if !converged {
		return v.meridianRoute(lat1, lat2, l), nil
	}

	sinL, cosL = math.Sincos(lambda)
	A, B := seriesAB(cos2Alpha * e.EP2())
	s := e.B() * A * (sigma - deltaSigma(B, sinS, cosS, cos2SM))
	alpha1 := math.Atan2(cosU2*sinL, cosU1*sinU2-sinU1*cosU2*cosL)
	alpha2 := math.Atan2(cosU1*sinL, -sinU1*cosU2+cosU1*sinU2*cosL)
	return InverseResult{
		Distance:       s,
		Azimuth:        azimuth(alpha1),
		ReverseAzimuth: reverse(alpha2),
	}, nil
}

// meridianRoute is the inverse solution used when the iteration fails.
// For |dlon| < 90° the distance is only the meridian arc |M2-M1| between
// the two latitudes, which is approximate since dlon is dropped.
func (v *Vincenty) meridianRoute(lat1, lat2, dlon float64) InverseResult {
	e := v.Ellipsoid
	m1, m2 := e.MeridianArc(lat1), e.MeridianArc(lat2)
	q := e.MeridianQuadrant()
	var r InverseResult
	switch {
	case math.Abs(dlon) < math.Pi/2:
		r.Distance = math.Abs(m2 - m1)
		r.Azimuth, r.ReverseAzimuth = angle.New(0), angle.New(180)
		if lat2 < lat1 {
			r.Azimuth, r.ReverseAzimuth = r.ReverseAzimuth, r.Azimuth
		}
	case lat1+lat2 >= 0:
		// Over the north pole.
		r.Distance = 2*q - m1 - m2
		r.Azimuth, r.ReverseAzimuth = angle.New(0), angle.New(0)
	default:
		r.Distance = 2*q + m1 + m2
		r.Azimuth, r.ReverseAzimuth = angle.New(180), angle.New(180)
	}
	if v.Logger != nil {
		v.Logger.Debug("vincenty inverse did not converge, using meridian route",
			"lat1", lat1*180/math.Pi, "lat2", lat2*180/math.Pi, "dlon", dlon*180/math.Pi,
			"distance", r.Distance)
	}
	return r
}
