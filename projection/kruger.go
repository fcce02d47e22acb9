package projection

import (
	"math"

	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/ellipsoid"
)

// krugerTerms is the number of series terms evaluated. The coefficient
// tables carry eight.
const krugerTerms = 6

// alphaPoly[k] holds the coefficients of n¹..n⁸ in Krüger's α₂₍ₖ₊₁₎,
// which maps the conformal sphere to the rectifying plane.
var alphaPoly = [8][8]float64{
	{1.0 / 2, -2.0 / 3, 5.0 / 16, 41.0 / 180, -127.0 / 288, 7891.0 / 37800, 72161.0 / 387072, -18975107.0 / 50803200},
	{0, 13.0 / 48, -3.0 / 5, 557.0 / 1440, 281.0 / 630, -1983433.0 / 1935360, 13769.0 / 28800, 148003883.0 / 174182400},
	{0, 0, 61.0 / 240, -103.0 / 140, 15061.0 / 26880, 167603.0 / 181440, -67102379.0 / 29030400, 79682431.0 / 79833600},
	{0, 0, 0, 49561.0 / 161280, -179.0 / 168, 6601661.0 / 7257600, 97445.0 / 49896, -40176129013.0 / 7664025600},
	{0, 0, 0, 0, 34729.0 / 80640, -3418889.0 / 1995840, 14644087.0 / 9123840, 2605413599.0 / 622702080},
	{0, 0, 0, 0, 0, 212378941.0 / 319334400, -30705481.0 / 10378368, 175214326799.0 / 58118860800},
	{0, 0, 0, 0, 0, 0, 1522256789.0 / 1383782400, -16759934899.0 / 3113510400},
	{0, 0, 0, 0, 0, 0, 0, 1424729850961.0 / 743921418240},
}

// betaPoly[k] holds the coefficients of the inverse series β₂₍ₖ₊₁₎.
var betaPoly = [8][8]float64{
	{-1.0 / 2, 2.0 / 3, -37.0 / 96, 1.0 / 360, 81.0 / 512, -96199.0 / 604800, 5406467.0 / 38707200, -7944359.0 / 67737600},
	{0, -1.0 / 48, -1.0 / 15, 437.0 / 1440, -46.0 / 105, 1118711.0 / 3870720, -51841.0 / 1209600, -24749483.0 / 348364800},
	{0, 0, -17.0 / 480, 37.0 / 840, 209.0 / 4480, -5569.0 / 90720, -9261899.0 / 58060800, 6457463.0 / 17740800},
	{0, 0, 0, -4397.0 / 161280, 11.0 / 504, 830251.0 / 7257600, -466511.0 / 2494800, -324154477.0 / 7664025600},
	{0, 0, 0, 0, -4583.0 / 161280, 108847.0 / 3991680, 8005831.0 / 63866880, -22894433.0 / 124540416},
	{0, 0, 0, 0, 0, -20648693.0 / 638668800, 16363163.0 / 518918400, 2204645983.0 / 12915302400},
	{0, 0, 0, 0, 0, 0, -219941297.0 / 5535129600, 497323811.0 / 12454041600},
	{0, 0, 0, 0, 0, 0, 0, -191773887257.0 / 3719607091200},
}

// krugerSeries is the ellipsoid-dependent part of the Krüger
// transverse Mercator. It depends only on the shape of the ellipsoid
// apart from the isoperimetric radius r4.
type krugerSeries struct {
	eps   float64
	r4    float64
	alpha [8]float64
	beta  [8]float64
}

func newKrugerSeries(e ellipsoid.Ellipsoid) *krugerSeries {
	n := e.F() / (2 - e.F())
	var pow [8]float64
	pow[0] = n
	for i := 1; i < len(pow); i++ {
		pow[i] = pow[i-1] * n
	}
	s := &krugerSeries{eps: e.E()}
	for k := range alphaPoly {
		for j := k; j < len(pow); j++ {
			s.alpha[k] += alphaPoly[k][j] * pow[j]
			s.beta[k] += betaPoly[k][j] * pow[j]
		}
	}
	n2 := pow[1]
	s.r4 = e.A() * (1 + n2*(1.0/4+n2*(1.0/64+n2*(1.0/256+n2*(25.0/16384+n2*49.0/65536))))) / (1 + n)
	return s
}

const maxKrugerDeltaLon = 70 * deg

// check rejects points too far from the central meridian unless they are
// close to a pole or to the antimeridian line of the projection.
func (s *krugerSeries) check(lat, l float64) error {
	nearest := math.Min(math.Abs(l), math.Min(math.Abs(l-math.Pi), math.Abs(l+math.Pi)))
	nearest = math.Min(nearest, math.Min(math.Pi/2-lat, math.Pi/2+lat))
	if nearest > maxKrugerDeltaLon {
		return &geodesy.RangeError{Field: "longitude from central meridian", Value: l / deg, Reason: "exceeds 70°"}
	}
	return nil
}

// project maps latitude and longitude from the central meridian to
// unscaled grid coordinates.
func (s *krugerSeries) project(lat, l float64) (northing, easting float64) {
	sinPhi, cosPhi := math.Sincos(lat)
	sinLam, cosLam := math.Sincos(l)

	// Conformal latitude.
	p := math.Exp(s.eps * math.Atanh(s.eps*sinPhi))
	hi := (1 + sinPhi) / p
	lo := (1 - sinPhi) * p
	cosChi := 2 * cosPhi / (hi + lo)
	sinChi := (hi - lo) / (hi + lo)

	u := math.Atanh(cosChi * sinLam)
	v := math.Atan2(sinChi, cosChi*cosLam)

	x, y := u, v
	for k := krugerTerms - 1; k >= 0; k-- {
		m := float64(2 * (k + 1))
		x += s.alpha[k] * math.Sinh(m*u) * math.Cos(m*v)
		y += s.alpha[k] * math.Cosh(m*u) * math.Sin(m*v)
	}
	return s.r4 * y, s.r4 * x
}

const maxConformalIterations = 30

// unproject inverts project.
func (s *krugerSeries) unproject(northing, easting float64) (lat, l float64, err error) {
	x := easting / s.r4
	y := northing / s.r4

	u, v := x, y
	for k := krugerTerms - 1; k >= 0; k-- {
		m := float64(2 * (k + 1))
		u += s.beta[k] * math.Sinh(m*x) * math.Cos(m*y)
		v += s.beta[k] * math.Cosh(m*x) * math.Sin(m*y)
	}

	coshU, sinhU := math.Cosh(u), math.Sinh(u)
	sinV, cosV := math.Sincos(v)
	l = math.Atan2(sinhU, cosV)
	lat, err = s.geodeticLat(sinV / coshU)
	return lat, l, err
}

// geodeticLat converts the sine of the conformal latitude back to a
// geodetic latitude.
func (s *krugerSeries) geodeticLat(sinChi float64) (float64, error) {
	sn := sinChi
	prev := math.Inf(1)
	for i := 0; i < maxConformalIterations; i++ {
		p := math.Exp(s.eps * math.Atanh(s.eps*sn))
		p2 := p * p
		sn = ((1+sinChi)*p2 - (1 - sinChi)) / ((1+sinChi)*p2 + (1 - sinChi))
		if math.Abs(sn-prev) < 1e-12 {
			return math.Asin(sn), nil
		}
		prev = sn
	}
	return 0, &geodesy.ConvergenceError{Op: "conformal latitude", Iterations: maxConformalIterations}
}
