// Package ellipsoid models reference ellipsoids of revolution.
//
// An Ellipsoid is immutable: every derived quantity is computed once by
// FromAxisFlattening or FromDynamicFormFactor and the value can be shared
// freely between goroutines.
package ellipsoid

import (
	"fmt"
	"math"

	"github.com/tzneal/geodesy"
)

// Ellipsoid is a biaxial reference ellipsoid.
type Ellipsoid struct {
	name string
	code int // EPSG ellipsoid code, zero when unknown

	a    float64 // semi-major axis in meters
	invF float64 // inverse flattening, +Inf for a sphere
	f    float64
	b    float64
	e2   float64 // first eccentricity squared
	ep2  float64 // second eccentricity squared

	arc arcSeries
}

// FromAxisFlattening builds an ellipsoid from its semi-major axis and
// inverse flattening. An inverse flattening of 0 or +Inf gives a sphere.
func FromAxisFlattening(name string, a, invF float64) (Ellipsoid, error) {
	if !(a > 0) || math.IsInf(a, 0) {
		return Ellipsoid{}, &geodesy.RangeError{Field: "semi-major axis", Value: a, Reason: "must be positive"}
	}
	if invF == 0 {
		invF = math.Inf(1)
	}
	if !(invF > 1) {
		return Ellipsoid{}, &geodesy.RangeError{Field: "inverse flattening", Value: invF, Reason: "must be greater than 1"}
	}
	f := 1 / invF
	e := Ellipsoid{
		name: name,
		a:    a,
		invF: invF,
		f:    f,
		b:    a * (1 - f),
		e2:   2*f - f*f,
	}
	e.ep2 = e.e2 / (1 - e.e2)
	e.arc = newArcSeries(a, e.e2)
	return e, nil
}

// maxJ2Iterations caps the fixed-point solve in FromDynamicFormFactor.
const maxJ2Iterations = 50

// FromDynamicFormFactor builds a normal ellipsoid from its semi-major
// axis, dynamic form factor J2, angular velocity omega (rad/s) and
// geocentric gravitational constant gm (m³/s²), solving for the
// eccentricity by fixed-point iteration seeded with 1/f = 298.2572.
//
// The iteration stops when successive e² values differ by at most 1e-15.
// If that does not happen within 50 iterations ErrNotConverged is
// returned rather than a best-effort value.
func FromDynamicFormFactor(name string, a, j2, omega, gm float64) (Ellipsoid, error) {
	if !(a > 0) {
		return Ellipsoid{}, &geodesy.RangeError{Field: "semi-major axis", Value: a, Reason: "must be positive"}
	}
	if !(j2 > 0) || !(gm > 0) || omega < 0 {
		return Ellipsoid{}, &geodesy.RangeError{Field: "J2", Value: j2, Reason: "J2 and GM must be positive"}
	}
	m := omega * omega * a * a * a / gm
	const seed = 1 / 298.2572
	es := 2*seed - seed*seed
	converged := false
	for i := 0; i < maxJ2Iterations; i++ {
		e := math.Sqrt(es)
		ep := e / math.Sqrt(1-es)
		next := 3*j2 + 4.0/15*m*e*es/twoQ0(ep)
		if math.Abs(next-es) <= 1e-15 {
			es = next
			converged = true
			break
		}
		es = next
	}
	if !converged {
		return Ellipsoid{}, &geodesy.ConvergenceError{Op: "J2 to flattening", Iterations: maxJ2Iterations}
	}
	f := 1 - math.Sqrt(1-es)
	return FromAxisFlattening(name, a, 1/f)
}

// twoQ0 returns 2q0 = (1 + 3/e'²)·atan(e') - 3/e' summed as its power
// series in e'. The closed form loses about eight digits to cancellation
// at terrestrial eccentricities.
func twoQ0(ep float64) float64 {
	if ep > 0.5 {
		return (1+3/(ep*ep))*math.Atan(ep) - 3/ep
	}
	x2 := ep * ep
	p := ep * x2
	sign := 1.0
	sum := 0.0
	for j := 1.0; j < 100; j++ {
		term := sign * 4 * j * p / ((2*j + 1) * (2*j + 3))
		sum += term
		if math.Abs(term) < 1e-22*math.Abs(sum) {
			break
		}
		p *= x2
		sign = -sign
	}
	return sum
}

// Name returns the ellipsoid name.
func (e Ellipsoid) Name() string { return e.name }

// Code returns the EPSG ellipsoid code, or zero.
func (e Ellipsoid) Code() int { return e.code }

// A returns the semi-major axis.
func (e Ellipsoid) A() float64 { return e.a }

// B returns the semi-minor axis.
func (e Ellipsoid) B() float64 { return e.b }

// InvF returns the inverse flattening (+Inf for a sphere).
func (e Ellipsoid) InvF() float64 { return e.invF }

// F returns the flattening.
func (e Ellipsoid) F() float64 { return e.f }

// E2 returns the first eccentricity squared.
func (e Ellipsoid) E2() float64 { return e.e2 }

// EP2 returns the second eccentricity squared.
func (e Ellipsoid) EP2() float64 { return e.ep2 }

// E returns the first eccentricity.
func (e Ellipsoid) E() float64 { return math.Sqrt(e.e2) }

// EP returns the second eccentricity.
func (e Ellipsoid) EP() float64 { return math.Sqrt(e.ep2) }

// IsSphere reports whether the flattening is zero.
func (e Ellipsoid) IsSphere() bool { return e.f == 0 }

func (e Ellipsoid) w(lat float64) float64 {
	s := math.Sin(lat)
	return math.Sqrt(1 - e.e2*s*s)
}

// N returns the prime vertical radius of curvature at lat (radians).
func (e Ellipsoid) N(lat float64) float64 { return e.a / e.w(lat) }

// M returns the meridian radius of curvature at lat (radians).
func (e Ellipsoid) M(lat float64) float64 {
	w := e.w(lat)
	return e.a * (1 - e.e2) / (w * w * w)
}

// MeanRadiusAt returns the Gaussian mean radius sqrt(MN) at lat.
func (e Ellipsoid) MeanRadiusAt(lat float64) float64 {
	return math.Sqrt(e.M(lat) * e.N(lat))
}

// DirectionalRadius returns the radius of curvature of the normal section
// at lat in azimuth az (both radians), by Euler's formula.
func (e Ellipsoid) DirectionalRadius(lat, az float64) float64 {
	m, n := e.M(lat), e.N(lat)
	c, s := math.Cos(az), math.Sin(az)
	return m * n / (n*c*c + m*s*s)
}

// ParallelRadius returns the radius of the parallel circle at lat.
func (e Ellipsoid) ParallelRadius(lat float64) float64 {
	return e.N(lat) * math.Cos(lat)
}

// Area returns the surface area.
func (e Ellipsoid) Area() float64 {
	if e.IsSphere() {
		return 4 * math.Pi * e.a * e.a
	}
	ec := e.E()
	return 2*math.Pi*e.a*e.a + math.Pi*e.b*e.b/ec*math.Log((1+ec)/(1-ec))
}

// Volume returns the enclosed volume.
func (e Ellipsoid) Volume() float64 { return 4.0 / 3 * math.Pi * e.a * e.a * e.b }

// MeanRadius returns the arithmetic mean radius (2a+b)/3.
func (e Ellipsoid) MeanRadius() float64 { return (2*e.a + e.b) / 3 }

// AuthalicRadius returns the radius of the sphere of equal area.
func (e Ellipsoid) AuthalicRadius() float64 { return math.Sqrt(e.Area() / (4 * math.Pi)) }

// VolumetricRadius returns the radius of the sphere of equal volume.
func (e Ellipsoid) VolumetricRadius() float64 { return math.Cbrt(e.a * e.a * e.b) }

func (e Ellipsoid) String() string {
	return fmt.Sprintf("%s(a=%.3f, 1/f=%.9f)", e.name, e.a, e.invF)
}
