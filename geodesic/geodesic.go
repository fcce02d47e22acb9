// Package geodesic solves the direct and inverse geodetic problems on an
// ellipsoid.
//
// Two interchangeable solvers are provided. Vincenty uses the classic
// nested series and iterates on the longitude of the auxiliary sphere.
// Bessel evaluates the exact auxiliary-sphere integrals numerically and
// iterates on the spherical longitude. Azimuths are clockwise from north
// in [0, 360) and distances are in meters.
package geodesic

import (
	"fmt"
	"math"
	"strings"

	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/angle"
	"github.com/tzneal/geodesy/coord"
	"github.com/tzneal/geodesy/ellipsoid"
)

// DirectResult is the solution of the direct problem.
type DirectResult struct {
	Point coord.Geographic `json:"point"`
	// ReverseAzimuth points from Point back towards the start.
	ReverseAzimuth angle.Angle `json:"reverse_azimuth"`
}

// InverseResult is the solution of the inverse problem.
type InverseResult struct {
	Distance float64     `json:"distance"`
	Azimuth  angle.Angle `json:"azimuth"`
	// ReverseAzimuth points from the second point back towards the first.
	ReverseAzimuth angle.Angle `json:"reverse_azimuth"`
}

func (r InverseResult) String() string {
	return fmt.Sprintf("%.4f m, azimuth %.9f, reverse %.9f", r.Distance, r.Azimuth.Degrees(), r.ReverseAzimuth.Degrees())
}

// Solver solves both geodetic problems.
type Solver interface {
	Direct(p1 coord.Geographic, az1 angle.Angle, dist float64) (DirectResult, error)
	Inverse(p1, p2 coord.Geographic) (InverseResult, error)
}

// Method names a solver.
type Method uint8

// Solver methods.
const (
	MethodVincenty Method = iota
	MethodBessel
)

func (m Method) String() string {
	if m == MethodBessel {
		return "bessel"
	}
	return "vincenty"
}

// ParseMethod parses a solver name, ignoring case.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vincenty", "":
		return MethodVincenty, nil
	case "bessel":
		return MethodBessel, nil
	}
	return 0, fmt.Errorf("unknown geodesic method %q: %w", s, geodesy.ErrInvalidInput)
}

// New returns the solver for m on e.
func New(m Method, e ellipsoid.Ellipsoid) Solver {
	if m == MethodBessel {
		return &Bessel{Ellipsoid: e}
	}
	return &Vincenty{Ellipsoid: e}
}

// azimuth wraps a radian azimuth to [0, 360) degrees.
func azimuth(rad float64) angle.Angle {
	d := math.Mod(rad*180/math.Pi, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return angle.New(d)
}

// reverse turns a forward azimuth at the far point into the azimuth
// back to the start.
func reverse(rad float64) angle.Angle {
	return azimuth(rad + math.Pi)
}

// reducedLatitude returns the parametric latitude of a geodetic one.
func reducedLatitude(f, lat float64) float64 {
	s, c := math.Sincos(lat)
	return math.Atan2((1-f)*s, c)
}

// geodeticLatitude inverts reducedLatitude.
func geodeticLatitude(f, sinU, cosU float64) float64 {
	return math.Atan2(sinU, (1-f)*cosU)
}

func checkPoint(g coord.Geographic) error {
	lat := g.Lat.Degrees()
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("%w: %v", geodesy.ErrLatitudeRange, lat)
	}
	if lon := g.Lon.Degrees(); math.IsNaN(lon) || math.IsInf(lon, 0) {
		return fmt.Errorf("%w: %v", geodesy.ErrLongitudeRange, lon)
	}
	return nil
}

func checkDirect(p1 coord.Geographic, az1 angle.Angle, dist float64) error {
	if err := checkPoint(p1); err != nil {
		return err
	}
	if !az1.IsSet() || math.IsInf(az1.Degrees(), 0) {
		return &geodesy.RangeError{Field: "azimuth", Value: az1.Degrees(), Reason: "must be finite"}
	}
	if math.IsNaN(dist) || math.IsInf(dist, 0) {
		return &geodesy.RangeError{Field: "distance", Value: dist, Reason: "must be finite"}
	}
	return nil
}

// endpoint builds the far point with its longitude wrapped to
// (-180, 180].
func endpoint(lat, lon float64) coord.Geographic {
	lon = math.Remainder(lon, 2*math.Pi)
	if lon <= -math.Pi {
		lon += 2 * math.Pi
	}
	return coord.LatLon(lat*180/math.Pi, lon*180/math.Pi)
}

func errNotConverged(op string, n int) error {
	return &geodesy.ConvergenceError{Op: op, Iterations: n}
}
