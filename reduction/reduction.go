// Package reduction reduces terrestrial observations to the reference
// ellipsoid: horizontal directions observed with a plumb-line
// instrument and slope distances measured between stations.
package reduction

import (
	"fmt"
	"math"

	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/angle"
	"github.com/tzneal/geodesy/coord"
	"github.com/tzneal/geodesy/ellipsoid"
	"github.com/tzneal/geodesy/geodesic"
	"github.com/tzneal/geodesy/geoid"
)

// DeflectionCorrection returns the correction to a horizontal direction
// for the deflection of the vertical at the station, with components xi
// (north) and eta (east), towards a target at azimuth az and zenith
// distance zenith.
func DeflectionCorrection(xi, eta, az, zenith angle.Angle) angle.Angle {
	sinA, cosA := math.Sincos(az.Radians())
	cot := math.Cos(zenith.Radians()) / math.Sin(zenith.Radians())
	return angle.New(-(xi.Degrees()*sinA - eta.Degrees()*cosA) * cot)
}

// HeightCorrection returns the correction for the height h2 of the
// target above the ellipsoid: the normal at the target is skew to the
// normal section from the station at latitude lat.
func HeightCorrection(e ellipsoid.Ellipsoid, lat, az angle.Angle, h2 float64) angle.Angle {
	cosB := math.Cos(lat.Radians())
	rad := e.EP2() * h2 * cosB * cosB * math.Sin(2*az.Radians()) / (2 * e.N(lat.Radians()))
	return angle.FromRadians(rad)
}

// GeodesicCorrection returns the angle between the normal section and
// the geodesic of length s leaving latitude lat at azimuth az.
func GeodesicCorrection(e ellipsoid.Ellipsoid, lat, az angle.Angle, s float64) angle.Angle {
	cosB := math.Cos(lat.Radians())
	n := e.N(lat.Radians())
	rad := -e.EP2() * s * s * cosB * cosB * math.Sin(2*az.Radians()) / (12 * n * n)
	return angle.FromRadians(rad)
}

// Observation is a horizontal direction measured at Station towards
// Target. Xi and Eta are the deflection of the vertical at the station
// and Zenith the observed zenith distance. The deflection correction is
// skipped when any of them is unset or Zenith is zero.
type Observation struct {
	Station   coord.Geodetic
	Target    coord.Geodetic
	Direction angle.Angle
	Xi, Eta   angle.Angle
	Zenith    angle.Angle
}

// Reduced is a direction reduced to the ellipsoid together with the
// corrections applied.
type Reduced struct {
	Direction  angle.Angle
	Deflection angle.Angle
	Height     angle.Angle
	Geodesic   angle.Angle
	Azimuth    angle.Angle // geodetic azimuth station to target
	Distance   float64     // geodesic length in meters
}

// Total returns the sum of the corrections.
func (r Reduced) Total() angle.Angle {
	return r.Deflection.Add(r.Height).Add(r.Geodesic)
}

func (r Reduced) String() string {
	return fmt.Sprintf("%s (deflection %.4f\", height %.4f\", geodesic %.4f\")",
		r.Direction, r.Deflection.Seconds(), r.Height.Seconds(), r.Geodesic.Seconds())
}

// ReduceDirection applies the deflection, target height and geodesic
// corrections to o.Direction. The azimuth and distance between the
// stations come from solver.
func ReduceDirection(e ellipsoid.Ellipsoid, solver geodesic.Solver, o Observation) (Reduced, error) {
	if !o.Direction.IsSet() {
		return Reduced{}, &geodesy.MissingParameterError{Key: "direction"}
	}
	inv, err := solver.Inverse(o.Station.Geographic, o.Target.Geographic)
	if err != nil {
		return Reduced{}, fmt.Errorf("reducing direction: %w", err)
	}
	r := Reduced{
		Deflection: angle.New(0),
		Height:     HeightCorrection(e, o.Station.Lat, inv.Azimuth, o.Target.H),
		Geodesic:   GeodesicCorrection(e, o.Station.Lat, inv.Azimuth, inv.Distance),
		Azimuth:    inv.Azimuth,
		Distance:   inv.Distance,
	}
	if o.Xi.IsSet() && o.Eta.IsSet() && o.Zenith.IsSet() && o.Zenith.Degrees() != 0 {
		r.Deflection = DeflectionCorrection(o.Xi, o.Eta, inv.Azimuth, o.Zenith)
	}
	r.Direction = o.Direction.Add(r.Total())
	return r, nil
}

// SlopeToEllipsoid reduces a slope distance between stations at
// ellipsoidal heights h1 and h2 to the length of the ellipsoid arc,
// using the radius of curvature at lat in direction az.
func SlopeToEllipsoid(e ellipsoid.Ellipsoid, lat, az angle.Angle, slope, h1, h2 float64) (float64, error) {
	dh := h2 - h1
	if math.IsNaN(slope) || math.IsInf(slope, 0) || slope < math.Abs(dh) {
		return 0, &geodesy.RangeError{Field: "slope distance", Value: slope, Reason: "shorter than the height difference"}
	}
	r := e.DirectionalRadius(lat.Radians(), az.Radians())
	if 1+h1/r <= 0 || 1+h2/r <= 0 {
		return 0, &geodesy.RangeError{Field: "height", Value: math.Min(h1, h2), Reason: "below the centre of curvature"}
	}
	chord := math.Sqrt((slope*slope - dh*dh) / ((1 + h1/r) * (1 + h2/r)))
	if chord > 2*r {
		return 0, &geodesy.RangeError{Field: "slope distance", Value: slope, Reason: "longer than the diameter of curvature"}
	}
	return 2 * r * math.Asin(chord/(2*r)), nil
}

// EllipsoidalHeight converts an orthometric height H to an ellipsoidal
// height by adding the geoid undulation of m at lat, lon (degrees).
func EllipsoidalHeight(m geoid.Model, lat, lon, H float64) (float64, error) {
	n, err := m.Height(lat, lon)
	if err != nil {
		return 0, err
	}
	return H + n, nil
}

// OrthometricHeight is the inverse of EllipsoidalHeight.
func OrthometricHeight(m geoid.Model, lat, lon, h float64) (float64, error) {
	n, err := m.Height(lat, lon)
	if err != nil {
		return 0, err
	}
	return h - n, nil
}
