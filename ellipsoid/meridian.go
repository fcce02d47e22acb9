package ellipsoid

import (
	"math"

	"github.com/tzneal/geodesy"
)

// arcSeries holds the coefficients of the meridian arc expansion in
// powers of e² up to e¹⁰.
type arcSeries struct {
	a0, a2, a4, a6, a8, a10 float64
}

func newArcSeries(a, e2 float64) arcSeries {
	m0 := a * (1 - e2)
	m2 := 3.0 / 2 * e2 * m0
	m4 := 5.0 / 4 * e2 * m2
	m6 := 7.0 / 6 * e2 * m4
	m8 := 9.0 / 8 * e2 * m6
	m10 := 11.0 / 10 * e2 * m8
	return arcSeries{
		a0:  m0 + m2/2 + 3.0/8*m4 + 5.0/16*m6 + 35.0/128*m8 + 63.0/256*m10,
		a2:  m2/2 + m4/2 + 15.0/32*m6 + 7.0/16*m8 + 105.0/256*m10,
		a4:  m4/8 + 3.0/16*m6 + 7.0/32*m8 + 15.0/64*m10,
		a6:  m6/32 + m8/16 + 45.0/512*m10,
		a8:  m8/128 + 5.0/256*m10,
		a10: m10 / 512,
	}
}

// periodic returns the non-secular part of the arc length at lat.
func (s arcSeries) periodic(lat float64) float64 {
	return -s.a2/2*math.Sin(2*lat) +
		s.a4/4*math.Sin(4*lat) -
		s.a6/6*math.Sin(6*lat) +
		s.a8/8*math.Sin(8*lat) -
		s.a10/10*math.Sin(10*lat)
}

// MeridianArc returns the length of the meridian from the equator to lat
// (radians). The result is negative south of the equator.
func (e Ellipsoid) MeridianArc(lat float64) float64 {
	return e.arc.a0*lat + e.arc.periodic(lat)
}

// MeridianQuadrant returns the length of the meridian from the equator
// to a pole.
func (e Ellipsoid) MeridianQuadrant() float64 {
	return e.arc.a0 * math.Pi / 2
}

// FootpointTolerance is the convergence threshold of FootpointLatitude:
// 1e-6 arc seconds expressed in radians.
const FootpointTolerance = 1e-6 / 3600 * math.Pi / 180

const maxFootpointIterations = 100

// FootpointLatitude returns the latitude whose meridian arc equals arc,
// by fixed-point iteration on the arc series.
func (e Ellipsoid) FootpointLatitude(arc float64) (float64, error) {
	lat := arc / e.arc.a0
	for i := 0; i < maxFootpointIterations; i++ {
		next := (arc - e.arc.periodic(lat)) / e.arc.a0
		if math.Abs(next-lat) < FootpointTolerance {
			return next, nil
		}
		lat = next
	}
	return 0, &geodesy.ConvergenceError{Op: "footpoint latitude", Iterations: maxFootpointIterations}
}
