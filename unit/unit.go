// Package unit defines the linear and angular units accepted by the
// coordinate and angle types. A unit is an enumerated identifier with a
// conversion factor to its base unit (meter or radian).
package unit

import (
	"fmt"
	"math"
	"strings"

	"github.com/golang/geo/s1"
	"github.com/tzneal/geodesy"
)

// Linear is a unit of length.
type Linear int

// Linear units.
const (
	Meter Linear = iota
	Kilometer
	Centimeter
	Millimeter
	Foot
	USSurveyFoot
	Mile
	NauticalMile
)

type linearDef struct {
	symbol string
	meters float64
}

var linearDefs = [...]linearDef{
	Meter:        {"m", 1},
	Kilometer:    {"km", 1000},
	Centimeter:   {"cm", 0.01},
	Millimeter:   {"mm", 0.001},
	Foot:         {"ft", 0.3048},
	USSurveyFoot: {"ftUS", 1200.0 / 3937.0},
	Mile:         {"mi", 1609.344},
	NauticalMile: {"nmi", 1852},
}

// Factor returns the number of meters in one u.
func (u Linear) Factor() float64 {
	if u < 0 || int(u) >= len(linearDefs) {
		return math.NaN()
	}
	return linearDefs[u].meters
}

// Convert converts v expressed in u to the unit to.
func (u Linear) Convert(v float64, to Linear) float64 {
	if u == to {
		return v
	}
	return v * u.Factor() / to.Factor()
}

// ToBase converts v expressed in u to meters.
func (u Linear) ToBase(v float64) float64 { return v * u.Factor() }

// FromBase converts v meters to u.
func (u Linear) FromBase(v float64) float64 { return v / u.Factor() }

func (u Linear) String() string {
	if u < 0 || int(u) >= len(linearDefs) {
		return fmt.Sprintf("Linear(%d)", int(u))
	}
	return linearDefs[u].symbol
}

// ParseLinear looks up a linear unit by symbol, case-insensitively.
func ParseLinear(s string) (Linear, error) {
	for i, d := range linearDefs {
		if strings.EqualFold(d.symbol, s) {
			return Linear(i), nil
		}
	}
	return 0, fmt.Errorf("unknown linear unit %q: %w", s, geodesy.ErrInvalidInput)
}

// Angular is a unit of plane angle.
type Angular int

// Angular units.
const (
	Radian Angular = iota
	Degree
	ArcMinute
	ArcSecond
	Gon
)

type angularDef struct {
	symbol  string
	radians float64
}

var angularDefs = [...]angularDef{
	Radian:    {"rad", float64(s1.Radian)},
	Degree:    {"deg", float64(s1.Degree)},
	ArcMinute: {"min", float64(s1.Degree) / 60},
	ArcSecond: {"sec", float64(s1.Degree) / 3600},
	Gon:       {"gon", math.Pi / 200},
}

// Factor returns the number of radians in one u.
func (u Angular) Factor() float64 {
	if u < 0 || int(u) >= len(angularDefs) {
		return math.NaN()
	}
	return angularDefs[u].radians
}

// Convert converts v expressed in u to the unit to.
func (u Angular) Convert(v float64, to Angular) float64 {
	if u == to {
		return v
	}
	return v * u.Factor() / to.Factor()
}

// ToBase converts v expressed in u to radians.
func (u Angular) ToBase(v float64) float64 { return v * u.Factor() }

// FromBase converts v radians to u.
func (u Angular) FromBase(v float64) float64 { return v / u.Factor() }

func (u Angular) String() string {
	if u < 0 || int(u) >= len(angularDefs) {
		return fmt.Sprintf("Angular(%d)", int(u))
	}
	return angularDefs[u].symbol
}

// ParseAngular looks up an angular unit by symbol, case-insensitively.
func ParseAngular(s string) (Angular, error) {
	for i, d := range angularDefs {
		if strings.EqualFold(d.symbol, s) {
			return Angular(i), nil
		}
	}
	return 0, fmt.Errorf("unknown angular unit %q: %w", s, geodesy.ErrInvalidInput)
}

// ArcSecondsPerRadian is the number of arc seconds in one radian.
var ArcSecondsPerRadian = 1 / ArcSecond.Factor()
