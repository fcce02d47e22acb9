// Package angle provides the Angle value type used for latitudes,
// longitudes, azimuths and other plane angles.
//
// An Angle stores its value in decimal degrees no matter which unit or
// encoding it was built from. A Kind tag selects the normalisation rule:
// plain angles wrap to [0, 360), latitudes are limited to the principal
// half range [-90, 90] and longitudes fold to (-180, 180].
package angle

import (
	"fmt"
	"math"

	"github.com/golang/geo/s1"
	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/unit"
)

// Epsilon is the tolerance, in degrees, used by Equal.
const Epsilon = 1e-10

// Kind selects the normalisation rule of an Angle.
type Kind uint8

// Angle kinds.
const (
	KindPlain Kind = iota
	KindLatitude
	KindLongitude
)

func (k Kind) String() string {
	switch k {
	case KindLatitude:
		return "latitude"
	case KindLongitude:
		return "longitude"
	}
	return "plain"
}

// Angle is a plane angle held in decimal degrees. The zero value is a
// plain angle of 0°; NaN marks an unset angle.
type Angle struct {
	deg  float64
	kind Kind
}

// New returns a plain angle of deg degrees.
func New(deg float64) Angle { return Angle{deg: deg} }

// Lat returns a latitude of deg degrees without normalising it.
func Lat(deg float64) Angle { return Angle{deg: deg, kind: KindLatitude} }

// Lng returns a longitude of deg degrees without normalising it.
func Lng(deg float64) Angle { return Angle{deg: deg, kind: KindLongitude} }

// NewLatitude returns the normalised latitude for deg, failing when deg
// does not describe a latitude.
func NewLatitude(deg float64) (Angle, error) { return Lat(deg).Normalize() }

// NewLongitude returns the normalised longitude for deg.
func NewLongitude(deg float64) (Angle, error) { return Lng(deg).Normalize() }

// Unset returns an angle with no value.
func Unset() Angle { return Angle{deg: math.NaN()} }

// FromRadians returns a plain angle of rad radians.
func FromRadians(rad float64) Angle { return Angle{deg: rad * 180 / math.Pi} }

// FromS1 converts an s1.Angle to a plain angle.
func FromS1(a s1.Angle) Angle { return Angle{deg: a.Degrees()} }

// FromUnit returns a plain angle of v expressed in u.
func FromUnit(v float64, u unit.Angular) Angle {
	return Angle{deg: u.Convert(v, unit.Degree)}
}

// FromDMS builds a plain angle from degree, minute and second parts.
//
// At most one part may be negative and the sign applies to the whole
// angle. With a non-zero degree part, minutes and seconds must lie in
// [0, 60). With a zero degree part and a non-zero minute part, |min| may
// reach 60 and seconds must lie in [0, 60). With only seconds, |sec| must
// be below 60.
func FromDMS(d, m, s float64) (Angle, error) {
	neg := 0
	for _, v := range []float64{d, m, s} {
		if v < 0 {
			neg++
		}
	}
	if neg > 1 {
		return Angle{}, &geodesy.RangeError{Field: "dms", Value: d, Reason: "only one part may be negative"}
	}
	switch {
	case d != 0:
		if m < 0 || m >= 60 {
			return Angle{}, &geodesy.RangeError{Field: "minute", Value: m, Reason: "must be in [0, 60)"}
		}
		if s < 0 || s >= 60 {
			return Angle{}, &geodesy.RangeError{Field: "second", Value: s, Reason: "must be in [0, 60)"}
		}
	case m != 0:
		if math.Abs(m) > 60 {
			return Angle{}, &geodesy.RangeError{Field: "minute", Value: m, Reason: "must be in [-60, 60]"}
		}
		if s < 0 || s >= 60 {
			return Angle{}, &geodesy.RangeError{Field: "second", Value: s, Reason: "must be in [0, 60)"}
		}
	default:
		if math.Abs(s) >= 60 {
			return Angle{}, &geodesy.RangeError{Field: "second", Value: s, Reason: "must be in (-60, 60)"}
		}
	}
	v := math.Abs(d) + math.Abs(m)/60 + math.Abs(s)/3600
	if neg == 1 {
		v = -v
	}
	return Angle{deg: v}, nil
}

// FromStyle decodes v written in the given style into a plain angle.
func FromStyle(v float64, style Style) (Angle, error) {
	return Angle{}.SetValue(v, style)
}

// Kind returns the normalisation rule of a.
func (a Angle) Kind() Kind { return a.kind }

// WithKind returns a copy of a tagged with k.
func (a Angle) WithKind(k Kind) Angle { return Angle{deg: a.deg, kind: k} }

// IsSet reports whether a carries a value.
func (a Angle) IsSet() bool { return !math.IsNaN(a.deg) }

// Degrees returns the value in decimal degrees.
func (a Angle) Degrees() float64 { return a.deg }

// Minutes returns the value in decimal arc minutes.
func (a Angle) Minutes() float64 { return a.deg * 60 }

// Seconds returns the value in decimal arc seconds.
func (a Angle) Seconds() float64 { return a.deg * 3600 }

// Radians returns the value in radians.
func (a Angle) Radians() float64 { return a.deg * math.Pi / 180 }

// S1 converts a to an s1.Angle.
func (a Angle) S1() s1.Angle { return s1.Angle(a.Radians()) }

// In returns the value expressed in u.
func (a Angle) In(u unit.Angular) float64 { return unit.Degree.Convert(a.deg, u) }

// Sin returns the sine of a.
func (a Angle) Sin() float64 { return math.Sin(a.Radians()) }

// Cos returns the cosine of a.
func (a Angle) Cos() float64 { return math.Cos(a.Radians()) }

// Tan returns the tangent of a.
func (a Angle) Tan() float64 { return math.Tan(a.Radians()) }

// Equal reports whether a and b differ by less than Epsilon degrees.
func (a Angle) Equal(b Angle) bool { return math.Abs(a.deg-b.deg) < Epsilon }

// Add returns the plain angle a+b.
func (a Angle) Add(b Angle) Angle { return Angle{deg: a.deg + b.deg} }

// Sub returns the plain angle a-b.
func (a Angle) Sub(b Angle) Angle { return Angle{deg: a.deg - b.deg} }

// Mul returns the plain angle a*k.
func (a Angle) Mul(k float64) Angle { return Angle{deg: a.deg * k} }

// Div returns the plain angle a/k.
func (a Angle) Div(k float64) Angle { return Angle{deg: a.deg / k} }

// Neg returns -a with the same kind.
func (a Angle) Neg() Angle { return Angle{deg: -a.deg, kind: a.kind} }

// Difference returns a-b as a plain angle, adding 360° when a is
// negative. This is the quadrant rule used when subtracting latitudes or
// longitudes and is not the same as Sub.
func Difference(a, b Angle) Angle {
	d := a.deg - b.deg
	if a.deg < 0 {
		d += 360
	}
	return Angle{deg: d}
}

// wrap returns deg reduced to [0, 360).
func wrap(deg float64) float64 {
	w := math.Mod(deg, 360)
	if w < 0 {
		w += 360
	}
	if w >= 360 {
		w = 0
	}
	return w
}

// Normalize applies the rule selected by the kind of a.
//
// Plain angles wrap to [0, 360). Latitudes wrap first and fail when the
// result falls strictly inside (90, 270); values in [270, 360) fold to
// [-90, 0). Longitudes wrap and fold (180, 360) to (-180, 0) and never
// fail.
func (a Angle) Normalize() (Angle, error) {
	if !a.IsSet() {
		return a, &geodesy.RangeError{Field: a.kind.String(), Value: a.deg, Reason: "unset"}
	}
	w := wrap(a.deg)
	switch a.kind {
	case KindLatitude:
		if w > 90 && w < 270 {
			return a, fmt.Errorf("%w: %v", geodesy.ErrLatitudeRange, a.deg)
		}
		if w >= 270 {
			w -= 360
		}
	case KindLongitude:
		if w > 180 {
			w -= 360
		}
	}
	return Angle{deg: w, kind: a.kind}, nil
}

// DMS splits a into sign, degrees, minutes and seconds. Seconds within
// carryEpsilon of 60 carry into the minutes, and 60 minutes carry into
// the degrees.
func (a Angle) DMS() (neg bool, d, m int, s float64) {
	v := a.deg
	if v < 0 {
		neg = true
		v = -v
	}
	fd := math.Floor(v)
	mf := (v - fd) * 60
	fm := math.Floor(mf)
	s = (mf - fm) * 60
	if 60-s < carryEpsilon {
		s = 0
		fm++
	}
	if fm >= 60 {
		fm -= 60
		fd++
	}
	return neg, int(fd), int(fm), s
}

// carryEpsilon is the distance from 60, in seconds, below which a seconds
// value is treated as a full minute.
const carryEpsilon = 5e-5

// ToDMS packs a as DDDMMSS.ssss with the sign applied to the whole value.
func (a Angle) ToDMS() float64 {
	neg, d, m, s := a.DMS()
	v := float64(d)*10000 + float64(m)*100 + s
	if neg {
		v = -v
	}
	return v
}

// ToDM packs a as DDDMM.mmmm with the sign applied to the whole value.
func (a Angle) ToDM() float64 {
	v := a.deg
	neg := v < 0
	if neg {
		v = -v
	}
	d := math.Floor(v)
	m := (v - d) * 60
	if 60-m < carryEpsilon/60 {
		m = 0
		d++
	}
	p := d*100 + m
	if neg {
		p = -p
	}
	return p
}

// Value returns a encoded in style.
func (a Angle) Value(style Style) float64 {
	switch style {
	case Minutes:
		return a.Minutes()
	case Seconds:
		return a.Seconds()
	case Radians:
		return a.Radians()
	case PackedDM:
		return a.ToDM()
	case PackedDMS:
		return a.ToDMS()
	}
	return a.deg
}

// SetValue returns an angle of the same kind as a holding v decoded from
// style. Packed encodings are peeled apart by floor division and fail
// when the minute or second field reaches 60.
func (a Angle) SetValue(v float64, style Style) (Angle, error) {
	out := Angle{kind: a.kind}
	switch style {
	case Degrees:
		out.deg = v
	case Minutes:
		out.deg = v / 60
	case Seconds:
		out.deg = v / 3600
	case Radians:
		out.deg = v * 180 / math.Pi
	case PackedDM:
		av := math.Abs(v)
		d := math.Floor(av / 100)
		m := av - d*100
		if m >= 60 {
			return a, &geodesy.RangeError{Field: "minute", Value: m, Reason: "must be < 60"}
		}
		out.deg = d + m/60
		if v < 0 {
			out.deg = -out.deg
		}
	case PackedDMS:
		av := math.Abs(v)
		d := math.Floor(av / 10000)
		rest := av - d*10000
		m := math.Floor(rest / 100)
		s := rest - m*100
		if m >= 60 {
			return a, &geodesy.RangeError{Field: "minute", Value: m, Reason: "must be < 60"}
		}
		if s >= 60 {
			return a, &geodesy.RangeError{Field: "second", Value: s, Reason: "must be < 60"}
		}
		out.deg = d + m/60 + s/3600
		if v < 0 {
			out.deg = -out.deg
		}
	default:
		return a, fmt.Errorf("unknown angle style %d: %w", style, geodesy.ErrInvalidInput)
	}
	return out, nil
}

// String formats a as signed degrees, minutes and seconds.
func (a Angle) String() string {
	if !a.IsSet() {
		return "unset"
	}
	neg, d, m, s := a.DMS()
	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s%d°%02d'%07.4f\"", sign, d, m, s)
}
