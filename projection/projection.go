// Package projection converts between geographic coordinates on an
// ellipsoid and plane grid coordinates.
//
// Every projection implements Projection. Constructors validate their
// Parameters up front: a missing required parameter yields an error
// wrapping geodesy.ErrMissingParameter that names the key, and optional
// parameters fall back to documented defaults (central meridian 0°,
// false easting and northing 0, scale factor 1).
package projection

import (
	"fmt"
	"math"

	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/coord"
	"github.com/tzneal/geodesy/ellipsoid"
)

// Projection maps geographic positions to a plane and back.
type Projection interface {
	// Forward projects a geographic position to grid coordinates.
	Forward(g coord.Geographic) (coord.Projected, error)
	// Reverse recovers the geographic position of grid coordinates.
	Reverse(p coord.Projected) (coord.Geographic, error)
}

// ParamKey names a projection parameter.
type ParamKey int

// Projection parameter keys.
const (
	SemiMajor ParamKey = iota
	InverseFlattening
	CentralMeridian
	LatitudeOfOrigin
	StandardParallel1
	StandardParallel2
	FalseEasting
	FalseNorthing
	ScaleFactor
	Azimuth
	RectifiedGridAngle
	ZoneWidth
)

var paramNames = [...]string{
	SemiMajor:          "semi_major",
	InverseFlattening:  "inverse_flattening",
	CentralMeridian:    "central_meridian",
	LatitudeOfOrigin:   "latitude_of_origin",
	StandardParallel1:  "standard_parallel_1",
	StandardParallel2:  "standard_parallel_2",
	FalseEasting:       "false_easting",
	FalseNorthing:      "false_northing",
	ScaleFactor:        "scale_factor",
	Azimuth:            "azimuth",
	RectifiedGridAngle: "rectified_grid_angle",
	ZoneWidth:          "zone_width",
}

func (k ParamKey) String() string {
	if k >= 0 && int(k) < len(paramNames) {
		return paramNames[k]
	}
	return fmt.Sprintf("ParamKey(%d)", int(k))
}

// ParseParamKey returns the key with the given name.
func ParseParamKey(name string) (ParamKey, error) {
	for i, n := range paramNames {
		if n == name {
			return ParamKey(i), nil
		}
	}
	return 0, fmt.Errorf("unknown projection parameter %q: %w", name, geodesy.ErrInvalidInput)
}

// Param is an optional parameter value.
type Param struct {
	v  float64
	ok bool
}

// P returns a set parameter value.
func P(v float64) Param { return Param{v: v, ok: true} }

// IsSet reports whether the parameter was given.
func (p Param) IsSet() bool { return p.ok }

// Value returns the parameter value, or zero when unset.
func (p Param) Value() float64 { return p.v }

// Parameters configures a projection. Angles are in decimal degrees and
// lengths in meters. The ellipsoid is passed to constructors separately.
type Parameters struct {
	CentralMeridian    Param
	LatitudeOfOrigin   Param
	StandardParallel1  Param
	StandardParallel2  Param
	FalseEasting       Param
	FalseNorthing      Param
	ScaleFactor        Param
	Azimuth            Param
	RectifiedGridAngle Param
	ZoneWidth          Param
}

func (p *Parameters) field(k ParamKey) *Param {
	switch k {
	case CentralMeridian:
		return &p.CentralMeridian
	case LatitudeOfOrigin:
		return &p.LatitudeOfOrigin
	case StandardParallel1:
		return &p.StandardParallel1
	case StandardParallel2:
		return &p.StandardParallel2
	case FalseEasting:
		return &p.FalseEasting
	case FalseNorthing:
		return &p.FalseNorthing
	case ScaleFactor:
		return &p.ScaleFactor
	case Azimuth:
		return &p.Azimuth
	case RectifiedGridAngle:
		return &p.RectifiedGridAngle
	case ZoneWidth:
		return &p.ZoneWidth
	}
	return nil
}

// Set assigns a parameter. The ellipsoid keys are ignored.
func (p *Parameters) Set(k ParamKey, v float64) {
	if f := p.field(k); f != nil {
		*f = P(v)
	}
}

// Get returns a parameter and whether it was set.
func (p Parameters) Get(k ParamKey) (float64, bool) {
	if f := p.field(k); f != nil && f.ok {
		return f.v, true
	}
	return 0, false
}

// Require returns a parameter or an error naming the missing key.
func (p Parameters) Require(k ParamKey) (float64, error) {
	if v, ok := p.Get(k); ok {
		return v, nil
	}
	return 0, &geodesy.MissingParameterError{Key: k.String()}
}

// ParametersFromMap builds Parameters from a key/value mapping. The
// ellipsoid keys are ignored.
func ParametersFromMap(m map[ParamKey]float64) Parameters {
	var p Parameters
	for k, v := range m {
		p.Set(k, v)
	}
	return p
}

// Map returns the set parameters together with the ellipsoid's axis and
// inverse flattening.
func (p Parameters) Map(e ellipsoid.Ellipsoid) map[ParamKey]float64 {
	return p.dict(e)
}

// paramDict is the key/value view of a projection's configuration.
type paramDict map[ParamKey]float64

func (p Parameters) dict(e ellipsoid.Ellipsoid) paramDict {
	d := paramDict{SemiMajor: e.A(), InverseFlattening: e.InvF()}
	for k := CentralMeridian; k <= ZoneWidth; k++ {
		if f := p.field(k); f.ok {
			d[k] = f.v
		}
	}
	return d
}

func (d paramDict) require(k ParamKey) (float64, error) {
	v, ok := d[k]
	if !ok {
		return 0, &geodesy.MissingParameterError{Key: k.String()}
	}
	return v, nil
}

func (d paramDict) get(k ParamKey, def float64) float64 {
	if v, ok := d[k]; ok {
		return v
	}
	return def
}

func (d paramDict) radians(k ParamKey, def float64) float64 {
	return d.get(k, def) * math.Pi / 180
}

const deg = math.Pi / 180

// normalizeLon wraps a longitude difference in radians to (-π, π].
func normalizeLon(l float64) float64 {
	for l > math.Pi {
		l -= 2 * math.Pi
	}
	for l <= -math.Pi {
		l += 2 * math.Pi
	}
	return l
}

func checkLatitude(lat float64) error {
	if math.IsNaN(lat) || lat < -math.Pi/2 || lat > math.Pi/2 {
		return fmt.Errorf("%w: %v", geodesy.ErrLatitudeRange, lat/deg)
	}
	return nil
}

// geographic builds the result of a reverse projection from radians.
func geographic(lat, lon float64) coord.Geographic {
	return coord.LatLon(lat/deg, normalizeLon(lon)/deg)
}

func validCentralMeridian(lon0 float64) error {
	if lon0 < -math.Pi || lon0 > 2*math.Pi {
		return &geodesy.RangeError{Field: CentralMeridian.String(), Value: lon0 / deg, Reason: "must be in [-180, 360]"}
	}
	return nil
}

// isometricT returns Snyder's t = tan(π/4 - φ/2) / ((1 - e·sinφ)/(1 + e·sinφ))^(e/2).
func isometricT(e, lat float64) float64 {
	es := e * math.Sin(lat)
	return math.Tan(math.Pi/4-lat/2) / math.Pow((1-es)/(1+es), e/2)
}

// conformalM returns Snyder's m = cosφ / sqrt(1 - e²·sin²φ).
func conformalM(e2, lat float64) float64 {
	s := math.Sin(lat)
	return math.Cos(lat) / math.Sqrt(1-e2*s*s)
}

const (
	phi2Tolerance     = 1e-12
	maxPhi2Iterations = 100
)

// phi2 inverts isometricT by fixed-point iteration.
func phi2(op string, e, t float64) (float64, error) {
	halfE := e / 2
	phi := math.Pi/2 - 2*math.Atan(t)
	for i := 0; i < maxPhi2Iterations; i++ {
		es := e * math.Sin(phi)
		next := math.Pi/2 - 2*math.Atan(t*math.Pow((1-es)/(1+es), halfE))
		if math.Abs(next-phi) < phi2Tolerance {
			return next, nil
		}
		phi = next
	}
	return 0, &geodesy.ConvergenceError{Op: op, Iterations: maxPhi2Iterations}
}
