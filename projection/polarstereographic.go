package projection

import (
	"fmt"
	"math"

	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/coord"
	"github.com/tzneal/geodesy/ellipsoid"
)

// PolarStereographic is the polar stereographic projection, defined
// either by a standard parallel or by the scale factor at the pole.
// Southern-hemisphere projections are computed by mirroring onto the
// northern one.
type PolarStereographic struct {
	e     ellipsoid.Ellipsoid
	ecc   float64
	south bool

	stdParallel float64 // absolute latitude of true scale, radians
	lon0        float64 // mirrored for the southern hemisphere
	fe, fn      float64
	k0          float64

	k90 float64
	tc  float64 // t at the standard parallel
	amc float64 // a·m at the standard parallel

	// half-extent of the valid easting and northing range
	delta float64
}

const maxPolarScaleFactor = 3.0

// NewPolarStereographic constructs a polar stereographic projection.
// LatitudeOfOrigin is required; its sign selects the hemisphere. When
// ScaleFactor is set the projection is defined by the scale at the pole
// and LatitudeOfOrigin only selects the hemisphere, otherwise
// LatitudeOfOrigin is the standard parallel.
func NewPolarStereographic(e ellipsoid.Ellipsoid, p Parameters) (*PolarStereographic, error) {
	d := p.dict(e)
	lat0, err := d.require(LatitudeOfOrigin)
	if err != nil {
		return nil, err
	}
	lon0 := d.radians(CentralMeridian, 0)
	fe, fn := d.get(FalseEasting, 0), d.get(FalseNorthing, 0)
	if k, ok := d[ScaleFactor]; ok {
		h := North
		if lat0 < 0 {
			h = South
		}
		return newPolarScaleFactor(e, lon0, k, h, fe, fn)
	}
	return newPolarStandardParallel(e, lon0, lat0*deg, fe, fn)
}

func newPolarStandardParallel(e ellipsoid.Ellipsoid, lon0, lat0, fe, fn float64) (*PolarStereographic, error) {
	if err := checkLatitude(lat0); err != nil {
		return nil, err
	}
	if err := validCentralMeridian(lon0); err != nil {
		return nil, err
	}
	ps := &PolarStereographic{e: e, ecc: e.E(), fe: fe, fn: fn}
	ps.k90 = polarK90(ps.ecc)
	ps.setOrigin(lon0, lat0)

	slat := math.Sin(ps.stdParallel)
	ps.k0 = (1 + slat) / 2 * ps.k90 / math.Sqrt(
		math.Pow(1+ps.ecc*slat, 1+ps.ecc)*math.Pow(1-ps.ecc*slat, 1-ps.ecc))
	return ps, ps.computeExtent(lon0)
}

const (
	polarScaleTolerance     = 1e-15
	maxPolarScaleIterations = 30
)

func newPolarScaleFactor(e ellipsoid.Ellipsoid, lon0, k0 float64, h Hemisphere, fe, fn float64) (*PolarStereographic, error) {
	if k0 < minScaleFactor || k0 > maxPolarScaleFactor {
		return nil, &geodesy.RangeError{Field: ScaleFactor.String(), Value: k0, Reason: "must be in [0.1, 3]"}
	}
	if err := validCentralMeridian(lon0); err != nil {
		return nil, err
	}
	if h != North && h != South {
		return nil, fmt.Errorf("hemisphere %v: %w", h, geodesy.ErrInvalidInput)
	}
	ps := &PolarStereographic{e: e, ecc: e.E(), fe: fe, fn: fn, k0: k0}
	ps.k90 = polarK90(ps.ecc)

	// Solve for the sine of the latitude of true scale.
	ecc := ps.ecc
	sk, next := 0.0, 2*k0-1
	i := 0
	for ; math.Abs(next-sk) > polarScaleTolerance && i < maxPolarScaleIterations; i++ {
		sk = next
		next = 2*k0*math.Sqrt(math.Pow(1+ecc*sk, 1+ecc)*math.Pow(1-ecc*sk, 1-ecc))/ps.k90 - 1
	}
	if i == maxPolarScaleIterations {
		return nil, &geodesy.ConvergenceError{Op: "polar stereographic standard parallel", Iterations: i}
	}
	if next < -1 || next > 1 {
		return nil, &geodesy.RangeError{Field: ScaleFactor.String(), Value: k0, Reason: "no latitude of true scale"}
	}
	lat0 := math.Asin(next)
	if h == South {
		lat0 = -lat0
	}
	ps.setOrigin(lon0, lat0)
	return ps, ps.computeExtent(lon0)
}

func polarK90(ecc float64) float64 {
	return math.Sqrt(math.Pow(1+ecc, 1+ecc) * math.Pow(1-ecc, 1-ecc))
}

func (ps *PolarStereographic) setOrigin(lon0, lat0 float64) {
	if lon0 > math.Pi {
		lon0 -= 2 * math.Pi
	}
	ps.south = lat0 < 0
	ps.stdParallel = math.Abs(lat0)
	ps.lon0 = lon0
	if ps.south {
		ps.lon0 = -lon0
	}
	if !ps.trueScaleAtPole() {
		ps.amc = ps.e.A() * conformalM(ps.e.E2(), ps.stdParallel)
		ps.tc = isometricT(ps.ecc, ps.stdParallel)
	}
}

func (ps *PolarStereographic) trueScaleAtPole() bool {
	return math.Abs(ps.stdParallel-math.Pi/2) <= 1e-10
}

// computeExtent sizes the valid grid range from the distance of the
// equator to the pole on the plane.
func (ps *PolarStereographic) computeExtent(lon0 float64) error {
	p, err := ps.Forward(geographic(0, lon0))
	if err != nil {
		return err
	}
	ps.delta = math.Abs(p.Northing-ps.fn) * 1.01
	return nil
}

// Hemisphere returns the hemisphere of the projection pole.
func (ps *PolarStereographic) Hemisphere() Hemisphere {
	if ps.south {
		return South
	}
	return North
}

// ScaleFactor returns the scale factor at the pole.
func (ps *PolarStereographic) ScaleFactor() float64 { return ps.k0 }

// StandardParallel returns the latitude of true scale in degrees.
func (ps *PolarStereographic) StandardParallel() float64 {
	if ps.south {
		return -ps.stdParallel / deg
	}
	return ps.stdParallel / deg
}

// rho returns the distance on the plane from the pole for a mirrored
// latitude.
func (ps *PolarStereographic) rho(lat float64) float64 {
	t := isometricT(ps.ecc, lat)
	if ps.trueScaleAtPole() {
		return 2 * ps.e.A() * t / ps.k90
	}
	return ps.amc * t / ps.tc
}

// Forward implements Projection.
func (ps *PolarStereographic) Forward(g coord.Geographic) (coord.Projected, error) {
	lat, lon := g.Lat.Radians(), g.Lon.Radians()
	if err := checkLatitude(lat); err != nil {
		return coord.Projected{}, err
	}
	if (lat < 0 && !ps.south) || (lat > 0 && ps.south) {
		return coord.Projected{}, fmt.Errorf("%w: %v is in the other hemisphere", geodesy.ErrLatitudeRange, lat/deg)
	}
	if math.Abs(math.Abs(lat)-math.Pi/2) < 1e-10 {
		return coord.NE(ps.fn, ps.fe), nil
	}
	if ps.south {
		lat, lon = -lat, -lon
	}
	dlam := normalizeLon(lon - ps.lon0)
	r := ps.rho(lat)
	sin, cos := math.Sincos(dlam)
	if ps.south {
		return coord.NE(ps.fn+r*cos, ps.fe-r*sin), nil
	}
	return coord.NE(ps.fn-r*cos, ps.fe+r*sin), nil
}

// Reverse implements Projection.
func (ps *PolarStereographic) Reverse(p coord.Projected) (coord.Geographic, error) {
	p = p.Meters()
	if math.Abs(p.Easting-ps.fe) > ps.delta {
		return coord.Geographic{}, fmt.Errorf("%w: %v", geodesy.ErrEastingRange, p.Easting)
	}
	if math.Abs(p.Northing-ps.fn) > ps.delta {
		return coord.Geographic{}, fmt.Errorf("%w: %v", geodesy.ErrNorthingRange, p.Northing)
	}
	dx, dy := p.Easting-ps.fe, p.Northing-ps.fn
	r := math.Hypot(dx, dy)
	if r > math.Sqrt2*ps.delta {
		return coord.Geographic{}, &geodesy.RangeError{Field: "radius", Value: r, Reason: "outside the projection area"}
	}

	lat, lon := math.Pi/2, ps.lon0
	if r != 0 {
		if ps.south {
			dx, dy = -dx, -dy
		}
		var t float64
		if ps.trueScaleAtPole() {
			t = r * ps.k90 / (2 * ps.e.A())
		} else {
			t = r * ps.tc / ps.amc
		}
		var err error
		if lat, err = phi2("polar stereographic latitude", ps.ecc, t); err != nil {
			return coord.Geographic{}, err
		}
		lon = normalizeLon(ps.lon0 + math.Atan2(dx, -dy))
		lat = math.Min(lat, math.Pi/2)
	}
	if ps.south {
		lat, lon = -lat, -lon
	}
	return geographic(lat, lon), nil
}
