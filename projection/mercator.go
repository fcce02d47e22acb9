package projection

import (
	"fmt"
	"math"

	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/coord"
	"github.com/tzneal/geodesy/ellipsoid"
)

// Mercator is the ellipsoidal normal Mercator. The scale is given either
// directly (ScaleFactor, the one-standard-parallel variant) or by a
// latitude of true scale (StandardParallel1).
type Mercator struct {
	e      ellipsoid.Ellipsoid
	ecc    float64
	lon0   float64
	fe, fn float64
	ak0    float64
}

// NewMercator constructs the projection. When both ScaleFactor and
// StandardParallel1 are set the scale factor wins.
func NewMercator(e ellipsoid.Ellipsoid, p Parameters) (*Mercator, error) {
	d := p.dict(e)
	m := &Mercator{
		e:    e,
		ecc:  e.E(),
		lon0: d.radians(CentralMeridian, 0),
		fe:   d.get(FalseEasting, 0),
		fn:   d.get(FalseNorthing, 0),
	}
	if err := validCentralMeridian(m.lon0); err != nil {
		return nil, err
	}
	k0 := 1.0
	if k, ok := d[ScaleFactor]; ok {
		if k < minScaleFactor || k > maxScaleFactor {
			return nil, &geodesy.RangeError{Field: ScaleFactor.String(), Value: k, Reason: "must be in [0.1, 10]"}
		}
		k0 = k
	} else if lat1, ok := d[StandardParallel1]; ok {
		lat1 *= deg
		if err := checkLatitude(lat1); err != nil {
			return nil, err
		}
		if math.Pi/2-math.Abs(lat1) < poleTolerance {
			return nil, &geodesy.RangeError{Field: StandardParallel1.String(), Value: lat1 / deg, Reason: "at a pole"}
		}
		k0 = conformalM(e.E2(), lat1)
	}
	m.ak0 = e.A() * k0
	return m, nil
}

// Forward implements Projection.
func (m *Mercator) Forward(g coord.Geographic) (coord.Projected, error) {
	lat := g.Lat.Radians()
	if err := checkLatitude(lat); err != nil {
		return coord.Projected{}, err
	}
	if math.Pi/2-math.Abs(lat) < poleTolerance {
		return coord.Projected{}, fmt.Errorf("%w: the poles are at infinity", geodesy.ErrLatitudeRange)
	}
	l := normalizeLon(g.Lon.Radians() - m.lon0)
	return coord.NE(m.fn-m.ak0*math.Log(isometricT(m.ecc, lat)), m.fe+m.ak0*l), nil
}

// Reverse implements Projection.
func (m *Mercator) Reverse(p coord.Projected) (coord.Geographic, error) {
	p = p.Meters()
	t := math.Exp(-(p.Northing - m.fn) / m.ak0)
	lat, err := phi2("mercator latitude", m.ecc, t)
	if err != nil {
		return coord.Geographic{}, err
	}
	return geographic(lat, m.lon0+(p.Easting-m.fe)/m.ak0), nil
}

// WebMercatorMaxLatitude is the latitude at which Web Mercator tiles
// become square.
const WebMercatorMaxLatitude = 85.0511287798066

// WebMercator is the spherical Mercator used by web map tiles: latitude
// and longitude on the ellipsoid, formulas on a sphere of radius a.
type WebMercator struct {
	r float64
}

// NewWebMercator constructs the projection on the sphere of the
// ellipsoid's semi-major axis.
func NewWebMercator(e ellipsoid.Ellipsoid) *WebMercator {
	return &WebMercator{r: e.A()}
}

// Forward implements Projection. Latitudes beyond WebMercatorMaxLatitude
// are rejected.
func (w *WebMercator) Forward(g coord.Geographic) (coord.Projected, error) {
	lat := g.Lat.Degrees()
	if math.IsNaN(lat) || math.Abs(lat) > WebMercatorMaxLatitude {
		return coord.Projected{}, fmt.Errorf("%w: %v beyond web mercator limit", geodesy.ErrLatitudeRange, lat)
	}
	x := w.r * normalizeLon(g.Lon.Radians())
	y := w.r * math.Log(math.Tan(math.Pi/4+g.Lat.Radians()/2))
	return coord.NE(y, x), nil
}

// Reverse implements Projection.
func (w *WebMercator) Reverse(p coord.Projected) (coord.Geographic, error) {
	p = p.Meters()
	lat := math.Pi/2 - 2*math.Atan(math.Exp(-p.Northing/w.r))
	return geographic(lat, p.Easting/w.r), nil
}
