package transform

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/tzneal/geodesy/angle"
	"github.com/tzneal/geodesy/coord"
	"github.com/tzneal/geodesy/ellipsoid"
)

// Molodensky shifts geodetic coordinates between datums with the
// standard Molodensky formulae, using only the origin shift and the
// differences of the two ellipsoids. No Cartesian round trip is made.
type Molodensky struct {
	Source, Target ellipsoid.Ellipsoid
	Shift          r3.Vector
}

// NewMolodensky uses the translation of p. Scale and rotations are
// ignored.
func NewMolodensky(src, dst ellipsoid.Ellipsoid, p Params) *Molodensky {
	return &Molodensky{Source: src, Target: dst, Shift: r3.Vector{X: p.Tx, Y: p.Ty, Z: p.Tz}}
}

// Apply transforms g.
func (m *Molodensky) Apply(g coord.Geodetic) coord.Geodetic {
	return molodensky(m.Source, m.Target, g, m.Shift)
}

// Invert returns the reverse shift. Like the forward formulae it is
// accurate to second order in the shift.
func (m *Molodensky) Invert() *Molodensky {
	return &Molodensky{Source: m.Target, Target: m.Source, Shift: m.Shift.Mul(-1)}
}

// MolodenskyBadekas extends Molodensky with a scale change and rotations
// about a point. The Cartesian shift they cause is evaluated at each
// point and fed to the Molodensky differentials.
type MolodenskyBadekas struct {
	Source, Target ellipsoid.Ellipsoid
	sim            *Similarity
}

// NewMolodenskyBadekas builds the transform from ten parameters.
func NewMolodenskyBadekas(src, dst ellipsoid.Ellipsoid, p Params) (*MolodenskyBadekas, error) {
	sim, err := NewBadekas(p)
	if err != nil {
		return nil, err
	}
	return &MolodenskyBadekas{Source: src, Target: dst, sim: sim}, nil
}

// Apply transforms g.
func (m *MolodenskyBadekas) Apply(g coord.Geodetic) coord.Geodetic {
	x := coord.GeodeticToXYZ(m.Source, g).Vector
	return molodensky(m.Source, m.Target, g, m.sim.Apply(x).Sub(x))
}

func molodensky(src, dst ellipsoid.Ellipsoid, g coord.Geodetic, d r3.Vector) coord.Geodetic {
	lat, lon, h := g.Lat.Radians(), g.Lon.Radians(), g.H
	a, b, f, e2 := src.A(), src.B(), src.F(), src.E2()
	da, df := dst.A()-a, dst.F()-f

	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)
	n, m := src.N(lat), src.M(lat)

	dLat := (-d.X*sinLat*cosLon - d.Y*sinLat*sinLon + d.Z*cosLat +
		da*n*e2*sinLat*cosLat/a +
		df*(m*a/b+n*b/a)*sinLat*cosLat) / (m + h)
	dLon := 0.0
	if cosLat > 1e-12 {
		dLon = (-d.X*sinLon + d.Y*cosLon) / ((n + h) * cosLat)
	}
	dH := d.X*cosLat*cosLon + d.Y*cosLat*sinLon + d.Z*sinLat -
		da*a/n + df*b/a*n*sinLat*sinLat

	return coord.Geodetic{
		Geographic: coord.Geographic{
			Lat: angle.Lat((lat + dLat) * 180 / math.Pi),
			Lon: angle.Lng((lon + dLon) * 180 / math.Pi),
		},
		H:            h + dH,
		HeightSystem: g.HeightSystem,
	}
}
