package coord

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/tzneal/geodesy/angle"
	"github.com/tzneal/geodesy/ellipsoid"
)

// Topocentric is a local east/north/up position relative to an origin on
// or above the ellipsoid.
type Topocentric struct {
	E float64 `json:"e"`
	N float64 `json:"n"`
	U float64 `json:"u"`
}

// TopocentricPolar is a local observation: slant range, azimuth from
// north (clockwise) and elevation above the horizon.
type TopocentricPolar struct {
	Range     float64     `json:"range"`
	Azimuth   angle.Angle `json:"azimuth"`
	Elevation angle.Angle `json:"elevation"`
}

// enuBasis returns the east, north and up unit vectors at g.
func enuBasis(g Geographic) (east, north, up r3.Vector) {
	sinLat, cosLat := math.Sincos(g.Lat.Radians())
	sinLon, cosLon := math.Sincos(g.Lon.Radians())
	east = r3.Vector{X: -sinLon, Y: cosLon}
	north = r3.Vector{X: -sinLat * cosLon, Y: -sinLat * sinLon, Z: cosLat}
	up = r3.Vector{X: cosLat * cosLon, Y: cosLat * sinLon, Z: sinLat}
	return east, north, up
}

// ToTopocentric expresses p in the local frame at origin.
func ToTopocentric(e ellipsoid.Ellipsoid, origin Geodetic, p SpaceRectangular) Topocentric {
	d := p.Meters().Sub(GeodeticToXYZ(e, origin).Vector)
	east, north, up := enuBasis(origin.Geographic)
	return Topocentric{E: d.Dot(east), N: d.Dot(north), U: d.Dot(up)}
}

// FromTopocentric returns the Earth-centred position of the local vector
// t observed at origin.
func FromTopocentric(e ellipsoid.Ellipsoid, origin Geodetic, t Topocentric) SpaceRectangular {
	east, north, up := enuBasis(origin.Geographic)
	o := GeodeticToXYZ(e, origin).Vector
	v := o.Add(east.Mul(t.E)).Add(north.Mul(t.N)).Add(up.Mul(t.U))
	return SpaceRectangular{Vector: v}
}

// Polar converts t to range, azimuth and elevation.
func (t Topocentric) Polar() TopocentricPolar {
	r := math.Sqrt(t.E*t.E + t.N*t.N + t.U*t.U)
	az := math.Atan2(t.E, t.N)
	if az < 0 {
		az += 2 * math.Pi
	}
	el := 0.0
	if r > 0 {
		el = math.Asin(t.U / r)
	}
	return TopocentricPolar{Range: r, Azimuth: angle.FromRadians(az), Elevation: angle.FromRadians(el)}
}

// Rectangular converts a polar observation to east/north/up.
func (p TopocentricPolar) Rectangular() Topocentric {
	sinEl, cosEl := math.Sincos(p.Elevation.Radians())
	sinAz, cosAz := math.Sincos(p.Azimuth.Radians())
	return Topocentric{
		E: p.Range * cosEl * sinAz,
		N: p.Range * cosEl * cosAz,
		U: p.Range * sinEl,
	}
}
