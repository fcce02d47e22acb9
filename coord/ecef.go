package coord

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/angle"
	"github.com/tzneal/geodesy/ellipsoid"
	"github.com/tzneal/geodesy/unit"
)

// SpaceRectangular is an Earth-centred, Earth-fixed Cartesian position.
type SpaceRectangular struct {
	r3.Vector
	Unit unit.Linear `json:"unit"`
}

// XYZ returns a position in meters.
func XYZ(x, y, z float64) SpaceRectangular {
	return SpaceRectangular{Vector: r3.Vector{X: x, Y: y, Z: z}}
}

// Meters returns the vector expressed in meters.
func (p SpaceRectangular) Meters() r3.Vector {
	if p.Unit == unit.Meter {
		return p.Vector
	}
	return p.Vector.Mul(p.Unit.Factor())
}

// In returns p expressed in u.
func (p SpaceRectangular) In(u unit.Linear) SpaceRectangular {
	return SpaceRectangular{Vector: p.Meters().Mul(1 / u.Factor()), Unit: u}
}

// Distance returns the straight-line distance in meters.
func (p SpaceRectangular) Distance(o SpaceRectangular) float64 {
	return p.Meters().Sub(o.Meters()).Norm()
}

func (p SpaceRectangular) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f %s)", p.X, p.Y, p.Z, p.Unit)
}

// GeodeticToXYZ converts a geodetic position with ellipsoidal height to
// Earth-centred Cartesian coordinates in meters.
func GeodeticToXYZ(e ellipsoid.Ellipsoid, g Geodetic) SpaceRectangular {
	lat, lon := g.Lat.Radians(), g.Lon.Radians()
	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)
	n := e.N(lat)
	return XYZ(
		(n+g.H)*cosLat*cosLon,
		(n+g.H)*cosLat*sinLon,
		(n*(1-e.E2())+g.H)*sinLat,
	)
}

const (
	xyzTolerance     = 1e-14
	maxXYZIterations = 30
)

// XYZToGeodetic converts Earth-centred Cartesian coordinates to a
// geodetic position by fixed-point iteration on the latitude. The height
// uses p·cosφ + z·sinφ - a·W, which stays well conditioned at the poles.
func XYZToGeodetic(e ellipsoid.Ellipsoid, p SpaceRectangular) (Geodetic, error) {
	v := p.Meters()
	rho := math.Hypot(v.X, v.Y)
	if rho < 1e-9 {
		if v.Z == 0 {
			return Geodetic{}, &geodesy.RangeError{Field: "xyz", Value: 0, Reason: "geocentre has no geodetic position"}
		}
		lat := 90.0
		if v.Z < 0 {
			lat = -90
		}
		return Geodetic{
			Geographic: Geographic{Lat: angle.Lat(lat), Lon: angle.Lng(0)},
			H:          math.Abs(v.Z) - e.B(),
		}, nil
	}
	lon := math.Atan2(v.Y, v.X)
	e2 := e.E2()
	lat := math.Atan2(v.Z, rho*(1-e2))
	for i := 0; ; i++ {
		if i == maxXYZIterations {
			return Geodetic{}, &geodesy.ConvergenceError{Op: "xyz to geodetic", Iterations: i}
		}
		sinLat := math.Sin(lat)
		n := e.N(lat)
		next := math.Atan2(v.Z+e2*n*sinLat, rho)
		if math.Abs(next-lat) < xyzTolerance {
			lat = next
			break
		}
		lat = next
	}
	sinLat, cosLat := math.Sincos(lat)
	h := rho*cosLat + v.Z*sinLat - e.A()*math.Sqrt(1-e2*sinLat*sinLat)
	return Geodetic{
		Geographic: Geographic{
			Lat: angle.Lat(lat * 180 / math.Pi),
			Lon: angle.Lng(lon * 180 / math.Pi),
		},
		H: h,
	}, nil
}
