package transform

import (
	"math"

	"github.com/tzneal/geodesy/coord"
)

// Planar4 is the four-parameter similarity on a projected plane: a
// shift of Tx (easting) and Ty (northing) in meters, a scale change S in
// ppm and a counterclockwise rotation Rz in arc seconds.
type Planar4 struct {
	Tx float64 `yaml:"tx"`
	Ty float64 `yaml:"ty"`
	S  float64 `yaml:"s"`
	Rz float64 `yaml:"rz"`
}

// Apply transforms a projected position and returns it in meters.
func (p Planar4) Apply(c coord.Projected) coord.Projected {
	c = c.Meters()
	k := 1 + p.S*ppm
	sin, cos := math.Sincos(p.Rz * arcSecond)
	return coord.Projected{
		Easting:  p.Tx + k*(c.Easting*cos-c.Northing*sin),
		Northing: p.Ty + k*(c.Easting*sin+c.Northing*cos),
	}
}

// Invert returns the exact inverse of p.
func (p Planar4) Invert() Planar4 {
	k := 1 / (1 + p.S*ppm)
	sin, cos := math.Sincos(-p.Rz * arcSecond)
	return Planar4{
		Tx: -k * (p.Tx*cos - p.Ty*sin),
		Ty: -k * (p.Tx*sin + p.Ty*cos),
		S:  (k - 1) / ppm,
		Rz: -p.Rz,
	}
}
