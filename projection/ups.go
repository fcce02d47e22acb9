package projection

import (
	"fmt"

	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/coord"
	"github.com/tzneal/geodesy/ellipsoid"
)

// UPSCoord is a Universal Polar Stereographic grid position.
type UPSCoord struct {
	Hemisphere Hemisphere
	Band       byte
	Easting    float64
	Northing   float64
}

func (c UPSCoord) String() string {
	return fmt.Sprintf("%c %.3f %.3f", c.Band, c.Easting, c.Northing)
}

const (
	upsFalseEasting  = 2000000.0
	upsFalseNorthing = 2000000.0
	upsScaleFactor   = 0.994

	upsMinNorthLat  = 83.5 * deg
	upsMaxSouthLat  = -79.5 * deg
	upsMinEastNorth = 0.0
	upsMaxEastNorth = 4000000.0
)

// UPS converts between geographic coordinates and UPS grid coordinates.
type UPS struct {
	north, south *PolarStereographic
}

// NewUPS constructs a UPS converter on the given ellipsoid.
func NewUPS(e ellipsoid.Ellipsoid) (*UPS, error) {
	north, err := newPolarScaleFactor(e, 0, upsScaleFactor, North, upsFalseEasting, upsFalseNorthing)
	if err != nil {
		return nil, err
	}
	south, err := newPolarScaleFactor(e, 0, upsScaleFactor, South, upsFalseEasting, upsFalseNorthing)
	if err != nil {
		return nil, err
	}
	return &UPS{north: north, south: south}, nil
}

// Projection returns the polar stereographic projection of a hemisphere.
func (u *UPS) Projection(h Hemisphere) (*PolarStereographic, error) {
	switch h {
	case North:
		return u.north, nil
	case South:
		return u.south, nil
	}
	return nil, fmt.Errorf("hemisphere %v: %w", h, geodesy.ErrInvalidInput)
}

func upsLatitudeInRange(lat float64) bool {
	if lat < 0 {
		return lat < upsMaxSouthLat+epsilonRadians
	}
	return lat >= upsMinNorthLat-epsilonRadians
}

// FromGeodetic converts a geographic position in one of the polar caps
// to UPS.
func (u *UPS) FromGeodetic(g coord.Geographic) (UPSCoord, error) {
	lat := g.Lat.Radians()
	if err := checkLatitude(lat); err != nil {
		return UPSCoord{}, err
	}
	if !upsLatitudeInRange(lat) {
		return UPSCoord{}, fmt.Errorf("%w: %v outside UPS", geodesy.ErrLatitudeRange, g.Lat.Degrees())
	}
	h, ps := North, u.north
	if lat < 0 {
		h, ps = South, u.south
	}
	p, err := ps.Forward(g)
	if err != nil {
		return UPSCoord{}, err
	}
	band, err := UPSBand(g.Lat.Degrees(), g.Lon.Degrees())
	if err != nil {
		return UPSCoord{}, err
	}
	return UPSCoord{Hemisphere: h, Band: band, Easting: p.Easting, Northing: p.Northing}, nil
}

// ToGeodetic converts a UPS position to geographic coordinates.
func (u *UPS) ToGeodetic(c UPSCoord) (coord.Geographic, error) {
	h := c.Hemisphere
	if h == HemisphereInvalid && c.Band != 0 {
		h = bandHemisphere(c.Band)
	}
	ps, err := u.Projection(h)
	if err != nil {
		return coord.Geographic{}, err
	}
	if c.Easting < upsMinEastNorth || c.Easting > upsMaxEastNorth {
		return coord.Geographic{}, fmt.Errorf("%w: %v", geodesy.ErrEastingRange, c.Easting)
	}
	if c.Northing < upsMinEastNorth || c.Northing > upsMaxEastNorth {
		return coord.Geographic{}, fmt.Errorf("%w: %v", geodesy.ErrNorthingRange, c.Northing)
	}
	g, err := ps.Reverse(coord.NE(c.Northing, c.Easting))
	if err != nil {
		return coord.Geographic{}, err
	}
	if !upsLatitudeInRange(g.Lat.Radians()) {
		return coord.Geographic{}, fmt.Errorf("%w: resulting latitude %v outside UPS", geodesy.ErrLatitudeRange, g.Lat.Degrees())
	}
	return g, nil
}
