package projection

import (
	"fmt"
	"math"

	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/coord"
	"github.com/tzneal/geodesy/ellipsoid"
)

// Hemisphere represents the hemisphere, north or south.
type Hemisphere byte

// Hemisphere constants
const (
	HemisphereInvalid Hemisphere = iota
	North
	South
)

func (h Hemisphere) String() string {
	switch h {
	case North:
		return "N"
	case South:
		return "S"
	}
	return "invalid"
}

// UTMCoord is a UTM grid position.
type UTMCoord struct {
	Zone       int
	Band       byte
	Hemisphere Hemisphere
	Easting    float64
	Northing   float64
}

func (c UTMCoord) String() string {
	band := c.Band
	if band == 0 {
		band = c.Hemisphere.String()[0]
	}
	return fmt.Sprintf("%d%c %.3f %.3f", c.Zone, band, c.Easting, c.Northing)
}

const (
	utmMinLat       = -80.5 * deg
	utmMaxLat       = 84.5 * deg
	utmMinEasting   = 100000.0
	utmMaxEasting   = 900000.0
	utmMinNorthing  = 0.0
	utmMaxNorthing  = 10000000.0
	utmFalseEasting = 500000.0
	utmSouthOffset  = 10000000.0
	utmScaleFactor  = 0.9996

	// epsilonRadians is about 1e-5 degrees (one meter).
	epsilonRadians = 1.75e-7
)

// UTM converts between geographic coordinates and Universal Transverse
// Mercator grid coordinates.
type UTM struct {
	e     ellipsoid.Ellipsoid
	zones [61]*TransverseMercator
}

// NewUTM constructs a UTM converter on the given ellipsoid.
func NewUTM(e ellipsoid.Ellipsoid) (*UTM, error) {
	return NewUTMSeries(e, Classic)
}

// NewUTMSeries constructs a UTM converter whose zones are evaluated with
// the given transverse Mercator series.
func NewUTMSeries(e ellipsoid.Ellipsoid, s Series) (*UTM, error) {
	u := &UTM{e: e}
	for zone := 1; zone <= 60; zone++ {
		var err error
		u.zones[zone], err = NewTransverseMercatorSeries(e, Parameters{
			CentralMeridian: P(ZoneCentralMeridian(zone)),
			FalseEasting:    P(utmFalseEasting),
			ScaleFactor:     P(utmScaleFactor),
		}, s)
		if err != nil {
			return nil, err
		}
	}
	return u, nil
}

// Ellipsoid returns the ellipsoid of the converter.
func (u *UTM) Ellipsoid() ellipsoid.Ellipsoid { return u.e }

// ZoneCentralMeridian returns the central meridian of a UTM zone in
// degrees.
func ZoneCentralMeridian(zone int) float64 {
	return float64(6*zone - 183)
}

// Projection returns the transverse Mercator of one zone and hemisphere.
func (u *UTM) Projection(zone int, h Hemisphere) (Projection, error) {
	if zone < 1 || zone > 60 {
		return nil, fmt.Errorf("%w: %d", geodesy.ErrZone, zone)
	}
	fn := 0.0
	switch h {
	case North:
	case South:
		fn = utmSouthOffset
	default:
		return nil, fmt.Errorf("hemisphere %v: %w", h, geodesy.ErrInvalidInput)
	}
	return NewTransverseMercatorSeries(u.e, Parameters{
		CentralMeridian: P(ZoneCentralMeridian(zone)),
		FalseEasting:    P(utmFalseEasting),
		FalseNorthing:   P(fn),
		ScaleFactor:     P(utmScaleFactor),
	}, u.zones[zone].series)
}

// overrideZone accepts a requested zone that is at most one zone from
// the natural one.
func overrideZone(natural, override int) (int, error) {
	switch {
	case override < 1 || override > 60:
	case natural == 1 && override == 60, natural == 60 && override == 1:
		return override, nil
	case natural-1 <= override && override <= natural+1:
		return override, nil
	}
	return 0, fmt.Errorf("%w: override %d is not adjacent to %d", geodesy.ErrZone, override, natural)
}

// FromGeodetic converts a geographic position to UTM. A non-zero override
// forces the zone, which must be adjacent to the natural zone. With the
// classic series an override more than 6° from the zone's central
// meridian is rejected; use NewUTMSeries with Kruger to reach further.
func (u *UTM) FromGeodetic(g coord.Geographic, override int) (UTMCoord, error) {
	lat := g.Lat.Radians()
	lon := g.Lon.Radians()
	if lat < utmMinLat-epsilonRadians || lat >= utmMaxLat+epsilonRadians {
		return UTMCoord{}, fmt.Errorf("%w: %v outside UTM", geodesy.ErrLatitudeRange, g.Lat.Degrees())
	}
	if lon < -math.Pi-epsilonRadians || lon > 2*math.Pi+epsilonRadians {
		return UTMCoord{}, fmt.Errorf("%w: %v", geodesy.ErrLongitudeRange, g.Lon.Degrees())
	}
	if lat > -1e-9 && lat < 0 {
		lat = 0
	}
	latDeg := math.Max(-80.5, math.Min(lat/deg, 84.4999999))
	lonDeg := normalizeLon(lon) / deg

	band, err := LatBand(latDeg)
	if err != nil {
		return UTMCoord{}, err
	}
	zone, err := LngZone(lonDeg, band)
	if err != nil {
		return UTMCoord{}, err
	}
	if override != 0 {
		natural, err := LngZone(lonDeg, 0)
		if err != nil {
			return UTMCoord{}, err
		}
		if zone, err = overrideZone(natural, override); err != nil {
			return UTMCoord{}, err
		}
	}

	h := North
	fn := 0.0
	if lat < 0 {
		h = South
		fn = utmSouthOffset
	}
	p, err := u.zones[zone].Forward(coord.LatLon(lat/deg, lonDeg))
	if err != nil {
		return UTMCoord{}, err
	}
	c := UTMCoord{Zone: zone, Band: band, Hemisphere: h, Easting: p.Easting, Northing: p.Northing + fn}
	if c.Easting < utmMinEasting || c.Easting > utmMaxEasting {
		return UTMCoord{}, fmt.Errorf("%w: %v", geodesy.ErrEastingRange, c.Easting)
	}
	if c.Northing < utmMinNorthing || c.Northing > utmMaxNorthing {
		return UTMCoord{}, fmt.Errorf("%w: %v", geodesy.ErrNorthingRange, c.Northing)
	}
	return c, nil
}

// ToGeodetic converts a UTM position to geographic coordinates. When the
// hemisphere is unset it is taken from the latitude band.
func (u *UTM) ToGeodetic(c UTMCoord) (coord.Geographic, error) {
	if c.Zone < 1 || c.Zone > 60 {
		return coord.Geographic{}, fmt.Errorf("%w: %d", geodesy.ErrZone, c.Zone)
	}
	h := c.Hemisphere
	if h == HemisphereInvalid && c.Band != 0 {
		h = bandHemisphere(c.Band)
	}
	if h != North && h != South {
		return coord.Geographic{}, fmt.Errorf("hemisphere %v: %w", h, geodesy.ErrInvalidInput)
	}
	if c.Easting < utmMinEasting || c.Easting > utmMaxEasting {
		return coord.Geographic{}, fmt.Errorf("%w: %v", geodesy.ErrEastingRange, c.Easting)
	}
	if c.Northing < utmMinNorthing || c.Northing > utmMaxNorthing {
		return coord.Geographic{}, fmt.Errorf("%w: %v", geodesy.ErrNorthingRange, c.Northing)
	}
	northing := c.Northing
	if h == South {
		northing -= utmSouthOffset
	}
	g, err := u.zones[c.Zone].Reverse(coord.NE(northing, c.Easting))
	if err != nil {
		return coord.Geographic{}, err
	}
	lat := g.Lat.Radians()
	if lat < utmMinLat-epsilonRadians || lat >= utmMaxLat+epsilonRadians {
		return coord.Geographic{}, fmt.Errorf("%w: %v outside UTM", geodesy.ErrLatitudeRange, g.Lat.Degrees())
	}
	return g, nil
}

// latitudeBandLetters are the UTM bands from 80°S northwards, 8° each.
const latitudeBandLetters = "CDEFGHJKLMNPQRSTUVWX"

// LatBand returns the UTM latitude band letter for a latitude in
// degrees. Band X spans 72° to 84°; the range is [-80.5, 84.5).
func LatBand(lat float64) (byte, error) {
	if math.IsNaN(lat) || lat < -80.5 || lat >= 84.5 {
		return 0, fmt.Errorf("%w: no UTM band for latitude %v", geodesy.ErrBand, lat)
	}
	i := int(math.Floor((lat + 80) / 8))
	if i < 0 {
		i = 0
	}
	if i >= len(latitudeBandLetters) {
		i = len(latitudeBandLetters) - 1
	}
	return latitudeBandLetters[i], nil
}

func bandHemisphere(band byte) Hemisphere {
	switch {
	case band == 'A' || band == 'B':
		return South
	case band == 'Y' || band == 'Z':
		return North
	case band >= 'N' && band <= 'X':
		return North
	case band >= 'C' && band < 'N':
		return South
	}
	return HemisphereInvalid
}

// svalbardZones lists the widened zones of band X. Bounds are inclusive
// and the first match wins.
var svalbardZones = []struct {
	from, to float64
	zone     int
}{
	{0, 9, 31},
	{9, 21, 33},
	{21, 33, 35},
	{33, 42, 37},
}

// LngZone returns the UTM zone of a longitude in degrees. The band
// letter applies the exceptions over south-west Norway (V) and Svalbard
// (X); pass 0 for the regular six-degree zone.
func LngZone(lon float64, band byte) (int, error) {
	if math.IsNaN(lon) || lon < -180 || lon > 360 {
		return 0, fmt.Errorf("%w: %v", geodesy.ErrLongitudeRange, lon)
	}
	if lon > 180 {
		lon -= 360
	}
	switch band {
	case 'V':
		if lon >= 3 && lon < 12 {
			return 32, nil
		}
	case 'X':
		for _, z := range svalbardZones {
			if lon >= z.from && lon <= z.to {
				return z.zone, nil
			}
		}
	}
	// A longitude on a zone boundary belongs to the zone east of it.
	zone := int(math.Floor((lon+180)/6)) + 1
	return max(1, min(zone, 60)), nil
}

// UPSBand returns the polar band letter: A and B in the south, Y and Z
// in the north, split at the Greenwich meridian.
func UPSBand(lat, lon float64) (byte, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return 0, fmt.Errorf("%w: %v", geodesy.ErrLatitudeRange, lat)
	}
	lon = normalizeLon(lon*deg) / deg
	switch {
	case lat >= 0 && lon < 0:
		return 'Y', nil
	case lat >= 0:
		return 'Z', nil
	case lon < 0:
		return 'A', nil
	}
	return 'B', nil
}
