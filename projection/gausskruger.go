package projection

import (
	"fmt"
	"math"
	"sync"

	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/coord"
	"github.com/tzneal/geodesy/ellipsoid"
)

const (
	gkFalseEasting = 500000.0
	gkZonePrefix   = 1000000.0
)

// GaussKruger is the zoned transverse Mercator used with 6° or 3° wide
// zones and unit scale on the central meridian. Zoned eastings carry the
// zone number in the millions: easting = zone·10⁶ + 500000 + y.
type GaussKruger struct {
	e     ellipsoid.Ellipsoid
	width int

	mu    sync.Mutex
	zones map[int]*TransverseMercator // built on first use
}

// NewGaussKruger constructs a Gauss-Krüger system with a zone width of 3
// or 6 degrees.
func NewGaussKruger(e ellipsoid.Ellipsoid, width int) (*GaussKruger, error) {
	if width != 3 && width != 6 {
		return nil, &geodesy.RangeError{Field: ZoneWidth.String(), Value: float64(width), Reason: "must be 3 or 6"}
	}
	return &GaussKruger{e: e, width: width, zones: make(map[int]*TransverseMercator)}, nil
}

// Width returns the zone width in degrees.
func (g *GaussKruger) Width() int { return g.width }

func (g *GaussKruger) zoneCount() int { return 360 / g.width }

// Zone returns the zone containing a longitude in degrees. Six-degree
// zone n spans [6n-6, 6n); three-degree zone n is centred on 3n.
func (g *GaussKruger) Zone(lon float64) int {
	lon = math.Mod(lon, 360)
	if lon < 0 {
		lon += 360
	}
	var zone int
	if g.width == 6 {
		zone = int(lon/6) + 1
	} else {
		zone = int((lon+1.5)/3) % 120
		if zone == 0 {
			zone = 120
		}
	}
	return zone
}

// ZoneCentralMeridian returns the central meridian of a zone in degrees,
// in (-180, 180].
func (g *GaussKruger) ZoneCentralMeridian(zone int) float64 {
	var cm float64
	if g.width == 6 {
		cm = float64(6*zone - 3)
	} else {
		cm = float64(3 * zone)
	}
	if cm > 180 {
		cm -= 360
	}
	return cm
}

// ZoneProjection returns the transverse Mercator of one zone with plain
// (unprefixed) eastings.
func (g *GaussKruger) ZoneProjection(zone int) (*TransverseMercator, error) {
	if zone < 1 || zone > g.zoneCount() {
		return nil, fmt.Errorf("%w: %d for %d° zones", geodesy.ErrZone, zone, g.width)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if tm, ok := g.zones[zone]; ok {
		return tm, nil
	}
	tm, err := NewTransverseMercator(g.e, Parameters{
		CentralMeridian: P(g.ZoneCentralMeridian(zone)),
		FalseEasting:    P(gkFalseEasting),
	})
	if err != nil {
		return nil, err
	}
	g.zones[zone] = tm
	return tm, nil
}

// ForwardZoned projects into the zone containing the point and prefixes
// the easting with the zone number.
func (g *GaussKruger) ForwardZoned(geo coord.Geographic) (coord.Projected, int, error) {
	zone := g.Zone(geo.Lon.Degrees())
	p, err := g.ForwardInZone(geo, zone)
	return p, zone, err
}

// ForwardInZone projects into the given zone, which need not contain the
// point, and prefixes the easting with the zone number.
func (g *GaussKruger) ForwardInZone(geo coord.Geographic, zone int) (coord.Projected, error) {
	tm, err := g.ZoneProjection(zone)
	if err != nil {
		return coord.Projected{}, err
	}
	p, err := tm.Forward(geo)
	if err != nil {
		return coord.Projected{}, err
	}
	p.Easting += float64(zone) * gkZonePrefix
	return p, nil
}

// SplitEasting separates the zone number from a zoned easting.
func SplitEasting(easting float64) (zone int, plain float64) {
	zone = int(math.Floor(easting / gkZonePrefix))
	return zone, easting - float64(zone)*gkZonePrefix
}

// ReverseZoned recovers a geographic position from a zoned easting.
func (g *GaussKruger) ReverseZoned(p coord.Projected) (coord.Geographic, error) {
	p = p.Meters()
	zone, plain := SplitEasting(p.Easting)
	tm, err := g.ZoneProjection(zone)
	if err != nil {
		return coord.Geographic{}, err
	}
	return tm.Reverse(coord.NE(p.Northing, plain))
}

// Forward implements Projection with zoned eastings.
func (g *GaussKruger) Forward(geo coord.Geographic) (coord.Projected, error) {
	p, _, err := g.ForwardZoned(geo)
	return p, err
}

// Reverse implements Projection with zoned eastings.
func (g *GaussKruger) Reverse(p coord.Projected) (coord.Geographic, error) {
	return g.ReverseZoned(p)
}

// Neighbor re-projects a zoned position into the adjacent zone toZone,
// for points lying in the overlap of two zones.
func (g *GaussKruger) Neighbor(p coord.Projected, toZone int) (coord.Projected, error) {
	from, _ := SplitEasting(p.Meters().Easting)
	d := abs(toZone - from)
	if d != 1 && d != g.zoneCount()-1 {
		return coord.Projected{}, fmt.Errorf("%w: %d is not adjacent to %d", geodesy.ErrZone, toZone, from)
	}
	geo, err := g.ReverseZoned(p)
	if err != nil {
		return coord.Projected{}, err
	}
	return g.ForwardInZone(geo, toZone)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Rezone re-projects a zoned position from one Gauss-Krüger system into
// the zone of another that contains the point.
func Rezone(from *GaussKruger, p coord.Projected, to *GaussKruger) (coord.Projected, error) {
	geo, err := from.ReverseZoned(p)
	if err != nil {
		return coord.Projected{}, err
	}
	q, _, err := to.ForwardZoned(geo)
	return q, err
}

// SixToThree re-projects a 6° zoned position into the 3° system on the
// same ellipsoid.
func SixToThree(e ellipsoid.Ellipsoid, p coord.Projected) (coord.Projected, error) {
	return rezoneWidths(e, p, 6, 3)
}

// ThreeToSix re-projects a 3° zoned position into the 6° system on the
// same ellipsoid.
func ThreeToSix(e ellipsoid.Ellipsoid, p coord.Projected) (coord.Projected, error) {
	return rezoneWidths(e, p, 3, 6)
}

// rezoneWidths builds throwaway systems; each only constructs the zones
// the position passes through.
func rezoneWidths(e ellipsoid.Ellipsoid, p coord.Projected, fromWidth, toWidth int) (coord.Projected, error) {
	from, err := NewGaussKruger(e, fromWidth)
	if err != nil {
		return coord.Projected{}, err
	}
	to, err := NewGaussKruger(e, toWidth)
	if err != nil {
		return coord.Projected{}, err
	}
	return Rezone(from, p, to)
}
