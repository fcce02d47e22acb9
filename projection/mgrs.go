package projection

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/coord"
	"github.com/tzneal/geodesy/ellipsoid"
)

// MGRS encodes and decodes Military Grid Reference System strings. Each
// 100 km square is named by a column letter cycling through 24 letters
// and a row letter cycling through 20, both skipping I and O.
type MGRS struct {
	utm *UTM
	ups *UPS

	// The older ellipsoids letter their rows from a different offset.
	aaPattern bool
}

const (
	mgrsMaxPrecision   = 5
	mgrsRoundingMargin = 4.99e-4
	minMGRSNonPolarLat = -80 * deg
	maxMGRSNonPolarLat = 84 * deg
)

// letter returns the alphabet index of an upper-case letter.
func letter(c byte) int { return int(c - 'A') }

type mgrsBand struct {
	letter         byte
	minNorthing    float64
	north, south   float64 // degrees
	northingOffset float64
}

var mgrsBands = [...]mgrsBand{
	{'C', 1100000, -72, -80.5, 0},
	{'D', 2000000, -64, -72, 2000000},
	{'E', 2800000, -56, -64, 2000000},
	{'F', 3700000, -48, -56, 2000000},
	{'G', 4600000, -40, -48, 4000000},
	{'H', 5500000, -32, -40, 4000000},
	{'J', 6400000, -24, -32, 6000000},
	{'K', 7300000, -16, -24, 6000000},
	{'L', 8200000, -8, -16, 8000000},
	{'M', 9100000, 0, -8, 8000000},
	{'N', 0, 8, 0, 0},
	{'P', 800000, 16, 8, 0},
	{'Q', 1700000, 24, 16, 0},
	{'R', 2600000, 32, 24, 2000000},
	{'S', 3500000, 40, 32, 2000000},
	{'T', 4400000, 48, 40, 4000000},
	{'U', 5300000, 56, 48, 4000000},
	{'V', 6200000, 64, 56, 6000000},
	{'W', 7000000, 72, 64, 6000000},
	{'X', 7900000, 84.5, 72, 6000000},
}

func lookupBand(l int) (mgrsBand, error) {
	for _, b := range mgrsBands {
		if letter(b.letter) == l {
			return b, nil
		}
	}
	return mgrsBand{}, fmt.Errorf("%w: band %c", geodesy.ErrGridReference, byte('A'+l))
}

type upsSquare struct {
	band          byte
	ltr2Low       byte
	ltr2High      byte
	ltr3High      byte
	falseEasting  float64
	falseNorthing float64
}

var upsSquares = [...]upsSquare{
	{'A', 'J', 'Z', 'Z', 800000, 800000},
	{'B', 'A', 'R', 'Z', 2000000, 800000},
	{'Y', 'J', 'Z', 'P', 800000, 1300000},
	{'Z', 'A', 'J', 'P', 2000000, 1300000},
}

func lookupUPSSquare(l int) (upsSquare, bool) {
	for _, s := range upsSquares {
		if letter(s.band) == l {
			return s, true
		}
	}
	return upsSquare{}, false
}

// NewMGRS constructs an MGRS converter on the given ellipsoid.
func NewMGRS(e ellipsoid.Ellipsoid) (*MGRS, error) {
	u, err := NewUTM(e)
	if err != nil {
		return nil, err
	}
	p, err := NewUPS(e)
	if err != nil {
		return nil, err
	}
	m := &MGRS{utm: u, ups: p, aaPattern: true}
	switch e.Code() {
	case ellipsoid.Clarke1866.Code(), ellipsoid.Clarke1880.Code(), ellipsoid.Bessel1841.Code():
		m.aaPattern = false
	}
	return m, nil
}

// ToMGRS encodes a geographic position with the given number of digits
// (0 to 5) per easting and northing.
func (m *MGRS) ToMGRS(g coord.Geographic, precision int) (string, error) {
	lat, lon := g.Lat.Radians(), g.Lon.Radians()
	if err := checkLatitude(lat); err != nil {
		return "", err
	}
	if lon < -math.Pi-epsilonRadians || lon > 2*math.Pi+epsilonRadians {
		return "", fmt.Errorf("%w: %v", geodesy.ErrLongitudeRange, g.Lon.Degrees())
	}
	if precision < 0 || precision > mgrsMaxPrecision {
		return "", &geodesy.RangeError{Field: "precision", Value: float64(precision), Reason: "must be in [0, 5]"}
	}
	if lat >= minMGRSNonPolarLat-epsilonRadians && lat < maxMGRSNonPolarLat+epsilonRadians {
		c, err := m.utm.FromGeodetic(g, 0)
		if err != nil {
			return "", err
		}
		return m.fromUTM(c, g, precision)
	}
	c, err := m.ups.FromGeodetic(g)
	if err != nil {
		return "", err
	}
	return m.fromUPS(c, precision)
}

// FromUTM encodes a UTM position.
func (m *MGRS) FromUTM(c UTMCoord, precision int) (string, error) {
	if precision < 0 || precision > mgrsMaxPrecision {
		return "", &geodesy.RangeError{Field: "precision", Value: float64(precision), Reason: "must be in [0, 5]"}
	}
	g, err := m.utm.ToGeodetic(c)
	if err != nil {
		return "", err
	}
	lat := g.Lat.Radians()
	if lat >= minMGRSNonPolarLat-epsilonRadians && lat < maxMGRSNonPolarLat+epsilonRadians {
		return m.fromUTM(c, g, precision)
	}
	pc, err := m.ups.FromGeodetic(g)
	if err != nil {
		return "", err
	}
	return m.fromUPS(pc, precision)
}

func truncate(v float64, precision int) float64 {
	divisor := precisionScale(precision)
	return math.Floor((v+mgrsRoundingMargin)/divisor) * divisor
}

func (m *MGRS) fromUPS(c UPSCoord, precision int) (string, error) {
	easting := truncate(c.Easting, precision)
	northing := truncate(c.Northing, precision)

	var band byte
	switch {
	case c.Hemisphere == North && easting >= upsFalseEasting:
		band = 'Z'
	case c.Hemisphere == North:
		band = 'Y'
	case easting >= upsFalseEasting:
		band = 'B'
	default:
		band = 'A'
	}
	sq, _ := lookupUPSSquare(letter(band))

	var letters [3]int
	letters[0] = letter(band)

	letters[2] = int((northing - sq.falseNorthing) / 100000)
	if letters[2] > letter('H') {
		letters[2]++
	}
	if letters[2] > letter('N') {
		letters[2]++
	}

	letters[1] = letter(sq.ltr2Low) + int((easting-sq.falseEasting)/100000)
	if easting < upsFalseEasting {
		if letters[1] > letter('L') {
			letters[1] += 3
		}
		if letters[1] > letter('U') {
			letters[1] += 2
		}
	} else {
		if letters[1] > letter('C') {
			letters[1] += 2
		}
		if letters[1] > letter('H') {
			letters[1]++
		}
		if letters[1] > letter('L') {
			letters[1] += 3
		}
	}
	return formatMGRS(0, letters, easting, northing, precision)
}

// naturalZone is the six-degree zone of a longitude ignoring the
// Norway and Svalbard exceptions.
func naturalZone(lon float64) int {
	const zoneWidth = 6 * deg
	lon = normalizeLon(lon)
	pad := mgrsRoundingMargin / 6378137.0
	zone := int(31 + (lon+pad)/zoneWidth)
	if zone > 60 {
		zone = 1
	}
	if zone < 1 {
		zone = 1
	}
	return zone
}

func (m *MGRS) fromUTM(c UTMCoord, g coord.Geographic, precision int) (string, error) {
	band, err := LatBand(math.Max(-80.5, math.Min(g.Lat.Degrees(), 84.4999999)))
	if err != nil {
		return "", err
	}

	// MGRS squares follow the natural zone first, then the band
	// exceptions decide by which half of the zone the point lies in.
	if nz := naturalZone(g.Lon.Radians()); c.Zone != nz {
		if c, err = m.utm.FromGeodetic(g, nz); err != nil {
			return "", err
		}
	}
	override := 0
	switch band {
	case 'V':
		if c.Zone == 31 && c.Easting >= utmFalseEasting {
			override = 32
		}
	case 'X':
		switch {
		case c.Zone == 32 && c.Easting < utmFalseEasting:
			override = 31
		case c.Zone == 32, c.Zone == 34 && c.Easting < utmFalseEasting:
			override = 33
		case c.Zone == 34, c.Zone == 36 && c.Easting < utmFalseEasting:
			override = 35
		case c.Zone == 36:
			override = 37
		}
	}
	if override != 0 {
		if c, err = m.utm.FromGeodetic(g, override); err != nil {
			return "", err
		}
	}

	easting := truncate(c.Easting, precision)
	northing := truncate(c.Northing, precision)
	if g.Lat.Degrees() <= 0 && northing == 1e7 {
		northing = 0
	}

	ltr2Low, _, patternOffset := m.gridValues(c.Zone)

	var letters [3]int
	letters[0] = letter(band)

	gridNorthing := math.Mod(northing, 2000000) + patternOffset
	if gridNorthing >= 2000000 {
		gridNorthing -= 2000000
	}
	letters[2] = int(gridNorthing / 100000)
	if letters[2] > letter('H') {
		letters[2]++
	}
	if letters[2] > letter('N') {
		letters[2]++
	}

	letters[1] = ltr2Low + int(easting/100000) - 1
	if ltr2Low == letter('J') && letters[1] > letter('N') {
		letters[1]++
	}
	return formatMGRS(c.Zone, letters, easting, northing, precision)
}

// precisionScale returns the size in meters of the last digit.
func precisionScale(precision int) float64 {
	return math.Pow10(mgrsMaxPrecision - precision)
}

func formatMGRS(zone int, letters [3]int, easting, northing float64, precision int) (string, error) {
	var b strings.Builder
	if zone != 0 {
		fmt.Fprintf(&b, "%02d", zone)
	}
	for _, l := range letters {
		if l < 0 || l > 25 {
			return "", fmt.Errorf("%w: letter index %d", geodesy.ErrGridReference, l)
		}
		b.WriteByte(byte('A' + l))
	}
	divisor := precisionScale(precision)
	digits := func(v float64) int {
		v = math.Mod(v, 100000)
		if v >= 99999.5 {
			v = 99999
		}
		return int((v + 0.499) / divisor)
	}
	fmt.Fprintf(&b, "%.*d%.*d", precision, digits(easting), precision, digits(northing))
	return b.String(), nil
}

type mgrsParts struct {
	zone      int
	letters   [3]int
	easting   float64
	northing  float64
	precision int
}

// parseMGRS splits a grid reference into zone, square letters and
// offsets. Whitespace is ignored and letters are case-insensitive.
func parseMGRS(s string) (mgrsParts, error) {
	s = strings.Join(strings.Fields(s), "")
	var p mgrsParts
	for _, r := range s {
		if r > unicode.MaxASCII || !(unicode.IsDigit(r) || unicode.IsLetter(r)) {
			return p, fmt.Errorf("%w: invalid character %q", geodesy.ErrGridReference, r)
		}
	}
	s = strings.ToUpper(s)

	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i > 2 {
		return p, fmt.Errorf("%w: zone %q has too many digits", geodesy.ErrGridReference, s[:i])
	}
	if i > 0 {
		p.zone, _ = strconv.Atoi(s[:i])
		if p.zone < 1 || p.zone > 60 {
			return p, fmt.Errorf("%w: %d", geodesy.ErrZone, p.zone)
		}
	}

	j := i
	for i < len(s) && !isDigit(s[i]) {
		i++
	}
	if i-j != 3 {
		return p, fmt.Errorf("%w: want 3 letters, got %q", geodesy.ErrGridReference, s[j:i])
	}
	for k := 0; k < 3; k++ {
		c := s[j+k]
		if c == 'I' || c == 'O' {
			return p, fmt.Errorf("%w: letter %c is not used", geodesy.ErrGridReference, c)
		}
		p.letters[k] = letter(c)
	}

	rest := s[i:]
	if len(rest) > 2*mgrsMaxPrecision || len(rest)%2 != 0 {
		return p, fmt.Errorf("%w: odd or excess digits %q", geodesy.ErrGridReference, rest)
	}
	for k := 0; k < len(rest); k++ {
		if !isDigit(rest[k]) {
			return p, fmt.Errorf("%w: unexpected %q after digits", geodesy.ErrGridReference, rest[k:])
		}
	}
	n := len(rest) / 2
	p.precision = n
	if n > 0 {
		east, _ := strconv.Atoi(rest[:n])
		north, _ := strconv.Atoi(rest[n:])
		scale := precisionScale(n)
		p.easting = float64(east) * scale
		p.northing = float64(north) * scale
	}
	return p, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// gridValues returns the column letter range and the row offset of a
// zone's set. Sets 1 to 6 repeat every six zones.
func (m *MGRS) gridValues(zone int) (ltr2Low, ltr2High int, patternOffset float64) {
	set := zone % 6
	if set == 0 {
		set = 6
	}
	switch set {
	case 1, 4:
		ltr2Low, ltr2High = letter('A'), letter('H')
	case 2, 5:
		ltr2Low, ltr2High = letter('J'), letter('R')
	default:
		ltr2Low, ltr2High = letter('S'), letter('Z')
	}
	even := set%2 == 0
	switch {
	case m.aaPattern && even:
		patternOffset = 500000
	case m.aaPattern:
		patternOffset = 0
	case even:
		patternOffset = 1500000
	default:
		patternOffset = 1000000
	}
	return ltr2Low, ltr2High, patternOffset
}

// FromMGRS decodes a grid reference to the south-west corner of the
// square it names.
func (m *MGRS) FromMGRS(s string) (coord.Geographic, error) {
	p, err := parseMGRS(s)
	if err != nil {
		return coord.Geographic{}, err
	}
	if p.zone != 0 {
		c, err := m.toUTM(p)
		if err != nil {
			return coord.Geographic{}, err
		}
		return m.utm.ToGeodetic(c)
	}
	c, err := m.toUPS(p)
	if err != nil {
		return coord.Geographic{}, err
	}
	return m.ups.ToGeodetic(c)
}

// ToUTM decodes a grid reference in the UTM area.
func (m *MGRS) ToUTM(s string) (UTMCoord, error) {
	p, err := parseMGRS(s)
	if err != nil {
		return UTMCoord{}, err
	}
	if p.zone == 0 {
		return UTMCoord{}, fmt.Errorf("%w: %q is a polar reference", geodesy.ErrGridReference, s)
	}
	return m.toUTM(p)
}

func (m *MGRS) toUTM(p mgrsParts) (UTMCoord, error) {
	band := p.letters[0]
	switch {
	case band == letter('X') && (p.zone == 32 || p.zone == 34 || p.zone == 36):
		return UTMCoord{}, fmt.Errorf("%w: zone %d does not exist in band X", geodesy.ErrGridReference, p.zone)
	case band == letter('V') && p.zone == 31 && p.letters[1] > letter('D'):
		return UTMCoord{}, fmt.Errorf("%w: square outside zone 31V", geodesy.ErrGridReference)
	}
	h := North
	if band < letter('N') {
		h = South
	}

	ltr2Low, ltr2High, patternOffset := m.gridValues(p.zone)
	if p.letters[1] < ltr2Low || p.letters[1] > ltr2High || p.letters[2] > letter('V') {
		return UTMCoord{}, fmt.Errorf("%w: square letters not valid in zone %d", geodesy.ErrGridReference, p.zone)
	}

	gridEasting := float64(p.letters[1]-ltr2Low+1) * 100000
	if ltr2Low == letter('J') && p.letters[1] > letter('O') {
		gridEasting -= 100000
	}

	rowNorthing := float64(p.letters[2]) * 100000
	if p.letters[2] > letter('O') {
		rowNorthing -= 100000
	}
	if p.letters[2] > letter('I') {
		rowNorthing -= 100000
	}
	if rowNorthing >= 2000000 {
		rowNorthing -= 2000000
	}

	b, err := lookupBand(band)
	if err != nil {
		return UTMCoord{}, err
	}
	gridNorthing := rowNorthing - patternOffset
	if gridNorthing < 0 {
		gridNorthing += 2000000
	}
	gridNorthing += b.northingOffset
	if gridNorthing < b.minNorthing {
		gridNorthing += 2000000
	}

	c := UTMCoord{
		Zone:       p.zone,
		Band:       byte('A' + band),
		Hemisphere: h,
		Easting:    gridEasting + p.easting,
		Northing:   gridNorthing + p.northing,
	}

	// The square must overlap its latitude band, or straddle the band
	// boundary.
	g, err := m.utm.ToGeodetic(c)
	if err != nil {
		return UTMCoord{}, err
	}
	lat := g.Lat.Degrees()
	border := precisionScale(p.precision) / 100000
	if inBand(b, lat, border) {
		return c, nil
	}
	prev, next := band-1, band+1
	if band == letter('C') {
		prev = band
	}
	if band == letter('X') {
		next = band
	}
	if prev == letter('I') || prev == letter('O') {
		prev--
	}
	if next == letter('I') || next == letter('O') {
		next++
	}
	pb, err := lookupBand(prev)
	if err != nil {
		return UTMCoord{}, err
	}
	nb, err := lookupBand(next)
	if err != nil {
		return UTMCoord{}, err
	}
	if inBand(pb, lat, border) && inBand(nb, lat, border) {
		return c, nil
	}
	return UTMCoord{}, fmt.Errorf("%w: latitude %v is outside band %c", geodesy.ErrGridReference, lat, b.letter)
}

func inBand(b mgrsBand, lat, border float64) bool {
	return b.south-border <= lat && lat <= b.north+border
}

func (m *MGRS) toUPS(p mgrsParts) (UPSCoord, error) {
	sq, ok := lookupUPSSquare(p.letters[0])
	if !ok {
		return UPSCoord{}, fmt.Errorf("%w: band %c is not polar", geodesy.ErrGridReference, byte('A'+p.letters[0]))
	}
	h := South
	if sq.band == 'Y' || sq.band == 'Z' {
		h = North
	}
	l1, l2 := p.letters[1], p.letters[2]
	ltr2Low := letter(sq.ltr2Low)
	switch {
	case l1 < ltr2Low || l1 > letter(sq.ltr2High) || l2 > letter(sq.ltr3High):
		return UPSCoord{}, fmt.Errorf("%w: square letters not valid in band %c", geodesy.ErrGridReference, sq.band)
	case l1 == letter('D'), l1 == letter('E'), l1 == letter('M'), l1 == letter('N'), l1 == letter('V'), l1 == letter('W'):
		return UPSCoord{}, fmt.Errorf("%w: column %c is not used near the poles", geodesy.ErrGridReference, byte('A'+l1))
	}

	gridNorthing := float64(l2)*100000 + sq.falseNorthing
	if l2 > letter('I') {
		gridNorthing -= 100000
	}
	if l2 > letter('O') {
		gridNorthing -= 100000
	}

	gridEasting := float64(l1-ltr2Low)*100000 + sq.falseEasting
	if ltr2Low != letter('A') {
		if l1 > letter('L') {
			gridEasting -= 300000
		}
		if l1 > letter('U') {
			gridEasting -= 200000
		}
	} else {
		if l1 > letter('C') {
			gridEasting -= 200000
		}
		if l1 > letter('I') {
			gridEasting -= 100000
		}
		if l1 > letter('L') {
			gridEasting -= 300000
		}
	}
	return UPSCoord{
		Hemisphere: h,
		Band:       sq.band,
		Easting:    gridEasting + p.easting,
		Northing:   gridNorthing + p.northing,
	}, nil
}
