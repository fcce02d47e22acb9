package angle

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/tzneal/geodesy"
)

// Style is an input/output encoding of an angle value.
type Style uint8

// Angle encodings.
const (
	Degrees   Style = iota // decimal degrees
	Minutes                // decimal arc minutes
	Seconds                // decimal arc seconds
	Radians                // radians
	PackedDM               // DDDMM.mmmm
	PackedDMS              // DDDMMSS.ssss
)

var styleNames = [...]string{
	Degrees:   "deg",
	Minutes:   "min",
	Seconds:   "sec",
	Radians:   "rad",
	PackedDM:  "dm",
	PackedDMS: "dms",
}

func (s Style) String() string {
	if int(s) < len(styleNames) {
		return styleNames[s]
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// ParseStyle returns the style with the given name.
func ParseStyle(name string) (Style, error) {
	for i, n := range styleNames {
		if strings.EqualFold(n, name) {
			return Style(i), nil
		}
	}
	return 0, fmt.Errorf("unknown angle style %q: %w", name, geodesy.ErrInvalidInput)
}

func parseKind(name string) (Kind, error) {
	switch name {
	case "", "plain":
		return KindPlain, nil
	case "latitude":
		return KindLatitude, nil
	case "longitude":
		return KindLongitude, nil
	}
	return 0, fmt.Errorf("unknown angle kind %q: %w", name, geodesy.ErrInvalidInput)
}

type jsonAngle struct {
	Value float64 `json:"value"`
	Style string  `json:"style,omitempty"`
	Kind  string  `json:"kind,omitempty"`
}

// MarshalJSON encodes a as decimal degrees with an explicit style tag.
// Unset angles encode as null.
func (a Angle) MarshalJSON() ([]byte, error) {
	if !a.IsSet() {
		return []byte("null"), nil
	}
	j := jsonAngle{Value: a.deg, Style: Degrees.String()}
	if a.kind != KindPlain {
		j.Kind = a.kind.String()
	}
	return json.Marshal(j)
}

// UnmarshalJSON decodes a value in any style. A missing style means
// decimal degrees.
func (a *Angle) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*a = Angle{deg: math.NaN()}
		return nil
	}
	var j jsonAngle
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	style := Degrees
	if j.Style != "" {
		var err error
		if style, err = ParseStyle(j.Style); err != nil {
			return err
		}
	}
	kind, err := parseKind(j.Kind)
	if err != nil {
		return err
	}
	v, err := Angle{kind: kind}.SetValue(j.Value, style)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
