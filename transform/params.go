// Package transform converts coordinates between geodetic datums.
//
// Cartesian transforms follow the linearised similarity model
// target = T + (1+S)·R·source, where R is built from three small
// rotations without trigonometric evaluation. Two rotation sign
// conventions are kept apart: Helmert (position vector, counterclockwise
// positive) and Bursa-Wolf (coordinate frame, clockwise positive).
// Parameters are given in meters, parts per million and arc seconds.
package transform

import (
	"fmt"
	"math"
	"strings"

	"github.com/tzneal/geodesy"
	"gopkg.in/yaml.v3"
)

const (
	arcSecond = math.Pi / (180 * 3600)
	ppm       = 1e-6
)

// Convention selects the sign of the rotation parameters.
type Convention uint8

// Rotation conventions.
const (
	Helmert Convention = iota
	BursaWolf
)

func (c Convention) String() string {
	if c == BursaWolf {
		return "bursa-wolf"
	}
	return "helmert"
}

// ParseConvention parses "helmert" or "bursa-wolf".
func ParseConvention(s string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "helmert", "position-vector", "":
		return Helmert, nil
	case "bursa-wolf", "bursawolf", "coordinate-frame":
		return BursaWolf, nil
	}
	return 0, fmt.Errorf("unknown rotation convention %q: %w", s, geodesy.ErrInvalidInput)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Convention) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := ParseConvention(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (c Convention) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

// Params is a named set of up to ten similarity parameters between a
// source and a target datum. Px, Py and Pz are the rotation point of
// the ten-parameter (Badekas) model.
type Params struct {
	Name       string     `yaml:"name"`
	Source     string     `yaml:"source"`
	Target     string     `yaml:"target"`
	Convention Convention `yaml:"convention"`

	Tx float64 `yaml:"tx"` // meters
	Ty float64 `yaml:"ty"`
	Tz float64 `yaml:"tz"`
	S  float64 `yaml:"s"`  // ppm
	Rx float64 `yaml:"rx"` // arc seconds
	Ry float64 `yaml:"ry"`
	Rz float64 `yaml:"rz"`
	Px float64 `yaml:"px"` // meters
	Py float64 `yaml:"py"`
	Pz float64 `yaml:"pz"`
}

// Count returns the size of the smallest model that holds p: 3, 4, 7
// or 10.
func (p Params) Count() int {
	switch {
	case p.Px != 0 || p.Py != 0 || p.Pz != 0:
		return 10
	case p.Rx != 0 || p.Ry != 0 || p.Rz != 0:
		return 7
	case p.S != 0:
		return 4
	}
	return 3
}

// Inverse returns p with the shift, scale and rotations negated and the
// datums swapped. This is the conventional first-order reversal; use
// Transform.Invert for the exact inverse.
func (p Params) Inverse() Params {
	q := p
	q.Source, q.Target = p.Target, p.Source
	if p.Name != "" {
		q.Name = p.Name + " (inverse)"
	}
	q.Tx, q.Ty, q.Tz = -p.Tx, -p.Ty, -p.Tz
	q.S = -p.S
	q.Rx, q.Ry, q.Rz = -p.Rx, -p.Ry, -p.Rz
	return q
}

// Transform builds the Cartesian transform described by p.
func (p Params) Transform() (*Similarity, error) {
	switch p.Count() {
	case 10:
		return NewBadekas(p)
	case 3:
		return Translation(p.Tx, p.Ty, p.Tz), nil
	}
	if p.Convention == BursaWolf {
		return NewBursaWolf(p)
	}
	return NewHelmert(p)
}

func (p Params) String() string {
	return fmt.Sprintf("%s %s->%s T(%.4f %.4f %.4f) S %.6f ppm R(%.6f %.6f %.6f)\" %s",
		p.Name, p.Source, p.Target, p.Tx, p.Ty, p.Tz, p.S, p.Rx, p.Ry, p.Rz, p.Convention)
}
