// Package coord holds the coordinate value types: geographic and
// geodetic positions, Earth-centred rectangular vectors, local
// topocentric frames, projected grid coordinates and generic
// fixed-dimension vectors.
package coord

import (
	"fmt"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/tzneal/geodesy/angle"
)

// HeightSystem tags the reference surface of a height.
type HeightSystem uint8

// Height systems.
const (
	Ellipsoidal HeightSystem = iota
	Orthometric
	Normal
)

func (h HeightSystem) String() string {
	switch h {
	case Orthometric:
		return "orthometric"
	case Normal:
		return "normal"
	}
	return "ellipsoidal"
}

// Geographic is a latitude/longitude pair.
type Geographic struct {
	Lat angle.Angle `json:"lat"`
	Lon angle.Angle `json:"lon"`
}

// NewGeographic returns the normalised position at latDeg, lonDeg.
func NewGeographic(latDeg, lonDeg float64) (Geographic, error) {
	lat, err := angle.NewLatitude(latDeg)
	if err != nil {
		return Geographic{}, err
	}
	lon, err := angle.NewLongitude(lonDeg)
	if err != nil {
		return Geographic{}, err
	}
	return Geographic{Lat: lat, Lon: lon}, nil
}

// LatLon returns a Geographic tagged with latitude and longitude kinds
// without normalising it.
func LatLon(latDeg, lonDeg float64) Geographic {
	return Geographic{Lat: angle.Lat(latDeg), Lon: angle.Lng(lonDeg)}
}

// FromLatLng converts an s2.LatLng.
func FromLatLng(ll s2.LatLng) Geographic {
	return LatLon(ll.Lat.Degrees(), ll.Lng.Degrees())
}

// LatLng converts g to an s2.LatLng.
func (g Geographic) LatLng() s2.LatLng {
	return s2.LatLng{Lat: s1.Angle(g.Lat.Radians()), Lng: s1.Angle(g.Lon.Radians())}
}

// Normalize normalises both components.
func (g Geographic) Normalize() (Geographic, error) {
	lat, err := g.Lat.WithKind(angle.KindLatitude).Normalize()
	if err != nil {
		return g, err
	}
	lon, err := g.Lon.WithKind(angle.KindLongitude).Normalize()
	if err != nil {
		return g, err
	}
	return Geographic{Lat: lat, Lon: lon}, nil
}

// Equal compares both components with the angle tolerance.
func (g Geographic) Equal(o Geographic) bool {
	return g.Lat.Equal(o.Lat) && g.Lon.Equal(o.Lon)
}

func (g Geographic) String() string {
	return fmt.Sprintf("(%.9f, %.9f)", g.Lat.Degrees(), g.Lon.Degrees())
}

// Geodetic is a geographic position with a height.
type Geodetic struct {
	Geographic
	H            float64      `json:"h"`
	HeightSystem HeightSystem `json:"height_system"`
}

// NewGeodetic returns the normalised position with ellipsoidal height h.
func NewGeodetic(latDeg, lonDeg, h float64) (Geodetic, error) {
	g, err := NewGeographic(latDeg, lonDeg)
	if err != nil {
		return Geodetic{}, err
	}
	return Geodetic{Geographic: g, H: h}, nil
}

func (g Geodetic) String() string {
	return fmt.Sprintf("(%.9f, %.9f, %.4f %s)", g.Lat.Degrees(), g.Lon.Degrees(), g.H, g.HeightSystem)
}
