// Package geoid interpolates geoid undulations from regular grids.
//
// A grid is addressed by cells: the four nodes surrounding a query point.
// Interpolate combines them bilinearly, so any Grid yields a Model.
package geoid

import (
	"fmt"
	"io"
	"math"

	"github.com/tzneal/geodesy"
	"gopkg.in/yaml.v3"
)

// Model returns the geoid height N above the ellipsoid, in meters, at a
// position given in degrees.
type Model interface {
	Height(lat, lon float64) (float64, error)
}

// Cell is one mesh of a regular grid. Row and Col index its south west
// node; South and West are that node's position in degrees.
type Cell struct {
	Row, Col    int
	South, West float64
	DLat, DLon  float64
}

// Grid is a regular latitude/longitude grid of undulations.
type Grid interface {
	// Boundary returns the cell containing lat, lon.
	Boundary(lat, lon float64) (Cell, error)
	// ReadGrid returns the node values of c ordered south west, south
	// east, north west, north east.
	ReadGrid(c Cell) ([4]float64, error)
}

// Interpolate evaluates g bilinearly at lat, lon.
func Interpolate(g Grid, lat, lon float64) (float64, error) {
	c, err := g.Boundary(lat, lon)
	if err != nil {
		return 0, err
	}
	v, err := g.ReadGrid(c)
	if err != nil {
		return 0, err
	}
	u := (lon - c.West) / c.DLon
	t := (lat - c.South) / c.DLat
	return (1-t)*((1-u)*v[0]+u*v[1]) + t*((1-u)*v[2]+u*v[3]), nil
}

// MemoryGrid holds a whole grid in memory, row by row from the south.
// It is read-only once built and safe for concurrent use.
type MemoryGrid struct {
	South, West float64
	DLat, DLon  float64
	Rows, Cols  int
	values      []float64
}

// NewMemoryGrid builds a grid of rows×cols nodes starting at the south
// west corner south, west with spacing dlat, dlon degrees.
func NewMemoryGrid(south, west, dlat, dlon float64, rows, cols int, values []float64) (*MemoryGrid, error) {
	if rows < 2 || cols < 2 {
		return nil, fmt.Errorf("grid of %dx%d nodes: %w", rows, cols, geodesy.ErrInvalidInput)
	}
	if !(dlat > 0) || !(dlon > 0) {
		return nil, &geodesy.RangeError{Field: "grid spacing", Value: math.Min(dlat, dlon), Reason: "must be positive"}
	}
	if len(values) != rows*cols {
		return nil, &geodesy.DimensionError{Want: rows * cols, Got: len(values)}
	}
	if south < -90 || south+dlat*float64(rows-1) > 90 {
		return nil, &geodesy.RangeError{Field: "latitude", Value: south, Reason: "grid extends beyond a pole"}
	}
	vs := make([]float64, len(values))
	copy(vs, values)
	return &MemoryGrid{South: south, West: west, DLat: dlat, DLon: dlon, Rows: rows, Cols: cols, values: vs}, nil
}

// gridFile is the YAML layout read by Decode.
type gridFile struct {
	South  float64   `yaml:"south"`
	West   float64   `yaml:"west"`
	DLat   float64   `yaml:"dlat"`
	DLon   float64   `yaml:"dlon"`
	Rows   int       `yaml:"rows"`
	Cols   int       `yaml:"cols"`
	Values []float64 `yaml:"values"`
}

// Decode reads a grid from YAML:
//
//	south: 30
//	west: 110
//	dlat: 0.5
//	dlon: 0.5
//	rows: 3
//	cols: 3
//	values: [ ... ]
func Decode(r io.Reader) (*MemoryGrid, error) {
	var f gridFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding geoid grid: %w", err)
	}
	return NewMemoryGrid(f.South, f.West, f.DLat, f.DLon, f.Rows, f.Cols, f.Values)
}

// North returns the latitude of the northernmost row.
func (g *MemoryGrid) North() float64 { return g.South + g.DLat*float64(g.Rows-1) }

// East returns the longitude of the easternmost column.
func (g *MemoryGrid) East() float64 { return g.West + g.DLon*float64(g.Cols-1) }

// Boundary implements Grid. Points on the north or east edge fall in the
// last cell.
func (g *MemoryGrid) Boundary(lat, lon float64) (Cell, error) {
	if math.IsNaN(lat) || lat < g.South || lat > g.North() {
		return Cell{}, &geodesy.RangeError{Field: "latitude", Value: lat, Reason: "outside the geoid grid"}
	}
	if math.IsNaN(lon) || lon < g.West || lon > g.East() {
		return Cell{}, &geodesy.RangeError{Field: "longitude", Value: lon, Reason: "outside the geoid grid"}
	}
	row := min(int((lat-g.South)/g.DLat), g.Rows-2)
	col := min(int((lon-g.West)/g.DLon), g.Cols-2)
	return Cell{
		Row:   row,
		Col:   col,
		South: g.South + float64(row)*g.DLat,
		West:  g.West + float64(col)*g.DLon,
		DLat:  g.DLat,
		DLon:  g.DLon,
	}, nil
}

// ReadGrid implements Grid.
func (g *MemoryGrid) ReadGrid(c Cell) ([4]float64, error) {
	if c.Row < 0 || c.Col < 0 || c.Row >= g.Rows-1 || c.Col >= g.Cols-1 {
		return [4]float64{}, fmt.Errorf("cell %d,%d: %w", c.Row, c.Col, geodesy.ErrInvalidInput)
	}
	at := func(i, j int) float64 { return g.values[i*g.Cols+j] }
	return [4]float64{
		at(c.Row, c.Col), at(c.Row, c.Col+1),
		at(c.Row+1, c.Col), at(c.Row+1, c.Col+1),
	}, nil
}

// Height implements Model.
func (g *MemoryGrid) Height(lat, lon float64) (float64, error) {
	return Interpolate(g, lat, lon)
}
