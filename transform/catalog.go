package transform

import (
	"fmt"
	"io"
	"sort"

	"github.com/tzneal/geodesy"
	"gopkg.in/yaml.v3"
)

// Catalog is a set of named parameter sets.
type Catalog struct {
	byName map[string]Params
}

// LoadCatalog reads a YAML document of the form
//
//	transformations:
//	  - name: WGS84 to Pulkovo 1942
//	    source: WGS84
//	    target: Pulkovo 1942
//	    convention: bursa-wolf
//	    tx: 23.92
//	    ty: -141.27
//	    tz: -80.9
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var doc struct {
		Transformations []Params `yaml:"transformations"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding transformation catalog: %w", err)
	}
	c := &Catalog{byName: make(map[string]Params, len(doc.Transformations))}
	for _, p := range doc.Transformations {
		if err := c.Add(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add registers p under its name.
func (c *Catalog) Add(p Params) error {
	if p.Name == "" {
		return &geodesy.MissingParameterError{Key: "name"}
	}
	if _, ok := c.byName[p.Name]; ok {
		return fmt.Errorf("duplicate transformation %q: %w", p.Name, geodesy.ErrInvalidInput)
	}
	if c.byName == nil {
		c.byName = make(map[string]Params)
	}
	c.byName[p.Name] = p
	return nil
}

// Lookup returns the parameter set called name.
func (c *Catalog) Lookup(name string) (Params, bool) {
	p, ok := c.byName[name]
	return p, ok
}

// Find returns parameters from source to target, reversing a set
// registered in the other direction when needed.
func (c *Catalog) Find(source, target string) (Params, bool) {
	names := c.Names()
	for _, name := range names {
		if p := c.byName[name]; p.Source == source && p.Target == target {
			return p, true
		}
	}
	for _, name := range names {
		if p := c.byName[name]; p.Source == target && p.Target == source {
			return p.Inverse(), true
		}
	}
	return Params{}, false
}

// Names returns the registered names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.byName))
	for n := range c.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
