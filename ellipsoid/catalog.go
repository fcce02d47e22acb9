package ellipsoid

import (
	"fmt"
	"io"

	"github.com/tzneal/geodesy"
	"gopkg.in/yaml.v3"
)

// CatalogEntry is one ellipsoid definition in a YAML catalog. Either
// InvF or the J2/Omega/GM triple must be given.
type CatalogEntry struct {
	Name  string  `yaml:"name"`
	Code  int     `yaml:"code"`
	A     float64 `yaml:"a"`
	InvF  float64 `yaml:"invf"`
	J2    float64 `yaml:"j2"`
	Omega float64 `yaml:"omega"`
	GM    float64 `yaml:"gm"`
}

// Build constructs the ellipsoid described by c.
func (c CatalogEntry) Build() (Ellipsoid, error) {
	if c.Name == "" {
		return Ellipsoid{}, &geodesy.MissingParameterError{Key: "name"}
	}
	var (
		e   Ellipsoid
		err error
	)
	switch {
	case c.InvF != 0:
		e, err = FromAxisFlattening(c.Name, c.A, c.InvF)
	case c.J2 != 0:
		e, err = FromDynamicFormFactor(c.Name, c.A, c.J2, c.Omega, c.GM)
	default:
		return Ellipsoid{}, &geodesy.MissingParameterError{Key: "invf"}
	}
	if err != nil {
		return Ellipsoid{}, fmt.Errorf("ellipsoid %s: %w", c.Name, err)
	}
	e.code = c.Code
	return e, nil
}

// LoadCatalog reads a YAML document of the form
//
//	ellipsoids:
//	  - name: Hayford
//	    a: 6378388
//	    invf: 297
func LoadCatalog(r io.Reader) ([]Ellipsoid, error) {
	var doc struct {
		Ellipsoids []CatalogEntry `yaml:"ellipsoids"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding ellipsoid catalog: %w", err)
	}
	out := make([]Ellipsoid, 0, len(doc.Ellipsoids))
	for _, c := range doc.Ellipsoids {
		e, err := c.Build()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
