package ellipsoid

import (
	"fmt"
	"sort"
	"strings"
)

// Named reference ellipsoids.
var (
	WGS84             = mustDefine(7030, "WGS84", 6378137, 298.257223563)
	GRS80             = mustDefineNormal(7019, "GRS80", 6378137, 108263e-8, 7292115e-11, 3986005e8)
	CGCS2000          = mustDefine(1024, "CGCS2000", 6378137, 298.257222101)
	WGS72             = mustDefine(7043, "WGS72", 6378135, 298.26)
	Krassovsky1940    = mustDefine(7024, "Krassovsky1940", 6378245, 298.3)
	Xian1980          = mustDefine(7049, "Xian1980", 6378140, 298.257)
	Bessel1841        = mustDefine(7004, "Bessel1841", 6377397.155, 299.1528128)
	Clarke1866        = mustDefine(7008, "Clarke1866", 6378206.4, 294.9786982)
	Clarke1880        = mustDefine(7012, "Clarke1880", 6378249.145, 293.465)
	International1924 = mustDefine(7022, "International1924", 6378388, 297)
	Airy1830          = mustDefine(7001, "Airy1830", 6377563.396, 299.3249646)
)

func mustDefine(code int, name string, a, invF float64) Ellipsoid {
	e, err := FromAxisFlattening(name, a, invF)
	if err != nil {
		panic(fmt.Sprintf("error constructing %s ellipsoid: %s", name, err))
	}
	e.code = code
	return e
}

func mustDefineNormal(code int, name string, a, j2, omega, gm float64) Ellipsoid {
	e, err := FromDynamicFormFactor(name, a, j2, omega, gm)
	if err != nil {
		panic(fmt.Sprintf("error constructing %s ellipsoid: %s", name, err))
	}
	e.code = code
	return e
}

// Registry is a read-only lookup of ellipsoids by name and EPSG code.
type Registry struct {
	byName map[string]Ellipsoid
	byCode map[int]Ellipsoid
}

// NewRegistry indexes the given ellipsoids. Later entries replace earlier
// ones with the same name or code.
func NewRegistry(es ...Ellipsoid) *Registry {
	r := &Registry{
		byName: make(map[string]Ellipsoid, len(es)),
		byCode: make(map[int]Ellipsoid, len(es)),
	}
	for _, e := range es {
		r.byName[strings.ToUpper(e.name)] = e
		if e.code != 0 {
			r.byCode[e.code] = e
		}
	}
	return r
}

// With returns a registry holding r's entries plus es.
func (r *Registry) With(es ...Ellipsoid) *Registry {
	all := make([]Ellipsoid, 0, len(r.byName)+len(es))
	for _, e := range r.byName {
		all = append(all, e)
	}
	return NewRegistry(append(all, es...)...)
}

// Lookup finds an ellipsoid by name, case-insensitively.
func (r *Registry) Lookup(name string) (Ellipsoid, bool) {
	e, ok := r.byName[strings.ToUpper(name)]
	return e, ok
}

// LookupCode finds an ellipsoid by EPSG code.
func (r *Registry) LookupCode(code int) (Ellipsoid, bool) {
	e, ok := r.byCode[code]
	return e, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for _, e := range r.byName {
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}

// Builtin holds the named ellipsoids of this package.
var Builtin = NewRegistry(WGS84, GRS80, CGCS2000, WGS72, Krassovsky1940, Xian1980,
	Bessel1841, Clarke1866, Clarke1880, International1924, Airy1830)

// Lookup finds a built-in ellipsoid by name.
func Lookup(name string) (Ellipsoid, bool) { return Builtin.Lookup(name) }
