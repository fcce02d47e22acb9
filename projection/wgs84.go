package projection

import (
	"fmt"

	"github.com/tzneal/geodesy/ellipsoid"
)

// DefaultMGRSConverter is a WGS84 ellipsoid based MGRS converter.
var DefaultMGRSConverter *MGRS

// DefaultUTMConverter is a WGS84 ellipsoid based UTM converter.
var DefaultUTMConverter *UTM

// DefaultUPSConverter is a WGS84 ellipsoid based UPS converter.
var DefaultUPSConverter *UPS

func init() {
	var err error
	DefaultMGRSConverter, err = NewMGRS(ellipsoid.WGS84)
	if err != nil {
		panic(fmt.Sprintf("error constructing WGS84 MGRS converter: %s", err))
	}
	DefaultUTMConverter = DefaultMGRSConverter.utm
	DefaultUPSConverter = DefaultMGRSConverter.ups
}
