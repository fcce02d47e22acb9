package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/tzneal/geodesy/angle"
	"github.com/tzneal/geodesy/coord"
	"github.com/tzneal/geodesy/ellipsoid"
	"github.com/tzneal/geodesy/geodesic"
	"github.com/tzneal/geodesy/projection"
)

// floatArgs parses every positional argument as a float.
func floatArgs(args []string, names ...string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, s := range args {
		v, err := cast.ToFloat64E(s)
		if err != nil {
			return nil, fmt.Errorf("parsing %s %q: %w", names[i], s, err)
		}
		out[i] = v
	}
	return out, nil
}

// solver returns the geodesic solver chosen by --method, falling back to
// the configured one.
func (a *app) solver(cmd *cobra.Command) (geodesic.Solver, error) {
	m := a.settings.Geodesic
	if name, _ := cmd.Flags().GetString("method"); name != "" {
		var err error
		if m, err = geodesic.ParseMethod(name); err != nil {
			return nil, err
		}
	}
	s := geodesic.New(m, a.settings.Ellipsoid)
	if v, ok := s.(*geodesic.Vincenty); ok {
		v.Logger = a.logger
	}
	return s, nil
}

func (a *app) inverseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inverse LAT1 LON1 LAT2 LON2",
		Short: "Distance and azimuths between two points",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := floatArgs(args, "lat1", "lon1", "lat2", "lon2")
			if err != nil {
				return err
			}
			p1, err := coord.NewGeographic(v[0], v[1])
			if err != nil {
				return err
			}
			p2, err := coord.NewGeographic(v[2], v[3])
			if err != nil {
				return err
			}
			s, err := a.solver(cmd)
			if err != nil {
				return err
			}
			r, err := s.Inverse(p1, p2)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "distance: %.4f m\n", r.Distance)
			fmt.Fprintf(out, "azimuth: %.9f\n", r.Azimuth.Degrees())
			fmt.Fprintf(out, "reverse azimuth: %.9f\n", r.ReverseAzimuth.Degrees())
			return nil
		},
	}
	cmd.Flags().String("method", "", "geodesic solver (vincenty, bessel)")
	return cmd
}

func (a *app) directCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "direct LAT LON AZIMUTH DISTANCE",
		Short: "Point reached from a start point, azimuth and distance",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := floatArgs(args, "lat", "lon", "azimuth", "distance")
			if err != nil {
				return err
			}
			p, err := coord.NewGeographic(v[0], v[1])
			if err != nil {
				return err
			}
			s, err := a.solver(cmd)
			if err != nil {
				return err
			}
			r, err := s.Direct(p, angle.New(v[2]), v[3])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "lat: %.9f\n", r.Point.Lat.Degrees())
			fmt.Fprintf(out, "lon: %.9f\n", r.Point.Lon.Degrees())
			fmt.Fprintf(out, "reverse azimuth: %.9f\n", r.ReverseAzimuth.Degrees())
			return nil
		},
	}
	cmd.Flags().String("method", "", "geodesic solver (vincenty, bessel)")
	return cmd
}

func (a *app) utmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "utm LAT LON",
		Short: "UTM or UPS grid position of a point",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := floatArgs(args, "lat", "lon")
			if err != nil {
				return err
			}
			g, err := coord.NewGeographic(v[0], v[1])
			if err != nil {
				return err
			}
			zone, _ := cmd.Flags().GetInt("zone")
			e := a.settings.Ellipsoid
			if g.Lat.Degrees() > 84 || g.Lat.Degrees() < -80 {
				ups, err := projection.NewUPS(e)
				if err != nil {
					return err
				}
				c, err := ups.FromGeodetic(g)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), c)
				return nil
			}
			u, err := projection.NewUTM(e)
			if err != nil {
				return err
			}
			c, err := u.FromGeodetic(g, zone)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), c)
			return nil
		},
	}
	cmd.Flags().Int("zone", 0, "force a neighbouring zone")
	return cmd
}

func (a *app) mgrsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mgrs LAT LON | mgrs REFERENCE",
		Short: "Convert between geodetic positions and MGRS references",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := projection.NewMGRS(a.settings.Ellipsoid)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				g, err := m.FromMGRS(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%.9f %.9f\n", g.Lat.Degrees(), g.Lon.Degrees())
				return nil
			}
			v, err := floatArgs(args, "lat", "lon")
			if err != nil {
				return err
			}
			g, err := coord.NewGeographic(v[0], v[1])
			if err != nil {
				return err
			}
			precision, _ := cmd.Flags().GetInt("precision")
			s, err := m.ToMGRS(g, precision)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, s)
			return nil
		},
	}
	cmd.Flags().Int("precision", 5, "digits per coordinate (0-5)")
	return cmd
}

func (a *app) xyzCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "xyz LAT LON H",
		Short: "Earth-centred Cartesian coordinates of a point",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := floatArgs(args, "lat", "lon", "height")
			if err != nil {
				return err
			}
			g, err := coord.NewGeodetic(v[0], v[1], v[2])
			if err != nil {
				return err
			}
			p := coord.GeodeticToXYZ(a.settings.Ellipsoid, g).In(a.settings.LinearUnit)
			fmt.Fprintf(cmd.OutOrStdout(), "%.4f %.4f %.4f %s\n", p.X, p.Y, p.Z, p.Unit)
			return nil
		},
	}
}

func (a *app) ellipsoidCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ellipsoid [NAME]",
		Short: "List the known ellipsoids or describe one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				fmt.Fprintln(out, strings.Join(ellipsoid.Builtin.Names(), "\n"))
				return nil
			}
			e, ok := ellipsoid.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown ellipsoid %q", args[0])
			}
			fmt.Fprintf(out, "name: %s\n", e.Name())
			fmt.Fprintf(out, "epsg: %d\n", e.Code())
			fmt.Fprintf(out, "a: %.4f\n", e.A())
			fmt.Fprintf(out, "b: %.4f\n", e.B())
			fmt.Fprintf(out, "1/f: %.9f\n", e.InvF())
			fmt.Fprintf(out, "e2: %.15f\n", e.E2())
			fmt.Fprintf(out, "mean radius: %.4f\n", e.MeanRadius())
			return nil
		},
	}
}
