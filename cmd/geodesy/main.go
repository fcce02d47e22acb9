// Command geodesy solves geodetic problems from the command line.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tzneal/geodesy/config"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the state shared by the subcommands once configuration has
// been loaded.
type app struct {
	cfgFile  string
	logger   *slog.Logger
	settings config.Settings
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "geodesy",
		Short: "Ellipsoidal geodesy calculations",
		Long: `geodesy solves the direct and inverse geodetic problems, converts
between geodetic, Earth-centred and grid coordinates, and lists the
reference ellipsoids it knows.

Angles are in decimal degrees, distances and heights in meters.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./geodesy.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "text", "log format (json, text)")
	root.PersistentFlags().String("ellipsoid", "WGS84", "reference ellipsoid")

	root.AddCommand(
		a.inverseCmd(),
		a.directCmd(),
		a.utmCmd(),
		a.mgrsCmd(),
		a.xyzCmd(),
		a.ellipsoidCmd(),
	)
	return root
}

// setup loads the configuration, with flags taking precedence over the
// environment and the config file.
func (a *app) setup(cmd *cobra.Command) error {
	v := config.NewViper()
	flags := cmd.Flags()
	for key, flag := range map[string]string{
		"ellipsoid":      "ellipsoid",
		"logging.level":  "log-level",
		"logging.format": "log-format",
	} {
		if f := flags.Lookup(flag); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("binding flag %s: %w", flag, err)
			}
		}
	}

	cfg, err := config.Load(v, a.cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.logger = setupLogger(cfg.Logging, cmd.ErrOrStderr())

	a.settings, err = cfg.Settings()
	if err != nil {
		return err
	}
	config.SetDefault(a.settings)
	a.logger.Debug("configuration loaded",
		"ellipsoid", a.settings.Ellipsoid.Name(),
		"geodesic", a.settings.Geodesic.String(),
	)
	return nil
}

func setupLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(time.Now().UTC().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
