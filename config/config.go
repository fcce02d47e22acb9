// Package config loads and holds the process-wide geodesy settings.
//
// Computational packages take their ellipsoid and solver explicitly and
// never read these settings; they exist for the command line tool and
// for callers that want a single configured default.
package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/ellipsoid"
	"github.com/tzneal/geodesy/geodesic"
	"github.com/tzneal/geodesy/unit"
)

// File is the configuration as read from file, flags and environment.
type File struct {
	Ellipsoid   string        `mapstructure:"ellipsoid"`
	LinearUnit  string        `mapstructure:"linear_unit"`
	AngularUnit string        `mapstructure:"angular_unit"`
	Geodesic    string        `mapstructure:"geodesic"`
	Logging     LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, text
}

// Settings are the resolved defaults.
type Settings struct {
	Ellipsoid   ellipsoid.Ellipsoid
	LinearUnit  unit.Linear
	AngularUnit unit.Angular
	Geodesic    geodesic.Method
}

// Defaults sets the default configuration values on v.
func Defaults(v *viper.Viper) {
	v.SetDefault("ellipsoid", "WGS84")
	v.SetDefault("linear_unit", "m")
	v.SetDefault("angular_unit", "deg")
	v.SetDefault("geodesic", "vincenty")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// NewViper returns a viper instance with the defaults set and
// GEODESY_ prefixed environment variables bound.
func NewViper() *viper.Viper {
	v := viper.New()
	Defaults(v)
	v.SetEnvPrefix("GEODESY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration file at path into v and decodes it. An
// empty path searches for geodesy.yaml in the working directory and
// $HOME/.config/geodesy; a missing file is not an error then.
func Load(v *viper.Viper, path string) (*File, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("geodesy")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/geodesy")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &f, nil
}

// Validate checks that every name in f resolves.
func (f *File) Validate() error {
	_, err := f.Settings()
	if err != nil {
		return err
	}
	switch f.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q: %w", f.Logging.Format, geodesy.ErrInvalidInput)
	}
	switch strings.ToLower(f.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q: %w", f.Logging.Level, geodesy.ErrInvalidInput)
	}
	return nil
}

// Settings resolves the names in f.
func (f *File) Settings() (Settings, error) {
	e, ok := ellipsoid.Lookup(f.Ellipsoid)
	if !ok {
		return Settings{}, fmt.Errorf("unknown ellipsoid %q: %w", f.Ellipsoid, geodesy.ErrInvalidInput)
	}
	lu, err := unit.ParseLinear(f.LinearUnit)
	if err != nil {
		return Settings{}, err
	}
	au, err := unit.ParseAngular(f.AngularUnit)
	if err != nil {
		return Settings{}, err
	}
	m, err := geodesic.ParseMethod(f.Geodesic)
	if err != nil {
		return Settings{}, err
	}
	return Settings{Ellipsoid: e, LinearUnit: lu, AngularUnit: au, Geodesic: m}, nil
}

var (
	mu      sync.RWMutex
	current = Settings{
		Ellipsoid:   ellipsoid.WGS84,
		LinearUnit:  unit.Meter,
		AngularUnit: unit.Degree,
		Geodesic:    geodesic.MethodVincenty,
	}
)

// Default returns the process-wide settings.
func Default() Settings {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// SetDefault replaces the process-wide settings.
func SetDefault(s Settings) {
	mu.Lock()
	current = s
	mu.Unlock()
}

// Solver returns a geodesic solver for the default settings.
func Solver() geodesic.Solver {
	s := Default()
	return geodesic.New(s.Geodesic, s.Ellipsoid)
}
