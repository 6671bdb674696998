// Package config loads h4view settings from a YAML file, H4VIEW_*
// environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/robert-malhotra/go-hdf4/backend"
	"github.com/robert-malhotra/go-hdf4/backend/boltstore"
	"github.com/robert-malhotra/go-hdf4/backend/memstore"
	"github.com/robert-malhotra/go-hdf4/hdf4"
	"github.com/robert-malhotra/go-hdf4/internal/engine"
)

// Keys understood by Load.
const (
	KeyBackend     = "backend"
	KeyLogLevel    = "log.level"
	KeyLogDevel    = "log.development"
	KeyLoadStart   = "load.start"
	KeyLoadMax     = "load.max"
	KeyLoadShowAll = "load.show_all"
	KeyBoltTimeout = "bolt.timeout"
)

// Backend names.
const (
	BackendBolt   = "bolt"
	BackendMemory = "mem"
)

// ErrUnknownBackend is returned for a backend name other than bolt or mem.
var ErrUnknownBackend = errors.New("unknown backend")

// Config is the resolved h4view configuration.
type Config struct {
	Backend string `mapstructure:"backend"`
	Log     struct {
		Level       string `mapstructure:"level"`
		Development bool   `mapstructure:"development"`
	} `mapstructure:"log"`
	Load struct {
		Start   int  `mapstructure:"start"`
		Max     int  `mapstructure:"max"`
		ShowAll bool `mapstructure:"show_all"`
	} `mapstructure:"load"`
	Bolt struct {
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"bolt"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBackend, BackendBolt)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogDevel, false)
	v.SetDefault(KeyLoadStart, 0)
	v.SetDefault(KeyLoadMax, 0)
	v.SetDefault(KeyLoadShowAll, false)
	v.SetDefault(KeyBoltTimeout, time.Second)
}

// Load reads the configuration into v. cfgFile names an explicit file;
// when empty, h4view.yaml is searched in the working directory and in
// $HOME/.h4view. A missing file is not an error.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("h4view")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.h4view")
	}

	v.SetEnvPrefix("H4VIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the backend name and log level.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendBolt, BackendMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if c.Load.Start < 0 || c.Load.Max < 0 {
		return fmt.Errorf("load window %d+%d is negative", c.Load.Start, c.Load.Max)
	}
	return nil
}

// LoadOptions returns the tree discovery options.
func (c *Config) LoadOptions() hdf4.LoadOptions {
	return hdf4.LoadOptions{
		StartMembers: c.Load.Start,
		MaxMembers:   c.Load.Max,
		ShowAll:      c.Load.ShowAll,
	}
}

// Logger builds the logger described by the log section.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

// OpenBackend constructs the configured storage engine.
func (c *Config) OpenBackend(log *zap.Logger) (backend.Backend, error) {
	switch c.Backend {
	case BackendBolt:
		var opts []boltstore.Option
		if c.Bolt.Timeout > 0 {
			opts = append(opts, boltstore.WithTimeout(c.Bolt.Timeout))
		}
		return boltstore.New(log, opts...), nil
	case BackendMemory:
		return memstore.New(engine.WithLogger(log)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
}
