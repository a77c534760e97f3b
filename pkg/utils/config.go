package utils

import (
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
	"golang.org/x/xerrors"
)

// Config holds the ranking parameters. Values come from an optional config
// file, PAGERANK_* env vars and CLI flags bound to the same keys.
type Config struct {
	Damping   float64 `mapstructure:"damping"`
	Samples   int     `mapstructure:"samples"`
	Tolerance float64 `mapstructure:"tolerance"`
	MaxSweeps int     `mapstructure:"max_sweeps"`
	Seed      int64   `mapstructure:"seed"`
	Runs      int     `mapstructure:"runs"`
	Precision int     `mapstructure:"precision"`
	Format    string  `mapstructure:"format"`
	LogLevel  string  `mapstructure:"log_level"`
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("damping", 0.85)
	v.SetDefault("samples", 10000)
	v.SetDefault("tolerance", 0.001)
	v.SetDefault("max_sweeps", 10000)
	v.SetDefault("seed", 1)
	v.SetDefault("runs", 1)
	v.SetDefault("precision", 4)
	v.SetDefault("format", "text")
	v.SetDefault("log_level", "info")
}

// Load applies the defaults and decodes v into a Config.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, xerrors.Errorf("parse: %w", err)
	}
	return cfg, cfg.Validate()
}

// LoadConfiguration reads path (JSON, YAML or TOML, by extension) when it is
// not empty, overlaid with PAGERANK_* environment variables.
func LoadConfiguration(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PAGERANK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, xerrors.Errorf("read %s: %w", path, err)
		}
	}
	return Load(v)
}

// Validate checks the output settings; ranking parameters are checked by the
// estimators themselves.
func (c Config) Validate() error {
	var err error
	if c.Runs < 1 {
		err = multierror.Append(err, xerrors.Errorf("runs must be at least 1, got %d", c.Runs))
	}
	if c.Precision < 0 || c.Precision > 12 {
		err = multierror.Append(err, xerrors.Errorf("precision must be in [0, 12], got %d", c.Precision))
	}
	switch c.Format {
	case "text", "json", "toml":
	default:
		err = multierror.Append(err, xerrors.Errorf("unknown format %q", c.Format))
	}
	return err
}
