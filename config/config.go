// Package config loads training-run configuration from defaults, an optional
// YAML file, a .env file and TAXIFARE_* environment variables.
package config

import (
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/YuminosukeSato/taxifare/pkg/errors"
	"github.com/YuminosukeSato/taxifare/pkg/log"
)

// EnvPrefix is prepended to every environment variable, e.g. TAXIFARE_SPLIT_SEED.
const EnvPrefix = "TAXIFARE"

// Config holds all training-run configuration.
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Split    SplitConfig    `mapstructure:"split"`
	Features FeaturesConfig `mapstructure:"features"`
	Log      LogConfig      `mapstructure:"log"`
}

// DataConfig locates the raw trips CSV.
type DataConfig struct {
	// Source is a local path or an http(s) URL.
	Source  string `mapstructure:"source"`
	MaxRows int    `mapstructure:"max_rows"`
}

// SplitConfig controls the hold-out split.
type SplitConfig struct {
	TestSize float64 `mapstructure:"test_size"`
	Seed     uint64  `mapstructure:"seed"`
}

// FeaturesConfig controls feature extraction.
type FeaturesConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.source", "raw_data/train.csv")
	v.SetDefault("data.max_rows", 10000)
	v.SetDefault("split.test_size", 0.2)
	v.SetDefault("split.seed", 42)
	v.SetDefault("features.timezone", "America/New_York")
	v.SetDefault("log.level", "info")
}

// Load reads configuration. A .env file in the working directory is loaded
// first when present. If path is empty, taxifare.yaml is looked up in the
// working directory and is optional; an explicit path must exist.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "load .env")
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("taxifare")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and that the time zone can be loaded.
func (c *Config) Validate() error {
	if c.Data.Source == "" {
		return errors.NewValidationError("data.source", "must not be empty", c.Data.Source)
	}
	if c.Data.MaxRows < 0 {
		return errors.NewValidationError("data.max_rows", "must be >= 0 (0 reads all rows)", c.Data.MaxRows)
	}
	if c.Split.TestSize <= 0 || c.Split.TestSize >= 1 {
		return errors.NewValidationError("split.test_size", "must be in (0, 1)", c.Split.TestSize)
	}
	if _, err := c.Location(); err != nil {
		return errors.NewValidationError("features.timezone", err.Error(), c.Features.Timezone)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.NewValidationError("log.level", err.Error(), c.Log.Level)
	}
	return nil
}

// Location returns the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Features.Timezone)
}
