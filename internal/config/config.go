// Package config loads run configuration from an optional YAML file and
// PLANETSIM_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/talgya/planetsim/internal/production"
	"github.com/talgya/planetsim/internal/world"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "PLANETSIM_"

// ErrInvalid is returned for a configuration that cannot run.
var ErrInvalid = errors.New("invalid config")

// Config holds everything needed to start a run.
type Config struct {
	Seed       int64   `yaml:"seed" env:"SEED"`
	Regions    int     `yaml:"regions" env:"REGIONS"`
	Population float64 `yaml:"population" env:"POPULATION"`
	StartYear  int     `yaml:"start_year" env:"START_YEAR"`
	Years      int     `yaml:"years" env:"YEARS"`

	DBPath      string `yaml:"db_path" env:"DB_PATH"`           // empty = no persistence
	ContentPath string `yaml:"content_path" env:"CONTENT_PATH"` // empty = embedded catalog
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL"`

	APIAddr  string `yaml:"api_addr" env:"API_ADDR"`
	AdminKey string `yaml:"-" json:"-" env:"ADMIN_KEY"` // bearer token for POST endpoints

	Priority production.Priority `yaml:"priority" env:"PRIORITY"`
	Tuning   production.Tuning   `yaml:"tuning" envPrefix:"TUNING_"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	gen := world.DefaultGenConfig()
	return Config{
		Seed:       gen.Seed,
		Regions:    gen.Regions,
		Population: gen.Population,
		StartYear:  gen.StartYear,
		Years:      50,
		LogLevel:   "info",
		APIAddr:    ":8080",
		Priority:   production.PriorityScarcity,
		Tuning:     production.DefaultTuning(),
	}
}

// Load starts from Default, overlays the YAML file at path (if path is not
// empty) and then the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("decode config: %w", err)
		}
	}
	if err := ParseEnv(&cfg, nil); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ParseEnv overlays PLANETSIM_ variables onto cfg. A non-nil environ is
// used instead of the process environment.
func ParseEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks that the configuration can run.
func (c *Config) Validate() error {
	switch {
	case c.Regions < 1:
		return fmt.Errorf("regions %d: %w", c.Regions, ErrInvalid)
	case c.Population <= 0:
		return fmt.Errorf("population %g: %w", c.Population, ErrInvalid)
	case c.Years < 0:
		return fmt.Errorf("years %d: %w", c.Years, ErrInvalid)
	case c.Tuning.MixChangeSpeed <= 0 || c.Tuning.PromotedMinStep <= 0:
		return fmt.Errorf("mix step sizes must be positive: %w", ErrInvalid)
	case c.Tuning.PromotedRate < 0 || c.Tuning.BannedRate < 0 || c.Tuning.BannedRate >= 1:
		return fmt.Errorf("mix rates out of range: %w", ErrInvalid)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return l, fmt.Errorf("log level %q: %w", c.LogLevel, ErrInvalid)
	}
	return l, nil
}

// ResolveSeed replaces a zero Seed with a random non-zero one and returns
// it, so the seed a run was generated from can be recorded.
func (c *Config) ResolveSeed() int64 {
	for c.Seed == 0 {
		c.Seed = rand.Int63()
	}
	return c.Seed
}

// GenConfig returns the world generation parameters.
func (c *Config) GenConfig() world.GenConfig {
	return world.GenConfig{
		Seed:       c.Seed,
		Regions:    c.Regions,
		Population: c.Population,
		StartYear:  c.StartYear,
	}
}
