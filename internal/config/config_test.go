package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/planetsim/internal/production"
	"github.com/talgya/planetsim/internal/world"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, production.DefaultTuning(), cfg.Tuning)
	assert.Equal(t, 0.01, cfg.Tuning.MixChangeSpeed)
	assert.Equal(t, 0.5, cfg.Tuning.PromotedTarget)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planetsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
seed: 7
regions: 4
years: 10
priority: emissions
tuning:
  mix_change_speed: 0.02
`), 0o644))

	t.Setenv("PLANETSIM_YEARS", "25")
	t.Setenv("PLANETSIM_TUNING_BANNED_RATE", "0.2")
	t.Setenv("PLANETSIM_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 4, cfg.Regions)
	assert.Equal(t, 25, cfg.Years)
	assert.Equal(t, production.PriorityEmissions, cfg.Priority)
	assert.Equal(t, 0.02, cfg.Tuning.MixChangeSpeed)
	assert.Equal(t, 0.2, cfg.Tuning.BannedRate)
	assert.Equal(t, 0.5, cfg.Tuning.PromotedTarget)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	gen := cfg.GenConfig()
	assert.Equal(t, int64(7), gen.Seed)
	assert.Equal(t, 4, gen.Regions)
}

func TestParseEnvMap(t *testing.T) {
	cfg := Default()
	require.NoError(t, ParseEnv(&cfg, map[string]string{
		"PLANETSIM_PRIORITY":               "land",
		"PLANETSIM_DB_PATH":                "/tmp/x.db",
		"PLANETSIM_TUNING_PROMOTED_TARGET": "0.6",
		"PLANETSIM_ADMIN_KEY":              "hunter2",
	}))
	assert.Equal(t, production.PriorityLand, cfg.Priority)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, 0.6, cfg.Tuning.PromotedTarget)
	assert.Equal(t, "hunter2", cfg.AdminKey)
	assert.Equal(t, ":8080", cfg.APIAddr)

	require.Error(t, ParseEnv(&cfg, map[string]string{"PLANETSIM_PRIORITY": "vibes"}))
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"regions":    func(c *Config) { c.Regions = 0 },
		"population": func(c *Config) { c.Population = 0 },
		"years":      func(c *Config) { c.Years = -1 },
		"step":       func(c *Config) { c.Tuning.MixChangeSpeed = 0 },
		"banned":     func(c *Config) { c.Tuning.BannedRate = 1 },
		"log level":  func(c *Config) { c.LogLevel = "loud" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestResolveSeed(t *testing.T) {
	cfg := Default()
	cfg.Regions = 4
	require.Zero(t, cfg.Seed)

	seed := cfg.ResolveSeed()
	assert.NotZero(t, seed)
	assert.Equal(t, seed, cfg.Seed)
	assert.Equal(t, seed, cfg.ResolveSeed())
	assert.Equal(t, seed, cfg.GenConfig().Seed)
	assert.Equal(t, world.Generate(cfg.GenConfig()), world.Generate(cfg.GenConfig()))

	cfg.Seed = 7
	assert.Equal(t, int64(7), cfg.ResolveSeed())
}
