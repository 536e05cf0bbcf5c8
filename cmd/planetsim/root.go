package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/talgya/planetsim/internal/config"
	"github.com/talgya/planetsim/internal/content"
	"github.com/talgya/planetsim/internal/engine"
	"github.com/talgya/planetsim/internal/persistence"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath  string
	contentPath string
	logLevel    string
}

var rootCmd = &cobra.Command{
	Use:   "planetsim",
	Short: "Planetary production and policy simulation",
	Long: "planetsim steps a world of regions, production processes and policy\n" +
		"projects forward one year at a time, converging each output's process\n" +
		"mix towards the cheapest plan under current scarcity.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.configPath, "config", "", "YAML config file (PLANETSIM_* env vars override it)")
	f.StringVar(&rootFlags.contentPath, "content", "", "content catalog YAML (default: embedded catalog)")
	f.StringVar(&rootFlags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(mixCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

// loadConfig reads the config file and environment, applies the persistent
// flags on top and installs the default logger.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(rootFlags.configPath)
	if err != nil {
		return cfg, err
	}
	if rootFlags.contentPath != "" {
		cfg.ContentPath = rootFlags.contentPath
	}
	if rootFlags.logLevel != "" {
		cfg.LogLevel = rootFlags.logLevel
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return cfg, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return cfg, nil
}

func loadCatalog(cfg config.Config) (*content.Catalog, error) {
	if cfg.ContentPath == "" {
		return content.Default()
	}
	c, err := content.LoadFile(cfg.ContentPath)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	slog.Info("content loaded", "path", cfg.ContentPath,
		"processes", len(c.Processes), "projects", len(c.Projects), "events", len(c.Events))
	return c, nil
}

// newSimulation builds a fresh game from the catalog and wraps it. A zero
// seed is resolved first so cfg records the seed the world came from.
func newSimulation(cfg *config.Config) (*engine.Simulation, error) {
	catalog, err := loadCatalog(*cfg)
	if err != nil {
		return nil, err
	}
	seed := cfg.ResolveSeed()
	slog.Info("generating world", "seed", seed, "regions", cfg.Regions)
	g := catalog.NewGame(cfg.GenConfig())
	return engine.NewSimulation(g, catalog, cfg.Tuning, cfg.Priority), nil
}

// resumeSimulation continues a saved run from its last snapshot, taking the
// run's seed into cfg.
func resumeSimulation(db *persistence.DB, cfg *config.Config, runID string) (*engine.Simulation, persistence.RunInfo, error) {
	info, err := db.Run(runID)
	if err != nil {
		return nil, info, err
	}
	catalog, err := loadCatalog(*cfg)
	if err != nil {
		return nil, info, err
	}
	g, err := db.LoadSnapshot(info.ID)
	if err != nil {
		return nil, info, err
	}
	cfg.Seed = info.Seed
	slog.Info("resuming run", "run", info.ID, "seed", info.Seed, "year", g.State.World.Year)
	return engine.NewSimulation(g, catalog, cfg.Tuning, cfg.Priority), info, nil
}
