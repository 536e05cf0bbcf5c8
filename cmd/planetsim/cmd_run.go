package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/planetsim/internal/engine"
	"github.com/talgya/planetsim/internal/persistence"
	"github.com/talgya/planetsim/internal/production"
)

var runFlags struct {
	years    int
	seed     int64
	dbPath   string
	interval time.Duration
	adopt    []int
	ban      []int
	promote  []int
	resume   string
	quiet    bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation for a number of years",
	Long: "Run generates a world from the content catalog, applies the requested\n" +
		"policies and steps it forward. With --db every year, applied effect\n" +
		"and event is journaled and the final state is saved. --resume continues\n" +
		"a saved run (by id, or \"last\") as a new run with the same seed.",
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.IntVar(&runFlags.years, "years", -1, "years to simulate, 0 = until interrupted (default from config)")
	f.Int64Var(&runFlags.seed, "seed", 0, "world generation seed (default from config)")
	f.StringVar(&runFlags.dbPath, "db", "", "SQLite database to journal the run into")
	f.DurationVar(&runFlags.interval, "interval", 0, "wall time per simulated year")
	f.IntSliceVar(&runFlags.adopt, "adopt", nil, "project ids to adopt before the first year")
	f.IntSliceVar(&runFlags.ban, "ban", nil, "process ids to ban")
	f.IntSliceVar(&runFlags.promote, "promote", nil, "process ids to promote")
	f.StringVar(&runFlags.resume, "resume", "", "continue a saved run from its snapshot (needs --db)")
	f.BoolVar(&runFlags.quiet, "quiet", false, "skip the final mix table")
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("years") {
		cfg.Years = runFlags.years
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = runFlags.seed
	}
	if runFlags.dbPath != "" {
		cfg.DBPath = runFlags.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if runFlags.resume != "" {
		if cfg.DBPath == "" {
			return fmt.Errorf("--resume needs --db")
		}
		if cmd.Flags().Changed("seed") {
			return fmt.Errorf("--seed cannot be combined with --resume")
		}
	}

	// ── Database ──────────────────────────────────────────────────────
	var db *persistence.DB
	if cfg.DBPath != "" {
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create db dir: %w", err)
			}
		}
		db, err = persistence.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		slog.Info("database opened", "path", cfg.DBPath)
	}

	var (
		sim     *engine.Simulation
		resumed persistence.RunInfo
	)
	if runFlags.resume != "" {
		sim, resumed, err = resumeSimulation(db, &cfg, runFlags.resume)
	} else {
		sim, err = newSimulation(&cfg)
	}
	if err != nil {
		return err
	}
	if db != nil {
		if _, err := db.StartRun(cfg.Seed, sim.CurrentYear(), cfg); err != nil {
			return err
		}
		if resumed.ID != "" {
			if err := db.SaveMeta("resumed_from:"+db.RunID(), resumed.ID); err != nil {
				return err
			}
		}
		sim.Journal = db
	}

	// ── Policies ──────────────────────────────────────────────────────
	for _, id := range runFlags.ban {
		if err := sim.SetProcessStatus(id, production.StatusBanned); err != nil {
			return err
		}
	}
	for _, id := range runFlags.promote {
		if err := sim.SetProcessStatus(id, production.StatusPromoted); err != nil {
			return err
		}
	}
	for _, id := range runFlags.adopt {
		if err := sim.AdoptProject(id); err != nil {
			return err
		}
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.NewEngine(sim.CurrentYear())
	eng.Interval = runFlags.interval
	end := eng.Year + cfg.Years
	eng.OnYear = func(year int) error {
		if err := sim.TickYear(year); err != nil {
			return err
		}
		if cfg.Years > 0 && year+1 >= end {
			eng.Stop()
		}
		return nil
	}
	eng.OnDecade = sim.TickDecade

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		sig, ok := <-sigCh
		if !ok {
			return
		}
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	out := cmd.OutOrStdout()
	if resumed.ID != "" {
		fmt.Fprintf(out, "Resumed run %s (seed %d) in %d.\n", resumed.ID, resumed.Seed, sim.CurrentYear())
	}
	fmt.Fprintf(out, "Simulating %s people across %d regions from %d.\n",
		humanize.SIWithDigits(sim.Stats.Population, 2, ""), len(sim.Game.State.World.Regions), sim.CurrentYear())

	runErr := eng.Run()

	if err := sim.FlushEvents(); err != nil {
		slog.Error("flush events failed", "error", err)
	}
	if db != nil {
		if err := db.SaveSnapshot(sim.Game); err != nil {
			slog.Error("final save failed", "error", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	fmt.Fprintf(out, "Stopped in %d: population %s, temperature %+.2f°C, political capital %s.\n",
		sim.CurrentYear(),
		humanize.SIWithDigits(sim.Stats.Population, 2, ""),
		sim.Stats.Temperature,
		humanize.Comma(int64(sim.Game.State.PoliticalCapital)),
	)
	if db != nil {
		fmt.Fprintf(out, "Run %s saved to %s.\n", db.RunID(), cfg.DBPath)
	}
	if !runFlags.quiet {
		renderMix(out, sim)
	}
	return nil
}
