package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/planetsim/internal/api"
	"github.com/talgya/planetsim/internal/engine"
	"github.com/talgya/planetsim/internal/persistence"
)

var serveFlags struct {
	addr     string
	dbPath   string
	interval time.Duration
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the simulation continuously behind the HTTP API",
	Long: "Serve steps the simulation in real time and exposes its state on\n" +
		"/api/v1/*. POST endpoints (adopt/revoke projects, process policy,\n" +
		"firing events) require PLANETSIM_ADMIN_KEY as a bearer token.",
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.addr, "addr", "", "listen address (default from config)")
	f.StringVar(&serveFlags.dbPath, "db", "", "SQLite database to journal the run into")
	f.DurationVar(&serveFlags.interval, "interval", 5*time.Second, "wall time per simulated year")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveFlags.addr != "" {
		cfg.APIAddr = serveFlags.addr
	}
	if serveFlags.dbPath != "" {
		cfg.DBPath = serveFlags.dbPath
	}
	if cfg.AdminKey == "" {
		slog.Warn("PLANETSIM_ADMIN_KEY not set, admin POST endpoints will be disabled")
	}

	sim, err := newSimulation(&cfg)
	if err != nil {
		return err
	}

	// ── Database ──────────────────────────────────────────────────────
	var db *persistence.DB
	if cfg.DBPath != "" {
		db, err = persistence.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		if _, err := db.StartRun(cfg.Seed, sim.CurrentYear(), cfg); err != nil {
			return err
		}
		sim.Journal = db
	}

	// ── Engine + HTTP API ─────────────────────────────────────────────
	eng := engine.NewEngine(sim.CurrentYear())
	eng.Interval = serveFlags.interval

	server := &api.Server{
		Sim:      sim,
		Eng:      eng,
		DB:       db,
		Addr:     cfg.APIAddr,
		AdminKey: cfg.AdminKey,
	}
	eng.OnYear = server.Guard(sim.TickYear)
	eng.OnDecade = server.Guard(func(year int) error {
		if err := sim.TickDecade(year); err != nil {
			return err
		}
		if db != nil {
			return db.SaveSnapshot(sim.Game)
		}
		return nil
	})
	server.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "API: http://localhost%s/api/v1/status\n", cfg.APIAddr)
	runErr := eng.Run()

	final := server.Guard(func(int) error {
		if err := sim.FlushEvents(); err != nil {
			return err
		}
		if db != nil {
			return db.SaveSnapshot(sim.Game)
		}
		return nil
	})
	if err := final(eng.Year); err != nil {
		slog.Error("final save failed", "error", err)
	}
	return runErr
}
