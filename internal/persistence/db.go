// Package persistence provides SQLite-based storage of simulation runs:
// yearly stats, process mix snapshots, the applied-effect journal and events.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/planetsim/internal/effects"
	"github.com/talgya/planetsim/internal/engine"
	"github.com/talgya/planetsim/internal/game"
	"github.com/talgya/planetsim/internal/production"
)

// DB wraps a SQLite connection. Journal writes go to the current run.
type DB struct {
	conn  *sqlx.DB
	runID string
}

var _ engine.Journal = (*DB)(nil)

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		start_year INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		config_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS years (
		run_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		population REAL NOT NULL,
		temperature REAL NOT NULL,
		emissions REAL NOT NULL,
		outlook REAL NOT NULL,
		habitability REAL NOT NULL,
		shortages INTEGER NOT NULL,
		PRIMARY KEY (run_id, year)
	);

	CREATE TABLE IF NOT EXISTS process_snapshots (
		run_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		process_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		output TEXT NOT NULL,
		mix_share REAL NOT NULL,
		output_modifier REAL NOT NULL,
		status TEXT NOT NULL,
		change TEXT NOT NULL,
		PRIMARY KEY (run_id, year, process_id)
	);

	CREATE TABLE IF NOT EXISTS effect_journal (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		source TEXT NOT NULL,
		undo INTEGER NOT NULL,
		kind TEXT NOT NULL,
		effect_json TEXT NOT NULL,
		region INTEGER
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_journal_run ON effect_journal(run_id, id);
	CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id, year);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// StartRun records a new run and makes it the target of journal writes.
// config is stored as JSON.
func (db *DB) StartRun(seed int64, startYear int, config any) (string, error) {
	cfgJSON, err := json.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	id := uuid.NewString()
	_, err = db.conn.Exec(
		"INSERT INTO runs (id, seed, start_year, started_at, config_json) VALUES (?, ?, ?, ?, ?)",
		id, seed, startYear, time.Now().UTC().Format(time.RFC3339), string(cfgJSON),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	db.runID = id
	slog.Info("run started", "run", id, "seed", seed, "start_year", startYear)
	return id, nil
}

// RunInfo is a row of the runs table.
type RunInfo struct {
	ID        string `db:"id"`
	Seed      int64  `db:"seed"`
	StartYear int    `db:"start_year"`
	StartedAt string `db:"started_at"`
}

// Run looks up a run. The id "last" names the run saved most recently.
func (db *DB) Run(id string) (RunInfo, error) {
	if id == "last" {
		last, err := db.GetMeta("last_run")
		if err != nil {
			return RunInfo{}, fmt.Errorf("last run: %w", err)
		}
		id = last
	}
	var info RunInfo
	err := db.conn.Get(&info, "SELECT id, seed, start_year, started_at FROM runs WHERE id = ?", id)
	if err != nil {
		return RunInfo{}, fmt.Errorf("run %s: %w", id, err)
	}
	return info, nil
}

// RunID returns the current run, or "" before StartRun.
func (db *DB) RunID() string {
	return db.runID
}

func (db *DB) requireRun() error {
	if db.runID == "" {
		return fmt.Errorf("no run started")
	}
	return nil
}

// RecordEffects appends applied (or unapplied, if undo) effects to the journal.
func (db *DB) RecordEffects(year int, source string, undo bool, fx []effects.Effect, region *int) error {
	if err := db.requireRun(); err != nil {
		return err
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO effect_journal
		(run_id, year, source, undo, kind, effect_json, region)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range fx {
		b, err := json.Marshal(effects.Envelope{Effect: e})
		if err != nil {
			return fmt.Errorf("encode %s: %w", e.Kind(), err)
		}
		if _, err := stmt.Exec(db.runID, year, source, undo, string(e.Kind()), string(b), region); err != nil {
			return fmt.Errorf("insert %s: %w", e.Kind(), err)
		}
	}

	return tx.Commit()
}

// RecordYear stores the year's stats and a snapshot of every process.
func (db *DB) RecordYear(stats engine.YearStats, processes []production.Process) error {
	if err := db.requireRun(); err != nil {
		return err
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT OR REPLACE INTO years
		(run_id, year, population, temperature, emissions, outlook, habitability, shortages)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		db.runID, stats.Year, stats.Population, stats.Temperature, stats.Emissions,
		stats.Outlook, stats.Habitability, stats.Shortages,
	)
	if err != nil {
		return fmt.Errorf("insert year %d: %w", stats.Year, err)
	}

	stmt, err := tx.Preparex(`INSERT OR REPLACE INTO process_snapshots
		(run_id, year, process_id, name, output, mix_share, output_modifier, status, change)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range processes {
		_, err := stmt.Exec(
			db.runID, stats.Year, p.ID, p.Name, p.Output.String(),
			p.MixShare, p.OutputModifier, p.Status.String(), p.Change.String(),
		)
		if err != nil {
			return fmt.Errorf("insert process %d: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// RecordEvents appends events to the current run.
func (db *DB) RecordEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}
	if err := db.requireRun(); err != nil {
		return err
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (run_id, year, description, category) VALUES (?, ?, ?, ?)",
			db.runID, e.Year, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

func snapshotKey(runID string) string { return "snapshot:" + runID }

// SaveSnapshot stores the full game state of the current run.
func (db *DB) SaveSnapshot(g *game.Game) error {
	if err := db.requireRun(); err != nil {
		return err
	}
	b, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := db.SaveMeta(snapshotKey(db.runID), string(b)); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if err := db.SaveMeta("last_run", db.runID); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	slog.Info("game state saved", "run", db.runID, "year", g.State.World.Year)
	return nil
}

// LoadSnapshot returns the last saved game state of a run.
func (db *DB) LoadSnapshot(runID string) (*game.Game, error) {
	value, err := db.GetMeta(snapshotKey(runID))
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", runID, err)
	}
	var g game.Game
	if err := json.Unmarshal([]byte(value), &g); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &g, nil
}

// Years returns a run's yearly stats in order.
func (db *DB) Years(runID string) ([]engine.YearStats, error) {
	var years []engine.YearStats
	err := db.conn.Select(&years,
		`SELECT year, population, temperature, emissions, outlook, habitability, shortages
		 FROM years WHERE run_id = ? ORDER BY year`,
		runID,
	)
	return years, err
}

// ProcessSnapshot is one process's mix state at the end of a year.
type ProcessSnapshot struct {
	Year           int     `db:"year"`
	ProcessID      int     `db:"process_id"`
	Name           string  `db:"name"`
	Output         string  `db:"output"`
	MixShare       float64 `db:"mix_share"`
	OutputModifier float64 `db:"output_modifier"`
	Status         string  `db:"status"`
	Change         string  `db:"change"`
}

// ProcessHistory returns one process's snapshots in year order.
func (db *DB) ProcessHistory(runID string, processID int) ([]ProcessSnapshot, error) {
	var snaps []ProcessSnapshot
	err := db.conn.Select(&snaps,
		`SELECT year, process_id, name, output, mix_share, output_modifier, status, change
		 FROM process_snapshots WHERE run_id = ? AND process_id = ? ORDER BY year`,
		runID, processID,
	)
	return snaps, err
}

// JournalEntry is one journaled effect application.
type JournalEntry struct {
	Year   int
	Source string
	Undo   bool
	Effect effects.Effect
	Region *int
}

// Journal returns a run's effect journal in the order it was written.
func (db *DB) Journal(runID string) ([]JournalEntry, error) {
	var rows []struct {
		Year       int    `db:"year"`
		Source     string `db:"source"`
		Undo       bool   `db:"undo"`
		EffectJSON string `db:"effect_json"`
		Region     *int   `db:"region"`
	}
	err := db.conn.Select(&rows,
		`SELECT year, source, undo, effect_json, region
		 FROM effect_journal WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, err
	}

	entries := make([]JournalEntry, len(rows))
	for i, r := range rows {
		var env effects.Envelope
		if err := json.Unmarshal([]byte(r.EffectJSON), &env); err != nil {
			return nil, fmt.Errorf("journal row %d: %w", i, err)
		}
		entries[i] = JournalEntry{Year: r.Year, Source: r.Source, Undo: r.Undo, Effect: env.Effect, Region: r.Region}
	}
	return entries, nil
}

// RecentEvents returns the most recent N events of a run, newest first.
func (db *DB) RecentEvents(runID string, limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT year, description, category FROM events WHERE run_id = ? ORDER BY id DESC LIMIT ?",
		runID, limit,
	)
	return events, err
}
