package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/planetsim/internal/persistence"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestRunThenHistory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs", "planetsim.db")

	out := execute(t, "run", "--log-level", "warn", "--years", "3", "--db", dbPath, "--ban", "0", "--promote", "3")
	assert.Contains(t, out, "Simulating")
	assert.Contains(t, out, "saved to "+dbPath)
	assert.Contains(t, out, "Coal Power")
	assert.Contains(t, out, "banned")

	out = execute(t, "history", "--log-level", "warn", "--db", dbPath, "--events", "1000")
	assert.Contains(t, out, "Run ")
	assert.Contains(t, out, "Population")
	assert.Contains(t, out, "Coal Power is now banned")

	out = execute(t, "history", "--log-level", "warn", "--db", dbPath, "--process", "0")
	assert.Contains(t, out, "Coal Power (electricity)")
	assert.Contains(t, out, "contracting")
}

func lastRun(t *testing.T, dbPath string) persistence.RunInfo {
	t.Helper()
	db, err := persistence.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()
	info, err := db.Run("last")
	require.NoError(t, err)
	return info
}

func TestRunRecordsSeedAndResumes(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "planetsim.db")
	t.Cleanup(func() { runFlags.resume, runFlags.quiet = "", false })

	execute(t, "run", "--log-level", "warn", "--years", "3", "--db", dbPath, "--quiet")
	first := lastRun(t, dbPath)
	assert.NotZero(t, first.Seed)

	out := execute(t, "run", "--log-level", "warn", "--years", "2", "--db", dbPath, "--resume", "last", "--quiet")
	assert.Contains(t, out, fmt.Sprintf("Resumed run %s (seed %d) in %d.", first.ID, first.Seed, first.StartYear+3))
	assert.Contains(t, out, fmt.Sprintf("Stopped in %d", first.StartYear+5))

	second := lastRun(t, dbPath)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Seed, second.Seed)
	assert.Equal(t, first.StartYear+3, second.StartYear)
}

func TestResumeNeedsDB(t *testing.T) {
	rootCmd.SetArgs([]string{"run", "--log-level", "warn", "--resume", "last", "--db", ""})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() { runFlags.resume = "" })
	require.ErrorContains(t, rootCmd.Execute(), "--resume needs --db")
}

func TestMixAfterYears(t *testing.T) {
	out := execute(t, "mix", "--log-level", "warn", "--years", "2", "--markdown")
	assert.Contains(t, out, "| ID |")
	assert.Contains(t, out, "Solar PV")
	assert.NotContains(t, out, "Fusion")
	assert.Contains(t, out, "plant_calories")
}
