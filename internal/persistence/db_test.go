package persistence

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/planetsim/internal/content"
	"github.com/talgya/planetsim/internal/effects"
	"github.com/talgya/planetsim/internal/engine"
	"github.com/talgya/planetsim/internal/kinds"
	"github.com/talgya/planetsim/internal/production"
	"github.com/talgya/planetsim/internal/world"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "planetsim.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestJournalRequiresRun(t *testing.T) {
	db := openTestDB(t)
	require.Error(t, db.RecordYear(engine.YearStats{}, nil))
	require.Error(t, db.RecordEffects(0, "x", false, []effects.Effect{effects.Migration{}}, nil))
	require.Error(t, db.RecordEvents([]engine.Event{{Year: 1}}))
	require.NoError(t, db.RecordEvents(nil))
}

func TestEffectJournalRoundTrip(t *testing.T) {
	db := openTestDB(t)
	run, err := db.StartRun(42, 2022, map[string]any{"years": 5})
	require.NoError(t, err)
	assert.Equal(t, run, db.RunID())

	region := 3
	fx := []effects.Effect{
		effects.Resource{Resource: kinds.ResourceWater, Change: 0.5},
		effects.OutputForFeature{Feature: production.FeatureIsSolar, Change: 0.1},
	}
	require.NoError(t, db.RecordEffects(2023, "project:0", false, fx, nil))
	require.NoError(t, db.RecordEffects(2024, "event:1", false, []effects.Effect{effects.Migration{}}, &region))
	require.NoError(t, db.RecordEffects(2025, "project:0", true, fx, nil))

	entries, err := db.Journal(run)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, fx[0], entries[0].Effect)
	assert.Equal(t, fx[1], entries[1].Effect)
	assert.Nil(t, entries[0].Region)
	assert.False(t, entries[0].Undo)

	assert.Equal(t, effects.Migration{}, entries[2].Effect)
	require.NotNil(t, entries[2].Region)
	assert.Equal(t, 3, *entries[2].Region)
	assert.Equal(t, "event:1", entries[2].Source)

	assert.True(t, entries[4].Undo)
	assert.Equal(t, 2025, entries[4].Year)

	other, err := db.Journal("someone-else")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestRecordYearAndHistory(t *testing.T) {
	db := openTestDB(t)
	run, err := db.StartRun(1, 2022, nil)
	require.NoError(t, err)

	procs := []production.Process{
		{ID: 0, Name: "Coal Power", Output: kinds.OutputElectricity, MixShare: 0.6, OutputModifier: 1, Status: production.StatusBanned},
		{ID: 1, Name: "Solar PV", Output: kinds.OutputElectricity, MixShare: 0.4, OutputModifier: 1.1},
	}
	require.NoError(t, db.RecordYear(engine.YearStats{Year: 2023, Population: 100, Temperature: 1.2, Shortages: 2}, procs))
	procs[0].MixShare, procs[0].Change = 0.5, production.ChangeContracting
	require.NoError(t, db.RecordYear(engine.YearStats{Year: 2024, Population: 101}, procs))

	years, err := db.Years(run)
	require.NoError(t, err)
	require.Len(t, years, 2)
	assert.Equal(t, engine.YearStats{Year: 2023, Population: 100, Temperature: 1.2, Shortages: 2}, years[0])

	hist, err := db.ProcessHistory(run, 0)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, 0.6, hist[0].MixShare)
	assert.Equal(t, "banned", hist[0].Status)
	assert.Equal(t, "electricity", hist[0].Output)
	assert.Equal(t, "contracting", hist[1].Change)
}

func TestEvents(t *testing.T) {
	db := openTestDB(t)
	run, err := db.StartRun(1, 2022, nil)
	require.NoError(t, err)

	require.NoError(t, db.RecordEvents([]engine.Event{
		{Year: 2023, Description: "first", Category: "event"},
		{Year: 2024, Description: "second", Category: "project"},
	}))
	events, err := db.RecentEvents(run, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "second", events[0].Description)
}

func TestSnapshotRoundTrip(t *testing.T) {
	db := openTestDB(t)
	c, err := content.Default()
	require.NoError(t, err)
	g := c.NewGame(world.SmallTestConfig())
	region := 2
	require.NoError(t, g.EventPool.QueueEvent(1, &region, 3))
	g.State.Processes[3].Status = production.StatusPromoted

	run, err := db.StartRun(42, 2022, nil)
	require.NoError(t, err)
	require.NoError(t, db.SaveSnapshot(g))

	last, err := db.GetMeta("last_run")
	require.NoError(t, err)
	assert.Equal(t, run, last)

	got, err := db.LoadSnapshot(run)
	require.NoError(t, err)
	if diff := cmp.Diff(g, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("snapshot (-want +got):\n%s", diff)
	}

	_, err = db.LoadSnapshot("missing")
	require.Error(t, err)
}

func TestRunLookup(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Run("last")
	require.Error(t, err)

	first, err := db.StartRun(42, 2022, nil)
	require.NoError(t, err)
	second, err := db.StartRun(-7, 2030, nil)
	require.NoError(t, err)
	c, err := content.Default()
	require.NoError(t, err)
	require.NoError(t, db.SaveSnapshot(c.NewGame(world.SmallTestConfig())))

	info, err := db.Run(first)
	require.NoError(t, err)
	assert.Equal(t, int64(42), info.Seed)
	assert.Equal(t, 2022, info.StartYear)
	assert.NotEmpty(t, info.StartedAt)

	info, err = db.Run("last")
	require.NoError(t, err)
	assert.Equal(t, second, info.ID)
	assert.Equal(t, int64(-7), info.Seed)

	_, err = db.Run("missing")
	require.Error(t, err)
}

func TestSimulationWritesThroughJournal(t *testing.T) {
	db := openTestDB(t)
	c, err := content.Default()
	require.NoError(t, err)
	sim := engine.NewSimulation(c.NewGame(world.SmallTestConfig()), c, production.DefaultTuning(), production.PriorityScarcity)
	sim.Journal = db

	run, err := db.StartRun(42, sim.CurrentYear(), nil)
	require.NoError(t, err)

	sim.Game.State.PoliticalCapital = 100
	require.NoError(t, sim.AdoptProject(1))
	for range 3 {
		require.NoError(t, sim.Step())
	}
	require.NoError(t, sim.FlushEvents())

	years, err := db.Years(run)
	require.NoError(t, err)
	assert.Len(t, years, 3)

	entries, err := db.Journal(run)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
	assert.Equal(t, "project:1", entries[0].Source)

	events, err := db.RecentEvents(run, 100)
	require.NoError(t, err)
	assert.NotEmpty(t, events)
}
