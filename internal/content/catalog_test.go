package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/planetsim/internal/effects"
	"github.com/talgya/planetsim/internal/game"
	"github.com/talgya/planetsim/internal/kinds"
	"github.com/talgya/planetsim/internal/production"
	"github.com/talgya/planetsim/internal/world"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.NotEmpty(t, c.Processes)
	assert.NotEmpty(t, c.Projects)
	assert.NotEmpty(t, c.Events)
	for _, p := range c.Processes {
		assert.Equal(t, 1.0, p.OutputModifier, p.Name)
	}
	for _, e := range c.Events {
		assert.Equal(t, 1.0, e.ProbModifier, e.Name)
	}

	totals := production.MixTotals(c.Processes)
	for out := range kinds.NumOutputs {
		assert.InDelta(t, 1.0, totals[out], 1e-9, kinds.Output(out).String())
	}

	fx, err := c.ProjectEffects(0)
	require.NoError(t, err)
	assert.Equal(t, effects.OutputForFeature{Feature: production.FeatureIsIntermittent, Change: 0.1}, fx[0])

	_, err = c.EventEffects(len(c.Events))
	require.ErrorIs(t, err, game.ErrNotFound)
}

func TestDefaultEffectsApplyCleanly(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	region := 0

	for i := range c.Projects {
		g := c.NewGame(world.SmallTestConfig())
		fx, err := c.ProjectEffects(i)
		require.NoError(t, err)
		require.NoError(t, effects.ApplyAll(g, fx, &region), c.Projects[i].Name)
		require.NoError(t, effects.UnapplyAll(g, fx, &region), c.Projects[i].Name)
	}
	for i := range c.Events {
		g := c.NewGame(world.SmallTestConfig())
		fx, err := c.EventEffects(i)
		require.NoError(t, err)
		require.NoError(t, effects.ApplyAll(g, fx, &region), c.Events[i].Name)
	}
}

func TestNewGame(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	g := c.NewGame(world.SmallTestConfig())
	assert.Len(t, g.State.World.Regions, 6)
	assert.Equal(t, 2022, g.State.World.Year)
	assert.Len(t, g.State.Processes, len(c.Processes))
	assert.Len(t, g.EventPool.Events, len(c.Events))
	assert.Equal(t, c.Resources, g.State.Resources)
	assert.Equal(t, 1.0, g.State.OutputModifier[kinds.OutputFuel])

	// Games do not share process state with the catalog.
	g.State.Processes[0].MixShare = 0
	assert.NotZero(t, c.Processes[0].MixShare)
}

func TestCatalogRegions(t *testing.T) {
	src := `
start_year: 2030
regions:
  - {id: 0, name: A, population: 100, base_habitability: 5}
  - {id: 1, name: B, population: 50, income: high, flags: [coastal]}
`
	c, err := Load(strings.NewReader(src))
	require.NoError(t, err)

	g := c.NewGame(world.SmallTestConfig())
	require.Len(t, g.State.World.Regions, 2)
	assert.Equal(t, 2030, g.State.World.Year)
	assert.Equal(t, world.IncomeHigh, g.State.World.Regions[1].Income)

	g.State.World.Regions[1].Flags[0] = "flooded"
	assert.Equal(t, "coastal", c.Regions[1].Flags[0])
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"id mismatch": `
processes:
  - {id: 1, output: fuel, mix_share: 1}
`,
		"shares": `
processes:
  - {id: 0, output: fuel, mix_share: 0.5}
  - {id: 1, output: fuel, mix_share: 0.2}
`,
		"negative share": `
processes:
  - {id: 0, output: fuel, mix_share: 1.5}
  - {id: 1, output: fuel, mix_share: -0.5}
`,
		"unknown process in project": `
processes:
  - {id: 0, output: fuel, mix_share: 1}
  - {id: 1, output: fuel, mix_share: 0, locked: true}
projects:
  - id: 0
    effects:
      - type: UnlocksProcess
        params: {process: 1}
      - type: OutputForProcess
        params: {process: 99, change: 0.1}
`,
		"unknown npc in event": `
events:
  - id: 0
    effects:
      - type: NPCRelationship
        params: {npc: 0, change: 1}
`,
		"zero factor": `
events:
  - id: 0
    effects:
      - type: Feedstock
        params: {feedstock: oil, factor: 0}
`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(src))
			require.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadDecodeErrors(t *testing.T) {
	_, err := Load(strings.NewReader("processes:\n  - {id: 0, output: plasma}\n"))
	require.ErrorIs(t, err, kinds.ErrUnknownName)

	_, err = Load(strings.NewReader("events:\n  - id: 0\n    effects:\n      - type: Teleport\n"))
	require.ErrorIs(t, err, effects.ErrUnknownKind)

	_, err = Load(strings.NewReader("colour: blue\n"))
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.yaml")
	require.NoError(t, os.WriteFile(path, defaultContent, 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, c.Processes)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
