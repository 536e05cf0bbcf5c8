package production

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/planetsim/internal/kinds"
)

func genProcesses() []Process {
	return []Process{{
		ID:             0,
		Name:           "Test Process A",
		MixShare:       0.5,
		Output:         kinds.OutputFuel,
		OutputModifier: 1,
		Resources:      kinds.ResourceMap{kinds.ResourceWater: 10},
		Feedstocks:     kinds.FeedstockMap{kinds.FeedstockOil: 1},
	}, {
		ID:             1,
		Name:           "Test Process B",
		MixShare:       0.5,
		Output:         kinds.OutputFuel,
		OutputModifier: 1,
		Resources:      kinds.ResourceMap{kinds.ResourceWater: 10},
		Feedstocks:     kinds.FeedstockMap{kinds.FeedstockOil: 1},
	}, {
		ID:             2,
		Name:           "Test Process C",
		MixShare:       1.0,
		Output:         kinds.OutputElectricity,
		OutputModifier: 1,
		Resources:      kinds.ResourceMap{kinds.ResourceWater: 2},
		Feedstocks:     kinds.FeedstockMap{kinds.FeedstockOil: 1},
	}}
}

func assertNormalized(t *testing.T, processes []Process) {
	t.Helper()
	totals := MixTotals(processes)
	seen := map[kinds.Output]bool{}
	for _, p := range processes {
		seen[p.Output] = true
		assert.GreaterOrEqual(t, p.MixShare, 0.0, "process %d share", p.ID)
		assert.False(t, math.IsNaN(p.MixShare) || math.IsInf(p.MixShare, 0), "process %d share not finite", p.ID)
	}
	for out := range seen {
		assert.InDelta(t, 1.0, totals[out], 1e-9, "output %s", out)
	}
}

func TestUpdateMixesFavoursLessScarceProcess(t *testing.T) {
	processes := genProcesses()
	processes[1].Resources = kinds.ResourceMap{kinds.ResourceWater: 2}
	demand := kinds.OutputMap{kinds.OutputFuel: 100}
	resourceWeights := kinds.ResourceMap{kinds.ResourceWater: 100}

	UpdateMixes(processes, demand, resourceWeights, kinds.FeedstockMap{}, PriorityScarcity)

	// Less water intensive process should be favoured.
	assert.Less(t, processes[0].MixShare, processes[1].MixShare)
	assert.Equal(t, ChangeContracting, processes[0].Change)
	assert.Equal(t, ChangeExpanding, processes[1].Change)
	assert.InDelta(t, 1.0, processes[0].MixShare+processes[1].MixShare, 1e-9)

	// Unrelated process should be unaffected.
	assert.Equal(t, 1.0, processes[2].MixShare)
	assert.Equal(t, ChangeNeutral, processes[2].Change)
}

func TestUpdateMixesKeepsFavouringOverManyTicks(t *testing.T) {
	processes := genProcesses()
	processes[1].Resources = kinds.ResourceMap{kinds.ResourceWater: 2}
	demand := kinds.OutputMap{kinds.OutputFuel: 100}
	resourceWeights := kinds.ResourceMap{kinds.ResourceWater: 100}

	prev := processes[1].MixShare
	for range 20 {
		UpdateMixes(processes, demand, resourceWeights, kinds.FeedstockMap{}, PriorityScarcity)
		assertNormalized(t, processes)
		assert.GreaterOrEqual(t, processes[1].MixShare, prev)
		prev = processes[1].MixShare
	}
	assert.Greater(t, processes[1].MixShare, 0.6)
}

func TestUpdateMixesBanned(t *testing.T) {
	processes := genProcesses()
	processes[0].Status = StatusBanned
	demand := kinds.OutputMap{kinds.OutputFuel: 100}

	UpdateMixes(processes, demand, kinds.ResourceMap{}, kinds.FeedstockMap{}, PriorityScarcity)

	// Unbanned process should be favoured.
	assert.Less(t, processes[0].MixShare, processes[1].MixShare)
	assert.InDelta(t, 0.45/0.96, processes[0].MixShare, 1e-9)
	assertNormalized(t, processes)
}

func TestUpdateMixesBannedDrainsTowardsZero(t *testing.T) {
	processes := genProcesses()
	processes[0].Status = StatusBanned
	demand := kinds.OutputMap{kinds.OutputFuel: 100}

	prev := processes[0].MixShare
	for range 50 {
		UpdateMixes(processes, demand, kinds.ResourceMap{}, kinds.FeedstockMap{}, PriorityScarcity)
		assert.LessOrEqual(t, processes[0].MixShare, prev)
		prev = processes[0].MixShare
	}
	assert.Less(t, processes[0].MixShare, 0.05)
	assertNormalized(t, processes)
}

func TestUpdateMixesPromotedTargetIsFloored(t *testing.T) {
	processes := genProcesses()
	processes[1].Resources = kinds.ResourceMap{kinds.ResourceWater: 2}
	processes[0].Status = StatusPromoted
	demand := kinds.OutputMap{kinds.OutputFuel: 100}
	resourceWeights := kinds.ResourceMap{kinds.ResourceWater: 100}

	// The planner wants A well below one half, but promotion floors it there.
	targets := CalculateMix(processes, demand, resourceWeights, kinds.FeedstockMap{}, PriorityScarcity)
	require.Less(t, targets[0], 0.5)

	UpdateMixes(processes, demand, resourceWeights, kinds.FeedstockMap{}, PriorityScarcity)
	assert.Equal(t, ChangeNeutral, processes[0].Change)
	assert.InDelta(t, 0.5/1.01, processes[0].MixShare, 1e-9)
	assertNormalized(t, processes)
}

func TestUpdateMixesPromotedExpandsFaster(t *testing.T) {
	third := 1.0 / 3
	processes := []Process{
		{ID: 0, Output: kinds.OutputElectricity, MixShare: third, OutputModifier: 1, Status: StatusPromoted},
		{ID: 1, Output: kinds.OutputElectricity, MixShare: third, OutputModifier: 1},
		{ID: 2, Output: kinds.OutputElectricity, MixShare: third, OutputModifier: 1},
	}
	demand := kinds.OutputMap{kinds.OutputElectricity: 50}

	UpdateMixes(processes, demand, kinds.ResourceMap{}, kinds.FeedstockMap{}, PriorityScarcity)

	// Step is max(share*0.1, 0.05) = 0.05.
	assert.Equal(t, ChangeExpanding, processes[0].Change)
	assert.InDelta(t, (third+0.05)/1.05, processes[0].MixShare, 1e-9)
	assert.Greater(t, processes[0].MixShare, processes[1].MixShare)
	assertNormalized(t, processes)
}

func TestUpdateMixesLockedIsFrozen(t *testing.T) {
	processes := []Process{
		{ID: 0, Output: kinds.OutputFuel, MixShare: 0.3, OutputModifier: 1, Locked: true,
			Resources: kinds.ResourceMap{kinds.ResourceWater: 50}},
		{ID: 1, Output: kinds.OutputFuel, MixShare: 0.35, OutputModifier: 1,
			Resources: kinds.ResourceMap{kinds.ResourceWater: 1}},
		{ID: 2, Output: kinds.OutputFuel, MixShare: 0.35, OutputModifier: 1,
			Resources: kinds.ResourceMap{kinds.ResourceWater: 5}},
	}
	demand := kinds.OutputMap{kinds.OutputFuel: 100}
	resourceWeights := kinds.ResourceMap{kinds.ResourceWater: 10}

	for range 5 {
		UpdateMixes(processes, demand, resourceWeights, kinds.FeedstockMap{}, PriorityScarcity)
		assert.InDelta(t, 0.3, processes[0].MixShare, 1e-9)
		assert.Equal(t, ChangeNeutral, processes[0].Change)
		assertNormalized(t, processes)
	}
	assert.Greater(t, processes[1].MixShare, processes[2].MixShare)
}

func TestUpdateMixesLockedRescaledWithSiblings(t *testing.T) {
	processes := []Process{
		{ID: 0, Output: kinds.OutputFuel, MixShare: 0.5, OutputModifier: 1, Locked: true},
		{ID: 1, Output: kinds.OutputFuel, MixShare: 0.5, OutputModifier: 1, Status: StatusBanned},
	}
	demand := kinds.OutputMap{kinds.OutputFuel: 100}

	UpdateMixes(processes, demand, kinds.ResourceMap{}, kinds.FeedstockMap{}, PriorityScarcity)

	// The banned sibling shrinks and the locked share is rescaled to fill the gap.
	assert.InDelta(t, 0.5/0.95, processes[0].MixShare, 1e-9)
	assertNormalized(t, processes)
}

func TestUpdateMixesClampsAtZero(t *testing.T) {
	processes := []Process{
		{ID: 0, Output: kinds.OutputFuel, MixShare: 0.005, OutputModifier: 1,
			Resources: kinds.ResourceMap{kinds.ResourceWater: 1000}},
		{ID: 1, Output: kinds.OutputFuel, MixShare: 0.995, OutputModifier: 1},
	}
	demand := kinds.OutputMap{kinds.OutputFuel: 100}
	resourceWeights := kinds.ResourceMap{kinds.ResourceWater: 100}

	UpdateMixes(processes, demand, resourceWeights, kinds.FeedstockMap{}, PriorityScarcity)

	assert.Equal(t, 0.0, processes[0].MixShare)
	assert.InDelta(t, 1.0, processes[1].MixShare, 1e-12)
}

func TestRenormalizeZeroTotalIsNoop(t *testing.T) {
	processes := []Process{
		{ID: 0, Output: kinds.OutputAnimalCalories, MixShare: 0},
		{ID: 1, Output: kinds.OutputAnimalCalories, MixShare: 0},
		{ID: 2, Output: kinds.OutputFuel, MixShare: 2},
	}

	Renormalize(processes)

	assert.Equal(t, 0.0, processes[0].MixShare)
	assert.Equal(t, 0.0, processes[1].MixShare)
	assert.Equal(t, 1.0, processes[2].MixShare)
}

func TestUpdateMixesEmptyIsNoop(t *testing.T) {
	require.NotPanics(t, func() {
		UpdateMixes(nil, kinds.OutputMap{}, kinds.ResourceMap{}, kinds.FeedstockMap{}, PriorityScarcity)
	})
}

func TestTuningOverridesStep(t *testing.T) {
	processes := genProcesses()
	processes[1].Resources = kinds.ResourceMap{kinds.ResourceWater: 2}
	demand := kinds.OutputMap{kinds.OutputFuel: 100}
	resourceWeights := kinds.ResourceMap{kinds.ResourceWater: 100}

	tuning := DefaultTuning()
	tuning.MixChangeSpeed = 0.1
	tuning.UpdateMixes(processes, demand, resourceWeights, kinds.FeedstockMap{}, PriorityScarcity)

	assert.InDelta(t, 0.4, processes[0].MixShare, 1e-9)
	assert.InDelta(t, 0.6, processes[1].MixShare, 1e-9)
}

func TestProductionOrder(t *testing.T) {
	p := Process{
		Output:         kinds.OutputFuel,
		MixShare:       0.25,
		OutputModifier: 1.2,
		Resources:      kinds.ResourceMap{kinds.ResourceLand: 2},
		Feedstocks:     kinds.FeedstockMap{kinds.FeedstockOil: 0.5},
		Byproducts:     kinds.ByproductMap{kinds.ByproductCO2: 3},
	}
	order := p.ProductionOrder(kinds.OutputMap{kinds.OutputFuel: 100, kinds.OutputElectricity: 10})

	assert.Same(t, &p, order.Process)
	assert.Equal(t, 25.0, order.Amount)
	assert.InDelta(t, 30.0, order.Produced(), 1e-9)
	assert.Equal(t, 50.0, order.Resources()[kinds.ResourceLand])
	assert.Equal(t, 12.5, order.Feedstocks()[kinds.FeedstockOil])
	assert.Equal(t, 75.0, order.Byproducts()[kinds.ByproductCO2])
}

func TestIndustryRequirements(t *testing.T) {
	in := Industry{
		Resources:      kinds.ResourceMap{kinds.ResourceFuel: 2},
		Byproducts:     kinds.ByproductMap{kinds.ByproductCO2: 1},
		Demand:         10,
		DemandModifier: 1.5,
	}
	assert.Equal(t, 30.0, in.RequiredResources()[kinds.ResourceFuel])
	assert.Equal(t, 15.0, in.EmittedByproducts()[kinds.ByproductCO2])
}
