package world

import (
	"fmt"

	"github.com/talgya/planetsim/internal/kinds"
)

// World holds the regions and planet-wide climate state.
type World struct {
	Year    int      `json:"year" yaml:"year"`
	Regions []Region `json:"regions" yaml:"regions"`

	PopulationGrowthModifier float64 `json:"population_growth_modifier" yaml:"population_growth_modifier"`

	// Additive adjustments to yearly emissions and extinction accounting.
	ByproductMods kinds.ByproductMap `json:"byproduct_mods" yaml:"byproduct_mods"`

	Temperature         float64 `json:"temperature" yaml:"temperature"` // °C anomaly
	TemperatureModifier float64 `json:"temperature_modifier" yaml:"temperature_modifier"`
	WaterStress         float64 `json:"water_stress" yaml:"water_stress"`
	SeaLevelRise        float64 `json:"sea_level_rise" yaml:"sea_level_rise"` // m
	Precipitation       float64 `json:"precipitation" yaml:"precipitation"`
}

// Region returns the region with the given id.
func (w *World) Region(id int) (*Region, error) {
	if id < 0 || id >= len(w.Regions) {
		return nil, fmt.Errorf("region %d: %w", id, ErrNotFound)
	}
	return &w.Regions[id], nil
}

// Population is the total population of all regions.
func (w *World) Population() float64 {
	var total float64
	for i := range w.Regions {
		total += w.Regions[i].Population
	}
	return total
}

// Habitability is the mean habitability over all regions.
func (w *World) Habitability() float64 {
	if len(w.Regions) == 0 {
		return 0
	}
	var total float64
	for i := range w.Regions {
		total += w.Regions[i].Habitability()
	}
	return total / float64(len(w.Regions))
}

// Outlook is the mean outlook over all regions.
func (w *World) Outlook() float64 {
	if len(w.Regions) == 0 {
		return 0
	}
	var total float64
	for i := range w.Regions {
		total += w.Regions[i].Outlook
	}
	return total / float64(len(w.Regions))
}

// ChangePopulation multiplies every region's population by factor.
func (w *World) ChangePopulation(factor float64) {
	for i := range w.Regions {
		w.Regions[i].Population *= factor
	}
}

// ChangeOutlook shifts every region's outlook, and so the world mean, by delta.
func (w *World) ChangeOutlook(delta float64) {
	for i := range w.Regions {
		w.Regions[i].Outlook += delta
	}
}

// Demand sums the output demand of every region that has not seceded.
func (w *World) Demand() kinds.OutputMap {
	var total kinds.OutputMap
	for i := range w.Regions {
		if w.Regions[i].Seceded {
			continue
		}
		d := w.Regions[i].Demand()
		for k := range total {
			total[k] += d[k]
		}
	}
	return total
}

// EffectiveTemperature is the temperature anomaly including effect modifiers.
func (w *World) EffectiveTemperature() float64 {
	return w.Temperature + w.TemperatureModifier
}

// UpdateClimate recomputes each region's climate penalty from the current
// temperature anomaly and sea level rise.
func (w *World) UpdateClimate() {
	temp := max(w.EffectiveTemperature(), 0)
	for i := range w.Regions {
		r := &w.Regions[i]
		r.ClimatePenalty = r.Exposure * (temp*1.5 + w.SeaLevelRise*2)
	}
}

// AdvancePopulation grows every region by its income tier's base rate,
// adjusted by the population growth modifier.
func (w *World) AdvancePopulation() {
	for i := range w.Regions {
		r := &w.Regions[i]
		rate := baseGrowth[min(int(r.Income), len(baseGrowth)-1)] * (1 + w.PopulationGrowthModifier)
		r.Population *= 1 + rate
	}
}

// Yearly population growth rate by income tier.
var baseGrowth = [...]float64{
	IncomeLow:         0.025,
	IncomeLowerMiddle: 0.015,
	IncomeUpperMiddle: 0.006,
	IncomeHigh:        0.002,
}
