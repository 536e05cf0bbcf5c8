// Package world provides regions and the planet-wide climate and population state.
package world

import (
	"errors"
	"fmt"

	"github.com/talgya/planetsim/internal/kinds"
)

// ErrNotFound is returned for an entity id that does not exist.
var ErrNotFound = errors.New("not found")

// Income is a region's development tier.
type Income uint8

const (
	IncomeLow Income = iota
	IncomeLowerMiddle
	IncomeUpperMiddle
	IncomeHigh
)

var incomeNames = []string{"low", "lower_middle", "upper_middle", "high"}

func (i Income) String() string {
	if int(i) >= len(incomeNames) {
		return fmt.Sprintf("unknown(%d)", i)
	}
	return incomeNames[i]
}

func (i Income) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

func (i *Income) UnmarshalText(b []byte) error {
	for n, name := range incomeNames {
		if name == string(b) {
			*i = Income(n)
			return nil
		}
	}
	return fmt.Errorf("income %q: %w", string(b), kinds.ErrUnknownName)
}

// Per-capita demand by income tier, in output units per person per year.
var perCapitaDemand = [...]kinds.OutputMap{
	IncomeLow:         {kinds.OutputFuel: 0.2, kinds.OutputElectricity: 0.1, kinds.OutputPlantCalories: 1.0, kinds.OutputAnimalCalories: 0.1},
	IncomeLowerMiddle: {kinds.OutputFuel: 0.5, kinds.OutputElectricity: 0.4, kinds.OutputPlantCalories: 1.1, kinds.OutputAnimalCalories: 0.3},
	IncomeUpperMiddle: {kinds.OutputFuel: 1.0, kinds.OutputElectricity: 1.0, kinds.OutputPlantCalories: 1.2, kinds.OutputAnimalCalories: 0.6},
	IncomeHigh:        {kinds.OutputFuel: 2.0, kinds.OutputElectricity: 2.5, kinds.OutputPlantCalories: 1.3, kinds.OutputAnimalCalories: 1.0},
}

// Region is a geographic subdivision targeted by region-scoped effects.
type Region struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`

	Population float64 `json:"population" yaml:"population"`
	Outlook    float64 `json:"outlook" yaml:"outlook"`

	BaseHabitability float64 `json:"base_habitability" yaml:"base_habitability"`
	// Sensitivity to warming and sea level rise, 0.0–1.0.
	Exposure       float64 `json:"exposure" yaml:"exposure"`
	ClimatePenalty float64 `json:"climate_penalty" yaml:"-"`

	Income      Income  `json:"income" yaml:"income"`
	Development float64 `json:"development" yaml:"development"` // 0.0–1.0 progress to the next tier

	Seceded bool     `json:"seceded" yaml:"seceded"`
	Flags   []string `json:"flags" yaml:"flags"`
}

// Habitability is the base habitability less the current climate penalty.
func (r *Region) Habitability() float64 {
	return r.BaseHabitability - r.ClimatePenalty
}

// AdjustedIncome is the income tier plus progress towards the next one.
func (r *Region) AdjustedIncome() float64 {
	return float64(r.Income) + r.Development
}

// Demand is the region's yearly demand for each output. Per-capita demand
// is interpolated between the current and next income tier by development.
func (r *Region) Demand() kinds.OutputMap {
	cur := perCapitaDemand[min(int(r.Income), len(perCapitaDemand)-1)]
	next := perCapitaDemand[min(int(r.Income)+1, len(perCapitaDemand)-1)]
	var out kinds.OutputMap
	for i := range out {
		perCapita := cur[i] + (next[i]-cur[i])*r.Development
		out[i] = perCapita * r.Population
	}
	return out
}
