// Package production models the processes that compete to supply each
// output category and the market-like reallocation of their mix shares.
package production

import (
	"fmt"
	"slices"

	"github.com/talgya/planetsim/internal/kinds"
)

// ProcessFeature is a qualitative tag used to scope effects to a subset of processes.
type ProcessFeature uint8

const (
	FeatureBuildsSoil ProcessFeature = iota
	FeatureDegradesSoil
	FeatureUsesPesticides
	FeatureUsesSynFertilizer
	FeatureUsesLivestock
	FeatureIsIntermittent
	FeatureIsNuclear
	FeatureIsSolar
	FeatureIsCCS
	FeatureIsCombustion
)

var featureNames = []string{
	"builds_soil", "degrades_soil", "uses_pesticides", "uses_syn_fertilizer", "uses_livestock",
	"is_intermittent", "is_nuclear", "is_solar", "is_ccs", "is_combustion",
}

// ProcessStatus is the player's policy towards a process.
type ProcessStatus uint8

const (
	StatusNeutral ProcessStatus = iota
	StatusBanned
	StatusPromoted
)

var statusNames = []string{"neutral", "banned", "promoted"}

// ProcessChange is the direction a process moved in the last mix update.
// It is informational only.
type ProcessChange uint8

const (
	ChangeNeutral ProcessChange = iota
	ChangeExpanding
	ChangeContracting
)

var changeNames = []string{"neutral", "expanding", "contracting"}

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("unknown(%d)", i)
	}
	return names[i]
}

func enumIndex(names []string, kind, s string) (int, error) {
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s %q: %w", kind, s, kinds.ErrUnknownName)
}

func (f ProcessFeature) String() string { return enumName(featureNames, int(f)) }

func (f ProcessFeature) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *ProcessFeature) UnmarshalText(b []byte) error {
	i, err := enumIndex(featureNames, "process feature", string(b))
	if err != nil {
		return err
	}
	*f = ProcessFeature(i)
	return nil
}

func (s ProcessStatus) String() string { return enumName(statusNames, int(s)) }

func (s ProcessStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *ProcessStatus) UnmarshalText(b []byte) error {
	i, err := enumIndex(statusNames, "process status", string(b))
	if err != nil {
		return err
	}
	*s = ProcessStatus(i)
	return nil
}

func (c ProcessChange) String() string { return enumName(changeNames, int(c)) }

func (c ProcessChange) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *ProcessChange) UnmarshalText(b []byte) error {
	i, err := enumIndex(changeNames, "process change", string(b))
	if err != nil {
		return err
	}
	*c = ProcessChange(i)
	return nil
}

// Process is one way of producing an output. Processes are created once from
// content and never destroyed; only the policy and mix fields change.
type Process struct {
	ID     int          `json:"id" yaml:"id"`
	Name   string       `json:"name" yaml:"name"`
	Output kinds.Output `json:"output" yaml:"output"`

	// Fraction of the output's demand this process serves. Shares of all
	// processes with the same output sum to 1.
	MixShare float64 `json:"mix_share" yaml:"mix_share"`

	// Baseline 1.0, adjusted additively by effects.
	OutputModifier float64 `json:"output_modifier" yaml:"output_modifier"`

	// Per-unit-output intensities.
	Resources  kinds.ResourceMap  `json:"resources" yaml:"resources"`
	Byproducts kinds.ByproductMap `json:"byproducts" yaml:"byproducts"`
	Feedstocks kinds.FeedstockMap `json:"feedstocks" yaml:"feedstocks"`

	Features []ProcessFeature `json:"features" yaml:"features"`

	// Locked processes are hidden from the player and frozen in the mix.
	Locked bool          `json:"locked" yaml:"locked"`
	Status ProcessStatus `json:"status" yaml:"status"`
	Change ProcessChange `json:"change" yaml:"-"`
}

// ProductionOrder is the amount a process must produce this tick.
type ProductionOrder struct {
	Process *Process
	Amount  float64
}

// ProductionOrder returns the share of demand this process serves.
func (p *Process) ProductionOrder(demand kinds.OutputMap) ProductionOrder {
	return ProductionOrder{
		Process: p,
		Amount:  demand[p.Output] * p.MixShare,
	}
}

func (p *Process) IsBanned() bool { return p.Status == StatusBanned }

func (p *Process) IsPromoted() bool { return p.Status == StatusPromoted }

// HasFeature reports whether the process carries the given tag.
func (p *Process) HasFeature(f ProcessFeature) bool {
	return slices.Contains(p.Features, f)
}

// Produced is the effective output after the process's output modifier.
func (o ProductionOrder) Produced() float64 {
	return o.Amount * o.Process.OutputModifier
}

// Resources returns the resources consumed by this order.
func (o ProductionOrder) Resources() kinds.ResourceMap {
	var out kinds.ResourceMap
	for i, v := range o.Process.Resources {
		out[i] = v * o.Amount
	}
	return out
}

// Feedstocks returns the feedstocks consumed by this order.
func (o ProductionOrder) Feedstocks() kinds.FeedstockMap {
	var out kinds.FeedstockMap
	for i, v := range o.Process.Feedstocks {
		out[i] = v * o.Amount
	}
	return out
}

// Byproducts returns the byproducts emitted by this order.
func (o ProductionOrder) Byproducts() kinds.ByproductMap {
	var out kinds.ByproductMap
	for i, v := range o.Process.Byproducts {
		out[i] = v * o.Amount
	}
	return out
}

// Industry is a non-process consumer of resources (e.g. aviation, concrete).
type Industry struct {
	ID         int                `json:"id" yaml:"id"`
	Name       string             `json:"name" yaml:"name"`
	Resources  kinds.ResourceMap  `json:"resources" yaml:"resources"`
	Byproducts kinds.ByproductMap `json:"byproducts" yaml:"byproducts"`

	// Activity level in abstract units; scaled by DemandModifier (baseline 1.0).
	Demand         float64 `json:"demand" yaml:"demand"`
	DemandModifier float64 `json:"demand_modifier" yaml:"demand_modifier"`
}

// AdjustedDemand is the industry's activity after its demand modifier.
func (in *Industry) AdjustedDemand() float64 {
	return in.Demand * in.DemandModifier
}

// RequiredResources returns the resources this industry consumes per tick.
func (in *Industry) RequiredResources() kinds.ResourceMap {
	var out kinds.ResourceMap
	d := in.AdjustedDemand()
	for i, v := range in.Resources {
		out[i] = v * d
	}
	return out
}

// EmittedByproducts returns the byproducts this industry emits per tick.
func (in *Industry) EmittedByproducts() kinds.ByproductMap {
	var out kinds.ByproductMap
	d := in.AdjustedDemand()
	for i, v := range in.Byproducts {
		out[i] = v * d
	}
	return out
}
