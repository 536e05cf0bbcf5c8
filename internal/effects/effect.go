// Package effects defines the closed set of state mutations that game content
// (events, projects, policies) applies to a game, and their inverses.
//
// Effects are plain values. Every variant is a struct implementing Effect;
// the set is sealed so Apply and Unapply can switch over it exhaustively.
package effects

import (
	"fmt"

	"github.com/talgya/planetsim/internal/game"
	"github.com/talgya/planetsim/internal/kinds"
	"github.com/talgya/planetsim/internal/production"
)

// Kind names an effect variant. It is also the variant's wire name.
type Kind string

// Effect is one atomic, named state mutation.
type Effect interface {
	Kind() Kind
	isEffect()
}

// LocalVar is a region-level variable.
type LocalVar uint8

const (
	LocalPopulation LocalVar = iota
	LocalOutlook
	LocalHabitability
)

// WorldVar is a planet-level variable.
type WorldVar uint8

const (
	WorldYear WorldVar = iota
	WorldPopulation
	WorldPopulationGrowth
	WorldEmissions
	WorldExtinctionRate
	WorldOutlook
	WorldTemperature
	WorldWaterStress
	WorldSeaLevelRise
	WorldPrecipitation
)

// PlayerVar is a player metric.
type PlayerVar uint8

const (
	PlayerPoliticalCapital PlayerVar = iota
	PlayerMalthusianPoints
	PlayerHESPoints
	PlayerFALCPoints
)

var (
	localVarNames  = []string{"population", "outlook", "habitability"}
	worldVarNames  = []string{"year", "population", "population_growth", "emissions", "extinction_rate", "outlook", "temperature", "water_stress", "sea_level_rise", "precipitation"}
	playerVarNames = []string{"political_capital", "malthusian_points", "hes_points", "falc_points"}
)

func varName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("unknown(%d)", i)
	}
	return names[i]
}

func varIndex(names []string, kind string, b []byte) (int, error) {
	for i, n := range names {
		if n == string(b) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s %q: %w", kind, string(b), kinds.ErrUnknownName)
}

func (v LocalVar) String() string                { return varName(localVarNames, int(v)) }
func (v LocalVar) MarshalText() ([]byte, error)  { return []byte(v.String()), nil }
func (v WorldVar) String() string                { return varName(worldVarNames, int(v)) }
func (v WorldVar) MarshalText() ([]byte, error)  { return []byte(v.String()), nil }
func (v PlayerVar) String() string               { return varName(playerVarNames, int(v)) }
func (v PlayerVar) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *LocalVar) UnmarshalText(b []byte) error {
	i, err := varIndex(localVarNames, "local variable", b)
	*v = LocalVar(i)
	return err
}

func (v *WorldVar) UnmarshalText(b []byte) error {
	i, err := varIndex(worldVarNames, "world variable", b)
	*v = WorldVar(i)
	return err
}

func (v *PlayerVar) UnmarshalText(b []byte) error {
	i, err := varIndex(playerVarNames, "player variable", b)
	*v = PlayerVar(i)
	return err
}

// Variant kinds.
const (
	KindLocalVariable            Kind = "LocalVariable"
	KindWorldVariable            Kind = "WorldVariable"
	KindPlayerVariable           Kind = "PlayerVariable"
	KindResource                 Kind = "Resource"
	KindDemand                   Kind = "Demand"
	KindOutput                   Kind = "Output"
	KindDemandAmount             Kind = "DemandAmount"
	KindOutputForFeature         Kind = "OutputForFeature"
	KindOutputForProcess         Kind = "OutputForProcess"
	KindFeedstock                Kind = "Feedstock"
	KindAddEvent                 Kind = "AddEvent"
	KindTriggerEvent             Kind = "TriggerEvent"
	KindUnlocksProject           Kind = "UnlocksProject"
	KindUnlocksProcess           Kind = "UnlocksProcess"
	KindProjectRequest           Kind = "ProjectRequest"
	KindProcessRequest           Kind = "ProcessRequest"
	KindMigration                Kind = "Migration"
	KindRegionLeave              Kind = "RegionLeave"
	KindAddRegionFlag            Kind = "AddRegionFlag"
	KindAddFlag                  Kind = "AddFlag"
	KindAutoClick                Kind = "AutoClick"
	KindNPCRelationship          Kind = "NPCRelationship"
	KindModifyIndustryByproducts Kind = "ModifyIndustryByproducts"
	KindModifyIndustryResources  Kind = "ModifyIndustryResources"
	KindModifyEventProbability   Kind = "ModifyEventProbability"
	KindModifyIndustryDemand     Kind = "ModifyIndustryDemand"
	KindDemandOutlookChange      Kind = "DemandOutlookChange"
	KindIncomeOutlookChange      Kind = "IncomeOutlookChange"
	KindProjectCostModifier      Kind = "ProjectCostModifier"
	KindProtectLand              Kind = "ProtectLand"
)

// LocalVariable changes a variable of the scoped region. Population changes
// are percentages; the others are additive.
type LocalVariable struct {
	Var    LocalVar `json:"var" yaml:"var"`
	Change float64  `json:"change" yaml:"change"`
}

// WorldVariable changes a planet-level variable. Population and population
// growth changes are percentages; the others are additive.
type WorldVariable struct {
	Var    WorldVar `json:"var" yaml:"var"`
	Change float64  `json:"change" yaml:"change"`
}

// PlayerVariable changes a player metric by a whole number of units.
type PlayerVariable struct {
	Var    PlayerVar `json:"var" yaml:"var"`
	Change float64   `json:"change" yaml:"change"`
}

// Resource scales a resource stock by 1+Change (0.5 is +50%).
type Resource struct {
	Resource kinds.Resource `json:"resource" yaml:"resource"`
	Change   float64        `json:"change" yaml:"change"`
}

// Demand adds Change to an output's demand modifier.
type Demand struct {
	Output kinds.Output `json:"output" yaml:"output"`
	Change float64      `json:"change" yaml:"change"`
}

// Output adds Change to an output's output modifier.
type Output struct {
	Output kinds.Output `json:"output" yaml:"output"`
	Change float64      `json:"change" yaml:"change"`
}

// DemandAmount adds a flat amount to an output's demand.
type DemandAmount struct {
	Output kinds.Output `json:"output" yaml:"output"`
	Amount float64      `json:"amount" yaml:"amount"`
}

// OutputForFeature adds Change to the output modifier of every process
// carrying Feature.
type OutputForFeature struct {
	Feature production.ProcessFeature `json:"feature" yaml:"feature"`
	Change  float64                   `json:"change" yaml:"change"`
}

// OutputForProcess adds Change to one process's output modifier.
type OutputForProcess struct {
	Process int     `json:"process" yaml:"process"`
	Change  float64 `json:"change" yaml:"change"`
}

// Feedstock scales a feedstock reserve by Factor itself, not by 1+Factor.
type Feedstock struct {
	Feedstock kinds.Feedstock `json:"feedstock" yaml:"feedstock"`
	Factor    float64         `json:"factor" yaml:"factor"`
}

// AddEvent unlocks an event so it can occur.
type AddEvent struct {
	Event int `json:"event" yaml:"event"`
}

// TriggerEvent queues an event to fire in Years years in the scoped region.
type TriggerEvent struct {
	Event int `json:"event" yaml:"event"`
	Years int `json:"years" yaml:"years"`
}

// UnlocksProject makes a project available to the player.
type UnlocksProject struct {
	Project int `json:"project" yaml:"project"`
}

// UnlocksProcess makes a process available to the player and to the mix.
type UnlocksProcess struct {
	Process int `json:"process" yaml:"process"`
}

// ProjectRequest asks the player to start or stop a project.
type ProjectRequest struct {
	Project int  `json:"project" yaml:"project"`
	Active  bool `json:"active" yaml:"active"`
	Bounty  int  `json:"bounty" yaml:"bounty"`
}

// ProcessRequest asks the player to promote or ban a process.
type ProcessRequest struct {
	Process int  `json:"process" yaml:"process"`
	Active  bool `json:"active" yaml:"active"`
	Bounty  int  `json:"bounty" yaml:"bounty"`
}

// Migration moves a wave of the scoped region's population to the regions
// that are more habitable than the world mean.
type Migration struct{}

// RegionLeave marks the scoped region as seceded.
type RegionLeave struct{}

// AddRegionFlag adds a flag to the scoped region.
type AddRegionFlag struct {
	Flag string `json:"flag" yaml:"flag"`
}

// AddFlag sets a game-wide flag.
type AddFlag struct {
	Flag game.Flag `json:"flag" yaml:"flag"`
}

// AutoClick is a presentation hint with no engine-side state.
type AutoClick struct {
	Target int     `json:"target" yaml:"target"`
	Chance float64 `json:"chance" yaml:"chance"`
}

// NPCRelationship adds Change to an NPC's relationship.
type NPCRelationship struct {
	NPC    int     `json:"npc" yaml:"npc"`
	Change float64 `json:"change" yaml:"change"`
}

// ModifyIndustryByproducts scales one byproduct intensity of an industry.
type ModifyIndustryByproducts struct {
	Industry  int             `json:"industry" yaml:"industry"`
	Byproduct kinds.Byproduct `json:"byproduct" yaml:"byproduct"`
	Factor    float64         `json:"factor" yaml:"factor"`
}

// ModifyIndustryResources scales one resource intensity of an industry.
type ModifyIndustryResources struct {
	Industry int            `json:"industry" yaml:"industry"`
	Resource kinds.Resource `json:"resource" yaml:"resource"`
	Factor   float64        `json:"factor" yaml:"factor"`
}

// ModifyEventProbability adds Change to an event's probability modifier.
type ModifyEventProbability struct {
	Event  int     `json:"event" yaml:"event"`
	Change float64 `json:"change" yaml:"change"`
}

// ModifyIndustryDemand adds Change to an industry's demand modifier.
type ModifyIndustryDemand struct {
	Industry int     `json:"industry" yaml:"industry"`
	Change   float64 `json:"change" yaml:"change"`
}

// DemandOutlookChange shifts every region's outlook by
// round(Multiplier * region demand for Output), computed at (un)apply time.
type DemandOutlookChange struct {
	Output     kinds.Output `json:"output" yaml:"output"`
	Multiplier float64      `json:"multiplier" yaml:"multiplier"`
}

// IncomeOutlookChange shifts every region's outlook by
// round(Multiplier * region adjusted income), computed at (un)apply time.
type IncomeOutlookChange struct {
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}

// ProjectCostModifier adds Change to a project's cost modifier.
type ProjectCostModifier struct {
	Project int     `json:"project" yaml:"project"`
	Change  float64 `json:"change" yaml:"change"`
}

// ProtectLand protects an additional Percent of land.
type ProtectLand struct {
	Percent float64 `json:"percent" yaml:"percent"`
}

func (LocalVariable) Kind() Kind            { return KindLocalVariable }
func (WorldVariable) Kind() Kind            { return KindWorldVariable }
func (PlayerVariable) Kind() Kind           { return KindPlayerVariable }
func (Resource) Kind() Kind                 { return KindResource }
func (Demand) Kind() Kind                   { return KindDemand }
func (Output) Kind() Kind                   { return KindOutput }
func (DemandAmount) Kind() Kind             { return KindDemandAmount }
func (OutputForFeature) Kind() Kind         { return KindOutputForFeature }
func (OutputForProcess) Kind() Kind         { return KindOutputForProcess }
func (Feedstock) Kind() Kind                { return KindFeedstock }
func (AddEvent) Kind() Kind                 { return KindAddEvent }
func (TriggerEvent) Kind() Kind             { return KindTriggerEvent }
func (UnlocksProject) Kind() Kind           { return KindUnlocksProject }
func (UnlocksProcess) Kind() Kind           { return KindUnlocksProcess }
func (ProjectRequest) Kind() Kind           { return KindProjectRequest }
func (ProcessRequest) Kind() Kind           { return KindProcessRequest }
func (Migration) Kind() Kind                { return KindMigration }
func (RegionLeave) Kind() Kind              { return KindRegionLeave }
func (AddRegionFlag) Kind() Kind            { return KindAddRegionFlag }
func (AddFlag) Kind() Kind                  { return KindAddFlag }
func (AutoClick) Kind() Kind                { return KindAutoClick }
func (NPCRelationship) Kind() Kind          { return KindNPCRelationship }
func (ModifyIndustryByproducts) Kind() Kind { return KindModifyIndustryByproducts }
func (ModifyIndustryResources) Kind() Kind  { return KindModifyIndustryResources }
func (ModifyEventProbability) Kind() Kind   { return KindModifyEventProbability }
func (ModifyIndustryDemand) Kind() Kind     { return KindModifyIndustryDemand }
func (DemandOutlookChange) Kind() Kind      { return KindDemandOutlookChange }
func (IncomeOutlookChange) Kind() Kind      { return KindIncomeOutlookChange }
func (ProjectCostModifier) Kind() Kind      { return KindProjectCostModifier }
func (ProtectLand) Kind() Kind              { return KindProtectLand }

func (LocalVariable) isEffect()            {}
func (WorldVariable) isEffect()            {}
func (PlayerVariable) isEffect()           {}
func (Resource) isEffect()                 {}
func (Demand) isEffect()                   {}
func (Output) isEffect()                   {}
func (DemandAmount) isEffect()             {}
func (OutputForFeature) isEffect()         {}
func (OutputForProcess) isEffect()         {}
func (Feedstock) isEffect()                {}
func (AddEvent) isEffect()                 {}
func (TriggerEvent) isEffect()             {}
func (UnlocksProject) isEffect()           {}
func (UnlocksProcess) isEffect()           {}
func (ProjectRequest) isEffect()           {}
func (ProcessRequest) isEffect()           {}
func (Migration) isEffect()                {}
func (RegionLeave) isEffect()              {}
func (AddRegionFlag) isEffect()            {}
func (AddFlag) isEffect()                  {}
func (AutoClick) isEffect()                {}
func (NPCRelationship) isEffect()          {}
func (ModifyIndustryByproducts) isEffect() {}
func (ModifyIndustryResources) isEffect()  {}
func (ModifyEventProbability) isEffect()   {}
func (ModifyIndustryDemand) isEffect()     {}
func (DemandOutlookChange) isEffect()      {}
func (IncomeOutlookChange) isEffect()      {}
func (ProjectCostModifier) isEffect()      {}
func (ProtectLand) isEffect()              {}
