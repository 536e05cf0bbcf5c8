// Package game holds the aggregate state that effects and the mix driver mutate.
package game

import (
	"fmt"

	"github.com/talgya/planetsim/internal/kinds"
	"github.com/talgya/planetsim/internal/production"
	"github.com/talgya/planetsim/internal/world"
)

// ErrNotFound is returned for an out-of-range entity id.
var ErrNotFound = world.ErrNotFound

// Flag is a one-way game-wide marker set by content.
type Flag uint8

const (
	FlagElectrified Flag = iota
	FlagEnergyStorage1
	FlagEnergyStorage2
	FlagEnergyStorage3
	FlagVegetarian
	FlagVegan
)

var flagNames = []string{"electrified", "energy_storage_1", "energy_storage_2", "energy_storage_3", "vegetarian", "vegan"}

func (f Flag) String() string {
	if int(f) >= len(flagNames) {
		return fmt.Sprintf("unknown(%d)", f)
	}
	return flagNames[f]
}

func (f Flag) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Flag) UnmarshalText(b []byte) error {
	for i, name := range flagNames {
		if name == string(b) {
			*f = Flag(i)
			return nil
		}
	}
	return fmt.Errorf("flag %q: %w", string(b), kinds.ErrUnknownName)
}

// RequestKind says what a request asks the player to act on.
type RequestKind uint8

const (
	RequestProject RequestKind = iota
	RequestProcess
)

// Request asks the player to start (Active) or stop a project or process,
// paying Bounty political capital when fulfilled.
type Request struct {
	Kind   RequestKind `json:"kind"`
	ID     int         `json:"id"`
	Active bool        `json:"active"`
	Bounty int         `json:"bounty"`
}

// Project is the engine-side bookkeeping of a project.
type Project struct {
	ID           int     `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	Locked       bool    `json:"locked" yaml:"locked"`
	Cost         float64 `json:"cost" yaml:"cost"`
	CostModifier float64 `json:"cost_modifier" yaml:"cost_modifier"` // baseline 1.0
	Active       bool    `json:"active" yaml:"-"`
}

// EffectiveCost is the project's cost after its cost modifier.
func (p *Project) EffectiveCost() float64 {
	return p.Cost * p.CostModifier
}

// NPC is a faction the player has a relationship with.
type NPC struct {
	ID           int     `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	Relationship float64 `json:"relationship" yaml:"relationship"`
}

// State is everything effects may read or write.
type State struct {
	World world.World `json:"world"`

	Resources  kinds.ResourceMap  `json:"resources"`
	Feedstocks kinds.FeedstockMap `json:"feedstocks"`

	Processes  []production.Process  `json:"processes"`
	Industries []production.Industry `json:"industries"`
	Projects   []Project             `json:"projects"`
	NPCs       []NPC                 `json:"npcs"`

	Flags    []Flag    `json:"flags"`
	Requests []Request `json:"requests"`

	PoliticalCapital int `json:"political_capital"`
	MalthusianPoints int `json:"malthusian_points"`
	HESPoints        int `json:"hes_points"`
	FALCPoints       int `json:"falc_points"`

	// Multiplicative, baseline 1.0, adjusted additively by effects.
	OutputDemandModifier kinds.OutputMap `json:"output_demand_modifier"`
	OutputModifier       kinds.OutputMap `json:"output_modifier"`
	// Flat demand added on top of modified demand.
	OutputDemandExtras kinds.OutputMap `json:"output_demand_extras"`

	ProtectedLand float64 `json:"protected_land"` // fraction of land
}

// NewState returns a state with all baseline modifiers set.
func NewState() State {
	var s State
	for i := range s.OutputDemandModifier {
		s.OutputDemandModifier[i] = 1
		s.OutputModifier[i] = 1
	}
	return s
}

// Process returns the process with the given id.
func (s *State) Process(id int) (*production.Process, error) {
	if id < 0 || id >= len(s.Processes) {
		return nil, fmt.Errorf("process %d: %w", id, ErrNotFound)
	}
	return &s.Processes[id], nil
}

// Project returns the project with the given id.
func (s *State) Project(id int) (*Project, error) {
	if id < 0 || id >= len(s.Projects) {
		return nil, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	return &s.Projects[id], nil
}

// Industry returns the industry with the given id.
func (s *State) Industry(id int) (*production.Industry, error) {
	if id < 0 || id >= len(s.Industries) {
		return nil, fmt.Errorf("industry %d: %w", id, ErrNotFound)
	}
	return &s.Industries[id], nil
}

// NPC returns the NPC with the given id.
func (s *State) NPC(id int) (*NPC, error) {
	if id < 0 || id >= len(s.NPCs) {
		return nil, fmt.Errorf("npc %d: %w", id, ErrNotFound)
	}
	return &s.NPCs[id], nil
}

// HasFlag reports whether the flag has been set.
func (s *State) HasFlag(f Flag) bool {
	for _, have := range s.Flags {
		if have == f {
			return true
		}
	}
	return false
}

// Demand is the world's output demand after demand modifiers and extras.
func (s *State) Demand() kinds.OutputMap {
	d := s.World.Demand()
	for i := range d {
		d[i] = d[i]*s.OutputDemandModifier[i] + s.OutputDemandExtras[i]
	}
	return d
}

// Game is the aggregate passed to the effect dispatcher.
type Game struct {
	State     State     `json:"state"`
	EventPool EventPool `json:"event_pool"`
}

// New returns a game with an empty baseline state.
func New() *Game {
	return &Game{State: NewState()}
}
