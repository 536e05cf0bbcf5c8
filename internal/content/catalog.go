// Package content loads the game content catalog (processes, industries,
// projects, events, NPCs, starting stocks) and builds a Game from it.
package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/talgya/planetsim/internal/effects"
	"github.com/talgya/planetsim/internal/game"
	"github.com/talgya/planetsim/internal/kinds"
	"github.com/talgya/planetsim/internal/production"
	"github.com/talgya/planetsim/internal/world"
)

//go:embed default_content.yaml
var defaultContent []byte

// ErrInvalid is returned for a catalog that cannot build a game.
var ErrInvalid = errors.New("invalid content")

// ProjectDef is a project and the effects it has while active.
type ProjectDef struct {
	game.Project `yaml:",inline"`
	Effects      []effects.Envelope `yaml:"effects"`
}

// EventDef is an event and the effects it applies when it fires.
type EventDef struct {
	game.Event `yaml:",inline"`
	Effects    []effects.Envelope `yaml:"effects"`
}

// Catalog is the full content set. Entity ids must equal their index.
type Catalog struct {
	// Regions are generated from the seed when none are listed.
	Regions   []world.Region `yaml:"regions"`
	StartYear int            `yaml:"start_year"`

	Resources  kinds.ResourceMap  `yaml:"resources"`
	Feedstocks kinds.FeedstockMap `yaml:"feedstocks"`

	Processes  []production.Process  `yaml:"processes"`
	Industries []production.Industry `yaml:"industries"`
	Projects   []ProjectDef          `yaml:"projects"`
	Events     []EventDef            `yaml:"events"`
	NPCs       []game.NPC            `yaml:"npcs"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultContent))
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open content: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a catalog, fills baseline modifiers and validates it.
func Load(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	c.fillDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Modifiers left at zero in content mean "unmodified".
func (c *Catalog) fillDefaults() {
	for i := range c.Processes {
		if c.Processes[i].OutputModifier == 0 {
			c.Processes[i].OutputModifier = 1
		}
	}
	for i := range c.Industries {
		if c.Industries[i].DemandModifier == 0 {
			c.Industries[i].DemandModifier = 1
		}
	}
	for i := range c.Projects {
		if c.Projects[i].CostModifier == 0 {
			c.Projects[i].CostModifier = 1
		}
	}
	for i := range c.Events {
		if c.Events[i].ProbModifier == 0 {
			c.Events[i].ProbModifier = 1
		}
	}
}

func checkIDs[T any](kind string, items []T, id func(*T) int) error {
	for i := range items {
		if got := id(&items[i]); got != i {
			return fmt.Errorf("%s at index %d has id %d: %w", kind, i, got, ErrInvalid)
		}
	}
	return nil
}

// Validate checks ids, mix shares and effect presence.
func (c *Catalog) Validate() error {
	if err := checkIDs("region", c.Regions, func(r *world.Region) int { return r.ID }); err != nil {
		return err
	}
	if err := checkIDs("process", c.Processes, func(p *production.Process) int { return p.ID }); err != nil {
		return err
	}
	if err := checkIDs("industry", c.Industries, func(in *production.Industry) int { return in.ID }); err != nil {
		return err
	}
	if err := checkIDs("project", c.Projects, func(p *ProjectDef) int { return p.ID }); err != nil {
		return err
	}
	if err := checkIDs("event", c.Events, func(e *EventDef) int { return e.ID }); err != nil {
		return err
	}
	if err := checkIDs("npc", c.NPCs, func(n *game.NPC) int { return n.ID }); err != nil {
		return err
	}

	totals := production.MixTotals(c.Processes)
	for out, total := range totals {
		if total == 0 {
			continue
		}
		if total < 0.999 || total > 1.001 {
			return fmt.Errorf("%s mix shares sum to %.3f: %w", kinds.Output(out), total, ErrInvalid)
		}
	}
	for i := range c.Processes {
		if c.Processes[i].MixShare < 0 {
			return fmt.Errorf("process %d has negative mix share: %w", i, ErrInvalid)
		}
	}

	for _, p := range c.Projects {
		if err := c.checkEffects(p.Effects); err != nil {
			return fmt.Errorf("project %d: %w", p.ID, err)
		}
	}
	for _, e := range c.Events {
		if err := c.checkEffects(e.Effects); err != nil {
			return fmt.Errorf("event %d: %w", e.ID, err)
		}
	}
	return nil
}

// checkEffects rejects effects that could never apply to a game built from
// c: empty entries, ids outside the catalog and non-invertible factors.
func (c *Catalog) checkEffects(list []effects.Envelope) error {
	counts := map[effects.Entity]int{
		effects.EntityProcess:  len(c.Processes),
		effects.EntityProject:  len(c.Projects),
		effects.EntityEvent:    len(c.Events),
		effects.EntityIndustry: len(c.Industries),
		effects.EntityNPC:      len(c.NPCs),
	}
	for i, env := range list {
		if env.Effect == nil {
			return fmt.Errorf("effect %d is empty: %w", i, ErrInvalid)
		}
		if err := effects.CheckStatic(env.Effect); err != nil {
			return fmt.Errorf("effect %d (%s): %w: %w", i, env.Effect.Kind(), ErrInvalid, err)
		}
		for _, r := range effects.Refs(env.Effect) {
			if r.ID < 0 || r.ID >= counts[r.Entity] {
				return fmt.Errorf("effect %d (%s) targets unknown %s %d: %w",
					i, env.Effect.Kind(), r.Entity, r.ID, ErrInvalid)
			}
		}
	}
	return nil
}

// ProjectEffects returns the effects of a project.
func (c *Catalog) ProjectEffects(id int) ([]effects.Effect, error) {
	if id < 0 || id >= len(c.Projects) {
		return nil, fmt.Errorf("project %d: %w", id, game.ErrNotFound)
	}
	return effects.Unwrap(c.Projects[id].Effects), nil
}

// EventEffects returns the effects of an event.
func (c *Catalog) EventEffects(id int) ([]effects.Effect, error) {
	if id < 0 || id >= len(c.Events) {
		return nil, fmt.Errorf("event %d: %w", id, game.ErrNotFound)
	}
	return effects.Unwrap(c.Events[id].Effects), nil
}

// NewGame builds a fresh game from the catalog. Regions come from the
// catalog when it lists any, otherwise from world.Generate(gen).
func (c *Catalog) NewGame(gen world.GenConfig) *game.Game {
	g := game.New()
	s := &g.State

	if len(c.Regions) > 0 {
		s.World.Regions = slices.Clone(c.Regions)
		for i := range s.World.Regions {
			s.World.Regions[i].Flags = slices.Clone(s.World.Regions[i].Flags)
		}
		s.World.Year = gen.StartYear
	} else {
		s.World = *world.Generate(gen)
	}
	if c.StartYear != 0 {
		s.World.Year = c.StartYear
	}

	s.Resources = c.Resources
	s.Feedstocks = c.Feedstocks
	s.Processes = slices.Clone(c.Processes)
	s.Industries = slices.Clone(c.Industries)
	s.NPCs = slices.Clone(c.NPCs)
	s.Projects = make([]game.Project, len(c.Projects))
	for i, p := range c.Projects {
		s.Projects[i] = p.Project
	}
	g.EventPool.Events = make([]game.Event, len(c.Events))
	for i, e := range c.Events {
		g.EventPool.Events[i] = e.Event
	}
	return g
}
