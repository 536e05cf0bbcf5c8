package effects

import (
	"fmt"

	"github.com/talgya/planetsim/internal/game"
)

// Entity is a kind of game object an effect can target by id.
type Entity uint8

const (
	EntityProcess Entity = iota
	EntityProject
	EntityEvent
	EntityIndustry
	EntityNPC
)

var entityNames = []string{"process", "project", "event", "industry", "npc"}

func (e Entity) String() string { return varName(entityNames, int(e)) }

// Ref is an entity id an effect targets.
type Ref struct {
	Entity Entity
	ID     int
}

// Refs lists the entity ids e targets. The scoped region is not included;
// it comes from the caller.
func Refs(e Effect) []Ref {
	switch e := e.(type) {
	case OutputForProcess:
		return []Ref{{EntityProcess, e.Process}}
	case UnlocksProcess:
		return []Ref{{EntityProcess, e.Process}}
	case ProcessRequest:
		return []Ref{{EntityProcess, e.Process}}
	case UnlocksProject:
		return []Ref{{EntityProject, e.Project}}
	case ProjectRequest:
		return []Ref{{EntityProject, e.Project}}
	case ProjectCostModifier:
		return []Ref{{EntityProject, e.Project}}
	case AddEvent:
		return []Ref{{EntityEvent, e.Event}}
	case TriggerEvent:
		return []Ref{{EntityEvent, e.Event}}
	case ModifyEventProbability:
		return []Ref{{EntityEvent, e.Event}}
	case ModifyIndustryByproducts:
		return []Ref{{EntityIndustry, e.Industry}}
	case ModifyIndustryResources:
		return []Ref{{EntityIndustry, e.Industry}}
	case ModifyIndustryDemand:
		return []Ref{{EntityIndustry, e.Industry}}
	case NPCRelationship:
		return []Ref{{EntityNPC, e.NPC}}
	}
	return nil
}

// regionScoped reports whether e acts on the caller's region.
func regionScoped(e Effect) bool {
	switch e.(type) {
	case LocalVariable, Migration, RegionLeave, AddRegionFlag:
		return true
	}
	return false
}

// CheckStatic reports the failures of e that do not depend on game state:
// unknown variables and factors that cannot be divided back out.
func CheckStatic(e Effect) error {
	switch e := e.(type) {
	case LocalVariable:
		if int(e.Var) >= len(localVarNames) {
			return fmt.Errorf("local variable %d: %w", e.Var, ErrUnknownKind)
		}
		if e.Var == LocalPopulation && 1+e.Change/100 == 0 {
			return ErrNotInvertible
		}
	case WorldVariable:
		if int(e.Var) >= len(worldVarNames) {
			return fmt.Errorf("world variable %d: %w", e.Var, ErrUnknownKind)
		}
		if e.Var == WorldPopulation && 1+e.Change/100 == 0 {
			return ErrNotInvertible
		}
	case PlayerVariable:
		if int(e.Var) >= len(playerVarNames) {
			return fmt.Errorf("player variable %d: %w", e.Var, ErrUnknownKind)
		}
	case Resource:
		if 1+e.Change == 0 {
			return ErrNotInvertible
		}
	case Feedstock:
		if e.Factor == 0 {
			return ErrNotInvertible
		}
	case ModifyIndustryByproducts:
		if e.Factor == 0 {
			return ErrNotInvertible
		}
	case ModifyIndustryResources:
		if e.Factor == 0 {
			return ErrNotInvertible
		}
	}
	return nil
}

func lookup(g *game.Game, r Ref) error {
	s := &g.State
	var err error
	switch r.Entity {
	case EntityProcess:
		_, err = s.Process(r.ID)
	case EntityProject:
		_, err = s.Project(r.ID)
	case EntityEvent:
		_, err = g.EventPool.Event(r.ID)
	case EntityIndustry:
		_, err = s.Industry(r.ID)
	case EntityNPC:
		_, err = s.NPC(r.ID)
	}
	return err
}

// Check reports the error Apply(g, e, region) would return, without
// changing g.
func Check(g *game.Game, e Effect, region *int) error {
	if regionScoped(e) && region == nil {
		return nil
	}
	if err := CheckStatic(e); err != nil {
		return fmt.Errorf("apply %s: %w", e.Kind(), err)
	}
	for _, r := range Refs(e) {
		if err := lookup(g, r); err != nil {
			return fmt.Errorf("apply %s: %w", e.Kind(), err)
		}
	}
	if regionScoped(e) {
		if _, err := g.State.World.Region(*region); err != nil {
			return fmt.Errorf("apply %s: %w", e.Kind(), err)
		}
	}
	return nil
}
