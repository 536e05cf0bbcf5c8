package effects

import (
	"errors"
	"fmt"
	"math"

	"github.com/talgya/planetsim/internal/game"
	"github.com/talgya/planetsim/internal/kinds"
	"github.com/talgya/planetsim/internal/world"
)

var (
	// ErrNotInvertible is returned for a multiplicative effect whose factor
	// is zero, since dividing it back out is impossible.
	ErrNotInvertible = errors.New("effect is not invertible")
	// ErrUnknownKind is returned when decoding an unrecognised variant.
	ErrUnknownKind = errors.New("unknown effect kind")
)

// MigrationWave is the share of a region's population that leaves in one
// Migration.
const MigrationWave = 0.1

type direction int

const (
	apply direction = 1
	undo  direction = -1
)

// Apply performs e's mutation on g. Region-scoped variants act on the region
// with id *region, and do nothing when region is nil. On error g is left
// unchanged.
func Apply(g *game.Game, e Effect, region *int) error {
	if err := run(g, e, region, apply); err != nil {
		return fmt.Errorf("apply %s: %w", e.Kind(), err)
	}
	return nil
}

// Unapply reverses Apply(g, e, region). For the variants that are not
// reversible it does nothing.
func Unapply(g *game.Game, e Effect, region *int) error {
	if err := run(g, e, region, undo); err != nil {
		return fmt.Errorf("unapply %s: %w", e.Kind(), err)
	}
	return nil
}

// ApplyAll applies effects in order. Every effect is checked first, so a
// list that would fail leaves g untouched, one-way effects included. If an
// apply still fails, the effects already applied are unapplied in reverse
// order and the error is returned.
func ApplyAll(g *game.Game, effects []Effect, region *int) error {
	for i, e := range effects {
		if err := Check(g, e, region); err != nil {
			return fmt.Errorf("effect %d: %w", i, err)
		}
	}
	for i, e := range effects {
		if err := Apply(g, e, region); err != nil {
			for j := i - 1; j >= 0; j-- {
				// Unapply cannot fail for an effect that just applied.
				_ = Unapply(g, effects[j], region)
			}
			return fmt.Errorf("effect %d: %w", i, err)
		}
	}
	return nil
}

// UnapplyAll unapplies effects in reverse order.
func UnapplyAll(g *game.Game, effects []Effect, region *int) error {
	for i := len(effects) - 1; i >= 0; i-- {
		if err := Unapply(g, effects[i], region); err != nil {
			return fmt.Errorf("effect %d: %w", i, err)
		}
	}
	return nil
}

// Reversible reports whether Unapply exactly reverses Apply for e.
// One-way variants (event triggers, unlocks, requests, flags, migration,
// secession, auto-click) are not.
func Reversible(e Effect) bool {
	switch e.(type) {
	case AddEvent, TriggerEvent, UnlocksProject, UnlocksProcess,
		ProjectRequest, ProcessRequest, Migration, RegionLeave,
		AddRegionFlag, AddFlag, AutoClick:
		return false
	}
	return true
}

// scale multiplies or divides x by factor.
func scale(x *float64, factor float64, dir direction) error {
	if factor == 0 {
		return ErrNotInvertible
	}
	if dir == apply {
		*x *= factor
	} else {
		*x /= factor
	}
	return nil
}

func run(g *game.Game, e Effect, region *int, dir direction) error {
	if dir == undo && !Reversible(e) {
		return nil
	}
	s := &g.State
	w := &s.World
	d := float64(dir)

	switch e := e.(type) {
	case LocalVariable:
		if region == nil {
			return nil
		}
		r, err := w.Region(*region)
		if err != nil {
			return err
		}
		switch e.Var {
		case LocalPopulation:
			return scale(&r.Population, 1+e.Change/100, dir)
		case LocalOutlook:
			r.Outlook += d * e.Change
		case LocalHabitability:
			r.BaseHabitability += d * e.Change
		default:
			return fmt.Errorf("local variable %d: %w", e.Var, ErrUnknownKind)
		}

	case WorldVariable:
		switch e.Var {
		case WorldYear:
			w.Year += int(dir) * int(e.Change)
		case WorldPopulation:
			factor := 1 + e.Change/100
			if factor == 0 {
				return ErrNotInvertible
			}
			if dir == undo {
				factor = 1 / factor
			}
			w.ChangePopulation(factor)
		case WorldPopulationGrowth:
			w.PopulationGrowthModifier += d * e.Change / 100
		case WorldEmissions:
			w.ByproductMods[kinds.ByproductCO2] += d * e.Change
		case WorldExtinctionRate:
			w.ByproductMods[kinds.ByproductBiodiversity] -= d * e.Change
		case WorldOutlook:
			w.ChangeOutlook(d * e.Change)
		case WorldTemperature:
			w.TemperatureModifier += d * e.Change
		case WorldWaterStress:
			w.WaterStress += d * e.Change
		case WorldSeaLevelRise:
			w.SeaLevelRise += d * e.Change
		case WorldPrecipitation:
			w.Precipitation += d * e.Change
		default:
			return fmt.Errorf("world variable %d: %w", e.Var, ErrUnknownKind)
		}

	case PlayerVariable:
		delta := int(dir) * int(e.Change)
		switch e.Var {
		case PlayerPoliticalCapital:
			s.PoliticalCapital += delta
		case PlayerMalthusianPoints:
			s.MalthusianPoints += delta
		case PlayerHESPoints:
			s.HESPoints += delta
		case PlayerFALCPoints:
			s.FALCPoints += delta
		default:
			return fmt.Errorf("player variable %d: %w", e.Var, ErrUnknownKind)
		}

	case Resource:
		return scale(&s.Resources[e.Resource], 1+e.Change, dir)

	case Demand:
		s.OutputDemandModifier[e.Output] += d * e.Change

	case Output:
		s.OutputModifier[e.Output] += d * e.Change

	case DemandAmount:
		s.OutputDemandExtras[e.Output] += d * e.Amount

	case OutputForFeature:
		for i := range s.Processes {
			if s.Processes[i].HasFeature(e.Feature) {
				s.Processes[i].OutputModifier += d * e.Change
			}
		}

	case OutputForProcess:
		p, err := s.Process(e.Process)
		if err != nil {
			return err
		}
		p.OutputModifier += d * e.Change

	case Feedstock:
		return scale(&s.Feedstocks[e.Feedstock], e.Factor, dir)

	case AddEvent:
		ev, err := g.EventPool.Event(e.Event)
		if err != nil {
			return err
		}
		ev.Locked = false

	case TriggerEvent:
		return g.EventPool.QueueEvent(e.Event, region, e.Years)

	case UnlocksProject:
		p, err := s.Project(e.Project)
		if err != nil {
			return err
		}
		p.Locked = false

	case UnlocksProcess:
		p, err := s.Process(e.Process)
		if err != nil {
			return err
		}
		p.Locked = false

	case ProjectRequest:
		if _, err := s.Project(e.Project); err != nil {
			return err
		}
		s.Requests = append(s.Requests, game.Request{Kind: game.RequestProject, ID: e.Project, Active: e.Active, Bounty: e.Bounty})

	case ProcessRequest:
		if _, err := s.Process(e.Process); err != nil {
			return err
		}
		s.Requests = append(s.Requests, game.Request{Kind: game.RequestProcess, ID: e.Process, Active: e.Active, Bounty: e.Bounty})

	case Migration:
		if region == nil {
			return nil
		}
		return migrate(w, *region)

	case RegionLeave:
		if region == nil {
			return nil
		}
		r, err := w.Region(*region)
		if err != nil {
			return err
		}
		r.Seceded = true

	case AddRegionFlag:
		if region == nil {
			return nil
		}
		r, err := w.Region(*region)
		if err != nil {
			return err
		}
		r.Flags = append(r.Flags, e.Flag)

	case AddFlag:
		s.Flags = append(s.Flags, e.Flag)

	case AutoClick:
		// Presentation only.

	case NPCRelationship:
		npc, err := s.NPC(e.NPC)
		if err != nil {
			return err
		}
		npc.Relationship += d * e.Change

	case ModifyIndustryByproducts:
		in, err := s.Industry(e.Industry)
		if err != nil {
			return err
		}
		return scale(&in.Byproducts[e.Byproduct], e.Factor, dir)

	case ModifyIndustryResources:
		in, err := s.Industry(e.Industry)
		if err != nil {
			return err
		}
		return scale(&in.Resources[e.Resource], e.Factor, dir)

	case ModifyEventProbability:
		ev, err := g.EventPool.Event(e.Event)
		if err != nil {
			return err
		}
		ev.ProbModifier += d * e.Change

	case ModifyIndustryDemand:
		in, err := s.Industry(e.Industry)
		if err != nil {
			return err
		}
		in.DemandModifier += d * e.Change

	case DemandOutlookChange:
		for i := range w.Regions {
			r := &w.Regions[i]
			r.Outlook += d * math.Round(e.Multiplier*r.Demand()[e.Output])
		}

	case IncomeOutlookChange:
		for i := range w.Regions {
			r := &w.Regions[i]
			r.Outlook += d * math.Round(e.Multiplier*r.AdjustedIncome())
		}

	case ProjectCostModifier:
		p, err := s.Project(e.Project)
		if err != nil {
			return err
		}
		p.CostModifier += d * e.Change

	case ProtectLand:
		s.ProtectedLand += d * e.Percent / 100

	default:
		return fmt.Errorf("%T: %w", e, ErrUnknownKind)
	}
	return nil
}

// migrate moves MigrationWave of the source region's population, split
// evenly, to every other region more habitable than the world mean. With no
// such region the migrants are lost.
func migrate(w *world.World, source int) error {
	src, err := w.Region(source)
	if err != nil {
		return err
	}
	mean := w.Habitability()
	var targets []int
	for i := range w.Regions {
		if i != source && w.Regions[i].Habitability() > mean {
			targets = append(targets, i)
		}
	}
	leaving := src.Population * MigrationWave
	src.Population -= leaving
	if len(targets) == 0 {
		return nil
	}
	each := leaving / float64(len(targets))
	for _, i := range targets {
		w.Regions[i].Population += each
	}
	return nil
}
