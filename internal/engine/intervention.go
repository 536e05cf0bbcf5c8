package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/talgya/planetsim/internal/effects"
	"github.com/talgya/planetsim/internal/game"
	"github.com/talgya/planetsim/internal/production"
)

var (
	ErrLocked              = errors.New("locked")
	ErrAlreadyActive       = errors.New("already active")
	ErrNotActive           = errors.New("not active")
	ErrInsufficientCapital = errors.New("insufficient political capital")
)

// AdoptProject pays for a project and applies its effects.
func (s *Simulation) AdoptProject(id int) error {
	st := &s.Game.State
	p, err := st.Project(id)
	if err != nil {
		return err
	}
	switch {
	case p.Locked:
		return fmt.Errorf("project %q: %w", p.Name, ErrLocked)
	case p.Active:
		return fmt.Errorf("project %q: %w", p.Name, ErrAlreadyActive)
	}
	cost := int(math.Ceil(p.EffectiveCost()))
	if cost > st.PoliticalCapital {
		return fmt.Errorf("project %q costs %d, have %d: %w", p.Name, cost, st.PoliticalCapital, ErrInsufficientCapital)
	}

	fx, err := s.Catalog.ProjectEffects(id)
	if err != nil {
		return err
	}
	if err := effects.ApplyAll(s.Game, fx, nil); err != nil {
		return fmt.Errorf("adopt project %q: %w", p.Name, err)
	}
	st.PoliticalCapital -= cost
	p.Active = true
	bounty := s.fulfil(game.RequestProject, id, true)

	if err := s.record(fmt.Sprintf("project:%d", id), false, fx, nil); err != nil {
		return err
	}
	s.EmitEvent("project", "%s adopted", p.Name)
	slog.Info("project adopted", "project", p.Name, "cost", cost, "bounty", bounty, "effects", len(fx))
	return nil
}

// RevokeProject unapplies an active project's effects. The cost is not refunded.
func (s *Simulation) RevokeProject(id int) error {
	st := &s.Game.State
	p, err := st.Project(id)
	if err != nil {
		return err
	}
	if !p.Active {
		return fmt.Errorf("project %q: %w", p.Name, ErrNotActive)
	}

	fx, err := s.Catalog.ProjectEffects(id)
	if err != nil {
		return err
	}
	if err := effects.UnapplyAll(s.Game, fx, nil); err != nil {
		return fmt.Errorf("revoke project %q: %w", p.Name, err)
	}
	p.Active = false
	bounty := s.fulfil(game.RequestProject, id, false)

	if err := s.record(fmt.Sprintf("project:%d", id), true, fx, nil); err != nil {
		return err
	}
	s.EmitEvent("project", "%s revoked", p.Name)
	slog.Info("project revoked", "project", p.Name, "bounty", bounty)
	return nil
}

// SetProcessStatus bans, promotes or clears the policy on a process.
func (s *Simulation) SetProcessStatus(id int, status production.ProcessStatus) error {
	p, err := s.Game.State.Process(id)
	if err != nil {
		return err
	}
	if p.Locked {
		return fmt.Errorf("process %q: %w", p.Name, ErrLocked)
	}
	if p.Status == status {
		return nil
	}
	p.Status = status

	var bounty int
	switch status {
	case production.StatusPromoted:
		bounty = s.fulfil(game.RequestProcess, id, true)
	case production.StatusBanned:
		bounty = s.fulfil(game.RequestProcess, id, false)
	}

	s.EmitEvent("process", "%s is now %s", p.Name, status)
	slog.Info("process policy", "process", p.Name, "status", status.String(), "bounty", bounty)
	return nil
}

// FireEvent applies an event's effects in the given region.
func (s *Simulation) FireEvent(id int, region *int) error {
	ev, err := s.Game.EventPool.Event(id)
	if err != nil {
		return err
	}
	where := "the world"
	if region != nil {
		r, err := s.Game.State.World.Region(*region)
		if err != nil {
			return err
		}
		where = r.Name
	}
	fx, err := s.Catalog.EventEffects(id)
	if err != nil {
		return err
	}
	if err := effects.ApplyAll(s.Game, fx, region); err != nil {
		return fmt.Errorf("fire event %q: %w", ev.Name, err)
	}
	if err := s.record(fmt.Sprintf("event:%d", id), false, fx, region); err != nil {
		return err
	}
	s.EmitEvent("event", "%s in %s", ev.Name, where)
	return nil
}

// fulfil removes the requests matching kind, id and active, pays their
// bounties and returns the total paid.
func (s *Simulation) fulfil(kind game.RequestKind, id int, active bool) int {
	st := &s.Game.State
	paid := 0
	n := 0
	for _, r := range st.Requests {
		if r.Kind == kind && r.ID == id && r.Active == active {
			paid += r.Bounty
			continue
		}
		st.Requests[n] = r
		n++
	}
	st.Requests = st.Requests[:n]
	st.PoliticalCapital += paid
	return paid
}

func (s *Simulation) record(source string, undo bool, fx []effects.Effect, region *int) error {
	if s.Journal == nil || len(fx) == 0 {
		return nil
	}
	if err := s.Journal.RecordEffects(s.CurrentYear(), source, undo, fx, region); err != nil {
		return fmt.Errorf("record effects: %w", err)
	}
	return nil
}
