// Simulation ties the production, effect and world systems together and
// steps them once per year.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/talgya/planetsim/internal/content"
	"github.com/talgya/planetsim/internal/economy"
	"github.com/talgya/planetsim/internal/effects"
	"github.com/talgya/planetsim/internal/game"
	"github.com/talgya/planetsim/internal/kinds"
	"github.com/talgya/planetsim/internal/production"
)

// Warming per unit of CO2-equivalent emitted, in °C.
const warmingPerEmission = 4e-13

// Event is a notable occurrence in the simulation.
type Event struct {
	Year        int    `json:"year" db:"year"`
	Description string `json:"description" db:"description"`
	Category    string `json:"category" db:"category"` // "project", "process", "event", "shortage"
}

// YearStats is the aggregate state reported after each year.
type YearStats struct {
	Year         int     `json:"year" db:"year"`
	Population   float64 `json:"population" db:"population"`
	Temperature  float64 `json:"temperature" db:"temperature"`
	Emissions    float64 `json:"emissions" db:"emissions"` // CO2eq this year
	Outlook      float64 `json:"outlook" db:"outlook"`
	Habitability float64 `json:"habitability" db:"habitability"`
	Shortages    int     `json:"shortages" db:"shortages"`
}

// Journal records what the simulation does. Implemented by the
// persistence layer; a nil Journal records nothing.
type Journal interface {
	RecordEffects(year int, source string, undo bool, fx []effects.Effect, region *int) error
	RecordYear(stats YearStats, processes []production.Process) error
	RecordEvents(events []Event) error
}

// Simulation holds the game and the systems that advance it.
type Simulation struct {
	Game     *game.Game
	Catalog  *content.Catalog
	Tuning   production.Tuning
	Priority production.Priority
	Journal  Journal

	Events []Event // Recent events
	Stats  YearStats
	Ledger economy.Ledger // Supply and demand from the last year
}

// NewSimulation creates a simulation over a game built from catalog.
func NewSimulation(g *game.Game, catalog *content.Catalog, tuning production.Tuning, priority production.Priority) *Simulation {
	sim := &Simulation{
		Game:     g,
		Catalog:  catalog,
		Tuning:   tuning,
		Priority: priority,
	}
	sim.updateStats(0, 0)
	return sim
}

// CurrentYear returns the world's year.
func (s *Simulation) CurrentYear() int {
	return s.Game.State.World.Year
}

// EmitEvent records an event and logs it.
func (s *Simulation) EmitEvent(category, format string, args ...any) {
	e := Event{Year: s.CurrentYear(), Description: fmt.Sprintf(format, args...), Category: category}
	s.Events = append(s.Events, e)
	slog.Info("event", "year", e.Year, "category", e.Category, "description", e.Description)
}

func (s *Simulation) orders(demand kinds.OutputMap) []production.ProductionOrder {
	procs := s.Game.State.Processes
	orders := make([]production.ProductionOrder, 0, len(procs))
	for i := range procs {
		orders = append(orders, procs[i].ProductionOrder(demand))
	}
	return orders
}

// Step advances the game by one year: climate, scarcity, mix convergence,
// production, population, then any queued events that fall due.
func (s *Simulation) Step() error {
	st := &s.Game.State
	w := &st.World

	w.UpdateClimate()
	demand := st.Demand()

	need, needFeed := economy.Required(s.orders(demand), st.Industries)
	s.Ledger = economy.Assess(st.Resources, st.Feedstocks, need, needFeed)
	resourceWeights, feedstockWeights := s.Ledger.Weights()

	s.Tuning.UpdateMixes(st.Processes, demand, resourceWeights, feedstockWeights, s.Priority)

	orders := s.orders(demand)
	_, used := economy.Required(orders, st.Industries)
	for i := range st.Feedstocks {
		st.Feedstocks[i] = max(st.Feedstocks[i]-used[i], 0)
	}

	emitted := economy.Emissions(orders, st.Industries)
	for i := range emitted {
		emitted[i] += w.ByproductMods[i]
	}
	w.Temperature += emitted.CO2eq() * warmingPerEmission

	w.AdvancePopulation()
	w.Year++

	shortResources, shortFeedstocks := s.Ledger.Shortages()
	for _, r := range shortResources {
		s.EmitEvent("shortage", "%s demand exceeds supply", r)
	}
	for _, f := range shortFeedstocks {
		s.EmitEvent("shortage", "%s reserves cannot cover demand", f)
	}

	// A failed event is reported and dropped; the rest still fire.
	for _, q := range s.Game.EventPool.Advance() {
		if err := s.FireEvent(q.EventID, q.Region); err != nil {
			slog.Error("queued event failed", "event", q.EventID, "year", w.Year, "error", err)
			s.EmitEvent("event", "event %d failed: %v", q.EventID, err)
		}
	}

	s.updateStats(emitted.CO2eq(), len(shortResources)+len(shortFeedstocks))
	s.report()

	if s.Journal != nil {
		if err := s.Journal.RecordYear(s.Stats, st.Processes); err != nil {
			return fmt.Errorf("record year: %w", err)
		}
	}
	return nil
}

// TickYear is the engine callback for one year.
func (s *Simulation) TickYear(int) error {
	return s.Step()
}

// FlushEvents writes the event log to the journal and clears it. Without a
// journal the log is trimmed to its last 1000 events instead.
func (s *Simulation) FlushEvents() error {
	if s.Journal == nil {
		if len(s.Events) > 1000 {
			s.Events = s.Events[len(s.Events)-1000:]
		}
		return nil
	}
	if err := s.Journal.RecordEvents(s.Events); err != nil {
		return fmt.Errorf("record events: %w", err)
	}
	s.Events = s.Events[:0]
	return nil
}

// TickDecade logs a summary and flushes the event log.
func (s *Simulation) TickDecade(year int) error {
	slog.Info("decade summary",
		"year", year,
		"population", humanize.SIWithDigits(s.Stats.Population, 2, ""),
		"temperature", fmt.Sprintf("%+.2f°C", s.Stats.Temperature),
	)
	return s.FlushEvents()
}

func (s *Simulation) updateStats(emissions float64, shortages int) {
	w := &s.Game.State.World
	s.Stats = YearStats{
		Year:         w.Year,
		Population:   w.Population(),
		Temperature:  w.EffectiveTemperature(),
		Emissions:    emissions,
		Outlook:      w.Outlook(),
		Habitability: w.Habitability(),
		Shortages:    shortages,
	}
}

func (s *Simulation) report() {
	slog.Info("year report",
		"year", s.Stats.Year,
		"population", humanize.SIWithDigits(s.Stats.Population, 2, ""),
		"emissions", humanize.SIWithDigits(s.Stats.Emissions, 2, ""),
		"temperature", fmt.Sprintf("%+.2f°C", s.Stats.Temperature),
		"outlook", fmt.Sprintf("%.2f", s.Stats.Outlook),
		"habitability", fmt.Sprintf("%.2f", s.Stats.Habitability),
		"shortages", s.Stats.Shortages,
		"political_capital", humanize.Comma(int64(s.Game.State.PoliticalCapital)),
	)
}
