// Package engine provides the yearly simulation loop.
package engine

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// YearsPerDecade is the cadence of the OnDecade callback.
const YearsPerDecade = 10

// Engine drives the simulation forward one year at a time.
type Engine struct {
	Year     int           // Current sim year
	Interval time.Duration // Wall time per year in Run (0 = as fast as possible)

	// Callbacks for each tick layer, populated during setup.
	OnYear   func(year int) error // Every year
	OnDecade func(year int) error // Every YearsPerDecade years

	running atomic.Bool
}

// NewEngine creates an engine starting at the given year.
func NewEngine(startYear int) *Engine {
	return &Engine{Year: startYear}
}

// Run steps the simulation until Stop is called or a callback fails.
func (e *Engine) Run() error {
	e.running.Store(true)
	slog.Info("simulation engine started", "year", e.Year, "interval", e.Interval)

	for e.running.Load() {
		start := time.Now()
		if err := e.step(); err != nil {
			e.running.Store(false)
			return err
		}
		if elapsed := time.Since(start); elapsed < e.Interval {
			time.Sleep(e.Interval - elapsed)
		}
	}

	slog.Info("simulation engine stopped", "year", e.Year)
	return nil
}

// RunYears steps the simulation n times.
func (e *Engine) RunYears(n int) error {
	for range n {
		if err := e.step(); err != nil {
			return err
		}
	}
	return nil
}

// Stop halts Run after the current year.
func (e *Engine) Stop() {
	e.running.Store(false)
}

// Running reports whether Run is looping.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// step advances the simulation by one year.
func (e *Engine) step() error {
	year := e.Year
	if e.OnYear != nil {
		if err := e.OnYear(year); err != nil {
			return fmt.Errorf("year %d: %w", year, err)
		}
	}
	e.Year++

	if e.Year%YearsPerDecade == 0 && e.OnDecade != nil {
		if err := e.OnDecade(e.Year); err != nil {
			return fmt.Errorf("decade %d: %w", e.Year, err)
		}
	}
	return nil
}
