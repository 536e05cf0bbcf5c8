package production

import (
	"github.com/talgya/planetsim/internal/kinds"
)

// Tuning holds the convergence constants of the mix driver.
type Tuning struct {
	// Fixed step, in share points, for neutral processes.
	MixChangeSpeed float64 `yaml:"mix_change_speed" env:"MIX_CHANGE_SPEED"`

	// Floor applied to a promoted process's target.
	PromotedTarget float64 `yaml:"promoted_target" env:"PROMOTED_TARGET"`

	// Promoted processes expand by max(share*PromotedRate, PromotedMinStep).
	PromotedRate    float64 `yaml:"promoted_rate" env:"PROMOTED_RATE"`
	PromotedMinStep float64 `yaml:"promoted_min_step" env:"PROMOTED_MIN_STEP"`

	// Banned processes contract by share*BannedRate.
	BannedRate float64 `yaml:"banned_rate" env:"BANNED_RATE"`

	// Scale of the priority penalty relative to scarcity cost.
	PriorityWeight float64 `yaml:"priority_weight" env:"PRIORITY_WEIGHT"`
}

// DefaultTuning returns the reference convergence constants.
func DefaultTuning() Tuning {
	return Tuning{
		MixChangeSpeed:  0.01,
		PromotedTarget:  0.5,
		PromotedRate:    0.1,
		PromotedMinStep: 0.05,
		BannedRate:      0.1,
		PriorityWeight:  1.0,
	}
}

// UpdateMixes moves every process towards its planned target using the
// default tuning. See Tuning.UpdateMixes.
func UpdateMixes(
	processes []Process,
	demand kinds.OutputMap,
	resourceWeights kinds.ResourceMap,
	feedstockWeights kinds.FeedstockMap,
	priority Priority,
) {
	DefaultTuning().UpdateMixes(processes, demand, resourceWeights, feedstockWeights, priority)
}

// UpdateMixes moves each unlocked process's mix share towards its planned
// target by a bounded step, then renormalizes every output category so its
// shares sum to 1. Promoted processes have their target floored at
// PromotedTarget and expand faster; banned processes contract in proportion
// to their share. Locked processes are not stepped.
func (t Tuning) UpdateMixes(
	processes []Process,
	demand kinds.OutputMap,
	resourceWeights kinds.ResourceMap,
	feedstockWeights kinds.FeedstockMap,
	priority Priority,
) {
	targets := t.CalculateMix(processes, demand, resourceWeights, feedstockWeights, priority)
	for i := range processes {
		p := &processes[i]
		if p.Locked {
			continue
		}
		target := targets[i]
		if p.IsPromoted() {
			target = max(t.PromotedTarget, target)
		}
		switch {
		case p.MixShare < target:
			if p.IsPromoted() {
				p.MixShare += max(p.MixShare*t.PromotedRate, t.PromotedMinStep)
			} else {
				p.MixShare += t.MixChangeSpeed
			}
			p.Change = ChangeExpanding
		case p.MixShare > target:
			if p.IsBanned() {
				p.MixShare -= p.MixShare * t.BannedRate
			} else {
				p.MixShare -= t.MixChangeSpeed
			}
			p.Change = ChangeContracting
		default:
			p.Change = ChangeNeutral
		}
		p.MixShare = max(p.MixShare, 0)
	}
	Renormalize(processes)
}

// Renormalize rescales mix shares so each output category sums to 1.
// Categories whose shares sum to zero are left as they are.
func Renormalize(processes []Process) {
	totals := MixTotals(processes)
	for i := range processes {
		p := &processes[i]
		if total := totals[p.Output]; total > 0 {
			p.MixShare /= total
		}
	}
}

// MixTotals returns the summed mix share per output category.
func MixTotals(processes []Process) kinds.OutputMap {
	var totals kinds.OutputMap
	for i := range processes {
		totals[processes[i].Output] += processes[i].MixShare
	}
	return totals
}
