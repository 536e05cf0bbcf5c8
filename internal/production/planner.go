package production

import (
	"github.com/talgya/planetsim/internal/kinds"
)

// Priority is a player-declared planning goal that biases target mixes.
type Priority uint8

const (
	PriorityScarcity  Priority = iota // No extra bias beyond scarcity cost.
	PriorityLand                      // Avoid land-intensive processes.
	PriorityEmissions                 // Avoid greenhouse-emitting processes.
	PriorityEnergy                    // Avoid electricity- and fuel-intensive processes.
)

var priorityNames = []string{"scarcity", "land", "emissions", "energy"}

func (p Priority) String() string { return enumName(priorityNames, int(p)) }

func (p Priority) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Priority) UnmarshalText(b []byte) error {
	i, err := enumIndex(priorityNames, "priority", string(b))
	if err != nil {
		return err
	}
	*p = Priority(i)
	return nil
}

// Output modifiers at or below this are treated as this value when
// converting per-unit cost to per-effective-unit cost.
const minOutputModifier = 0.01

// priorityValue is the quantity the priority penalises for one process.
func priorityValue(p *Process, priority Priority) float64 {
	switch priority {
	case PriorityLand:
		return p.Resources[kinds.ResourceLand]
	case PriorityEmissions:
		return p.Byproducts.CO2eq()
	case PriorityEnergy:
		return p.Resources[kinds.ResourceElectricity] + p.Resources[kinds.ResourceFuel]
	}
	return 0
}

// scarcityCost is the weighted input cost of one effective unit of output.
func scarcityCost(p *Process, resourceWeights kinds.ResourceMap, feedstockWeights kinds.FeedstockMap) float64 {
	cost := p.Resources.Dot(resourceWeights) + p.Feedstocks.Dot(feedstockWeights)
	return cost / max(p.OutputModifier, minOutputModifier)
}

// CalculateMix computes the target mix share of every process using the
// default tuning. See Tuning.CalculateMix.
func CalculateMix(
	processes []Process,
	demand kinds.OutputMap,
	resourceWeights kinds.ResourceMap,
	feedstockWeights kinds.FeedstockMap,
	priority Priority,
) []float64 {
	return DefaultTuning().CalculateMix(processes, demand, resourceWeights, feedstockWeights, priority)
}

// CalculateMix computes the target mix share of every process. The result is
// parallel to processes and the processes are not modified.
//
// Within each output category, locked processes keep their current share and
// banned processes get nothing. The remaining share is split among the other
// processes in proportion to 1/(1+cost), where cost is the scarcity-weighted
// input cost per effective unit plus a priority penalty relative to the
// category's worst process. Categories with no demand or no eligible process
// keep their current shares.
func (t Tuning) CalculateMix(
	processes []Process,
	demand kinds.OutputMap,
	resourceWeights kinds.ResourceMap,
	feedstockWeights kinds.FeedstockMap,
	priority Priority,
) []float64 {
	target := make([]float64, len(processes))
	for i := range processes {
		if processes[i].IsBanned() && !processes[i].Locked {
			target[i] = 0
		} else {
			target[i] = processes[i].MixShare
		}
	}

	for out := range kinds.NumOutputs {
		output := kinds.Output(out)
		if demand[output] <= 0 {
			continue
		}

		var (
			eligible    []int
			lockedShare float64
			worst       float64
		)
		for i := range processes {
			p := &processes[i]
			if p.Output != output {
				continue
			}
			switch {
			case p.Locked:
				lockedShare += p.MixShare
			case !p.IsBanned():
				eligible = append(eligible, i)
				worst = max(worst, priorityValue(p, priority))
			}
		}
		if len(eligible) == 0 {
			continue
		}

		free := max(1-lockedShare, 0)
		scores := make([]float64, len(eligible))
		var total float64
		for j, i := range eligible {
			p := &processes[i]
			cost := max(scarcityCost(p, resourceWeights, feedstockWeights), 0)
			if worst > 0 {
				cost += t.PriorityWeight * priorityValue(p, priority) / worst
			}
			scores[j] = 1 / (1 + cost)
			total += scores[j]
		}
		for j, i := range eligible {
			target[i] = free * scores[j] / total
		}
	}
	return target
}
