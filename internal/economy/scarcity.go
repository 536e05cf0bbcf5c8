// Package economy turns input supply and demand into the scarcity weights
// the production planner prices processes with.
package economy

import (
	"github.com/talgya/planetsim/internal/kinds"
	"github.com/talgya/planetsim/internal/production"
)

// Weight bounds. A weight of 1 means demand equals supply.
const (
	minSupply = 1e-6
	MaxWeight = 100.0
)

// Entry is the supply/demand state for one input.
type Entry struct {
	Supply float64 `json:"supply"` // quantity available
	Demand float64 `json:"demand"` // quantity required this year
}

// Weight is demand over supply, clamped to [0, MaxWeight].
func (e Entry) Weight() float64 {
	supply := max(e.Supply, minSupply)
	w := e.Demand / supply
	return min(max(w, 0), MaxWeight)
}

// Short reports whether demand exceeds supply.
func (e Entry) Short() bool {
	return e.Demand > e.Supply
}

// Ledger holds an Entry for every resource and feedstock.
type Ledger struct {
	Resources  [kinds.NumResources]Entry  `json:"resources"`
	Feedstocks [kinds.NumFeedstocks]Entry `json:"feedstocks"`
}

// Assess builds a ledger from available stocks and yearly requirements.
func Assess(
	resources kinds.ResourceMap, feedstocks kinds.FeedstockMap,
	needResources kinds.ResourceMap, needFeedstocks kinds.FeedstockMap,
) Ledger {
	var l Ledger
	for i := range l.Resources {
		l.Resources[i] = Entry{Supply: resources[i], Demand: needResources[i]}
	}
	for i := range l.Feedstocks {
		l.Feedstocks[i] = Entry{Supply: feedstocks[i], Demand: needFeedstocks[i]}
	}
	return l
}

// Weights returns the scarcity weight of every resource and feedstock.
func (l *Ledger) Weights() (kinds.ResourceMap, kinds.FeedstockMap) {
	var rw kinds.ResourceMap
	var fw kinds.FeedstockMap
	for i, e := range l.Resources {
		rw[i] = e.Weight()
	}
	for i, e := range l.Feedstocks {
		fw[i] = e.Weight()
	}
	return rw, fw
}

// Shortages lists the resources and feedstocks whose demand exceeds supply.
func (l *Ledger) Shortages() ([]kinds.Resource, []kinds.Feedstock) {
	var rs []kinds.Resource
	var fs []kinds.Feedstock
	for i, e := range l.Resources {
		if e.Short() {
			rs = append(rs, kinds.Resource(i))
		}
	}
	for i, e := range l.Feedstocks {
		if e.Short() {
			fs = append(fs, kinds.Feedstock(i))
		}
	}
	return rs, fs
}

// Required sums the inputs consumed by production orders and industries.
func Required(orders []production.ProductionOrder, industries []production.Industry) (kinds.ResourceMap, kinds.FeedstockMap) {
	var rs kinds.ResourceMap
	var fs kinds.FeedstockMap
	for _, o := range orders {
		r, f := o.Resources(), o.Feedstocks()
		for i := range rs {
			rs[i] += r[i]
		}
		for i := range fs {
			fs[i] += f[i]
		}
	}
	for i := range industries {
		r := industries[i].RequiredResources()
		for k := range rs {
			rs[k] += r[k]
		}
	}
	return rs, fs
}

// Emissions sums the byproducts of production orders and industries.
func Emissions(orders []production.ProductionOrder, industries []production.Industry) kinds.ByproductMap {
	var out kinds.ByproductMap
	for _, o := range orders {
		b := o.Byproducts()
		for i := range out {
			out[i] += b[i]
		}
	}
	for i := range industries {
		b := industries[i].EmittedByproducts()
		for k := range out {
			out[k] += b[k]
		}
	}
	return out
}
