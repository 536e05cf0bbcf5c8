package kinds

import (
	"encoding/json"
	"fmt"

	"golang.org/x/exp/constraints"
	"gopkg.in/yaml.v3"
)

// Per-kind maps are fixed-size arrays so iteration order, and therefore
// floating-point summation order, is always the same. They encode as
// name-keyed objects.
type (
	ResourceMap  [NumResources]float64
	OutputMap    [NumOutputs]float64
	FeedstockMap [NumFeedstocks]float64
	ByproductMap [NumByproducts]float64
)

func sum[T constraints.Float](xs []T) T {
	var total T
	for _, x := range xs {
		total += x
	}
	return total
}

func dot[T constraints.Float](a, b []T) T {
	var total T
	for i := range a {
		total += a[i] * b[i]
	}
	return total
}

func named(names []string, values []float64) map[string]float64 {
	out := make(map[string]float64, len(values))
	for i, v := range values {
		out[names[i]] = v
	}
	return out
}

func fill(kind string, names []string, dst []float64, src map[string]float64) error {
	for k, v := range src {
		i, err := indexOf(names, kind, k)
		if err != nil {
			return err
		}
		dst[i] = v
	}
	return nil
}

func fromJSON(b []byte, kind string, names []string, dst []float64) error {
	var src map[string]float64
	if err := json.Unmarshal(b, &src); err != nil {
		return fmt.Errorf("decode %s map: %w", kind, err)
	}
	return fill(kind, names, dst, src)
}

func fromYAML(n *yaml.Node, kind string, names []string, dst []float64) error {
	var src map[string]float64
	if err := n.Decode(&src); err != nil {
		return fmt.Errorf("decode %s map: %w", kind, err)
	}
	return fill(kind, names, dst, src)
}

// Sum returns the total over all resources.
func (m ResourceMap) Sum() float64 { return sum(m[:]) }

// Dot returns the weighted sum of m by w.
func (m ResourceMap) Dot(w ResourceMap) float64 { return dot(m[:], w[:]) }

func (m ResourceMap) MarshalJSON() ([]byte, error) { return json.Marshal(named(resourceNames, m[:])) }

func (m *ResourceMap) UnmarshalJSON(b []byte) error {
	return fromJSON(b, "resource", resourceNames, m[:])
}

func (m ResourceMap) MarshalYAML() (any, error) { return named(resourceNames, m[:]), nil }

func (m *ResourceMap) UnmarshalYAML(n *yaml.Node) error {
	return fromYAML(n, "resource", resourceNames, m[:])
}

// Sum returns the total over all outputs.
func (m OutputMap) Sum() float64 { return sum(m[:]) }

func (m OutputMap) MarshalJSON() ([]byte, error) { return json.Marshal(named(outputNames, m[:])) }

func (m *OutputMap) UnmarshalJSON(b []byte) error {
	return fromJSON(b, "output", outputNames, m[:])
}

func (m OutputMap) MarshalYAML() (any, error) { return named(outputNames, m[:]), nil }

func (m *OutputMap) UnmarshalYAML(n *yaml.Node) error {
	return fromYAML(n, "output", outputNames, m[:])
}

// Sum returns the total over all feedstocks.
func (m FeedstockMap) Sum() float64 { return sum(m[:]) }

// Dot returns the weighted sum of m by w.
func (m FeedstockMap) Dot(w FeedstockMap) float64 { return dot(m[:], w[:]) }

func (m FeedstockMap) MarshalJSON() ([]byte, error) { return json.Marshal(named(feedstockNames, m[:])) }

func (m *FeedstockMap) UnmarshalJSON(b []byte) error {
	return fromJSON(b, "feedstock", feedstockNames, m[:])
}

func (m FeedstockMap) MarshalYAML() (any, error) { return named(feedstockNames, m[:]), nil }

func (m *FeedstockMap) UnmarshalYAML(n *yaml.Node) error {
	return fromYAML(n, "feedstock", feedstockNames, m[:])
}

// Sum returns the total over all byproducts.
func (m ByproductMap) Sum() float64 { return sum(m[:]) }

// CO2eq converts greenhouse byproducts to CO2-equivalent using 100-year
// global warming potentials. Biodiversity is not a gas and is ignored.
func (m ByproductMap) CO2eq() float64 {
	return m[ByproductCO2] + m[ByproductCH4]*36 + m[ByproductN2O]*298
}

func (m ByproductMap) MarshalJSON() ([]byte, error) { return json.Marshal(named(byproductNames, m[:])) }

func (m *ByproductMap) UnmarshalJSON(b []byte) error {
	return fromJSON(b, "byproduct", byproductNames, m[:])
}

func (m ByproductMap) MarshalYAML() (any, error) { return named(byproductNames, m[:]), nil }

func (m *ByproductMap) UnmarshalYAML(n *yaml.Node) error {
	return fromYAML(n, "byproduct", byproductNames, m[:])
}
