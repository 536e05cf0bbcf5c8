// Package kinds defines the fixed categories the simulation is keyed by:
// resources, outputs, feedstocks and byproducts.
package kinds

import (
	"errors"
	"fmt"
)

// ErrUnknownName is returned when decoding a kind name that does not exist.
var ErrUnknownName = errors.New("unknown kind name")

// Resource is a renewable or flow input shared by all processes.
type Resource uint8

const (
	ResourceLand Resource = iota
	ResourceWater
	ResourceElectricity
	ResourceFuel
)

// NumResources is the number of resource kinds.
const NumResources = int(ResourceFuel) + 1

// Output is a category of producible good that processes compete to supply.
type Output uint8

const (
	OutputFuel Output = iota
	OutputElectricity
	OutputPlantCalories
	OutputAnimalCalories
)

// NumOutputs is the number of output kinds.
const NumOutputs = int(OutputAnimalCalories) + 1

// Feedstock is a depletable input, tracked as a reserve.
type Feedstock uint8

const (
	FeedstockCoal Feedstock = iota
	FeedstockOil
	FeedstockNaturalGas
	FeedstockUranium
	FeedstockLithium
	FeedstockSoil
	FeedstockOther
)

// NumFeedstocks is the number of feedstock kinds.
const NumFeedstocks = int(FeedstockOther) + 1

// Byproduct is a side effect of production.
type Byproduct uint8

const (
	ByproductCO2 Byproduct = iota
	ByproductCH4
	ByproductN2O
	ByproductBiodiversity
)

// NumByproducts is the number of byproduct kinds.
const NumByproducts = int(ByproductBiodiversity) + 1

var (
	resourceNames  = []string{"land", "water", "electricity", "fuel"}
	outputNames    = []string{"fuel", "electricity", "plant_calories", "animal_calories"}
	feedstockNames = []string{"coal", "oil", "natural_gas", "uranium", "lithium", "soil", "other"}
	byproductNames = []string{"co2", "ch4", "n2o", "biodiversity"}
)

func nameOf(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("unknown(%d)", i)
	}
	return names[i]
}

func indexOf(names []string, kind, s string) (int, error) {
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s %q: %w", kind, s, ErrUnknownName)
}

func (r Resource) String() string { return nameOf(resourceNames, int(r)) }

func (r Resource) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Resource) UnmarshalText(b []byte) error {
	i, err := indexOf(resourceNames, "resource", string(b))
	if err != nil {
		return err
	}
	*r = Resource(i)
	return nil
}

func (o Output) String() string { return nameOf(outputNames, int(o)) }

func (o Output) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Output) UnmarshalText(b []byte) error {
	i, err := indexOf(outputNames, "output", string(b))
	if err != nil {
		return err
	}
	*o = Output(i)
	return nil
}

func (f Feedstock) String() string { return nameOf(feedstockNames, int(f)) }

func (f Feedstock) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Feedstock) UnmarshalText(b []byte) error {
	i, err := indexOf(feedstockNames, "feedstock", string(b))
	if err != nil {
		return err
	}
	*f = Feedstock(i)
	return nil
}

func (b Byproduct) String() string { return nameOf(byproductNames, int(b)) }

func (b Byproduct) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *Byproduct) UnmarshalText(text []byte) error {
	i, err := indexOf(byproductNames, "byproduct", string(text))
	if err != nil {
		return err
	}
	*b = Byproduct(i)
	return nil
}
