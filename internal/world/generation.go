// Region generation using layered simplex noise.
// Each region samples the noise field at a point on a ring, so neighbouring
// regions get correlated habitability, wealth and climate exposure.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds region generation parameters.
type GenConfig struct {
	Seed       int64   // Random seed (0 = random)
	Regions    int     // Number of regions (capped at len(regionNames))
	Population float64 // Total starting population
	StartYear  int
}

// DefaultGenConfig returns a planet shaped roughly like the present day.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Seed:       0,
		Regions:    len(regionNames),
		Population: 7.8e9,
		StartYear:  2022,
	}
}

// SmallTestConfig returns a tiny planet for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Seed:       42,
		Regions:    6,
		Population: 1e6,
		StartYear:  2022,
	}
}

var regionNames = []string{
	"Northern Africa", "Western Africa", "Eastern Africa", "Southern Africa",
	"Central America", "Northern America", "Caribbean", "South America",
	"Central Asia", "Eastern Asia", "South-eastern Asia", "Southern Asia", "Western Asia",
	"Eastern Europe", "Northern Europe", "Southern Europe", "Western Europe",
	"Oceania", "Melanesia", "Polynesia",
}

// Generate creates the starting world with cfg.Regions regions.
func Generate(cfg GenConfig) *World {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	n := min(max(cfg.Regions, 1), len(regionNames))

	// Independent noise layers.
	habNoise := opensimplex.NewNormalized(seed)
	wealthNoise := opensimplex.NewNormalized(seed + 1)
	exposureNoise := opensimplex.NewNormalized(seed + 2)
	popNoise := opensimplex.NewNormalized(seed + 3)

	w := &World{Year: cfg.StartYear, Regions: make([]Region, n)}

	weights := make([]float64, n)
	var totalWeight float64
	for i := range n {
		angle := 2 * math.Pi * float64(i) / float64(n)
		x, y := math.Cos(angle)*4, math.Sin(angle)*4

		hab := octaveNoise(habNoise, x, y, 3, 0.5, 0.5)
		wealth := octaveNoise(wealthNoise, x, y, 3, 0.5, 0.5)
		exposure := octaveNoise(exposureNoise, x, y, 2, 0.5, 0.5)
		weights[i] = 0.2 + octaveNoise(popNoise, x, y, 2, 0.5, 0.5)
		totalWeight += weights[i]

		tier := min(int(wealth*4), int(IncomeHigh))
		w.Regions[i] = Region{
			ID:               i,
			Name:             regionNames[i],
			Outlook:          10 + hab*10,
			BaseHabitability: 5 + hab*10,
			Exposure:         exposure,
			Income:           Income(tier),
			Development:      wealth*4 - float64(tier),
		}
		if w.Regions[i].Development > 1 {
			w.Regions[i].Development = 1
		}
	}

	for i := range w.Regions {
		w.Regions[i].Population = cfg.Population * weights[i] / totalWeight
	}
	return w
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
