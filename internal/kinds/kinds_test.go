package kinds

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestResourceMapJSONUsesNames(t *testing.T) {
	m := ResourceMap{ResourceWater: 10, ResourceLand: 2}

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"land":2,"water":10,"electricity":0,"fuel":0}`, string(b))

	var back ResourceMap
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, m, back)
}

func TestFeedstockMapYAMLPartial(t *testing.T) {
	var m FeedstockMap
	require.NoError(t, yaml.Unmarshal([]byte("oil: 1.5\nuranium: 0.2\n"), &m))
	assert.Equal(t, 1.5, m[FeedstockOil])
	assert.Equal(t, 0.2, m[FeedstockUranium])
	assert.Zero(t, m[FeedstockCoal])
}

func TestUnknownNameRejected(t *testing.T) {
	var m OutputMap
	err := json.Unmarshal([]byte(`{"steel": 1}`), &m)
	require.ErrorIs(t, err, ErrUnknownName)

	var o Output
	require.ErrorIs(t, o.UnmarshalText([]byte("steel")), ErrUnknownName)
}

func TestKindTextRoundTripInYAMLKeys(t *testing.T) {
	var m map[Output]string
	require.NoError(t, yaml.Unmarshal([]byte("plant_calories: farms\n"), &m))
	assert.Equal(t, "farms", m[OutputPlantCalories])
}

func TestDotAndCO2eq(t *testing.T) {
	intensity := ResourceMap{ResourceWater: 10, ResourceLand: 1}
	weights := ResourceMap{ResourceWater: 2, ResourceLand: 3}
	assert.InDelta(t, 23.0, intensity.Dot(weights), 1e-9)

	b := ByproductMap{ByproductCO2: 1, ByproductCH4: 1, ByproductN2O: 1, ByproductBiodiversity: 5}
	assert.InDelta(t, 335.0, b.CO2eq(), 1e-9)
}

func TestStringOutOfRange(t *testing.T) {
	assert.Equal(t, "unknown(9)", Resource(9).String())
	assert.Equal(t, "natural_gas", FeedstockNaturalGas.String())
}
