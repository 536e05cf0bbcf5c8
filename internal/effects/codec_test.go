package effects

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/talgya/planetsim/internal/kinds"
	"github.com/talgya/planetsim/internal/production"
)

func TestEnvelopeJSON(t *testing.T) {
	b, err := json.Marshal(Envelope{Effect: Resource{Resource: kinds.ResourceWater, Change: 0.5}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Resource","params":{"resource":"water","change":0.5}}`, string(b))

	var env Envelope
	require.NoError(t, json.Unmarshal(b, &env))
	assert.Equal(t, Resource{Resource: kinds.ResourceWater, Change: 0.5}, env.Effect)
}

func TestEveryVariantSurvivesJSON(t *testing.T) {
	all := append(reversibleEffects(), oneWayEffects()...)
	seen := map[Kind]bool{}
	for _, e := range all {
		seen[e.Kind()] = true
	}
	require.Len(t, seen, len(decoders))

	b, err := json.Marshal(Wrap(all))
	require.NoError(t, err)

	var envs []Envelope
	require.NoError(t, json.Unmarshal(b, &envs))
	assert.Equal(t, all, Unwrap(envs))
}

func TestEnvelopeYAML(t *testing.T) {
	src := `
- type: OutputForFeature
  params:
    feature: is_solar
    change: 0.2
- type: WorldVariable
  params: {var: sea_level_rise, change: 0.1}
- type: Migration
- type: AddFlag
  params: {flag: electrified}
`
	var envs []Envelope
	require.NoError(t, yaml.Unmarshal([]byte(src), &envs))
	require.Len(t, envs, 4)
	assert.Equal(t, OutputForFeature{Feature: production.FeatureIsSolar, Change: 0.2}, envs[0].Effect)
	assert.Equal(t, WorldVariable{Var: WorldSeaLevelRise, Change: 0.1}, envs[1].Effect)
	assert.Equal(t, Migration{}, envs[2].Effect)
	assert.Equal(t, KindAddFlag, envs[3].Effect.Kind())

	out, err := yaml.Marshal(envs)
	require.NoError(t, err)
	var again []Envelope
	require.NoError(t, yaml.Unmarshal(out, &again))
	assert.Equal(t, envs, again)
}

func TestDecodeErrors(t *testing.T) {
	var env Envelope
	err := json.Unmarshal([]byte(`{"type":"Teleport","params":{}}`), &env)
	require.ErrorIs(t, err, ErrUnknownKind)

	err = json.Unmarshal([]byte(`{"type":"Resource","params":{"resource":"unobtainium"}}`), &env)
	require.ErrorIs(t, err, kinds.ErrUnknownName)

	err = yaml.Unmarshal([]byte("type: LocalVariable\nparams: {var: mood}\n"), &env)
	require.ErrorIs(t, err, kinds.ErrUnknownName)

	_, err = json.Marshal(Envelope{})
	require.Error(t, err)
}
