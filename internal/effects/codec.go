package effects

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Envelope carries one Effect on the wire as {"type": <Kind>, "params": {...}}.
type Envelope struct {
	Effect Effect
}

// Wrap puts each effect in an Envelope.
func Wrap(effects []Effect) []Envelope {
	out := make([]Envelope, len(effects))
	for i, e := range effects {
		out[i] = Envelope{Effect: e}
	}
	return out
}

// Unwrap takes the effect out of each Envelope.
func Unwrap(envs []Envelope) []Effect {
	out := make([]Effect, len(envs))
	for i, env := range envs {
		out[i] = env.Effect
	}
	return out
}

type decodeFunc func(decode func(any) error) (Effect, error)

func variant[T Effect]() decodeFunc {
	return func(decode func(any) error) (Effect, error) {
		var v T
		if err := decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

var decoders = map[Kind]decodeFunc{
	KindLocalVariable:            variant[LocalVariable](),
	KindWorldVariable:            variant[WorldVariable](),
	KindPlayerVariable:           variant[PlayerVariable](),
	KindResource:                 variant[Resource](),
	KindDemand:                   variant[Demand](),
	KindOutput:                   variant[Output](),
	KindDemandAmount:             variant[DemandAmount](),
	KindOutputForFeature:         variant[OutputForFeature](),
	KindOutputForProcess:         variant[OutputForProcess](),
	KindFeedstock:                variant[Feedstock](),
	KindAddEvent:                 variant[AddEvent](),
	KindTriggerEvent:             variant[TriggerEvent](),
	KindUnlocksProject:           variant[UnlocksProject](),
	KindUnlocksProcess:           variant[UnlocksProcess](),
	KindProjectRequest:           variant[ProjectRequest](),
	KindProcessRequest:           variant[ProcessRequest](),
	KindMigration:                variant[Migration](),
	KindRegionLeave:              variant[RegionLeave](),
	KindAddRegionFlag:            variant[AddRegionFlag](),
	KindAddFlag:                  variant[AddFlag](),
	KindAutoClick:                variant[AutoClick](),
	KindNPCRelationship:          variant[NPCRelationship](),
	KindModifyIndustryByproducts: variant[ModifyIndustryByproducts](),
	KindModifyIndustryResources:  variant[ModifyIndustryResources](),
	KindModifyEventProbability:   variant[ModifyEventProbability](),
	KindModifyIndustryDemand:     variant[ModifyIndustryDemand](),
	KindDemandOutlookChange:      variant[DemandOutlookChange](),
	KindIncomeOutlookChange:      variant[IncomeOutlookChange](),
	KindProjectCostModifier:      variant[ProjectCostModifier](),
	KindProtectLand:              variant[ProtectLand](),
}

func decodeEffect(kind Kind, decode func(any) error) (Effect, error) {
	dec, ok := decoders[kind]
	if !ok {
		return nil, fmt.Errorf("%q: %w", kind, ErrUnknownKind)
	}
	e, err := dec(decode)
	if err != nil {
		return nil, fmt.Errorf("decode %s params: %w", kind, err)
	}
	return e, nil
}

type jsonEnvelope struct {
	Type   Kind            `json:"type"`
	Params json.RawMessage `json:"params,omitempty"`
}

func (env Envelope) MarshalJSON() ([]byte, error) {
	if env.Effect == nil {
		return nil, fmt.Errorf("encode nil effect: %w", ErrUnknownKind)
	}
	params, err := json.Marshal(env.Effect)
	if err != nil {
		return nil, fmt.Errorf("encode %s params: %w", env.Effect.Kind(), err)
	}
	return json.Marshal(jsonEnvelope{Type: env.Effect.Kind(), Params: params})
}

func (env *Envelope) UnmarshalJSON(b []byte) error {
	var raw jsonEnvelope
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decode effect: %w", err)
	}
	e, err := decodeEffect(raw.Type, func(v any) error {
		if len(raw.Params) == 0 {
			return nil
		}
		return json.Unmarshal(raw.Params, v)
	})
	if err != nil {
		return err
	}
	env.Effect = e
	return nil
}

type yamlEnvelope struct {
	Type   Kind      `yaml:"type"`
	Params yaml.Node `yaml:"params,omitempty"`
}

func (env Envelope) MarshalYAML() (any, error) {
	if env.Effect == nil {
		return nil, fmt.Errorf("encode nil effect: %w", ErrUnknownKind)
	}
	return struct {
		Type   Kind   `yaml:"type"`
		Params Effect `yaml:"params"`
	}{env.Effect.Kind(), env.Effect}, nil
}

func (env *Envelope) UnmarshalYAML(n *yaml.Node) error {
	var raw yamlEnvelope
	if err := n.Decode(&raw); err != nil {
		return fmt.Errorf("decode effect: %w", err)
	}
	e, err := decodeEffect(raw.Type, func(v any) error {
		if raw.Params.Kind == 0 {
			return nil
		}
		return raw.Params.Decode(v)
	})
	if err != nil {
		return err
	}
	env.Effect = e
	return nil
}
