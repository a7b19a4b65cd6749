package estimation

import (
	"encoding/json"
	"fmt"
)

// Clamp parameter names, accepted by every model.
const (
	paramMinWait = "min_wait_minutes"
	paramMaxWait = "max_wait_minutes"
)

// ParamSpec describes one numeric model parameter.
type ParamSpec struct {
	Name     string
	Required bool
	Default  float64
}

// Params holds resolved numeric parameters keyed by name.
type Params map[string]float64

// Get returns a resolved parameter. Resolution guarantees presence for every
// spec'd name, so a miss is a programming error surfaced as the zero value.
func (p Params) Get(name string) float64 {
	return p[name]
}

// resolveParams checks raw calibration params against the schema and fills
// defaults for absent optional entries. A missing required parameter or a
// non-numeric value is a configuration error.
func resolveParams(schema []ParamSpec, raw map[string]interface{}) (Params, error) {
	resolved := make(Params, len(schema))
	for _, spec := range schema {
		value, present := raw[spec.Name]
		if !present || value == nil {
			if spec.Required {
				return nil, fmt.Errorf("missing required parameter %q", spec.Name)
			}
			resolved[spec.Name] = spec.Default
			continue
		}

		number, err := toFloat(value)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", spec.Name, err)
		}
		resolved[spec.Name] = number
	}
	return resolved, nil
}

// resolveBounds extracts the optional clamp bounds. Absent bounds mean no
// clamping on that side.
func resolveBounds(raw map[string]interface{}) (min, max *float64, err error) {
	if value, ok := raw[paramMinWait]; ok && value != nil {
		number, convErr := toFloat(value)
		if convErr != nil {
			return nil, nil, fmt.Errorf("parameter %q: %w", paramMinWait, convErr)
		}
		min = &number
	}
	if value, ok := raw[paramMaxWait]; ok && value != nil {
		number, convErr := toFloat(value)
		if convErr != nil {
			return nil, nil, fmt.Errorf("parameter %q: %w", paramMaxWait, convErr)
		}
		max = &number
	}
	return min, max, nil
}

func toFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	default:
		return 0, fmt.Errorf("expected number, got %T", value)
	}
}
