package estimation

import (
	"fmt"
	"sort"
)

// Model couples a pure formula with its parameter schema. Adding a model means
// defining one of these and listing it in the registry below; dispatch and
// transport stay untouched.
type Model struct {
	ID     string
	Schema []ParamSpec
	Eval   func(in Input, p Params) float64
}

var registry = map[string]Model{
	ModelLinearV1:         linearV1,
	ModelLinearV2:         linearV2,
	ModelObstructionCount: obstructionCountV1,
}

// Lookup returns the registered model for an id.
func Lookup(modelID string) (Model, bool) {
	model, ok := registry[modelID]
	return model, ok
}

// ModelIDs lists the registered model ids, sorted.
func ModelIDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ValidateParams checks calibration params against a model's schema without
// evaluating anything. Used by the device service to fail fast at startup.
func ValidateParams(modelID string, raw map[string]interface{}) error {
	model, ok := registry[modelID]
	if !ok {
		return fmt.Errorf("unknown model %q", modelID)
	}
	if _, err := resolveParams(model.Schema, raw); err != nil {
		return err
	}
	if _, _, err := resolveBounds(raw); err != nil {
		return err
	}
	return nil
}

// Dispatch resolves the model, validates params, evaluates the formula over
// the obstruction samples, and applies the optional clamp bounds. Failures are
// reported in-band as a degraded Outcome carrying an error code.
func Dispatch(modelID string, raw map[string]interface{}, obstructions []Obstruction) Outcome {
	model, ok := registry[modelID]
	if !ok {
		return Outcome{Status: StatusDegraded, ErrorCode: ErrCodeConfigError}
	}

	params, err := resolveParams(model.Schema, raw)
	if err != nil {
		return Outcome{Status: StatusDegraded, ErrorCode: ErrCodeConfigError}
	}
	min, max, err := resolveBounds(raw)
	if err != nil {
		return Outcome{Status: StatusDegraded, ErrorCode: ErrCodeConfigError}
	}

	in, ok := InputFromObstructions(obstructions)
	if !ok {
		return Outcome{Status: StatusDegraded, ErrorCode: ErrCodeNoData}
	}

	// wait = max(min_wait, min(max_wait, wait)); one-sided bounds clamp that side only.
	wait := model.Eval(in, params)
	if max != nil && wait > *max {
		wait = *max
	}
	if min != nil && wait < *min {
		wait = *min
	}

	return Outcome{WaitTimeMinutes: &wait, Status: StatusOK}
}
