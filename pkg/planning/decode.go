package planning

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UnparsableResponseError reports a planner payload that could not be decoded
// into its expected shape. It fails the call that produced it and nothing
// else.
type UnparsableResponseError struct {
	Raw string
	Err error
}

func (e *UnparsableResponseError) Error() string {
	return fmt.Sprintf("unparsable planner response: %v", e.Err)
}

func (e *UnparsableResponseError) Unwrap() error {
	return e.Err
}

// extractJSON pulls the JSON document out of a model reply, tolerating code
// fences and prose around the payload.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[idx+3:]
		s = strings.TrimPrefix(s, "json")
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
		return strings.TrimSpace(s)
	}

	// No fences: clip to the outermost brace/bracket pair.
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	end := strings.LastIndexAny(s, "}]")
	if end <= start {
		return s
	}
	return s[start : end+1]
}

// decodeStrict unmarshals into out, rejecting unknown top-level fields so a
// drifting response shape is caught instead of silently ignored.
func decodeStrict(raw string, out any) error {
	dec := json.NewDecoder(strings.NewReader(extractJSON(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return &UnparsableResponseError{Raw: raw, Err: err}
	}
	return nil
}

// DecodePlan decodes and validates a workflow plan payload.
func DecodePlan(raw string) (*WorkflowPlan, error) {
	var plan WorkflowPlan
	if err := decodeStrict(raw, &plan); err != nil {
		return nil, err
	}
	if len(plan.Steps) == 0 {
		return nil, &UnparsableResponseError{Raw: raw, Err: fmt.Errorf("plan has no steps")}
	}
	for i, step := range plan.Steps {
		if strings.TrimSpace(step.Skill) == "" {
			return nil, &UnparsableResponseError{Raw: raw, Err: fmt.Errorf("plan step %d has no skill", i)}
		}
	}
	return &plan, nil
}

// DecodeFieldMapping decodes and validates a field mapping payload.
func DecodeFieldMapping(raw string) (FieldMapping, error) {
	var mapping FieldMapping
	if err := decodeStrict(raw, &mapping); err != nil {
		return nil, err
	}
	for key, gen := range mapping {
		if gen.Namespace == "" || gen.Method == "" {
			return nil, &UnparsableResponseError{
				Raw: raw,
				Err: fmt.Errorf("mapping for %q is missing namespace or method", key),
			}
		}
	}
	return mapping, nil
}

// DecodeValidationScenarios decodes and validates a validation scenario list.
func DecodeValidationScenarios(raw string) ([]ValidationScenario, error) {
	var payload struct {
		Scenarios []ValidationScenario `json:"scenarios"`
	}
	if err := decodeStrict(raw, &payload); err != nil {
		return nil, err
	}
	if len(payload.Scenarios) == 0 {
		return nil, &UnparsableResponseError{Raw: raw, Err: fmt.Errorf("no validation scenarios")}
	}
	for i, sc := range payload.Scenarios {
		if strings.TrimSpace(sc.Name) == "" {
			return nil, &UnparsableResponseError{Raw: raw, Err: fmt.Errorf("scenario %d has no name", i)}
		}
	}
	return payload.Scenarios, nil
}

// DecodeScenarioAnalysis decodes a scenario analysis payload.
func DecodeScenarioAnalysis(raw string) (*ScenarioAnalysis, error) {
	var analysis ScenarioAnalysis
	if err := decodeStrict(raw, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// DecodeSessionAnalysis decodes a session analysis payload.
func DecodeSessionAnalysis(raw string) (*SessionAnalysis, error) {
	var analysis SessionAnalysis
	if err := decodeStrict(raw, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}
