// Package planning defines the AI planning collaborator: the component the
// dispatcher escalates to when the grammar cannot parse an instruction, and
// the source of field mappings, validation scenarios and post-run analysis.
//
// The collaborator is an explicit, constructor-injected interface so tests
// can substitute a double; nothing in the engine reaches for a global client.
package planning

import "context"

// Skill tags a workflow plan step may carry. An unknown tag is a hard error
// for the step being dispatched.
const (
	SkillClick              = "CLICK"
	SkillNavigate           = "NAVIGATE"
	SkillFillFormHappyPath  = "FILL_FORM_HAPPY_PATH"
	SkillTestFormValidation = "TEST_FORM_VALIDATION"
)

// PlanStep is one entry of a workflow plan.
type PlanStep struct {
	Skill  string `json:"skill"`
	Target string `json:"target,omitempty"`
	URL    string `json:"url,omitempty"`
}

// WorkflowPlan is the ordered list of skill invocations produced for an
// instruction the grammar could not parse. Ephemeral: produced and consumed
// within one step.
type WorkflowPlan struct {
	Steps []PlanStep `json:"plan"`
}

// PageContext is the snapshot of the active DOM handed to the planner.
type PageContext struct {
	URL            string
	Title          string
	ActiveSelector string // modal container selector, or "body"
	HTML           string // cleaned, token-trimmed markup
	Buttons        []string
	Links          []string
	HasFormCluster bool // three or more inputs inside the active context
}

// FieldSpec describes one fillable input discovered on the page.
type FieldSpec struct {
	Key         string `json:"key"`
	Label       string `json:"label,omitempty"`
	Name        string `json:"name,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Type        string `json:"type,omitempty"`
}

// Generator names a value generator: a namespace plus method in faker
// vocabulary ("person.firstName", "internet.email", "helpers.arrayElement"),
// with optional method arguments.
type Generator struct {
	Namespace string         `json:"namespace"`
	Method    string         `json:"method"`
	Options   map[string]any `json:"options,omitempty"`
}

// FieldMapping maps a field key to its value generator.
type FieldMapping map[string]Generator

// ValidationScenario is one probe of a form's validation behavior.
type ValidationScenario struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Values      map[string]string `json:"values"` // field key -> value; empty map probes empty submission
}

// ScenarioAnalysis is the planner's read on one finished scenario.
type ScenarioAnalysis struct {
	Summary         string   `json:"summary"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
}

// SessionResults summarizes a run for the final holistic analysis.
type SessionResults struct {
	URL              string   `json:"url"`
	PassedScenarios  int      `json:"passed_scenarios"`
	FailedScenarios  int      `json:"failed_scenarios"`
	PassedSteps      int      `json:"passed_steps"`
	FailedSteps      int      `json:"failed_steps"`
	ScenarioTitles   []string `json:"scenario_titles"`
	FailedTitles     []string `json:"failed_titles,omitempty"`
	DurationSeconds  float64  `json:"duration_seconds"`
}

// SessionAnalysis is the planner's holistic read on a whole run.
type SessionAnalysis struct {
	Summary         string   `json:"summary"`
	KeyFindings     []string `json:"keyFindings"`
	Recommendations []string `json:"recommendations"`
	RiskAssessment  string   `json:"riskAssessment"`
	QualityScore    float64  `json:"qualityScore"`
}

// Client is the AI planning collaborator. Every method is JSON-in/JSON-out;
// a malformed response fails that call only, as *UnparsableResponseError.
type Client interface {
	// Plan produces a workflow plan for an instruction the grammar rejected.
	Plan(ctx context.Context, instruction string, pageCtx PageContext) (*WorkflowPlan, error)

	// MapFormFields assigns a value generator to each discovered field.
	MapFormFields(ctx context.Context, fields []FieldSpec) (FieldMapping, error)

	// ValidationScenarios proposes probes for a form: an empty submission,
	// malformed-format submissions, and one happy path.
	ValidationScenarios(ctx context.Context, fields []FieldSpec) ([]ValidationScenario, error)

	// AnalyzeScenario reviews one finished scenario against its log lines.
	AnalyzeScenario(ctx context.Context, title string, logs []string) (*ScenarioAnalysis, error)

	// AnalyzeSession reviews the whole run.
	AnalyzeSession(ctx context.Context, results SessionResults, logs []string) (*SessionAnalysis, error)
}
