package planning

import (
	"encoding/json"
	"fmt"
	"strings"
)

const planSystemPrompt = `You are a web test planning assistant. You translate a single
human-written test instruction into an ordered JSON plan of skill invocations.

Available skills:
- CLICK: click a named element ("target" is the element's visible name)
- NAVIGATE: open a URL ("url" is absolute)
- FILL_FORM_HAPPY_PATH: fill the active form with plausible values and submit
- TEST_FORM_VALIDATION: probe the active form's validation behavior

Respond with JSON only, in the shape {"plan": [{"skill": "...", "target": "...", "url": "..."}]}.
Omit "target"/"url" when a skill does not need them. Never invent other skills.`

const mappingSystemPrompt = `You assign a realistic value generator to each form field.
Respond with JSON only: an object keyed by field key, each value of the shape
{"namespace": "...", "method": "...", "options": {...}}. Use faker vocabulary,
e.g. person.firstName, person.lastName, internet.email, internet.password,
phone.number, company.name, lorem.sentence, helpers.arrayElement with
{"values": [...]}.`

const validationSystemPrompt = `You design validation probes for a web form. Propose: one empty
submission, malformed-format submissions for fields with formats (email, phone,
number), and exactly one happy path. Respond with JSON only, in the shape
{"scenarios": [{"name": "...", "description": "...", "values": {"fieldKey": "value"}}]}.
An empty "values" object means submit the form untouched.`

const scenarioAnalysisSystemPrompt = `You review the execution log of one test scenario and report
what it shows. Respond with JSON only: {"summary": "...", "issues": [...],
"recommendations": [...]}.`

const sessionAnalysisSystemPrompt = `You review a whole test run holistically. Respond with JSON only:
{"summary": "...", "keyFindings": [...], "recommendations": [...],
"riskAssessment": "...", "qualityScore": 0-100}.`

// buildPlanPrompt renders the instruction plus the captured page context.
func buildPlanPrompt(instruction string, pageCtx PageContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Instruction: %s\n\n", instruction)
	fmt.Fprintf(&b, "Page URL: %s\n", pageCtx.URL)
	if pageCtx.Title != "" {
		fmt.Fprintf(&b, "Page title: %s\n", pageCtx.Title)
	}
	fmt.Fprintf(&b, "Active context: %s\n", pageCtx.ActiveSelector)
	if len(pageCtx.Buttons) > 0 {
		fmt.Fprintf(&b, "Visible buttons: %s\n", strings.Join(pageCtx.Buttons, ", "))
	}
	if len(pageCtx.Links) > 0 {
		fmt.Fprintf(&b, "Visible links: %s\n", strings.Join(pageCtx.Links, ", "))
	}
	if pageCtx.HasFormCluster {
		b.WriteString("The active context contains a form-like cluster of inputs.\n")
	}
	if pageCtx.HTML != "" {
		fmt.Fprintf(&b, "\nActive context markup:\n%s\n", pageCtx.HTML)
	}
	return b.String()
}

func buildFieldsPrompt(fields []FieldSpec) string {
	payload, _ := json.MarshalIndent(fields, "", "  ")
	return fmt.Sprintf("Form fields:\n%s", payload)
}

func buildScenarioAnalysisPrompt(title string, logs []string) string {
	return fmt.Sprintf("Scenario: %s\n\nExecution log:\n%s", title, strings.Join(logs, "\n"))
}

func buildSessionAnalysisPrompt(results SessionResults, logs []string) string {
	payload, _ := json.MarshalIndent(results, "", "  ")
	var b strings.Builder
	fmt.Fprintf(&b, "Run results:\n%s\n\nExecution log:\n", payload)
	b.WriteString(strings.Join(logs, "\n"))
	return b.String()
}
