package planning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePlan(t *testing.T) {
	raw := `{"plan": [{"skill": "CLICK", "target": "Add Agent"}, {"skill": "FILL_FORM_HAPPY_PATH"}]}`

	plan, err := DecodePlan(raw)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, SkillClick, plan.Steps[0].Skill)
	assert.Equal(t, "Add Agent", plan.Steps[0].Target)
	assert.Equal(t, SkillFillFormHappyPath, plan.Steps[1].Skill)
}

func TestDecodePlan_CodeFences(t *testing.T) {
	raw := "Here is the plan:\n```json\n{\"plan\": [{\"skill\": \"NAVIGATE\", \"url\": \"https://example.com\"}]}\n```"

	plan, err := DecodePlan(raw)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, "https://example.com", plan.Steps[0].URL)
}

func TestDecodePlan_SurroundingProse(t *testing.T) {
	raw := `Sure! {"plan": [{"skill": "CLICK", "target": "Save"}]} Hope that helps.`

	plan, err := DecodePlan(raw)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 1)
}

func TestDecodePlan_Malformed(t *testing.T) {
	for _, raw := range []string{
		`not json at all`,
		`{"plan": []}`,
		`{"plan": [{"target": "no skill"}]}`,
		`{"plan": [{"skill": "CLICK"}], "extra": true}`,
	} {
		_, err := DecodePlan(raw)
		require.Error(t, err, "raw: %s", raw)
		var uerr *UnparsableResponseError
		assert.ErrorAs(t, err, &uerr, "raw: %s", raw)
	}
}

func TestDecodeFieldMapping(t *testing.T) {
	raw := `{
		"first_name": {"namespace": "person", "method": "firstName"},
		"email": {"namespace": "internet", "method": "email"},
		"role": {"namespace": "helpers", "method": "arrayElement", "options": {"values": ["admin", "agent"]}}
	}`

	mapping, err := DecodeFieldMapping(raw)
	require.NoError(t, err)
	require.Len(t, mapping, 3)
	assert.Equal(t, "person", mapping["first_name"].Namespace)
	assert.Equal(t, "arrayElement", mapping["role"].Method)
	assert.NotNil(t, mapping["role"].Options["values"])
}

func TestDecodeFieldMapping_MissingMethod(t *testing.T) {
	_, err := DecodeFieldMapping(`{"email": {"namespace": "internet"}}`)
	var uerr *UnparsableResponseError
	require.ErrorAs(t, err, &uerr)
}

func TestDecodeValidationScenarios(t *testing.T) {
	raw := `{"scenarios": [
		{"name": "empty submission", "values": {}},
		{"name": "malformed email", "values": {"email": "not-an-email"}},
		{"name": "happy path", "values": {"email": "a@b.com", "name": "Jane"}}
	]}`

	scenarios, err := DecodeValidationScenarios(raw)
	require.NoError(t, err)
	require.Len(t, scenarios, 3)
	assert.Empty(t, scenarios[0].Values)
	assert.Equal(t, "not-an-email", scenarios[1].Values["email"])
}

func TestDecodeValidationScenarios_Empty(t *testing.T) {
	_, err := DecodeValidationScenarios(`{"scenarios": []}`)
	assert.Error(t, err)
}

func TestDecodeSessionAnalysis(t *testing.T) {
	raw := `{"summary": "mostly healthy", "keyFindings": ["login flaky"],
		"recommendations": ["add retry"], "riskAssessment": "low", "qualityScore": 82}`

	analysis, err := DecodeSessionAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, "mostly healthy", analysis.Summary)
	assert.InDelta(t, 82, analysis.QualityScore, 0.001)
}

func TestTrimmer_FallbackEstimate(t *testing.T) {
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}
	got := trimByEstimate(string(long), 10)
	assert.Len(t, got, 40)

	assert.Equal(t, "short", trimByEstimate("short", 10))
}
