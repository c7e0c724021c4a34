package assessment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "readiness-workers/internal/common/errors"
)

const fullReport = `{
  "overall_score": 72,
  "explanation": "Solid data foundations, weak governance.",
  "area_scores": {"Strategy": 60, "Data Governance": "70%"},
  "strengths": ["Cloud data platform", "Executive sponsor"],
  "improvement_areas": ["AI policy"],
  "projected_score": "85/100",
  "risks": ["Vendor lock-in"],
  "opportunities": ["Demand forecasting"],
  "ai_use_cases": {"current": "Chatbot for support", "ideal": "Predictive maintenance"},
  "policy_strategy_insights": "Publish an acceptable-use policy.",
  "recommendations_for_future": ["Hire an ML lead"]
}`

func fieldsOf(issues []FieldIssue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Field)
	}
	return out
}

func TestParseReport_FullReport(t *testing.T) {
	report, issues, err := ParseReport("```json\n" + fullReport + "\n```")
	require.NoError(t, err)
	assert.Empty(t, issues)

	require.NotNil(t, report.OverallScore)
	assert.Equal(t, 72.0, *report.OverallScore)
	require.NotNil(t, report.ProjectedScore)
	assert.Equal(t, 85.0, *report.ProjectedScore)
	assert.Equal(t, "Solid data foundations, weak governance.", report.Explanation)
	assert.Equal(t, map[string]float64{"Strategy": 60, "Data Governance": 70}, report.AreaScores)
	assert.Equal(t, []string{"Cloud data platform", "Executive sponsor"}, report.Strengths)
	assert.Equal(t, []string{"AI policy"}, report.ImprovementAreas)
	assert.Equal(t, []string{"Vendor lock-in"}, report.Risks)
	assert.Equal(t, []string{"Demand forecasting"}, report.Opportunities)
	assert.Equal(t, AIUseCases{Current: "Chatbot for support", Ideal: "Predictive maintenance"}, report.AIUseCases)
	assert.Equal(t, "Publish an acceptable-use policy.", report.PolicyStrategyInsights)
	assert.Equal(t, []string{"Hire an ML lead"}, report.RecommendationsForFuture)
}

func TestParseReport_EmptyObjectTakesDefaults(t *testing.T) {
	report, issues, err := ParseReport(`{}`)
	require.NoError(t, err)
	assert.Empty(t, issues)

	assert.Nil(t, report.OverallScore)
	assert.Nil(t, report.ProjectedScore)
	assert.Equal(t, NotAvailable, FormatScore(report.OverallScore))
	assert.Equal(t, DefaultExplanation, report.Explanation)
	assert.Equal(t, DefaultCurrentUseCases, report.AIUseCases.Current)
	assert.Equal(t, DefaultIdealScenarios, report.AIUseCases.Ideal)
	assert.Equal(t, DefaultPolicyInsights, report.PolicyStrategyInsights)

	assert.NotNil(t, report.AreaScores)
	assert.Empty(t, report.AreaScores)
	for _, list := range [][]string{report.Strengths, report.ImprovementAreas, report.Risks, report.Opportunities, report.RecommendationsForFuture} {
		assert.NotNil(t, list)
		assert.Empty(t, list)
	}
}

func TestParseReport_MissingOverallScoreKeepsOtherFields(t *testing.T) {
	report, _, err := ParseReport(`{"explanation": "Partial", "strengths": ["One"]}`)
	require.NoError(t, err)
	assert.Equal(t, "N/A", FormatScore(report.OverallScore))
	assert.Equal(t, "Partial", report.Explanation)
	assert.Equal(t, []string{"One"}, report.Strengths)
}

func TestParseReport_NullFieldsAreAbsent(t *testing.T) {
	report, issues, err := ParseReport(`{"overall_score": null, "strengths": null, "explanation": null}`)
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Nil(t, report.OverallScore)
	assert.Empty(t, report.Strengths)
	assert.Equal(t, DefaultExplanation, report.Explanation)
}

func TestParseReport_ScoreForms(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      *float64
		wantIssue bool
	}{
		{name: "integer", raw: `{"overall_score": 72}`, want: ptr(72)},
		{name: "fraction", raw: `{"overall_score": 64.5}`, want: ptr(64.5)},
		{name: "numeric string", raw: `{"overall_score": "72"}`, want: ptr(72)},
		{name: "percent string", raw: `{"overall_score": "72%"}`, want: ptr(72)},
		{name: "out of hundred", raw: `{"overall_score": "72/100"}`, want: ptr(72)},
		{name: "padded string", raw: `{"overall_score": " 64.5 "}`, want: ptr(64.5)},
		{name: "word", raw: `{"overall_score": "high"}`, wantIssue: true},
		{name: "boolean", raw: `{"overall_score": true}`, wantIssue: true},
		{name: "above range", raw: `{"overall_score": 120}`, want: ptr(100), wantIssue: true},
		{name: "below range", raw: `{"overall_score": -5}`, want: ptr(0), wantIssue: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, issues, err := ParseReport(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, report.OverallScore)
			if tt.wantIssue {
				assert.Contains(t, fieldsOf(issues), "overall_score")
			} else {
				assert.Empty(t, issues)
			}
		})
	}
}

func TestParseReport_InvalidFieldsFallBackToDefaults(t *testing.T) {
	raw := `{
	  "overall_score": 50,
	  "strengths": "not a list",
	  "area_scores": [1, 2],
	  "ai_use_cases": "none yet",
	  "explanation": 42
	}`

	report, issues, err := ParseReport(raw)
	require.NoError(t, err)

	require.NotNil(t, report.OverallScore)
	assert.Equal(t, 50.0, *report.OverallScore)
	assert.Empty(t, report.Strengths)
	assert.NotNil(t, report.Strengths)
	assert.Empty(t, report.AreaScores)
	assert.Equal(t, DefaultCurrentUseCases, report.AIUseCases.Current)
	assert.Equal(t, DefaultExplanation, report.Explanation)

	fields := fieldsOf(issues)
	for _, f := range []string{"strengths", "area_scores", "ai_use_cases", "explanation"} {
		assert.Contains(t, fields, f)
	}
	assert.NotContains(t, fields, "overall_score")
}

func TestParseReport_AreaScoreEntries(t *testing.T) {
	report, issues, err := ParseReport(`{"area_scores": {"Ethics": "n/a", "Policy": 40, "Strategy": 150}}`)
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"Policy": 40, "Strategy": 100}, report.AreaScores)
	fields := fieldsOf(issues)
	assert.Contains(t, fields, "area_scores.Ethics")
	assert.Contains(t, fields, "area_scores.Strategy")
}

func TestParseReport_RecommendationsForFutureAlias(t *testing.T) {
	report, _, err := ParseReport(`{"recommendations for future": ["Build a data team"]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Build a data team"}, report.RecommendationsForFuture)

	report, _, err = ParseReport(`{"recommendations_for_future": ["Canonical"], "recommendations for future": ["Alias"]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Canonical"}, report.RecommendationsForFuture)
}

func TestParseReport_FlattensStructuredText(t *testing.T) {
	raw := `{
	  "explanation": ["First point", "Second point"],
	  "policy_strategy_insights": {"policy": "Draft one", "strategy": "Align to goals"},
	  "strengths": [{"area": "Data", "note": "Clean"}, "", "Plain"],
	  "ai_use_cases": {"current": ["Chatbot", "OCR"]}
	}`

	report, issues, err := ParseReport(raw)
	require.NoError(t, err)
	assert.Empty(t, issues)

	assert.Equal(t, "First point; Second point", report.Explanation)
	assert.Equal(t, "policy: Draft one; strategy: Align to goals", report.PolicyStrategyInsights)
	assert.Equal(t, []string{"area: Data; note: Clean", "Plain"}, report.Strengths)
	assert.Equal(t, "Chatbot; OCR", report.AIUseCases.Current)
	assert.Equal(t, DefaultIdealScenarios, report.AIUseCases.Ideal)
}

func TestParseReport_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{name: "empty", raw: "", want: apperrors.ErrEmptyResponse},
		{name: "prose", raw: "Your company is doing great!", want: apperrors.ErrMalformedJSON},
		{name: "array", raw: `[]`, want: apperrors.ErrUnexpectedShape},
		{name: "string", raw: `"x"`, want: apperrors.ErrUnexpectedShape},
		{name: "number", raw: `72`, want: apperrors.ErrUnexpectedShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, issues, err := ParseReport(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Nil(t, report)
			assert.Nil(t, issues)
		})
	}
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "N/A", FormatScore(nil))
	assert.Equal(t, "72", FormatScore(ptr(72)))
	assert.Equal(t, "64.5", FormatScore(ptr(64.5)))
}

func ptr(v float64) *float64 { return &v }
