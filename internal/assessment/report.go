package assessment

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	apperrors "readiness-workers/internal/common/errors"
	"readiness-workers/internal/common/validation"
)

const opReadinessReport = "readiness_report"

// FieldIssue describes a report field that was present but unusable and
// therefore replaced by its default.
type FieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

var scoreProperty = validation.Property{
	AnyOf: []validation.Property{{Type: "number"}, {Type: "string"}},
}

var textProperty = validation.Property{
	AnyOf: []validation.Property{{Type: "string"}, {Type: "array"}, {Type: "object"}},
}

// reportSchema constrains the top-level types of the report keys. Element
// level checks happen during extraction so that one bad entry does not
// discard a whole list.
var reportSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"overall_score":              scoreProperty,
		"projected_score":            scoreProperty,
		"explanation":                textProperty,
		"area_scores":                {Type: "object"},
		"strengths":                  {Type: "array"},
		"improvement_areas":          {Type: "array"},
		"risks":                      {Type: "array"},
		"opportunities":              {Type: "array"},
		"ai_use_cases":               {Type: "object"},
		"policy_strategy_insights":   textProperty,
		"recommendations_for_future": {Type: "array"},
		"recommendations for future": {Type: "array"},
	},
}

// ParseReport builds a ReadinessReport from a raw model response. The
// top-level value must be an object. Absent keys take their defaults;
// present but unusable values also take their defaults and are returned as
// issues.
func ParseReport(raw string) (*ReadinessReport, []FieldIssue, error) {
	doc, err := decodeResponse(opReadinessReport, raw)
	if err != nil {
		return nil, nil, err
	}

	m, ok := doc.(map[string]interface{})
	if !ok {
		return nil, nil, apperrors.NewUnexpectedShapeError(opReadinessReport,
			fmt.Sprintf("top-level value is %s, not an object", jsonKind(doc)))
	}

	// null counts as absent, not as a type violation
	present := make(map[string]interface{}, len(m))
	for k, v := range m {
		if v != nil {
			present[k] = v
		}
	}

	var issues []FieldIssue
	result := validation.ValidateInput(present, reportSchema)
	invalid := result.InvalidFields()
	for _, e := range result.Errors {
		issues = append(issues, FieldIssue{Field: e.Field, Reason: e.Message})
	}

	usable := func(key string) (interface{}, bool) {
		v, ok := present[key]
		if !ok || invalid[key] {
			return nil, false
		}
		return v, true
	}

	report := &ReadinessReport{
		Explanation:              DefaultExplanation,
		AreaScores:               map[string]float64{},
		Strengths:                []string{},
		ImprovementAreas:         []string{},
		Risks:                    []string{},
		Opportunities:            []string{},
		AIUseCases:               AIUseCases{Current: DefaultCurrentUseCases, Ideal: DefaultIdealScenarios},
		PolicyStrategyInsights:   DefaultPolicyInsights,
		RecommendationsForFuture: []string{},
	}

	if v, ok := usable("overall_score"); ok {
		report.OverallScore = readScore("overall_score", v, &issues)
	}
	if v, ok := usable("projected_score"); ok {
		report.ProjectedScore = readScore("projected_score", v, &issues)
	}
	if v, ok := usable("explanation"); ok {
		if s := strings.TrimSpace(displayValue(v)); s != "" {
			report.Explanation = s
		}
	}
	if v, ok := usable("area_scores"); ok {
		report.AreaScores = readAreaScores(v.(map[string]interface{}), &issues)
	}
	if v, ok := usable("strengths"); ok {
		report.Strengths = textList(v)
	}
	if v, ok := usable("improvement_areas"); ok {
		report.ImprovementAreas = textList(v)
	}
	if v, ok := usable("risks"); ok {
		report.Risks = textList(v)
	}
	if v, ok := usable("opportunities"); ok {
		report.Opportunities = textList(v)
	}
	if v, ok := usable("ai_use_cases"); ok {
		uc := v.(map[string]interface{})
		if s := strings.TrimSpace(displayValue(uc["current"])); s != "" {
			report.AIUseCases.Current = s
		}
		if s := strings.TrimSpace(displayValue(uc["ideal"])); s != "" {
			report.AIUseCases.Ideal = s
		}
	}
	if v, ok := usable("policy_strategy_insights"); ok {
		if s := strings.TrimSpace(displayValue(v)); s != "" {
			report.PolicyStrategyInsights = s
		}
	}
	if v, ok := usable("recommendations_for_future"); ok {
		report.RecommendationsForFuture = textList(v)
	} else if v, ok := usable("recommendations for future"); ok {
		report.RecommendationsForFuture = textList(v)
	}

	return report, issues, nil
}

// readScore accepts numbers and numeric strings such as "72", "72%" or
// "72/100". Values outside 0-100 are clamped.
func readScore(field string, v interface{}, issues *[]FieldIssue) *float64 {
	var score float64
	switch t := v.(type) {
	case float64:
		score = t
	case string:
		s := strings.TrimSpace(t)
		s = strings.TrimSuffix(s, "%")
		s = strings.TrimSuffix(s, "/100")
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*issues = append(*issues, FieldIssue{Field: field, Reason: fmt.Sprintf("not a number: %q", t)})
			return nil
		}
		score = f
	default:
		*issues = append(*issues, FieldIssue{Field: field, Reason: "not a number"})
		return nil
	}

	clamped := clamp(score, 0, 100)
	if clamped != score {
		*issues = append(*issues, FieldIssue{Field: field, Reason: fmt.Sprintf("score %v outside 0-100, clamped", score)})
	}
	return &clamped
}

func readAreaScores(m map[string]interface{}, issues *[]FieldIssue) map[string]float64 {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]float64, len(m))
	for _, k := range keys {
		if score := readScore("area_scores."+k, m[k], issues); score != nil {
			out[k] = *score
		}
	}
	return out
}

// textList flattens each array element to display text, skipping empties.
func textList(v interface{}) []string {
	arr, _ := v.([]interface{})
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s := strings.TrimSpace(displayValue(item)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
