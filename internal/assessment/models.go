package assessment

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	apperrors "readiness-workers/internal/common/errors"
)

// QuestionKind is the answer widget a question expects.
type QuestionKind string

const (
	KindScale          QuestionKind = "scale"
	KindMultipleChoice QuestionKind = "multiple-choice"
	KindOpenEnded      QuestionKind = "open-ended"
)

// ParseQuestionKind lowercases s and maps anything unrecognised to KindOpenEnded.
func ParseQuestionKind(s string) QuestionKind {
	switch k := QuestionKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindScale, KindMultipleChoice, KindOpenEnded:
		return k
	default:
		return KindOpenEnded
	}
}

// AssessmentQuestion is one normalized questionnaire entry. Options is
// never nil and is empty unless Kind is KindMultipleChoice.
type AssessmentQuestion struct {
	Text        string       `json:"question_text"`
	Explanation string       `json:"explanation"`
	Kind        QuestionKind `json:"type"`
	ImpactLevel string       `json:"impact_level"`
	Options     []string     `json:"options"`
}

// DroppedEntry records a response element that normalization skipped.
type DroppedEntry struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// QuestionBatch is the partial-success result of RequestQuestions.
type QuestionBatch struct {
	Questions []AssessmentQuestion `json:"questions"`
	Dropped   []DroppedEntry       `json:"dropped"`
}

// RecommendationItem is passed through as the model produced it. Use Field
// to read values defensively.
type RecommendationItem map[string]interface{}

// Known recommendation fields.
const (
	RecAction     = "action"
	RecRationale  = "rationale"
	RecBenefits   = "benefits"
	RecChallenges = "challenges"
	RecExample    = "example"
	RecTimeline   = "timeline"
	RecKPIs       = "kpis"
)

// RecommendationFields lists the known fields in display order.
var RecommendationFields = []string{
	RecAction, RecRationale, RecBenefits, RecChallenges, RecExample, RecTimeline, RecKPIs,
}

// Field returns the named value rendered as text. Keys match
// case-insensitively and ignore spaces and underscores, so "KPIs" and
// "key_performance_indicators" style variants still resolve for kpis.
func (r RecommendationItem) Field(name string) string {
	if v, ok := r[name]; ok {
		return displayValue(v)
	}
	want := fieldKey(name)
	for k, v := range r {
		fk := fieldKey(k)
		if fk == want || (want == "kpis" && fk == "keyperformanceindicators") {
			return displayValue(v)
		}
	}
	return ""
}

func fieldKey(s string) string {
	s = strings.ToLower(s)
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

// displayValue flattens a decoded JSON value for display. Lists are joined
// with "; " and objects become "key: value" pairs in key order.
func displayValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := displayValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := displayValue(t[k]); s != "" {
				parts = append(parts, k+": "+s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// CompanySize is one of the fixed size bands offered by the intake form.
type CompanySize string

const (
	SizeSmall  CompanySize = "Small (1-50 employees)"
	SizeMedium CompanySize = "Medium (51-500 employees)"
	SizeLarge  CompanySize = "Large (501+ employees)"
)

// CompanySizes returns the size bands in display order.
func CompanySizes() []CompanySize {
	return []CompanySize{SizeSmall, SizeMedium, SizeLarge}
}

func (s CompanySize) Valid() bool {
	for _, known := range CompanySizes() {
		if s == known {
			return true
		}
	}
	return false
}

// CompanyProfile is the intake data every prompt is built from.
type CompanyProfile struct {
	Industry string `json:"industry"`
	Size     string `json:"size"`
	Country  string `json:"country"`
}

// Validate checks that all three fields are present.
func (p CompanyProfile) Validate() error {
	var missing []string
	if strings.TrimSpace(p.Industry) == "" {
		missing = append(missing, "industry")
	}
	if strings.TrimSpace(p.Size) == "" {
		missing = append(missing, "size")
	}
	if strings.TrimSpace(p.Country) == "" {
		missing = append(missing, "country")
	}
	if len(missing) > 0 {
		return apperrors.NewInvalidInputError("missing company profile fields: " + strings.Join(missing, ", "))
	}
	return nil
}

// ValidateStrict additionally requires Size to be a known band.
func (p CompanyProfile) ValidateStrict() error {
	if err := p.Validate(); err != nil {
		return err
	}
	if !CompanySize(p.Size).Valid() {
		bands := make([]string, 0, len(CompanySizes()))
		for _, s := range CompanySizes() {
			bands = append(bands, string(s))
		}
		return apperrors.NewInvalidInputError(fmt.Sprintf("unknown company size %q, expected one of: %s", p.Size, strings.Join(bands, "; ")))
	}
	return nil
}

// Report text used when the model leaves a field out.
const (
	DefaultExplanation     = "No explanation available."
	DefaultCurrentUseCases = "No current use cases available."
	DefaultIdealScenarios  = "No ideal scenarios available."
	DefaultPolicyInsights  = "No policy and strategy insights available."
)

// AIUseCases compares today's use cases with the ideal ones.
type AIUseCases struct {
	Current string `json:"current"`
	Ideal   string `json:"ideal"`
}

// ReadinessReport is the scored assessment. Defaults are applied while
// parsing: collections are never nil and text fields carry the Default*
// strings when the model omitted them. A nil score means the model gave
// none; see FormatScore.
type ReadinessReport struct {
	OverallScore             *float64           `json:"overall_score"`
	Explanation              string             `json:"explanation"`
	AreaScores               map[string]float64 `json:"area_scores"`
	Strengths                []string           `json:"strengths"`
	ImprovementAreas         []string           `json:"improvement_areas"`
	ProjectedScore           *float64           `json:"projected_score"`
	Risks                    []string           `json:"risks"`
	Opportunities            []string           `json:"opportunities"`
	AIUseCases               AIUseCases         `json:"ai_use_cases"`
	PolicyStrategyInsights   string             `json:"policy_strategy_insights"`
	RecommendationsForFuture []string           `json:"recommendations_for_future"`
}

// NotAvailable is how an absent score is displayed.
const NotAvailable = "N/A"

// FormatScore renders a score without trailing zeros, or "N/A" when absent.
func FormatScore(score *float64) string {
	if score == nil {
		return NotAvailable
	}
	return strconv.FormatFloat(*score, 'f', -1, 64)
}

// Categories is the fixed category order used by CalculateScores and charts.
var Categories = []string{"Policy", "Data Governance", "Strategy", "AI Capabilities", "Ethics"}

// CategoryScore is one point of the category chart.
type CategoryScore struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// CategoryScores is the result of CalculateScores. Categories follows the
// order of the Categories variable.
type CategoryScores struct {
	Overall    float64         `json:"overall"`
	Categories []CategoryScore `json:"categories"`
}

// ByCategory returns the category means keyed by name.
func (c CategoryScores) ByCategory() map[string]float64 {
	out := make(map[string]float64, len(c.Categories))
	for _, cs := range c.Categories {
		out[cs.Category] = cs.Score
	}
	return out
}
