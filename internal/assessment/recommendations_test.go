package assessment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "readiness-workers/internal/common/errors"
)

const fiveRecommendations = `[
  {"action": "Publish an AI policy", "rationale": "r1", "benefits": "b1", "challenges": "c1", "example": "e1", "timeline": "short-term", "kpis": ["Policy adopted", "Training completion"]},
  {"action": "Build a data catalog", "rationale": "r2", "timeline": "medium-term"},
  {"action": "Hire an ML lead"},
  {"action": "Pilot demand forecasting", "extra_field": {"budget": 50000}},
  {"action": "Set up an ethics board", "Key Performance Indicators": "Reviews per quarter"}
]`

func TestParseRecommendations_BareArray(t *testing.T) {
	items, dropped, err := ParseRecommendations(fiveRecommendations)
	require.NoError(t, err)
	assert.Empty(t, dropped)
	require.Len(t, items, 5)

	assert.Equal(t, "Publish an AI policy", items[0].Field(RecAction))
	assert.Equal(t, "Policy adopted; Training completion", items[0].Field(RecKPIs))
	assert.Equal(t, "short-term", items[0].Field(RecTimeline))

	assert.Equal(t, "", items[2].Field(RecRationale), "missing fields read as empty")
	assert.Equal(t, map[string]interface{}{"budget": 50000.0}, items[3]["extra_field"], "unknown keys pass through")
	assert.Equal(t, "Reviews per quarter", items[4].Field(RecKPIs))
}

func TestParseRecommendations_WrappedAndFenced(t *testing.T) {
	items, _, err := ParseRecommendations("```json\n{\"recommendations\": " + fiveRecommendations + "}\n```")
	require.NoError(t, err)
	assert.Len(t, items, 5)
}

func TestParseRecommendations_DropsNonObjects(t *testing.T) {
	items, dropped, err := ParseRecommendations(`[{"action": "A"}, "B", 3, null, {"action": "C"}]`)
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "C", items[1].Field(RecAction))

	require.Len(t, dropped, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{dropped[0].Index, dropped[1].Index, dropped[2].Index})
	assert.Equal(t, "element is a string, not an object", dropped[0].Reason)
	assert.Equal(t, "element is null, not an object", dropped[2].Reason)
}

func TestParseRecommendations_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{name: "empty", raw: "", want: apperrors.ErrEmptyResponse},
		{name: "malformed", raw: `[{"action": "A"`, want: apperrors.ErrMalformedJSON},
		{name: "object without key", raw: `{"items": []}`, want: apperrors.ErrUnexpectedShape},
		{name: "string", raw: `"do more AI"`, want: apperrors.ErrUnexpectedShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, _, err := ParseRecommendations(tt.raw)
			require.Error(t, err)
			assert.Nil(t, items)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestRecommendationItem_Field(t *testing.T) {
	item := RecommendationItem{
		"Action":     "Upper case key",
		"time_line":  "long-term",
		"benefits":   []interface{}{"Faster", "Cheaper"},
		"challenges": map[string]interface{}{"people": "skills", "data": "quality"},
		"example":    42.0,
	}

	assert.Equal(t, "Upper case key", item.Field(RecAction))
	assert.Equal(t, "long-term", item.Field(RecTimeline))
	assert.Equal(t, "Faster; Cheaper", item.Field(RecBenefits))
	assert.Equal(t, "data: quality; people: skills", item.Field(RecChallenges))
	assert.Equal(t, "42", item.Field(RecExample))
	assert.Equal(t, "", item.Field(RecKPIs))
}
