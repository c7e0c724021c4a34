// internal/workers/assessment/calculate-scores/models.go
package calculatescores

import (
	"strconv"

	"readiness-workers/internal/assessment"
	"readiness-workers/internal/common/validation"
)

// Input accepts answers as strings or JSON numbers; both are scored as
// integers.
type Input struct {
	SessionID string        `json:"sessionId,omitempty"`
	Answers   []interface{} `json:"answers"`
}

func (i *Input) answerList() []string {
	out := make([]string, len(i.Answers))
	for idx, a := range i.Answers {
		switch v := a.(type) {
		case string:
			out[idx] = v
		case float64:
			out[idx] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return out
}

type Output struct {
	SessionID      string                     `json:"sessionId,omitempty"`
	Overall        float64                    `json:"overall"`
	Categories     []assessment.CategoryScore `json:"categories"`
	CategoryScores map[string]float64         `json:"categoryScores"`
}

var InputSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"sessionId": {Type: "string"},
		"answers": {
			Type:  "array",
			Items: &validation.Property{AnyOf: []validation.Property{{Type: "string"}, {Type: "number"}}},
		},
	},
}
