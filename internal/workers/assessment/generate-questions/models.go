// internal/workers/assessment/generate-questions/models.go
package generatequestions

import (
	"readiness-workers/internal/assessment"
	"readiness-workers/internal/common/validation"
)

type Input struct {
	SessionID   string `json:"sessionId,omitempty"`
	Industry    string `json:"industry"`
	CompanySize string `json:"companySize"`
	Country     string `json:"country"`
}

type Output struct {
	SessionID        string                          `json:"sessionId,omitempty"`
	Questions        []assessment.AssessmentQuestion `json:"questions"`
	DroppedQuestions []assessment.DroppedEntry       `json:"droppedQuestions"`
	QuestionCount    int                             `json:"questionCount"`
}

// InputSchema checks variable types only; presence is enforced by the
// pipeline once session defaults are applied.
var InputSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"sessionId":   {Type: "string"},
		"industry":    {Type: "string"},
		"companySize": {Type: "string"},
		"country":     {Type: "string"},
	},
}
