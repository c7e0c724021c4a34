// internal/workers/assessment/generate-recommendations/models.go
package generaterecommendations

import (
	"readiness-workers/internal/assessment"
	"readiness-workers/internal/common/validation"
)

type Input struct {
	SessionID   string `json:"sessionId,omitempty"`
	Answers     string `json:"answers"`
	Industry    string `json:"industry"`
	CompanySize string `json:"companySize"`
	Country     string `json:"country"`
}

func (i *Input) profile() assessment.CompanyProfile {
	return assessment.CompanyProfile{Industry: i.Industry, Size: i.CompanySize, Country: i.Country}
}

type Output struct {
	SessionID           string                          `json:"sessionId,omitempty"`
	Recommendations     []assessment.RecommendationItem `json:"recommendations"`
	RecommendationCount int                             `json:"recommendationCount"`
}

var InputSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"sessionId":   {Type: "string"},
		"answers":     {Type: "string"},
		"industry":    {Type: "string"},
		"companySize": {Type: "string"},
		"country":     {Type: "string"},
	},
}
