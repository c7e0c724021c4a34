// internal/workers/assessment/generate-readiness-report/models.go
package generatereadinessreport

import (
	"readiness-workers/internal/assessment"
	"readiness-workers/internal/common/validation"
	"readiness-workers/internal/report"
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

// Output carries the parsed report for downstream tasks and the display
// view with defaults resolved and area scores ordered.
type Output struct {
	SessionID  string                      `json:"sessionId,omitempty"`
	Report     *assessment.ReadinessReport `json:"report"`
	ReportView report.ReportView           `json:"reportView"`
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
