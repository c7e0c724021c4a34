// Package report turns a parsed readiness report into display form and
// exports it as an Excel workbook.
package report

import (
	"sort"
	"strings"

	"readiness-workers/internal/assessment"
)

// AreaScore is one row of the area table.
type AreaScore struct {
	Area  string  `json:"area"`
	Score float64 `json:"score"`
}

// ReportView is the render-time projection of a ReadinessReport. Every
// text field is display-ready.
type ReportView struct {
	OverallScore             string      `json:"overallScore"`
	ProjectedScore           string      `json:"projectedScore"`
	Explanation              string      `json:"explanation"`
	AreaScores               []AreaScore `json:"areaScores"`
	Strengths                []string    `json:"strengths"`
	ImprovementAreas         []string    `json:"improvementAreas"`
	Risks                    []string    `json:"risks"`
	Opportunities            []string    `json:"opportunities"`
	CurrentUseCases          string      `json:"currentUseCases"`
	IdealScenarios           string      `json:"idealScenarios"`
	PolicyStrategyInsights   string      `json:"policyStrategyInsights"`
	RecommendationsForFuture []string    `json:"recommendationsForFuture"`
}

// BuildView applies the display fallbacks. A nil report yields a view made
// entirely of fallbacks.
func BuildView(r *assessment.ReadinessReport) ReportView {
	if r == nil {
		r = &assessment.ReadinessReport{}
	}

	view := ReportView{
		OverallScore:             assessment.FormatScore(r.OverallScore),
		ProjectedScore:           assessment.FormatScore(r.ProjectedScore),
		Explanation:              orDefault(r.Explanation, assessment.DefaultExplanation),
		AreaScores:               make([]AreaScore, 0, len(r.AreaScores)),
		Strengths:                nonNil(r.Strengths),
		ImprovementAreas:         nonNil(r.ImprovementAreas),
		Risks:                    nonNil(r.Risks),
		Opportunities:            nonNil(r.Opportunities),
		CurrentUseCases:          orDefault(r.AIUseCases.Current, assessment.DefaultCurrentUseCases),
		IdealScenarios:           orDefault(r.AIUseCases.Ideal, assessment.DefaultIdealScenarios),
		PolicyStrategyInsights:   orDefault(r.PolicyStrategyInsights, assessment.DefaultPolicyInsights),
		RecommendationsForFuture: nonNil(r.RecommendationsForFuture),
	}

	for area, score := range r.AreaScores {
		view.AreaScores = append(view.AreaScores, AreaScore{Area: area, Score: score})
	}
	sort.Slice(view.AreaScores, func(i, j int) bool {
		return view.AreaScores[i].Area < view.AreaScores[j].Area
	})
	return view
}

// ChartData returns one point per category in assessment.Categories order.
// Categories missing from scores plot as zero.
func ChartData(scores *assessment.CategoryScores) []assessment.CategoryScore {
	var byCat map[string]float64
	if scores != nil {
		byCat = scores.ByCategory()
	}
	out := make([]assessment.CategoryScore, len(assessment.Categories))
	for i, name := range assessment.Categories {
		out[i] = assessment.CategoryScore{Category: name, Score: byCat[name]}
	}
	return out
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
