package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"readiness-workers/internal/assessment"
)

// Sheet names in the exported workbook.
const (
	SheetSummary         = "Summary"
	SheetAreaScores      = "Area Scores"
	SheetCategories      = "Categories"
	SheetRecommendations = "Recommendations"
)

// ContentTypeXLSX is the MIME type of the exported workbook.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportXLSX writes the report view, the questionnaire category scores and
// the recommendations as a workbook with a summary sheet and two radar
// charts. scores and recs may be nil.
func ExportXLSX(w io.Writer, view ReportView, scores *assessment.CategoryScores, recs []assessment.RecommendationItem) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetAreaScores, SheetCategories, SheetRecommendations} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := writeSummary(f, view, bold); err != nil {
		return err
	}

	areaRows := make([][]interface{}, 0, len(view.AreaScores))
	for _, a := range view.AreaScores {
		areaRows = append(areaRows, []interface{}{a.Area, a.Score})
	}
	if err := writeScoreTable(f, SheetAreaScores, []interface{}{"Area", "Score"}, areaRows, bold); err != nil {
		return err
	}

	var catRows [][]interface{}
	if scores != nil {
		for _, c := range ChartData(scores) {
			catRows = append(catRows, []interface{}{c.Category, c.Score})
		}
		if err := f.SetSheetRow(SheetCategories, "D1", &[]interface{}{"Overall", scores.Overall}); err != nil {
			return fmt.Errorf("write overall: %w", err)
		}
	}
	if err := writeScoreTable(f, SheetCategories, []interface{}{"Category", "Score"}, catRows, bold); err != nil {
		return err
	}

	if err := writeRecommendations(f, recs, bold); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, view ReportView, bold int) error {
	row := 1
	put := func(label string, value interface{}) error {
		cell := fmt.Sprintf("A%d", row)
		if err := f.SetSheetRow(SheetSummary, cell, &[]interface{}{label, value}); err != nil {
			return fmt.Errorf("write %s: %w", label, err)
		}
		if err := f.SetCellStyle(SheetSummary, cell, cell, bold); err != nil {
			return err
		}
		row++
		return nil
	}

	fields := []struct {
		label string
		value interface{}
	}{
		{"Overall Score", view.OverallScore},
		{"Projected Score", view.ProjectedScore},
		{"Explanation", view.Explanation},
		{"Strengths", bulletList(view.Strengths)},
		{"Improvement Areas", bulletList(view.ImprovementAreas)},
		{"Risks", bulletList(view.Risks)},
		{"Opportunities", bulletList(view.Opportunities)},
		{"Current AI Use Cases", view.CurrentUseCases},
		{"Ideal Scenarios", view.IdealScenarios},
		{"Policy & Strategy Insights", view.PolicyStrategyInsights},
		{"Recommendations for Future", bulletList(view.RecommendationsForFuture)},
	}
	for _, fld := range fields {
		if err := put(fld.label, fld.value); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(SheetSummary, "A", "A", 28); err != nil {
		return err
	}
	return f.SetColWidth(SheetSummary, "B", "B", 100)
}

// writeScoreTable writes a header plus rows from A1 and, when there is
// data, a radar chart beside the table.
func writeScoreTable(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}, bold int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", bold); err != nil {
		return err
	}
	for i, r := range rows {
		r := r
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &r); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 36); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	ref := "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	last := len(rows) + 1
	chart := &excelize.Chart{
		Type: excelize.Radar,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$1", ref),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", ref, last),
			Values:     fmt.Sprintf("%s!$B$2:$B$%d", ref, last),
		}},
		Dimension: excelize.ChartDimension{Width: 480, Height: 320},
	}
	if err := f.AddChart(sheet, "F2", chart); err != nil {
		return fmt.Errorf("add %s chart: %w", sheet, err)
	}
	return nil
}

// writeRecommendations lays out one recommendation per row, with a column
// per known field.
func writeRecommendations(f *excelize.File, recs []assessment.RecommendationItem, bold int) error {
	header := make([]interface{}, len(assessment.RecommendationFields))
	for i, name := range assessment.RecommendationFields {
		header[i] = fieldTitle(name)
	}
	if err := f.SetSheetRow(SheetRecommendations, "A1", &header); err != nil {
		return fmt.Errorf("write recommendations header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetRecommendations, "A1", last, bold); err != nil {
		return err
	}

	for i, rec := range recs {
		row := make([]interface{}, len(assessment.RecommendationFields))
		for j, name := range assessment.RecommendationFields {
			row[j] = rec.Field(name)
		}
		if err := f.SetSheetRow(SheetRecommendations, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return fmt.Errorf("write recommendation %d: %w", i+1, err)
		}
	}
	return f.SetColWidth(SheetRecommendations, "A", "G", 40)
}

func fieldTitle(name string) string {
	if name == assessment.RecKPIs {
		return "KPIs"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return "- " + strings.Join(items, "\n- ")
}
