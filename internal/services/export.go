package services

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/scoring"
)

const (
	sheetSummary  = "Summary"
	sheetRanked   = "Ranked Candidates"
	sheetRejected = "Rejected"
	sheetAnswers  = "Answers"
)

var (
	rankedHeaders   = []any{"Resume", "Group", "Reason", "Yes", "No", "Weighted Score", "Reputation", "GitHub", "LinkedIn", "Relevance"}
	rejectedHeaders = []any{"Resume", "Status", "Reason", "Yes", "No", "GitHub", "LinkedIn"}
	answerHeaders   = []any{"Resume", "Criterion", "Question", "Answer", "Weight", "Reasons"}
)

type ExportService interface {
	WriteXLSX(report *models.ScreeningReport, w io.Writer) error
}

type exportService struct{}

func NewExportService() ExportService {
	return exportService{}
}

// WriteXLSX implements ExportService.
func (exportService) WriteXLSX(report *models.ScreeningReport, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	for _, name := range []string{sheetRanked, sheetRejected, sheetAnswers} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create %s sheet: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	steps := []struct {
		sheet string
		fill  func(*excelize.File, string, *models.ScreeningReport) error
	}{
		{sheetSummary, writeSummarySheet},
		{sheetRanked, writeRankedSheet},
		{sheetRejected, writeRejectedSheet},
		{sheetAnswers, writeAnswersSheet},
	}
	for _, step := range steps {
		if err := step.fill(f, step.sheet, report); err != nil {
			return fmt.Errorf("failed to write %s sheet: %w", step.sheet, err)
		}
		if err := f.SetCellStyle(step.sheet, "A1", "J1", header); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func writeSummarySheet(f *excelize.File, sheet string, report *models.ScreeningReport) error {
	counts := report.GroupCounts()
	rows := [][]any{
		{"Screening Report", ""},
		{"Run", report.RunID.String()},
		{"Generated", report.GeneratedAt.UTC().Format(time.RFC3339)},
		{"Total Processed", report.TotalProcessed},
		{"Criteria", len(report.Criteria)},
		{scoring.GroupStronglyConsider.Label(), counts[string(scoring.GroupStronglyConsider)]},
		{scoring.GroupPotentialFit.Label(), counts[string(scoring.GroupPotentialFit)]},
		{scoring.GroupRejected.Label(), counts[string(scoring.GroupRejected)]},
		{"Unscored", counts[string(models.ResultUnscored)]},
	}
	for i, r := range rows {
		if err := setRow(f, sheet, i+1, r); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "B", 30)
}

func writeRankedSheet(f *excelize.File, sheet string, report *models.ScreeningReport) error {
	if err := setRow(f, sheet, 1, rankedHeaders); err != nil {
		return err
	}
	for i, c := range report.Ranked {
		var relevance any = ""
		if c.Relevance != nil {
			relevance = *c.Relevance
		}
		row := []any{
			c.FileName, c.Group.Label(), c.Reason, c.YesCount, c.NoCount,
			c.WeightedScore, c.Reputation, c.GitHubURL, c.LinkedInURL, relevance,
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func writeRejectedSheet(f *excelize.File, sheet string, report *models.ScreeningReport) error {
	if err := setRow(f, sheet, 1, rejectedHeaders); err != nil {
		return err
	}
	row := 2
	for _, list := range [][]models.CandidateResult{report.Rejected, report.Unscored} {
		for _, c := range list {
			values := []any{c.FileName, string(c.Status), c.Reason, c.YesCount, c.NoCount, c.GitHubURL, c.LinkedInURL}
			if err := setRow(f, sheet, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func writeAnswersSheet(f *excelize.File, sheet string, report *models.ScreeningReport) error {
	if err := setRow(f, sheet, 1, answerHeaders); err != nil {
		return err
	}

	weights := make(map[string]float64, len(report.Criteria))
	for _, c := range report.Criteria {
		weights[c.ID] = c.Weight
	}

	row := 2
	for _, c := range report.Results() {
		for _, a := range c.Answers {
			values := []any{c.FileName, a.CriterionID, a.Question, a.Answer, weights[a.CriterionID], strings.Join(a.Reasons, "; ")}
			if err := setRow(f, sheet, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}
