package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/scoring"
)

func TestWriteXLSX(t *testing.T) {
	relevance := 0.82
	report := &models.ScreeningReport{
		RunID:          uuid.New(),
		GeneratedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		TotalProcessed: 3,
		Criteria:       testCriteria,
		Ranked: []models.CandidateResult{{
			FileName: "jane_doe.pdf", Status: models.ResultScored, Group: scoring.GroupStronglyConsider,
			Reason: scoring.ReasonAllMet, YesCount: 3, WeightedScore: 1, Reputation: 42.5,
			GitHubURL: "https://github.com/janedoe", Relevance: &relevance,
			Answers: []models.Answer{
				{CriterionID: "go_experience", Question: "Go?", Answer: "yes", Reasons: []string{"payments API", "CLI tools"}},
			},
		}},
		Rejected: []models.CandidateResult{{
			FileName: "scan.pdf", Status: models.ResultUnreadable, Group: scoring.GroupRejected,
			Reason: "Could not extract text from resume.",
		}},
		Unscored: []models.CandidateResult{{FileName: "ghost.txt", Status: models.ResultUnscored}},
	}

	var buf bytes.Buffer
	require.NoError(t, NewExportService().WriteXLSX(report, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetSummary, sheetRanked, sheetRejected, sheetAnswers}, f.GetSheetList())

	total, err := f.GetCellValue(sheetSummary, "B4")
	require.NoError(t, err)
	assert.Equal(t, "3", total)

	strong, err := f.GetCellValue(sheetSummary, "B6")
	require.NoError(t, err)
	assert.Equal(t, "1", strong)

	ranked, err := f.GetRows(sheetRanked)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Resume", ranked[0][0])
	assert.Equal(t, []string{"jane_doe.pdf", "Strongly Consider"}, ranked[1][:2])
	assert.Equal(t, "0.82", ranked[1][9])

	rejected, err := f.GetRows(sheetRejected)
	require.NoError(t, err)
	require.Len(t, rejected, 3)
	assert.Equal(t, "unreadable", rejected[1][1])
	assert.Equal(t, "ghost.txt", rejected[2][0])

	answers, err := f.GetRows(sheetAnswers)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, []string{"jane_doe.pdf", "go_experience", "Go?", "yes", "0.5", "payments API; CLI tools"}, answers[1])
}
