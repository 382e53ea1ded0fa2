package repositories

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/scoring"
)

func TestMemoryCriteria(t *testing.T) {
	repo := NewMemory().Criteria()

	first := &models.CriteriaSet{JobDescription: "first"}
	second := &models.CriteriaSet{JobDescription: "second", Finalized: true}
	require.NoError(t, repo.Create(first))
	require.NoError(t, repo.Create(second))
	assert.NotEqual(t, uuid.Nil, first.ID)

	got, err := repo.FindByID(second.ID)
	require.NoError(t, err)
	assert.True(t, got.Finalized)

	list, err := repo.List(10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].JobDescription)

	list, err = repo.List(1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = repo.FindByID(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, repo.Create(&models.CriteriaSet{ID: first.ID}))
}

func TestMemoryScreeningLifecycle(t *testing.T) {
	mem := NewMemory()
	repo := mem.Screenings()

	run := &models.ScreeningRun{JobDescription: "Go engineer"}
	require.NoError(t, repo.Create(run))
	assert.Equal(t, models.StatusQueued, run.Status)

	pending, err := repo.FindPendingJobs(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, repo.UpdateStatus(run.ID, models.StatusProcessing))
	pending, err = repo.FindPendingJobs(10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	results := []models.CandidateResult{
		{ResumeID: "b", Group: scoring.GroupStronglyConsider},
		{ResumeID: "a", Group: scoring.GroupRejected},
	}
	require.NoError(t, repo.SaveResults(run.ID, results, "results_20250101T000000Z.json"))

	got, err := repo.FindByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
	assert.Equal(t, "results_20250101T000000Z.json", got.ArtifactName)
	require.Len(t, got.Results, 2)
	assert.Equal(t, "b", got.Results[0].ResumeID)
	assert.Equal(t, 1, got.Results[1].Position)
	assert.Equal(t, run.ID, got.Results[1].RunID)
}

func TestMemoryScreeningErrors(t *testing.T) {
	repo := NewMemory().Screenings()

	assert.ErrorIs(t, repo.UpdateStatus(uuid.New(), models.StatusProcessing), ErrNotFound)
	assert.ErrorIs(t, repo.UpdateError(uuid.New(), "boom"), ErrNotFound)
	assert.ErrorIs(t, repo.SaveResults(uuid.New(), nil, ""), ErrNotFound)

	run := &models.ScreeningRun{}
	require.NoError(t, repo.Create(run))
	require.NoError(t, repo.UpdateError(run.ID, "matching failed"))

	got, err := repo.FindByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "matching failed", *got.ErrorMessage)
}

func TestMemoryDocuments(t *testing.T) {
	repo := NewMemory().Documents()
	runID := uuid.New()

	for _, name := range []string{"one.pdf", "two.pdf", "three.pdf"} {
		require.NoError(t, repo.Create(&models.Document{RunID: runID, OriginalFileName: name}))
	}
	require.NoError(t, repo.Create(&models.Document{RunID: uuid.New(), OriginalFileName: "other.pdf"}))

	docs, err := repo.FindByRunID(runID)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "one.pdf", docs[0].OriginalFileName)
	assert.Equal(t, "two.pdf", docs[1].OriginalFileName)
	assert.Equal(t, "three.pdf", docs[2].OriginalFileName)
}
