package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-screener/internal/models"
)

func newTestArtifactStore(t *testing.T, at time.Time) *ArtifactStore {
	t.Helper()
	store := NewArtifactStore(filepath.Join(t.TempDir(), "data"))
	store.now = func() time.Time { return at }
	return store
}

func TestArtifactStoreSaveAndRead(t *testing.T) {
	at := time.Date(2025, 6, 1, 9, 30, 15, 0, time.FixedZone("WIB", 7*3600))
	store := newTestArtifactStore(t, at)

	name, err := store.SaveCriteria(testDoc())
	require.NoError(t, err)
	assert.Equal(t, "criteria_final_20250601T023015Z.json", name)

	again, err := store.SaveCriteria(testDoc())
	require.NoError(t, err)
	assert.Equal(t, "criteria_final_20250601T023016Z.json", again)

	data, err := store.Read(name)
	require.NoError(t, err)

	var doc models.QuestionsDoc
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, testDoc().IDs(), doc.IDs())
}

func TestArtifactStoreReadRejectsNames(t *testing.T) {
	store := newTestArtifactStore(t, time.Now())

	for _, name := range []string{"../secrets.json", "criteria_20250601T000000Z.json", "results_abc.json", "results_1.txt"} {
		_, err := store.Read(name)
		assert.ErrorIs(t, err, ErrInvalidArtifactName, name)
	}

	_, err := store.Read("results_20250601T000000Z.json")
	assert.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestArtifactStoreList(t *testing.T) {
	store := newTestArtifactStore(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	names, err := store.List("")
	require.NoError(t, err)
	assert.Empty(t, names)

	for i := 0; i < 12; i++ {
		_, err := store.SaveResults(&models.ScreeningReport{TotalProcessed: i})
		require.NoError(t, err)
	}
	_, err = store.SaveCriteria(testDoc())
	require.NoError(t, err)
	_, err = store.Save(ArtifactCriteriaDraft, testDoc())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "notes.json"), []byte("{}"), 0o644))

	results, err := store.List(ArtifactResults)
	require.NoError(t, err)
	require.Len(t, results, artifactListLimit)
	assert.Equal(t, "results_20250601T000011Z.json", results[0])
	assert.Equal(t, "results_20250601T000002Z.json", results[9])

	criteria, err := store.List(ArtifactCriteriaFinal)
	require.NoError(t, err)
	assert.Equal(t, []string{"criteria_final_20250601T000000Z.json"}, criteria)

	all, err := store.List("")
	require.NoError(t, err)
	assert.Len(t, all, artifactListLimit)
	for _, n := range all {
		assert.NotContains(t, n, "notes")
		assert.NotEqual(t, fmt.Sprintf("%s_20250601T000000Z.json", ArtifactCriteriaDraft), n)
	}
}
