package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/resume-screener/internal/models"
)

// Memory holds every repository in process. It backs the CLI and tests and
// is used by the API when the database driver is "memory".
type Memory struct {
	mu        sync.RWMutex
	criteria  map[uuid.UUID]models.CriteriaSet
	runs      map[uuid.UUID]models.ScreeningRun
	results   map[uuid.UUID][]models.CandidateResult
	documents map[uuid.UUID]models.Document
	seq       int64
	now       func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		criteria:  make(map[uuid.UUID]models.CriteriaSet),
		runs:      make(map[uuid.UUID]models.ScreeningRun),
		results:   make(map[uuid.UUID][]models.CandidateResult),
		documents: make(map[uuid.UUID]models.Document),
		now:       time.Now,
	}
}

func (m *Memory) Criteria() CriteriaRepository   { return memoryCriteria{m} }
func (m *Memory) Screenings() ScreeningRepository { return memoryScreenings{m} }
func (m *Memory) Documents() DocumentRepository   { return memoryDocuments{m} }

// stamp returns a strictly increasing creation time so ordering by it is
// stable even when the clock does not advance between calls.
func (m *Memory) stamp() time.Time {
	m.seq++
	return m.now().Add(time.Duration(m.seq) * time.Nanosecond)
}

type memoryCriteria struct{ m *Memory }

func (r memoryCriteria) Create(set *models.CriteriaSet) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if set.ID == uuid.Nil {
		set.ID = uuid.New()
	}
	if _, exists := r.m.criteria[set.ID]; exists {
		return fmt.Errorf("failed to create criteria set: duplicate id %s", set.ID)
	}
	set.CreatedAt = r.m.stamp()
	set.UpdatedAt = set.CreatedAt
	r.m.criteria[set.ID] = *set
	return nil
}

func (r memoryCriteria) FindByID(id uuid.UUID) (*models.CriteriaSet, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	set, ok := r.m.criteria[id]
	if !ok {
		return nil, fmt.Errorf("criteria set not found: %w", ErrNotFound)
	}
	return &set, nil
}

func (r memoryCriteria) List(limit int) ([]models.CriteriaSet, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	sets := make([]models.CriteriaSet, 0, len(r.m.criteria))
	for _, s := range r.m.criteria {
		sets = append(sets, s)
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].CreatedAt.After(sets[j].CreatedAt) })
	if limit > 0 && len(sets) > limit {
		sets = sets[:limit]
	}
	return sets, nil
}

type memoryScreenings struct{ m *Memory }

func (r memoryScreenings) Create(run *models.ScreeningRun) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if _, exists := r.m.runs[run.ID]; exists {
		return fmt.Errorf("failed to create screening run: duplicate id %s", run.ID)
	}
	if run.Status == "" {
		run.Status = models.StatusQueued
	}
	run.CreatedAt = r.m.stamp()
	run.UpdatedAt = run.CreatedAt
	stored := *run
	stored.Results = nil
	stored.Documents = nil
	r.m.runs[run.ID] = stored
	return nil
}

func (r memoryScreenings) FindByID(id uuid.UUID) (*models.ScreeningRun, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	run, ok := r.m.runs[id]
	if !ok {
		return nil, fmt.Errorf("screening run not found: %w", ErrNotFound)
	}
	run.Results = append([]models.CandidateResult(nil), r.m.results[id]...)
	return &run, nil
}

func (r memoryScreenings) update(id uuid.UUID, fn func(*models.ScreeningRun)) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	run, ok := r.m.runs[id]
	if !ok {
		return fmt.Errorf("screening run not found: %w", ErrNotFound)
	}
	fn(&run)
	run.UpdatedAt = r.m.now()
	r.m.runs[id] = run
	return nil
}

func (r memoryScreenings) UpdateStatus(id uuid.UUID, status models.RunStatus) error {
	return r.update(id, func(run *models.ScreeningRun) { run.Status = status })
}

func (r memoryScreenings) SaveResults(id uuid.UUID, results []models.CandidateResult, artifact string) error {
	err := r.update(id, func(run *models.ScreeningRun) {
		now := r.m.now()
		run.Status = models.StatusCompleted
		run.ArtifactName = artifact
		run.CompletedAt = &now
	})
	if err != nil {
		return err
	}

	rows := make([]models.CandidateResult, len(results))
	for i, res := range results {
		res.ID = uuid.New()
		res.RunID = id
		res.Position = i
		rows[i] = res
	}

	r.m.mu.Lock()
	r.m.results[id] = rows
	r.m.mu.Unlock()
	return nil
}

func (r memoryScreenings) UpdateError(id uuid.UUID, errorMsg string) error {
	return r.update(id, func(run *models.ScreeningRun) {
		msg := errorMsg
		run.Status = models.StatusFailed
		run.ErrorMessage = &msg
	})
}

func (r memoryScreenings) FindPendingJobs(limit int) ([]models.ScreeningRun, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	var runs []models.ScreeningRun
	for _, run := range r.m.runs {
		if run.Status == models.StatusQueued {
			runs = append(runs, run)
		}
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAt.Before(runs[j].CreatedAt) })
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

type memoryDocuments struct{ m *Memory }

func (r memoryDocuments) Create(doc *models.Document) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	doc.CreatedAt = r.m.stamp()
	doc.UpdatedAt = doc.CreatedAt
	r.m.documents[doc.ID] = *doc
	return nil
}

func (r memoryDocuments) FindByRunID(runID uuid.UUID) ([]models.Document, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	var docs []models.Document
	for _, d := range r.m.documents {
		if d.RunID == runID {
			docs = append(docs, d)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt.Before(docs[j].CreatedAt) })
	return docs, nil
}
