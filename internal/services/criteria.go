package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
)

const (
	MinCriteria = 5
	MaxCriteria = 10

	customRationale     = "HR-added custom criterion"
	criteriaTemperature = 0.2
	customNameRunes     = 40
)

// ErrInvalidInput marks caller mistakes such as unknown criterion ids.
var ErrInvalidInput = errors.New("invalid input")

var slugPattern = regexp.MustCompile(`[^a-z0-9_]+`)

type GenerateCriteriaInput struct {
	JobDescription string
	HRNotes        string
	Count          int
	Seniority      models.Seniority
}

type FinalizeInput struct {
	// Selected keeps these criterion ids. Empty keeps all of them.
	Selected []string
	Weights  map[string]float64
	Custom   []models.CustomCriterion
}

type CriteriaService interface {
	Generate(ctx context.Context, in GenerateCriteriaInput) (*models.CriteriaSet, error)
	Finalize(ctx context.Context, setID uuid.UUID, in FinalizeInput) (*models.CriteriaSet, error)
	Get(id uuid.UUID) (*models.CriteriaSet, error)
	List(limit int) ([]models.CriteriaSet, error)
}

type criteriaService struct {
	gemini    GeminiService
	repo      repositories.CriteriaRepository
	artifacts *ArtifactStore
	prompts   *PromptBuilder
	logger    *zap.Logger
}

// NewCriteriaService builds the service. artifacts may be nil, in which case
// finalized sets are only persisted through repo.
func NewCriteriaService(
	gemini GeminiService,
	repo repositories.CriteriaRepository,
	artifacts *ArtifactStore,
	prompts *PromptBuilder,
	log *zap.Logger,
) CriteriaService {
	if prompts == nil {
		prompts = NewPromptBuilder(0, 0, 0)
	}
	return &criteriaService{
		gemini:    gemini,
		repo:      repo,
		artifacts: artifacts,
		prompts:   prompts,
		logger:    logger.OrNop(log),
	}
}

// GenerateDoc asks the model for a criteria document without persisting it.
func GenerateDoc(ctx context.Context, gemini GeminiService, prompts *PromptBuilder, in GenerateCriteriaInput) (models.QuestionsDoc, error) {
	if strings.TrimSpace(in.JobDescription) == "" {
		return models.QuestionsDoc{}, fmt.Errorf("%w: job description is required", ErrInvalidInput)
	}
	if in.Count == 0 {
		in.Count = 6
	}
	if in.Count < MinCriteria || in.Count > MaxCriteria {
		return models.QuestionsDoc{}, fmt.Errorf("%w: count must be between %d and %d", ErrInvalidInput, MinCriteria, MaxCriteria)
	}
	if in.Seniority == "" {
		in.Seniority = models.SeniorityMid
	}
	if !in.Seniority.Valid() {
		return models.QuestionsDoc{}, fmt.Errorf("%w: unknown seniority %q", ErrInvalidInput, in.Seniority)
	}

	prompt := prompts.BuildCriteriaPrompt(in.JobDescription, in.HRNotes, in.Count, in.Seniority)
	raw, err := gemini.GenerateJSON(ctx, prompt, criteriaTemperature)
	if err != nil {
		return models.QuestionsDoc{}, err
	}

	var doc models.QuestionsDoc
	if err := decodeLLMJSON("criteria", raw, criteriaSchema, &doc); err != nil {
		return models.QuestionsDoc{}, err
	}
	doc.TotalCriteria = len(doc.Criteria)
	return doc, nil
}

// Generate implements CriteriaService.
func (s *criteriaService) Generate(ctx context.Context, in GenerateCriteriaInput) (*models.CriteriaSet, error) {
	doc, err := GenerateDoc(ctx, s.gemini, s.prompts, in)
	if err != nil {
		return nil, err
	}

	set := &models.CriteriaSet{
		JobDescription: in.JobDescription,
		HRNotes:        in.HRNotes,
		Doc:            doc,
	}
	if err := s.repo.Create(set); err != nil {
		return nil, err
	}

	s.logger.Info("criteria generated",
		zap.String("criteria_set_id", set.ID.String()),
		zap.Int("criteria", doc.TotalCriteria),
		zap.String("seniority", string(doc.Seniority)),
	)
	return set, nil
}

// Finalize implements CriteriaService.
func (s *criteriaService) Finalize(_ context.Context, setID uuid.UUID, in FinalizeInput) (*models.CriteriaSet, error) {
	parent, err := s.repo.FindByID(setID)
	if err != nil {
		return nil, err
	}

	doc, err := FinalizeDoc(parent.Doc, in)
	if err != nil {
		return nil, err
	}

	set := &models.CriteriaSet{
		ParentID:       &parent.ID,
		JobDescription: parent.JobDescription,
		HRNotes:        parent.HRNotes,
		Doc:            doc,
		Finalized:      true,
	}

	if s.artifacts != nil {
		name, err := s.artifacts.SaveCriteria(doc)
		if err != nil {
			return nil, err
		}
		set.ArtifactName = name
	}

	if err := s.repo.Create(set); err != nil {
		return nil, err
	}

	s.logger.Info("criteria finalized",
		zap.String("criteria_set_id", set.ID.String()),
		zap.String("parent_id", parent.ID.String()),
		zap.Int("criteria", doc.TotalCriteria),
		zap.String("artifact", set.ArtifactName),
	)
	return set, nil
}

// Get implements CriteriaService.
func (s *criteriaService) Get(id uuid.UUID) (*models.CriteriaSet, error) {
	return s.repo.FindByID(id)
}

// List implements CriteriaService. Newest sets come first.
func (s *criteriaService) List(limit int) ([]models.CriteriaSet, error) {
	return s.repo.List(limit)
}

// FinalizeDoc applies a selection, weight overrides and custom criteria to
// doc and normalizes the weights.
func FinalizeDoc(doc models.QuestionsDoc, in FinalizeInput) (models.QuestionsDoc, error) {
	byID := make(map[string]models.Criterion, len(doc.Criteria))
	for _, c := range doc.Criteria {
		byID[c.ID] = c
	}

	var kept []models.Criterion
	if len(in.Selected) == 0 {
		kept = append(kept, doc.Criteria...)
	} else {
		picked := make(map[string]bool, len(in.Selected))
		for _, id := range in.Selected {
			id = strings.TrimSpace(id)
			c, ok := byID[id]
			if !ok {
				return models.QuestionsDoc{}, fmt.Errorf("%w: unknown criterion %q", ErrInvalidInput, id)
			}
			if picked[id] {
				continue
			}
			picked[id] = true
			kept = append(kept, c)
		}
	}

	for id, w := range in.Weights {
		if _, ok := byID[id]; !ok {
			return models.QuestionsDoc{}, fmt.Errorf("%w: weight for unknown criterion %q", ErrInvalidInput, id)
		}
		if w < 0 || w > 1 {
			return models.QuestionsDoc{}, fmt.Errorf("%w: weight for %q must be between 0 and 1", ErrInvalidInput, id)
		}
	}
	for i := range kept {
		if w, ok := in.Weights[kept[i].ID]; ok {
			kept[i].Weight = w
		}
	}

	taken := make(map[string]bool, len(kept)+len(in.Custom))
	for _, c := range kept {
		taken[c.ID] = true
	}
	for _, cc := range in.Custom {
		question := strings.TrimSpace(cc.Question)
		if question == "" {
			return models.QuestionsDoc{}, fmt.Errorf("%w: custom criterion needs a question", ErrInvalidInput)
		}
		name := strings.TrimSpace(cc.Name)
		if name == "" {
			name = strings.TrimSpace(truncateRunes(question, customNameRunes))
		}

		id := uniqueID(Slugify(name), taken)
		taken[id] = true

		kept = append(kept, models.Criterion{
			ID:               id,
			Name:             name,
			Question:         question,
			Rationale:        customRationale,
			ExpectedEvidence: []string{},
			Weight:           cc.Weight,
			FailExamples:     []string{},
			Tags:             cc.Tags,
		})
	}

	if len(kept) == 0 {
		return models.QuestionsDoc{}, fmt.Errorf("%w: no criteria left after finalizing", ErrInvalidInput)
	}

	NormalizeWeights(kept)

	doc.Criteria = kept
	doc.TotalCriteria = len(kept)
	return doc, nil
}

// NormalizeWeights scales weights to sum to one, rounded to four decimals.
// A zero total gives every criterion the same weight.
func NormalizeWeights(criteria []models.Criterion) {
	if len(criteria) == 0 {
		return
	}

	var total float64
	for _, c := range criteria {
		total += c.Weight
	}

	for i := range criteria {
		if total <= 0 {
			criteria[i].Weight = round4(1 / float64(len(criteria)))
			continue
		}
		criteria[i].Weight = round4(criteria[i].Weight / total)
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// Slugify lower-cases s and collapses every run of characters outside
// [a-z0-9_] into a single underscore.
func Slugify(s string) string {
	s = slugPattern.ReplaceAllString(strings.ToLower(s), "_")
	return strings.Trim(s, "_")
}

func uniqueID(base string, taken map[string]bool) string {
	if base == "" {
		base = "custom"
	}
	if !taken[base] {
		return base
	}
	for n := 2; ; n++ {
		id := fmt.Sprintf("%s_%d", base, n)
		if !taken[id] {
			return id
		}
	}
}
