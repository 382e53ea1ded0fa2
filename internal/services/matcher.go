package services

import (
	"context"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/models"
)

const (
	maxReasons       = 3
	matchTemperature = 0.1
)

// ResumeText is one resume's extracted text keyed by its batch id.
type ResumeText struct {
	ID   string
	Text string
}

type MatchInput struct {
	JobDescription string
	HRNotes        string
	Criteria       []models.Criterion
	Resumes        []ResumeText
}

// MatchResult holds the answers for one resume. Scored is false when the
// model returned nothing for it.
type MatchResult struct {
	ResumeID string
	Answers  []models.Answer
	Yes      int
	No       int
	Scored   bool
}

type MatcherService interface {
	// Match returns one result per input resume, in input order.
	Match(ctx context.Context, in MatchInput) ([]MatchResult, error)
}

type matcherService struct {
	gemini   GeminiService
	prompts  *PromptBuilder
	sanitize *bluemonday.Policy
	logger   *zap.Logger
}

func NewMatcherService(gemini GeminiService, prompts *PromptBuilder, log *zap.Logger) MatcherService {
	if prompts == nil {
		prompts = NewPromptBuilder(0, 0, 0)
	}
	return &matcherService{
		gemini:   gemini,
		prompts:  prompts,
		sanitize: bluemonday.StrictPolicy(),
		logger:   logger.OrNop(log),
	}
}

type matchOutput struct {
	Results []matchOutputResult `mapstructure:"results"`
}

type matchOutputResult struct {
	ResumeID string          `mapstructure:"resume_id"`
	Answers  []models.Answer `mapstructure:"answers"`
}

// Match implements MatcherService.
func (m *matcherService) Match(ctx context.Context, in MatchInput) ([]MatchResult, error) {
	if len(in.Resumes) == 0 {
		return []MatchResult{}, nil
	}

	prompt := m.prompts.BuildMatchPrompt(in.JobDescription, in.HRNotes, in.Criteria, in.Resumes, maxReasons)

	raw, err := m.gemini.GenerateJSON(ctx, prompt, matchTemperature)
	if err != nil {
		return nil, err
	}

	var out matchOutput
	if err := decodeLLMJSON("match", raw, matchSchema, &out); err != nil {
		m.logger.Warn("match reply rejected", zap.Error(err), zap.String("reply", logger.TruncateForLog(raw, 500)))
		return nil, err
	}

	known := make(map[string]models.Criterion, len(in.Criteria))
	for _, c := range in.Criteria {
		known[c.ID] = c
	}

	byResume := make(map[string]matchOutputResult, len(out.Results))
	for _, r := range out.Results {
		id := strings.TrimSpace(r.ResumeID)
		if _, dup := byResume[id]; dup {
			continue
		}
		byResume[id] = r
	}

	results := make([]MatchResult, 0, len(in.Resumes))
	for _, resume := range in.Resumes {
		r, ok := byResume[resume.ID]
		if !ok {
			m.logger.Warn("resume missing from match reply", zap.String("resume_id", resume.ID))
			results = append(results, MatchResult{ResumeID: resume.ID, Answers: []models.Answer{}})
			continue
		}
		results = append(results, m.cleanResult(resume.ID, r.Answers, known))
	}

	return results, nil
}

// cleanResult keeps one answer per known criterion and recounts yes and no
// from what is left.
func (m *matcherService) cleanResult(resumeID string, answers []models.Answer, known map[string]models.Criterion) MatchResult {
	res := MatchResult{ResumeID: resumeID, Answers: make([]models.Answer, 0, len(answers)), Scored: true}
	seen := make(map[string]bool, len(answers))

	for _, a := range answers {
		id := strings.TrimSpace(a.CriterionID)
		criterion, ok := known[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true

		a.CriterionID = id
		a.Answer = strings.ToLower(strings.TrimSpace(a.Answer))
		if a.Question == "" {
			a.Question = criterion.Question
		}
		a.Reasons = m.cleanReasons(a.Reasons)

		if a.Yes() {
			res.Yes++
		} else {
			res.No++
		}
		res.Answers = append(res.Answers, a)
	}

	return res
}

func (m *matcherService) cleanReasons(reasons []string) []string {
	out := make([]string, 0, min(len(reasons), maxReasons))
	for _, r := range reasons {
		r = strings.TrimSpace(m.sanitize.Sanitize(r))
		if r == "" {
			continue
		}
		out = append(out, r)
		if len(out) == maxReasons {
			break
		}
	}
	return out
}
