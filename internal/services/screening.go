package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"alfredoptarigan/resume-screener/internal/githubstats"
	"alfredoptarigan/resume-screener/internal/links"
	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/scoring"
)

const (
	ReasonUnreadable = "Could not extract text from resume."
	ReasonUnscored   = "No answers returned for this resume."
)

// StatsFetcher is satisfied by *githubstats.Fetcher.
type StatsFetcher interface {
	FetchMany(ctx context.Context, profileURLs []string) map[string]githubstats.Stats
}

type AnalyzeInput struct {
	RunID          uuid.UUID
	Criteria       []models.Criterion
	JobDescription string
	HRNotes        string
	GitHubRequired bool
	Resumes        []ResumeFile
}

type ScreeningService interface {
	Analyze(ctx context.Context, in AnalyzeInput) (*models.ScreeningReport, error)
}

type ScreeningDeps struct {
	Extractor TextExtractor
	Matcher   MatcherService
	Stats     StatsFetcher
	// Relevance is optional.
	Relevance RelevanceService
	Logger    *zap.Logger
}

type screeningService struct {
	extractor TextExtractor
	matcher   MatcherService
	stats     StatsFetcher
	relevance RelevanceService
	logger    *zap.Logger
	now       func() time.Time
}

func NewScreeningService(deps ScreeningDeps) ScreeningService {
	log := logger.OrNop(deps.Logger)
	if deps.Extractor == nil {
		deps.Extractor = NewTextExtractor(nil, log)
	}
	return &screeningService{
		extractor: deps.Extractor,
		matcher:   deps.Matcher,
		stats:     deps.Stats,
		relevance: deps.Relevance,
		logger:    log,
		now:       time.Now,
	}
}

// candidate carries one resume through the pipeline.
type candidate struct {
	file   ResumeFile
	text   string
	bundle links.Bundle
	result models.CandidateResult
	// pending is true while the resume still needs answers.
	pending bool
}

// Analyze implements ScreeningService. Only a matcher failure is returned;
// GitHub stats and relevance degrade to empty values.
func (s *screeningService) Analyze(ctx context.Context, in AnalyzeInput) (*models.ScreeningReport, error) {
	started := s.now()
	total := len(in.Criteria)

	candidates := make([]*candidate, 0, len(in.Resumes))
	for _, file := range in.Resumes {
		candidates = append(candidates, s.prepare(file, in.RunID, total, in.GitHubRequired))
	}

	var (
		toMatch    []ResumeText
		githubURLs []string
	)
	for _, c := range candidates {
		if !c.pending {
			continue
		}
		toMatch = append(toMatch, ResumeText{ID: c.file.ID, Text: c.text})
		githubURLs = append(githubURLs, c.bundle.GitHubURLs()...)
	}

	var (
		matches   []MatchResult
		stats     map[string]githubstats.Stats
		relevance map[string]float64
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if total == 0 || len(toMatch) == 0 {
			return nil
		}
		var err error
		matches, err = s.matcher.Match(gCtx, MatchInput{
			JobDescription: in.JobDescription,
			HRNotes:        in.HRNotes,
			Criteria:       in.Criteria,
			Resumes:        toMatch,
		})
		return err
	})
	g.Go(func() error {
		if s.stats != nil && len(githubURLs) > 0 {
			stats = s.stats.FetchMany(gCtx, githubURLs)
		}
		return nil
	})
	if s.relevance != nil && len(toMatch) > 0 {
		g.Go(func() error {
			scores, err := s.relevance.Score(gCtx, in.RunID.String(), in.JobDescription, toMatch)
			if err != nil {
				s.logger.Warn("relevance scoring failed", zap.String("run_id", in.RunID.String()), zap.Error(err))
				return nil
			}
			relevance = scores
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byResume := make(map[string]MatchResult, len(matches))
	for _, m := range matches {
		byResume[m.ResumeID] = m
	}

	report := &models.ScreeningReport{
		RunID:          in.RunID,
		TotalProcessed: len(in.Resumes),
		Criteria:       in.Criteria,
		Ranked:         []models.CandidateResult{},
		Rejected:       []models.CandidateResult{},
		Unscored:       []models.CandidateResult{},
	}

	weights := models.QuestionsDoc{Criteria: in.Criteria}.Weights()
	for _, c := range candidates {
		if c.pending {
			s.score(c, byResume, stats, relevance, weights, in.GitHubRequired, total)
		}

		switch {
		case c.result.Status == models.ResultUnscored:
			report.Unscored = append(report.Unscored, c.result)
		case c.result.Group == scoring.GroupRejected:
			report.Rejected = append(report.Rejected, c.result)
		default:
			report.Ranked = append(report.Ranked, c.result)
		}
	}

	sortRanked(report.Ranked)
	report.GeneratedAt = s.now().UTC()

	s.logger.Info("screening analyzed",
		zap.String("run_id", in.RunID.String()),
		zap.Int("resumes", len(in.Resumes)),
		zap.Int("ranked", len(report.Ranked)),
		zap.Int("rejected", len(report.Rejected)),
		zap.Int("unscored", len(report.Unscored)),
		zap.Duration("took", s.now().Sub(started)),
	)
	return report, nil
}

// prepare extracts text and identifiers. Unreadable resumes and resumes that
// fail the GitHub requirement are settled here and never reach the model.
func (s *screeningService) prepare(file ResumeFile, runID uuid.UUID, total int, githubRequired bool) *candidate {
	c := &candidate{
		file: file,
		result: models.CandidateResult{
			RunID:         runID,
			ResumeID:      file.ID,
			FileName:      file.FileName,
			TotalCriteria: total,
			GitHub:        []links.Identifier{},
			LinkedIn:      []links.Identifier{},
			Answers:       []models.Answer{},
		},
	}

	text, err := s.extractor.Extract(file.FileName, file.Data)
	if err != nil || strings.TrimSpace(text) == "" {
		s.logger.Warn("resume unreadable", zap.String("file", file.FileName), zap.Error(err))
		c.result.Status = models.ResultUnreadable
		c.result.Group = scoring.GroupRejected
		c.result.Reason = ReasonUnreadable
		c.result.NoCount = total
		return c
	}

	c.text = text
	c.bundle = links.NewBundle(text, s.extractor.Links(file.FileName, file.Data))
	c.result.GitHub = c.bundle.GitHub
	c.result.LinkedIn = c.bundle.LinkedIn
	if len(c.bundle.GitHub) > 0 {
		c.result.GitHubURL = c.bundle.GitHub[0].URL
	}
	if len(c.bundle.LinkedIn) > 0 {
		c.result.LinkedInURL = c.bundle.LinkedIn[0].URL
	}

	if githubRequired && len(c.bundle.GitHub) == 0 {
		c.result.Status = models.ResultEarlyRejected
		c.result.Group, c.result.Reason = scoring.Classify(0, total, true, false)
		c.result.NoCount = total
		return c
	}

	c.pending = true
	return c
}

func (s *screeningService) score(
	c *candidate,
	matches map[string]MatchResult,
	stats map[string]githubstats.Stats,
	relevance map[string]float64,
	weights map[string]float64,
	githubRequired bool,
	total int,
) {
	for _, id := range c.bundle.GitHub {
		st, ok := stats[id.URL]
		if !ok || st.IsEmpty() {
			continue
		}
		c.result.HasValidGitHub = true
		c.result.GitHubURL = id.URL
		c.result.GitHubStats = &st
		c.result.Reputation = scoring.Reputation(st)
		break
	}

	if r, ok := relevance[c.file.ID]; ok {
		c.result.Relevance = &r
	}

	yes := make(map[string]bool, total)
	if total > 0 {
		m, ok := matches[c.file.ID]
		if !ok || !m.Scored {
			c.result.Status = models.ResultUnscored
			c.result.Reason = ReasonUnscored
			return
		}
		c.result.Answers = m.Answers
		for _, a := range m.Answers {
			if a.Yes() {
				yes[a.CriterionID] = true
			}
		}
	}

	c.result.Status = models.ResultScored
	c.result.YesCount = len(yes)
	c.result.NoCount = total - len(yes)
	c.result.Group, c.result.Reason = scoring.Classify(c.result.YesCount, total, githubRequired, c.result.HasValidGitHub)
	c.result.WeightedScore = scoring.WeightedYesScore(yes, weights)
	c.result.WeightedGroup = scoring.WeightedGroup(c.result.WeightedScore)
}

// sortRanked orders by group, then reputation and weighted score descending,
// then candidate name.
func sortRanked(ranked []models.CandidateResult) {
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Group.Rank() != b.Group.Rank() {
			return a.Group.Rank() < b.Group.Rank()
		}
		if a.Reputation != b.Reputation {
			return a.Reputation > b.Reputation
		}
		if a.WeightedScore != b.WeightedScore {
			return a.WeightedScore > b.WeightedScore
		}
		return models.CandidateName(a.FileName) < models.CandidateName(b.FileName)
	})
}
