package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-screener/internal/githubstats"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/scoring"
)

var screeningNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeMatcher answers from a table of resume id to "yes" criterion ids.
type fakeMatcher struct {
	mu    sync.Mutex
	yes   map[string][]string
	err   error
	calls []MatchInput
}

func (f *fakeMatcher) Match(_ context.Context, in MatchInput) ([]MatchResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, in)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	out := make([]MatchResult, 0, len(in.Resumes))
	for _, r := range in.Resumes {
		yesIDs, ok := f.yes[r.ID]
		if !ok {
			out = append(out, MatchResult{ResumeID: r.ID})
			continue
		}
		res := MatchResult{ResumeID: r.ID, Scored: true}
		picked := map[string]bool{}
		for _, id := range yesIDs {
			picked[id] = true
		}
		for _, c := range in.Criteria {
			answer := "no"
			if picked[c.ID] {
				answer = "yes"
				res.Yes++
			} else {
				res.No++
			}
			res.Answers = append(res.Answers, models.Answer{CriterionID: c.ID, Question: c.Question, Answer: answer})
		}
		out = append(out, res)
	}
	return out, nil
}

type fakeStats struct {
	mu     sync.Mutex
	byURL  map[string]githubstats.Stats
	called [][]string
}

func (f *fakeStats) FetchMany(_ context.Context, urls []string) map[string]githubstats.Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called = append(f.called, urls)
	out := make(map[string]githubstats.Stats, len(urls))
	for _, u := range urls {
		out[u] = f.byURL[u]
	}
	return out
}

type fakeRelevance struct {
	scores map[string]float64
	err    error
}

func (f fakeRelevance) Score(context.Context, string, string, []ResumeText) (map[string]float64, error) {
	return f.scores, f.err
}

func txt(id, name, body string) ResumeFile {
	return ResumeFile{ID: id, FileName: name, Data: []byte(body)}
}

func newTestScreening(m MatcherService, s StatsFetcher, r RelevanceService) *screeningService {
	svc := NewScreeningService(ScreeningDeps{Matcher: m, Stats: s, Relevance: r}).(*screeningService)
	svc.now = func() time.Time { return screeningNow }
	return svc
}

func names(results []models.CandidateResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.FileName)
	}
	return out
}

func TestAnalyzeGroupsAndOrdersCandidates(t *testing.T) {
	matcher := &fakeMatcher{yes: map[string][]string{
		"r1": {"go_experience", "oss", "degree"},
		"r2": {"go_experience", "oss", "degree"},
		"r3": {"go_experience", "oss"},
		"r4": {},
		"r7": {"go_experience", "oss", "degree"},
	}}
	stats := &fakeStats{byURL: map[string]githubstats.Stats{
		"https://github.com/alicedev": {Username: "alicedev", Followers: 10},
		"https://github.com/bobsmith":  {Username: "bobsmith", Followers: 100},
	}}
	relevance := fakeRelevance{scores: map[string]float64{"r1": 0.9}}
	svc := newTestScreening(matcher, stats, relevance)

	runID := uuid.New()
	report, err := svc.Analyze(context.Background(), AnalyzeInput{
		RunID:          runID,
		Criteria:       testCriteria,
		JobDescription: "Go engineer",
		Resumes: []ResumeFile{
			txt("r1", "alice.txt", "Alice Dev\nhttps://github.com/alicedev\nlinkedin.com/in/alice-dev"),
			txt("r2", "bob.txt", "Bob Smith\ngithub.com/bobsmith"),
			txt("r3", "carol.txt", "Carol"),
			txt("r4", "dave.txt", "Dave"),
			txt("r5", "empty.txt", "   "),
			txt("r6", "erin.txt", "Erin"),
			txt("r7", "aaron.txt", "Aaron"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, runID, report.RunID)
	assert.Equal(t, 7, report.TotalProcessed)
	assert.Equal(t, screeningNow, report.GeneratedAt)

	assert.Equal(t, []string{"bob.txt", "alice.txt", "aaron.txt", "carol.txt"}, names(report.Ranked))
	assert.Equal(t, []string{"dave.txt", "empty.txt"}, names(report.Rejected))
	assert.Equal(t, []string{"erin.txt"}, names(report.Unscored))

	bob := report.Ranked[0]
	assert.Equal(t, scoring.GroupStronglyConsider, bob.Group)
	assert.True(t, bob.HasValidGitHub)
	assert.Equal(t, 15.0, bob.Reputation)
	assert.Equal(t, 1.0, bob.WeightedScore)

	alice := report.Ranked[1]
	assert.Equal(t, "https://github.com/alicedev", alice.GitHubURL)
	assert.Equal(t, "https://linkedin.com/in/alice-dev", alice.LinkedInURL)
	require.NotNil(t, alice.GitHubStats)
	assert.Equal(t, "alicedev", alice.GitHubStats.Username)
	require.NotNil(t, alice.Relevance)
	assert.Equal(t, 0.9, *alice.Relevance)

	carol := report.Ranked[3]
	assert.Equal(t, scoring.GroupPotentialFit, carol.Group)
	assert.Equal(t, scoring.ReasonMajorityMet, carol.Reason)
	assert.Equal(t, 2, carol.YesCount)
	assert.Equal(t, 1, carol.NoCount)
	assert.Equal(t, 0.8, carol.WeightedScore)
	assert.Equal(t, scoring.GroupStronglyConsider, carol.WeightedGroup)

	assert.Equal(t, scoring.ReasonNoneMet, report.Rejected[0].Reason)
	assert.Equal(t, models.ResultUnreadable, report.Rejected[1].Status)
	assert.Equal(t, ReasonUnreadable, report.Rejected[1].Reason)
	assert.Equal(t, ReasonUnscored, report.Unscored[0].Reason)

	require.Len(t, matcher.calls, 1)
	assert.Len(t, matcher.calls[0].Resumes, 6)
	require.Len(t, stats.called, 1)
	assert.ElementsMatch(t, []string{"https://github.com/alicedev", "https://github.com/bobsmith"}, stats.called[0])
}

func TestAnalyzeGitHubRequired(t *testing.T) {
	matcher := &fakeMatcher{yes: map[string][]string{
		"r1": {"go_experience", "oss", "degree"},
		"r2": {"go_experience", "oss", "degree"},
	}}
	stats := &fakeStats{byURL: map[string]githubstats.Stats{
		"https://github.com/alicedev": {Username: "alicedev"},
	}}
	svc := newTestScreening(matcher, stats, nil)

	report, err := svc.Analyze(context.Background(), AnalyzeInput{
		Criteria:       testCriteria,
		GitHubRequired: true,
		Resumes: []ResumeFile{
			txt("r1", "alice.txt", "github.com/alicedev"),
			txt("r2", "ghost.txt", "github.com/ghostuser"),
			txt("r3", "nolinks.txt", "Plain resume"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"alice.txt"}, names(report.Ranked))
	assert.Equal(t, []string{"ghost.txt", "nolinks.txt"}, names(report.Rejected))

	for _, r := range report.Rejected {
		assert.Equal(t, scoring.ReasonGitHubMissing, r.Reason)
	}
	assert.Equal(t, models.ResultScored, report.Rejected[0].Status)
	assert.Equal(t, models.ResultEarlyRejected, report.Rejected[1].Status)

	require.Len(t, matcher.calls, 1)
	ids := []string{}
	for _, r := range matcher.calls[0].Resumes {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"r1", "r2"}, ids)
}

func TestAnalyzeMatcherFailureAborts(t *testing.T) {
	matcher := &fakeMatcher{err: &MalformedResponseError{Stage: "match"}}
	svc := newTestScreening(matcher, &fakeStats{}, fakeRelevance{err: errors.New("qdrant down")})

	_, err := svc.Analyze(context.Background(), AnalyzeInput{
		Criteria: testCriteria,
		Resumes:  []ResumeFile{txt("r1", "a.txt", "github.com/alicedev")},
	})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestAnalyzeDegradesWhenRelevanceFails(t *testing.T) {
	matcher := &fakeMatcher{yes: map[string][]string{"r1": {"oss"}}}
	svc := newTestScreening(matcher, &fakeStats{}, fakeRelevance{err: errors.New("qdrant down")})

	report, err := svc.Analyze(context.Background(), AnalyzeInput{
		Criteria: testCriteria,
		Resumes:  []ResumeFile{txt("r1", "a.txt", "resume")},
	})
	require.NoError(t, err)
	require.Len(t, report.Rejected, 1)
	assert.Nil(t, report.Rejected[0].Relevance)
	assert.Equal(t, scoring.ReasonMinorityMet, report.Rejected[0].Reason)
}

func TestAnalyzeWithoutCriteria(t *testing.T) {
	matcher := &fakeMatcher{}
	stats := &fakeStats{byURL: map[string]githubstats.Stats{}}
	svc := newTestScreening(matcher, stats, nil)

	report, err := svc.Analyze(context.Background(), AnalyzeInput{
		Resumes: []ResumeFile{txt("r1", "a.txt", "github.com/alicedev")},
	})
	require.NoError(t, err)

	assert.Empty(t, matcher.calls)
	assert.Len(t, stats.called, 1)
	require.Len(t, report.Rejected, 1)
	assert.Equal(t, 0, report.Rejected[0].TotalCriteria)
	assert.Equal(t, scoring.ReasonNoneMet, report.Rejected[0].Reason)
}
