package models

import (
	"alfredoptarigan/resume-screener/internal/githubstats"
	"alfredoptarigan/resume-screener/internal/links"
)

type ScreeningResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Files  int    `json:"files,omitempty"`
}

type ScreeningResultResponse struct {
	ID           string           `json:"id"`
	Status       string           `json:"status"`
	Report       *ScreeningReport `json:"report,omitempty"`
	ErrorMessage *string          `json:"error_message,omitempty"`
}

type RankedCandidate struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	FileName      string  `json:"file_name"`
	Group         string  `json:"group"`
	Reason        string  `json:"reason"`
	GitHubURL     string  `json:"github_url"`
	LinkedInURL   string  `json:"linkedin_url"`
	Score         float64 `json:"score"`
	YesCount      int     `json:"yes_count"`
	TotalCriteria int     `json:"total_criteria"`
	WeightedScore float64 `json:"weighted_score"`
}

type RejectedCandidate struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FileName string `json:"file_name"`
	Reason   string `json:"reason"`
}

type RankingResponse struct {
	RankedCandidates   []RankedCandidate   `json:"ranked_candidates"`
	RejectedCandidates []RejectedCandidate `json:"rejected_candidates"`
	TotalProcessed     int                 `json:"total_processed"`
}

// NewRankingResponse flattens a report. Unscored candidates are listed as
// rejected with their reason.
func NewRankingResponse(r *ScreeningReport) RankingResponse {
	resp := RankingResponse{
		RankedCandidates:   make([]RankedCandidate, 0, len(r.Ranked)),
		RejectedCandidates: make([]RejectedCandidate, 0, len(r.Rejected)+len(r.Unscored)),
		TotalProcessed:     r.TotalProcessed,
	}
	for _, c := range r.Ranked {
		resp.RankedCandidates = append(resp.RankedCandidates, RankedCandidate{
			ID:            c.ResumeID,
			Name:          CandidateName(c.FileName),
			FileName:      c.FileName,
			Group:         c.Group.Label(),
			Reason:        c.Reason,
			GitHubURL:     c.GitHubURL,
			LinkedInURL:   c.LinkedInURL,
			Score:         c.Reputation,
			YesCount:      c.YesCount,
			TotalCriteria: c.TotalCriteria,
			WeightedScore: c.WeightedScore,
		})
	}
	for _, list := range [][]CandidateResult{r.Rejected, r.Unscored} {
		for _, c := range list {
			resp.RejectedCandidates = append(resp.RejectedCandidates, RejectedCandidate{
				ID:       c.ResumeID,
				Name:     CandidateName(c.FileName),
				FileName: c.FileName,
				Reason:   c.Reason,
			})
		}
	}
	return resp
}

type IdentifiersResponse struct {
	Identifiers []links.Identifier `json:"identifiers"`
}

type GitHubProfileResponse struct {
	Stats      githubstats.Stats `json:"stats"`
	Reputation float64           `json:"reputation"`
	FromCache  bool              `json:"from_cache"`
}

type ArtifactListResponse struct {
	Artifacts []string `json:"artifacts"`
}
