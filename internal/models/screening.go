package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-screener/internal/githubstats"
	"alfredoptarigan/resume-screener/internal/links"
	"alfredoptarigan/resume-screener/internal/scoring"
)

type RunStatus string

const (
	// StatusUploading marks a run whose resumes are still being stored.
	StatusUploading  RunStatus = "uploading"
	StatusQueued     RunStatus = "queued"
	StatusProcessing RunStatus = "processing"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
)

// ScreeningRun is one batch of resumes screened against a finalized
// criteria set.
type ScreeningRun struct {
	ID             uuid.UUID  `gorm:"type:varchar(36);primaryKey" json:"id"`
	CriteriaSetID  uuid.UUID  `gorm:"type:varchar(36);index" json:"criteria_set_id"`
	JobDescription string     `gorm:"type:text" json:"job_description"`
	HRNotes        string     `gorm:"type:text" json:"hr_notes"`
	GitHubRequired bool       `gorm:"not null;default:false" json:"github_required"`
	Status         RunStatus  `gorm:"type:varchar(16);not null;default:'queued';index" json:"status"`
	ErrorMessage   *string    `gorm:"type:text" json:"error_message,omitempty"`
	ArtifactName   string     `gorm:"type:varchar(255)" json:"artifact_name,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	CriteriaSet CriteriaSet       `gorm:"foreignKey:CriteriaSetID" json:"-"`
	Documents   []Document        `gorm:"foreignKey:RunID" json:"-"`
	Results     []CandidateResult `gorm:"foreignKey:RunID" json:"-"`
}

func (ScreeningRun) TableName() string {
	return "screening_runs"
}

func (r *ScreeningRun) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ResultStatus records how far a resume got through the pipeline.
type ResultStatus string

const (
	ResultScored ResultStatus = "scored"
	// ResultUnscored means the model returned no answers for the resume.
	ResultUnscored   ResultStatus = "unscored"
	ResultUnreadable ResultStatus = "unreadable"
	// ResultEarlyRejected means the resume was rejected before matching.
	ResultEarlyRejected ResultStatus = "early_rejected"
)

// Answer is the model's verdict on one criterion for one resume.
type Answer struct {
	CriterionID string   `json:"criterion_id" mapstructure:"criterion_id"`
	Question    string   `json:"question" mapstructure:"question"`
	Answer      string   `json:"answer" mapstructure:"answer"`
	Reasons     []string `json:"reasons" mapstructure:"reasons"`
}

func (a Answer) Yes() bool {
	return a.Answer == "yes"
}

type CandidateResult struct {
	ID            uuid.UUID     `gorm:"type:varchar(36);primaryKey" json:"id"`
	RunID         uuid.UUID     `gorm:"type:varchar(36);index" json:"run_id"`
	ResumeID      string        `gorm:"type:varchar(255)" json:"resume_id"`
	FileName      string        `gorm:"type:varchar(255)" json:"file_name"`
	Position      int           `json:"position"`
	Status        ResultStatus  `gorm:"type:varchar(16)" json:"status"`
	Group         scoring.Group `gorm:"type:varchar(32)" json:"group,omitempty"`
	Reason        string        `gorm:"type:text" json:"reason"`
	YesCount      int           `json:"yes_count"`
	NoCount       int           `json:"no_count"`
	TotalCriteria int           `json:"total_criteria"`
	WeightedScore float64       `json:"weighted_score"`
	WeightedGroup scoring.Group `gorm:"type:varchar(32)" json:"weighted_group,omitempty"`
	Reputation    float64       `json:"reputation"`
	Relevance     *float64      `json:"relevance,omitempty"`

	HasValidGitHub bool               `json:"has_valid_github"`
	GitHubURL      string             `gorm:"type:text" json:"github_url,omitempty"`
	LinkedInURL    string             `gorm:"type:text" json:"linkedin_url,omitempty"`
	GitHub         []links.Identifier `gorm:"serializer:json;type:text" json:"github"`
	LinkedIn       []links.Identifier `gorm:"serializer:json;type:text" json:"linkedin"`
	GitHubStats    *githubstats.Stats `gorm:"serializer:json;type:text" json:"github_stats,omitempty"`
	Answers        []Answer           `gorm:"serializer:json;type:text" json:"answers"`
	CreatedAt      time.Time          `json:"created_at"`
}

func (CandidateResult) TableName() string {
	return "candidate_results"
}

func (c *CandidateResult) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ScreeningReport is the ordered outcome of a screening run.
type ScreeningReport struct {
	RunID          uuid.UUID         `json:"run_id"`
	GeneratedAt    time.Time         `json:"generated_at"`
	TotalProcessed int               `json:"total_processed"`
	Criteria       []Criterion       `json:"criteria"`
	Ranked         []CandidateResult `json:"ranked"`
	Rejected       []CandidateResult `json:"rejected"`
	Unscored       []CandidateResult `json:"unscored"`
}

// Results returns every candidate in report order.
func (r *ScreeningReport) Results() []CandidateResult {
	out := make([]CandidateResult, 0, len(r.Ranked)+len(r.Rejected)+len(r.Unscored))
	out = append(out, r.Ranked...)
	out = append(out, r.Rejected...)
	return append(out, r.Unscored...)
}

// GroupCounts tallies candidates per group. Unscored candidates are counted
// under their status.
func (r *ScreeningReport) GroupCounts() map[string]int {
	counts := map[string]int{
		string(scoring.GroupStronglyConsider): 0,
		string(scoring.GroupPotentialFit):     0,
		string(scoring.GroupRejected):         0,
		string(ResultUnscored):                0,
	}
	for _, c := range r.Results() {
		if c.Status == ResultUnscored {
			counts[string(ResultUnscored)]++
			continue
		}
		counts[string(c.Group)]++
	}
	return counts
}

// ReportFromResults rebuilds a report from stored results kept in report
// order.
func ReportFromResults(runID uuid.UUID, generatedAt time.Time, criteria []Criterion, results []CandidateResult) *ScreeningReport {
	report := &ScreeningReport{
		RunID:          runID,
		GeneratedAt:    generatedAt,
		TotalProcessed: len(results),
		Criteria:       criteria,
		Ranked:         []CandidateResult{},
		Rejected:       []CandidateResult{},
		Unscored:       []CandidateResult{},
	}
	for _, r := range results {
		switch {
		case r.Status == ResultUnscored:
			report.Unscored = append(report.Unscored, r)
		case r.Group == scoring.GroupRejected:
			report.Rejected = append(report.Rejected, r)
		default:
			report.Ranked = append(report.Ranked, r)
		}
	}
	return report
}
