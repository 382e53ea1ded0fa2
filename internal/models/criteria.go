package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Seniority string

const (
	SeniorityIntern    Seniority = "intern"
	SeniorityJunior    Seniority = "junior"
	SeniorityMid       Seniority = "mid"
	SenioritySenior    Seniority = "senior"
	SeniorityLead      Seniority = "lead"
	SeniorityPrincipal Seniority = "principal"
)

var Seniorities = []Seniority{
	SeniorityIntern, SeniorityJunior, SeniorityMid, SenioritySenior, SeniorityLead, SeniorityPrincipal,
}

func (s Seniority) Valid() bool {
	for _, v := range Seniorities {
		if s == v {
			return true
		}
	}
	return false
}

// Criterion is one yes/no screening question.
type Criterion struct {
	ID               string   `json:"id" mapstructure:"id" validate:"required"`
	Name             string   `json:"name" mapstructure:"name"`
	Question         string   `json:"question" mapstructure:"question" validate:"required"`
	Rationale        string   `json:"rationale" mapstructure:"rationale"`
	ExpectedEvidence []string `json:"expected_evidence" mapstructure:"expected_evidence"`
	LeniencyNote     string   `json:"leniency_note" mapstructure:"leniency_note"`
	Weight           float64  `json:"weight" mapstructure:"weight" validate:"gte=0,lte=1"`
	FailExamples     []string `json:"fail_examples" mapstructure:"fail_examples"`
	Tags             []string `json:"tags" mapstructure:"tags"`
}

// QuestionsDoc is the criteria document exchanged with the model and saved
// as an artifact.
type QuestionsDoc struct {
	RoleSummary   string      `json:"role_summary" mapstructure:"role_summary"`
	Seniority     Seniority   `json:"seniority" mapstructure:"seniority"`
	TotalCriteria int         `json:"total_criteria" mapstructure:"total_criteria"`
	Criteria      []Criterion `json:"criteria" mapstructure:"criteria" validate:"dive"`
}

func (d QuestionsDoc) Weights() map[string]float64 {
	out := make(map[string]float64, len(d.Criteria))
	for _, c := range d.Criteria {
		out[c.ID] = c.Weight
	}
	return out
}

func (d QuestionsDoc) IDs() []string {
	out := make([]string, 0, len(d.Criteria))
	for _, c := range d.Criteria {
		out = append(out, c.ID)
	}
	return out
}

type CriteriaSet struct {
	ID             uuid.UUID    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ParentID       *uuid.UUID   `gorm:"type:varchar(36);index" json:"parent_id,omitempty"`
	JobDescription string       `gorm:"type:text" json:"job_description"`
	HRNotes        string       `gorm:"type:text" json:"hr_notes"`
	Doc            QuestionsDoc `gorm:"serializer:json;type:text" json:"doc"`
	Finalized      bool         `gorm:"not null;default:false" json:"finalized"`
	ArtifactName   string       `gorm:"type:varchar(255)" json:"artifact_name,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (CriteriaSet) TableName() string {
	return "criteria_sets"
}

func (c *CriteriaSet) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
