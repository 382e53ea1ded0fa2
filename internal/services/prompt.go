package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"alfredoptarigan/resume-screener/internal/models"
)

const noneProvided = "(none provided)"

type PromptBuilder struct {
	maxJDChars     int
	maxHRChars     int
	maxResumeChars int
}

func NewPromptBuilder(maxJDChars, maxHRChars, maxResumeChars int) *PromptBuilder {
	if maxJDChars <= 0 {
		maxJDChars = 20000
	}
	if maxHRChars <= 0 {
		maxHRChars = 8000
	}
	if maxResumeChars <= 0 {
		maxResumeChars = 12000
	}
	return &PromptBuilder{
		maxJDChars:     maxJDChars,
		maxHRChars:     maxHRChars,
		maxResumeChars: maxResumeChars,
	}
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return noneProvided
	}
	return s
}

// BuildCriteriaPrompt asks for count yes/no screening criteria for the role.
func (pb *PromptBuilder) BuildCriteriaPrompt(jobDescription, hrNotes string, count int, seniority models.Seniority) string {
	return fmt.Sprintf(`You are designing %[1]d screening criteria, each a Yes/No question, to assess resumes for the role below.
Reply with a single JSON object that follows the schema exactly. No markdown and no commentary.

SENIORITY: %[2]s

JOB DESCRIPTION:
<<<JD>>>
%[3]s
<<<END JD>>>

HR NOTES:
<<<HR>>>
%[4]s
<<<END HR>>>

GUIDELINES:
- Focus on what matters for this role at this seniority.
- Prefer evidence of impact over pedigree.
- Projects, open source and internships may substitute for formal experience.
- Every criterion is atomic, auditable and phrased as a Yes/No question.
- Weights are between 0 and 1 and add up to roughly 1.

SCHEMA:
{
  "role_summary": "1-2 sentences",
  "seniority": "intern|junior|mid|senior|lead|principal",
  "total_criteria": %[1]d,
  "criteria": [
    {
      "id": "snake_case_identifier",
      "name": "Short title",
      "question": "Yes/No question",
      "rationale": "Why this check matters for the role",
      "expected_evidence": ["concrete resume signals"],
      "leniency_note": "Where leniency is allowed",
      "weight": 0.0,
      "fail_examples": ["wording that would fail"],
      "tags": ["skills"]
    }
  ]
}`,
		count,
		seniority,
		truncateRunes(jobDescription, pb.maxJDChars),
		truncateRunes(orNone(hrNotes), pb.maxHRChars),
	)
}

type promptQuestion struct {
	ID       string `json:"id"`
	Question string `json:"question"`
}

type promptResume struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// BuildMatchPrompt asks for a yes/no answer per criterion for every resume in
// one request.
func (pb *PromptBuilder) BuildMatchPrompt(jobDescription, hrNotes string, criteria []models.Criterion, resumes []ResumeText, maxReasons int) string {
	questions := make([]promptQuestion, 0, len(criteria))
	for _, c := range criteria {
		questions = append(questions, promptQuestion{ID: c.ID, Question: c.Question})
	}

	payload := make([]promptResume, 0, len(resumes))
	for _, r := range resumes {
		payload = append(payload, promptResume{ID: r.ID, Text: truncateRunes(r.Text, pb.maxResumeChars)})
	}

	questionsJSON, _ := json.Marshal(questions)
	resumesJSON, _ := json.Marshal(payload)

	jd := jobDescription
	if strings.TrimSpace(jd) == "" {
		jd = "(JD not provided)"
	}

	return fmt.Sprintf(`You are an expert technical recruiter.

Evaluate every RESUME against every QUESTION using the job description and HR notes.
For each resume answer "yes" or "no" per question and give up to %[1]d short reasons quoting concise evidence.
Reply with a single JSON object that follows the schema. No markdown and no commentary.

JOB DESCRIPTION:
%[2]s

HR NOTES:
%[3]s

QUESTIONS (array of {id, question}):
%[4]s

RESUMES (array of {id, text}):
%[5]s

SCHEMA:
{
  "results": [
    {
      "resume_id": "<id from RESUMES>",
      "answers": [
        {
          "criterion_id": "<id from QUESTIONS>",
          "question": "<question text>",
          "answer": "yes" | "no",
          "reasons": ["short reason"]
        }
      ],
      "yes_count": 0,
      "no_count": 0,
      "majority_pass": true
    }
  ]
}`,
		maxReasons,
		truncateRunes(jd, pb.maxJDChars),
		truncateRunes(orNone(hrNotes), pb.maxHRChars),
		questionsJSON,
		resumesJSON,
	)
}
