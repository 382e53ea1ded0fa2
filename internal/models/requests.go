package models

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type GenerateCriteriaRequest struct {
	JobDescription string    `json:"job_description" validate:"required"`
	HRNotes        string    `json:"hr_notes"`
	Count          int       `json:"count" validate:"omitempty,min=5,max=10"`
	Seniority      Seniority `json:"seniority" validate:"omitempty,oneof=intern junior mid senior lead principal"`
}

func (r *GenerateCriteriaRequest) Validate() error {
	return validate.Struct(r)
}

type CustomCriterion struct {
	Name     string   `json:"name"`
	Question string   `json:"question" validate:"required"`
	Weight   float64  `json:"weight" validate:"gte=0,lte=1"`
	Tags     []string `json:"tags"`
}

type FinalizeCriteriaRequest struct {
	Selected []string           `json:"selected"`
	Weights  map[string]float64 `json:"weights" validate:"dive,gte=0,lte=1"`
	Custom   []CustomCriterion  `json:"custom" validate:"dive"`
}

func (r *FinalizeCriteriaRequest) Validate() error {
	return validate.Struct(r)
}

type ExtractIdentifiersRequest struct {
	Platform string   `json:"platform" validate:"omitempty,oneof=github linkedin"`
	Text     string   `json:"text"`
	Links    []string `json:"links"`
}

func (r *ExtractIdentifiersRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if strings.TrimSpace(r.Text) == "" && len(r.Links) == 0 {
		return fmt.Errorf("text or links is required")
	}
	return nil
}

// ValidationMessage renders validator errors as one line for API responses.
func ValidationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
	}
	return "validation error: " + strings.Join(parts, "; ")
}
