package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type CriteriaHandler struct {
	criteria  services.CriteriaService
	count     int
	seniority models.Seniority
}

// NewCriteriaHandler uses count and seniority when a request leaves them
// out.
func NewCriteriaHandler(criteria services.CriteriaService, count int, seniority models.Seniority) *CriteriaHandler {
	return &CriteriaHandler{
		criteria:  criteria,
		count:     count,
		seniority: seniority,
	}
}

// HandleGenerate handles POST /criteria/generate
func (h *CriteriaHandler) HandleGenerate(c *fiber.Ctx) error {
	var req models.GenerateCriteriaRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request payload")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	in := services.GenerateCriteriaInput{
		JobDescription: req.JobDescription,
		HRNotes:        req.HRNotes,
		Count:          req.Count,
		Seniority:      req.Seniority,
	}
	if in.Count == 0 {
		in.Count = h.count
	}
	if in.Seniority == "" {
		in.Seniority = h.seniority
	}

	set, err := h.criteria.Generate(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(set)
}

// HandleList handles GET /criteria?limit=N
func (h *CriteriaHandler) HandleList(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultListLimit)
	if limit <= 0 || limit > maxListLimit {
		return badRequest("limit must be between 1 and 100")
	}

	sets, err := h.criteria.List(limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"criteria_sets": sets, "count": len(sets)})
}

func (h *CriteriaHandler) HandleGet(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest("Invalid criteria set ID format")
	}

	set, err := h.criteria.Get(id)
	if err != nil {
		return err
	}
	return c.JSON(set)
}

// HandleFinalize handles POST /criteria/:id/finalize
func (h *CriteriaHandler) HandleFinalize(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest("Invalid criteria set ID format")
	}

	var req models.FinalizeCriteriaRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest("Invalid request payload")
		}
	}
	if err := req.Validate(); err != nil {
		return err
	}

	set, err := h.criteria.Finalize(c.UserContext(), id, services.FinalizeInput{
		Selected: req.Selected,
		Weights:  req.Weights,
		Custom:   req.Custom,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(set)
}
