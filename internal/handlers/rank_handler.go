package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

// RankHandler screens a zip of resumes in one request without queueing.
type RankHandler struct {
	criteria       services.CriteriaService
	screening      services.ScreeningService
	artifacts      *services.ArtifactStore
	count          int
	seniority      models.Seniority
	githubRequired bool
	maxFileSize    int64
	logger         *zap.Logger
}

type RankHandlerDeps struct {
	Criteria       services.CriteriaService
	Screening      services.ScreeningService
	Artifacts      *services.ArtifactStore
	Count          int
	Seniority      models.Seniority
	GitHubRequired bool
	MaxFileSize    int64
	Logger         *zap.Logger
}

func NewRankHandler(deps RankHandlerDeps) *RankHandler {
	return &RankHandler{
		criteria:       deps.Criteria,
		screening:      deps.Screening,
		artifacts:      deps.Artifacts,
		count:          deps.Count,
		seniority:      deps.Seniority,
		githubRequired: deps.GitHubRequired,
		maxFileSize:    deps.MaxFileSize,
		logger:         logger.OrNop(deps.Logger),
	}
}

// HandleRankResumes handles POST /rank-resumes
func (h *RankHandler) HandleRankResumes(c *fiber.Ctx) error {
	jd := c.FormValue("job_description")
	if strings.TrimSpace(jd) == "" {
		return badRequest("job_description is required")
	}
	hr := c.FormValue("hr_notes")

	githubRequired := h.githubRequired
	if raw := c.FormValue("github_required"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return badRequest("github_required must be a boolean")
		}
		githubRequired = v
	}

	fh, err := c.FormFile("resume_file")
	if err != nil {
		return badRequest("resume_file is required")
	}
	if !isZip(fh.Filename) {
		return badRequest("resume_file must be a .zip archive")
	}
	data, err := readFormFile(fh)
	if err != nil {
		return err
	}
	resumes, err := services.ExtractResumesFromZip(data, h.maxFileSize)
	if err != nil {
		return err
	}

	criteria, err := h.resolveCriteria(c, jd, hr)
	if err != nil {
		return err
	}

	report, err := h.screening.Analyze(c.UserContext(), services.AnalyzeInput{
		RunID:          uuid.New(),
		Criteria:       criteria,
		JobDescription: jd,
		HRNotes:        hr,
		GitHubRequired: githubRequired,
		Resumes:        resumes,
	})
	if err != nil {
		return err
	}

	if h.artifacts != nil {
		if _, err := h.artifacts.SaveResults(report); err != nil {
			h.logger.Warn("failed to write results artifact", zap.Error(err))
		}
	}

	return c.JSON(models.NewRankingResponse(report))
}

// resolveCriteria loads criteria_id when given and otherwise generates a
// fresh set with the configured count and seniority.
func (h *RankHandler) resolveCriteria(c *fiber.Ctx, jd, hr string) ([]models.Criterion, error) {
	if raw := c.FormValue("criteria_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, badRequest("Invalid criteria_id format")
		}
		set, err := h.criteria.Get(id)
		if err != nil {
			return nil, err
		}
		return set.Doc.Criteria, nil
	}

	set, err := h.criteria.Generate(c.UserContext(), services.GenerateCriteriaInput{
		JobDescription: jd,
		HRNotes:        hr,
		Count:          h.count,
		Seniority:      h.seniority,
	})
	if err != nil {
		return nil, err
	}

	doc, err := services.FinalizeDoc(set.Doc, services.FinalizeInput{})
	if err != nil {
		return nil, err
	}
	return doc.Criteria, nil
}
