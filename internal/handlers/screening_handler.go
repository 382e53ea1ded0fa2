package handlers

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ScreeningHandler struct {
	runs           repositories.ScreeningRepository
	docs           repositories.DocumentRepository
	criteria       services.CriteriaService
	storage        services.StorageService
	worker         services.Worker
	export         services.ExportService
	maxFileSize    int64
	githubRequired bool
	logger         *zap.Logger
}

type ScreeningHandlerDeps struct {
	Runs           repositories.ScreeningRepository
	Documents      repositories.DocumentRepository
	Criteria       services.CriteriaService
	Storage        services.StorageService
	Worker         services.Worker
	Export         services.ExportService
	MaxFileSize    int64
	GitHubRequired bool
	Logger         *zap.Logger
}

func NewScreeningHandler(deps ScreeningHandlerDeps) *ScreeningHandler {
	return &ScreeningHandler{
		runs:           deps.Runs,
		docs:           deps.Documents,
		criteria:       deps.Criteria,
		storage:        deps.Storage,
		worker:         deps.Worker,
		export:         deps.Export,
		maxFileSize:    deps.MaxFileSize,
		githubRequired: deps.GitHubRequired,
		logger:         logger.OrNop(deps.Logger),
	}
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

func isZip(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".zip")
}

// collectResumes expands zip uploads and returns every resume in upload
// order.
func collectResumes(files []*multipart.FileHeader, maxFileSize int64) ([]services.ResumeFile, error) {
	var resumes []services.ResumeFile
	for _, fh := range files {
		if !isZip(fh.Filename) {
			if ext := strings.ToLower(filepath.Ext(fh.Filename)); !services.SupportedResumeExt[ext] {
				return nil, fmt.Errorf("%w: %s", services.ErrUnsupportedFile, fh.Filename)
			}
			if maxFileSize > 0 && fh.Size > maxFileSize {
				return nil, fmt.Errorf("%w: %s", services.ErrFileTooLarge, fh.Filename)
			}
			data, err := readFormFile(fh)
			if err != nil {
				return nil, err
			}
			resumes = append(resumes, services.ResumeFile{FileName: filepath.Base(fh.Filename), Data: data})
			continue
		}

		data, err := readFormFile(fh)
		if err != nil {
			return nil, err
		}
		found, err := services.ExtractResumesFromZip(data, maxFileSize)
		if err != nil {
			return nil, err
		}
		resumes = append(resumes, found...)
	}

	for i := range resumes {
		resumes[i].ID = fmt.Sprintf("r%d", i+1)
	}
	return resumes, nil
}

// HandleCreate handles POST /screenings
func (h *ScreeningHandler) HandleCreate(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return badRequest("failed to parse multipart form")
	}

	criteriaID, err := uuid.Parse(c.FormValue("criteria_id"))
	if err != nil {
		return badRequest("criteria_id is required and must be a UUID")
	}
	set, err := h.criteria.Get(criteriaID)
	if err != nil {
		return err
	}
	if !set.Finalized {
		return badRequest("criteria set must be finalized before screening")
	}

	githubRequired := h.githubRequired
	if raw := c.FormValue("github_required"); raw != "" {
		githubRequired, err = strconv.ParseBool(raw)
		if err != nil {
			return badRequest("github_required must be a boolean")
		}
	}

	jd := c.FormValue("job_description")
	if strings.TrimSpace(jd) == "" {
		jd = set.JobDescription
	}
	hr := c.FormValue("hr_notes")
	if strings.TrimSpace(hr) == "" {
		hr = set.HRNotes
	}

	resumes, err := collectResumes(form.File["resumes"], h.maxFileSize)
	if err != nil {
		return err
	}
	if len(resumes) == 0 {
		return badRequest("No resumes uploaded. Send files or a zip archive as 'resumes'.")
	}

	run := &models.ScreeningRun{
		CriteriaSetID:  set.ID,
		JobDescription: jd,
		HRNotes:        hr,
		GitHubRequired: githubRequired,
		Status:         models.StatusUploading,
	}
	if err := h.runs.Create(run); err != nil {
		return err
	}

	for _, r := range resumes {
		filename, filePath, err := h.storage.SaveBytes(r.FileName, r.Data, "resume")
		if err != nil {
			_ = h.runs.UpdateError(run.ID, err.Error())
			return err
		}

		doc := models.Document{
			RunID:            run.ID,
			Filename:         filename,
			OriginalFileName: r.FileName,
			FileType:         strings.TrimPrefix(strings.ToLower(filepath.Ext(r.FileName)), "."),
			FilePath:         filePath,
			Size:             int64(len(r.Data)),
		}
		if err := h.docs.Create(&doc); err != nil {
			_ = h.storage.DeleteFile(filename)
			_ = h.runs.UpdateError(run.ID, err.Error())
			return err
		}
	}

	if err := h.runs.UpdateStatus(run.ID, models.StatusQueued); err != nil {
		return err
	}
	h.worker.EnqueueJob(run.ID)

	h.logger.Info("screening queued",
		zap.String("run_id", run.ID.String()),
		zap.String("criteria_set_id", set.ID.String()),
		zap.Int("resumes", len(resumes)),
	)

	return c.Status(fiber.StatusAccepted).JSON(models.ScreeningResponse{
		ID:     run.ID.String(),
		Status: string(models.StatusQueued),
		Files:  len(resumes),
	})
}

func (h *ScreeningHandler) loadRun(c *fiber.Ctx) (*models.ScreeningRun, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, badRequest("Invalid screening ID format")
	}
	return h.runs.FindByID(id)
}

func (h *ScreeningHandler) report(run *models.ScreeningRun) (*models.ScreeningReport, error) {
	set, err := h.criteria.Get(run.CriteriaSetID)
	if err != nil {
		return nil, err
	}
	generated := run.UpdatedAt
	if run.CompletedAt != nil {
		generated = *run.CompletedAt
	}
	return models.ReportFromResults(run.ID, generated.UTC(), set.Doc.Criteria, run.Results), nil
}

// HandleGet handles GET /screenings/:id
func (h *ScreeningHandler) HandleGet(c *fiber.Ctx) error {
	run, err := h.loadRun(c)
	if err != nil {
		return err
	}

	resp := models.ScreeningResultResponse{
		ID:     run.ID.String(),
		Status: string(run.Status),
	}

	switch run.Status {
	case models.StatusCompleted:
		report, err := h.report(run)
		if err != nil {
			return err
		}
		resp.Report = report
	case models.StatusFailed:
		resp.ErrorMessage = run.ErrorMessage
	}

	return c.JSON(resp)
}

// HandleExport handles GET /screenings/:id/export
func (h *ScreeningHandler) HandleExport(c *fiber.Ctx) error {
	run, err := h.loadRun(c)
	if err != nil {
		return err
	}
	if run.Status != models.StatusCompleted {
		return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("screening is %s, export needs a completed run", run.Status))
	}

	report, err := h.report(run)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := h.export.WriteXLSX(report, &buf); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="screening_%s.xlsx"`, run.ID))
	return c.Send(buf.Bytes())
}
