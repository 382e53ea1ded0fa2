package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/logger"
)

// Handlers groups every route handler. Nil handlers leave their routes
// unregistered.
type Handlers struct {
	Criteria  *CriteriaHandler
	Screening *ScreeningHandler
	Rank      *RankHandler
	Profile   *ProfileHandler
	Artifact  *ArtifactHandler
}

type AppConfig struct {
	Name        string
	Version     string
	BodyLimit   int
	AccessLog   bool
	Logger      *zap.Logger
	ReadTimeout time.Duration
}

func NewApp(cfg AppConfig, h Handlers) *fiber.App {
	log := logger.OrNop(cfg.Logger)
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 30 * time.Second
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  cfg.ReadTimeout,
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: NewErrorHandler(log),
	})

	app.Use(recover.New())
	if cfg.AccessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"version": cfg.Version,
			"time":    time.Now().UTC(),
		})
	})

	if h.Criteria != nil {
		api.Get("/criteria", h.Criteria.HandleList)
		api.Post("/criteria/generate", h.Criteria.HandleGenerate)
		api.Get("/criteria/:id", h.Criteria.HandleGet)
		api.Post("/criteria/:id/finalize", h.Criteria.HandleFinalize)
	}
	if h.Screening != nil {
		api.Post("/screenings", h.Screening.HandleCreate)
		api.Get("/screenings/:id", h.Screening.HandleGet)
		api.Get("/screenings/:id/export", h.Screening.HandleExport)
	}
	if h.Rank != nil {
		api.Post("/rank-resumes", h.Rank.HandleRankResumes)
	}
	if h.Profile != nil {
		api.Post("/identifiers/extract", h.Profile.HandleExtract)
		api.Get("/github/:username", h.Profile.HandleGitHubProfile)
	}
	if h.Artifact != nil {
		api.Get("/artifacts", h.Artifact.HandleList)
		api.Get("/artifacts/:name", h.Artifact.HandleGet)
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": cfg.Name,
			"version": cfg.Version,
			"endpoints": []string{
				"GET /api/v1/criteria",
				"POST /api/v1/criteria/generate",
				"GET /api/v1/criteria/:id",
				"POST /api/v1/criteria/:id/finalize",
				"POST /api/v1/screenings",
				"GET /api/v1/screenings/:id",
				"GET /api/v1/screenings/:id/export",
				"POST /api/v1/rank-resumes",
				"POST /api/v1/identifiers/extract",
				"GET /api/v1/github/:username",
				"GET /api/v1/artifacts",
			},
		})
	})

	return app
}
