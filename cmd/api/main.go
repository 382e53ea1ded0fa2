package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/app"
	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/handlers"
	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

const (
	appName    = "AI Resume Screener API"
	appVersion = "1.0.0"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zl, err := logger.New(cfg.Log.JSON, cfg.Log.Debug || cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Repositories
	var (
		criteriaRepo repositories.CriteriaRepository
		runRepo      repositories.ScreeningRepository
		docRepo      repositories.DocumentRepository
	)
	db, err := config.InitDatabase(cfg, zl)
	switch {
	case errors.Is(err, config.ErrMemoryDriver):
		mem := repositories.NewMemory()
		criteriaRepo, runRepo, docRepo = mem.Criteria(), mem.Screenings(), mem.Documents()
		zl.Warn("using in-memory repositories, state is lost on restart")
	case err != nil:
		return err
	default:
		criteriaRepo = repositories.NewCriteriaRepository(db)
		runRepo = repositories.NewScreeningRepository(db)
		docRepo = repositories.NewDocumentRepository(db)
	}

	// Services
	storage := services.NewStorageService(cfg.Storage.UploadPath, cfg.Storage.MaxFileSize)
	if err := storage.EnsureUploadDir(); err != nil {
		return err
	}

	stack, err := app.NewStack(ctx, cfg, zl)
	if err != nil {
		return err
	}
	defer stack.Close()

	criteria := services.NewCriteriaService(stack.Gemini, criteriaRepo, stack.Artifacts, stack.Prompts, zl.Named("criteria"))
	zl.Info("services initialized", zap.String("model", cfg.Gemini.Model))

	// Worker
	worker := services.NewWorker(services.WorkerDeps{
		Runs:              runRepo,
		Documents:         docRepo,
		Criteria:          criteriaRepo,
		Storage:           storage,
		Screening:         stack.Screening,
		Artifacts:         stack.Artifacts,
		Concurrency:       cfg.Worker.Concurrency,
		RetryMaxAttempts:  cfg.Worker.RetryMaxAttempts,
		RetryInitialDelay: cfg.Worker.RetryInitialDelay,
		Logger:            zl.Named("worker"),
	})
	worker.Start(ctx)

	go purgeStatsCache(ctx, stack, zl)

	// Handlers
	seniority := stack.Seniority()
	h := handlers.Handlers{
		Criteria: handlers.NewCriteriaHandler(criteria, cfg.Screening.CriteriaCount, seniority),
		Screening: handlers.NewScreeningHandler(handlers.ScreeningHandlerDeps{
			Runs:           runRepo,
			Documents:      docRepo,
			Criteria:       criteria,
			Storage:        storage,
			Worker:         worker,
			Export:         services.NewExportService(),
			MaxFileSize:    cfg.Storage.MaxFileSize,
			GitHubRequired: cfg.Screening.GitHubRequired,
			Logger:         zl.Named("screenings"),
		}),
		Rank: handlers.NewRankHandler(handlers.RankHandlerDeps{
			Criteria:       criteria,
			Screening:      stack.Screening,
			Artifacts:      stack.Artifacts,
			Count:          cfg.Screening.CriteriaCount,
			Seniority:      seniority,
			GitHubRequired: cfg.Screening.GitHubRequired,
			MaxFileSize:    cfg.Storage.MaxFileSize,
			Logger:         zl.Named("rank"),
		}),
		Profile:  handlers.NewProfileHandler(stack.GitHub),
		Artifact: handlers.NewArtifactHandler(stack.Artifacts),
	}

	server := handlers.NewApp(handlers.AppConfig{
		Name:      appName,
		Version:   appVersion,
		BodyLimit: int(cfg.Storage.MaxFileSize) * 4,
		AccessLog: true,
		Logger:    zl,
	}, h)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zl.Info("shutting down server")
		worker.Stop()
		if err := server.Shutdown(); err != nil {
			zl.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zl.Info("server starting", zap.String("addr", addr))

	return server.Listen(addr)
}

// purgeStatsCache drops expired profile stats once an hour until ctx ends.
func purgeStatsCache(ctx context.Context, stack *app.Stack, zl *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := stack.StatsCache.Purge(); n > 0 {
				zl.Debug("purged expired profile stats", zap.Int("entries", n))
			}
		}
	}
}
