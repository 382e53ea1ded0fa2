// Package app assembles the screening services from configuration. The API
// server and the CLI share it.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/githubstats"
	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

const userAgent = "resume-screener"

// Stack holds the services that do not depend on a repository backend.
type Stack struct {
	Config     *config.Config
	Logger     *zap.Logger
	Gemini     services.GeminiService
	Prompts    *services.PromptBuilder
	Extractor  services.TextExtractor
	StatsCache *githubstats.Cache
	GitHub     *githubstats.Fetcher
	Artifacts  *services.ArtifactStore
	Screening  services.ScreeningService

	closers []func() error
}

// NewStack builds the LLM client, the GitHub fetcher, the optional vector
// relevance scorer and the screening pipeline on top of them.
func NewStack(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Stack, error) {
	log = logger.OrNop(log)
	s := &Stack{Config: cfg, Logger: log}

	limiter, err := s.rateLimiter()
	if err != nil {
		return nil, err
	}

	s.Gemini, err = services.NewGeminiService(ctx, services.GeminiOptions{
		APIKey:     cfg.Gemini.APIKey,
		Model:      cfg.Gemini.Model,
		EmbedModel: cfg.Gemini.EmbedModel,
		Backend:    cfg.Gemini.Backend,
		Project:    cfg.Gemini.Project,
		Location:   cfg.Gemini.Location,
		Timeout:    cfg.Gemini.Timeout,
		Limiter:    limiter,
		MaxRetries: cfg.LLM.MaxRetries,
		Backoff:    cfg.LLM.Backoff,
		Logger:     log.Named("gemini"),
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to initialize gemini: %w", err)
	}

	s.Prompts = services.NewPromptBuilder(cfg.LLM.MaxJDChars, cfg.LLM.MaxHRChars, cfg.LLM.MaxResumeChars)
	s.Extractor = services.NewTextExtractor(services.NewPDFParserService(log), log)
	s.Artifacts = services.NewArtifactStore(cfg.Storage.DataDir)

	s.StatsCache = githubstats.NewCache(cfg.GitHub.CacheTTL, nil)
	s.GitHub = githubstats.NewFetcher(githubstats.Options{
		BaseURL:     cfg.GitHub.APIURL,
		Token:       cfg.GitHub.Token,
		UserAgent:   userAgent,
		Timeout:     cfg.GitHub.Timeout,
		Concurrency: cfg.GitHub.Concurrency,
		Cache:       s.StatsCache,
		Logger:      log.Named("github"),
	})

	var relevance services.RelevanceService
	if cfg.Qdrant.Enabled {
		store, err := services.NewQdrantStore(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log.Named("qdrant"))
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, store.Close)
		relevance = services.NewRelevanceService(s.Gemini, store, services.NewTextChunker(0, 0), log.Named("relevance"))
		log.Info("vector relevance enabled", zap.String("collection", cfg.Qdrant.Collection))
	}

	s.Screening = services.NewScreeningService(services.ScreeningDeps{
		Extractor: s.Extractor,
		Matcher:   services.NewMatcherService(s.Gemini, s.Prompts, log.Named("matcher")),
		Stats:     s.GitHub,
		Relevance: relevance,
		Logger:    log.Named("screening"),
	})

	return s, nil
}

func (s *Stack) rateLimiter() (services.RateLimiter, error) {
	llm := s.Config.LLM
	if llm.RedisURL == "" {
		return services.NewWindowLimiter(llm.MaxRPM, llm.BaseDelay), nil
	}

	client, err := services.NewRedisClient(llm.RedisURL)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, client.Close)
	s.Logger.Info("llm rate limit shared through redis", zap.Int("max_rpm", llm.MaxRPM))
	return services.NewRedisRateLimiter(client, llm.MaxRPM, llm.BaseDelay, s.Logger.Named("ratelimit")), nil
}

// Seniority returns the configured default seniority, falling back to mid.
func (s *Stack) Seniority() models.Seniority {
	if v := models.Seniority(s.Config.Screening.Seniority); v.Valid() {
		return v
	}
	return models.SeniorityMid
}

// Close releases network clients opened by NewStack.
func (s *Stack) Close() {
	for _, c := range s.closers {
		if err := c(); err != nil {
			s.Logger.Warn("failed to close client", zap.Error(err))
		}
	}
	s.closers = nil
}
