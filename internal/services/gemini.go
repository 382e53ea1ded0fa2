package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/resume-screener/internal/logger"
)

const (
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultEmbedModel  = "text-embedding-004"

	maxEmbedChars   = 40000
	backoffFactor   = 1.5
	maxOutputTokens = 8192
)

type GeminiService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	// GenerateJSON asks the model for an application/json reply.
	GenerateJSON(ctx context.Context, prompt string, temperature float32) (string, error)
}

// genaiModels is the subset of *genai.Models the service calls.
type genaiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

type GeminiOptions struct {
	APIKey     string
	Model      string
	EmbedModel string
	// Backend is "gemini" (default) or "vertex".
	Backend  string
	Project  string
	Location string
	Timeout  time.Duration

	Limiter    RateLimiter
	MaxRetries int
	Backoff    time.Duration
	Logger     *zap.Logger
}

type geminiService struct {
	models     genaiModels
	modelName  string
	embedModel string
	timeout    time.Duration
	limiter    RateLimiter
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
	sleep      func(context.Context, time.Duration) error
}

func NewGeminiService(ctx context.Context, opts GeminiOptions) (GeminiService, error) {
	cfg := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(opts.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if opts.Backend == "vertex" {
		cfg = &genai.ClientConfig{
			Project:  opts.Project,
			Location: opts.Location,
			Backend:  genai.BackendVertexAI,
		}
	} else if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return newGeminiService(client.Models, opts), nil
}

func newGeminiService(models genaiModels, opts GeminiOptions) *geminiService {
	if opts.Model == "" {
		opts.Model = DefaultGeminiModel
	}
	if opts.EmbedModel == "" {
		opts.EmbedModel = DefaultEmbedModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.Limiter == nil {
		opts.Limiter = NewWindowLimiter(0, 0)
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 10 * time.Second
	}

	return &geminiService{
		models:     models,
		modelName:  opts.Model,
		embedModel: opts.EmbedModel,
		timeout:    opts.Timeout,
		limiter:    opts.Limiter,
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
		logger:     logger.OrNop(opts.Logger),
		sleep:      sleepCtx,
	}
}

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	text = truncateRunes(text, maxEmbedChars)

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, classifyLLMError(ctx, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	result, err := g.models.EmbedContent(callCtx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, classifyLLMError(callCtx, err)
	}

	if result == nil || len(result.Embeddings) == 0 || result.Embeddings[0] == nil {
		return nil, &MalformedResponseError{Stage: "embedding", Cause: errors.New("empty embedding result")}
	}

	return result.Embeddings[0].Values, nil
}

// GenerateJSON implements GeminiService.
func (g *geminiService) GenerateJSON(ctx context.Context, prompt string, temperature float32) (string, error) {
	return g.generate(ctx, prompt, &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  maxOutputTokens,
		ResponseMIMEType: "application/json",
	})
}

// generate retries only on 429 responses, backing off by backoffFactor each
// attempt.
func (g *geminiService) generate(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	for attempt := 0; ; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", classifyLLMError(ctx, err)
		}

		g.logger.Debug("gemini request",
			zap.String("model", g.modelName),
			zap.Int("attempt", attempt+1),
			zap.String("prompt", logger.TruncateForLog(prompt, 500)),
		)

		text, err := g.generateOnce(ctx, prompt, config)
		if err == nil {
			g.logger.Debug("gemini response", zap.String("text", logger.TruncateForLog(text, 500)))
			return text, nil
		}

		if !isRateLimited(err) || attempt >= g.maxRetries {
			return "", err
		}

		delay := time.Duration(float64(g.backoff) * math.Pow(backoffFactor, float64(attempt)))
		g.logger.Warn("gemini rate limited, backing off",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
		)
		if err := g.sleep(ctx, delay); err != nil {
			return "", classifyLLMError(ctx, err)
		}
	}
}

func (g *geminiService) generateOnce(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.models.GenerateContent(callCtx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", classifyLLMError(callCtx, err)
	}
	if resp == nil {
		return "", &MalformedResponseError{Stage: "generate", Cause: errors.New("nil response")}
	}

	text := responseText(resp)
	if text == "" {
		return "", &MalformedResponseError{Stage: "generate", Cause: errors.New("no text content in response")}
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
		if builder.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(builder.String())
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
