package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	cfg, err := config.LoadFile("")
	require.NoError(t, err)
	return cfg
}

func TestNewStackRequiresAPIKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Gemini.APIKey = ""

	_, err := NewStack(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "api key")
}

func TestRateLimiterSelection(t *testing.T) {
	cfg := testConfig(t)
	s := &Stack{Config: cfg, Logger: zap.NewNop()}

	limiter, err := s.rateLimiter()
	require.NoError(t, err)
	assert.IsType(t, &services.WindowLimiter{}, limiter)

	cfg.LLM.RedisURL = "redis://localhost:6379/2"
	limiter, err = s.rateLimiter()
	require.NoError(t, err)
	assert.IsType(t, &services.RedisLimiter{}, limiter)
	assert.Len(t, s.closers, 1)
	s.Close()
	assert.Empty(t, s.closers)

	cfg.LLM.RedisURL = "://nope"
	_, err = s.rateLimiter()
	assert.Error(t, err)
}

func TestSeniorityFallback(t *testing.T) {
	cfg := testConfig(t)
	s := &Stack{Config: cfg}

	cfg.Screening.Seniority = "senior"
	assert.Equal(t, models.SenioritySenior, s.Seniority())

	cfg.Screening.Seniority = "wizard"
	assert.Equal(t, models.SeniorityMid, s.Seniority())
}
