package services

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/logger"
)

const resumeDocType = "resume"

// RelevanceService scores how close each resume sits to the job description
// in embedding space.
type RelevanceService interface {
	// Score returns the best chunk similarity per resume id. Resumes that
	// could not be embedded are absent from the map.
	Score(ctx context.Context, runID, jobDescription string, resumes []ResumeText) (map[string]float64, error)
}

type relevanceService struct {
	gemini  GeminiService
	store   VectorStore
	chunker TextChunker
	logger  *zap.Logger
}

func NewRelevanceService(gemini GeminiService, store VectorStore, chunker TextChunker, log *zap.Logger) RelevanceService {
	return &relevanceService{
		gemini:  gemini,
		store:   store,
		chunker: chunker,
		logger:  logger.OrNop(log),
	}
}

func relevanceDocID(runID, resumeID string) string {
	return runID + "/" + resumeID
}

// Score implements RelevanceService.
func (r *relevanceService) Score(ctx context.Context, runID, jobDescription string, resumes []ResumeText) (map[string]float64, error) {
	scores := make(map[string]float64, len(resumes))
	if len(resumes) == 0 {
		return scores, nil
	}

	defer func() {
		if err := r.store.DeleteRun(context.WithoutCancel(ctx), runID); err != nil {
			r.logger.Warn("failed to delete relevance points", zap.String("run_id", runID), zap.Error(err))
		}
	}()

	indexed := make([]ResumeText, 0, len(resumes))
	for _, resume := range resumes {
		points, err := r.embedResume(ctx, runID, resume)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			r.logger.Warn("failed to embed resume", zap.String("resume_id", resume.ID), zap.Error(err))
			continue
		}
		if err := r.store.Upsert(ctx, points); err != nil {
			return nil, err
		}
		if len(points) > 0 {
			indexed = append(indexed, resume)
		}
	}

	jdVector, err := r.gemini.GenerateEmbedding(ctx, jobDescription)
	if err != nil {
		return nil, fmt.Errorf("failed to embed job description: %w", err)
	}

	for _, resume := range indexed {
		score, ok, err := r.store.BestScore(ctx, jdVector, relevanceDocID(runID, resume.ID))
		if err != nil {
			return nil, err
		}
		if ok {
			scores[resume.ID] = math.Round(float64(score)*1000) / 1000
		}
	}

	return scores, nil
}

func (r *relevanceService) embedResume(ctx context.Context, runID string, resume ResumeText) ([]VectorPoint, error) {
	chunks := r.chunker.Chunk(resume.Text)
	points := make([]VectorPoint, 0, len(chunks))
	for _, chunk := range chunks {
		vector, err := r.gemini.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return nil, err
		}
		points = append(points, VectorPoint{
			DocID:   relevanceDocID(runID, resume.ID),
			DocType: resumeDocType,
			RunID:   runID,
			Text:    chunk,
			Vector:  vector,
		})
	}
	return points, nil
}
