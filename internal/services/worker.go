package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
)

const (
	jobQueueSize        = 100
	defaultPollInterval = 10 * time.Second
	pendingBatch        = 10
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(runID uuid.UUID)
}

type WorkerDeps struct {
	Runs      repositories.ScreeningRepository
	Documents repositories.DocumentRepository
	Criteria  repositories.CriteriaRepository
	Storage   StorageService
	Screening ScreeningService
	// Artifacts is optional.
	Artifacts    *ArtifactStore
	Concurrency  int
	PollInterval time.Duration
	// RetryMaxAttempts bounds how often a run is analyzed when the LLM
	// fails transiently. The delay doubles from RetryInitialDelay.
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
	Logger            *zap.Logger
}

type worker struct {
	runs      repositories.ScreeningRepository
	documents repositories.DocumentRepository
	criteria  repositories.CriteriaRepository
	storage   StorageService
	screening ScreeningService
	artifacts *ArtifactStore
	logger    *zap.Logger

	maxAttempts int
	retryDelay  time.Duration
	sleep       func(context.Context, time.Duration) error

	jobQueue     chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	inFlight     sync.Map
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once
}

func NewWorker(deps WorkerDeps) Worker {
	return newWorker(deps)
}

func newWorker(deps WorkerDeps) *worker {
	if deps.Concurrency <= 0 {
		deps.Concurrency = 1
	}
	if deps.PollInterval <= 0 {
		deps.PollInterval = defaultPollInterval
	}
	if deps.RetryMaxAttempts <= 0 {
		deps.RetryMaxAttempts = 1
	}
	if deps.RetryInitialDelay <= 0 {
		deps.RetryInitialDelay = 2 * time.Second
	}
	return &worker{
		runs:         deps.Runs,
		documents:    deps.Documents,
		criteria:     deps.Criteria,
		storage:      deps.Storage,
		screening:    deps.Screening,
		artifacts:    deps.Artifacts,
		logger:       logger.OrNop(deps.Logger),
		maxAttempts:  deps.RetryMaxAttempts,
		retryDelay:   deps.RetryInitialDelay,
		sleep:        sleepCtx,
		jobQueue:     make(chan uuid.UUID, jobQueueSize),
		concurrency:  deps.Concurrency,
		pollInterval: deps.PollInterval,
		stopChan:     make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.logger.Info("starting worker", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("stopping worker")
		close(w.stopChan)
	})
	w.wg.Wait()
	w.logger.Info("worker stopped")
}

// EnqueueJob implements Worker. Runs already queued or in progress are
// ignored.
func (w *worker) EnqueueJob(runID uuid.UUID) {
	if _, busy := w.inFlight.LoadOrStore(runID, struct{}{}); busy {
		return
	}

	select {
	case w.jobQueue <- runID:
		w.logger.Debug("job enqueued", zap.String("run_id", runID.String()))
	case <-w.stopChan:
		w.inFlight.Delete(runID)
		w.logger.Warn("worker stopped, cannot enqueue job", zap.String("run_id", runID.String()))
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case runID := <-w.jobQueue:
			log := w.logger.With(zap.Int("worker", workerID), zap.String("run_id", runID.String()))
			if err := w.process(ctx, runID); err != nil {
				log.Error("screening run failed", zap.Error(err))
			} else {
				log.Info("screening run finished")
			}
			w.inFlight.Delete(runID)
		}
	}
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, err := w.runs.FindPendingJobs(pendingBatch)
			if err != nil {
				w.logger.Warn("failed to fetch pending jobs", zap.Error(err))
				continue
			}
			for _, run := range pending {
				w.EnqueueJob(run.ID)
			}
		}
	}
}

// process screens one queued run and stores its results. Any failure is
// recorded on the run.
func (w *worker) process(ctx context.Context, runID uuid.UUID) error {
	run, err := w.runs.FindByID(runID)
	if err != nil {
		return err
	}
	if run.Status != models.StatusQueued {
		return nil
	}

	if err := w.runs.UpdateStatus(runID, models.StatusProcessing); err != nil {
		return err
	}

	if err := w.screen(ctx, run); err != nil {
		if uerr := w.runs.UpdateError(runID, err.Error()); uerr != nil {
			w.logger.Error("failed to record run error", zap.String("run_id", runID.String()), zap.Error(uerr))
		}
		return err
	}
	return nil
}

func (w *worker) screen(ctx context.Context, run *models.ScreeningRun) error {
	set, err := w.criteria.FindByID(run.CriteriaSetID)
	if err != nil {
		return err
	}

	docs, err := w.documents.FindByRunID(run.ID)
	if err != nil {
		return err
	}

	resumes := make([]ResumeFile, 0, len(docs))
	for i, doc := range docs {
		data, err := w.storage.ReadFile(doc.Filename)
		if err != nil {
			w.logger.Warn("stored resume unavailable", zap.String("file", doc.Filename), zap.Error(err))
		}
		resumes = append(resumes, ResumeFile{
			ID:       fmt.Sprintf("r%d", i+1),
			FileName: doc.OriginalFileName,
			Data:     data,
		})
	}

	report, err := w.analyze(ctx, AnalyzeInput{
		RunID:          run.ID,
		Criteria:       set.Doc.Criteria,
		JobDescription: run.JobDescription,
		HRNotes:        run.HRNotes,
		GitHubRequired: run.GitHubRequired,
		Resumes:        resumes,
	})
	if err != nil {
		return err
	}

	var artifact string
	if w.artifacts != nil {
		artifact, err = w.artifacts.SaveResults(report)
		if err != nil {
			w.logger.Warn("failed to write results artifact", zap.String("run_id", run.ID.String()), zap.Error(err))
		}
	}

	return w.runs.SaveResults(run.ID, report.Results(), artifact)
}

// analyze repeats Analyze on transient LLM failures.
func (w *worker) analyze(ctx context.Context, in AnalyzeInput) (*models.ScreeningReport, error) {
	delay := w.retryDelay
	for attempt := 1; ; attempt++ {
		report, err := w.screening.Analyze(ctx, in)
		if err == nil || attempt >= w.maxAttempts || !isTransient(err) {
			return report, err
		}

		w.logger.Warn("analysis failed, retrying",
			zap.String("run_id", in.RunID.String()),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := w.sleep(ctx, delay); err != nil {
			return nil, err
		}
		delay *= 2
	}
}
