package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cvscreener/internal/models"
	"cvscreener/internal/repositories"
)

// Worker drains queued analysis runs and drives the analyzer. Each run
// is one unit of work; document-level parallelism happens inside the
// analyzer.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueRun(runID uuid.UUID)
}

type worker struct {
	runRepo     repositories.RunRepository
	analyzer    AnalyzerService
	jobQueue    chan uuid.UUID
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
	stopOnce    sync.Once
	logger      *zap.Logger
}

func NewWorker(
	runRepo repositories.RunRepository,
	analyzer AnalyzerService,
	concurrency int,
	logger *zap.Logger,
) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &worker{
		runRepo:     runRepo,
		analyzer:    analyzer,
		jobQueue:    make(chan uuid.UUID, 100),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
		logger:      logger,
	}
}

func (w *worker) Start(ctx context.Context) {
	w.logger.Info("starting worker pool", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processRuns(ctx, i+1)
	}
}

func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
	})
	w.wg.Wait()
	w.logger.Info("worker pool stopped")
}

func (w *worker) EnqueueRun(runID uuid.UUID) {
	select {
	case w.jobQueue <- runID:
		w.logger.Info("run enqueued", zap.String("run_id", runID.String()))
	case <-w.stopChan:
		w.logger.Warn("worker stopped, run not enqueued", zap.String("run_id", runID.String()))
	}
}

func (w *worker) processRuns(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case runID := <-w.jobQueue:
			if err := w.process(ctx, runID); err != nil {
				w.logger.Error("run failed",
					zap.Int("worker", workerID),
					zap.String("run_id", runID.String()),
					zap.Error(err),
				)
			}
		}
	}
}

func (w *worker) process(ctx context.Context, runID uuid.UUID) error {
	if err := w.runRepo.UpdateStatus(runID, models.StatusProcessing); err != nil {
		return err
	}

	run, err := w.runRepo.FindByID(runID)
	if err != nil {
		return err
	}

	w.logger.Info("processing run",
		zap.String("run_id", runID.String()),
		zap.String("job_title", run.JobTitle),
		zap.Int("documents", len(run.Documents)),
	)

	results, err := w.analyzer.Run(ctx, run.JobDescription, run.Documents)
	if err != nil {
		if updateErr := w.runRepo.UpdateError(runID, err.Error()); updateErr != nil {
			w.logger.Error("failed to record run error", zap.Error(updateErr))
		}
		return err
	}

	return w.runRepo.UpdateResults(runID, results)
}
