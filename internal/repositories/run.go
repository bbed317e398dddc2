package repositories

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"cvscreener/internal/models"
)

// RunRepository is the persistence collaborator of the pipeline: it
// holds queued batch inputs and completed results keyed by run ID. The
// pipeline itself assigns no identifiers.
type RunRepository interface {
	Create(run *models.AnalysisRun) error
	FindByID(id uuid.UUID) (*models.AnalysisRun, error)
	UpdateStatus(id uuid.UUID, status models.RunStatus) error
	UpdateResults(id uuid.UUID, results []models.AnalysisResult) error
	UpdateError(id uuid.UUID, errorMsg string) error
}

type memoryRunRepository struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]*models.AnalysisRun
}

func NewMemoryRunRepository() RunRepository {
	return &memoryRunRepository{
		runs: make(map[uuid.UUID]*models.AnalysisRun),
	}
}

func (r *memoryRunRepository) Create(run *models.AnalysisRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.runs[run.ID]; exists {
		return fmt.Errorf("run %s already exists", run.ID)
	}

	stored := *run
	r.runs[run.ID] = &stored
	return nil
}

func (r *memoryRunRepository) FindByID(id uuid.UUID) (*models.AnalysisRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return nil, fmt.Errorf("run not found")
	}

	copied := *run
	return &copied, nil
}

func (r *memoryRunRepository) UpdateStatus(id uuid.UUID, status models.RunStatus) error {
	return r.update(id, func(run *models.AnalysisRun) {
		run.Status = status
	})
}

func (r *memoryRunRepository) UpdateResults(id uuid.UUID, results []models.AnalysisResult) error {
	return r.update(id, func(run *models.AnalysisRun) {
		run.Status = models.StatusCompleted
		run.Results = results
		// Inputs are no longer needed once results exist; drop the bytes.
		run.Documents = nil
	})
}

func (r *memoryRunRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	return r.update(id, func(run *models.AnalysisRun) {
		run.Status = models.StatusFailed
		run.ErrorMessage = errorMsg
		run.Documents = nil
	})
}

func (r *memoryRunRepository) update(id uuid.UUID, apply func(*models.AnalysisRun)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[id]
	if !ok {
		return fmt.Errorf("run not found")
	}

	apply(run)
	run.UpdatedAt = time.Now()
	return nil
}
