package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cvscreener/internal/models"
	"cvscreener/internal/repositories"
)

func waitForStatus(t *testing.T, repo repositories.RunRepository, id uuid.UUID, want models.RunStatus) *models.AnalysisRun {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		run, err := repo.FindByID(id)
		if err == nil && run.Status == want {
			return run
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("run %s never reached status %s", id, want)
	return nil
}

func TestWorkerProcessesQueuedRun(t *testing.T) {
	repo := repositories.NewMemoryRunRepository()
	oracle := &scriptedOracle{scores: defaultScores()}
	analyzer := newAnalyzer(oracle)

	w := NewWorker(repo, analyzer, 2, zap.NewNop())
	w.Start(context.Background())
	defer w.Stop()

	run := &models.AnalysisRun{
		ID:             uuid.New(),
		JobTitle:       "Backend Engineer",
		JobDescription: "Go experience required",
		Documents: []models.RawDocument{
			txtDoc("a.txt", "Experience\nBuilt Go services."),
			txtDoc("b.txt", "Skills\nGo, SQL."),
		},
		Status: models.StatusQueued,
	}

	if err := repo.Create(run); err != nil {
		t.Fatalf("create run: %v", err)
	}
	w.EnqueueRun(run.ID)

	stored := waitForStatus(t, repo, run.ID, models.StatusCompleted)
	if len(stored.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(stored.Results))
	}
	if stored.Results[0].FileName != "a.txt" || stored.Results[1].FileName != "b.txt" {
		t.Fatalf("results out of input order: %+v", stored.Results)
	}
}

func TestWorkerRecordsBatchFailure(t *testing.T) {
	repo := repositories.NewMemoryRunRepository()
	oracle := &scriptedOracle{err: &OracleError{Kind: OracleUnauthorized, Err: context.DeadlineExceeded}}
	analyzer := newAnalyzer(oracle)

	w := NewWorker(repo, analyzer, 1, zap.NewNop())
	w.Start(context.Background())
	defer w.Stop()

	run := &models.AnalysisRun{
		ID:             uuid.New(),
		JobDescription: "Go",
		Documents:      []models.RawDocument{txtDoc("a.txt", "Experience\nwork")},
		Status:         models.StatusQueued,
	}

	if err := repo.Create(run); err != nil {
		t.Fatalf("create run: %v", err)
	}
	w.EnqueueRun(run.ID)

	stored := waitForStatus(t, repo, run.ID, models.StatusFailed)
	if stored.ErrorMessage == "" {
		t.Fatal("expected a recorded error message")
	}
}
