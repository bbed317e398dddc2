package models

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	StatusQueued     RunStatus = "queued"
	StatusProcessing RunStatus = "processing"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
)

// AnalysisRun ties one job description to a batch of uploaded documents
// and, once the worker has processed it, to their results.
type AnalysisRun struct {
	ID             uuid.UUID
	JobTitle       string
	JobDescription string
	Documents      []RawDocument
	Status         RunStatus
	Results        []AnalysisResult
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type AnalyzeResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Documents int    `json:"documents"`
}

type ResultResponse struct {
	ID           string           `json:"id"`
	Status       string           `json:"status"`
	JobTitle     string           `json:"job_title"`
	Results      []AnalysisResult `json:"results,omitempty"`
	Ranked       []AnalysisResult `json:"ranked,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
}
