package models

import (
	"time"

	"github.com/google/uuid"
)

// Ingest run status constants
const (
	IngestRunStatusRunning   = "running"
	IngestRunStatusCompleted = "completed"
	IngestRunStatusFailed    = "failed"
)

// IngestRun is the journal row written for each ingestion run.
type IngestRun struct {
	ID             uuid.UUID  `json:"id"`
	Status         string     `json:"status"`
	ClearExisting  bool       `json:"clear_existing"`
	TotalDocuments int        `json:"total_documents"`
	TotalChunks    int        `json:"total_chunks"`
	TotalIndexed   int        `json:"total_indexed"`
	VectorCount    int64      `json:"vector_count"`
	ErrorCount     int        `json:"error_count"`
	ErrorMessage   *string    `json:"error_message,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
}
