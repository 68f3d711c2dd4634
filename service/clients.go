package service

import (
	"context"

	"github.com/google/uuid"

	"nyayamitra-backend/models"
)

// VectorIndex is the vector database surface the services depend on. Both
// the Pinecone client and the pgvector-backed repository satisfy it.
type VectorIndex interface {
	Upsert(ctx context.Context, records []models.VectorRecord) error
	Query(ctx context.Context, vector []float32, topK int, includeMetadata bool) ([]models.VectorMatch, error)
	DescribeStats(ctx context.Context) (*models.IndexStats, error)
	DeleteAll(ctx context.Context) error
}

// CorpusLoader yields the sections to index plus non-fatal load warnings.
type CorpusLoader interface {
	Load(ctx context.Context) ([]models.LegalSection, []string, error)
}

// RunJournal records ingestion runs and serializes them across processes.
// It is optional; without a database the in-process lock still applies.
type RunJournal interface {
	Create(ctx context.Context, run *models.IngestRun) error
	Complete(ctx context.Context, id uuid.UUID, report *models.IngestReport) error
	Fail(ctx context.Context, id uuid.UUID, errorMessage string) error
	AcquireLock(ctx context.Context) (release func(), ok bool, err error)
}
