package repository

import (
	"context"
	"fmt"
	"time"

	"nyayamitra-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ingestAdvisoryLockID identifies the cross-process ingestion lock.
const ingestAdvisoryLockID = 110001

// IngestRunRepository handles database operations for ingestion run records
type IngestRunRepository struct {
	db *pgxpool.Pool
}

// NewIngestRunRepository creates a new ingest run repository
func NewIngestRunRepository(db *pgxpool.Pool) *IngestRunRepository {
	return &IngestRunRepository{db: db}
}

// Create records the start of an ingestion run
func (r *IngestRunRepository) Create(ctx context.Context, run *models.IngestRun) error {
	query := `
		INSERT INTO ingest_runs (
			id, status, clear_existing
		) VALUES ($1, $2, $3)
		RETURNING started_at`

	return r.db.QueryRow(
		ctx, query,
		run.ID,
		run.Status,
		run.ClearExisting,
	).Scan(&run.StartedAt)
}

// Complete marks an ingestion run as completed and stores its totals
func (r *IngestRunRepository) Complete(ctx context.Context, id uuid.UUID, report *models.IngestReport) error {
	now := time.Now()
	query := `
		UPDATE ingest_runs SET
			status = $2,
			total_documents = $3,
			total_chunks = $4,
			total_indexed = $5,
			vector_count = $6,
			error_count = $7,
			finished_at = $8
		WHERE id = $1`

	_, err := r.db.Exec(
		ctx, query, id,
		models.IngestRunStatusCompleted,
		report.TotalDocuments,
		report.TotalChunks,
		report.TotalIndexed,
		report.VectorCount,
		len(report.Errors),
		now,
	)
	return err
}

// Fail marks an ingestion run as failed
func (r *IngestRunRepository) Fail(ctx context.Context, id uuid.UUID, errorMessage string) error {
	query := `
		UPDATE ingest_runs SET
			status = $2,
			error_message = $3,
			finished_at = $4
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, models.IngestRunStatusFailed, errorMessage, time.Now())
	return err
}

// GetByID retrieves a single ingestion run
func (r *IngestRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.IngestRun, error) {
	run := &models.IngestRun{}
	query := `
		SELECT id, status, clear_existing, total_documents, total_chunks,
			total_indexed, vector_count, error_count, error_message,
			started_at, finished_at
		FROM ingest_runs
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&run.ID,
		&run.Status,
		&run.ClearExisting,
		&run.TotalDocuments,
		&run.TotalChunks,
		&run.TotalIndexed,
		&run.VectorCount,
		&run.ErrorCount,
		&run.ErrorMessage,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// Latest retrieves the most recent ingestion runs, newest first
func (r *IngestRunRepository) Latest(ctx context.Context, limit int) ([]models.IngestRun, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, status, clear_existing, total_documents, total_chunks,
			total_indexed, vector_count, error_count, error_message,
			started_at, finished_at
		FROM ingest_runs
		ORDER BY started_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ingest runs: %w", err)
	}
	defer rows.Close()

	var runs []models.IngestRun
	for rows.Next() {
		var run models.IngestRun
		err := rows.Scan(
			&run.ID,
			&run.Status,
			&run.ClearExisting,
			&run.TotalDocuments,
			&run.TotalChunks,
			&run.TotalIndexed,
			&run.VectorCount,
			&run.ErrorCount,
			&run.ErrorMessage,
			&run.StartedAt,
			&run.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ingest run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ingest runs: %w", err)
	}

	return runs, nil
}

// AcquireLock takes the cross-process ingestion advisory lock. It returns
// ok=false without error when another process holds the lock. The release
// function must be called once the run finishes.
func (r *IngestRunRepository) AcquireLock(ctx context.Context) (func(), bool, error) {
	// The lock is session-scoped, so the connection must stay out of the
	// pool until release.
	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire connection for lock: %w", err)
	}

	var locked bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, ingestAdvisoryLockID).Scan(&locked); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("failed to take advisory lock: %w", err)
	}
	if !locked {
		conn.Release()
		return nil, false, nil
	}

	release := func() {
		// Unlock on a background context so release still works after the
		// run's context is cancelled.
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, ingestAdvisoryLockID)
		conn.Release()
	}
	return release, true, nil
}
