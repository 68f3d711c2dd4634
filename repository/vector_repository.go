package repository

import (
	"context"
	"fmt"
	"strings"

	"nyayamitra-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// VectorRepository stores statute vectors in Postgres with pgvector. It is
// the self-hosted alternative to the Pinecone client and serves the same
// upsert, query, stats and delete operations.
type VectorRepository struct {
	db        *pgxpool.Pool
	dimension int
}

// NewVectorRepository creates a new vector repository. dimension is the
// expected embedding width; mismatched vectors are rejected before they reach
// the database.
func NewVectorRepository(db *pgxpool.Pool, dimension int) *VectorRepository {
	return &VectorRepository{db: db, dimension: dimension}
}

// formatVector formats an embedding vector as a pgvector literal for pgx
func formatVector(embedding []float32) string {
	if len(embedding) == 0 {
		return "[]"
	}
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = fmt.Sprintf("%.6f", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Upsert writes the records inside a single transaction so a failed batch
// leaves no partial state.
func (r *VectorRepository) Upsert(ctx context.Context, records []models.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	for _, rec := range records {
		if r.dimension > 0 && len(rec.Values) != r.dimension {
			return fmt.Errorf("vector %s has %d dimensions, want %d", rec.ID, len(rec.Values), r.dimension)
		}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin upsert transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO statute_vectors (id, metadata, embedding)
		VALUES ($1, $2, $3::vector)
		ON CONFLICT (id) DO UPDATE SET
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding`

	for _, rec := range records {
		if _, err := tx.Exec(ctx, query, rec.ID, rec.Metadata, formatVector(rec.Values)); err != nil {
			return fmt.Errorf("failed to upsert vector %s: %w", rec.ID, err)
		}
	}

	return tx.Commit(ctx)
}

// Query returns the topK nearest records by cosine distance, best first.
// Scores are 1 - distance so that higher means closer, matching Pinecone.
func (r *VectorRepository) Query(ctx context.Context, vector []float32, topK int, includeMetadata bool) ([]models.VectorMatch, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("query vector must not be empty")
	}
	if topK <= 0 {
		topK = 10
	}

	vectorStr := formatVector(vector)

	query := `
		SELECT id, 1 - (embedding <=> $1::vector) AS score
		FROM statute_vectors
		ORDER BY embedding <=> $1::vector
		LIMIT $2`
	if includeMetadata {
		query = `
		SELECT id, metadata, 1 - (embedding <=> $1::vector) AS score
		FROM statute_vectors
		ORDER BY embedding <=> $1::vector
		LIMIT $2`
	}

	rows, err := r.db.Query(ctx, query, vectorStr, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query statute vectors: %w", err)
	}
	defer rows.Close()

	var matches []models.VectorMatch
	for rows.Next() {
		var match models.VectorMatch
		if includeMetadata {
			err = rows.Scan(&match.ID, &match.Metadata, &match.Score)
		} else {
			err = rows.Scan(&match.ID, &match.Score)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to scan statute vector: %w", err)
		}
		matches = append(matches, match)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statute vectors: %w", err)
	}

	return matches, nil
}

// DescribeStats reports the stored vector count and the configured dimension.
func (r *VectorRepository) DescribeStats(ctx context.Context) (*models.IndexStats, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM statute_vectors`).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count statute vectors: %w", err)
	}
	return &models.IndexStats{
		TotalRecordCount: count,
		Dimension:        r.dimension,
		Namespaces:       map[string]int64{"": count},
	}, nil
}

// DeleteAll removes every stored vector.
func (r *VectorRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM statute_vectors`); err != nil {
		return fmt.Errorf("failed to delete statute vectors: %w", err)
	}
	return nil
}
