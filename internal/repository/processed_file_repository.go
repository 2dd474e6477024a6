package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rpattn/rentroll/internal/domain"
)

type processedFileRepository struct {
	pool *pgxpool.Pool
}

// NewProcessedFileRepository wires a repository backed by pgxpool.
func NewProcessedFileRepository(pool *pgxpool.Pool) ProcessedFileRepository {
	return &processedFileRepository{pool: pool}
}

func (r *processedFileRepository) Record(ctx context.Context, record domain.ProcessedFileRecord) error {
	if r.pool == nil {
		return fmt.Errorf("processed file repository not initialized")
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO processed_files (document_id, file_name, size_bytes, fingerprint, row_count, warning_count, cache_hit)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.DocumentID,
		record.FileName,
		record.SizeBytes,
		record.Fingerprint,
		record.RowCount,
		record.WarningCount,
		record.CacheHit,
	)
	if err != nil {
		return fmt.Errorf("failed to record processed file: %w", err)
	}

	return nil
}

func (r *processedFileRepository) List(ctx context.Context, limit int, offset int) ([]domain.ProcessedFileRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("processed file repository not initialized")
	}

	if limit <= 0 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, document_id, file_name, size_bytes, fingerprint, row_count, warning_count, cache_hit, created_at
		 FROM processed_files
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list processed files: %w", err)
	}
	defer rows.Close()

	records := []domain.ProcessedFileRecord{}
	for rows.Next() {
		var (
			record    domain.ProcessedFileRecord
			createdAt pgtype.Timestamptz
		)
		if scanErr := rows.Scan(
			&record.ID,
			&record.DocumentID,
			&record.FileName,
			&record.SizeBytes,
			&record.Fingerprint,
			&record.RowCount,
			&record.WarningCount,
			&record.CacheHit,
			&createdAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan processed file: %w", scanErr)
		}

		if createdAt.Valid {
			record.CreatedAt = createdAt.Time
		}

		records = append(records, record)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate processed files: %w", rowsErr)
	}

	return records, nil
}
