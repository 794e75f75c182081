package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rpattn/invtrack/internal/domain"
)

// importLogRepository implements ImportLogRepository over Postgres.
type importLogRepository struct {
	pool *pgxpool.Pool
}

// NewImportLogRepository creates a new import log repository.
func NewImportLogRepository(pool *pgxpool.Pool) ImportLogRepository {
	return &importLogRepository{pool: pool}
}

func (r *importLogRepository) Record(ctx context.Context, entry domain.ImportLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO import_logs (id, file_name, row_number, error_message, created_at)
		VALUES ($1, $2, $3, $4, now())
	`, entry.ID, entry.FileName, entry.RowNumber, entry.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to record import log: %w", err)
	}
	return nil
}

func (r *importLogRepository) List(ctx context.Context, limit, offset int) ([]domain.ImportLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, file_name, row_number, error_message, created_at
		FROM import_logs ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list import logs: %w", err)
	}
	defer rows.Close()

	var entries []domain.ImportLogEntry
	for rows.Next() {
		var entry domain.ImportLogEntry
		if err := rows.Scan(&entry.ID, &entry.FileName, &entry.RowNumber, &entry.ErrorMessage, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import log: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *importLogRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM import_logs`); err != nil {
		return fmt.Errorf("failed to clear import logs: %w", err)
	}
	return nil
}
