package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rpattn/invtrack/internal/domain"
)

// settingsRepository stores the schema registry as a single JSONB row.
type settingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(pool *pgxpool.Pool) SettingsRepository {
	return &settingsRepository{pool: pool}
}

// The settings table holds at most one row, keyed by a fixed id.
const settingsRowID = 1

func (r *settingsRepository) Get(ctx context.Context) (domain.Settings, error) {
	var fieldsJSON, statusJSON json.RawMessage
	err := r.pool.QueryRow(ctx, `
		SELECT fields, status_options FROM settings WHERE id = $1
	`, settingsRowID).Scan(&fieldsJSON, &statusJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Settings{}, ErrNotFound
		}
		return domain.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return domain.SettingsFromJSONB(fieldsJSON, statusJSON)
}

func (r *settingsRepository) Save(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	fieldsJSON, err := settings.GetFieldsAsJSONB()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("failed to marshal fields: %w", err)
	}
	statusJSON, err := settings.GetStatusOptionsAsJSONB()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("failed to marshal status options: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO settings (id, fields, status_options, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE
		SET fields = EXCLUDED.fields,
		    status_options = EXCLUDED.status_options,
		    updated_at = now()
	`, settingsRowID, fieldsJSON, statusJSON)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}
	return settings, nil
}

func (r *settingsRepository) Delete(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM settings WHERE id = $1`, settingsRowID); err != nil {
		return fmt.Errorf("failed to delete settings: %w", err)
	}
	return nil
}
