package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rpattn/invtrack/internal/domain"
)

// assetRepository implements AssetRepository over Postgres JSONB documents.
type assetRepository struct {
	pool *pgxpool.Pool
}

// NewAssetRepository creates a new asset repository.
func NewAssetRepository(pool *pgxpool.Pool) AssetRepository {
	return &assetRepository{pool: pool}
}

func (r *assetRepository) Create(ctx context.Context, asset domain.Asset) (domain.Asset, error) {
	propertiesJSON, err := asset.GetPropertiesAsJSONB()
	if err != nil {
		return domain.Asset{}, fmt.Errorf("failed to marshal properties: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO assets (id, properties, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, properties, version, created_at, updated_at
	`, asset.ID, propertiesJSON, asset.Version, asset.CreatedAt, asset.UpdatedAt)

	created, err := scanAsset(row)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("failed to create asset: %w", err)
	}

	for _, event := range asset.HistoryLog {
		if err := r.AppendHistory(ctx, created.ID, event); err != nil {
			return domain.Asset{}, err
		}
	}
	created.HistoryLog = asset.HistoryLog
	return created, nil
}

func (r *assetRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Asset, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, properties, version, created_at, updated_at
		FROM assets WHERE id = $1
	`, id)

	asset, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Asset{}, ErrNotFound
		}
		return domain.Asset{}, fmt.Errorf("failed to get asset: %w", err)
	}

	history, err := r.ListHistory(ctx, id)
	if err != nil {
		return domain.Asset{}, err
	}
	asset.HistoryLog = history
	return asset, nil
}

func (r *assetRepository) List(ctx context.Context) ([]domain.Asset, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, properties, version, created_at, updated_at
		FROM assets ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []domain.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assets: %w", err)
	}

	if err := r.attachHistory(ctx, assets); err != nil {
		return nil, err
	}
	return assets, nil
}

func (r *assetRepository) Update(ctx context.Context, asset domain.Asset, expectedVersion int64) (domain.Asset, error) {
	propertiesJSON, err := asset.GetPropertiesAsJSONB()
	if err != nil {
		return domain.Asset{}, fmt.Errorf("failed to marshal properties: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE assets
		SET properties = $2, version = version + 1, updated_at = $3
		WHERE id = $1 AND version = $4
		RETURNING id, properties, version, created_at, updated_at
	`, asset.ID, propertiesJSON, time.Now(), expectedVersion)

	updated, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish a missing row from a stale version.
			var exists bool
			checkErr := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM assets WHERE id = $1)`, asset.ID).Scan(&exists)
			if checkErr != nil {
				return domain.Asset{}, fmt.Errorf("failed to check asset existence: %w", checkErr)
			}
			if !exists {
				return domain.Asset{}, ErrNotFound
			}
			return domain.Asset{}, ErrVersionConflict
		}
		return domain.Asset{}, fmt.Errorf("failed to update asset: %w", err)
	}

	history, err := r.ListHistory(ctx, updated.ID)
	if err != nil {
		return domain.Asset{}, err
	}
	updated.HistoryLog = history
	return updated, nil
}

func (r *assetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *assetRepository) ReplaceAll(ctx context.Context, assets []domain.Asset) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM asset_history`); err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM assets`); err != nil {
		return 0, fmt.Errorf("failed to clear assets: %w", err)
	}

	count := 0
	for _, asset := range assets {
		propertiesJSON, err := asset.GetPropertiesAsJSONB()
		if err != nil {
			return 0, fmt.Errorf("failed to marshal properties: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO assets (id, properties, version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`, asset.ID, propertiesJSON, asset.Version, asset.CreatedAt, asset.UpdatedAt); err != nil {
			return 0, fmt.Errorf("failed to insert asset: %w", err)
		}
		for _, event := range asset.HistoryLog {
			if _, err := tx.Exec(ctx, `
				INSERT INTO asset_history (id, asset_id, event_date, user_name, action, details)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, event.ID, asset.ID, event.Date, event.User, event.Action, event.Details); err != nil {
				return 0, fmt.Errorf("failed to insert history: %w", err)
			}
		}
		count++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit replace: %w", err)
	}
	return count, nil
}

func (r *assetRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM assets`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count assets: %w", err)
	}
	return count, nil
}

func (r *assetRepository) AppendHistory(ctx context.Context, assetID uuid.UUID, event domain.HistoryEvent) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO asset_history (id, asset_id, event_date, user_name, action, details)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, event.ID, assetID, event.Date, event.User, event.Action, event.Details)
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

func (r *assetRepository) ListHistory(ctx context.Context, assetID uuid.UUID) ([]domain.HistoryEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, event_date, user_name, action, details
		FROM asset_history WHERE asset_id = $1 ORDER BY event_date ASC, id ASC
	`, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var events []domain.HistoryEvent
	for rows.Next() {
		var event domain.HistoryEvent
		if err := rows.Scan(&event.ID, &event.Date, &event.User, &event.Action, &event.Details); err != nil {
			return nil, fmt.Errorf("failed to scan history event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *assetRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM asset_history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	if _, err := r.pool.Exec(ctx, `DELETE FROM assets`); err != nil {
		return fmt.Errorf("failed to clear assets: %w", err)
	}
	return nil
}

// attachHistory loads history for a listed asset set in one query.
func (r *assetRepository) attachHistory(ctx context.Context, assets []domain.Asset) error {
	if len(assets) == 0 {
		return nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT asset_id, id, event_date, user_name, action, details
		FROM asset_history ORDER BY event_date ASC, id ASC
	`)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	byAsset := make(map[uuid.UUID][]domain.HistoryEvent)
	for rows.Next() {
		var assetID uuid.UUID
		var event domain.HistoryEvent
		if err := rows.Scan(&assetID, &event.ID, &event.Date, &event.User, &event.Action, &event.Details); err != nil {
			return fmt.Errorf("failed to scan history event: %w", err)
		}
		byAsset[assetID] = append(byAsset[assetID], event)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate history: %w", err)
	}

	for i := range assets {
		assets[i].HistoryLog = byAsset[assets[i].ID]
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (domain.Asset, error) {
	var asset domain.Asset
	var propertiesJSON json.RawMessage
	if err := row.Scan(&asset.ID, &propertiesJSON, &asset.Version, &asset.CreatedAt, &asset.UpdatedAt); err != nil {
		return domain.Asset{}, err
	}
	properties, err := domain.FromJSONBProperties(propertiesJSON)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("failed to decode properties: %w", err)
	}
	asset.Properties = properties
	return asset, nil
}
