package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/rpattn/invtrack/internal/domain"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrVersionConflict is returned when an update carries a stale version.
	// The caller must re-read the record and retry with the current version.
	ErrVersionConflict = errors.New("version conflict")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already registered")
)

// AssetRepository defines the interface for inventory record operations.
type AssetRepository interface {
	Create(ctx context.Context, asset domain.Asset) (domain.Asset, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Asset, error)
	List(ctx context.Context) ([]domain.Asset, error)
	// Update persists the asset's properties iff the stored version matches
	// expectedVersion, bumping the version on success.
	Update(ctx context.Context, asset domain.Asset, expectedVersion int64) (domain.Asset, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// ReplaceAll wipes the record store and inserts the supplied assets with
	// their history in one transaction.
	ReplaceAll(ctx context.Context, assets []domain.Asset) (int, error)
	Count(ctx context.Context) (int64, error)

	// History is append-only; events are never mutated or removed.
	AppendHistory(ctx context.Context, assetID uuid.UUID, event domain.HistoryEvent) error
	ListHistory(ctx context.Context, assetID uuid.UUID) ([]domain.HistoryEvent, error)

	DeleteAll(ctx context.Context) error
}

// SettingsRepository stores the single schema registry document.
type SettingsRepository interface {
	Get(ctx context.Context) (domain.Settings, error)
	Save(ctx context.Context, settings domain.Settings) (domain.Settings, error)
	Delete(ctx context.Context) error
}

// UserRepository defines the interface for the user directory and sessions.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllExcept(ctx context.Context, email string) error

	CreateSession(ctx context.Context, token uuid.UUID, userID uuid.UUID) error
	GetSessionUser(ctx context.Context, token uuid.UUID) (domain.User, error)
	DeleteSessionsForUser(ctx context.Context, userID uuid.UUID) error
	DeleteAllSessions(ctx context.Context) error
}

// ImportLogRepository stores bulk-import row errors for observability.
type ImportLogRepository interface {
	Record(ctx context.Context, entry domain.ImportLogEntry) error
	List(ctx context.Context, limit, offset int) ([]domain.ImportLogEntry, error)
	DeleteAll(ctx context.Context) error
}
