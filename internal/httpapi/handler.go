// Package httpapi exposes the inventory system as a JSON API. Handlers pull
// the authenticated user from the request context (set by the auth middleware)
// and delegate role checks to the service layer wherever one exists, repeating
// them at the boundary only for operations the handlers run directly.
package httpapi

import (
	"go.uber.org/zap"

	"github.com/rpattn/invtrack/internal/ingestion"
	"github.com/rpattn/invtrack/internal/inventory"
	"github.com/rpattn/invtrack/internal/repository"
)

// Handler bundles the services and repositories the API routes need.
type Handler struct {
	inventory *inventory.Service
	ingestion *ingestion.Service
	assets    repository.AssetRepository
	settings  repository.SettingsRepository
	users     repository.UserRepository
	logs      repository.ImportLogRepository
	logger    *zap.Logger
}

// NewHandler creates the API handler set.
func NewHandler(
	inventorySvc *inventory.Service,
	ingestionSvc *ingestion.Service,
	assets repository.AssetRepository,
	settings repository.SettingsRepository,
	users repository.UserRepository,
	logs repository.ImportLogRepository,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		inventory: inventorySvc,
		ingestion: ingestionSvc,
		assets:    assets,
		settings:  settings,
		users:     users,
		logs:      logs,
		logger:    logger,
	}
}
