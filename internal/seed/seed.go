// Package seed installs the baseline data the application assumes exists: the
// default schema registry document and the bootstrap administrator account.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpattn/invtrack/internal/domain"
	"github.com/rpattn/invtrack/internal/repository"
)

// Bootstrap administrator credentials. The account survives a system reset so
// an operator can always get back in.
const (
	AdminEmail    = "admin@devicetracker.io"
	AdminName     = "System Admin"
	AdminPassword = "admin"
)

// Ensure seeds the settings document and the administrator account when they
// are missing. It is safe to call on every startup.
func Ensure(ctx context.Context, settings repository.SettingsRepository, users repository.UserRepository) error {
	if _, err := settings.Get(ctx); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		if _, err := settings.Save(ctx, domain.DefaultSettings()); err != nil {
			return fmt.Errorf("failed to seed settings: %w", err)
		}
	}

	if _, err := users.GetByEmail(ctx, AdminEmail); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to look up admin user: %w", err)
		}
		admin := domain.NewUser(AdminEmail, AdminName, AdminPassword, domain.RoleAdmin)
		if _, err := users.Create(ctx, admin); err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}
	}

	return nil
}
