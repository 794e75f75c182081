package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/rpattn/invtrack/internal/auth"
	"github.com/rpattn/invtrack/internal/domain"
	"github.com/rpattn/invtrack/internal/seed"
)

// ResetSystem handles POST /api/system/reset. It wipes records, history,
// import logs, sessions, and every account except the bootstrap
// administrator, then reinstalls the default schema. ADMIN only.
func (h *Handler) ResetSystem(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.RequireAdmin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()

	if err := h.assets.DeleteAll(ctx); err != nil {
		writeError(w, err)
		return
	}
	if err := h.logs.DeleteAll(ctx); err != nil {
		writeError(w, err)
		return
	}
	if err := h.users.DeleteAllSessions(ctx); err != nil {
		writeError(w, err)
		return
	}
	if err := h.users.DeleteAllExcept(ctx, seed.AdminEmail); err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.settings.Save(ctx, domain.DefaultSettings()); err != nil {
		writeError(w, err)
		return
	}
	// Recreates the admin account if it was somehow missing.
	if err := seed.Ensure(ctx, h.settings, h.users); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Warn("system reset", zap.String("actor", actor.Email))
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "system reset to factory defaults",
	})
}
