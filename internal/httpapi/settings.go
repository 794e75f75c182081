package httpapi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rpattn/invtrack/internal/auth"
	"github.com/rpattn/invtrack/internal/domain"
	"github.com/rpattn/invtrack/internal/schema"
)

// GetSettings handles GET /api/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireUser(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// ReplaceSettings handles POST /api/settings: validate and install a whole
// replacement document. ADMIN only.
func (h *Handler) ReplaceSettings(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireAdmin(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	var settings domain.Settings
	if err := decodeBody(r, &settings); err != nil {
		writeError(w, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if err := schema.ValidateSettings(settings); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	saved, err := h.settings.Save(r.Context(), settings)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// AddField handles POST /api/settings/fields. ADMIN only.
func (h *Handler) AddField(w http.ResponseWriter, r *http.Request) {
	h.mutateSettings(w, r, func(settings domain.Settings) (domain.Settings, error) {
		var field domain.FieldDefinition
		if err := decodeBody(r, &field); err != nil {
			return settings, fmt.Errorf("invalid request body: %w", err)
		}
		return schema.AddField(settings, field)
	})
}

// UpdateField handles PUT /api/settings/fields/{id}. ADMIN only.
func (h *Handler) UpdateField(w http.ResponseWriter, r *http.Request) {
	h.mutateSettings(w, r, func(settings domain.Settings) (domain.Settings, error) {
		var field domain.FieldDefinition
		if err := decodeBody(r, &field); err != nil {
			return settings, fmt.Errorf("invalid request body: %w", err)
		}
		field.ID = chi.URLParam(r, "id")
		return schema.UpdateField(settings, field)
	})
}

// RemoveField handles DELETE /api/settings/fields/{id}. ADMIN only.
func (h *Handler) RemoveField(w http.ResponseWriter, r *http.Request) {
	h.mutateSettings(w, r, func(settings domain.Settings) (domain.Settings, error) {
		return schema.RemoveField(settings, chi.URLParam(r, "id"))
	})
}

// MoveField handles POST /api/settings/fields/{id}/move with body
// {"direction": "up" | "down"}. ADMIN only.
func (h *Handler) MoveField(w http.ResponseWriter, r *http.Request) {
	h.mutateSettings(w, r, func(settings domain.Settings) (domain.Settings, error) {
		var req struct {
			Direction string `json:"direction"`
		}
		if err := decodeBody(r, &req); err != nil {
			return settings, fmt.Errorf("invalid request body: %w", err)
		}
		direction := 0
		switch req.Direction {
		case "up":
			direction = -1
		case "down":
			direction = 1
		default:
			return settings, fmt.Errorf("invalid move direction %q", req.Direction)
		}
		return schema.MoveField(settings, chi.URLParam(r, "id"), direction)
	})
}

// AddStatusOption handles POST /api/settings/status-options. ADMIN only.
func (h *Handler) AddStatusOption(w http.ResponseWriter, r *http.Request) {
	h.mutateSettings(w, r, func(settings domain.Settings) (domain.Settings, error) {
		var req struct {
			Option string `json:"option"`
		}
		if err := decodeBody(r, &req); err != nil {
			return settings, fmt.Errorf("invalid request body: %w", err)
		}
		return schema.AddStatusOption(settings, req.Option)
	})
}

// RemoveStatusOption handles DELETE /api/settings/status-options/{option}.
// ADMIN only.
func (h *Handler) RemoveStatusOption(w http.ResponseWriter, r *http.Request) {
	h.mutateSettings(w, r, func(settings domain.Settings) (domain.Settings, error) {
		return schema.RemoveStatusOption(settings, chi.URLParam(r, "option"))
	})
}

// mutateSettings runs a read-modify-write cycle on the settings document. The
// mutation sees the current document and returns the replacement.
func (h *Handler) mutateSettings(w http.ResponseWriter, r *http.Request, mutate func(domain.Settings) (domain.Settings, error)) {
	if _, err := auth.RequireAdmin(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	settings, err := h.settings.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	// Mutations only fail on malformed input or schema rules, so every
	// mutate error is the client's fault.
	next, err := mutate(settings)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	saved, err := h.settings.Save(r.Context(), next)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
