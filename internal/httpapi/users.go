package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rpattn/invtrack/internal/auth"
	"github.com/rpattn/invtrack/internal/domain"
)

// ListUsers handles GET /api/users. ADMIN only.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireAdmin(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	sanitized := make([]domain.User, len(users))
	for i, user := range users {
		sanitized[i] = user.Sanitized()
	}
	writeJSON(w, http.StatusOK, sanitized)
}

type registerRequest struct {
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// RegisterUser handles POST /api/users/register. Registration is open; an
// unrecognised role falls back to TEAM_MEMBER.
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email and password are required"})
		return
	}

	user, err := h.users.Create(r.Context(), domain.NewUser(req.Email, req.Name, req.Password, req.Role))
	if err != nil {
		writeError(w, err)
		return
	}
	h.logger.Info("user registered", zap.String("email", user.Email), zap.String("role", string(user.Role)))
	writeJSON(w, http.StatusCreated, user.Sanitized())
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Login handles POST /api/users/login. A successful login issues a fresh
// session token; failures are indistinguishable between unknown email and
// wrong password.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil || user.Password != req.Password {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
		return
	}

	token := uuid.New()
	if err := h.users.CreateSession(r.Context(), token, user.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token.String(), User: user.Sanitized()})
}

// DeleteUser handles DELETE /api/users/{id}. ADMIN only; self-deletion is
// rejected so the directory always keeps at least one administrator.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.RequireAdmin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
		return
	}
	if id == actor.ID {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cannot delete your own account"})
		return
	}

	if err := h.users.DeleteSessionsForUser(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}
