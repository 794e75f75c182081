package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rpattn/invtrack/internal/auth"
	"github.com/rpattn/invtrack/internal/domain"
)

// SessionResolver looks up the user owning a session token.
type SessionResolver interface {
	GetSessionUser(ctx context.Context, token uuid.UUID) (domain.User, error)
}

// AuthContext resolves the Authorization bearer token to a user and stores it
// in the request context. Requests without a valid token pass through
// unauthenticated; handlers decide what requires a user.
func AuthContext(sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if token, ok := bearerToken(header); ok {
				if user, err := sessions.GetSessionUser(r.Context(), token); err == nil {
					r = r.WithContext(auth.ContextWithUser(r.Context(), user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) (uuid.UUID, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return uuid.Nil, false
	}
	token, err := uuid.Parse(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return uuid.Nil, false
	}
	return token, true
}
