package auth

import (
	"context"
	"errors"

	"github.com/rpattn/invtrack/internal/domain"
)

type contextKey string

const userKey contextKey = "user"

var (
	// ErrUnauthenticated is returned when no user is attached to the context.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when the authenticated role is insufficient.
	ErrForbidden = errors.New("admin role required")
)

// ContextWithUser returns a new context that carries the authenticated user.
func ContextWithUser(ctx context.Context, user domain.User) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext retrieves the authenticated user from the context, if any.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	if ctx == nil {
		return domain.User{}, false
	}
	value := ctx.Value(userKey)
	if value == nil {
		return domain.User{}, false
	}
	user, ok := value.(domain.User)
	if !ok {
		return domain.User{}, false
	}
	return user, true
}

// RequireUser returns the authenticated user or ErrUnauthenticated.
func RequireUser(ctx context.Context) (domain.User, error) {
	user, ok := UserFromContext(ctx)
	if !ok {
		return domain.User{}, ErrUnauthenticated
	}
	return user, nil
}

// RequireAdmin returns the authenticated user iff it holds the ADMIN role.
func RequireAdmin(ctx context.Context) (domain.User, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if !user.IsAdmin() {
		return domain.User{}, ErrForbidden
	}
	return user, nil
}
