package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the binary access level for the inventory API.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleTeamMember Role = "TEAM_MEMBER"
)

// ValidRole reports whether r is a recognised role.
func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleTeamMember
}

// TeamEditableFields is the fixed allow-list of record keys a TEAM_MEMBER may
// write. Everything else is admin-only.
var TeamEditableFields = map[string]struct{}{
	"status":       {},
	"currentOwner": {},
	"comments":     {},
	"location":     {},
}

// TeamMemberMayEdit reports whether a team member may write the given field id.
func TeamMemberMayEdit(fieldID string) bool {
	_, ok := TeamEditableFields[fieldID]
	return ok
}

// User represents a directory entry. Email is stored lower-cased; uniqueness
// is checked at registration time only. Passwords are stored as supplied
// (hardening is an explicit non-goal of this system).
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUser creates a user with a normalised email and a defaulted role.
func NewUser(email, name, password string, role Role) User {
	if !ValidRole(role) {
		role = RoleTeamMember
	}
	return User{
		ID:        uuid.New(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Name:      strings.TrimSpace(name),
		Role:      role,
		Password:  password,
		CreatedAt: time.Now(),
	}
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Sanitized returns a copy safe for API responses, with the password cleared.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}
