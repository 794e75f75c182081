package domain

import (
	"time"

	"github.com/google/uuid"
)

// History actions recorded against an asset. Free text by contract, but the
// service layer only ever writes these.
const (
	HistoryActionCreation = "Creation"
	HistoryActionUpdate   = "Update"
	HistoryActionImport   = "CSV Import"
)

// HistoryEvent is one append-only audit entry on an asset. Events are never
// mutated or removed once written.
type HistoryEvent struct {
	ID      uuid.UUID `json:"id"`
	Date    time.Time `json:"date"`
	User    string    `json:"user"`
	Action  string    `json:"action"`
	Details string    `json:"details"`
}

// NewHistoryEvent creates a history entry stamped with the current time.
// An empty user is recorded as "System".
func NewHistoryEvent(user, action, details string) HistoryEvent {
	if user == "" {
		user = "System"
	}
	return HistoryEvent{
		ID:      uuid.New(),
		Date:    time.Now(),
		User:    user,
		Action:  action,
		Details: details,
	}
}
