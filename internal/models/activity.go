package models

import "time"

// Activity represents an admin action recorded for the audit trail.
type Activity struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g., "event.approve", "user.toggle-status"
	Level     string    `json:"level"` // e.g., "info", "warn"
	Message   string    `json:"message"`
	ActorID   *string   `json:"actorId,omitempty"` // Nullable for system entries
	CreatedAt time.Time `json:"createdAt"`
}
