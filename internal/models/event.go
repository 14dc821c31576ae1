package models

import "time"

// Event statuses.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusCancelled = "cancelled"
)

// Categories an event can belong to.
var Categories = []string{"Academic", "Cultural", "Sports", "Technical", "Workshop", "Seminar", "Other"}

// Event represents a campus event.
type Event struct {
	ID                     string     `json:"id"`
	Title                  string     `json:"title"`
	Description            string     `json:"description"`
	Category               string     `json:"category"`
	Date                   time.Time  `json:"date"`
	StartTime              string     `json:"startTime"`
	EndTime                string     `json:"endTime"`
	Venue                  string     `json:"venue"`
	OrganizerID            string     `json:"organizer"`
	OrganizerName          string     `json:"organizerName,omitempty"`
	MaxParticipants        *int       `json:"maxParticipants"`
	RegisteredParticipants []string   `json:"registeredParticipants"`
	RegistrationDeadline   *time.Time `json:"registrationDeadline"`
	IsRegistrationRequired bool       `json:"isRegistrationRequired"`
	IsFree                 bool       `json:"isFree"`
	Fee                    int        `json:"fee"`
	Status                 string     `json:"status"`
	IsFeatured             bool       `json:"isFeatured"`
	IsApproved             bool       `json:"isApproved"`
	ApprovedBy             *string    `json:"approvedBy,omitempty"`
	ApprovedAt             *time.Time `json:"approvedAt,omitempty"`
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              time.Time  `json:"updatedAt"`
}

// IsFull reports whether the participant limit has been reached. Events
// without a limit are never full.
func (e *Event) IsFull() bool {
	if e.MaxParticipants == nil {
		return false
	}
	return len(e.RegisteredParticipants) >= *e.MaxParticipants
}
