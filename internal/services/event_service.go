package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saranshraj9101/events/internal/apperrors"
	"github.com/saranshraj9101/events/internal/models"
)

// EventFilter narrows event listings.
type EventFilter struct {
	Category     string
	FeaturedOnly bool
	Status       string
}

// EventParams carries a full event definition for creation.
type EventParams struct {
	Title                  string
	Description            string
	Category               string
	Date                   time.Time
	StartTime              string
	EndTime                string
	Venue                  string
	MaxParticipants        *int
	RegistrationDeadline   *time.Time
	IsRegistrationRequired bool
	IsFree                 bool
	Fee                    int
	Status                 string
	IsFeatured             bool
}

// EventPatch is a partial update; nil fields are left untouched.
type EventPatch struct {
	Title                  *string
	Description            *string
	Category               *string
	Date                   *time.Time
	StartTime              *string
	EndTime                *string
	Venue                  *string
	MaxParticipants        *int
	RegistrationDeadline   *time.Time
	IsRegistrationRequired *bool
	IsFree                 *bool
	Fee                    *int
	Status                 *string
	IsFeatured             *bool
}

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	ListPublished(filter EventFilter, page, limit int) ([]models.Event, int, error)
	ListAll(filter EventFilter, page, limit int) ([]models.Event, int, error)
	GetEventByID(id string) (models.Event, error)
	CreateEvent(params EventParams, organizerID string) (models.Event, error)
	UpdateEvent(id string, patch EventPatch) (models.Event, error)
	DeleteEvent(id string) error
	ApproveEvent(id, approverID string) (models.Event, error)
	RegisterParticipant(eventID, userID string) (models.Event, error)
	UnregisterParticipant(eventID, userID string) (models.Event, error)
}

// EventService provides business logic for event management.
type EventService struct {
	db *sql.DB
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db}
}

const eventColumns = `e.id, e.title, e.description, e.category, e.date, e.start_time, e.end_time, e.venue,
	e.organizer_id, u.name, e.max_participants, e.registration_deadline, e.is_registration_required,
	e.is_free, e.fee, e.status, e.is_featured, e.is_approved, e.approved_by, e.approved_at,
	e.created_at, e.updated_at`

const eventSelect = "SELECT " + eventColumns + " FROM events e JOIN users u ON u.id = e.organizer_id"

type querier interface {
	QueryRow(query string, args ...interface{}) *sql.Row
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

func scanEvent(row interface{ Scan(...interface{}) error }) (models.Event, error) {
	var event models.Event
	var maxParticipants sql.NullInt64
	var deadline, approvedAt sql.NullTime
	var approvedBy sql.NullString
	err := row.Scan(&event.ID, &event.Title, &event.Description, &event.Category, &event.Date,
		&event.StartTime, &event.EndTime, &event.Venue, &event.OrganizerID, &event.OrganizerName,
		&maxParticipants, &deadline, &event.IsRegistrationRequired, &event.IsFree, &event.Fee,
		&event.Status, &event.IsFeatured, &event.IsApproved, &approvedBy, &approvedAt,
		&event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return models.Event{}, err
	}
	if maxParticipants.Valid {
		v := int(maxParticipants.Int64)
		event.MaxParticipants = &v
	}
	if deadline.Valid {
		event.RegistrationDeadline = &deadline.Time
	}
	if approvedBy.Valid {
		event.ApprovedBy = &approvedBy.String
	}
	if approvedAt.Valid {
		event.ApprovedAt = &approvedAt.Time
	}
	return event, nil
}

func getEvent(q querier, id string) (models.Event, error) {
	event, err := scanEvent(q.QueryRow(eventSelect+" WHERE e.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, apperrors.ErrEventNotFound
	}
	if err != nil {
		return models.Event{}, err
	}
	event.RegisteredParticipants, err = participants(q, id)
	return event, err
}

func participants(q querier, eventID string) ([]string, error) {
	rows, err := q.Query("SELECT user_id FROM event_participants WHERE event_id = ? ORDER BY created_at", eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetEventByID retrieves a single event with its participant list.
func (s *EventService) GetEventByID(id string) (models.Event, error) {
	return getEvent(s.db, id)
}

func (s *EventService) list(cond string, args []interface{}, order string, page, limit int) ([]models.Event, int, error) {
	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM events e WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := eventSelect + " WHERE " + cond + " ORDER BY " + order + " LIMIT ? OFFSET ?"
	rows, err := s.db.Query(query, append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range events {
		if events[i].RegisteredParticipants, err = participants(s.db, events[i].ID); err != nil {
			return nil, 0, err
		}
	}
	return events, total, nil
}

// ListPublished returns one page of publicly visible events ordered by
// date, together with the total filtered count.
func (s *EventService) ListPublished(filter EventFilter, page, limit int) ([]models.Event, int, error) {
	where := []string{"e.status = ?"}
	args := []interface{}{models.StatusPublished}
	if filter.Category != "" {
		where = append(where, "e.category = ?")
		args = append(args, filter.Category)
	}
	if filter.FeaturedOnly {
		where = append(where, "e.is_featured = 1")
	}
	return s.list(strings.Join(where, " AND "), args, "e.date ASC, e.id", page, limit)
}

// ListAll returns one page of events across all statuses, newest first.
func (s *EventService) ListAll(filter EventFilter, page, limit int) ([]models.Event, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Status != "" {
		where = append(where, "e.status = ?")
		args = append(args, filter.Status)
	}
	if filter.Category != "" {
		where = append(where, "e.category = ?")
		args = append(args, filter.Category)
	}
	return s.list(strings.Join(where, " AND "), args, "e.created_at DESC, e.id", page, limit)
}

// CreateEvent inserts a new event organized by the caller.
func (s *EventService) CreateEvent(params EventParams, organizerID string) (models.Event, error) {
	status := params.Status
	if status == "" {
		status = models.StatusDraft
	}

	now := time.Now().UTC()
	id := uuid.New().String()

	var maxParticipants sql.NullInt64
	if params.MaxParticipants != nil {
		maxParticipants = sql.NullInt64{Int64: int64(*params.MaxParticipants), Valid: true}
	}
	var deadline sql.NullTime
	if params.RegistrationDeadline != nil {
		deadline = sql.NullTime{Time: *params.RegistrationDeadline, Valid: true}
	}

	_, err := s.db.Exec(`INSERT INTO events (id, title, description, category, date, start_time, end_time, venue,
			organizer_id, max_participants, registration_deadline, is_registration_required, is_free, fee,
			status, is_featured, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, params.Title, params.Description, params.Category, params.Date, params.StartTime, params.EndTime,
		params.Venue, organizerID, maxParticipants, deadline, params.IsRegistrationRequired, params.IsFree,
		params.Fee, status, params.IsFeatured, now, now)
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to create event: %w", err)
	}

	return s.GetEventByID(id)
}

// UpdateEvent applies a partial update to an event.
func (s *EventService) UpdateEvent(id string, patch EventPatch) (models.Event, error) {
	if _, err := s.GetEventByID(id); err != nil {
		return models.Event{}, err
	}

	set := []string{"updated_at = ?"}
	args := []interface{}{time.Now().UTC()}
	apply := func(column string, value interface{}) {
		set = append(set, column+" = ?")
		args = append(args, value)
	}
	if patch.Title != nil {
		apply("title", *patch.Title)
	}
	if patch.Description != nil {
		apply("description", *patch.Description)
	}
	if patch.Category != nil {
		apply("category", *patch.Category)
	}
	if patch.Date != nil {
		apply("date", *patch.Date)
	}
	if patch.StartTime != nil {
		apply("start_time", *patch.StartTime)
	}
	if patch.EndTime != nil {
		apply("end_time", *patch.EndTime)
	}
	if patch.Venue != nil {
		apply("venue", *patch.Venue)
	}
	if patch.MaxParticipants != nil {
		apply("max_participants", *patch.MaxParticipants)
	}
	if patch.RegistrationDeadline != nil {
		apply("registration_deadline", *patch.RegistrationDeadline)
	}
	if patch.IsRegistrationRequired != nil {
		apply("is_registration_required", *patch.IsRegistrationRequired)
	}
	if patch.IsFree != nil {
		apply("is_free", *patch.IsFree)
	}
	if patch.Fee != nil {
		apply("fee", *patch.Fee)
	}
	if patch.Status != nil {
		apply("status", *patch.Status)
	}
	if patch.IsFeatured != nil {
		apply("is_featured", *patch.IsFeatured)
	}

	args = append(args, id)
	if _, err := s.db.Exec("UPDATE events SET "+strings.Join(set, ", ")+" WHERE id = ?", args...); err != nil {
		return models.Event{}, err
	}
	return s.GetEventByID(id)
}

// DeleteEvent removes an event and its registrations.
func (s *EventService) DeleteEvent(id string) error {
	if _, err := s.GetEventByID(id); err != nil {
		return err
	}
	_, err := s.db.Exec("DELETE FROM events WHERE id = ?", id)
	return err
}

// ApproveEvent marks an event approved by the given admin. Approving an
// already approved event is a no-op that leaves the original approver
// and timestamp in place.
func (s *EventService) ApproveEvent(id, approverID string) (models.Event, error) {
	event, err := s.GetEventByID(id)
	if err != nil {
		return models.Event{}, err
	}
	if event.IsApproved {
		return event, nil
	}

	now := time.Now().UTC()
	_, err = s.db.Exec("UPDATE events SET is_approved = 1, approved_by = ?, approved_at = ?, updated_at = ? WHERE id = ?",
		approverID, now, now, id)
	if err != nil {
		return models.Event{}, err
	}
	return s.GetEventByID(id)
}

// RegisterParticipant adds the user to the event inside a transaction so
// the capacity check and the insert are atomic.
func (s *EventService) RegisterParticipant(eventID, userID string) (models.Event, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return models.Event{}, err
	}
	defer tx.Rollback()

	event, err := getEvent(tx, eventID)
	if err != nil {
		return models.Event{}, err
	}

	if event.Status != models.StatusPublished || !event.IsApproved || !event.IsRegistrationRequired {
		return models.Event{}, apperrors.ErrRegistrationNotOpen
	}
	if event.RegistrationDeadline != nil && time.Now().After(*event.RegistrationDeadline) {
		return models.Event{}, apperrors.ErrRegistrationClosed
	}
	for _, id := range event.RegisteredParticipants {
		if id == userID {
			return models.Event{}, apperrors.ErrAlreadyRegistered
		}
	}
	if event.IsFull() {
		return models.Event{}, apperrors.ErrEventFull
	}

	if _, err := tx.Exec("INSERT INTO event_participants (event_id, user_id, created_at) VALUES (?, ?, ?)",
		eventID, userID, time.Now().UTC()); err != nil {
		return models.Event{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Event{}, err
	}
	return s.GetEventByID(eventID)
}

// UnregisterParticipant removes the user's registration.
func (s *EventService) UnregisterParticipant(eventID, userID string) (models.Event, error) {
	if _, err := s.GetEventByID(eventID); err != nil {
		return models.Event{}, err
	}

	res, err := s.db.Exec("DELETE FROM event_participants WHERE event_id = ? AND user_id = ?", eventID, userID)
	if err != nil {
		return models.Event{}, err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return models.Event{}, apperrors.ErrNotRegistered
	}
	return s.GetEventByID(eventID)
}
