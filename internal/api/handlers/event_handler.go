package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/rs/zerolog/log"
	"github.com/saranshraj9101/events/internal/auth"
	"github.com/saranshraj9101/events/internal/models"
	"github.com/saranshraj9101/events/internal/services"
)

// EventHandler handles HTTP requests for event management.
type EventHandler struct {
	events   services.EventServiceProvider
	activity services.ActivityServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(events services.EventServiceProvider, activity services.ActivityServiceProvider) *EventHandler {
	return &EventHandler{events: events, activity: activity}
}

// EventPayload defines the structure for event creation requests.
type EventPayload struct {
	Title                  string  `json:"title"`
	Description            string  `json:"description"`
	Category               string  `json:"category"`
	Date                   string  `json:"date"`
	StartTime              string  `json:"startTime"`
	EndTime                string  `json:"endTime"`
	Venue                  string  `json:"venue"`
	MaxParticipants        *int    `json:"maxParticipants"`
	RegistrationDeadline   *string `json:"registrationDeadline"`
	IsRegistrationRequired bool    `json:"isRegistrationRequired"`
	IsFree                 *bool   `json:"isFree"`
	Fee                    int     `json:"fee"`
	Status                 string  `json:"status"`
	IsFeatured             bool    `json:"isFeatured"`
}

var eventStatuses = []string{models.StatusDraft, models.StatusPublished, models.StatusCancelled}

func (p EventPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required.Error("Title is required"),
			validation.Length(1, 100).Error("Title cannot be more than 100 characters")),
		validation.Field(&p.Description, validation.Required.Error("Description is required"),
			validation.Length(1, 1000).Error("Description cannot be more than 1000 characters")),
		validation.Field(&p.Category, validation.Required.Error("Please select a valid category"),
			oneOf(models.Categories).Error("Please select a valid category")),
		validation.Field(&p.Date, validation.Required.Error("Please provide a valid date"),
			validation.By(isoDate)),
		validation.Field(&p.StartTime, validation.Required.Error("Please provide a valid start time"),
			validation.Match(timePattern).Error("Please provide a valid start time")),
		validation.Field(&p.EndTime, validation.Required.Error("Please provide a valid end time"),
			validation.Match(timePattern).Error("Please provide a valid end time")),
		validation.Field(&p.Venue, validation.Required.Error("Venue is required")),
		validation.Field(&p.MaxParticipants, validation.Min(1).Error("Max participants must be positive")),
		validation.Field(&p.RegistrationDeadline, validation.By(isoDate)),
		validation.Field(&p.Fee, validation.Min(0).Error("Fee cannot be negative")),
		validation.Field(&p.Status, oneOf(eventStatuses).Error("Please select a valid status")),
	)
}

// EventUpdatePayload defines the structure for event updates; every
// field is optional.
type EventUpdatePayload struct {
	Title                  *string `json:"title"`
	Description            *string `json:"description"`
	Category               *string `json:"category"`
	Date                   *string `json:"date"`
	StartTime              *string `json:"startTime"`
	EndTime                *string `json:"endTime"`
	Venue                  *string `json:"venue"`
	MaxParticipants        *int    `json:"maxParticipants"`
	RegistrationDeadline   *string `json:"registrationDeadline"`
	IsRegistrationRequired *bool   `json:"isRegistrationRequired"`
	IsFree                 *bool   `json:"isFree"`
	Fee                    *int    `json:"fee"`
	Status                 *string `json:"status"`
	IsFeatured             *bool   `json:"isFeatured"`
}

func (p EventUpdatePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.NilOrNotEmpty.Error("Title cannot be empty"),
			validation.Length(1, 100).Error("Title cannot be more than 100 characters")),
		validation.Field(&p.Description, validation.NilOrNotEmpty.Error("Description cannot be empty"),
			validation.Length(1, 1000).Error("Description cannot be more than 1000 characters")),
		validation.Field(&p.Category, oneOf(models.Categories).Error("Please select a valid category")),
		validation.Field(&p.Date, validation.By(isoDate)),
		validation.Field(&p.StartTime, validation.Match(timePattern).Error("Please provide a valid start time")),
		validation.Field(&p.EndTime, validation.Match(timePattern).Error("Please provide a valid end time")),
		validation.Field(&p.Venue, validation.NilOrNotEmpty.Error("Venue cannot be empty")),
		validation.Field(&p.MaxParticipants, validation.Min(1).Error("Max participants must be positive")),
		validation.Field(&p.RegistrationDeadline, validation.By(isoDate)),
		validation.Field(&p.Fee, validation.Min(0).Error("Fee cannot be negative")),
		validation.Field(&p.Status, oneOf(eventStatuses).Error("Please select a valid status")),
	)
}

// List returns published events for the public site.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	filter := services.EventFilter{
		Category:     r.URL.Query().Get("category"),
		FeaturedOnly: r.URL.Query().Get("featured") == "true",
	}

	events, total, err := h.events.ListPublished(filter, page, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list events")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"events":      events,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
		"total":       total,
	})
}

// AdminList returns events across all statuses for the admin panel.
func (h *EventHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	filter := services.EventFilter{
		Status:   r.URL.Query().Get("status"),
		Category: r.URL.Query().Get("category"),
	}

	events, total, err := h.events.ListAll(filter, page, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list events for admin")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"events":      events,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
		"total":       total,
	})
}

// Get returns a single event by ID.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.GetEventByID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, event)
}

func (p EventPayload) toParams() (services.EventParams, error) {
	date, err := parseISODate(p.Date)
	if err != nil {
		return services.EventParams{}, err
	}

	params := services.EventParams{
		Title:                  p.Title,
		Description:            p.Description,
		Category:               p.Category,
		Date:                   date,
		StartTime:              p.StartTime,
		EndTime:                p.EndTime,
		Venue:                  p.Venue,
		MaxParticipants:        p.MaxParticipants,
		IsRegistrationRequired: p.IsRegistrationRequired,
		IsFree:                 true,
		Fee:                    p.Fee,
		Status:                 p.Status,
		IsFeatured:             p.IsFeatured,
	}
	if p.IsFree != nil {
		params.IsFree = *p.IsFree
	}
	if p.RegistrationDeadline != nil {
		deadline, err := parseISODate(*p.RegistrationDeadline)
		if err != nil {
			return services.EventParams{}, err
		}
		params.RegistrationDeadline = &deadline
	}
	return params, nil
}

// Create handles new event creation by an admin.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.UserFromContext(r.Context())

	var payload EventPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := payload.Validate(); err != nil {
		respondError(w, err)
		return
	}

	params, err := payload.toParams()
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Please provide a valid date")
		return
	}

	event, err := h.events.CreateEvent(params, caller.ID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create event")
		respondError(w, err)
		return
	}

	h.record("event.create", "Created event "+event.Title, caller.ID)
	respondJSON(w, http.StatusCreated, event)
}

func (p EventUpdatePayload) toPatch() (services.EventPatch, error) {
	patch := services.EventPatch{
		Title:                  p.Title,
		Description:            p.Description,
		Category:               p.Category,
		StartTime:              p.StartTime,
		EndTime:                p.EndTime,
		Venue:                  p.Venue,
		MaxParticipants:        p.MaxParticipants,
		IsRegistrationRequired: p.IsRegistrationRequired,
		IsFree:                 p.IsFree,
		Fee:                    p.Fee,
		Status:                 p.Status,
		IsFeatured:             p.IsFeatured,
	}
	if p.Date != nil {
		date, err := parseISODate(*p.Date)
		if err != nil {
			return services.EventPatch{}, err
		}
		patch.Date = &date
	}
	if p.RegistrationDeadline != nil {
		deadline, err := parseISODate(*p.RegistrationDeadline)
		if err != nil {
			return services.EventPatch{}, err
		}
		patch.RegistrationDeadline = &deadline
	}
	return patch, nil
}

// Update applies a partial event update.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var payload EventUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := payload.Validate(); err != nil {
		respondError(w, err)
		return
	}

	patch, err := payload.toPatch()
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Please provide a valid date")
		return
	}

	event, err := h.events.UpdateEvent(id, patch)
	if err != nil {
		log.Warn().Err(err).Str("event_id", id).Msg("Failed to update event")
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, event)
}

// Delete removes an event.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.events.DeleteEvent(id); err != nil {
		log.Warn().Err(err).Str("event_id", id).Msg("Failed to delete event")
		respondError(w, err)
		return
	}

	h.record("event.delete", "Deleted event "+id, caller.ID)
	respondMessage(w, http.StatusOK, "Event deleted successfully")
}

// Approve marks an event as approved by the calling admin.
func (h *EventHandler) Approve(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	event, err := h.events.ApproveEvent(id, caller.ID)
	if err != nil {
		log.Warn().Err(err).Str("event_id", id).Msg("Failed to approve event")
		respondError(w, err)
		return
	}

	h.record("event.approve", "Approved event "+event.Title, caller.ID)
	respondJSON(w, http.StatusOK, event)
}

// Register adds the caller to the event's participant list.
func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.UserFromContext(r.Context())

	event, err := h.events.RegisterParticipant(chi.URLParam(r, "id"), caller.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, event)
}

// Unregister removes the caller from the event's participant list.
func (h *EventHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.UserFromContext(r.Context())

	event, err := h.events.UnregisterParticipant(chi.URLParam(r, "id"), caller.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, event)
}

func (h *EventHandler) record(activityType, message, actorID string) {
	if err := h.activity.Record(activityType, "info", message, &actorID); err != nil {
		log.Warn().Err(err).Str("type", activityType).Msg("Failed to record activity")
	}
}
