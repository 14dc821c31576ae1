package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/rs/zerolog/log"
	"github.com/saranshraj9101/events/internal/auth"
	"github.com/saranshraj9101/events/internal/models"
	"github.com/saranshraj9101/events/internal/services"
)

// UserHandler handles HTTP requests for user administration.
type UserHandler struct {
	users    services.UserServiceProvider
	activity services.ActivityServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users services.UserServiceProvider, activity services.ActivityServiceProvider) *UserHandler {
	return &UserHandler{users: users, activity: activity}
}

var userRoles = []string{models.RoleAdmin, models.RoleStudent}

// List returns one page of users matching the query filters.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	filter := services.UserFilter{
		Role:       r.URL.Query().Get("role"),
		Department: r.URL.Query().Get("department"),
		Year:       r.URL.Query().Get("year"),
	}

	users, total, err := h.users.ListUsers(filter, page, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"users":       users,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
		"total":       total,
	})
}

// Get handles retrieving a user by their ID.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUserByID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UserUpdatePayload defines the structure for admin user updates.
type UserUpdatePayload struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Role       *string `json:"role"`
	Department *string `json:"department"`
	Year       *string `json:"year"`
}

func (p UserUpdatePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.NilOrNotEmpty.Error("Name must be at least 2 characters"),
			validation.Length(2, 0).Error("Name must be at least 2 characters")),
		validation.Field(&p.Email, validation.NilOrNotEmpty.Error("Please include a valid email"),
			is.Email.Error("Please include a valid email")),
		validation.Field(&p.Role, oneOf(userRoles).Error("Please select a valid role")),
		validation.Field(&p.Department, validation.NilOrNotEmpty.Error("Department cannot be empty")),
		validation.Field(&p.Year, oneOf(models.Years).Error("Please select a valid year")),
	)
}

// Update handles an admin updating a user record.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var payload UserUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := payload.Validate(); err != nil {
		respondError(w, err)
		return
	}

	user, err := h.users.UpdateUser(id, services.UserPatch{
		Name:       payload.Name,
		Email:      payload.Email,
		Role:       payload.Role,
		Department: payload.Department,
		Year:       payload.Year,
	})
	if err != nil {
		log.Warn().Err(err).Str("user_id", id).Msg("Failed to update user")
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Delete handles the permanent deletion of a user account.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.users.DeleteUser(id, caller.ID); err != nil {
		log.Warn().Err(err).Str("user_id", id).Msg("Failed to delete user")
		respondError(w, err)
		return
	}

	h.record("user.delete", "Deleted user "+id, caller.ID)
	respondMessage(w, http.StatusOK, "User deleted successfully")
}

// ToggleStatus flips a user's active flag.
func (h *UserHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	user, err := h.users.ToggleStatus(id, caller.ID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", id).Msg("Failed to toggle user status")
		respondError(w, err)
		return
	}

	message := "User deactivated successfully"
	if user.IsActive {
		message = "User activated successfully"
	}
	h.record("user.toggle-status", message+": "+id, caller.ID)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": message,
		"user":    user,
	})
}

// Stats returns aggregate counts for the admin dashboard.
func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.users.Stats()
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute user stats")
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *UserHandler) record(activityType, message, actorID string) {
	if err := h.activity.Record(activityType, "info", message, &actorID); err != nil {
		log.Warn().Err(err).Str("type", activityType).Msg("Failed to record activity")
	}
}
