package handlers

import (
	"encoding/json"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/rs/zerolog/log"
	"github.com/saranshraj9101/events/internal/auth"
	"github.com/saranshraj9101/events/internal/models"
	"github.com/saranshraj9101/events/internal/services"
)

// AuthHandler handles registration, login and self-service account
// operations.
type AuthHandler struct {
	users  services.UserServiceProvider
	tokens *auth.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, tokens *auth.Service) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	StudentID  string `json:"studentId"`
	Department string `json:"department"`
	Year       string `json:"year"`
}

func (p RegisterPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required.Error("Name must be at least 2 characters"),
			validation.Length(2, 0).Error("Name must be at least 2 characters")),
		validation.Field(&p.Email, validation.Required.Error("Please include a valid email"),
			is.Email.Error("Please include a valid email")),
		validation.Field(&p.Password, validation.Required.Error("Password must be at least 6 characters"),
			validation.Length(6, 0).Error("Password must be at least 6 characters")),
		validation.Field(&p.Department, validation.Required.Error("Department is required")),
		validation.Field(&p.Year, validation.Required.Error("Please select a valid year"),
			oneOf(models.Years).Error("Please select a valid year")),
	)
}

// AuthPayload defines the structure for login requests.
type AuthPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (p AuthPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required.Error("Please include a valid email"),
			is.Email.Error("Please include a valid email")),
		validation.Field(&p.Password, validation.Required.Error("Password is required")),
	)
}

// Register handles new student account creation.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := payload.Validate(); err != nil {
		respondError(w, err)
		return
	}

	params := services.CreateUserParams{
		Name:       payload.Name,
		Email:      payload.Email,
		Password:   payload.Password,
		Department: payload.Department,
		Year:       payload.Year,
		Role:       models.RoleStudent,
	}
	if payload.StudentID != "" {
		params.StudentID = &payload.StudentID
	}

	user, err := h.users.CreateUser(params)
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		respondError(w, err)
		return
	}

	token, err := h.tokens.GenerateJWT(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate JWT")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// Login handles user authentication and JWT generation.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := payload.Validate(); err != nil {
		respondError(w, err)
		return
	}

	user, err := h.users.AuthenticateUser(payload.Email, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed authentication attempt")
		respondError(w, err)
		return
	}

	token, err := h.tokens.GenerateJWT(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate JWT")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// GetMe returns the currently authenticated user.
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// ProfilePayload defines the structure for profile updates.
type ProfilePayload struct {
	Name       *string `json:"name"`
	Department *string `json:"department"`
	Year       *string `json:"year"`
}

func (p ProfilePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.NilOrNotEmpty.Error("Name must be at least 2 characters"),
			validation.Length(2, 0).Error("Name must be at least 2 characters")),
		validation.Field(&p.Department, validation.NilOrNotEmpty.Error("Department cannot be empty")),
		validation.Field(&p.Year, oneOf(models.Years).Error("Please select a valid year")),
	)
}

// UpdateProfile updates the caller's own profile fields.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.UserFromContext(r.Context())

	var payload ProfilePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := payload.Validate(); err != nil {
		respondError(w, err)
		return
	}

	user, err := h.users.UpdateUser(caller.ID, services.UserPatch{
		Name:       payload.Name,
		Department: payload.Department,
		Year:       payload.Year,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", caller.ID).Msg("Failed to update profile")
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// ChangePasswordPayload defines the structure for password rotation.
type ChangePasswordPayload struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (p ChangePasswordPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.CurrentPassword, validation.Required.Error("Current password is required")),
		validation.Field(&p.NewPassword, validation.Required.Error("New password must be at least 6 characters"),
			validation.Length(6, 0).Error("New password must be at least 6 characters")),
	)
}

// ChangePassword rotates the caller's password after verifying the
// current one.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.UserFromContext(r.Context())

	var payload ChangePasswordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := payload.Validate(); err != nil {
		respondError(w, err)
		return
	}

	if err := h.users.UpdatePassword(caller.ID, payload.CurrentPassword, payload.NewPassword); err != nil {
		log.Warn().Err(err).Str("user_id", caller.ID).Msg("Failed to change password")
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Password updated successfully")
}
