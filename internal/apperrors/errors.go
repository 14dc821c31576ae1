package apperrors

import "net/http"

// Error is a request-terminating failure carrying the HTTP status it
// should surface as. Services return these; handlers map everything
// else to a generic 500.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

// Well-known failures shared across services and handlers.
var (
	ErrUserNotFound  = NotFound("User not found")
	ErrEventNotFound = NotFound("Event not found")

	ErrInvalidCredentials = Unauthorized("Invalid credentials")
	ErrAccountInactive    = Unauthorized("Account is deactivated")
	ErrMissingToken       = Unauthorized("Missing auth token")
	ErrInvalidToken       = Unauthorized("Invalid auth token")

	ErrAdminOnly = Forbidden("Admin access required")

	ErrEmailTaken          = BadRequest("Email already exists")
	ErrStudentIDTaken      = BadRequest("Student ID already exists")
	ErrWrongPassword       = BadRequest("Current password is incorrect")
	ErrSelfDeletion        = BadRequest("Cannot delete your own account")
	ErrSelfDeactivation    = BadRequest("Cannot deactivate your own account")
	ErrEventFull           = BadRequest("Event is full")
	ErrAlreadyRegistered   = BadRequest("Already registered for this event")
	ErrNotRegistered       = BadRequest("Not registered for this event")
	ErrRegistrationClosed  = BadRequest("Registration is closed for this event")
	ErrRegistrationNotOpen = BadRequest("Registration is not open for this event")
)

// FieldError describes a single invalid request field. Validation
// failures report every violation at once as a list of these.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
