package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/saranshraj9101/events/internal/apperrors"
	"github.com/saranshraj9101/events/internal/models"
)

type contextKey string

const userContextKey = contextKey("authUser")

// UserFromContext returns the user attached by Authenticator.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userContextKey).(models.User)
	return user, ok
}

// WithUser returns a context carrying an authenticated user. Exposed for
// handler tests.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// Authenticator protects routes by resolving the bearer token to an
// active user record and attaching it to the request context.
func (s *Service) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := bearerToken(r)
		if tokenStr == "" {
			writeError(w, apperrors.ErrMissingToken)
			return
		}

		claims, err := s.ValidateJWT(tokenStr)
		if err != nil {
			writeError(w, apperrors.ErrInvalidToken)
			return
		}

		// The token only proves identity; authorization always runs
		// against the current user record.
		user, err := s.users.GetUserByID(claims.UserID)
		if err != nil {
			writeError(w, apperrors.ErrInvalidToken)
			return
		}
		if !user.IsActive {
			writeError(w, apperrors.ErrAccountInactive)
			return
		}

		ctx := WithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects requests whose authenticated user is not an
// admin. It must run after Authenticator.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			writeError(w, apperrors.ErrMissingToken)
			return
		}
		if user.Role != models.RoleAdmin {
			writeError(w, apperrors.ErrAdminOnly)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeError(w http.ResponseWriter, err *apperrors.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status)
	json.NewEncoder(w).Encode(map[string]string{"message": err.Message})
}
