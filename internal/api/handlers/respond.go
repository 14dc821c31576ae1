package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/rs/zerolog/log"
	"github.com/saranshraj9101/events/internal/apperrors"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// respondError maps service failures onto the wire taxonomy. Anything
// unrecognized becomes a generic 500 with no internal detail.
func respondError(w http.ResponseWriter, err error) {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": toFieldErrors(fieldErrs)})
		return
	}

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		respondMessage(w, appErr.Status, appErr.Message)
		return
	}

	log.Error().Err(err).Msg("Unexpected request failure")
	respondMessage(w, http.StatusInternalServerError, "Server error")
}

func toFieldErrors(errs validation.Errors) []apperrors.FieldError {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	out := make([]apperrors.FieldError, 0, len(errs))
	for _, field := range fields {
		out = append(out, apperrors.FieldError{Field: field, Message: errs[field].Error()})
	}
	return out
}

// parsePagination reads 1-indexed page and limit query parameters with
// the defaults the frontend expects.
func parsePagination(r *http.Request) (page, limit int) {
	page, limit = 1, 10
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	return page, limit
}

func totalPages(total, limit int) int {
	return (total + limit - 1) / limit
}
