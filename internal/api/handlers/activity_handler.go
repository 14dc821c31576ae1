package handlers

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/saranshraj9101/events/internal/services"
)

// ActivityHandler exposes the admin audit trail.
type ActivityHandler struct {
	activity services.ActivityServiceProvider
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(activity services.ActivityServiceProvider) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// Recent returns the most recent audit entries.
func (h *ActivityHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}

	entries, err := h.activity.GetRecent(limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load activity")
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
