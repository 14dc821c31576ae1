package services

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/saranshraj9101/events/internal/models"
)

// ActivityServiceProvider defines the interface for the audit trail.
type ActivityServiceProvider interface {
	Record(activityType, level, message string, actorID *string) error
	GetRecent(limit int) ([]models.Activity, error)
}

// ActivityService records admin actions for the audit trail.
type ActivityService struct {
	db *sql.DB
}

// NewActivityService creates a new ActivityService.
func NewActivityService(db *sql.DB) *ActivityService {
	return &ActivityService{db: db}
}

// Record logs a new entry.
func (s *ActivityService) Record(activityType, level, message string, actorID *string) error {
	var actor sql.NullString
	if actorID != nil {
		actor = sql.NullString{String: *actorID, Valid: true}
	}
	_, err := s.db.Exec("INSERT INTO activity (id, type, level, message, actor_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		uuid.New().String(), activityType, level, message, actor, time.Now().UTC())
	return err
}

// GetRecent retrieves the most recent entries, newest first.
func (s *ActivityService) GetRecent(limit int) ([]models.Activity, error) {
	rows, err := s.db.Query("SELECT id, type, level, message, actor_id, created_at FROM activity ORDER BY created_at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.Activity{}
	for rows.Next() {
		var entry models.Activity
		var actor sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Type, &entry.Level, &entry.Message, &actor, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if actor.Valid {
			entry.ActorID = &actor.String
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
