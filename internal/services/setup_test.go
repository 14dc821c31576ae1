package services

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/saranshraj9101/events/internal/database"
	"github.com/saranshraj9101/events/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func createTestUser(t *testing.T, svc *UserService, name, email, role string) models.User {
	t.Helper()
	user, err := svc.CreateUser(CreateUserParams{
		Name:       name,
		Email:      email,
		Password:   "password",
		Department: "Computer Science",
		Year:       "2nd Year",
		Role:       role,
	})
	require.NoError(t, err)
	return user
}

func publishedEvent(title, category string) EventParams {
	return EventParams{
		Title:       title,
		Description: "A test event",
		Category:    category,
		Date:        time.Now().UTC().AddDate(0, 0, 7),
		StartTime:   "10:00",
		EndTime:     "12:00",
		Venue:       "Main Auditorium",
		IsFree:      true,
		Status:      models.StatusPublished,
	}
}
