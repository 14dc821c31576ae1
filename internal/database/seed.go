package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Seed inserts the demo accounts and events used by the development
// frontend. It is a no-op once any user exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	adminID := uuid.New().String()
	studentID := uuid.New().String()

	_, err = db.Exec(`INSERT INTO users (id, name, email, password_hash, role, department, year, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?), (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		adminID, "Admin User", "admin@bennett.edu", string(hash), "admin", "Administration", "1st Year", now, now,
		studentID, "Student User", "student@bennett.edu", string(hash), "student", "Computer Science", "2nd Year", now, now,
	)
	if err != nil {
		return err
	}

	_, err = db.Exec(`INSERT INTO events (id, title, description, category, date, start_time, end_time, venue, organizer_id,
			max_participants, is_registration_required, is_free, fee, status, is_featured, is_approved, approved_by, approved_at, created_at, updated_at)
		VALUES
		(?, ?, ?, 'Academic', ?, '10:00', '12:00', 'Main Auditorium', ?, 200, 1, 1, 0, 'published', 1, 1, ?, ?, ?, ?),
		(?, ?, ?, 'Technical', ?, '14:00', '17:00', 'Computer Lab 101', ?, 30, 1, 0, 500, 'published', 0, 1, ?, ?, ?, ?)`,
		uuid.New().String(), "Welcome to Bennett University",
		"An orientation event for new students to learn about campus facilities and meet fellow students.",
		now.AddDate(0, 0, 7), adminID, adminID, now, now, now,
		uuid.New().String(), "Tech Workshop: Introduction to Web Development",
		"Learn the basics of HTML, CSS, and JavaScript in this hands-on workshop.",
		now.AddDate(0, 0, 14), adminID, adminID, now, now, now,
	)
	return err
}
