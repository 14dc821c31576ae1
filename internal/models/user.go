package models

import "time"

// User roles.
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// Years a student account can declare.
var Years = []string{"1st Year", "2nd Year", "3rd Year", "4th Year", "5th Year"}

// User represents a user account in the system.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	Role         string    `json:"role"`
	StudentID    *string   `json:"studentId,omitempty"`
	Department   string    `json:"department"`
	Year         string    `json:"year"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// GroupCount is one bucket of a grouped user count.
type GroupCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// UserStats summarizes the user base for the admin dashboard.
type UserStats struct {
	TotalUsers      int          `json:"totalUsers"`
	ActiveUsers     int          `json:"activeUsers"`
	AdminUsers      int          `json:"adminUsers"`
	StudentUsers    int          `json:"studentUsers"`
	DepartmentStats []GroupCount `json:"departmentStats"`
	YearStats       []GroupCount `json:"yearStats"`
}
