package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saranshraj9101/events/internal/apperrors"
	"github.com/saranshraj9101/events/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// UserFilter narrows user listings.
type UserFilter struct {
	Role       string
	Department string
	Year       string
}

// CreateUserParams carries everything needed to create an account.
type CreateUserParams struct {
	Name       string
	Email      string
	Password   string
	StudentID  *string
	Department string
	Year       string
	Role       string
}

// UserPatch is a partial update; nil fields are left untouched.
type UserPatch struct {
	Name       *string
	Email      *string
	Role       *string
	Department *string
	Year       *string
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(id string) (models.User, error)
	GetUserByEmail(email string) (models.User, error)
	ListUsers(filter UserFilter, page, limit int) ([]models.User, int, error)
	CreateUser(params CreateUserParams) (models.User, error)
	UpdateUser(id string, patch UserPatch) (models.User, error)
	UpdatePassword(id, currentPassword, newPassword string) error
	DeleteUser(id, callerID string) error
	ToggleStatus(id, callerID string) (models.User, error)
	AuthenticateUser(email, password string) (models.User, error)
	Stats() (models.UserStats, error)
}

// UserService provides business logic for user management.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

const userColumns = "id, name, email, password_hash, role, student_id, department, year, is_active, created_at, updated_at"

func scanUser(row interface{ Scan(...interface{}) error }) (models.User, error) {
	var user models.User
	var studentID sql.NullString
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role,
		&studentID, &user.Department, &user.Year, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return models.User{}, err
	}
	if studentID.Valid {
		user.StudentID = &studentID.String
	}
	return user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	user, err := scanUser(s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperrors.ErrUserNotFound
	}
	return user, err
}

// GetUserByEmail retrieves a single user by their email, including the password hash.
func (s *UserService) GetUserByEmail(email string) (models.User, error) {
	user, err := scanUser(s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", email))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperrors.ErrUserNotFound
	}
	return user, err
}

// ListUsers returns one page of users matching the filter, newest first,
// together with the total number of matches.
func (s *UserService) ListUsers(filter UserFilter, page, limit int) ([]models.User, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Role != "" {
		where = append(where, "role = ?")
		args = append(args, filter.Role)
	}
	if filter.Department != "" {
		where = append(where, "department = ?")
		args = append(args, filter.Department)
	}
	if filter.Year != "" {
		where = append(where, "year = ?")
		args = append(args, filter.Year)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM users WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + userColumns + " FROM users WHERE " + cond +
		" ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	rows, err := s.db.Query(query, append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	return users, total, rows.Err()
}

// CreateUser creates a new user, hashing their password. Duplicate
// emails and student IDs are rejected.
func (s *UserService) CreateUser(params CreateUserParams) (models.User, error) {
	if _, err := s.GetUserByEmail(params.Email); err == nil {
		return models.User{}, apperrors.ErrEmailTaken
	} else if !errors.Is(err, apperrors.ErrUserNotFound) {
		return models.User{}, err
	}

	if params.StudentID != nil {
		var count int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM users WHERE student_id = ?", *params.StudentID).Scan(&count); err != nil {
			return models.User{}, err
		}
		if count > 0 {
			return models.User{}, apperrors.ErrStudentIDTaken
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	role := params.Role
	if role == "" {
		role = models.RoleStudent
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           uuid.New().String(),
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: string(hashedPassword),
		Role:         role,
		StudentID:    params.StudentID,
		Department:   params.Department,
		Year:         params.Year,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var studentID sql.NullString
	if user.StudentID != nil {
		studentID = sql.NullString{String: *user.StudentID, Valid: true}
	}

	_, err = s.db.Exec(`INSERT INTO users (id, name, email, password_hash, role, student_id, department, year, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role, studentID, user.Department, user.Year, now, now)
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

// UpdateUser applies a partial update to a user record. Changing the
// email to one used by a different user fails.
func (s *UserService) UpdateUser(id string, patch UserPatch) (models.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return models.User{}, err
	}

	if patch.Email != nil && *patch.Email != user.Email {
		var count int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM users WHERE email = ? AND id != ?", *patch.Email, id).Scan(&count); err != nil {
			return models.User{}, err
		}
		if count > 0 {
			return models.User{}, apperrors.ErrEmailTaken
		}
	}

	set := []string{"updated_at = ?"}
	args := []interface{}{time.Now().UTC()}
	apply := func(column string, value *string) {
		if value != nil {
			set = append(set, column+" = ?")
			args = append(args, *value)
		}
	}
	apply("name", patch.Name)
	apply("email", patch.Email)
	apply("role", patch.Role)
	apply("department", patch.Department)
	apply("year", patch.Year)

	args = append(args, id)
	if _, err := s.db.Exec("UPDATE users SET "+strings.Join(set, ", ")+" WHERE id = ?", args...); err != nil {
		return models.User{}, err
	}
	return s.GetUserByID(id)
}

// UpdatePassword verifies the current password, then hashes and sets a new password for a user.
func (s *UserService) UpdatePassword(id, currentPassword, newPassword string) error {
	user, err := s.GetUserByID(id)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return apperrors.ErrWrongPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	_, err = s.db.Exec("UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?",
		string(hashedPassword), time.Now().UTC(), id)
	return err
}

// DeleteUser removes a user from the database. Admins cannot delete
// their own account.
func (s *UserService) DeleteUser(id, callerID string) error {
	if id == callerID {
		return apperrors.ErrSelfDeletion
	}
	if _, err := s.GetUserByID(id); err != nil {
		return err
	}
	_, err := s.db.Exec("DELETE FROM users WHERE id = ?", id)
	return err
}

// ToggleStatus flips a user's active flag. Admins cannot deactivate
// their own account.
func (s *UserService) ToggleStatus(id, callerID string) (models.User, error) {
	if id == callerID {
		return models.User{}, apperrors.ErrSelfDeactivation
	}
	user, err := s.GetUserByID(id)
	if err != nil {
		return models.User{}, err
	}
	_, err = s.db.Exec("UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?",
		!user.IsActive, time.Now().UTC(), id)
	if err != nil {
		return models.User{}, err
	}
	return s.GetUserByID(id)
}

// AuthenticateUser verifies a user's credentials.
func (s *UserService) AuthenticateUser(email, password string) (models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return models.User{}, apperrors.ErrInvalidCredentials
		}
		return models.User{}, err
	}
	if !user.IsActive {
		return models.User{}, apperrors.ErrAccountInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// Stats summarizes the user base for the admin dashboard.
func (s *UserService) Stats() (models.UserStats, error) {
	var stats models.UserStats
	err := s.db.QueryRow(`SELECT COUNT(*),
		COALESCE(SUM(is_active), 0),
		COALESCE(SUM(role = 'admin'), 0),
		COALESCE(SUM(role = 'student'), 0)
		FROM users`).Scan(&stats.TotalUsers, &stats.ActiveUsers, &stats.AdminUsers, &stats.StudentUsers)
	if err != nil {
		return models.UserStats{}, err
	}

	group := func(query string) ([]models.GroupCount, error) {
		rows, err := s.db.Query(query)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		buckets := []models.GroupCount{}
		for rows.Next() {
			var b models.GroupCount
			if err := rows.Scan(&b.Name, &b.Count); err != nil {
				return nil, err
			}
			buckets = append(buckets, b)
		}
		return buckets, rows.Err()
	}

	if stats.DepartmentStats, err = group("SELECT department, COUNT(*) FROM users GROUP BY department ORDER BY COUNT(*) DESC"); err != nil {
		return models.UserStats{}, err
	}
	if stats.YearStats, err = group("SELECT year, COUNT(*) FROM users GROUP BY year ORDER BY year"); err != nil {
		return models.UserStats{}, err
	}
	return stats, nil
}
