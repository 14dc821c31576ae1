package api_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saranshraj9101/events/internal/api"
	"github.com/saranshraj9101/events/internal/auth"
	"github.com/saranshraj9101/events/internal/database"
	"github.com/saranshraj9101/events/internal/models"
	"github.com/saranshraj9101/events/internal/services"
)

type testServer struct {
	router  *chi.Mux
	db      *sql.DB
	users   *services.UserService
	events  *services.EventService
	admin   models.User
	student models.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	userService := services.NewUserService(db)
	eventService := services.NewEventService(db)
	activityService := services.NewActivityService(db)
	authService := auth.NewService("test-secret", time.Hour, userService)

	admin, err := userService.CreateUser(services.CreateUserParams{
		Name: "Admin User", Email: "admin@bennett.edu", Password: "password",
		Department: "Administration", Year: "1st Year", Role: models.RoleAdmin,
	})
	require.NoError(t, err)

	student, err := userService.CreateUser(services.CreateUserParams{
		Name: "Student User", Email: "student@bennett.edu", Password: "password",
		Department: "Computer Science", Year: "2nd Year", Role: models.RoleStudent,
	})
	require.NoError(t, err)

	router := api.NewRouter(authService, userService, eventService, activityService, "http://localhost:3000")
	return &testServer{router: router, db: db, users: userService, events: eventService, admin: admin, student: student}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) login(t *testing.T, email string) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": "password",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (ts *testServer) createEvent(t *testing.T, params services.EventParams) models.Event {
	t.Helper()
	event, err := ts.events.CreateEvent(params, ts.admin.ID)
	require.NoError(t, err)
	return event
}

func techEvent(title string, daysOut int) services.EventParams {
	return services.EventParams{
		Title:       title,
		Description: "A technical event",
		Category:    "Technical",
		Date:        time.Now().UTC().AddDate(0, 0, daysOut),
		StartTime:   "14:00",
		EndTime:     "17:00",
		Venue:       "Computer Lab 101",
		IsFree:      true,
		Status:      models.StatusPublished,
	}
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "admin@bennett.edu", "password": "password",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string          `json:"token"`
		User  json.RawMessage `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)

	var user map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.User, &user))
	assert.Equal(t, "admin", user["role"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "passwordHash")

	rec = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "admin@bennett.edu", "password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterAccount(t *testing.T) {
	ts := newTestServer(t)

	payload := map[string]string{
		"name": "New Student", "email": "new@bennett.edu", "password": "secret1",
		"department": "Physics", "year": "1st Year",
	}
	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "student", resp.User.Role, "registration always creates students")

	// Duplicate email rejected.
	rec = ts.do(t, http.MethodPost, "/api/auth/register", "", payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// All violations reported together.
	rec = ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "bad"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var errResp struct {
		Errors []struct {
			Field string `json:"field"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.GreaterOrEqual(t, len(errResp.Errors), 4)
}

func TestAdminOnlyEndpoints(t *testing.T) {
	ts := newTestServer(t)
	studentToken := ts.login(t, "student@bennett.edu")

	endpoints := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/users"},
		{http.MethodGet, "/api/users/" + ts.student.ID},
		{http.MethodPut, "/api/users/" + ts.student.ID},
		{http.MethodDelete, "/api/users/" + ts.student.ID},
		{http.MethodPost, "/api/users/" + ts.student.ID + "/toggle-status"},
		{http.MethodGet, "/api/users/stats/overview"},
		{http.MethodPost, "/api/events"},
		{http.MethodPut, "/api/events/some-id"},
		{http.MethodDelete, "/api/events/some-id"},
		{http.MethodPost, "/api/events/some-id/approve"},
		{http.MethodGet, "/api/events/admin/all"},
		{http.MethodGet, "/api/activity"},
	}

	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			rec := ts.do(t, ep.method, ep.path, studentToken, nil)
			assert.Equal(t, http.StatusForbidden, rec.Code)

			rec = ts.do(t, ep.method, ep.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestPublicEventListPagination(t *testing.T) {
	ts := newTestServer(t)
	ts.createEvent(t, techEvent("Tech 1", 3))
	ts.createEvent(t, techEvent("Tech 2", 9))

	draft := techEvent("Hidden Draft", 5)
	draft.Status = models.StatusDraft
	ts.createEvent(t, draft)

	rec := ts.do(t, http.MethodGet, "/api/events?category=Technical&page=1&limit=1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Events []struct {
			Title  string `json:"title"`
			Status string `json:"status"`
		} `json:"events"`
		TotalPages  int `json:"totalPages"`
		CurrentPage int `json:"currentPage"`
		Total       int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "Tech 1", resp.Events[0].Title)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Equal(t, 1, resp.CurrentPage)
	assert.Equal(t, 2, resp.Total)

	// The draft never shows up on any public page.
	rec = ts.do(t, http.MethodGet, "/api/events?page=1&limit=50", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	for _, e := range resp.Events {
		assert.Equal(t, models.StatusPublished, e.Status)
	}
}

func TestEventCRUD(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.login(t, "admin@bennett.edu")

	payload := map[string]interface{}{
		"title":       "Robotics Workshop",
		"description": "Build a line follower.",
		"category":    "Workshop",
		"date":        time.Now().UTC().AddDate(0, 0, 10).Format(time.RFC3339),
		"startTime":   "09:30",
		"endTime":     "13:00",
		"venue":       "Lab 3",
	}
	rec := ts.do(t, http.MethodPost, "/api/events", adminToken, payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, ts.admin.ID, created.OrganizerID)
	assert.Equal(t, models.StatusDraft, created.Status)

	rec = ts.do(t, http.MethodPut, "/api/events/"+created.ID, adminToken, map[string]string{"venue": "Lab 4"})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Lab 4", updated.Venue)
	assert.Equal(t, created.Title, updated.Title)

	rec = ts.do(t, http.MethodGet, "/api/events/"+created.ID, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/events/"+created.ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/events/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEventCreateValidation(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.login(t, "admin@bennett.edu")

	rec := ts.do(t, http.MethodPost, "/api/events", adminToken, map[string]string{
		"category":  "NotACategory",
		"startTime": "25:99",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Errors []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	fields := map[string]bool{}
	for _, e := range resp.Errors {
		fields[e.Field] = true
	}
	for _, want := range []string{"title", "description", "category", "date", "startTime", "endTime", "venue"} {
		assert.True(t, fields[want], "expected violation for %s", want)
	}
}

func TestApproveIdempotentOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.login(t, "admin@bennett.edu")
	event := ts.createEvent(t, techEvent("Needs Approval", 5))

	rec := ts.do(t, http.MethodPost, fmt.Sprintf("/api/events/%s/approve", event.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var first models.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.True(t, first.IsApproved)

	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/api/events/%s/approve", event.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var second models.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))

	assert.Equal(t, first.ApprovedBy, second.ApprovedBy)
	require.NotNil(t, second.ApprovedAt)
	assert.Equal(t, first.ApprovedAt.Unix(), second.ApprovedAt.Unix())
}

func TestEventRegistrationFlow(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.login(t, "admin@bennett.edu")
	studentToken := ts.login(t, "student@bennett.edu")

	params := techEvent("Registrable", 5)
	params.IsRegistrationRequired = true
	event := ts.createEvent(t, params)

	// Not approved yet: registration rejected.
	rec := ts.do(t, http.MethodPost, fmt.Sprintf("/api/events/%s/register", event.ID), studentToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/api/events/%s/approve", event.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/api/events/%s/register", event.ID), studentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var registered models.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))
	assert.Contains(t, registered.RegisteredParticipants, ts.student.ID)

	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/api/events/%s/register", event.ID), studentToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/api/events/%s/unregister", event.ID), studentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var unregistered models.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &unregistered))
	assert.NotContains(t, unregistered.RegisteredParticipants, ts.student.ID)
}

func TestUserAdministration(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.login(t, "admin@bennett.edu")

	rec := ts.do(t, http.MethodGet, "/api/users?role=student", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listResp struct {
		Users []map[string]interface{} `json:"users"`
		Total int                      `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	assert.Equal(t, 1, listResp.Total)
	require.Len(t, listResp.Users, 1)
	assert.NotContains(t, listResp.Users[0], "password")
	assert.NotContains(t, listResp.Users[0], "passwordHash")

	// Email conflict on update.
	rec = ts.do(t, http.MethodPut, "/api/users/"+ts.student.ID, adminToken, map[string]string{
		"email": "admin@bennett.edu",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Self-protection rules.
	rec = ts.do(t, http.MethodDelete, "/api/users/"+ts.admin.ID, adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(t, http.MethodPost, "/api/users/"+ts.admin.ID+"/toggle-status", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Admin still present and active.
	rec = ts.do(t, http.MethodGet, "/api/users/"+ts.admin.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var adminUser models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &adminUser))
	assert.True(t, adminUser.IsActive)

	// Toggle the student off and on.
	rec = ts.do(t, http.MethodPost, "/api/users/"+ts.student.ID+"/toggle-status", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var toggleResp struct {
		Message string      `json:"message"`
		User    models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &toggleResp))
	assert.False(t, toggleResp.User.IsActive)
	assert.Equal(t, "User deactivated successfully", toggleResp.Message)

	// Deactivated accounts cannot log in.
	rec = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "student@bennett.edu", "password": "password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfileAndPassword(t *testing.T) {
	ts := newTestServer(t)
	studentToken := ts.login(t, "student@bennett.edu")

	rec := ts.do(t, http.MethodGet, "/api/auth/me", studentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, ts.student.ID, me.ID)

	rec = ts.do(t, http.MethodPut, "/api/auth/profile", studentToken, map[string]string{
		"name": "Renamed Student",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Renamed Student", updated.Name)

	rec = ts.do(t, http.MethodPost, "/api/auth/change-password", studentToken, map[string]string{
		"currentPassword": "wrong", "newPassword": "newpassword",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/auth/change-password", studentToken, map[string]string{
		"currentPassword": "password", "newPassword": "newpassword",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Old password no longer works, new one does.
	rec = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "student@bennett.edu", "password": "password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "student@bennett.edu", "password": "newpassword",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestActivityTrail(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.login(t, "admin@bennett.edu")
	event := ts.createEvent(t, techEvent("Audited", 5))

	rec := ts.do(t, http.MethodPost, fmt.Sprintf("/api/events/%s/approve", event.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/activity", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []models.Activity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.NotEmpty(t, entries)
	assert.Equal(t, "event.approve", entries[0].Type)
	require.NotNil(t, entries[0].ActorID)
	assert.Equal(t, ts.admin.ID, *entries[0].ActorID)
}
