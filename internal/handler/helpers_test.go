package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/orbitlms/coursework-api/internal/dto"
	"github.com/orbitlms/coursework-api/internal/handler"
	"github.com/orbitlms/coursework-api/internal/middleware"
	"github.com/orbitlms/coursework-api/internal/models"
	"github.com/orbitlms/coursework-api/internal/service"
	"github.com/orbitlms/coursework-api/internal/storage"
)

// testEnv wires the real services behind the handlers, backed by a file
// gateway in a temporary directory. Authentication is stubbed via headers
// so tests can impersonate any account.
type testEnv struct {
	app       *fiber.App
	registry  service.UserRegistry
	directory service.CourseDirectory
	ledger    service.Ledger

	teacherID string
	studentID string
	courseID  string
}

func headerAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// c.Get returns a string aliasing fasthttp's reused request buffer;
		// clone before storing so the value survives past this request.
		if id := c.Get("X-Test-User"); id != "" {
			c.Locals("user_id", strings.Clone(id))
		}
		if role := c.Get("X-Test-Role"); role != "" {
			c.Locals("user_role", strings.Clone(role))
		}
		return c.Next()
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())

	gateway, err := storage.NewFileGateway(filepath.Join(t.TempDir(), "ledger.json"), logger)
	require.NoError(t, err)

	registry := service.NewUserRegistry(validate, logger)
	directory := service.NewCourseDirectory(registry, validate, logger)
	ledger, err := service.NewLedger(gateway, directory, registry, nil, validate, logger)
	require.NoError(t, err)

	ctx := t.Context()

	teacher, err := registry.RegisterTeacher(ctx, dto.RegisterTeacherRequest{
		Name:       "Farida Rahman",
		Email:      "farida@university.example",
		Department: "CSE",
		EmployeeID: "EMP-1001",
	})
	require.NoError(t, err)

	student, err := registry.RegisterStudent(ctx, dto.RegisterStudentRequest{
		Name:      "Tanvir Ahmed",
		Email:     "tanvir@university.example",
		StudentID: "2021-1-60-001",
		Program:   "BSc CSE",
		Semester:  7,
	})
	require.NoError(t, err)

	course, err := directory.Create(ctx, dto.CourseCreateRequest{
		CourseName:  "Data Structures",
		CourseCode:  "CSE201",
		Department:  "CSE",
		CreditHours: 3,
		Semester:    "Fall2024",
	}, teacher.UserID)
	require.NoError(t, err)

	_, err = directory.Enroll(ctx, course.CourseID, student.UserID)
	require.NoError(t, err)

	app := fiber.New()
	api := app.Group("/api/v1", headerAuth())

	teacherOnly := middleware.RequireRole(string(models.RoleTeacher))
	studentOnly := middleware.RequireRole(string(models.RoleStudent))

	userHandler := handler.NewUserHandler(registry, logger)
	userHandler.RegisterPublic(api.Group("/register"))
	userHandler.Register(api.Group("/users"))
	handler.NewCourseHandler(directory, logger).Register(api.Group("/courses"), teacherOnly)
	handler.NewAssignmentHandler(ledger, logger).Register(api.Group("/assignments"), teacherOnly)
	handler.NewSubmissionHandler(ledger, logger).Register(api.Group("/submissions"), studentOnly, teacherOnly)

	return &testEnv{
		app:       app,
		registry:  registry,
		directory: directory,
		ledger:    ledger,
		teacherID: teacher.UserID,
		studentID: student.UserID,
		courseID:  course.CourseID,
	}
}

func (e *testEnv) request(t *testing.T, method, target string, payload interface{}, userID, role string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}
	if role != "" {
		req.Header.Set("X-Test-Role", role)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) asTeacher(t *testing.T, method, target string, payload interface{}) *http.Response {
	return e.request(t, method, target, payload, e.teacherID, string(models.RoleTeacher))
}

func (e *testEnv) asStudent(t *testing.T, method, target string, payload interface{}) *http.Response {
	return e.request(t, method, target, payload, e.studentID, string(models.RoleStudent))
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func (e *testEnv) createAssignment(t *testing.T, dueDate string) dto.AssignmentResponse {
	t.Helper()

	resp := e.asTeacher(t, http.MethodPost, "/api/v1/assignments", dto.AssignmentCreateRequest{
		Title:       "Binary Trees",
		Description: "Implement an AVL tree",
		CourseID:    e.courseID,
		Type:        string(models.AssignmentTypeHomework),
		DueDate:     dueDate,
		MaxMarks:    100,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var response struct {
		Data dto.AssignmentResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	return response.Data
}
