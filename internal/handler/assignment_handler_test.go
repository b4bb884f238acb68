package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/orbitlms/coursework-api/internal/dto"
	"github.com/orbitlms/coursework-api/internal/models"
)

func TestAssignmentHandler_CreateSuccess(t *testing.T) {
	env := newTestEnv(t)

	due := time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
	assignment := env.createAssignment(t, due)

	require.Equal(t, "ASSIGN-0001", assignment.AssignmentID)
	require.Equal(t, env.courseID, assignment.CourseID)
	require.Equal(t, models.AssignmentStatusActive, assignment.Status)
	require.False(t, assignment.Overdue)
}

func TestAssignmentHandler_CreateForbiddenForStudents(t *testing.T) {
	env := newTestEnv(t)

	due := time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
	resp := env.asStudent(t, http.MethodPost, "/api/v1/assignments", dto.AssignmentCreateRequest{
		Title:       "Binary Trees",
		Description: "Implement an AVL tree",
		CourseID:    env.courseID,
		Type:        string(models.AssignmentTypeHomework),
		DueDate:     due,
		MaxMarks:    100,
	})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAssignmentHandler_CreateUnknownCourse(t *testing.T) {
	env := newTestEnv(t)

	due := time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
	resp := env.asTeacher(t, http.MethodPost, "/api/v1/assignments", dto.AssignmentCreateRequest{
		Title:       "Binary Trees",
		Description: "Implement an AVL tree",
		CourseID:    "CRS-9999",
		Type:        string(models.AssignmentTypeHomework),
		DueDate:     due,
		MaxMarks:    100,
	})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAssignmentHandler_GetNotFound(t *testing.T) {
	env := newTestEnv(t)

	resp := env.asStudent(t, http.MethodGet, "/api/v1/assignments/ASSIGN-9999", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAssignmentHandler_CloseIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	due := time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
	assignment := env.createAssignment(t, due)

	resp := env.asTeacher(t, http.MethodPost, "/api/v1/assignments/"+assignment.AssignmentID+"/close", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Unknown identifiers are accepted without complaint.
	resp = env.asTeacher(t, http.MethodPost, "/api/v1/assignments/ASSIGN-9999/close", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAssignmentHandler_ListFiltersByCourse(t *testing.T) {
	env := newTestEnv(t)

	due := time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
	env.createAssignment(t, due)
	env.createAssignment(t, due)

	resp := env.asStudent(t, http.MethodGet, "/api/v1/assignments?course_id="+env.courseID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data []dto.AssignmentResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Len(t, response.Data, 2)

	resp = env.asStudent(t, http.MethodGet, "/api/v1/assignments?course_id=CRS-9999", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	response.Data = nil
	decodeResponse(t, resp, &response)
	require.Empty(t, response.Data)
}

func TestAssignmentHandler_OverdueListing(t *testing.T) {
	env := newTestEnv(t)

	pastDue := time.Now().Add(-24 * time.Hour).UTC().Format(time.RFC3339)
	overdue := env.createAssignment(t, pastDue)

	futureDue := time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
	env.createAssignment(t, futureDue)

	resp := env.asStudent(t, http.MethodGet, "/api/v1/assignments/overdue", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data []dto.AssignmentResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Len(t, response.Data, 1)
	require.Equal(t, overdue.AssignmentID, response.Data[0].AssignmentID)
	require.True(t, response.Data[0].Overdue)
}

func TestAssignmentHandler_AddAttachment(t *testing.T) {
	env := newTestEnv(t)

	due := time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
	assignment := env.createAssignment(t, due)

	resp := env.asTeacher(t, http.MethodPost, "/api/v1/assignments/"+assignment.AssignmentID+"/attachments", dto.AddAttachmentRequest{
		Path: "materials/avl-notes.pdf",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data dto.AssignmentResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Contains(t, response.Data.AttachmentPaths, "materials/avl-notes.pdf")
}

func TestAssignmentHandler_Statistics(t *testing.T) {
	env := newTestEnv(t)

	due := time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
	assignment := env.createAssignment(t, due)

	submit := env.asStudent(t, http.MethodPost, "/api/v1/submissions", dto.SubmissionCreateRequest{
		AssignmentID: assignment.AssignmentID,
		Content:      "my solution",
	})
	require.Equal(t, fiber.StatusCreated, submit.StatusCode)

	resp := env.asTeacher(t, http.MethodGet, "/api/v1/assignments/"+assignment.AssignmentID+"/statistics", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data dto.AssignmentStatistics `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, 1, response.Data.SubmittedCount)
	require.InDelta(t, 100.0, response.Data.SubmissionRate, 0.01)
}
