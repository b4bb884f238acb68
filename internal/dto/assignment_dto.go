package dto

import (
	"time"

	"github.com/orbitlms/coursework-api/internal/models"
)

// AssignmentCreateRequest describes the payload for issuing an assignment.
// MaxMarks and DueDate are accepted as given; the ledger performs no
// positivity or future-date checks on them.
type AssignmentCreateRequest struct {
	Title       string `json:"title" validate:"required,min=3"`
	Description string `json:"description" validate:"required"`
	CourseID    string `json:"course_id" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=HOMEWORK QUIZ PROJECT LAB_REPORT PRESENTATION EXAM"`
	MaxMarks    int    `json:"max_marks"`
	DueDate     string `json:"due_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

// AddAttachmentRequest references a file by path; content storage is out
// of scope.
type AddAttachmentRequest struct {
	Path string `json:"path" validate:"required"`
}

// AssignmentFilter narrows assignment listings.
type AssignmentFilter struct {
	CourseID  string `query:"course_id"`
	TeacherID string `query:"teacher_id"`
}

// AssignmentResponse is the serialized representation returned to API
// clients. Overdue is derived at response time.
type AssignmentResponse struct {
	AssignmentID    string                  `json:"assignment_id"`
	Title           string                  `json:"title"`
	Description     string                  `json:"description"`
	CourseID        string                  `json:"course_id"`
	CreatorID       string                  `json:"creator_id"`
	Type            models.AssignmentType   `json:"type"`
	MaxMarks        int                     `json:"max_marks"`
	CreatedAt       time.Time               `json:"created_at"`
	DueDate         time.Time               `json:"due_date"`
	Status          models.AssignmentStatus `json:"status"`
	AttachmentPaths []string                `json:"attachment_paths"`
	SubmissionIDs   []string                `json:"submission_ids"`
	Overdue         bool                    `json:"overdue"`
}

// NewAssignmentResponse converts a model into a DTO, deriving the overdue
// flag against the supplied reference time.
func NewAssignmentResponse(assignment models.Assignment, reference time.Time) AssignmentResponse {
	clone := assignment.Clone()
	return AssignmentResponse{
		AssignmentID:    clone.AssignmentID,
		Title:           clone.Title,
		Description:     clone.Description,
		CourseID:        clone.CourseID,
		CreatorID:       clone.CreatorID,
		Type:            clone.Type,
		MaxMarks:        clone.MaxMarks,
		CreatedAt:       clone.CreatedAt,
		DueDate:         clone.DueDate,
		Status:          clone.Status,
		AttachmentPaths: clone.AttachmentPaths,
		SubmissionIDs:   clone.SubmissionIDs,
		Overdue:         clone.IsOverdue(reference),
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment, reference time.Time) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment, reference))
	}

	return responses
}

// AssignmentStatistics summarises submission progress for one assignment.
// Computed on demand, never cached or persisted.
type AssignmentStatistics struct {
	AssignmentID   string  `json:"assignment_id"`
	Title          string  `json:"title"`
	TotalStudents  int     `json:"total_students"`
	SubmittedCount int     `json:"submitted_count"`
	GradedCount    int     `json:"graded_count"`
	SubmissionRate float64 `json:"submission_rate"`
}
