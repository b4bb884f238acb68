package dto

import (
	"time"

	"github.com/orbitlms/coursework-api/internal/models"
)

// SubmissionCreateRequest describes the payload for submitting coursework.
type SubmissionCreateRequest struct {
	AssignmentID    string   `json:"assignment_id" validate:"required"`
	Content         string   `json:"content" validate:"required"`
	AttachmentPaths []string `json:"attachment_paths" validate:"omitempty,unique"`
}

// GradeSubmissionRequest carries a teacher's grading decision.
type GradeSubmissionRequest struct {
	Marks    int    `json:"marks"`
	Feedback string `json:"feedback"`
}

// SubmissionFilter narrows submission listings.
type SubmissionFilter struct {
	AssignmentID string `query:"assignment_id"`
	StudentID    string `query:"student_id"`
}

// SubmissionResponse is the serialized representation returned to API
// clients. Percentage is present only once graded.
type SubmissionResponse struct {
	SubmissionID    string                  `json:"submission_id"`
	AssignmentID    string                  `json:"assignment_id"`
	StudentID       string                  `json:"student_id"`
	Content         string                  `json:"content"`
	SubmittedAt     time.Time               `json:"submitted_at"`
	AttachmentPaths []string                `json:"attachment_paths"`
	Status          models.SubmissionStatus `json:"status"`
	Marks           *int                    `json:"marks,omitempty"`
	Feedback        string                  `json:"feedback,omitempty"`
	GradedBy        string                  `json:"graded_by,omitempty"`
	GradedAt        *time.Time              `json:"graded_at,omitempty"`
	LateSubmission  bool                    `json:"late_submission"`
	Percentage      *float64                `json:"percentage,omitempty"`
}

// NewSubmissionResponse converts a model into a DTO. maxMarks comes from
// the owning assignment and drives the derived percentage.
func NewSubmissionResponse(submission models.Submission, maxMarks int) SubmissionResponse {
	clone := submission.Clone()
	response := SubmissionResponse{
		SubmissionID:    clone.SubmissionID,
		AssignmentID:    clone.AssignmentID,
		StudentID:       clone.StudentID,
		Content:         clone.Content,
		SubmittedAt:     clone.SubmittedAt,
		AttachmentPaths: clone.AttachmentPaths,
		Status:          clone.Status,
		Marks:           clone.Marks,
		Feedback:        clone.Feedback,
		GradedBy:        clone.GradedBy,
		GradedAt:        clone.GradedAt,
		LateSubmission:  clone.LateSubmission,
	}

	if percentage, ok := clone.Percentage(maxMarks); ok {
		response.Percentage = &percentage
	}

	return response
}
