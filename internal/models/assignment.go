package models

import "time"

// AssignmentStatus tracks the assignment lifecycle. The transition from
// ACTIVE to CLOSED is one way; closed assignments are never reopened.
type AssignmentStatus string

// Assignment lifecycle states.
const (
	AssignmentStatusActive AssignmentStatus = "ACTIVE"
	AssignmentStatusClosed AssignmentStatus = "CLOSED"
)

// AssignmentType categorises the kind of coursework being issued.
type AssignmentType string

// Supported assignment types.
const (
	AssignmentTypeHomework     AssignmentType = "HOMEWORK"
	AssignmentTypeQuiz         AssignmentType = "QUIZ"
	AssignmentTypeProject      AssignmentType = "PROJECT"
	AssignmentTypeLabReport    AssignmentType = "LAB_REPORT"
	AssignmentTypePresentation AssignmentType = "PRESENTATION"
	AssignmentTypeExam         AssignmentType = "EXAM"
)

// Assignment is coursework issued against a course by a teacher.
type Assignment struct {
	AssignmentID    string           `json:"assignment_id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	CourseID        string           `json:"course_id"`
	CreatorID       string           `json:"creator_id"`
	Type            AssignmentType   `json:"type"`
	MaxMarks        int              `json:"max_marks"`
	CreatedAt       time.Time        `json:"created_at"`
	DueDate         time.Time        `json:"due_date"`
	Status          AssignmentStatus `json:"status"`
	AttachmentPaths []string         `json:"attachment_paths"`
	SubmissionIDs   []string         `json:"submission_ids"`
}

// IsOverdue reports whether the assignment is still accepting work past its
// deadline. Closing an assignment makes this permanently false.
func (a Assignment) IsOverdue(reference time.Time) bool {
	return reference.After(a.DueDate) && a.Status == AssignmentStatusActive
}

// IsActive reports whether the assignment accepts submissions.
func (a Assignment) IsActive() bool {
	return a.Status == AssignmentStatusActive
}

// Close moves the assignment to the CLOSED state.
func (a *Assignment) Close() {
	a.Status = AssignmentStatusClosed
}

// AddAttachment records a referenced file path. Paths are unique; adding an
// existing path is a no-op and the return value reports whether it was added.
func (a *Assignment) AddAttachment(path string) bool {
	for _, existing := range a.AttachmentPaths {
		if existing == path {
			return false
		}
	}
	a.AttachmentPaths = append(a.AttachmentPaths, path)
	return true
}

// AddSubmission links a submission reference, skipping duplicates.
func (a *Assignment) AddSubmission(submissionID string) {
	for _, id := range a.SubmissionIDs {
		if id == submissionID {
			return
		}
	}
	a.SubmissionIDs = append(a.SubmissionIDs, submissionID)
}

// RemoveSubmission unlinks a submission reference.
func (a *Assignment) RemoveSubmission(submissionID string) {
	for i, id := range a.SubmissionIDs {
		if id == submissionID {
			a.SubmissionIDs = append(a.SubmissionIDs[:i], a.SubmissionIDs[i+1:]...)
			return
		}
	}
}

// SubmissionCount returns the number of linked submissions.
func (a Assignment) SubmissionCount() int {
	return len(a.SubmissionIDs)
}

// Clone returns an independent copy so callers cannot mutate ledger state.
func (a Assignment) Clone() Assignment {
	clone := a
	clone.AttachmentPaths = append([]string(nil), a.AttachmentPaths...)
	clone.SubmissionIDs = append([]string(nil), a.SubmissionIDs...)
	return clone
}
