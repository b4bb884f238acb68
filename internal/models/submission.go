package models

import "time"

// SubmissionStatus tracks the grading lifecycle of a submission.
type SubmissionStatus string

// Submission lifecycle states.
const (
	SubmissionStatusSubmitted SubmissionStatus = "SUBMITTED"
	SubmissionStatusGraded    SubmissionStatus = "GRADED"
)

// Submission is a student's answer to an assignment. It is created once and
// mutated only by grading.
type Submission struct {
	SubmissionID    string           `json:"submission_id"`
	AssignmentID    string           `json:"assignment_id"`
	StudentID       string           `json:"student_id"`
	Content         string           `json:"content"`
	SubmittedAt     time.Time        `json:"submitted_at"`
	AttachmentPaths []string         `json:"attachment_paths"`
	Status          SubmissionStatus `json:"status"`
	Marks           *int             `json:"marks,omitempty"`
	Feedback        string           `json:"feedback,omitempty"`
	GradedBy        string           `json:"graded_by,omitempty"`
	GradedAt        *time.Time       `json:"graded_at,omitempty"`
	LateSubmission  bool             `json:"late_submission"`
}

// Grade records marks and feedback from a teacher and moves the submission
// to GRADED. Grading an already graded submission overwrites the prior
// result.
func (s *Submission) Grade(marks int, feedback, teacherID string, gradedAt time.Time) {
	s.Marks = &marks
	s.Feedback = feedback
	s.GradedBy = teacherID
	s.GradedAt = &gradedAt
	s.Status = SubmissionStatusGraded
}

// IsGraded reports whether the submission has received marks.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}

// Percentage returns the achieved share of maxMarks for a graded
// submission. The second return value is false while ungraded or when
// maxMarks is not positive.
func (s Submission) Percentage(maxMarks int) (float64, bool) {
	if s.Marks == nil || maxMarks <= 0 {
		return 0, false
	}
	return float64(*s.Marks) * 100.0 / float64(maxMarks), true
}

// AddAttachment records a referenced file path, skipping duplicates.
func (s *Submission) AddAttachment(path string) bool {
	for _, existing := range s.AttachmentPaths {
		if existing == path {
			return false
		}
	}
	s.AttachmentPaths = append(s.AttachmentPaths, path)
	return true
}

// Clone returns an independent copy so callers cannot mutate ledger state.
func (s Submission) Clone() Submission {
	clone := s
	clone.AttachmentPaths = append([]string(nil), s.AttachmentPaths...)
	if s.Marks != nil {
		marks := *s.Marks
		clone.Marks = &marks
	}
	if s.GradedAt != nil {
		gradedAt := *s.GradedAt
		clone.GradedAt = &gradedAt
	}
	return clone
}
