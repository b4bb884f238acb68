package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAssignmentIsOverdue(t *testing.T) {
	due := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	assignment := Assignment{
		AssignmentID: "ASSIGN-0001",
		DueDate:      due,
		Status:       AssignmentStatusActive,
	}

	require.False(t, assignment.IsOverdue(due.Add(-time.Hour)))
	require.False(t, assignment.IsOverdue(due))
	require.True(t, assignment.IsOverdue(due.Add(time.Minute)))

	assignment.Close()
	require.False(t, assignment.IsOverdue(due.Add(24*time.Hour)))
}

func TestAssignmentAttachmentsUnique(t *testing.T) {
	assignment := Assignment{AssignmentID: "ASSIGN-0002"}

	require.True(t, assignment.AddAttachment("specs/rubric.pdf"))
	require.False(t, assignment.AddAttachment("specs/rubric.pdf"))
	require.True(t, assignment.AddAttachment("specs/template.docx"))
	require.Len(t, assignment.AttachmentPaths, 2)
}

func TestAssignmentCloneIsIndependent(t *testing.T) {
	assignment := Assignment{
		AssignmentID:    "ASSIGN-0003",
		AttachmentPaths: []string{"a.txt"},
		SubmissionIDs:   []string{"SUB-0001"},
	}

	clone := assignment.Clone()
	clone.AddAttachment("b.txt")
	clone.AddSubmission("SUB-0002")

	require.Len(t, assignment.AttachmentPaths, 1)
	require.Len(t, assignment.SubmissionIDs, 1)
}

func TestSubmissionPercentage(t *testing.T) {
	submission := Submission{SubmissionID: "SUB-0001", Status: SubmissionStatusSubmitted}

	_, ok := submission.Percentage(100)
	require.False(t, ok)

	submission.Grade(85, "solid work", "USR-0002", time.Now())
	percentage, ok := submission.Percentage(100)
	require.True(t, ok)
	require.InDelta(t, 85.0, percentage, 1e-9)

	_, ok = submission.Percentage(0)
	require.False(t, ok)
}

func TestCourseEnrollmentIdempotent(t *testing.T) {
	course := Course{CourseID: "CRS-0001"}

	require.True(t, course.EnrollStudent("USR-0005"))
	require.False(t, course.EnrollStudent("USR-0005"))
	require.Len(t, course.EnrolledStudentIDs, 1)
	require.True(t, course.IsEnrolled("USR-0005"))
	require.False(t, course.IsEnrolled("USR-0006"))
}
